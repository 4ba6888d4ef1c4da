package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/shoreham-data/reconcile-cli/internal/model"
)

var compareDetailed bool

var compareCmd = &cobra.Command{
	Use:   "compare <entities.json>",
	Short: "Compare the first two entities in a JSON file",
	Long:  "Reads a JSON array of entities, compares the first two, and prints the score with an optional full breakdown tree.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEngine()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read %s", args[0])
		}

		var entities []model.Entity
		if err := json.Unmarshal(data, &entities); err != nil {
			return eris.Wrap(err, "parse entities")
		}
		if len(entities) < 2 {
			return eris.Errorf("%s holds %d entities, need at least 2", args[0], len(entities))
		}
		for i := range entities[:2] {
			if err := entities[i].Validate(); err != nil {
				return err
			}
		}

		out := env.Comparator.Compare(&entities[0], &entities[1], compareDetailed)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	compareCmd.Flags().BoolVar(&compareDetailed, "detailed", false, "include the per-component breakdown tree")
	rootCmd.AddCommand(compareCmd)
}
