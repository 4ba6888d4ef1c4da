package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <name>",
	Short: "Classify a raw owner name into a case, entity kind, and parsed name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEngine()
		if err != nil {
			return err
		}

		res := env.Classifier.Classify(strings.Join(args, " "))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
