package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shoreham-data/reconcile-cli/internal/store"
)

var groupsRunID string

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List stored owner groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL, cfg.Store.SQLitePath)
		if err != nil {
			return err
		}
		defer st.Close()

		runID := groupsRunID
		if runID == "" {
			runs, err := st.ListRuns(ctx)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				cmd.Println("no stored runs")
				return nil
			}
			runID = runs[len(runs)-1]
		}

		groups, err := st.ListGroups(ctx, runID)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(groups)
	},
}

func init() {
	groupsCmd.Flags().StringVar(&groupsRunID, "run", "", "run id (default: most recent)")
	rootCmd.AddCommand(groupsCmd)
}
