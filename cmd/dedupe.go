package main

import (
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shoreham-data/reconcile-cli/internal/collision"
	"github.com/shoreham-data/reconcile-cli/internal/ingest"
	"github.com/shoreham-data/reconcile-cli/internal/model"
	"github.com/shoreham-data/reconcile-cli/internal/store"
)

var (
	dedupeTaxRoll string
	dedupeDonors  string
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Ingest both sources, resolve owner collisions, and store the groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEngine()
		if err != nil {
			return err
		}

		st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL, cfg.Store.SQLitePath)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		builder := ingest.NewBuilder(env.Classifier, env.Normalizer)

		var entities []*model.Entity
		if path := firstNonEmpty(dedupeTaxRoll, cfg.Ingest.TaxRollPath); path != "" {
			loaded, err := builder.LoadTaxRoll(ctx, path)
			if err != nil {
				return err
			}
			entities = append(entities, loaded...)
		}
		if path := firstNonEmpty(dedupeDonors, cfg.Ingest.DonorRosterPath); path != "" {
			loaded, err := builder.LoadDonorRoster(ctx, path)
			if err != nil {
				return err
			}
			entities = append(entities, loaded...)
		}
		if len(entities) == 0 {
			zap.L().Warn("dedupe: no entities loaded, nothing to do")
			return nil
		}

		if err := st.SaveEntities(ctx, entities); err != nil {
			return err
		}

		grouper := collision.NewGrouper(env.Resolver, cfg.Batch.Concurrency)
		groups, decisions, err := grouper.Group(ctx, entities)
		if err != nil {
			return err
		}

		runID := uuid.New().String()
		if err := st.SaveDecisions(ctx, runID, decisions); err != nil {
			return err
		}
		if err := st.SaveGroups(ctx, runID, groups); err != nil {
			return err
		}

		zap.L().Info("dedupe: run complete",
			zap.String("run_id", runID),
			zap.Int("entities", len(entities)),
			zap.Int("groups", len(groups)),
		)
		cmd.Printf("run %s: %d entities -> %d owner groups\n", runID, len(entities), len(groups))
		return nil
	},
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	dedupeCmd.Flags().StringVar(&dedupeTaxRoll, "tax-roll", "", "path to the property-tax roll CSV")
	dedupeCmd.Flags().StringVar(&dedupeDonors, "donors", "", "path to the donor roster XLSX")
	rootCmd.AddCommand(dedupeCmd)
}
