package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shoreham-data/reconcile-cli/internal/address"
	"github.com/shoreham-data/reconcile-cli/internal/collision"
	"github.com/shoreham-data/reconcile-cli/internal/compare"
	"github.com/shoreham-data/reconcile-cli/internal/config"
	"github.com/shoreham-data/reconcile-cli/internal/nameparse"
	"github.com/shoreham-data/reconcile-cli/internal/refdata"
	"github.com/shoreham-data/reconcile-cli/internal/similarity"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "reconcile-cli",
	Short: "Owner reconciliation across the tax roll and donor roster",
	Long:  "Classifies raw owner names, normalizes addresses, scores entity similarity, and groups records that denote the same real-world owner.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// engine bundles the wired matching components shared by the commands.
type engine struct {
	Terms      *refdata.BusinessTerms
	Gazetteer  *refdata.Gazetteer
	Classifier *nameparse.Classifier
	Normalizer *address.Normalizer
	Scorer     *similarity.Scorer
	Comparator *compare.Comparator
	Resolver   *collision.Resolver
}

// initEngine builds the reference data and the full component stack from
// configuration. Reference data is loaded exactly once here; every
// component receives it by injection.
func initEngine() (*engine, error) {
	var (
		terms *refdata.BusinessTerms
		gaz   *refdata.Gazetteer
		err   error
	)
	if path := cfg.Jurisdiction.RefdataPath; path != "" {
		terms, gaz, err = refdata.Load(path, cfg.Jurisdiction.City)
		if err != nil {
			return nil, err
		}
	} else {
		terms = refdata.DefaultBusinessTerms()
		gaz = refdata.NewGazetteer(nil, cfg.Jurisdiction.City)
	}

	scorer := similarity.New(cfg.Similarity)
	comparator := compare.New(scorer, cfg.Compare)

	return &engine{
		Terms:      terms,
		Gazetteer:  gaz,
		Classifier: nameparse.New(terms),
		Normalizer: address.New(gaz),
		Scorer:     scorer,
		Comparator: comparator,
		Resolver:   collision.New(comparator, cfg.Thresholds),
	}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
