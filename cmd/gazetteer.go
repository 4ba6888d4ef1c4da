package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shoreham-data/reconcile-cli/internal/refdata"
)

var (
	gazetteerOut       string
	gazetteerNameField string
)

var gazetteerCmd = &cobra.Command{
	Use:   "gazetteer <roads.shp>",
	Short: "Build the local-street gazetteer from a TIGER roads shapefile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		streets, err := refdata.StreetsFromShapefile(args[0], gazetteerNameField)
		if err != nil {
			return err
		}
		if len(streets) == 0 {
			return eris.Errorf("no named roads found in %s", args[0])
		}

		terms := refdata.DefaultBusinessTerms()
		gaz := refdata.NewGazetteer(streets, cfg.Jurisdiction.City)
		if err := refdata.Save(gazetteerOut, terms, gaz); err != nil {
			return err
		}

		zap.L().Info("gazetteer: written",
			zap.String("out", gazetteerOut),
			zap.Int("streets", len(streets)),
		)
		cmd.Printf("wrote %d streets to %s\n", len(streets), gazetteerOut)
		return nil
	},
}

func init() {
	gazetteerCmd.Flags().StringVar(&gazetteerOut, "out", "refdata.yaml", "output reference data file")
	gazetteerCmd.Flags().StringVar(&gazetteerNameField, "name-field", "FULLNAME", "shapefile attribute holding the street name")
	rootCmd.AddCommand(gazetteerCmd)
}
