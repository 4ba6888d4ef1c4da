package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var addrCmd = &cobra.Command{
	Use:   "addr <raw address>",
	Short: "Normalize delimiter-tagged address text into structured fields",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEngine()
		if err != nil {
			return err
		}

		addr := env.Normalizer.Normalize(strings.Join(args, " "))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(addr)
	},
}

func init() {
	rootCmd.AddCommand(addrCmd)
}
