package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/accident-risk/internal/artifact"
	"github.com/sells-group/accident-risk/internal/lookup"
)

var checkCmd = &cobra.Command{
	Use:   "check <barangay> [station]",
	Short: "Assess one location against the derived artifacts",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("check"); err != nil {
			return err
		}

		bundle, err := artifact.Load(ctx, cfg.Artifacts.Dir)
		if err != nil {
			return eris.Wrap(err, "check: load artifacts")
		}
		svc, err := lookup.New(bundle)
		if err != nil {
			return err
		}

		var station string
		if len(args) > 1 {
			station = args[1]
		}
		result, err := svc.CheckLocation(args[0], station)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
