package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/accident-risk/internal/config"
)

var cfg *config.Config

var (
	logLevelFlag  string
	artifactsFlag string
)

var rootCmd = &cobra.Command{
	Use:   "accident-risk",
	Short: "Barangay accident-risk lookup service",
	Long:  "Derives accident-prone locations from historical incident records and serves risk lookups over HTTP.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		applyGlobalFlags(c)
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		zap.L().Debug("config loaded",
			zap.String("command", cmd.CommandPath()),
			zap.String("artifacts_dir", cfg.Artifacts.Dir),
			zap.Int("port", cfg.Server.Port),
		)

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

// applyGlobalFlags lets the persistent flags win over file and env settings.
func applyGlobalFlags(c *config.Config) {
	if logLevelFlag != "" {
		c.Log.Level = logLevelFlag
	}
	if artifactsFlag != "" {
		c.Artifacts.Dir = artifactsFlag
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "override log.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&artifactsFlag, "artifacts", "", "override artifacts.dir")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
