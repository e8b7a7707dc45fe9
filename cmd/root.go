package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talentops/creator-sync/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "creator-sync",
	Short: "Reconcile creator records into the CRM",
	Long:  "Reads creator rows from the source of truth, dedupes them by canonical phone, and syncs or deletes the matching CRM contacts with tier and role tag replacement.",
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

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
