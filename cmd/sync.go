package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync batch synchronously",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate(); err != nil {
			return err
		}

		provider, err := buildProvider(ctx, cfg)
		if err != nil {
			return eris.Wrap(err, "sync: open source")
		}
		defer provider.Close() //nolint:errcheck

		s := buildSyncer(provider, cfg)

		zap.L().Info("starting sync batch",
			zap.String("driver", cfg.Source.Driver),
			zap.Int("row_limit", cfg.Source.RowLimit),
		)

		summary, err := s.Run(ctx)
		if err != nil {
			return eris.Wrap(err, "sync")
		}

		fmt.Printf("Processed %d phones: %d ok, %d failed\n", summary.Phones, summary.OK, summary.Fail)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
