package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/talentops/creator-sync/internal/source"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the source-of-truth schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate(); err != nil {
			return err
		}

		provider, err := buildProvider(ctx, cfg)
		if err != nil {
			return eris.Wrap(err, "migrate: open source")
		}
		defer provider.Close() //nolint:errcheck

		switch p := provider.(type) {
		case *source.Postgres:
			err = source.MigratePostgres(ctx, p.Pool())
		case *source.SQLite:
			err = source.MigrateSQLite(ctx, p.DB())
		default:
			err = eris.Errorf("migrate: unsupported provider %T", provider)
		}
		if err != nil {
			return err
		}

		fmt.Println("Schema up to date.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
