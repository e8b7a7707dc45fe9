package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/talentops/creator-sync/internal/source"
	"github.com/talentops/creator-sync/internal/syncer"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List recent sync runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate(); err != nil {
			return err
		}

		provider, err := buildProvider(ctx, cfg)
		if err != nil {
			return eris.Wrap(err, "status: open source")
		}
		defer provider.Close() //nolint:errcheck

		pg, ok := provider.(*source.Postgres)
		if !ok {
			return eris.New("status: run history requires the postgres driver")
		}

		records, err := syncer.NewRunLog(pg.Pool()).List(ctx, statusLimit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		for _, r := range records {
			line := fmt.Sprintf("%s  started %s", r.ID, r.StartedAt.Format("2006-01-02 15:04:05"))
			switch {
			case r.Error != "":
				line += "  FAILED: " + r.Error
			case r.CompletedAt != nil:
				line += fmt.Sprintf("  phones=%d ok=%d fail=%d", r.Phones, r.OK, r.Fail)
			default:
				line += "  running"
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 20, "max runs to list")
	rootCmd.AddCommand(statusCmd)
}
