package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/talentops/creator-sync/internal/config"
	"github.com/talentops/creator-sync/internal/resilience"
	"github.com/talentops/creator-sync/internal/source"
	"github.com/talentops/creator-sync/internal/syncer"
	"github.com/talentops/creator-sync/internal/tier"
	"github.com/talentops/creator-sync/pkg/crm"
)

// buildProvider opens the configured source-of-truth driver.
func buildProvider(ctx context.Context, cfg *config.Config) (source.Provider, error) {
	switch cfg.Source.Driver {
	case "postgres":
		return source.NewPostgres(ctx, cfg.Source.DatabaseURL)
	case "sqlite":
		return source.NewSQLite(cfg.Source.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown source driver %q", cfg.Source.Driver)
	}
}

// buildSyncer assembles the orchestrator from configuration. The run log
// is only available on the postgres driver, which shares its pool.
func buildSyncer(provider source.Provider, cfg *config.Config) *syncer.Syncer {
	client := crm.NewClient(cfg.CRM.Token, crm.Endpoints{
		UpsertContact:   cfg.CRM.Endpoints.UpsertContact,
		DeleteContact:   cfg.CRM.Endpoints.DeleteContact,
		AddTags:         cfg.CRM.Endpoints.AddTags,
		DeleteTags:      cfg.CRM.Endpoints.DeleteTags,
		UpdateLifecycle: cfg.CRM.Endpoints.UpdateLifecycle,
	}, crm.WithRetryPolicy(resilience.Policy{
		MaxAttempts: cfg.CRM.Retry.MaxAttempts,
		BaseDelay:   cfg.CRM.Retry.BaseDelay,
		MaxDelay:    cfg.CRM.Retry.MaxDelay,
	}))

	opts := syncer.Options{
		RowLimit:        cfg.Source.RowLimit,
		TierTagUniverse: tier.TagUniverse(cfg.Sync.ExtraTierTagList()),
	}
	if pg, ok := provider.(*source.Postgres); ok {
		opts.RunLog = syncer.NewRunLog(pg.Pool())
	}

	return syncer.New(provider, client, syncer.NewIntervalPacer(cfg.Sync.PacingInterval), opts)
}
