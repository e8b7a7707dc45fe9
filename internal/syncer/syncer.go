// Package syncer drives one reconciliation batch: it reads the creator
// snapshot, reconciles identities, and applies the per-identity CRM
// workflow sequentially.
package syncer

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/talentops/creator-sync/internal/model"
	"github.com/talentops/creator-sync/internal/reconcile"
	"github.com/talentops/creator-sync/internal/source"
	"github.com/talentops/creator-sync/pkg/crm"
)

// CRM is the contact API surface the orchestrator drives. *crm.Client
// implements it; tests substitute a fake.
type CRM interface {
	UpsertContact(ctx context.Context, phone string, req crm.UpsertRequest) (crm.Response, error)
	DeleteContact(ctx context.Context, phone string) (crm.Response, error)
	AddTags(ctx context.Context, phone string, tags []string) (crm.Response, error)
	DeleteTags(ctx context.Context, phone string, tags []string) (crm.Response, error)
	UpdateLifecycle(ctx context.Context, phone, name string) (crm.Response, error)
}

// Options configures a Syncer.
type Options struct {
	// RowLimit bounds the source snapshot.
	RowLimit int
	// TierTagUniverse is the full set of tier tags to replace on each
	// sync. An empty universe skips tier tag replacement entirely.
	TierTagUniverse []string
	// RunLog, when set, persists each run's outcome. Best effort: run
	// log failures are logged, never fatal.
	RunLog RunRecorder
}

// Syncer processes identities strictly sequentially; no identity's CRM
// calls overlap another's.
type Syncer struct {
	source source.Provider
	crm    CRM
	pacer  Pacer
	opts   Options
}

// New assembles a Syncer.
func New(provider source.Provider, client CRM, pacer Pacer, opts Options) *Syncer {
	if opts.RowLimit <= 0 {
		opts.RowLimit = 500
	}
	if pacer == nil {
		pacer = nopPacer{}
	}
	return &Syncer{source: provider, crm: client, pacer: pacer, opts: opts}
}

// Run executes one batch. The returned error is batch-fatal only (the
// source read failed or the context was cancelled); individual identity
// failures are folded into the summary's Fail counter.
func (s *Syncer) Run(ctx context.Context) (model.RunSummary, error) {
	log := zap.L().With(zap.String("component", "syncer"))

	runID := s.recordStart(ctx, log)

	// The read phase completes before any CRM work begins.
	rows, err := s.source.ListCreators(ctx, s.opts.RowLimit)
	if err != nil {
		err = eris.Wrap(err, "syncer: fetch creators")
		s.recordFail(ctx, log, runID, err)
		return model.RunSummary{}, err
	}

	actions := reconcile.Reconcile(rows)
	log.Info("reconciled batch",
		zap.Int("rows", len(rows)),
		zap.Int("identities", len(actions)),
	)

	var summary model.RunSummary
	for _, action := range actions {
		if err := s.pacer.Wait(ctx); err != nil {
			err = eris.Wrap(err, "syncer: pacing interrupted")
			s.recordFail(ctx, log, runID, err)
			return summary, err
		}

		summary.Phones++
		if err := s.processIdentity(ctx, action); err != nil {
			summary.Fail++
			log.Error("identity sync failed",
				zap.Int64("user_id", action.Creator.UserID),
				zap.String("phone", action.Phone),
				zap.String("action", string(action.Action)),
				zap.Error(err),
			)
			continue
		}
		summary.OK++
	}

	log.Info("batch complete",
		zap.Int("phones", summary.Phones),
		zap.Int("ok", summary.OK),
		zap.Int("fail", summary.Fail),
	)
	s.recordComplete(ctx, log, runID, summary)
	return summary, nil
}

// processIdentity applies the delete branch or the full sync sequence for
// one identity. The first failed step aborts the identity's remaining
// steps; the caller decides what that means for the batch.
func (s *Syncer) processIdentity(ctx context.Context, action reconcile.Reconciled) error {
	if action.Action == reconcile.ActionDelete {
		resp, err := s.crm.DeleteContact(ctx, action.Phone)
		return stepResult("delete contact", resp, err)
	}

	d := deriveFields(action.Creator, action.Phone)

	resp, err := s.crm.UpsertContact(ctx, action.Phone, d.upsert)
	if err := stepResult("upsert contact", resp, err); err != nil {
		return err
	}

	resp, err = s.crm.DeleteTags(ctx, action.Phone, roleTagReplacementSet)
	if err := stepResult("delete role tags", resp, err); err != nil {
		return err
	}
	if d.roleTag != "" {
		resp, err = s.crm.AddTags(ctx, action.Phone, []string{d.roleTag})
		if err := stepResult("add role tag", resp, err); err != nil {
			return err
		}
	}

	if len(s.opts.TierTagUniverse) > 0 {
		resp, err = s.crm.DeleteTags(ctx, action.Phone, s.opts.TierTagUniverse)
		if err := stepResult("delete tier tags", resp, err); err != nil {
			return err
		}
		if d.tierLabel != "" {
			resp, err = s.crm.AddTags(ctx, action.Phone, []string{d.tierLabel})
			if err := stepResult("add tier tag", resp, err); err != nil {
				return err
			}
		}
	}

	resp, err = s.crm.UpdateLifecycle(ctx, action.Phone, d.lifecycle)
	return stepResult("update lifecycle", resp, err)
}

// stepResult folds a CRM response and transport error into one step error.
func stepResult(step string, resp crm.Response, err error) error {
	if err != nil {
		return eris.Wrapf(err, "syncer: %s", step)
	}
	if !resp.OK {
		return eris.Errorf("syncer: %s: status %d: %s", step, resp.Status, resp.Body)
	}
	return nil
}

func (s *Syncer) recordStart(ctx context.Context, log *zap.Logger) string {
	if s.opts.RunLog == nil {
		return ""
	}
	id, err := s.opts.RunLog.Start(ctx)
	if err != nil {
		log.Warn("run log start failed", zap.Error(err))
		return ""
	}
	return id
}

func (s *Syncer) recordComplete(ctx context.Context, log *zap.Logger, runID string, summary model.RunSummary) {
	if s.opts.RunLog == nil || runID == "" {
		return
	}
	if err := s.opts.RunLog.Complete(ctx, runID, summary); err != nil {
		log.Warn("run log complete failed", zap.String("run_id", runID), zap.Error(err))
	}
}

func (s *Syncer) recordFail(ctx context.Context, log *zap.Logger, runID string, runErr error) {
	if s.opts.RunLog == nil || runID == "" {
		return
	}
	if err := s.opts.RunLog.Fail(ctx, runID, runErr.Error()); err != nil {
		log.Warn("run log fail-mark failed", zap.String("run_id", runID), zap.Error(err))
	}
}
