package syncer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/talentops/creator-sync/internal/model"
	"github.com/talentops/creator-sync/internal/source"
)

// RunRecorder persists run outcomes for later inspection.
type RunRecorder interface {
	Start(ctx context.Context) (string, error)
	Complete(ctx context.Context, runID string, summary model.RunSummary) error
	Fail(ctx context.Context, runID, errMsg string) error
}

// RunRecord is a row in sync_runs.
type RunRecord struct {
	ID          string     `json:"id"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Phones      int        `json:"phones"`
	OK          int        `json:"ok"`
	Fail        int        `json:"fail"`
	Error       string     `json:"error,omitempty"`
}

// RunLog provides read/write access to the sync_runs table.
type RunLog struct {
	pool source.Pool
}

// NewRunLog creates a RunLog backed by the given connection pool.
func NewRunLog(pool source.Pool) *RunLog {
	return &RunLog{pool: pool}
}

// Start records the beginning of a run and returns its ID.
func (l *RunLog) Start(ctx context.Context) (string, error) {
	id := uuid.NewString()
	_, err := l.pool.Exec(ctx,
		`INSERT INTO sync_runs (id, started_at) VALUES ($1, now())`,
		id,
	)
	if err != nil {
		return "", eris.Wrap(err, "runlog: start run")
	}
	return id, nil
}

// Complete marks a run as finished with its summary.
func (l *RunLog) Complete(ctx context.Context, runID string, summary model.RunSummary) error {
	_, err := l.pool.Exec(ctx,
		`UPDATE sync_runs
		 SET completed_at = now(), phones = $1, ok = $2, fail = $3
		 WHERE id = $4`,
		summary.Phones, summary.OK, summary.Fail, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: complete run %s", runID)
	}
	return nil
}

// Fail marks a run as failed with an error message.
func (l *RunLog) Fail(ctx context.Context, runID, errMsg string) error {
	_, err := l.pool.Exec(ctx,
		`UPDATE sync_runs
		 SET completed_at = now(), error = $1
		 WHERE id = $2`,
		errMsg, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: fail run %s", runID)
	}
	return nil
}

// List returns the most recent runs, newest first.
func (l *RunLog) List(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT id, started_at, completed_at, phones, ok, fail, COALESCE(error, '')
		 FROM sync_runs ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: list runs")
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.CompletedAt, &r.Phones, &r.OK, &r.Fail, &r.Error); err != nil {
			return nil, eris.Wrap(err, "runlog: scan run")
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
