package syncer

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentops/creator-sync/internal/model"
)

func TestRunLogStart(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO sync_runs").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	log := NewRunLog(mock)
	id, err := log.Start(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunLogComplete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("UPDATE sync_runs").
		WithArgs(12, 10, 2, "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	log := NewRunLog(mock)
	err = log.Complete(context.Background(), "run-1", model.RunSummary{Phones: 12, OK: 10, Fail: 2})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunLogFail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("UPDATE sync_runs").
		WithArgs("fetch creators: boom", "run-2").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	log := NewRunLog(mock)
	require.NoError(t, log.Fail(context.Background(), "run-2", "fetch creators: boom"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunLogList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	started := time.Date(2026, time.August, 25, 9, 0, 0, 0, time.UTC)
	completed := started.Add(2 * time.Minute)
	mock.ExpectQuery("SELECT id, started_at").
		WithArgs(20).
		WillReturnRows(pgxmock.NewRows([]string{"id", "started_at", "completed_at", "phones", "ok", "fail", "error"}).
			AddRow("run-1", started, &completed, 12, 10, 2, "").
			AddRow("run-0", started.Add(-time.Hour), (*time.Time)(nil), 0, 0, 0, "fetch creators: boom"))

	log := NewRunLog(mock)
	records, err := log.List(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "run-1", records[0].ID)
	require.NotNil(t, records[0].CompletedAt)
	assert.Equal(t, 10, records[0].OK)

	assert.Equal(t, "run-0", records[1].ID)
	assert.Nil(t, records[1].CompletedAt)
	assert.Equal(t, "fetch creators: boom", records[1].Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncerRecordsRunLog(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO sync_runs").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE sync_runs").
		WithArgs(1, 1, 0, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	provider := &fakeProvider{rows: []model.Creator{agencyCreator(1, "100")}}
	s := New(provider, &fakeCRM{}, nil, Options{RunLog: NewRunLog(mock)})

	summary, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.RunSummary{Phones: 1, OK: 1}, summary)
	assert.NoError(t, mock.ExpectationsWereMet())
}
