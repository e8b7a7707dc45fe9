package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/talentops/creator-sync/internal/model"
	"github.com/talentops/creator-sync/internal/syncer"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestHealth(t *testing.T) {
	srv := newSyncServer(context.Background(), nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestTriggerStartsRun(t *testing.T) {
	ran := make(chan struct{})
	srv := newSyncServer(context.Background(), func(ctx context.Context) (model.RunSummary, error) {
		close(ran)
		return model.RunSummary{Phones: 3, OK: 2, Fail: 1}, nil
	})

	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sync/trigger", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "started", decodeBody(t, rec)["status"])

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("run was not invoked")
	}

	require.Eventually(t, func() bool {
		return !srv.state.Snapshot().Running
	}, time.Second, 5*time.Millisecond)

	st := srv.state.Snapshot()
	require.NotNil(t, st.LastSummary)
	assert.Equal(t, model.RunSummary{Phones: 3, OK: 2, Fail: 1}, *st.LastSummary)
	assert.Empty(t, st.LastError)
}

func TestTriggerRejectedWhileRunning(t *testing.T) {
	release := make(chan struct{})
	srv := newSyncServer(context.Background(), func(ctx context.Context) (model.RunSummary, error) {
		<-release
		return model.RunSummary{}, nil
	})
	defer close(release)

	h := srv.routes()

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/sync/trigger", nil))
	require.Equal(t, http.StatusAccepted, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/sync/trigger", nil))
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Equal(t, "already_running", decodeBody(t, second)["status"])
}

func TestStatusReportsFailure(t *testing.T) {
	done := make(chan struct{})
	srv := newSyncServer(context.Background(), func(ctx context.Context) (model.RunSummary, error) {
		defer close(done)
		return model.RunSummary{}, assert.AnError
	})

	h := srv.routes()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sync/trigger", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)

	<-done
	require.Eventually(t, func() bool {
		return !srv.state.Snapshot().Running
	}, time.Second, 5*time.Millisecond)

	status := httptest.NewRecorder()
	h.ServeHTTP(status, httptest.NewRequest(http.MethodGet, "/api/sync/status", nil))
	assert.Equal(t, http.StatusOK, status.Code)

	var st syncer.Status
	require.NoError(t, json.NewDecoder(status.Body).Decode(&st))
	assert.False(t, st.Running)
	assert.Nil(t, st.LastSummary)
	assert.Contains(t, st.LastError, assert.AnError.Error())
	require.NotNil(t, st.LastRunAt)
}
