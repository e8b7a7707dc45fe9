package syncer

import (
	"sync"
	"time"

	"github.com/talentops/creator-sync/internal/model"
)

// Status is a point-in-time view of the process-wide run state.
type Status struct {
	Running     bool              `json:"running"`
	LastRunAt   *time.Time        `json:"last_run_at,omitempty"`
	LastSummary *model.RunSummary `json:"last_summary,omitempty"`
	LastError   string            `json:"last_error,omitempty"`
}

// State is the single-slot run guard: at most one sync run executes per
// process. A trigger while a run is active is rejected, never queued.
type State struct {
	mu          sync.Mutex
	running     bool
	lastRunAt   *time.Time
	lastSummary *model.RunSummary
	lastError   string
}

// NewState returns a not-running state, the condition at process start.
func NewState() *State {
	return &State{}
}

// TryStart attempts the not-running to running transition. It returns
// false without side effects when a run is already active.
func (s *State) TryStart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	now := time.Now().UTC()
	s.running = true
	s.lastRunAt = &now
	return true
}

// Finish clears the running flag and records the run's outcome, summary
// on success or the error marker on a batch-fatal failure.
func (s *State) Finish(summary model.RunSummary, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	if err != nil {
		s.lastSummary = nil
		s.lastError = err.Error()
		return
	}
	s.lastSummary = &summary
	s.lastError = ""
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Running:   s.running,
		LastError: s.lastError,
	}
	if s.lastRunAt != nil {
		t := *s.lastRunAt
		st.LastRunAt = &t
	}
	if s.lastSummary != nil {
		sum := *s.lastSummary
		st.LastSummary = &sum
	}
	return st
}
