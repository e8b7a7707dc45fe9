package syncer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentops/creator-sync/internal/model"
)

func TestStateStartsNotRunning(t *testing.T) {
	s := NewState()
	st := s.Snapshot()
	assert.False(t, st.Running)
	assert.Nil(t, st.LastRunAt)
	assert.Nil(t, st.LastSummary)
	assert.Empty(t, st.LastError)
}

func TestStateTryStartRejectsConcurrent(t *testing.T) {
	s := NewState()
	require.True(t, s.TryStart())
	assert.False(t, s.TryStart())

	st := s.Snapshot()
	assert.True(t, st.Running)
	require.NotNil(t, st.LastRunAt)
}

func TestStateFinishWithSummary(t *testing.T) {
	s := NewState()
	require.True(t, s.TryStart())

	s.Finish(model.RunSummary{Phones: 10, OK: 8, Fail: 2}, nil)

	st := s.Snapshot()
	assert.False(t, st.Running)
	require.NotNil(t, st.LastSummary)
	assert.Equal(t, 10, st.LastSummary.Phones)
	assert.Equal(t, 8, st.LastSummary.OK)
	assert.Equal(t, 2, st.LastSummary.Fail)
	assert.Empty(t, st.LastError)

	// The slot is free again.
	assert.True(t, s.TryStart())
}

func TestStateFinishWithError(t *testing.T) {
	s := NewState()
	require.True(t, s.TryStart())
	s.Finish(model.RunSummary{}, assert.AnError)

	st := s.Snapshot()
	assert.False(t, st.Running)
	assert.Nil(t, st.LastSummary)
	assert.Equal(t, assert.AnError.Error(), st.LastError)
}

func TestStateSingleWinnerUnderContention(t *testing.T) {
	s := NewState()
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.TryStart() {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}
