// Package retry runs operations with jittered exponential-backoff retry
// (ExecuteWithRetry) and keeps per-turn retry bookkeeping (Manager): the
// failed-attempt count, the last error, and whether a turn succeeded.
package retry

import (
	"sync"
)

// TurnState tracks retry bookkeeping for one coach/player inner-loop turn:
// the number of failed attempts recorded for it (one counter shared by both
// roles), the most recent error either role hit, and whether it succeeded.
type TurnState struct {
	TurnID     string `json:"turn_id"`
	RetryCount int    `json:"retry_count"`
	MaxRetries int    `json:"max_retries"`
	LastError  string `json:"last_error,omitempty"`
	Succeeded  bool   `json:"succeeded,omitempty"`
}

// Manager manages retry state for the turns of a single Implement-phase
// inner loop. It is thread-safe and can be used concurrently, though in
// practice ImplementExecutor drives it from a single goroutine. Unlike the
// teacher's task-persistence Manager it carries no commit-count or
// save/restore surface: this system runs one process per cycle and never
// resumes a Manager across a restart, so RetryCount/LastError/Succeeded is
// the entire bookkeeping ImplementExecutor's per-turn retries need.
type Manager struct {
	mu     sync.RWMutex
	states map[string]*TurnState
}

// NewManager creates a new retry manager.
func NewManager() *Manager {
	return &Manager{
		states: make(map[string]*TurnState),
	}
}

// GetOrCreateState returns or creates retry state for a turn.
// If the state doesn't exist, it creates one with the given maxRetries.
func (m *Manager) GetOrCreateState(turnID string, maxRetries int) *TurnState {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, exists := m.states[turnID]
	if !exists {
		state = &TurnState{
			TurnID:     turnID,
			MaxRetries: maxRetries,
		}
		m.states[turnID] = state
	}
	return state
}

// GetState returns the retry state for a turn, or nil if not found.
func (m *Manager) GetState(turnID string) *TurnState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.states[turnID]
}

// RecordAttempt records an attempt for a turn.
// If success is true, the turn is marked as succeeded; later attempts can still be recorded.
// If success is false, the retry count is incremented.
func (m *Manager) RecordAttempt(turnID string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, exists := m.states[turnID]
	if !exists {
		return
	}

	if success {
		state.Succeeded = true
	} else {
		state.RetryCount++
	}
}

// SetLastError sets the last error message for a turn.
func (m *Manager) SetLastError(turnID string, errMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, exists := m.states[turnID]
	if !exists {
		return
	}
	state.LastError = errMsg
}
