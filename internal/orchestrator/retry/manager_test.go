package retry

import (
	"sync"
	"testing"
)

func TestNewManager(t *testing.T) {
	m := NewManager()
	if m == nil {
		t.Fatal("NewManager() returned nil")
	}
	if m.states == nil {
		t.Error("NewManager() states map is nil")
	}
}

func TestGetOrCreateState(t *testing.T) {
	tests := []struct {
		name       string
		turnID     string
		maxRetries int
		callTwice  bool
	}{
		{
			name:       "create new state",
			turnID:     "turn-1",
			maxRetries: 3,
			callTwice:  false,
		},
		{
			name:       "get existing state",
			turnID:     "turn-2",
			maxRetries: 5,
			callTwice:  true,
		},
		{
			name:       "zero max retries",
			turnID:     "turn-3",
			maxRetries: 0,
			callTwice:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager()

			state1 := m.GetOrCreateState(tt.turnID, tt.maxRetries)
			if state1 == nil {
				t.Fatal("GetOrCreateState() returned nil")
			}
			if state1.TurnID != tt.turnID {
				t.Errorf("TurnID = %q, want %q", state1.TurnID, tt.turnID)
			}
			if state1.MaxRetries != tt.maxRetries {
				t.Errorf("MaxRetries = %d, want %d", state1.MaxRetries, tt.maxRetries)
			}
			if state1.RetryCount != 0 {
				t.Errorf("RetryCount = %d, want 0", state1.RetryCount)
			}

			if tt.callTwice {
				state2 := m.GetOrCreateState(tt.turnID, tt.maxRetries+10) // different maxRetries
				if state2 != state1 {
					t.Error("second call returned different state")
				}
				// maxRetries should NOT change on second call
				if state2.MaxRetries != tt.maxRetries {
					t.Errorf("MaxRetries changed on second call: got %d, want %d", state2.MaxRetries, tt.maxRetries)
				}
			}
		})
	}
}

func TestGetState(t *testing.T) {
	m := NewManager()

	// Non-existent turn
	state := m.GetState("nonexistent")
	if state != nil {
		t.Error("GetState() for nonexistent turn should return nil")
	}

	// Create and get
	m.GetOrCreateState("turn-1", 3)
	state = m.GetState("turn-1")
	if state == nil {
		t.Fatal("GetState() for existing turn returned nil")
	}
	if state.TurnID != "turn-1" {
		t.Errorf("TurnID = %q, want %q", state.TurnID, "turn-1")
	}
}

func TestRecordAttempt(t *testing.T) {
	t.Run("record failure", func(t *testing.T) {
		m := NewManager()
		m.GetOrCreateState("turn-1", 3)

		m.RecordAttempt("turn-1", false)
		state := m.GetState("turn-1")
		if state.RetryCount != 1 {
			t.Errorf("RetryCount = %d, want 1", state.RetryCount)
		}
		if state.Succeeded {
			t.Error("Succeeded should be false")
		}

		m.RecordAttempt("turn-1", false)
		state = m.GetState("turn-1")
		if state.RetryCount != 2 {
			t.Errorf("RetryCount = %d, want 2", state.RetryCount)
		}
	})

	t.Run("record success", func(t *testing.T) {
		m := NewManager()
		m.GetOrCreateState("turn-2", 3)
		m.RecordAttempt("turn-2", false) // First attempt fails

		m.RecordAttempt("turn-2", true) // Second attempt succeeds
		state := m.GetState("turn-2")
		if !state.Succeeded {
			t.Error("Succeeded should be true")
		}
		// RetryCount should remain at 1 (only failures increment)
		if state.RetryCount != 1 {
			t.Errorf("RetryCount = %d, want 1", state.RetryCount)
		}
	})

	t.Run("nonexistent turn", func(t *testing.T) {
		m := NewManager()
		// Should not panic
		m.RecordAttempt("nonexistent", false)
		m.RecordAttempt("nonexistent", true)
	})
}

func TestSetLastError(t *testing.T) {
	m := NewManager()
	m.GetOrCreateState("turn-1", 3)

	m.SetLastError("turn-1", "first error")
	state := m.GetState("turn-1")
	if state.LastError != "first error" {
		t.Errorf("LastError = %q, want %q", state.LastError, "first error")
	}

	m.SetLastError("turn-1", "second error")
	state = m.GetState("turn-1")
	if state.LastError != "second error" {
		t.Errorf("LastError = %q, want %q", state.LastError, "second error")
	}

	// Non-existent turn should not panic
	m.SetLastError("nonexistent", "some error")
}

func TestConcurrentAccess(t *testing.T) {
	m := NewManager()
	const numGoroutines = 10
	const numOperations = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := range numGoroutines {
		go func(id int) {
			defer wg.Done()
			turnID := "turn"

			for j := range numOperations {
				m.GetOrCreateState(turnID, 10)
				m.RecordAttempt(turnID, j%2 == 0)
				m.SetLastError(turnID, "error")
				m.GetState(turnID)
			}
		}(i)
	}

	wg.Wait()

	// Should complete without data race (run with -race flag)
	state := m.GetState("turn")
	if state == nil {
		t.Error("state should exist after concurrent operations")
	}
}

func TestRetryWorkflow(t *testing.T) {
	// Simulate a realistic coach/player retry workflow within one turn
	m := NewManager()
	turnID := "turn-1"
	maxRetries := 3

	state := m.GetOrCreateState(turnID, maxRetries)

	m.RecordAttempt(turnID, false)
	m.SetLastError(turnID, "player invocation failed")
	if state.RetryCount != 1 {
		t.Errorf("RetryCount = %d after first failure, want 1", state.RetryCount)
	}

	m.RecordAttempt(turnID, false)
	m.SetLastError(turnID, "player invocation failed again")
	if state.RetryCount != 2 {
		t.Errorf("RetryCount = %d after second failure, want 2", state.RetryCount)
	}

	m.RecordAttempt(turnID, true)
	if !state.Succeeded {
		t.Error("turn should be marked as succeeded")
	}
}
