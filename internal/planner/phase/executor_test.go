package phase

import (
	"context"
	"errors"
	"testing"

	"github.com/forgeplan/g3planner/internal/logging"
)

// mockArtifacts implements ArtifactStore for testing
type mockArtifacts struct {
	files map[string]string
}

func (m *mockArtifacts) Exists(name string) bool { _, ok := m.files[name]; return ok }
func (m *mockArtifacts) Read(name string) (string, error) {
	content, ok := m.files[name]
	if !ok {
		return "", errors.New("not found")
	}
	return content, nil
}
func (m *mockArtifacts) Write(name, content string) error {
	if m.files == nil {
		m.files = map[string]string{}
	}
	m.files[name] = content
	return nil
}
func (m *mockArtifacts) Rename(oldName, newName string) error {
	m.files[newName] = m.files[oldName]
	delete(m.files, oldName)
	return nil
}
func (m *mockArtifacts) Delete(name string) error { delete(m.files, name); return nil }

// mockHistory implements HistoryJournal for testing
type mockHistory struct {
	events []string
}

func (m *mockHistory) Append(event string) error {
	m.events = append(m.events, event)
	return nil
}

// mockGateway implements RequirementsGateway for testing
type mockGateway struct{}

func (m *mockGateway) RefineRequirements(ctx context.Context, draft, feedback string) (string, error) {
	return draft, nil
}
func (m *mockGateway) SummariseRequirements(ctx context.Context, requirements string) (string, error) {
	return requirements, nil
}
func (m *mockGateway) GenerateCommitMessage(ctx context.Context, diffSummary string) (string, error) {
	return "chore: update", nil
}
func (m *mockGateway) RunDiscovery(ctx context.Context, userOneLiner string) (string, error) {
	return userOneLiner, nil
}

// mockCallbacks implements Callbacks for testing
type mockCallbacks struct{}

func (m *mockCallbacks) OnPhaseChange(from, to Phase)            {}
func (m *mockCallbacks) Prompt(message string) (string, error)   { return "", nil }
func (m *mockCallbacks) OnComplete(success bool, summary string) {}

// mockPhaseExecutor implements PhaseExecutor for testing
type mockPhaseExecutor struct {
	phase     Phase
	next      Phase
	executed  bool
	cancelled bool
	execErr   error
}

func (m *mockPhaseExecutor) Phase() Phase { return m.phase }
func (m *mockPhaseExecutor) Execute(ctx context.Context) (Phase, error) {
	m.executed = true
	return m.next, m.execErr
}
func (m *mockPhaseExecutor) Cancel() { m.cancelled = true }

func TestPhaseContextValidate(t *testing.T) {
	tests := []struct {
		name    string
		ctx     *PhaseContext
		wantErr error
	}{
		{
			name: "valid context with all required fields",
			ctx: &PhaseContext{
				Artifacts: &mockArtifacts{},
				History:   &mockHistory{},
				Gateway:   &mockGateway{},
			},
			wantErr: nil,
		},
		{
			name: "valid context with all fields including optional",
			ctx: &PhaseContext{
				Artifacts: &mockArtifacts{},
				History:   &mockHistory{},
				Gateway:   &mockGateway{},
				Logger:    logging.NopLogger(),
				Callbacks: &mockCallbacks{},
			},
			wantErr: nil,
		},
		{
			name: "nil artifacts returns ErrNilArtifacts",
			ctx: &PhaseContext{
				Artifacts: nil,
				History:   &mockHistory{},
				Gateway:   &mockGateway{},
			},
			wantErr: ErrNilArtifacts,
		},
		{
			name: "nil history returns ErrNilHistory",
			ctx: &PhaseContext{
				Artifacts: &mockArtifacts{},
				History:   nil,
				Gateway:   &mockGateway{},
			},
			wantErr: ErrNilHistory,
		},
		{
			name: "nil gateway returns ErrNilGateway",
			ctx: &PhaseContext{
				Artifacts: &mockArtifacts{},
				History:   &mockHistory{},
				Gateway:   nil,
			},
			wantErr: ErrNilGateway,
		},
		{
			name: "multiple nil fields returns first error (artifacts)",
			ctx: &PhaseContext{
				Artifacts: nil,
				History:   nil,
				Gateway:   nil,
			},
			wantErr: ErrNilArtifacts,
		},
		{
			name: "nil git is allowed (--no-git)",
			ctx: &PhaseContext{
				Artifacts: &mockArtifacts{},
				History:   &mockHistory{},
				Gateway:   &mockGateway{},
				Git:       nil,
			},
			wantErr: nil,
		},
		{
			name: "nil logger is allowed",
			ctx: &PhaseContext{
				Artifacts: &mockArtifacts{},
				History:   &mockHistory{},
				Gateway:   &mockGateway{},
				Logger:    nil,
			},
			wantErr: nil,
		},
		{
			name: "nil callbacks is allowed",
			ctx: &PhaseContext{
				Artifacts: &mockArtifacts{},
				History:   &mockHistory{},
				Gateway:   &mockGateway{},
				Callbacks: nil,
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ctx.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPhaseContextGetLogger(t *testing.T) {
	t.Run("returns logger when set", func(t *testing.T) {
		logger := logging.NopLogger()
		ctx := &PhaseContext{
			Artifacts: &mockArtifacts{},
			History:   &mockHistory{},
			Gateway:   &mockGateway{},
			Logger:    logger,
		}

		got := ctx.GetLogger()
		if got != logger {
			t.Error("GetLogger() should return the set logger")
		}
	})

	t.Run("returns NopLogger when logger is nil", func(t *testing.T) {
		ctx := &PhaseContext{
			Artifacts: &mockArtifacts{},
			History:   &mockHistory{},
			Gateway:   &mockGateway{},
			Logger:    nil,
		}

		got := ctx.GetLogger()
		if got == nil {
			t.Error("GetLogger() should return a NopLogger, not nil")
		}
	})
}

func TestPhaseExecutorInterface(t *testing.T) {
	t.Run("executor returns correct phase", func(t *testing.T) {
		executor := &mockPhaseExecutor{phase: PhaseStartup}
		if executor.Phase() != PhaseStartup {
			t.Errorf("Phase() = %v, want %v", executor.Phase(), PhaseStartup)
		}
	})

	t.Run("executor Execute is called", func(t *testing.T) {
		executor := &mockPhaseExecutor{phase: PhaseImplement, next: PhaseComplete}
		ctx := context.Background()

		next, err := executor.Execute(ctx)
		if err != nil {
			t.Errorf("Execute() unexpected error: %v", err)
		}
		if next != PhaseComplete {
			t.Errorf("Execute() next = %v, want %v", next, PhaseComplete)
		}
		if !executor.executed {
			t.Error("Execute() was not called")
		}
	})

	t.Run("executor Execute returns error", func(t *testing.T) {
		expectedErr := errors.New("execution failed")
		executor := &mockPhaseExecutor{
			phase:   PhaseImplement,
			execErr: expectedErr,
		}
		ctx := context.Background()

		_, err := executor.Execute(ctx)
		if err != expectedErr {
			t.Errorf("Execute() error = %v, want %v", err, expectedErr)
		}
	})

	t.Run("executor Cancel is called", func(t *testing.T) {
		executor := &mockPhaseExecutor{phase: PhaseImplement}

		executor.Cancel()
		if !executor.cancelled {
			t.Error("Cancel() was not called")
		}
	})

	t.Run("executor Cancel is idempotent", func(t *testing.T) {
		executor := &mockPhaseExecutor{phase: PhaseImplement}

		executor.Cancel()
		executor.Cancel()
		executor.Cancel()

		if !executor.cancelled {
			t.Error("Cancel() was not called")
		}
	})
}

func TestPhaseConstants(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseStartup, "startup"},
		{PhaseRecoveryPrompt, "recovery_prompt"},
		{PhaseDiscovery, "discovery"},
		{PhaseRefine, "refine"},
		{PhaseImplement, "implement"},
		{PhaseComplete, "complete"},
		{PhaseFailed, "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if string(tt.phase) != tt.want {
				t.Errorf("Phase constant = %v, want %v", string(tt.phase), tt.want)
			}
		})
	}
}

func TestValidationErrorMessages(t *testing.T) {
	t.Run("ErrNilArtifacts has descriptive message", func(t *testing.T) {
		msg := ErrNilArtifacts.Error()
		if msg != "phase context: artifacts store is required" {
			t.Errorf("ErrNilArtifacts.Error() = %q, want descriptive message", msg)
		}
	})

	t.Run("ErrNilHistory has descriptive message", func(t *testing.T) {
		msg := ErrNilHistory.Error()
		if msg != "phase context: history journal is required" {
			t.Errorf("ErrNilHistory.Error() = %q, want descriptive message", msg)
		}
	})

	t.Run("ErrNilGateway has descriptive message", func(t *testing.T) {
		msg := ErrNilGateway.Error()
		if msg != "phase context: requirements gateway is required" {
			t.Errorf("ErrNilGateway.Error() = %q, want descriptive message", msg)
		}
	})
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from Phase
		to   Phase
		want bool
	}{
		{"startup to recovery prompt", PhaseStartup, PhaseRecoveryPrompt, true},
		{"startup to discovery", PhaseStartup, PhaseDiscovery, true},
		{"startup to refine", PhaseStartup, PhaseRefine, true},
		{"startup to implement directly is invalid", PhaseStartup, PhaseImplement, false},
		{"recovery prompt to implement", PhaseRecoveryPrompt, PhaseImplement, true},
		{"recovery prompt to complete", PhaseRecoveryPrompt, PhaseComplete, true},
		{"discovery to refine", PhaseDiscovery, PhaseRefine, true},
		{"refine to implement", PhaseRefine, PhaseImplement, true},
		{"implement to complete", PhaseImplement, PhaseComplete, true},
		{"complete is terminal", PhaseComplete, PhaseImplement, false},
		{"failed is terminal", PhaseFailed, PhaseStartup, false},
		{"unknown source phase", Phase("bogus"), PhaseComplete, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%v, %v) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	if !PhaseComplete.IsTerminal() {
		t.Error("PhaseComplete.IsTerminal() = false, want true")
	}
	if !PhaseFailed.IsTerminal() {
		t.Error("PhaseFailed.IsTerminal() = false, want true")
	}
	if PhaseImplement.IsTerminal() {
		t.Error("PhaseImplement.IsTerminal() = true, want false")
	}
}
