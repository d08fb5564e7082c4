// Package phase also defines the PhaseExecutor interface implemented by
// each phase of the planner lifecycle: startup, recovery prompt, discovery,
// refine, and implement.
package phase

import (
	"context"
	"errors"

	"github.com/forgeplan/g3planner/internal/logging"
)

// PhaseExecutor defines the interface that all phase executors must implement.
// Each phase of the planner lifecycle (startup, recovery prompt, discovery,
// refine, implement) has a dedicated executor that implements this interface.
//
// Executors are responsible for:
//   - Identifying their phase via Phase()
//   - Running their phase logic via Execute()
//   - Supporting graceful cancellation via Cancel()
//
// The Execute method receives a context for cancellation and should check
// ctx.Done() periodically for long-running operations.
type PhaseExecutor interface {
	// Phase returns the Phase that this executor handles.
	Phase() Phase

	// Execute runs the phase logic and returns the phase to transition to
	// next. It should respect the provided context for cancellation.
	Execute(ctx context.Context) (next Phase, err error)

	// Cancel signals the executor to stop any in-progress work.
	// Cancel is safe to call multiple times.
	Cancel()
}

// ArtifactStore is the subset of component A's operations phase executors
// need: existence checks, reads, writes, and the rename that promotes a
// requirements draft to the active requirements file.
type ArtifactStore interface {
	Exists(name string) bool
	Read(name string) (string, error)
	Write(name string, content string) error
	Rename(oldName, newName string) error
	Delete(name string) error
}

// HistoryJournal is the subset of component B's operations phase executors
// need to record lifecycle events before acting on them.
type HistoryJournal interface {
	Append(event string) error
}

// GitBridge is the subset of component C's operations phase executors need:
// preflight checks, branch/status queries, and the history-gated commit.
type GitBridge interface {
	EnsureRepo() error
	CurrentBranch() (string, error)
	WorkingTreeClean(ignored ...string) (bool, error)
	CommitWithHistory(journal HistoryJournal, message string) error
}

// RequirementsGateway is the subset of component F's operations phase
// executors need: refinement, summarisation, commit messages, and discovery.
type RequirementsGateway interface {
	RefineRequirements(ctx context.Context, draft, feedback string) (string, error)
	SummariseRequirements(ctx context.Context, requirements string) (string, error)
	GenerateCommitMessage(ctx context.Context, diffSummary string) (string, error)
	RunDiscovery(ctx context.Context, userOneLiner string) (string, error)
}

// PhaseContext holds the dependencies required by phase executors. Executors
// read and write through these narrow interfaces rather than holding
// concrete types, so each can be exercised with fakes in tests.
type PhaseContext struct {
	// Artifacts provides plan-directory file operations. Must not be nil.
	Artifacts ArtifactStore

	// History is the append-only planner_history.txt journal. Must not be nil.
	History HistoryJournal

	// Git provides repository operations. Nil when running with --no-git.
	Git GitBridge

	// Gateway provides provider calls for refinement, summarisation,
	// commit messages, and discovery. Must not be nil.
	Gateway RequirementsGateway

	// Logger is used for structured logging throughout phase execution.
	// If nil, a NopLogger will be used (no logging).
	Logger *logging.Logger

	// Callbacks notifies the driver of phase transitions and prompts it
	// to read from stdin. May be nil if no notifications are needed.
	Callbacks Callbacks
}

// Callbacks defines the driver-level notification methods phase executors
// call out to: phase changes, user prompts, and completion.
type Callbacks interface {
	// OnPhaseChange is called when the planner phase changes.
	OnPhaseChange(from, to Phase)

	// Prompt displays a message and reads a line of user input.
	Prompt(message string) (string, error)

	// OnComplete is called when the cycle finishes.
	OnComplete(success bool, summary string)
}

// Validation errors returned by PhaseContext.Validate
var (
	// ErrNilArtifacts is returned when PhaseContext.Artifacts is nil.
	ErrNilArtifacts = errors.New("phase context: artifacts store is required")

	// ErrNilHistory is returned when PhaseContext.History is nil.
	ErrNilHistory = errors.New("phase context: history journal is required")

	// ErrNilGateway is returned when PhaseContext.Gateway is nil.
	ErrNilGateway = errors.New("phase context: requirements gateway is required")
)

// Validate checks that the PhaseContext has all required fields set.
// Returns an error describing the first missing required field, or nil if valid.
//
// Required fields:
//   - Artifacts: must not be nil
//   - History: must not be nil
//   - Gateway: must not be nil
//
// Optional fields:
//   - Git: nil when running with --no-git
//   - Logger: if nil, executors should use logging.NopLogger()
//   - Callbacks: may be nil if no notifications are needed
func (pc *PhaseContext) Validate() error {
	if pc.Artifacts == nil {
		return ErrNilArtifacts
	}
	if pc.History == nil {
		return ErrNilHistory
	}
	if pc.Gateway == nil {
		return ErrNilGateway
	}
	return nil
}

// GetLogger returns the Logger from the context, or a NopLogger if Logger is nil.
func (pc *PhaseContext) GetLogger() *logging.Logger {
	if pc.Logger != nil {
		return pc.Logger
	}
	return logging.NopLogger()
}
