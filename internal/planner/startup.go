package planner

import (
	"context"
	"fmt"
	"os"

	"github.com/forgeplan/g3planner/internal/artifact"
	"github.com/forgeplan/g3planner/internal/choice"
	"github.com/forgeplan/g3planner/internal/gitbridge"
	"github.com/forgeplan/g3planner/internal/logging"
	"github.com/forgeplan/g3planner/internal/planner/phase"
)

// WorkspacePathEnv and TodoPathEnv are the two environment variables the
// state machine sets for downstream sub-agents: G3_WORKSPACE_PATH before
// any provider or sub-agent is constructed, and G3_TODO_PATH at Implement
// entry.
const (
	WorkspacePathEnv = "G3_WORKSPACE_PATH"
	TodoPathEnv      = "G3_TODO_PATH"
)

// StartupExecutor implements phase.PhaseExecutor for PhaseStartup: it
// ensures the plan directory and planner_history.txt exist, runs git
// preflight when UseGit, exports G3_WORKSPACE_PATH before any provider is
// touched, and derives the next phase from the reconstructed CycleState.
//
// StartupExecutor holds the concrete *gitbridge.Bridge rather than the
// narrow phase.GitBridge interface because it needs CheckDirtyFiles'
// richer DirtyFiles bucketing for the dirty-tree prompt, which the
// interface (shared with the simpler needs of Refine and Complete) does
// not expose.
type StartupExecutor struct {
	cfg       *Config
	store     *artifact.Store
	git       *gitbridge.Bridge
	callbacks phase.Callbacks
	logger    *logging.Logger
}

// NewStartupExecutor assembles a StartupExecutor. callbacks may be nil in
// tests that never reach a prompt (UseGit disabled and clean fresh state).
func NewStartupExecutor(cfg *Config, store *artifact.Store, git *gitbridge.Bridge, callbacks phase.Callbacks, logger *logging.Logger) *StartupExecutor {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &StartupExecutor{cfg: cfg, store: store, git: git, callbacks: callbacks, logger: logger}
}

func (s *StartupExecutor) Phase() phase.Phase { return phase.PhaseStartup }

// Cancel is a no-op: Startup performs no long-running work that a
// cancellation could usefully interrupt mid-step, beyond what ctx itself
// already governs.
func (s *StartupExecutor) Cancel() {}

// Execute runs the Startup phase. A returned (PhaseFailed, nil) means the
// user explicitly chose to quit at a prompt — the driver's convention is
// that PhaseFailed with a nil error is a clean, zero-exit-code quit, while
// PhaseFailed with a non-nil error is a genuine pre-flight failure.
func (s *StartupExecutor) Execute(ctx context.Context) (phase.Phase, error) {
	if err := s.store.EnsurePlanDir(); err != nil {
		return phase.PhaseFailed, err
	}
	if err := s.store.EnsureHistoryFile(); err != nil {
		return phase.PhaseFailed, err
	}

	if s.cfg.UseGit {
		next, err := s.gitPreflight(ctx)
		if next != "" || err != nil {
			return next, err
		}
	}

	if err := os.Setenv(WorkspacePathEnv, s.cfg.Workspace); err != nil {
		return phase.PhaseFailed, err
	}

	switch DetectCycleState(s.store) {
	case InProgress:
		return phase.PhaseRecoveryPrompt, nil
	default:
		if !s.store.Exists(artifact.NewRequirementsFile) {
			return phase.PhaseDiscovery, nil
		}
		return phase.PhaseRefine, nil
	}
}

// gitPreflight runs EnsureRepo, the branch-confirmation prompt, and the
// dirty-tree prompt. A non-empty returned phase short-circuits Execute
// (either PhaseFailed for a quit/failure, or "" to continue Startup).
func (s *StartupExecutor) gitPreflight(ctx context.Context) (phase.Phase, error) {
	if err := s.git.EnsureRepo(ctx); err != nil {
		return phase.PhaseFailed, err
	}

	branch, err := s.git.CurrentBranch(ctx)
	if err != nil {
		return phase.PhaseFailed, err
	}

	if s.callbacks != nil {
		answer, err := s.callbacks.Prompt(fmt.Sprintf("Current branch: %s. Continue? [Y/n/q] ", branch))
		if err != nil {
			return phase.PhaseFailed, err
		}
		confirm, ok := choice.ParseBranchConfirm(answer)
		if !ok || confirm == choice.BranchConfirmQuit {
			return phase.PhaseFailed, nil
		}
	}

	dirty, err := s.git.CheckDirtyFiles(ctx, gitbridge.DefaultIgnoredForDirtyCheck)
	if err != nil {
		return phase.PhaseFailed, err
	}
	if !dirty.IsEmpty() && s.callbacks != nil {
		answer, err := s.callbacks.Prompt(fmt.Sprintf("Working tree has uncommitted changes:\n%s\nProceed anyway? [Y/n/q] ", dirty.Display()))
		if err != nil {
			return phase.PhaseFailed, err
		}
		proceed, ok := choice.ParseDirtyFiles(answer)
		if !ok || proceed == choice.DirtyFilesQuit {
			return phase.PhaseFailed, nil
		}
	}

	return "", nil
}

var _ phase.PhaseExecutor = (*StartupExecutor)(nil)
