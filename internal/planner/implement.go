package planner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/forgeplan/g3planner/internal/artifact"
	"github.com/forgeplan/g3planner/internal/dispatch"
	"github.com/forgeplan/g3planner/internal/feedback"
	"github.com/forgeplan/g3planner/internal/gitbridge"
	"github.com/forgeplan/g3planner/internal/history"
	"github.com/forgeplan/g3planner/internal/orchestrator/retry"
	"github.com/forgeplan/g3planner/internal/planner/phase"
)

// ImplementExecutor implements phase.PhaseExecutor for PhaseImplement: it
// freezes new_requirements.md into current_requirements.md, exports
// G3_TODO_PATH, journals GIT HEAD and START IMPLEMENTING, then runs the
// coach/player inner loop until a verdict is reached or MaxTurns is spent.
//
// It holds a concrete *gitbridge.Bridge (nil when UseGit is false) rather
// than phase.GitBridge because HeadSHA is not part of that narrow
// interface, and a concrete *retry.Manager for per-turn bookkeeping that
// outlives any single ExecuteWithRetry call.
type ImplementExecutor struct {
	ctx     *phase.PhaseContext
	journal *history.Journal
	cfg     *Config
	git     *gitbridge.Bridge

	player dispatch.Invoker
	coach  dispatch.Invoker

	playerRetry retry.Config
	coachRetry  retry.Config
	notifier    retry.Notifier

	retryMgr *retry.Manager
	turns    []TurnRecord

	cancel context.CancelFunc
}

// NewImplementExecutor assembles an ImplementExecutor. git may be nil when
// running with --no-git.
func NewImplementExecutor(
	ctx *phase.PhaseContext,
	journal *history.Journal,
	cfg *Config,
	git *gitbridge.Bridge,
	player, coach dispatch.Invoker,
	playerRetry, coachRetry retry.Config,
	notifier retry.Notifier,
) *ImplementExecutor {
	return &ImplementExecutor{
		ctx:         ctx,
		journal:     journal,
		cfg:         cfg,
		git:         git,
		player:      player,
		coach:       coach,
		playerRetry: playerRetry,
		coachRetry:  coachRetry,
		notifier:    notifier,
		retryMgr:    retry.NewManager(),
	}
}

func (i *ImplementExecutor) Phase() phase.Phase { return phase.PhaseImplement }

// Cancel cancels the context passed to any in-flight sub-agent invocation.
// Safe to call multiple times: cancel is nil until the first Execute call
// installs it.
func (i *ImplementExecutor) Cancel() {
	if i.cancel != nil {
		i.cancel()
	}
}

// Turns returns the completed inner-loop turn records.
func (i *ImplementExecutor) Turns() []TurnRecord {
	return i.turns
}

func (i *ImplementExecutor) Execute(parent context.Context) (phase.Phase, error) {
	ctx, cancel := context.WithCancel(parent)
	i.cancel = cancel
	defer cancel()

	if i.ctx.Artifacts.Exists(artifact.NewRequirementsFile) && !i.ctx.Artifacts.Exists(artifact.CurrentRequirementsFile) {
		if err := i.ctx.Artifacts.Rename(artifact.NewRequirementsFile, artifact.CurrentRequirementsFile); err != nil {
			return phase.PhaseFailed, err
		}
	}

	todoPath := filepath.Join(i.cfg.PlanDir, artifact.TodoFile)
	if err := os.Setenv(TodoPathEnv, todoPath); err != nil {
		return phase.PhaseFailed, err
	}

	if i.git != nil {
		sha, err := i.git.HeadSHA(ctx)
		if err != nil {
			return phase.PhaseFailed, err
		}
		if err := i.journal.WriteGitHead(sha); err != nil {
			return phase.PhaseFailed, err
		}
	}

	requirementsText, err := i.ctx.Artifacts.Read(artifact.CurrentRequirementsFile)
	if err != nil {
		return phase.PhaseFailed, err
	}

	summary, err := i.ctx.Gateway.SummariseRequirements(ctx, requirementsText)
	if err != nil {
		return phase.PhaseFailed, err
	}
	if err := i.journal.WriteStartImplementing(strings.Split(summary, "\n")); err != nil {
		return phase.PhaseFailed, err
	}

	verdict, err := i.runInnerLoop(ctx, requirementsText)
	if err != nil {
		return phase.PhaseFailed, err
	}
	_ = verdict // Complete phase re-derives outcome from todo.g3.md, per §4.G.

	return phase.PhaseComplete, nil
}

// runInnerLoop bounds the coach/player exchange by cfg.MaxTurns, per
// §4.G's inner loop contract: player turn, coach turn, extract, display,
// exit on Approved/Failed or turn-limit exhaustion.
func (i *ImplementExecutor) runInnerLoop(ctx context.Context, requirementsText string) (feedback.Verdict, error) {
	for turnNumber := 1; turnNumber <= i.cfg.MaxTurns; turnNumber++ {
		taskID := "turn-" + strconv.Itoa(turnNumber)
		i.retryMgr.GetOrCreateState(taskID, int(i.playerRetry.MaxRetries))

		record := TurnRecord{TurnNumber: turnNumber}

		playerResult, err := retry.ExecuteWithRetry(ctx, i.playerRetry, i.notifier, func(ctx context.Context) (dispatch.Result, error) {
			return i.player.Invoke(ctx, dispatch.RolePlayer, requirementsText, dispatch.SessionLogPath(i.cfg.Workspace, turnNumber))
		})
		if err != nil {
			i.retryMgr.SetLastError(taskID, err.Error())
			i.retryMgr.RecordAttempt(taskID, false)
			return feedback.Failed, err
		}

		record.TurnID = playerResult.TurnID
		if playerResult.ExitCode == 0 {
			record.PlayerOutcome = PlayerCompleted
		} else {
			record.PlayerOutcome = PlayerFailed
		}

		coachResult, err := retry.ExecuteWithRetry(ctx, i.coachRetry, i.notifier, func(ctx context.Context) (dispatch.Result, error) {
			return i.coach.Invoke(ctx, dispatch.RoleCoach, playerResult.Output, dispatch.SessionLogPath(i.cfg.Workspace, turnNumber))
		})
		if err != nil {
			i.retryMgr.SetLastError(taskID, err.Error())
			i.retryMgr.RecordAttempt(taskID, false)
			return feedback.Failed, err
		}

		source, text := feedback.Extract(coachResult.Output, coachResult.SessionLogPath, feedback.TaskResult{
			Output:           coachResult.Output,
			ConversationTail: coachResult.Output,
		})
		verdict := feedback.DetectVerdict(text)

		record.CoachVerdict = verdict
		record.CoachFeedbackText = text
		record.FeedbackSource = source
		i.turns = append(i.turns, record)

		i.displayFeedback(turnNumber, source, text)
		i.retryMgr.RecordAttempt(taskID, verdict == feedback.Approved)

		if verdict == feedback.Approved || verdict == feedback.Failed {
			return verdict, nil
		}

		if turnNumber == i.cfg.MaxTurns {
			return feedback.Failed, nil
		}
	}
	return feedback.Failed, nil
}

// displayFeedback prints the observability line and first-25-lines
// contract from §4.E: "📝 Coach feedback extracted from <Source>: <N>
// chars" followed by up to 25 lines of the feedback text.
func (i *ImplementExecutor) displayFeedback(turnNumber int, source feedback.Source, text string) {
	fmt.Printf("📝 Coach feedback extracted from %s: %d chars\n", source, len(text))
	lines, truncated := feedback.FirstNLines(text, 25)
	for _, line := range lines {
		fmt.Println(line)
	}
	if truncated {
		fmt.Println("…")
	}
}

var _ phase.PhaseExecutor = (*ImplementExecutor)(nil)
