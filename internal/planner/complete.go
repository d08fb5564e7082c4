package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/forgeplan/g3planner/internal/artifact"
	"github.com/forgeplan/g3planner/internal/choice"
	"github.com/forgeplan/g3planner/internal/gitbridge"
	"github.com/forgeplan/g3planner/internal/history"
	"github.com/forgeplan/g3planner/internal/planner/phase"
)

// unfinishedTodoMarker is the checkbox syntax CompleteExecutor scans
// todo.g3.md for; its presence means the sub-agent's checklist still has
// unchecked items.
const unfinishedTodoMarker = "- [ ]"

// CompleteExecutor implements phase.PhaseExecutor for PhaseComplete: it
// checks todo.g3.md's done state, archives the frozen requirements and
// checklist, stages the working tree (excluding EXCLUDE_PATTERNS),
// generates a commit message, and — on user approval — commits through
// the single authorised gitbridge.CommitWithHistory gate.
//
// It holds a concrete *gitbridge.Bridge (nil when UseGit is false) for
// Stage, which is not part of the narrow phase.GitBridge interface, and a
// concrete *gatewayAdapter so it can call SetArchiveNames before invoking
// GenerateCommitMessage through the phase.RequirementsGateway interface.
type CompleteExecutor struct {
	ctx     *phase.PhaseContext
	journal *history.Journal
	git     *gitbridge.Bridge
	gwa     *gatewayAdapter
	cfg     *Config
	now     func() time.Time
}

// NewCompleteExecutor assembles a CompleteExecutor. git may be nil when
// running with --no-git.
func NewCompleteExecutor(ctx *phase.PhaseContext, journal *history.Journal, git *gitbridge.Bridge, gwa *gatewayAdapter, cfg *Config) *CompleteExecutor {
	return &CompleteExecutor{ctx: ctx, journal: journal, git: git, gwa: gwa, cfg: cfg, now: time.Now}
}

func (c *CompleteExecutor) Phase() phase.Phase { return phase.PhaseComplete }

func (c *CompleteExecutor) Cancel() {}

func (c *CompleteExecutor) Execute(ctx context.Context) (phase.Phase, error) {
	if c.ctx.Artifacts.Exists(artifact.TodoFile) {
		todoContent, err := c.ctx.Artifacts.Read(artifact.TodoFile)
		if err != nil {
			return phase.PhaseFailed, err
		}
		if strings.Contains(todoContent, unfinishedTodoMarker) {
			next, err := c.promptIncomplete()
			if next != "" || err != nil {
				return next, err
			}
		}
	}

	requirementsArchive, todoArchive := artifact.ArchiveNames(c.now())

	requirementsText, err := c.ctx.Artifacts.Read(artifact.CurrentRequirementsFile)
	if err != nil {
		return phase.PhaseFailed, err
	}
	if err := c.ctx.Artifacts.Rename(artifact.CurrentRequirementsFile, requirementsArchive); err != nil {
		return phase.PhaseFailed, err
	}
	if c.ctx.Artifacts.Exists(artifact.TodoFile) {
		if err := c.ctx.Artifacts.Rename(artifact.TodoFile, todoArchive); err != nil {
			return phase.PhaseFailed, err
		}
	}

	if c.git != nil {
		result, err := c.git.Stage(ctx, PlanDirName)
		if err != nil {
			return phase.PhaseFailed, err
		}
		if len(result.Failed) > 0 {
			fmt.Printf("Warning: failed to stage %d file(s): %v\n", len(result.Failed), result.Failed)
		}
	}

	c.gwa.SetArchiveNames(requirementsArchive, todoArchive)
	message, err := c.ctx.Gateway.GenerateCommitMessage(ctx, requirementsText)
	if err != nil {
		return phase.PhaseFailed, err
	}
	summary, description := splitCommitMessage(message)

	prompt := fmt.Sprintf("Proposed commit:\n%s\n\n%s\n\n[C] continue  [Q] quit without committing: ", summary, description)
	answer, err := c.ctx.Callbacks.Prompt(prompt)
	if err != nil {
		return phase.PhaseFailed, err
	}
	approval, ok := choice.ParseApproval(mapContinueToApproval(answer))
	if !ok || approval == choice.ApprovalQuit {
		return phase.PhaseFailed, nil
	}

	if c.ctx.Git != nil {
		if err := c.ctx.Git.CommitWithHistory(c.ctx.History, message); err != nil {
			// A failed commit does not retract the GIT COMMIT journal
			// line already written inside CommitWithHistory: the user is
			// told to commit manually, per §4.C's failure semantics.
			fmt.Printf("commit failed, please commit manually: %v\n", err)
		}
	}

	if err := c.journal.WriteCompletedRequirements(requirementsArchive, todoArchive); err != nil {
		return phase.PhaseFailed, err
	}

	// Execute reports PhaseComplete itself rather than PhaseRefine: the
	// "next cycle" loop-back §4.G's diagram draws from Complete to Refine
	// is Driver.Run's job (it re-enters this phase's own executor loop at
	// PhaseRefine after seeing PhaseComplete), not something this Execute
	// call transitions to directly.
	return phase.PhaseComplete, nil
}

// promptIncomplete asks the user whether to return to the inner loop or
// finalize anyway when todo.g3.md still has unchecked items.
func (c *CompleteExecutor) promptIncomplete() (phase.Phase, error) {
	answer, err := c.ctx.Callbacks.Prompt("todo.g3.md has unfinished items. [Y] finalize anyway  [N] continue implementing  [Q] quit: ")
	if err != nil {
		return phase.PhaseFailed, err
	}
	completion, ok := choice.ParseCompletion(answer)
	if !ok {
		return phase.PhaseFailed, nil
	}
	switch completion {
	case choice.CompletionComplete:
		return "", nil // continue Execute's finalize path
	case choice.CompletionContinue:
		return phase.PhaseImplement, nil
	default:
		return phase.PhaseFailed, nil
	}
}

// mapContinueToApproval reuses choice.ParseApproval's y/n/q vocabulary for
// the continue/quit commit prompt, treating "c"/"continue" as an approval.
func mapContinueToApproval(answer string) string {
	normalized := strings.ToLower(strings.TrimSpace(answer))
	if normalized == "c" || normalized == "continue" {
		return "y"
	}
	return answer
}

var _ phase.PhaseExecutor = (*CompleteExecutor)(nil)
