package planner

import (
	"context"
	"strings"

	"github.com/forgeplan/g3planner/internal/gitbridge"
	"github.com/forgeplan/g3planner/internal/history"
	"github.com/forgeplan/g3planner/internal/planner/phase"
)

// gitAdapter binds a context.Context and the concrete history journal onto
// gitbridge.Bridge so it satisfies phase.GitBridge, whose methods (fixed by
// the narrow-interface contract phase executors are tested against) do not
// themselves take a context or expose CommitWithHistory's richer
// (journal, planDir, summary, description) signature.
type gitAdapter struct {
	bridge  *gitbridge.Bridge
	journal *history.Journal
	planDir string
	ctx     context.Context
}

// newGitAdapter wraps bridge for use as a phase.GitBridge within a single
// phase Execute call scoped to ctx.
func newGitAdapter(ctx context.Context, bridge *gitbridge.Bridge, journal *history.Journal, planDir string) *gitAdapter {
	return &gitAdapter{bridge: bridge, journal: journal, planDir: planDir, ctx: ctx}
}

func (a *gitAdapter) EnsureRepo() error {
	return a.bridge.EnsureRepo(a.ctx)
}

func (a *gitAdapter) CurrentBranch() (string, error) {
	return a.bridge.CurrentBranch(a.ctx)
}

func (a *gitAdapter) WorkingTreeClean(ignored ...string) (bool, error) {
	return a.bridge.WorkingTreeClean(a.ctx, ignored...)
}

// CommitWithHistory splits the pre-formatted "<summary>\n\n<description>"
// message phase executors pass and delegates to gitbridge's own
// CommitWithHistory, which is the single authorised path to a git commit
// (the raw commit primitive is unexported in gitbridge, enforced by Go's
// package-visibility boundary). journal is accepted to satisfy
// phase.GitBridge but ignored in favor of a.journal, since only the
// concrete *history.Journal implements the WriteGitCommit method
// gitbridge's commit gate requires.
func (a *gitAdapter) CommitWithHistory(_ phase.HistoryJournal, message string) error {
	summary, description := splitCommitMessage(message)
	_, err := a.bridge.CommitWithHistory(a.ctx, a.journal, a.planDir, summary, description)
	return err
}

// splitCommitMessage separates a combined "<summary>\n\n<description>"
// commit message back into its two halves, the inverse of how
// gatewayAdapter.GenerateCommitMessage joins them for the single-string
// phase.RequirementsGateway contract.
func splitCommitMessage(message string) (summary, description string) {
	if idx := strings.Index(message, "\n\n"); idx != -1 {
		return message[:idx], message[idx+2:]
	}
	return message, ""
}

var _ phase.GitBridge = (*gitAdapter)(nil)
