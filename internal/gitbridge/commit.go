package gitbridge

import (
	"context"
	"strings"

	plannererrors "github.com/forgeplan/g3planner/internal/errors"
)

// commit invokes `git commit -m <summary>\n\n<description>` and returns the
// resulting HEAD SHA. It is unexported: the write-before-act invariant is
// enforced by Go's package-visibility boundary, not a lint rule.
// CommitWithHistory is the only exported entry point capable of reaching
// this function.
func (b *Bridge) commit(ctx context.Context, summary, description string) (string, error) {
	if b.disabled {
		return "disabled", nil
	}

	message := summary
	if description != "" {
		message = summary + "\n\n" + description
	}

	if out, err := b.run(ctx, "commit", "-m", message); err != nil {
		return "", plannererrors.NewGitError("git commit failed", plannererrors.ErrGitCommitFailed).
			WithGitOutput(strings.TrimSpace(out))
	}

	return b.HeadSHA(ctx)
}

// CommitWithHistory is the single authorised path to a git commit from
// planning mode. It enforces the write-before-act invariant lexically: it
// journals GIT COMMIT, re-stages the plan directory (to capture the
// journal write itself), and only then invokes the commit. If the commit
// subprocess fails, the journal entry is deliberately NOT retracted — the
// caller is told to commit manually, and the next startup's recovery path
// can use the journal to understand what was attempted.
//
// planDir is codepath-relative (typically "g3-plan").
func (b *Bridge) CommitWithHistory(ctx context.Context, journal journalWriter, planDir, summary, description string) (string, error) {
	if err := journal.WriteGitCommit(summary); err != nil {
		return "", err
	}

	if err := b.StagePlanDir(ctx, planDir); err != nil {
		return "", err
	}

	return b.commit(ctx, summary, description)
}
