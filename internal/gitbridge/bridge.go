// Package gitbridge shells out to the git CLI for the planner's repository
// operations: preflight checks, branch and dirty-file inspection, the
// exclusion-filtered staging pass, and the history-gated commit. It
// deliberately shells out rather than using a Go git library (go-git was
// evaluated and rejected, see DESIGN.md) because the distinguishing
// behaviors here — exclude-pattern staging and porcelain-status
// dirty-file bucketing — have no clean library equivalent, and the
// original Rust implementation already resolves every edge case this way.
package gitbridge

import (
	"context"
	"os/exec"
	"strings"

	plannererrors "github.com/forgeplan/g3planner/internal/errors"
	"github.com/forgeplan/g3planner/internal/history"
)

// ExcludePatterns is the fully enumerated staging deny-list, adopted
// verbatim from the original implementation's EXCLUDE_PATTERNS rather than
// invented or extended (see SPEC_FULL.md "SUPPLEMENTED FEATURES").
var ExcludePatterns = []string{
	"target/",
	"node_modules/",
	"__pycache__/",
	".venv/",
	".pytest_cache/",
	".mypy_cache/",
	".ruff_cache/",
	"*.log",
	"*.tmp",
	"*.bak",
	"*.swp",
	"*.swo",
	"*~",
	".DS_Store",
	"Thumbs.db",
	"*.pyc",
	"tmp/",
	"temp/",
}

// DefaultIgnoredForDirtyCheck is the path WorkingTreeClean treats as clean
// regardless of its actual status, since the user is expected to be
// editing it interactively during Refine.
const DefaultIgnoredForDirtyCheck = "g3-plan/new_requirements.md"

// Bridge performs git operations against a single repository root. When
// disabled is true (the --no-git case) every operation is a no-op
// returning a synthetic "disabled" value, so callers never need to branch
// on UseGit themselves.
type Bridge struct {
	codepath string
	disabled bool
}

// New creates a Bridge rooted at codepath. Set disabled to true to honor
// --no-git: every method then becomes a no-op.
func New(codepath string, disabled bool) *Bridge {
	return &Bridge{codepath: codepath, disabled: disabled}
}

// Disabled reports whether this Bridge is operating in --no-git mode.
func (b *Bridge) Disabled() bool {
	return b.disabled
}

func (b *Bridge) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = b.codepath
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// EnsureRepo fails with a GitError wrapping ErrNotGitRepository if codepath
// is not inside a git repository. No-op when disabled.
func (b *Bridge) EnsureRepo(ctx context.Context) error {
	if b.disabled {
		return nil
	}
	out, err := b.run(ctx, "rev-parse", "--git-dir")
	if err != nil {
		return plannererrors.NewGitError("not a git repository", plannererrors.ErrNotGitRepository).
			WithRepository(b.codepath).WithGitOutput(strings.TrimSpace(out))
	}
	return nil
}

// CurrentBranch returns the checked-out branch name, or
// "(detached HEAD at <sha>)" if HEAD is detached. Returns "disabled" when
// the bridge is running with --no-git.
func (b *Bridge) CurrentBranch(ctx context.Context) (string, error) {
	if b.disabled {
		return "disabled", nil
	}
	out, err := b.run(ctx, "branch", "--show-current")
	if err != nil {
		return "", plannererrors.NewGitError("get current branch", err).WithGitOutput(strings.TrimSpace(out))
	}
	branch := strings.TrimSpace(out)
	if branch != "" {
		return branch, nil
	}

	sha, err := b.run(ctx, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", plannererrors.NewGitError("get HEAD sha for detached branch display", err).
			WithGitOutput(strings.TrimSpace(sha))
	}
	return "(detached HEAD at " + strings.TrimSpace(sha) + ")", nil
}

// HeadSHA returns the full HEAD commit SHA, used for the GIT HEAD journal
// entry. Returns "disabled" when the bridge is running with --no-git.
func (b *Bridge) HeadSHA(ctx context.Context) (string, error) {
	if b.disabled {
		return "disabled", nil
	}
	out, err := b.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", plannererrors.NewGitError("get HEAD sha", err).WithGitOutput(strings.TrimSpace(out))
	}
	return strings.TrimSpace(out), nil
}

// DirtyFiles buckets the working tree's porcelain status into modified,
// untracked, and staged files, mirroring the original's DirtyFiles type.
type DirtyFiles struct {
	Modified  []string
	Untracked []string
	Staged    []string
}

// IsEmpty reports whether no files fall into any bucket.
func (d DirtyFiles) IsEmpty() bool {
	return len(d.Modified) == 0 && len(d.Untracked) == 0 && len(d.Staged) == 0
}

// Display renders the buckets for the Startup dirty-tree prompt.
func (d DirtyFiles) Display() string {
	var sb strings.Builder
	writeBucket := func(label string, files []string) {
		if len(files) == 0 {
			return
		}
		sb.WriteString(label)
		sb.WriteByte('\n')
		for _, f := range files {
			sb.WriteString("  ")
			sb.WriteString(f)
			sb.WriteByte('\n')
		}
	}
	writeBucket("Staged:", d.Staged)
	writeBucket("Modified:", d.Modified)
	writeBucket("Untracked:", d.Untracked)
	return strings.TrimRight(sb.String(), "\n")
}

// CheckDirtyFiles runs `git status --porcelain --untracked-files=all` (so
// files inside untracked directories are listed one by one) and buckets
// the results, skipping any file whose path contains ignorePattern. ignorePattern may be
// empty to disable filtering.
func (b *Bridge) CheckDirtyFiles(ctx context.Context, ignorePattern string) (DirtyFiles, error) {
	var result DirtyFiles
	if b.disabled {
		return result, nil
	}

	out, err := b.run(ctx, "status", "--porcelain", "--untracked-files=all")
	if err != nil {
		return result, plannererrors.NewGitError("check git status", err).WithGitOutput(strings.TrimSpace(out))
	}

	for _, line := range strings.Split(out, "\n") {
		if len(line) < 3 {
			continue
		}
		status := line[0:2]
		file := strings.TrimSpace(line[3:])
		if ignorePattern != "" && strings.Contains(file, ignorePattern) {
			continue
		}

		switch status {
		case "??":
			result.Untracked = append(result.Untracked, file)
		case " M", "MM", "AM":
			result.Modified = append(result.Modified, file)
		case "M ", "A ", "D ", "R ":
			result.Staged = append(result.Staged, file)
		default:
			if strings.HasPrefix(status, " ") {
				result.Modified = append(result.Modified, file)
			} else {
				result.Staged = append(result.Staged, file)
			}
		}
	}
	return result, nil
}

// WorkingTreeClean reports whether the working tree has no changes once
// any path containing one of the ignored substrings is excluded.
// ignored defaults to DefaultIgnoredForDirtyCheck when empty.
func (b *Bridge) WorkingTreeClean(ctx context.Context, ignored ...string) (bool, error) {
	if b.disabled {
		return true, nil
	}
	pattern := DefaultIgnoredForDirtyCheck
	if len(ignored) > 0 {
		pattern = ignored[0]
	}
	dirty, err := b.CheckDirtyFiles(ctx, pattern)
	if err != nil {
		return false, err
	}
	return dirty.IsEmpty(), nil
}

// journalWriter is the subset of *history.Journal that CommitWithHistory
// needs, kept narrow so callers can be exercised with a fake in tests.
type journalWriter interface {
	WriteGitCommit(summary string) error
}

var _ journalWriter = (*history.Journal)(nil)
