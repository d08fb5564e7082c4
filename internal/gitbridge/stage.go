package gitbridge

import (
	"context"
	"strings"

	plannererrors "github.com/forgeplan/g3planner/internal/errors"
)

// StagingResult records which files were staged, excluded by
// ExcludePatterns, or failed to stage during a Stage call.
type StagingResult struct {
	Staged   []string
	Excluded []string
	Failed   []string
}

// shouldExclude reports whether path matches one of ExcludePatterns,
// ported directly from the original implementation's should_exclude.
func shouldExclude(path string) bool {
	for _, pattern := range ExcludePatterns {
		switch {
		case strings.HasSuffix(pattern, "/"):
			dirName := strings.TrimSuffix(pattern, "/")
			if strings.Contains(path, "/"+dirName+"/") || strings.HasPrefix(path, dirName+"/") {
				return true
			}
		case strings.HasPrefix(pattern, "*"):
			suffix := strings.TrimPrefix(pattern, "*")
			if strings.HasSuffix(path, suffix) {
				return true
			}
		default:
			if path == pattern || strings.HasSuffix(path, "/"+pattern) {
				return true
			}
		}
	}
	return false
}

// Stage stages the plan directory in full, then walks the remaining
// working-tree status and stages every changed file that does not match
// ExcludePatterns, recording exclusions and per-file staging failures.
// planDir is relative to codepath (typically "g3-plan").
func (b *Bridge) Stage(ctx context.Context, planDir string) (StagingResult, error) {
	var result StagingResult
	if b.disabled {
		return result, nil
	}

	if out, err := b.run(ctx, "add", planDir); err != nil {
		if !strings.Contains(out, "did not match any files") {
			return result, plannererrors.NewGitError("stage plan directory", err).WithGitOutput(strings.TrimSpace(out))
		}
	}

	out, err := b.run(ctx, "status", "--porcelain")
	if err != nil {
		return result, plannererrors.NewGitError("get git status for staging", err).WithGitOutput(strings.TrimSpace(out))
	}

	for _, line := range strings.Split(out, "\n") {
		if len(line) < 3 {
			continue
		}
		status := line[0:2]
		file := strings.TrimSpace(line[3:])

		// Skip files already staged (non-space, non-"??" first column).
		if status[0:1] != " " && status != "??" {
			continue
		}

		if shouldExclude(file) {
			result.Excluded = append(result.Excluded, file)
			continue
		}

		if _, err := b.run(ctx, "add", file); err != nil {
			result.Failed = append(result.Failed, file)
			continue
		}
		result.Staged = append(result.Staged, file)
	}

	return result, nil
}

// StagePlanDir re-stages only the plan directory. This is required
// immediately before a commit because planner_history.txt is modified by
// the GIT COMMIT journal write *after* the initial Stage call but *before*
// git commit runs; without this second pass the commit would not include
// the journal line that names it.
func (b *Bridge) StagePlanDir(ctx context.Context, planDir string) error {
	if b.disabled {
		return nil
	}
	if out, err := b.run(ctx, "add", planDir); err != nil {
		return plannererrors.NewGitError("re-stage plan directory", err).WithGitOutput(strings.TrimSpace(out))
	}
	return nil
}
