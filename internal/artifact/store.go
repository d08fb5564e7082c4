// Package artifact implements the planner's on-disk artifact layout under
// <codepath>/g3-plan/: requirements drafts, the active requirements file,
// the sub-agent's todo checklist, and the completed-cycle archives. Every
// path is derived from the plan directory; construction rejects any
// component that would resolve outside it.
package artifact

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	plannererrors "github.com/forgeplan/g3planner/internal/errors"
)

// Well-known artifact file names under the plan directory.
const (
	NewRequirementsFile     = "new_requirements.md"
	CurrentRequirementsFile = "current_requirements.md"
	TodoFile                = "todo.g3.md"
	HistoryFile             = "planner_history.txt"
)

// ArchiveStampFormat is the filesystem-safe timestamp format used in
// completed_requirements_<STAMP>.md and completed_todo_<STAMP>.md archive
// names. This must never be confused with history.TimestampFormat, which
// uses a human-readable, colon-separated layout.
const ArchiveStampFormat = "2006-01-02_15-04-05"

// Store provides file operations scoped to a single plan directory. All
// paths passed to its methods are plan-directory-relative; Store rejects
// any name whose cleaned join would escape the plan directory.
type Store struct {
	planDir string
}

// New creates a Store rooted at planDir.
func New(planDir string) *Store {
	return &Store{planDir: planDir}
}

// PlanDir returns the plan directory this store is rooted at.
func (s *Store) PlanDir() string {
	return s.planDir
}

// resolve joins name onto the plan directory and rejects any result that
// would escape it, so a crafted "../../etc/passwd" name cannot be used to
// read or write outside g3-plan.
func (s *Store) resolve(name string) (string, error) {
	full := filepath.Join(s.planDir, name)
	cleanedDir := filepath.Clean(s.planDir)
	if full != cleanedDir && !strings.HasPrefix(full, cleanedDir+string(filepath.Separator)) {
		return "", plannererrors.NewArtifactError("path escapes plan directory", plannererrors.ErrInvalidInput).WithPath(name)
	}
	return full, nil
}

// EnsurePlanDir creates the plan directory (and any missing parents) if it
// does not already exist.
func (s *Store) EnsurePlanDir() error {
	if err := os.MkdirAll(s.planDir, 0o755); err != nil {
		return plannererrors.NewArtifactError("create plan directory", err).WithPath(s.planDir)
	}
	return nil
}

// EnsureHistoryFile creates planner_history.txt if it does not already
// exist, so Startup can guarantee its presence up front rather than
// leaving it to whichever journal write happens to come first.
func (s *Store) EnsureHistoryFile() error {
	full, err := s.resolve(HistoryFile)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return plannererrors.NewArtifactError("create history file", err).WithPath(HistoryFile)
	}
	return f.Close()
}

// Exists reports whether the named artifact is present.
func (s *Store) Exists(name string) bool {
	full, err := s.resolve(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// Read returns the full contents of the named artifact.
func (s *Store) Read(name string) (string, error) {
	full, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", plannererrors.NewArtifactError("read artifact", err).WithPath(name)
	}
	return string(data), nil
}

// Write atomically replaces the named artifact's contents: it writes to a
// sibling temp file and renames it into place, so a crash mid-write cannot
// leave a half-written file that would corrupt a later marker-presence
// check. The plan directory is created if missing.
func (s *Store) Write(name string, content string) error {
	full, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := s.EnsurePlanDir(); err != nil {
		return err
	}

	dir := filepath.Dir(full)
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(full)+"-*")
	if err != nil {
		return plannererrors.NewArtifactError("create temp file", err).WithPath(name)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return plannererrors.NewArtifactError("write temp file", err).WithPath(name)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return plannererrors.NewArtifactError("sync temp file", err).WithPath(name)
	}
	if err := tmp.Close(); err != nil {
		return plannererrors.NewArtifactError("close temp file", err).WithPath(name)
	}
	if err := os.Rename(tmpPath, full); err != nil {
		return plannererrors.NewArtifactError("rename into place", err).WithPath(name)
	}
	return nil
}

// Rename moves oldName to newName within the plan directory. It is used to
// promote new_requirements.md to current_requirements.md at Implement
// entry, and to move current_requirements.md/todo.g3.md into their
// completed_* archive names at Complete.
func (s *Store) Rename(oldName, newName string) error {
	oldFull, err := s.resolve(oldName)
	if err != nil {
		return err
	}
	newFull, err := s.resolve(newName)
	if err != nil {
		return err
	}
	if err := os.Rename(oldFull, newFull); err != nil {
		return plannererrors.NewArtifactError("rename artifact", err).WithPath(oldName)
	}
	return nil
}

// Delete removes the named artifact. Deleting a nonexistent artifact is not
// an error, since callers such as the Refine phase unconditionally delete
// todo.g3.md at the start of every fresh cycle.
func (s *Store) Delete(name string) error {
	full, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return plannererrors.NewArtifactError("delete artifact", err).WithPath(name)
	}
	return nil
}

// Mtime returns the modification time of the named artifact.
func (s *Store) Mtime(name string) (time.Time, error) {
	full, err := s.resolve(name)
	if err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(full)
	if err != nil {
		return time.Time{}, plannererrors.NewArtifactError("stat artifact", err).WithPath(name)
	}
	return info.ModTime(), nil
}

// ArchiveNames returns the filesystem-safe archive file names for a
// completed cycle closed at the given time.
func ArchiveNames(closedAt time.Time) (requirements, todo string) {
	stamp := closedAt.Format(ArchiveStampFormat)
	return "completed_requirements_" + stamp + ".md", "completed_todo_" + stamp + ".md"
}
