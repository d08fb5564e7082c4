// Package history implements the append-only planner_history.txt audit
// log. Every entry follows a fixed tag vocabulary; the package's central
// contract is write-before-act: callers that journal an event naming an
// external action (GIT COMMIT, COMPLETED REQUIREMENTS) must call Write
// before attempting that action, and the entry must remain even if the
// action subsequently fails. No caller outside the CommitWithHistory gate
// in internal/gitbridge is permitted to reorder the two.
package history

import (
	"fmt"
	"os"
	"strings"
	"time"

	plannererrors "github.com/forgeplan/g3planner/internal/errors"
)

// TimestampFormat is the human-readable timestamp layout used for every
// planner_history.txt entry. This must never be confused with
// artifact.ArchiveStampFormat, which is filesystem-safe and used only in
// archive file names.
const TimestampFormat = "2006-01-02 15:04:05"

// Tag identifies the kind of event recorded in a history entry.
type Tag string

// The fixed event vocabulary. No other tags are emitted.
const (
	TagRefiningRequirements  Tag = "REFINING REQUIREMENTS"
	TagGitHead               Tag = "GIT HEAD"
	TagStartImplementing     Tag = "START IMPLEMENTING"
	TagAttemptingRecovery    Tag = "ATTEMPTING RECOVERY"
	TagUserSkippedRecovery   Tag = "USER SKIPPED RECOVERY"
	TagCompletedRequirements Tag = "COMPLETED REQUIREMENTS"
	TagGitCommit             Tag = "GIT COMMIT"
)

// Event is a single planner_history.txt entry. Payload is the parenthesized
// text following the tag, empty for tags that carry none. Summary holds the
// indented "<<...>>" block that only TagStartImplementing attaches.
type Event struct {
	Tag     Tag
	Payload string
	Summary []string
}

// Journal appends Events to planner_history.txt. A Journal holds no open
// file handle between calls: each Write opens the file in append mode,
// writes one terminated entry, and closes it, so durability of a single
// append is bounded by the OS's close-flush behavior.
type Journal struct {
	path string
	now  func() time.Time // overridable in tests
}

// New creates a Journal that appends to the given file path.
func New(path string) *Journal {
	return &Journal{path: path, now: time.Now}
}

// Append is the HistoryJournal interface method phase executors call: it
// renders event as a bare tag-only line with no payload. For the richer
// entries with payloads or summaries, use Write.
func (j *Journal) Append(event string) error {
	return j.Write(Event{Tag: Tag(event)})
}

// Write formats and appends a single Event. It creates planner_history.txt
// if absent. This is the sole mutating operation on the journal; there is
// no update or delete, matching the append-only contract.
func (j *Journal) Write(event Event) error {
	line := j.render(event)

	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return plannererrors.NewArtifactError("open history journal", err).WithPath(j.path)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return plannererrors.NewArtifactError("append history entry", err).WithPath(j.path)
	}
	return nil
}

// render formats an Event into its planner_history.txt line, per the
// grammar in the on-disk layout:
//
//	<YYYY-MM-DD HH:MM:SS> - <TAG>[ (<PAYLOAD>)]
//	[<<
//	<indented summary lines>
//	>>]
func (j *Journal) render(event Event) string {
	var sb strings.Builder
	sb.WriteString(j.now().Format(TimestampFormat))
	sb.WriteString(" - ")
	sb.WriteString(string(event.Tag))
	if event.Payload != "" {
		fmt.Fprintf(&sb, " (%s)", event.Payload)
	}
	sb.WriteByte('\n')

	if len(event.Summary) > 0 {
		sb.WriteString("<<\n")
		for _, line := range event.Summary {
			sb.WriteString("  ")
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
		sb.WriteString(">>\n")
	}

	return sb.String()
}

// WriteRefiningRequirements journals entry into the Refine phase.
func (j *Journal) WriteRefiningRequirements() error {
	return j.Write(Event{Tag: TagRefiningRequirements, Payload: "new_requirements.md"})
}

// WriteGitHead journals the HEAD SHA captured just before the first
// implementation attempt of a cycle.
func (j *Journal) WriteGitHead(sha string) error {
	return j.Write(Event{Tag: TagGitHead, Payload: sha})
}

// WriteStartImplementing journals Implement phase entry along with the
// summary of current_requirements.md, wrapped to at most five lines by the
// gateway's SummariseRequirements contract.
func (j *Journal) WriteStartImplementing(summary []string) error {
	return j.Write(Event{
		Tag:     TagStartImplementing,
		Payload: "current_requirements.md",
		Summary: summary,
	})
}

// WriteAttemptingRecovery journals the user's choice to resume a prior cycle.
func (j *Journal) WriteAttemptingRecovery() error {
	return j.Write(Event{Tag: TagAttemptingRecovery})
}

// WriteUserSkippedRecovery journals the user's choice to mark a prior cycle
// complete rather than resume it.
func (j *Journal) WriteUserSkippedRecovery() error {
	return j.Write(Event{Tag: TagUserSkippedRecovery})
}

// WriteCompletedRequirements journals archive creation after a successful
// staging pass. This must be written only after CommitWithHistory's commit
// attempt, regardless of whether that commit succeeded.
func (j *Journal) WriteCompletedRequirements(requirementsArchive, todoArchive string) error {
	return j.Write(Event{
		Tag:     TagCompletedRequirements,
		Payload: requirementsArchive + ", " + todoArchive,
	})
}

// WriteGitCommit journals the commit summary. Per the write-before-act
// invariant, this must be called before the commit subprocess is invoked,
// and the entry must not be retracted if that subprocess later fails. The
// only caller permitted to invoke this is gitbridge.CommitWithHistory.
func (j *Journal) WriteGitCommit(summary string) error {
	return j.Write(Event{Tag: TagGitCommit, Payload: summary})
}

// Path returns the underlying file path.
func (j *Journal) Path() string {
	return j.path
}
