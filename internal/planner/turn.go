package planner

import (
	"github.com/google/uuid"

	"github.com/forgeplan/g3planner/internal/feedback"
)

// PlayerOutcome is the player sub-agent's terminal state for one turn.
type PlayerOutcome int

const (
	// PlayerCompleted means the player finished its work for the turn
	// (a clean subprocess exit, exit code 0).
	PlayerCompleted PlayerOutcome = iota
	// PlayerFailed means the player subprocess exited non-zero.
	PlayerFailed
)

func (o PlayerOutcome) String() string {
	if o == PlayerCompleted {
		return "Completed"
	}
	return "Failed"
}

// TurnRecord is one coach/player inner-loop iteration's in-memory outcome.
// TurnID correlates this turn's log lines and session-log entries across
// the player invocation, the coach invocation, and the feedback extraction
// that follows them.
type TurnRecord struct {
	TurnNumber        int
	TurnID            uuid.UUID
	PlayerOutcome     PlayerOutcome
	CoachVerdict      feedback.Verdict
	CoachFeedbackText string
	FeedbackSource    feedback.Source
}
