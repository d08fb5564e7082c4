// Package phase provides a formal state machine for the planner's lifecycle.
// It defines the valid phase transitions, an audit trail of transitions that
// occurred, and phase-specific constraints that must be satisfied before
// entering a phase.
package phase

import (
	"slices"
	"time"

	plannererrors "github.com/forgeplan/g3planner/internal/errors"
)

// Phase represents a discrete stage in the planner's lifecycle. Each phase
// has specific responsibilities and valid transitions to other phases.
type Phase string

const (
	// PhaseStartup parses config, validates flags, expands the codepath,
	// ensures the plan directory and history journal exist, and (when
	// UseGit) runs git preflight checks before detecting recovery state.
	PhaseStartup Phase = "startup"

	// PhaseRecoveryPrompt offers the user a resume/complete/quit choice
	// when prior-cycle artifacts are found on disk.
	PhaseRecoveryPrompt Phase = "recovery_prompt"

	// PhaseDiscovery is the Fresh-state-only enrichment that turns a terse
	// user one-liner into a first requirements draft before Refine.
	PhaseDiscovery Phase = "discovery"

	// PhaseRefine is the requirements refinement phase: the planner model
	// proposes a refined new_requirements.md and the user iterates on it.
	PhaseRefine Phase = "refine"

	// PhaseImplement runs the coach/player inner loop against
	// current_requirements.md until the coach approves or fails the work or
	// MaxTurns is spent.
	PhaseImplement Phase = "implement"

	// PhaseComplete closes the cycle. It is entered either when the user
	// marks recovery complete, or when the implement loop ends (approved,
	// failed, or out of turns).
	PhaseComplete Phase = "complete"

	// PhaseFailed indicates the cycle terminated due to a non-recoverable error.
	PhaseFailed Phase = "failed"
)

// AllPhases returns all defined phases in lifecycle order.
func AllPhases() []Phase {
	return []Phase{
		PhaseStartup,
		PhaseRecoveryPrompt,
		PhaseDiscovery,
		PhaseRefine,
		PhaseImplement,
		PhaseComplete,
		PhaseFailed,
	}
}

// IsTerminal returns true if the phase is a terminal state (Complete or Failed).
func (p Phase) IsTerminal() bool {
	return p == PhaseComplete || p == PhaseFailed
}

// String returns the string representation of the phase.
func (p Phase) String() string {
	return string(p)
}

// PhaseChangeCallback is a function called when a phase transition occurs.
type PhaseChangeCallback func(from, to Phase)

// PhaseManager defines the interface for managing phase state and transitions.
// Implementations are responsible for maintaining the current phase,
// validating transitions, and notifying observers of changes.
type PhaseManager interface {
	// CurrentPhase returns the current phase of the cycle.
	CurrentPhase() Phase

	// CanTransitionTo checks whether a transition to the target phase is valid
	// from the current phase. This does not consider phase-specific constraints,
	// only the validity of the transition path.
	CanTransitionTo(phase Phase) bool

	// TransitionTo attempts to transition to the specified phase.
	// Returns an error if the transition is invalid or if phase-specific
	// constraints are not satisfied.
	TransitionTo(phase Phase) error

	// OnPhaseChange registers a callback to be invoked when phase transitions occur.
	// Multiple callbacks can be registered and will be called in registration order.
	OnPhaseChange(callback PhaseChangeCallback)

	// PhaseHistory returns the ordered list of phase transitions that have occurred.
	PhaseHistory() []PhaseTransition

	// PhaseDuration returns the duration spent in a specific phase.
	// Returns zero duration if the phase has not been entered.
	PhaseDuration(phase Phase) time.Duration
}

// PhaseTransition captures metadata about a single phase transition,
// giving the planner's journal an in-memory audit trail to mirror into
// planner_history.txt.
type PhaseTransition struct {
	// From is the source phase of the transition.
	// Empty string indicates this is the initial phase.
	From Phase `json:"from,omitempty"`

	// To is the destination phase of the transition.
	To Phase `json:"to"`

	// Timestamp records when the transition occurred.
	Timestamp time.Time `json:"timestamp"`

	// Reason provides optional context for why the transition occurred.
	// This is particularly useful for transitions to Failed state.
	Reason string `json:"reason,omitempty"`
}

// Duration returns the time elapsed since this transition occurred.
func (t PhaseTransition) Duration() time.Duration {
	return time.Since(t.Timestamp)
}

// PhaseConstraint defines a condition that must be met for a phase transition.
type PhaseConstraint struct {
	// Name is a short identifier for this constraint.
	Name string `json:"name"`

	// Description explains what this constraint checks.
	Description string `json:"description"`
}

// ValidTransitions defines which phase transitions CanTransition allows,
// following §4.G's diagram below. Driver.Run does not consult it, and it
// lists no transitions out of Complete, although the Complete executor can
// lead back to Implement (unfinished todo items) or to Refine (next cycle):
//
//	[Startup] ──ok──▶ [RecoveryPrompt?] ──resume──▶ [Implement]
//	                        │
//	                        ├──skip──▶ [Complete]
//	                        │
//	                        └──fresh──▶ [Discovery?] ──▶ [Refine] ──yes──▶ [Implement] ──▶ [Complete]
var ValidTransitions = map[Phase][]Phase{
	PhaseStartup: {
		PhaseRecoveryPrompt, // prior-cycle artifacts found
		PhaseDiscovery,      // Fresh state, new_requirements.md entirely absent
		PhaseRefine,         // Fresh state, a requirements draft already exists
		PhaseFailed,         // preflight failed
	},
	PhaseRecoveryPrompt: {
		PhaseImplement, // user chose resume
		PhaseComplete,  // user chose mark complete
		PhaseFailed,    // recovery check failed
	},
	PhaseDiscovery: {
		PhaseRefine, // draft written, enter the refine loop
		PhaseFailed, // discovery call failed non-recoverably
	},
	PhaseRefine: {
		PhaseImplement, // user accepted the refined requirements
		PhaseFailed,    // refine loop exhausted retries
	},
	PhaseImplement: {
		PhaseComplete, // inner loop ended: verdict reached or turns spent
		PhaseFailed,   // non-recoverable error
	},
	// Terminal states: no transitions out
	PhaseComplete: {},
	PhaseFailed:   {},
}

// CanTransition checks whether a transition from one phase to another is valid
// according to the ValidTransitions map.
func CanTransition(from, to Phase) bool {
	validTargets, exists := ValidTransitions[from]
	if !exists {
		return false
	}
	return slices.Contains(validTargets, to)
}

// PhaseConstraints defines constraints that must be satisfied to enter each
// phase, beyond simple transition validity.
var PhaseConstraints = map[Phase][]PhaseConstraint{
	PhaseImplement: {
		{
			Name:        "requirements_present",
			Description: "current_requirements.md must exist before the coach/player loop begins",
		},
	},
	PhaseComplete: {
		{
			Name:        "marker_or_skip",
			Description: "entering Complete requires either a player completion marker or an explicit recovery skip",
		},
	},
}

// GetConstraints returns the constraints for entering a phase.
// Returns nil if no constraints are defined.
func GetConstraints(phase Phase) []PhaseConstraint {
	if constraints, exists := PhaseConstraints[phase]; exists {
		return constraints
	}
	return nil
}

// NewTransitionError creates a PhaseError for an invalid transition attempt.
func NewTransitionError(from, to Phase) *plannererrors.PhaseError {
	return plannererrors.NewPhaseError("transition not permitted", plannererrors.ErrInvalidTransition).
		WithFrom(from.String()).
		WithTo(to.String())
}

// NewConstraintError creates a PhaseError for a constraint violation.
func NewConstraintError(from, to Phase, constraint PhaseConstraint) *plannererrors.PhaseError {
	return plannererrors.NewPhaseError("constraint '"+constraint.Name+"' not satisfied", plannererrors.ErrInvalidTransition).
		WithFrom(from.String()).
		WithTo(to.String())
}
