package planner

import "github.com/forgeplan/g3planner/internal/artifact"

// CycleState is the implicit, reconstructed-at-startup lifecycle state:
// there is no state.json sidecar anywhere in this codebase (see
// DESIGN.md's discussion of jorge-barreto-orc's internal/state package,
// deliberately not replicated here). Recovery correctness is a direct
// function of artifact-naming discipline.
type CycleState int

const (
	// Fresh means neither current_requirements.md nor todo.g3.md exists.
	Fresh CycleState = iota
	// InProgress means at least one of those two files exists.
	InProgress
)

// artifactChecker is the narrow subset of artifact.Store's interface
// DetectCycleState needs.
type artifactChecker interface {
	Exists(name string) bool
}

var _ artifactChecker = (*artifact.Store)(nil)

// DetectCycleState inspects the plan directory's artifact presence to
// derive the current cycle state. This is the sole source of truth for
// recovery detection; no other signal is consulted.
func DetectCycleState(store artifactChecker) CycleState {
	if store.Exists(artifact.CurrentRequirementsFile) || store.Exists(artifact.TodoFile) {
		return InProgress
	}
	return Fresh
}
