package planner

import (
	"context"

	"github.com/forgeplan/g3planner/internal/artifact"
	"github.com/forgeplan/g3planner/internal/planner/phase"
)

// DiscoveryExecutor implements phase.PhaseExecutor for PhaseDiscovery, the
// Fresh-state-only enrichment that turns a terse user one-liner into a
// first new_requirements.md draft before Refine. It is skipped entirely
// whenever new_requirements.md already exists.
type DiscoveryExecutor struct {
	ctx *phase.PhaseContext
}

// NewDiscoveryExecutor assembles a DiscoveryExecutor against ctx.
func NewDiscoveryExecutor(ctx *phase.PhaseContext) *DiscoveryExecutor {
	return &DiscoveryExecutor{ctx: ctx}
}

func (d *DiscoveryExecutor) Phase() phase.Phase { return phase.PhaseDiscovery }

func (d *DiscoveryExecutor) Cancel() {}

func (d *DiscoveryExecutor) Execute(ctx context.Context) (phase.Phase, error) {
	description, err := d.ctx.Callbacks.Prompt("Describe what you'd like to build in one line: ")
	if err != nil {
		return phase.PhaseFailed, err
	}

	draft, err := d.ctx.Gateway.RunDiscovery(ctx, description)
	if err != nil {
		return phase.PhaseFailed, err
	}

	if err := d.ctx.Artifacts.Write(artifact.NewRequirementsFile, draft); err != nil {
		return phase.PhaseFailed, err
	}

	return phase.PhaseRefine, nil
}

var _ phase.PhaseExecutor = (*DiscoveryExecutor)(nil)
