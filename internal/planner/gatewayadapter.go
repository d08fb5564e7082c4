package planner

import (
	"context"

	"github.com/forgeplan/g3planner/internal/gateway"
	"github.com/forgeplan/g3planner/internal/planner/phase"
)

// gatewayAdapter narrows *gateway.Gateway's four-operation surface to
// phase.RequirementsGateway. Three of the four methods (RefineRequirements,
// SummariseRequirements, RunDiscovery) already match and are promoted
// through embedding; GenerateCommitMessage does not, because the gateway
// needs the two archive filenames (bound separately via SetArchiveNames,
// since the phase.RequirementsGateway interface only carries a single
// diffSummary argument) and returns a (summary, description) pair rather
// than the single joined string the interface expects.
type gatewayAdapter struct {
	*gateway.Gateway
	requirementsArchive string
	todoArchive         string
}

func newGatewayAdapter(gw *gateway.Gateway) *gatewayAdapter {
	return &gatewayAdapter{Gateway: gw}
}

// SetArchiveNames records the archive filenames the next
// GenerateCommitMessage call should reference. It must be called by the
// Complete phase after computing the cycle's stamp and before invoking the
// gateway through the phase.RequirementsGateway interface.
func (g *gatewayAdapter) SetArchiveNames(requirementsArchive, todoArchive string) {
	g.requirementsArchive = requirementsArchive
	g.todoArchive = todoArchive
}

// GenerateCommitMessage joins the underlying gateway's (summary,
// description) pair into the single string phase.RequirementsGateway
// callers expect, separated by a blank line so gitAdapter.CommitWithHistory
// can split it back apart.
func (g *gatewayAdapter) GenerateCommitMessage(ctx context.Context, diffSummary string) (string, error) {
	summary, description, err := g.Gateway.GenerateCommitMessage(ctx, diffSummary, g.requirementsArchive, g.todoArchive)
	if err != nil {
		return "", err
	}
	if description == "" {
		return summary, nil
	}
	return summary + "\n\n" + description, nil
}

var _ phase.RequirementsGateway = (*gatewayAdapter)(nil)
