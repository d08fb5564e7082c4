package gateway

import (
	"context"
	"fmt"
	"strings"

	plannererrors "github.com/forgeplan/g3planner/internal/errors"
	"github.com/forgeplan/g3planner/internal/logging"
	"github.com/forgeplan/g3planner/internal/orchestrator/retry"
	"github.com/forgeplan/g3planner/internal/prompts"
)

// CurrentRequirementsHeading is the marker RefineRequirements must produce
// for a refinement to be considered successful, per SPEC_FULL.md §4.F.
const CurrentRequirementsHeading = "{{CURRENT REQUIREMENTS}}"

// OriginalUserRequirementsMarker is prepended to a draft missing it before
// refinement is invoked, per §3's Artifact entities.
const OriginalUserRequirementsMarker = "{{ORIGINAL USER REQUIREMENTS -- THIS SECTION WILL BE IGNORED BY THE IMPLEMENTATION}}"

// Gateway is the stateless planning-model facade: refinement,
// summarisation, commit-message generation, and discovery. Every call
// routes through the retry driver with role=planner.
type Gateway struct {
	client   Client
	retryCfg retry.Config
	notifier retry.Notifier
	ui       *UIWriter
	logger   *logging.Logger
}

// New creates a Gateway backed by client. If notifier is nil, retry events
// are silently discarded. If ui is nil, no tool-call headers are printed.
func New(client Client, notifier retry.Notifier, ui *UIWriter, logger *logging.Logger) *Gateway {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Gateway{
		client:   client,
		retryCfg: retry.PlannerPreset(),
		notifier: notifier,
		ui:       ui,
		logger:   logger,
	}
}

// complete is the shared retry-wrapped single-turn call every gateway
// operation funnels through.
func (g *Gateway) complete(ctx context.Context, system, user string, tools []string) (CompletionResponse, error) {
	return retry.ExecuteWithRetry(ctx, g.retryCfg, g.notifier, func(ctx context.Context) (CompletionResponse, error) {
		resp, err := g.client.Complete(ctx, CompletionRequest{
			System:    system,
			Messages:  []Message{{Role: "user", Content: user}},
			ToolNames: tools,
		})
		if err != nil {
			return CompletionResponse{}, err
		}
		g.emitToolCalls(resp.ToolCalls)
		return resp, nil
	})
}

// emitToolCalls prints each tool call header per the UI writer contract,
// if a writer was configured.
func (g *Gateway) emitToolCalls(calls []ToolCall) {
	if g.ui == nil {
		return
	}
	for i, call := range calls {
		g.ui.WriteToolCallHeader(i+1, call.Name, string(call.Arguments))
	}
}

// RefineRequirements invokes the planning model with REFINE_PROMPT and the
// restricted planner tool set (excluding todo_write) to revise draftText.
// feedback, if non-empty, is the user's guidance for this refinement pass.
// Success is defined by the response containing the
// {{CURRENT REQUIREMENTS}} heading; MarkerMissing is returned otherwise.
func (g *Gateway) RefineRequirements(ctx context.Context, draftText, feedbackText string) (string, error) {
	user := draftText
	if feedbackText != "" {
		user = fmt.Sprintf("User feedback on the previous refinement:\n%s\n\nCurrent draft:\n%s", feedbackText, draftText)
	}

	resp, err := g.complete(ctx, prompts.RefineRequirementsSystemPrompt, user, prompts.PlannerToolSet)
	if err != nil {
		return "", err
	}

	revised := resp.Text
	if !strings.Contains(revised, CurrentRequirementsHeading) {
		g.logger.Warn("refinement produced no CURRENT REQUIREMENTS heading")
		return "", plannererrors.NewPhaseError("refinement missing CURRENT REQUIREMENTS heading",
			plannererrors.ErrMarkerMissing)
	}
	return revised, nil
}

// SummariseRequirements asks for a compact, at-most-5-line summary of
// requirementsText, used verbatim in the START IMPLEMENTING journal entry.
// The result is defensively truncated to 5 lines of at most 120 chars
// each, in case the model does not respect the prompt's limits.
func (g *Gateway) SummariseRequirements(ctx context.Context, requirementsText string) (string, error) {
	user := fmt.Sprintf(prompts.GenerateRequirementsSummaryPrompt, requirementsText)
	resp, err := g.complete(ctx, "", user, nil)
	if err != nil {
		return "", err
	}
	return clampSummary(resp.Text), nil
}

func clampSummary(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}
	for i, line := range lines {
		if len(line) > 120 {
			lines[i] = line[:120]
		}
	}
	return strings.Join(lines, "\n")
}

// commitSummaryHeading and commitDescriptionHeading delimit the two halves
// of GenerateCommitMessagePrompt's requested output format.
const (
	commitSummaryHeading     = "{{COMMIT_SUMMARY}}"
	commitDescriptionHeading = "{{COMMIT_DESCRIPTION}}"
)

// GenerateCommitMessage asks for a summary/description pair describing the
// implementation of requirementsText, referencing the two archive
// filenames. summary is clamped to 72 chars; description to 10 lines of at
// most 72 chars each, per §6's git commit grammar.
func (g *Gateway) GenerateCommitMessage(ctx context.Context, requirementsText, requirementsArchive, todoArchive string) (summary, description string, err error) {
	user := fmt.Sprintf(prompts.GenerateCommitMessagePrompt, requirementsText, requirementsArchive, todoArchive)
	resp, err := g.complete(ctx, "", user, nil)
	if err != nil {
		return "", "", err
	}
	summary, description = parseCommitMessage(resp.Text)
	return clampLine(summary, 72), clampDescription(description), nil
}

// parseCommitMessage splits the model's {{COMMIT_SUMMARY}}/
// {{COMMIT_DESCRIPTION}}-delimited response into its two halves. If the
// headings are absent, the whole response is treated as the summary line
// with an empty description, a defensive fallback rather than an error
// since a malformed commit message is not a MarkerMissing-class failure.
func parseCommitMessage(text string) (summary, description string) {
	summaryIdx := strings.Index(text, commitSummaryHeading)
	descIdx := strings.Index(text, commitDescriptionHeading)
	if summaryIdx == -1 || descIdx == -1 || descIdx < summaryIdx {
		return strings.TrimSpace(firstLine(text)), ""
	}
	summary = strings.TrimSpace(text[summaryIdx+len(commitSummaryHeading) : descIdx])
	description = strings.TrimSpace(text[descIdx+len(commitDescriptionHeading):])
	return summary, description
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx != -1 {
		return text[:idx]
	}
	return text
}

func clampLine(s string, maxLen int) string {
	s = strings.TrimSpace(strings.SplitN(s, "\n", 2)[0])
	if len(s) > maxLen {
		return s[:maxLen]
	}
	return s
}

func clampDescription(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > 10 {
		lines = lines[:10]
	}
	for i, line := range lines {
		if len(line) > 72 {
			lines[i] = line[:72]
		}
	}
	return strings.Join(lines, "\n")
}

// RunDiscovery turns a terse user one-liner into a first
// new_requirements.md draft, using the Fresh-state-only discovery prompts.
// This is the SUPPLEMENTED FEATURES enrichment: it never implements
// anything, only produces exploration commands and a requirements summary.
func (g *Gateway) RunDiscovery(ctx context.Context, userOneLiner string) (string, error) {
	user := prompts.DiscoveryRequirementsPrompt + "\n\nUser request:\n" + userOneLiner
	resp, err := g.complete(ctx, prompts.DiscoverySystemPrompt, user, nil)
	if err != nil {
		return "", err
	}
	return EnsureMarkers(resp.Text), nil
}

// EnsureMarkers prepends OriginalUserRequirementsMarker to draftText if
// absent, satisfying §3's "if absent, the planner prepends the latter
// before refinement" rule. It never touches CurrentRequirementsHeading,
// which only ever comes from a successful RefineRequirements call.
func EnsureMarkers(draftText string) string {
	if strings.Contains(draftText, OriginalUserRequirementsMarker) {
		return draftText
	}
	return OriginalUserRequirementsMarker + "\n\n" + draftText
}
