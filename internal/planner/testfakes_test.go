package planner

import (
	"context"
	"errors"

	"github.com/forgeplan/g3planner/internal/planner/phase"
)

// fakeArtifacts implements phase.ArtifactStore (and artifactChecker) with
// an in-memory file map, mirroring phase package's own mockArtifacts.
type fakeArtifacts struct {
	files map[string]string
}

func newFakeArtifacts() *fakeArtifacts { return &fakeArtifacts{files: map[string]string{}} }

func (f *fakeArtifacts) Exists(name string) bool { _, ok := f.files[name]; return ok }
func (f *fakeArtifacts) Read(name string) (string, error) {
	content, ok := f.files[name]
	if !ok {
		return "", errors.New("not found: " + name)
	}
	return content, nil
}
func (f *fakeArtifacts) Write(name, content string) error {
	f.files[name] = content
	return nil
}
func (f *fakeArtifacts) Rename(oldName, newName string) error {
	content, ok := f.files[oldName]
	if !ok {
		return errors.New("not found: " + oldName)
	}
	f.files[newName] = content
	delete(f.files, oldName)
	return nil
}
func (f *fakeArtifacts) Delete(name string) error {
	delete(f.files, name)
	return nil
}

var _ phase.ArtifactStore = (*fakeArtifacts)(nil)
var _ artifactChecker = (*fakeArtifacts)(nil)

// fakeGateway implements phase.RequirementsGateway with canned responses.
type fakeGateway struct {
	refineResult    string
	refineErr       error
	summariseResult string
	commitMessage   string
	discoveryResult string
	discoveryErr    error
}

func (f *fakeGateway) RefineRequirements(ctx context.Context, draft, feedback string) (string, error) {
	if f.refineErr != nil {
		return "", f.refineErr
	}
	if f.refineResult != "" {
		return f.refineResult, nil
	}
	return draft, nil
}

func (f *fakeGateway) SummariseRequirements(ctx context.Context, requirements string) (string, error) {
	if f.summariseResult != "" {
		return f.summariseResult, nil
	}
	return requirements, nil
}

func (f *fakeGateway) GenerateCommitMessage(ctx context.Context, diffSummary string) (string, error) {
	if f.commitMessage != "" {
		return f.commitMessage, nil
	}
	return "chore: update requirements", nil
}

func (f *fakeGateway) RunDiscovery(ctx context.Context, userOneLiner string) (string, error) {
	if f.discoveryErr != nil {
		return "", f.discoveryErr
	}
	if f.discoveryResult != "" {
		return f.discoveryResult, nil
	}
	return "requirements for: " + userOneLiner, nil
}

var _ phase.RequirementsGateway = (*fakeGateway)(nil)

// fakeCallbacks implements phase.Callbacks, replaying scripted prompt
// answers in order.
type fakeCallbacks struct {
	answers   []string
	prompts   []string
	changes   [][2]phase.Phase
	completed bool
	success   bool
	summary   string
}

func (f *fakeCallbacks) OnPhaseChange(from, to phase.Phase) {
	f.changes = append(f.changes, [2]phase.Phase{from, to})
}

func (f *fakeCallbacks) Prompt(message string) (string, error) {
	f.prompts = append(f.prompts, message)
	if len(f.answers) == 0 {
		return "", nil
	}
	answer := f.answers[0]
	f.answers = f.answers[1:]
	return answer, nil
}

func (f *fakeCallbacks) OnComplete(success bool, summary string) {
	f.completed = true
	f.success = success
	f.summary = summary
}

var _ phase.Callbacks = (*fakeCallbacks)(nil)

// fakeHistory implements phase.HistoryJournal, recording every event.
type fakeHistory struct {
	events []string
}

func (f *fakeHistory) Append(event string) error {
	f.events = append(f.events, event)
	return nil
}

var _ phase.HistoryJournal = (*fakeHistory)(nil)
