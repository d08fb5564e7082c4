package planner

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/forgeplan/g3planner/internal/artifact"
	"github.com/forgeplan/g3planner/internal/history"
	"github.com/forgeplan/g3planner/internal/planner/phase"
)

func newTestRecoveryFixtures(t *testing.T) (*artifact.Store, *history.Journal) {
	t.Helper()
	dir := t.TempDir()
	store := artifact.New(dir)
	if err := store.EnsurePlanDir(); err != nil {
		t.Fatalf("EnsurePlanDir() error = %v", err)
	}
	journal := history.New(filepath.Join(dir, artifact.HistoryFile))
	return store, journal
}

func TestRecoveryPromptExecutorResume(t *testing.T) {
	store, journal := newTestRecoveryFixtures(t)
	if err := store.Write(artifact.CurrentRequirementsFile, "requirements"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	callbacks := &fakeCallbacks{answers: []string{"y"}}

	executor := NewRecoveryPromptExecutor(store, journal, callbacks)
	if executor.Phase() != phase.PhaseRecoveryPrompt {
		t.Errorf("Phase() = %v, want %v", executor.Phase(), phase.PhaseRecoveryPrompt)
	}

	next, err := executor.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if next != phase.PhaseImplement {
		t.Errorf("Execute() next = %v, want %v", next, phase.PhaseImplement)
	}
}

func TestRecoveryPromptExecutorMarkComplete(t *testing.T) {
	store, journal := newTestRecoveryFixtures(t)
	if err := store.Write(artifact.TodoFile, "- [x] done"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	callbacks := &fakeCallbacks{answers: []string{"n"}}

	executor := NewRecoveryPromptExecutor(store, journal, callbacks)
	next, err := executor.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if next != phase.PhaseComplete {
		t.Errorf("Execute() next = %v, want %v", next, phase.PhaseComplete)
	}
}

func TestRecoveryPromptExecutorQuit(t *testing.T) {
	store, journal := newTestRecoveryFixtures(t)
	if err := store.Write(artifact.TodoFile, "- [ ] pending"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	callbacks := &fakeCallbacks{answers: []string{"q"}}

	executor := NewRecoveryPromptExecutor(store, journal, callbacks)
	next, err := executor.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute() unexpected error = %v", err)
	}
	if next != phase.PhaseFailed {
		t.Errorf("Execute() next = %v, want %v", next, phase.PhaseFailed)
	}
}

func TestRecoveryPromptExecutorRetriesOnUnparseableAnswer(t *testing.T) {
	store, journal := newTestRecoveryFixtures(t)
	if err := store.Write(artifact.TodoFile, "- [ ] pending"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	callbacks := &fakeCallbacks{answers: []string{"bogus", "y"}}

	executor := NewRecoveryPromptExecutor(store, journal, callbacks)
	next, err := executor.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if next != phase.PhaseImplement {
		t.Errorf("Execute() next = %v, want %v", next, phase.PhaseImplement)
	}
	if len(callbacks.prompts) != 2 {
		t.Errorf("expected 2 prompts (one retry), got %d", len(callbacks.prompts))
	}
}
