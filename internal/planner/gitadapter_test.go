package planner

import (
	"context"
	"testing"

	"github.com/forgeplan/g3planner/internal/gitbridge"
	"github.com/forgeplan/g3planner/internal/history"
)

func TestSplitCommitMessage(t *testing.T) {
	tests := []struct {
		name            string
		message         string
		wantSummary     string
		wantDescription string
	}{
		{"summary only", "chore: update requirements", "chore: update requirements", ""},
		{"summary and description", "chore: update\n\nlonger body here", "chore: update", "longer body here"},
		{"description with its own blank lines", "feat: x\n\nfirst line\n\nsecond paragraph", "feat: x", "first line\n\nsecond paragraph"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, description := splitCommitMessage(tt.message)
			if summary != tt.wantSummary {
				t.Errorf("summary = %q, want %q", summary, tt.wantSummary)
			}
			if description != tt.wantDescription {
				t.Errorf("description = %q, want %q", description, tt.wantDescription)
			}
		})
	}
}

func TestGitAdapterDelegatesToDisabledBridge(t *testing.T) {
	bridge := gitbridge.New(t.TempDir(), true)
	journal := history.New(t.TempDir() + "/planner_history.txt")
	adapter := newGitAdapter(context.Background(), bridge, journal, "g3-plan")

	if err := adapter.EnsureRepo(); err != nil {
		t.Fatalf("EnsureRepo() error = %v", err)
	}

	branch, err := adapter.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch() error = %v", err)
	}
	if branch != "disabled" {
		t.Errorf("CurrentBranch() = %q, want %q", branch, "disabled")
	}

	clean, err := adapter.WorkingTreeClean()
	if err != nil {
		t.Fatalf("WorkingTreeClean() error = %v", err)
	}
	if !clean {
		t.Error("WorkingTreeClean() = false, want true for a disabled bridge")
	}

	if err := adapter.CommitWithHistory(nil, "chore: noop\n\nbody"); err != nil {
		t.Fatalf("CommitWithHistory() error = %v", err)
	}
}
