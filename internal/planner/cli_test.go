package planner

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/forgeplan/g3planner/internal/planner/phase"
)

func newTestCLICallbacks(input string) (*CLICallbacks, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &CLICallbacks{in: bufio.NewReader(strings.NewReader(input)), out: out}, out
}

func TestCLICallbacksPromptReadsOneTrimmedLine(t *testing.T) {
	cb, out := newTestCLICallbacks("yes\nsecond line\n")

	answer, err := cb.Prompt("Continue? ")
	if err != nil {
		t.Fatalf("Prompt() error = %v", err)
	}
	if answer != "yes" {
		t.Errorf("Prompt() = %q, want %q", answer, "yes")
	}
	if !strings.Contains(out.String(), "Continue? ") {
		t.Errorf("expected prompt message to be written to out, got %q", out.String())
	}

	answer, err = cb.Prompt("Again? ")
	if err != nil {
		t.Fatalf("Prompt() error = %v", err)
	}
	if answer != "second line" {
		t.Errorf("Prompt() = %q, want %q", answer, "second line")
	}
}

func TestCLICallbacksPromptHandlesEOFWithoutTrailingNewline(t *testing.T) {
	cb, _ := newTestCLICallbacks("no newline at all")

	answer, err := cb.Prompt("? ")
	if err != nil {
		t.Fatalf("Prompt() error = %v", err)
	}
	if answer != "no newline at all" {
		t.Errorf("Prompt() = %q, want %q", answer, "no newline at all")
	}
}

func TestCLICallbacksOnPhaseChange(t *testing.T) {
	cb, out := newTestCLICallbacks("")

	cb.OnPhaseChange("", phase.PhaseStartup)
	if !strings.Contains(out.String(), string(phase.PhaseStartup)) {
		t.Errorf("expected initial phase banner to name %q, got %q", phase.PhaseStartup, out.String())
	}

	out.Reset()
	cb.OnPhaseChange(phase.PhaseStartup, phase.PhaseRefine)
	got := out.String()
	if !strings.Contains(got, string(phase.PhaseStartup)) || !strings.Contains(got, string(phase.PhaseRefine)) {
		t.Errorf("expected transition banner to name both phases, got %q", got)
	}
}

func TestCLICallbacksOnComplete(t *testing.T) {
	cb, out := newTestCLICallbacks("")

	cb.OnComplete(true, "all done")
	if !strings.Contains(out.String(), "all done") {
		t.Errorf("expected success banner to contain summary, got %q", out.String())
	}

	out.Reset()
	cb.OnComplete(false, "it broke")
	if !strings.Contains(out.String(), "it broke") {
		t.Errorf("expected failure banner to contain summary, got %q", out.String())
	}
}

var _ phase.Callbacks = (*CLICallbacks)(nil)
