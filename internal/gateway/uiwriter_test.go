package gateway

import (
	"bytes"
	"strings"
	"testing"
)

func TestUIWriter_ToolCallHeaderFormat(t *testing.T) {
	var buf bytes.Buffer
	w := NewUIWriter(&buf)

	w.WriteToolCallHeader(1, "read_file", `{"path":"/tmp/x"}`)

	out := buf.String()
	if !strings.HasPrefix(out, "🔧 [1] read_file") {
		t.Errorf("unexpected header: %q", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("expected exactly one line, got %q", out)
	}
}

func TestUIWriter_NoConsecutiveBlankLines(t *testing.T) {
	var buf bytes.Buffer
	w := NewUIWriter(&buf)

	w.WriteToolCallHeader(1, "read_file", `{}`)
	w.WriteToolCallHeader(2, "write_file", `{}`)
	w.WriteToolCallHeader(3, "shell", `{}`)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	for i := 0; i < len(lines)-1; i++ {
		if lines[i] == "" && lines[i+1] == "" {
			t.Fatalf("found two consecutive blank lines at %d", i)
		}
	}
	for _, line := range lines {
		if len(line) > maxToolCallLineWidth {
			t.Errorf("line exceeds %d chars: %q", maxToolCallLineWidth, line)
		}
	}
}

func TestUIWriter_StatusNeverOverwritesToolHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewUIWriter(&buf)

	w.WriteToolCallHeader(1, "read_file", `{}`)
	w.WriteStatus("Thinking…")

	out := buf.String()
	if !strings.Contains(out, "🔧 [1] read_file") {
		t.Fatalf("tool header missing: %q", out)
	}
	if strings.Contains(out, "\r") {
		t.Errorf("expected no carriage-return overwriting, got %q", out)
	}
}
