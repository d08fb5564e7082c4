package cmd

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	plannererrors "github.com/forgeplan/g3planner/internal/errors"
)

func captureStderr(f func()) string {
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	f()

	w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func TestPrintClassifiedErrorRecoverable(t *testing.T) {
	err := plannererrors.NewLLMError("refine call failed", errors.New("429")).WithKind(plannererrors.RecoverableRateLimit)

	out := captureStderr(func() {
		printClassifiedError(err)
	})

	if !strings.Contains(out, "⚠️ Recoverable error: RateLimit") {
		t.Errorf("printClassifiedError() output = %q, want the §7 recoverable classification line", out)
	}
}

func TestPrintClassifiedErrorNonRecoverable(t *testing.T) {
	err := errors.New("plan directory is not writable")

	out := captureStderr(func() {
		printClassifiedError(err)
	})

	if !strings.Contains(out, "❌ Non-recoverable error: plan directory is not writable") {
		t.Errorf("printClassifiedError() output = %q, want the §7 non-recoverable classification line", out)
	}
}

func TestPrintClassifiedErrorLLMErrorWithoutKind(t *testing.T) {
	err := plannererrors.NewLLMError("refine call failed", errors.New("bad request"))

	out := captureStderr(func() {
		printClassifiedError(err)
	})

	if !strings.Contains(out, "❌ Non-recoverable error:") {
		t.Errorf("printClassifiedError() output = %q, want a non-recoverable line for a kindless LLMError", out)
	}
}
