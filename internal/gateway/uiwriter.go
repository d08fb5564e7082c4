package gateway

import (
	"fmt"
	"io"
	"sync"

	"github.com/forgeplan/g3planner/internal/util"
)

// toolCallArgsPreviewLen is the "first 50 chars of JSON args" the tool-call
// header contract requires.
const toolCallArgsPreviewLen = 50

// maxToolCallLineWidth bounds the rendered header line, honoring S6's
// "each such line <= 120 chars" testable property.
const maxToolCallLineWidth = 120

// UIWriter enforces the single-line tool-call discipline from
// SPEC_FULL.md §4.F: tool-call headers are emitted as exactly one line with
// no surrounding blank lines, assistant text is printed verbatim without
// carriage-return overwriting, and status lines never overwrite a tool
// header. It serializes writes with a mutex since the state machine and
// gateway calls run on a single goroutine but status updates may originate
// from a concurrent spinner in a future extension.
type UIWriter struct {
	mu  sync.Mutex
	out io.Writer
	// lastWasStatus records whether the most recent write was a status
	// line. Nothing reads it: WriteStatus always ends its line itself.
	lastWasStatus bool
}

// NewUIWriter creates a UIWriter that writes to out.
func NewUIWriter(out io.Writer) *UIWriter {
	return &UIWriter{out: out}
}

// WriteToolCallHeader emits "🔧 [N] tool_name  <first 50 chars of JSON
// args>" as a single terminated line, ANSI-truncated to
// maxToolCallLineWidth so any styling in argsJSON cannot corrupt the
// terminal mid-escape-sequence.
func (w *UIWriter) WriteToolCallHeader(index int, toolName, argsJSON string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	preview := util.TruncateString(argsJSON, toolCallArgsPreviewLen)
	line := fmt.Sprintf("🔧 [%d] %s  %s", index, toolName, preview)
	line = util.TruncateANSI(line, maxToolCallLineWidth)

	fmt.Fprintln(w.out, line)
	w.lastWasStatus = false
}

// WriteAssistantText prints text verbatim, with no carriage-return
// overwriting, per the "assistant text messages MUST be printed verbatim"
// clause.
func (w *UIWriter) WriteAssistantText(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	fmt.Fprint(w.out, text)
	w.lastWasStatus = false
}

// WriteStatus prints a transient status line (e.g. "Thinking…"). It never
// overwrites a preceding tool-call header: each status update starts on
// its own line rather than reusing a carriage-return redraw.
func (w *UIWriter) WriteStatus(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	fmt.Fprintln(w.out, text)
	w.lastWasStatus = true
}
