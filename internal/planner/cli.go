package planner

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/forgeplan/g3planner/internal/planner/phase"
)

// CLICallbacks implements phase.Callbacks against the process's own
// stdin/stdout, in the bufio.NewReader(os.Stdin)-plus-fmt.Print prompt
// style used throughout the teacher's internal/cmd/planning commands
// (see promptForObjective/confirmCreation in plan.go).
type CLICallbacks struct {
	in  *bufio.Reader
	out io.Writer
}

// NewCLICallbacks creates a CLICallbacks reading from stdin and writing to
// stdout.
func NewCLICallbacks() *CLICallbacks {
	return &CLICallbacks{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

// OnPhaseChange prints a one-line phase banner.
func (c *CLICallbacks) OnPhaseChange(from, to phase.Phase) {
	if from == "" {
		fmt.Fprintf(c.out, "==> %s\n", to)
		return
	}
	fmt.Fprintf(c.out, "==> %s -> %s\n", from, to)
}

// Prompt writes message (without a trailing newline, so the user's answer
// appears on the same line) and reads one line of input, trimmed of its
// terminator.
func (c *CLICallbacks) Prompt(message string) (string, error) {
	fmt.Fprint(c.out, message)
	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return trimNewline(line), nil
}

// OnComplete prints the cycle's terminal banner.
func (c *CLICallbacks) OnComplete(success bool, summary string) {
	if success {
		fmt.Fprintf(c.out, "\n✅ %s\n", summary)
		return
	}
	fmt.Fprintf(c.out, "\n❌ %s\n", summary)
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

var _ phase.Callbacks = (*CLICallbacks)(nil)
