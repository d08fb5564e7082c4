// Package dispatch invokes the coach and player sub-agents as synchronous
// subprocesses, one at a time, per SPEC_FULL.md §5's single-threaded
// cooperative scheduling model. It is grounded on jorge-barreto-orc's
// internal/dispatch/agent.go: a single `claude -p <prompt>` subprocess per
// turn, its output copied to the terminal and captured in memory for the
// feedback extractor. The subprocess gets no process group of its own:
// cancelling the context kills only that process. The session log, if any,
// is written by the sub-agent at the path passed with --session-log.
package dispatch

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/google/uuid"

	plannererrors "github.com/forgeplan/g3planner/internal/errors"
)

// Role identifies which sub-agent role a Result was produced by.
type Role string

const (
	RolePlayer Role = "player"
	RoleCoach  Role = "coach"
)

// Result is a single sub-agent invocation's captured outcome: the raw
// terminal output (used by the feedback extractor's ConversationHistory
// and NativeToolCall strategies) and the path to a JSON session log, if
// the sub-agent wrote one (used by the SessionLog strategy).
type Result struct {
	TurnID         uuid.UUID
	Role           Role
	Output         string
	SessionLogPath string
	ExitCode       int
}

// Invoker runs a single sub-agent turn. Extracted as an interface so the
// coach/player inner loop can be exercised with a fake in tests without
// shelling out.
type Invoker interface {
	Invoke(ctx context.Context, role Role, prompt string, sessionLogPath string) (Result, error)
}

// SubprocessInvoker shells out to the `claude` binary, matching the
// external sub-agent interface fixed by SPEC_FULL.md §6.
type SubprocessInvoker struct {
	// WorkDir is the codepath the sub-agent operates on.
	WorkDir string
	// Env is appended to the subprocess's environment on top of the
	// current process's, so G3_WORKSPACE_PATH/G3_TODO_PATH set by the
	// state machine are always visible to the sub-agent.
	Env []string
	// Binary overrides the default "claude" executable name, for testing
	// against a stub script.
	Binary string
}

// NewSubprocessInvoker creates a SubprocessInvoker rooted at workDir with
// the given extra environment variables.
func NewSubprocessInvoker(workDir string, env []string) *SubprocessInvoker {
	return &SubprocessInvoker{WorkDir: workDir, Env: env, Binary: "claude"}
}

// Invoke runs one blocking sub-agent turn. It never runs two invocations
// concurrently by design: SPEC_FULL.md §5 requires exactly one sub-agent
// invocation at a time, and the coach/player inner loop calls Invoke
// synchronously between turns.
func (s *SubprocessInvoker) Invoke(ctx context.Context, role Role, prompt string, sessionLogPath string) (Result, error) {
	turnID := uuid.New()
	binary := s.Binary
	if binary == "" {
		binary = "claude"
	}

	args := []string{"-p", prompt}
	if sessionLogPath != "" {
		args = append(args, "--session-log", sessionLogPath)
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = s.WorkDir
	cmd.Env = append(os.Environ(), s.Env...)

	var captured bytes.Buffer
	cmd.Stdout = io.MultiWriter(os.Stdout, &captured)
	cmd.Stderr = io.MultiWriter(os.Stderr, &captured)

	runErr := cmd.Run()

	exitCode := 0
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return Result{}, plannererrors.NewLLMError(string(role)+" sub-agent invocation failed", runErr)
		}
	}

	return Result{
		TurnID:         turnID,
		Role:           role,
		Output:         captured.String(),
		SessionLogPath: sessionLogPath,
		ExitCode:       exitCode,
	}, nil
}

// SessionLogPath builds the per-turn session log path under
// <workspace>/logs/, matching the "Log location" testable property: every
// log file lands exclusively under <workspace>/logs.
func SessionLogPath(workspace string, turnNumber int) string {
	return workspace + "/logs/g3_session_" + time.Now().UTC().Format("20060102T150405Z") + "_turn" + strconv.Itoa(turnNumber) + ".json"
}
