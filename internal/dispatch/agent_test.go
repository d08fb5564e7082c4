package dispatch

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// writeStubBinary writes a tiny shell script that echoes its prompt
// argument, standing in for the real `claude` binary in tests.
func writeStubBinary(t *testing.T, dir string, exitCode int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub binary is a shell script")
	}
	path := filepath.Join(dir, "stub-claude.sh")
	script := "#!/bin/sh\necho \"prompt was: $2\"\nexit " + itoaTest(exitCode) + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func itoaTest(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func TestSubprocessInvoker_Invoke_Success(t *testing.T) {
	dir := t.TempDir()
	stub := writeStubBinary(t, dir, 0)

	inv := &SubprocessInvoker{WorkDir: dir, Binary: stub}
	result, err := inv.Invoke(context.Background(), RolePlayer, "do the thing", "")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", result.ExitCode)
	}
	if result.Role != RolePlayer {
		t.Errorf("Role = %q, want player", result.Role)
	}
	if result.TurnID.String() == "" {
		t.Error("expected non-empty TurnID")
	}
}

func TestSubprocessInvoker_Invoke_NonZeroExit(t *testing.T) {
	dir := t.TempDir()
	stub := writeStubBinary(t, dir, 3)

	inv := &SubprocessInvoker{WorkDir: dir, Binary: stub}
	result, err := inv.Invoke(context.Background(), RoleCoach, "evaluate", "")
	if err != nil {
		t.Fatalf("Invoke returned error for a clean non-zero exit: %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
}

func TestSessionLogPath_UnderWorkspaceLogs(t *testing.T) {
	path := SessionLogPath("/tmp/workspace", 1)
	want := "/tmp/workspace/logs/"
	if len(path) < len(want) || path[:len(want)] != want {
		t.Errorf("SessionLogPath = %q, want prefix %q", path, want)
	}
}
