package choice

import "testing"

func TestParseRecovery(t *testing.T) {
	cases := []struct {
		input string
		want  Recovery
		ok    bool
	}{
		{"y", RecoveryResume, true},
		{"YES", RecoveryResume, true},
		{"n", RecoveryMarkComplete, true},
		{"No", RecoveryMarkComplete, true},
		{"q", RecoveryQuit, true},
		{"quit", RecoveryQuit, true},
		{"invalid", RecoveryNone, false},
		{"", RecoveryNone, false},
	}
	for _, tc := range cases {
		got, ok := ParseRecovery(tc.input)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseRecovery(%q) = (%v, %v), want (%v, %v)", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseApproval(t *testing.T) {
	cases := []struct {
		input string
		want  Approval
		ok    bool
	}{
		{"yes", ApprovalApprove, true},
		{"no", ApprovalRefine, true},
		{"quit", ApprovalQuit, true},
		{"", ApprovalNone, false},
	}
	for _, tc := range cases {
		got, ok := ParseApproval(tc.input)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseApproval(%q) = (%v, %v), want (%v, %v)", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseCompletion(t *testing.T) {
	cases := []struct {
		input string
		want  Completion
		ok    bool
	}{
		{"y", CompletionComplete, true},
		{"", CompletionComplete, true},
		{"n", CompletionContinue, true},
		{"quit", CompletionQuit, true},
	}
	for _, tc := range cases {
		got, ok := ParseCompletion(tc.input)
		if got != tc.want || !ok {
			t.Errorf("ParseCompletion(%q) = (%v, %v), want (%v, true)", tc.input, got, ok, tc.want)
		}
	}
}

func TestParseBranchConfirm(t *testing.T) {
	if got, ok := ParseBranchConfirm("y"); got != BranchConfirmOK || !ok {
		t.Errorf("ParseBranchConfirm(y) = (%v, %v)", got, ok)
	}
	if got, ok := ParseBranchConfirm(""); got != BranchConfirmOK || !ok {
		t.Errorf("ParseBranchConfirm(\"\") = (%v, %v), want default confirm", got, ok)
	}
	if got, ok := ParseBranchConfirm("n"); got != BranchConfirmQuit || !ok {
		t.Errorf("ParseBranchConfirm(n) = (%v, %v)", got, ok)
	}
}

func TestParseDirtyFiles(t *testing.T) {
	if got, ok := ParseDirtyFiles("y"); got != DirtyFilesProceed || !ok {
		t.Errorf("ParseDirtyFiles(y) = (%v, %v)", got, ok)
	}
	if got, ok := ParseDirtyFiles(""); got != DirtyFilesProceed || !ok {
		t.Errorf("ParseDirtyFiles(\"\") = (%v, %v), want default proceed", got, ok)
	}
	if got, ok := ParseDirtyFiles("q"); got != DirtyFilesQuit || !ok {
		t.Errorf("ParseDirtyFiles(q) = (%v, %v)", got, ok)
	}
}
