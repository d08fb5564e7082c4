// Package choice parses the planner's interactive y/n/q prompts into typed
// choices. Each parser's default-on-empty-string behavior is ported
// faithfully from the original implementation's from_input functions
// (SPEC_FULL.md "SUPPLEMENTED FEATURES") rather than reinvented, since the
// distilled spec only prose-describes the recovery prompt and leaves the
// other prompts' exact parsing implicit.
package choice

import "strings"

// Recovery is the user's choice when prior-cycle artifacts are found at
// Startup.
type Recovery int

const (
	// RecoveryNone is the zero value and never returned by ParseRecovery.
	RecoveryNone Recovery = iota
	// RecoveryResume resumes the previous implementation.
	RecoveryResume
	// RecoveryMarkComplete marks the prior cycle complete without resuming.
	RecoveryMarkComplete
	// RecoveryQuit exits without side effects.
	RecoveryQuit
)

// ParseRecovery parses "y"/"yes", "n"/"no", or "q"/"quit". As with
// ParseApproval, an empty or unrecognized input has no default and returns
// ok=false.
func ParseRecovery(input string) (choice Recovery, ok bool) {
	switch normalize(input) {
	case "y", "yes":
		return RecoveryResume, true
	case "n", "no":
		return RecoveryMarkComplete, true
	case "q", "quit":
		return RecoveryQuit, true
	default:
		return RecoveryNone, false
	}
}

// Approval is the user's choice when asked to approve refined requirements.
type Approval int

const (
	ApprovalNone Approval = iota
	// ApprovalApprove accepts the refined requirements and proceeds to Implement.
	ApprovalApprove
	// ApprovalRefine continues refining.
	ApprovalRefine
	// ApprovalQuit exits without side effects.
	ApprovalQuit
)

// ParseApproval parses "y"/"yes", "n"/"no", or "q"/"quit", with no default
// for an empty input.
func ParseApproval(input string) (choice Approval, ok bool) {
	switch normalize(input) {
	case "y", "yes":
		return ApprovalApprove, true
	case "n", "no":
		return ApprovalRefine, true
	case "q", "quit":
		return ApprovalQuit, true
	default:
		return ApprovalNone, false
	}
}

// Completion is the user's choice when Complete finds an incomplete
// todo.g3.md.
type Completion int

const (
	CompletionNone Completion = iota
	// CompletionComplete finalizes the cycle despite the incomplete checklist.
	CompletionComplete
	// CompletionContinue returns to the coach/player inner loop.
	CompletionContinue
	// CompletionQuit exits without side effects.
	CompletionQuit
)

// ParseCompletion parses "y"/"yes"/"" (default Complete), "n"/"no", or
// "q"/"quit".
func ParseCompletion(input string) (choice Completion, ok bool) {
	switch normalize(input) {
	case "y", "yes", "":
		return CompletionComplete, true
	case "n", "no":
		return CompletionContinue, true
	case "q", "quit":
		return CompletionQuit, true
	default:
		return CompletionNone, false
	}
}

// BranchConfirm is the user's choice when asked to confirm the checked-out
// branch at Startup.
type BranchConfirm int

const (
	BranchConfirmNone BranchConfirm = iota
	// BranchConfirmOK confirms the displayed branch is correct.
	BranchConfirmOK
	// BranchConfirmQuit rejects the branch and exits.
	BranchConfirmQuit
)

// ParseBranchConfirm parses "y"/"yes"/"" (default confirm) as OK, and
// "n"/"no"/"q"/"quit" as Quit.
func ParseBranchConfirm(input string) (choice BranchConfirm, ok bool) {
	switch normalize(input) {
	case "y", "yes", "":
		return BranchConfirmOK, true
	case "n", "no", "q", "quit":
		return BranchConfirmQuit, true
	default:
		return BranchConfirmNone, false
	}
}

// DirtyFiles is the user's choice when Startup finds a dirty working tree.
type DirtyFiles int

const (
	DirtyFilesNone DirtyFiles = iota
	// DirtyFilesProceed continues despite the dirty working tree.
	DirtyFilesProceed
	// DirtyFilesQuit exits so the user can handle it manually.
	DirtyFilesQuit
)

// ParseDirtyFiles parses "y"/"yes"/"" (default proceed) as Proceed, and
// "n"/"no"/"q"/"quit" as Quit.
func ParseDirtyFiles(input string) (choice DirtyFiles, ok bool) {
	switch normalize(input) {
	case "y", "yes", "":
		return DirtyFilesProceed, true
	case "n", "no", "q", "quit":
		return DirtyFilesQuit, true
	default:
		return DirtyFilesNone, false
	}
}

func normalize(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
