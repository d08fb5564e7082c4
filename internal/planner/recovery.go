package planner

import (
	"context"
	"fmt"

	"github.com/forgeplan/g3planner/internal/artifact"
	"github.com/forgeplan/g3planner/internal/choice"
	"github.com/forgeplan/g3planner/internal/history"
	"github.com/forgeplan/g3planner/internal/planner/phase"
)

// RecoveryPromptExecutor implements phase.PhaseExecutor for
// PhaseRecoveryPrompt: it shows the age (and, for todo.g3.md, the
// content) of whichever prior-cycle artifacts are present, then offers
// the resume/mark-complete/quit choice.
type RecoveryPromptExecutor struct {
	store     *artifact.Store
	journal   *history.Journal
	callbacks phase.Callbacks
}

// NewRecoveryPromptExecutor assembles a RecoveryPromptExecutor. callbacks
// must not be nil: a prompt with no way to answer it can never resolve to
// resume or mark-complete.
func NewRecoveryPromptExecutor(store *artifact.Store, journal *history.Journal, callbacks phase.Callbacks) *RecoveryPromptExecutor {
	return &RecoveryPromptExecutor{store: store, journal: journal, callbacks: callbacks}
}

func (r *RecoveryPromptExecutor) Phase() phase.Phase { return phase.PhaseRecoveryPrompt }

func (r *RecoveryPromptExecutor) Cancel() {}

func (r *RecoveryPromptExecutor) Execute(ctx context.Context) (phase.Phase, error) {
	message, err := r.describePriorCycle()
	if err != nil {
		return phase.PhaseFailed, err
	}
	message += "\n[Y] resume  [N] mark complete  [Q] quit: "

	const maxAttempts = 3
	for attempt := 0; attempt < maxAttempts; attempt++ {
		answer, err := r.callbacks.Prompt(message)
		if err != nil {
			return phase.PhaseFailed, err
		}
		choiceVal, ok := choice.ParseRecovery(answer)
		if !ok {
			message = "Please answer Y, N, or Q: "
			continue
		}
		switch choiceVal {
		case choice.RecoveryResume:
			if err := r.journal.WriteAttemptingRecovery(); err != nil {
				return phase.PhaseFailed, err
			}
			return phase.PhaseImplement, nil
		case choice.RecoveryMarkComplete:
			if err := r.journal.WriteUserSkippedRecovery(); err != nil {
				return phase.PhaseFailed, err
			}
			return phase.PhaseComplete, nil
		case choice.RecoveryQuit:
			return phase.PhaseFailed, nil
		}
	}
	return phase.PhaseFailed, nil
}

func (r *RecoveryPromptExecutor) describePriorCycle() (string, error) {
	message := "A prior cycle was found:\n"
	if r.store.Exists(artifact.CurrentRequirementsFile) {
		mtime, err := r.store.Mtime(artifact.CurrentRequirementsFile)
		if err != nil {
			return "", err
		}
		message += fmt.Sprintf("  current_requirements.md (modified %s)\n", mtime.Format("2006-01-02 15:04:05"))
	}
	if r.store.Exists(artifact.TodoFile) {
		mtime, err := r.store.Mtime(artifact.TodoFile)
		if err != nil {
			return "", err
		}
		message += fmt.Sprintf("  todo.g3.md (modified %s)\n", mtime.Format("2006-01-02 15:04:05"))
		content, err := r.store.Read(artifact.TodoFile)
		if err == nil && content != "" {
			message += "  --- todo.g3.md ---\n" + content + "\n  ------------------\n"
		}
	}
	return message, nil
}

var _ phase.PhaseExecutor = (*RecoveryPromptExecutor)(nil)
