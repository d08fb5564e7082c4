package planner

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/forgeplan/g3planner/internal/artifact"
	"github.com/forgeplan/g3planner/internal/choice"
	"github.com/forgeplan/g3planner/internal/gateway"
	"github.com/forgeplan/g3planner/internal/history"
	"github.com/forgeplan/g3planner/internal/planner/phase"
)

// RefineExecutor implements phase.PhaseExecutor for PhaseRefine: it deletes
// any stale todo.g3.md, lets the user edit new_requirements.md (watched via
// fsnotify rather than polled, grounded on Iron-Ham-claudio's
// SessionLinkWatcher debounce-on-Write pattern), then drives the
// planning-model refinement loop until the user accepts.
type RefineExecutor struct {
	ctx     *phase.PhaseContext
	journal *history.Journal
	planDir string
}

// NewRefineExecutor assembles a RefineExecutor. journal is the concrete
// history journal, needed for WriteRefiningRequirements which the narrow
// phase.HistoryJournal interface does not expose.
func NewRefineExecutor(ctx *phase.PhaseContext, journal *history.Journal, planDir string) *RefineExecutor {
	return &RefineExecutor{ctx: ctx, journal: journal, planDir: planDir}
}

func (r *RefineExecutor) Phase() phase.Phase { return phase.PhaseRefine }

func (r *RefineExecutor) Cancel() {}

func (r *RefineExecutor) Execute(ctx context.Context) (phase.Phase, error) {
	if err := r.ctx.Artifacts.Delete(artifact.TodoFile); err != nil {
		return phase.PhaseFailed, err
	}

	feedbackText := ""
	for {
		if err := r.waitForEdit(ctx); err != nil {
			return phase.PhaseFailed, err
		}

		draft, err := r.ctx.Artifacts.Read(artifact.NewRequirementsFile)
		if err != nil {
			return phase.PhaseFailed, err
		}
		draft = gateway.EnsureMarkers(draft)

		if err := r.journal.WriteRefiningRequirements(); err != nil {
			return phase.PhaseFailed, err
		}

		revised, err := r.ctx.Gateway.RefineRequirements(ctx, draft, feedbackText)
		if err != nil {
			return phase.PhaseFailed, err
		}
		if err := r.ctx.Artifacts.Write(artifact.NewRequirementsFile, revised); err != nil {
			return phase.PhaseFailed, err
		}

		answer, err := r.ctx.Callbacks.Prompt("Accept these requirements? [Y] accept  [N] refine further  [Q] quit: ")
		if err != nil {
			return phase.PhaseFailed, err
		}
		approval, ok := choice.ParseApproval(answer)
		if !ok {
			feedbackText = ""
			continue
		}
		switch approval {
		case choice.ApprovalApprove:
			return phase.PhaseImplement, nil
		case choice.ApprovalQuit:
			return phase.PhaseFailed, nil
		default:
			feedbackText = answer
		}
	}
}

// waitForEdit prints an instruction naming the file to edit, then blocks
// on a single goroutine-free select loop over the fsnotify watcher until a
// debounced save is observed, honoring §5's single-threaded cooperative
// scheduling model (suspension happens at one blocking call at a time, not
// via separately scheduled goroutines racing the terminal).
func (r *RefineExecutor) waitForEdit(ctx context.Context) error {
	path := filepath.Join(r.planDir, artifact.NewRequirementsFile)
	fmt.Println("Edit " + path + ", then save it to continue.")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// A watcher failure degrades to a blocking Enter-key prompt rather
		// than aborting the cycle: save-detection is a convenience, not a
		// correctness requirement.
		_, promptErr := r.ctx.Callbacks.Prompt("Press Enter once you've saved the file: ")
		return promptErr
	}
	defer watcher.Close()

	if err := watcher.Add(r.planDir); err != nil {
		_, promptErr := r.ctx.Callbacks.Prompt("Press Enter once you've saved the file: ")
		return promptErr
	}

	targetFile := filepath.Base(path)
	debounce := time.NewTimer(24 * time.Hour)
	defer debounce.Stop()
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				_, promptErr := r.ctx.Callbacks.Prompt("Press Enter once you've saved the file: ")
				return promptErr
			}
			if filepath.Base(event.Name) != targetFile {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			debounce.Reset(150 * time.Millisecond)
		case <-debounce.C:
			return nil
		case _, ok := <-watcher.Errors:
			if !ok {
				_, promptErr := r.ctx.Callbacks.Prompt("Press Enter once you've saved the file: ")
				return promptErr
			}
		}
	}
}

var _ phase.PhaseExecutor = (*RefineExecutor)(nil)
