package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/forgeplan/g3planner/internal/config"
	plannererrors "github.com/forgeplan/g3planner/internal/errors"
	"github.com/forgeplan/g3planner/internal/planner"
)

var (
	flagPlanning   bool
	flagAutonomous bool
	flagAuto       bool
	flagChat       bool
	flagTask       string
	flagCodepath   string
	flagWorkspace  string
	flagNoGit      bool
	flagMaxTurns   int
)

func init() {
	rootCmd.Flags().BoolVar(&flagPlanning, "planning", false, "run the planning cycle (startup/refine/implement/complete, repeating until quit)")
	rootCmd.Flags().BoolVar(&flagAutonomous, "autonomous", false, "run in autonomous mode (not implemented; mutually exclusive with --planning)")
	rootCmd.Flags().BoolVar(&flagAuto, "auto", false, "alias for --autonomous")
	rootCmd.Flags().BoolVar(&flagChat, "chat", false, "run in interactive chat mode (not implemented; mutually exclusive with --planning)")
	rootCmd.Flags().StringVar(&flagTask, "task", "", "task description (ignored in --planning mode)")
	rootCmd.Flags().StringVar(&flagCodepath, "codepath", ".", "path to the project the planner operates on")
	rootCmd.Flags().StringVar(&flagWorkspace, "workspace", "", "log destination directory (defaults to --codepath)")
	rootCmd.Flags().BoolVar(&flagNoGit, "no-git", false, "disable all git interaction")
	rootCmd.Flags().IntVar(&flagMaxTurns, "max-turns", 10, "coach/player inner-loop turn bound")

	rootCmd.RunE = runRoot
}

// runRoot validates the mode flags' mutual exclusion and, for --planning,
// assembles and runs a Driver, which repeats planning cycles until the user
// quits or a phase fails. Exit codes: 0 on
// clean user quit or successful cycle, non-zero on pre-flight failure.
func runRoot(cmd *cobra.Command, args []string) error {
	if flagAutonomous || flagAuto || flagChat {
		if flagPlanning {
			return plannererrors.NewValidationError("--planning is mutually exclusive with --autonomous, --auto, and --chat").WithField("mode")
		}
		return plannererrors.NewValidationError("autonomous and chat modes are not implemented in this build").WithField("mode")
	}
	if !flagPlanning {
		return cmd.Help()
	}

	appCfg, err := config.Load()
	if err != nil {
		return err
	}

	plannerCfg, err := planner.NewConfig(flagCodepath, flagWorkspace, !flagNoGit, flagMaxTurns, appCfg)
	if err != nil {
		return err
	}

	callbacks := planner.NewCLICallbacks()
	driver, err := planner.NewDriver(plannerCfg, appCfg, callbacks)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := driver.Run(ctx); err != nil {
		printClassifiedError(err)
		return err
	}
	return nil
}

// printClassifiedError implements §7's classification-for-display contract:
// a Recoverable LLMError (one that exhausted its retries rather than being
// surfaced immediately) prints its variant name; everything else is
// NonRecoverable and prints the raw message. runRoot still returns the
// error afterwards, so cobra and main print it to stderr as well.
func printClassifiedError(err error) {
	var llmErr *plannererrors.LLMError
	if plannererrors.As(err, &llmErr) && llmErr.Kind != plannererrors.RecoverableNone {
		fmt.Fprintf(os.Stderr, "⚠️ Recoverable error: %s\n", llmErr.Kind.String())
		return
	}
	fmt.Fprintf(os.Stderr, "❌ Non-recoverable error: %v\n", err)
}
