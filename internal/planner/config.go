// Package planner assembles the artifact store, history journal, git
// bridge, LLM gateway, and sub-agent dispatcher into the concrete phase
// executors that drive one planner cycle, and the Driver that sequences
// them per internal/planner/phase's state machine.
package planner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/forgeplan/g3planner/internal/config"
	plannererrors "github.com/forgeplan/g3planner/internal/errors"
)

// Config is the immutable, per-run planner configuration assembled from CLI
// flags and the loaded viper Config. It mirrors §6's [providers]/[agent]
// shape plus the flag-level fields (Codepath, Workspace, UseGit, MaxTurns)
// that have no home in config.Config because they vary per invocation
// rather than per installation.
type Config struct {
	// Codepath is the absolute, tilde-expanded path to the project root.
	Codepath string
	// PlanDir is Codepath/g3-plan.
	PlanDir string
	// UseGit disables every git bridge operation when false (--no-git).
	UseGit bool
	// PlannerProvider, CoachProvider, PlayerProvider are resolved
	// "<type>.<name>" provider strings for each role.
	PlannerProvider string
	CoachProvider   string
	PlayerProvider  string
	// MaxTurns bounds the coach/player inner loop.
	MaxTurns int
	// Workspace is the log destination; <Workspace>/logs is used for every
	// log file this process writes.
	Workspace string
	// ConfigSource records where the loaded config came from, for the
	// startup banner.
	ConfigSource string
}

const planDirName = "g3-plan"

// PlanDirName is the fixed subdirectory name every codepath's plan
// directory uses.
const PlanDirName = planDirName

// expandTilde expands a leading "~" or "~/" to the current user's home
// directory, mirroring the shell's own expansion since Go does not do this
// for us when a path arrives as a raw CLI argument.
func expandTilde(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	if path != "~" && !strings.HasPrefix(path, "~/") {
		// "~otheruser/..." is not supported; treat literally.
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", plannererrors.NewValidationError("resolve home directory").WithCause(err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// NewConfig expands codepath, verifies it exists and is a directory,
// resolves each role's provider from cfg, and returns the assembled
// planner Config. workspace defaults to codepath when empty.
func NewConfig(codepath, workspace string, useGit bool, maxTurns int, cfg *config.Config) (*Config, error) {
	expanded, err := expandTilde(codepath)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return nil, plannererrors.NewValidationError("resolve codepath").WithCause(err).WithField("codepath")
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, plannererrors.NewValidationError("codepath does not exist or is not a directory").
			WithField("codepath").WithValue(abs)
	}

	if workspace == "" {
		workspace = abs
	}
	workspaceExpanded, err := expandTilde(workspace)
	if err != nil {
		return nil, err
	}
	workspaceAbs, err := filepath.Abs(workspaceExpanded)
	if err != nil {
		return nil, plannererrors.NewValidationError("resolve workspace").WithCause(err).WithField("workspace")
	}

	plannerProvider, ok := cfg.ResolveProvider("planner")
	if !ok {
		return nil, plannererrors.NewValidationError("no provider resolves for planner role; set providers.default_provider or providers.planner").
			WithField("providers")
	}
	coachProvider, ok := cfg.ResolveProvider("coach")
	if !ok {
		coachProvider = plannerProvider
	}
	playerProvider, ok := cfg.ResolveProvider("player")
	if !ok {
		playerProvider = plannerProvider
	}

	if maxTurns <= 0 {
		maxTurns = 10
	}

	return &Config{
		Codepath:        abs,
		PlanDir:         filepath.Join(abs, planDirName),
		UseGit:          useGit,
		PlannerProvider: plannerProvider,
		CoachProvider:   coachProvider,
		PlayerProvider:  playerProvider,
		MaxTurns:        maxTurns,
		Workspace:       workspaceAbs,
		ConfigSource:    config.ConfigFile(),
	}, nil
}

// LogsDir returns <Workspace>/logs, the exclusive root for every log file
// this process writes, per the "Log location" testable property.
func (c *Config) LogsDir() string {
	return filepath.Join(c.Workspace, "logs")
}
