package planner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/forgeplan/g3planner/internal/artifact"
	"github.com/forgeplan/g3planner/internal/config"
	"github.com/forgeplan/g3planner/internal/dispatch"
	plannererrors "github.com/forgeplan/g3planner/internal/errors"
	"github.com/forgeplan/g3planner/internal/gateway"
	"github.com/forgeplan/g3planner/internal/gitbridge"
	"github.com/forgeplan/g3planner/internal/history"
	"github.com/forgeplan/g3planner/internal/logging"
	"github.com/forgeplan/g3planner/internal/orchestrator/retry"
	"github.com/forgeplan/g3planner/internal/planner/phase"
)

// Driver sequences the concrete phase executors, starting at PhaseStartup
// and repeating refine → implement → complete cycles until a phase reports
// PhaseFailed or an executor returns an error (see Run). It owns every
// long-lived component
// (artifact store, history journal, git bridge, gateway, sub-agent
// invokers) and constructs a fresh executor, and a fresh phase.PhaseContext
// bound to the loop's current context, on each iteration.
type Driver struct {
	cfg       *Config
	callbacks phase.Callbacks
	logger    *logging.Logger

	store   *artifact.Store
	journal *history.Journal
	git     *gitbridge.Bridge // nil when UseGit is false

	gwa    *gatewayAdapter
	player dispatch.Invoker
	coach  dispatch.Invoker

	playerRetry retry.Config
	coachRetry  retry.Config
	notifier    retry.Notifier
}

// NewDriver assembles a Driver from cfg and appCfg (the loaded viper
// configuration). callbacks must not be nil for any run that can reach an
// interactive prompt.
func NewDriver(cfg *Config, appCfg *config.Config, callbacks phase.Callbacks) (*Driver, error) {
	if err := os.MkdirAll(cfg.LogsDir(), 0o755); err != nil {
		return nil, plannererrors.NewValidationError("create logs directory").WithCause(err)
	}
	rotation := logging.RotationConfig{MaxSizeMB: appCfg.Logging.MaxSizeMB, MaxBackups: appCfg.Logging.MaxBackups}
	logger, err := logging.NewLoggerWithRotation(cfg.LogsDir(), appCfg.Logging.Level, rotation)
	if err != nil {
		return nil, err
	}

	store := artifact.New(cfg.PlanDir)
	journal := history.New(filepath.Join(cfg.PlanDir, artifact.HistoryFile))

	var git *gitbridge.Bridge
	if cfg.UseGit {
		git = gitbridge.New(cfg.Codepath, false)
	}

	client, err := newProviderClient(cfg.PlannerProvider)
	if err != nil {
		return nil, err
	}
	notifier := &cliNotifier{}
	ui := gateway.NewUIWriter(os.Stdout)
	gw := gateway.New(client, notifier, ui, logger)
	gwa := newGatewayAdapter(gw)

	env := []string{WorkspacePathEnv + "=" + cfg.Workspace}
	invoker := dispatch.NewSubprocessInvoker(cfg.Codepath, env)

	return &Driver{
		cfg:         cfg,
		callbacks:   callbacks,
		logger:      logger,
		store:       store,
		journal:     journal,
		git:         git,
		gwa:         gwa,
		player:      invoker,
		coach:       invoker,
		playerRetry: retry.RolePreset(retry.RolePlayer, appCfg.Agent.MaxRetryAttempts),
		coachRetry:  retry.RolePreset(retry.RoleCoach, appCfg.Agent.MaxRetryAttempts),
		notifier:    notifier,
	}, nil
}

// Run drives phase executors from PhaseStartup, repeating startup → refine →
// implement → complete → next cycle for as long as each cycle finishes at
// PhaseComplete, per §4.G's diagram (the "next cycle" arrow runs from
// Complete back to Refine). The only ways out of Run are a genuine executor
// error, or PhaseFailed — which also covers a clean user quit at any prompt
// (see StartupExecutor.Execute's doc comment for the (PhaseFailed,
// nil)-is-quit convention).
func (d *Driver) Run(parent context.Context) error {
	current := phase.PhaseStartup

	for {
		executor, err := d.buildExecutor(parent, current)
		if err != nil {
			d.callbacks.OnComplete(false, err.Error())
			return err
		}

		next, err := executor.Execute(parent)
		if err != nil {
			d.callbacks.OnComplete(false, err.Error())
			return err
		}

		if next != current {
			d.callbacks.OnPhaseChange(current, next)
		}
		current = next

		// Only the Complete executor's own PhaseComplete closes the cycle;
		// any other executor reporting PhaseComplete hands over to it.
		if executor.Phase() == phase.PhaseComplete && current == phase.PhaseComplete {
			d.callbacks.OnComplete(true, "cycle complete")
			d.callbacks.OnPhaseChange(phase.PhaseComplete, phase.PhaseRefine)
			current = phase.PhaseRefine
			continue
		}

		if current == phase.PhaseFailed {
			break
		}
	}

	// current is PhaseFailed here: either a genuine failure already
	// reported above, or a clean user quit. Exit zero either way, but
	// still report the terminal banner as unsuccessful.
	d.callbacks.OnComplete(false, "cycle ended without completing")
	return nil
}

// buildExecutor constructs the phase.PhaseContext and concrete executor
// for phase p, binding ctx into a fresh gitAdapter (when git is enabled)
// since the narrow phase.GitBridge interface carries no context parameter
// of its own.
func (d *Driver) buildExecutor(ctx context.Context, p phase.Phase) (phase.PhaseExecutor, error) {
	var gitIface phase.GitBridge
	if d.git != nil {
		gitIface = newGitAdapter(ctx, d.git, d.journal, d.cfg.PlanDir)
	}

	pctx := &phase.PhaseContext{
		Artifacts: d.store,
		History:   d.journal,
		Git:       gitIface,
		Gateway:   d.gwa,
		Logger:    d.logger,
		Callbacks: d.callbacks,
	}
	if err := pctx.Validate(); err != nil {
		return nil, err
	}

	switch p {
	case phase.PhaseStartup:
		return NewStartupExecutor(d.cfg, d.store, d.git, d.callbacks, d.logger), nil
	case phase.PhaseRecoveryPrompt:
		return NewRecoveryPromptExecutor(d.store, d.journal, d.callbacks), nil
	case phase.PhaseDiscovery:
		return NewDiscoveryExecutor(pctx), nil
	case phase.PhaseRefine:
		return NewRefineExecutor(pctx, d.journal, d.cfg.PlanDir), nil
	case phase.PhaseImplement:
		return NewImplementExecutor(pctx, d.journal, d.cfg, d.git, d.player, d.coach, d.playerRetry, d.coachRetry, d.notifier), nil
	case phase.PhaseComplete:
		return NewCompleteExecutor(pctx, d.journal, d.git, d.gwa, d.cfg), nil
	default:
		return nil, plannererrors.NewPhaseError("no executor registered for phase", plannererrors.ErrInvalidTransition).WithFrom(string(p))
	}
}

// newProviderClient resolves a "<type>.<name>" provider string into a
// gateway.Client. Only the "anthropic" type is currently supported,
// mirroring the single Client implementation transport.go provides; the
// API key is read from ANTHROPIC_API_KEY, never from config, since
// SPEC_FULL.md's config shape carries no secrets.
func newProviderClient(provider string) (gateway.Client, error) {
	providerType, model, ok := strings.Cut(provider, ".")
	if !ok {
		return nil, plannererrors.NewValidationError("provider must be in \"<type>.<name>\" form").
			WithField("provider").WithValue(provider)
	}
	switch providerType {
	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, plannererrors.NewValidationError("ANTHROPIC_API_KEY is not set").WithField("provider")
		}
		return gateway.NewAnthropicClient(apiKey, gateway.WithModel(model)), nil
	default:
		return nil, plannererrors.NewValidationError("unsupported provider type").
			WithField("provider").WithValue(providerType)
	}
}

// cliNotifier prints retry events to stdout in the literal formats §4.D and
// §7 specify: a classification line naming the recoverable variant via
// kind.String(), then the retry-attempt line, a per-retry delay line, and an
// exhaustion line.
type cliNotifier struct{}

func (cliNotifier) OnRetryableError(role retry.Role, attempt, max int, kind plannererrors.RecoverableKind, msg string) {
	fmt.Printf("⚠️ Recoverable error: %s\n", kind.String())
	fmt.Printf("⚠️ %s error (attempt %d/%d): %s — %s\n", role, attempt, max, kind.String(), msg)
}

func (cliNotifier) OnRetrying(role retry.Role, delay time.Duration) {
	fmt.Printf("🔄 Retrying %s in %ds…\n", role, int(delay.Round(time.Second).Seconds()))
}

func (cliNotifier) OnExhausted(role retry.Role, attempts uint) {
	fmt.Printf("🔄 Max retries (%d) reached for %s\n", attempts, role)
}

var _ retry.Notifier = cliNotifier{}
