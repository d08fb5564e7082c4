package retry

import (
	"context"
	"fmt"
	"math"
	mathrand "math/rand/v2"
	"time"

	plannererrors "github.com/forgeplan/g3planner/internal/errors"
)

// Role identifies which caller is retrying, for display and per-role
// bookkeeping via Manager.
type Role string

// The three roles the retry driver is configured for. "planner" is the
// gateway's own role (refinement, summarisation, commit messages,
// discovery); "coach" and "player" back the inner loop's two sub-agents.
const (
	RolePlanner Role = "planner"
	RoleCoach   Role = "coach"
	RolePlayer  Role = "player"
)

// Config configures ExecuteWithRetry's backoff schedule for one role.
type Config struct {
	Role       Role
	MaxRetries uint
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	JitterFrac float64
}

// PlannerPreset is compiled in per SPEC_FULL.md §4.D's resolved open
// question: the planner role's MaxRetries is fixed at 3 rather than read
// from agent.autonomous_max_retry_attempts, since that configuration value
// is documented as applying to autonomous (non-planning) mode.
func PlannerPreset() Config {
	return Config{
		Role:       RolePlanner,
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		JitterFrac: 0.2,
	}
}

// RolePreset builds a Config for the coach or player role from the
// configured agent.max_retry_attempts value, per §6's "coach/player
// presets read max_retry_attempts" rule.
func RolePreset(role Role, maxRetryAttempts int) Config {
	if maxRetryAttempts < 0 {
		maxRetryAttempts = 0
	}
	return Config{
		Role:       role,
		MaxRetries: uint(maxRetryAttempts),
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		JitterFrac: 0.2,
	}
}

// Notifier receives the retry driver's user-visible events. A nil Notifier
// passed to ExecuteWithRetry is replaced with a no-op implementation.
type Notifier interface {
	// OnRetryableError is called after a Recoverable error on attempt n of
	// N (1-indexed), before the backoff sleep.
	OnRetryableError(role Role, attempt, maxAttempts int, kind plannererrors.RecoverableKind, message string)
	// OnRetrying is called immediately before sleeping for delay.
	OnRetrying(role Role, delay time.Duration)
	// OnExhausted is called once, after the final retry attempt fails.
	OnExhausted(role Role, maxRetries uint)
}

type nopNotifier struct{}

func (nopNotifier) OnRetryableError(Role, int, int, plannererrors.RecoverableKind, string) {}
func (nopNotifier) OnRetrying(Role, time.Duration)                                         {}
func (nopNotifier) OnExhausted(Role, uint)                                                 {}

// Op is the operation ExecuteWithRetry runs. An error should be a
// *plannererrors.LLMError (or wrap one) for classification; any other error
// type is treated as NonRecoverable.
type Op[T any] func(ctx context.Context) (T, error)

// ExecuteWithRetry runs op, classifying any returned error via
// plannererrors.LLMError.Kind. Recoverable errors are retried with
// jittered exponential backoff up to cfg.MaxRetries times; NonRecoverable
// errors and context cancellation return immediately. This is the
// concrete contract backing SPEC_FULL.md §4.D, combining the teacher's
// orchestrator/retry per-role Manager bookkeeping (invoked by callers
// around this function, see Manager) with
// theRebelliousNerd-codenerd's RetryExecutor backoff-and-classify shape.
func ExecuteWithRetry[T any](ctx context.Context, cfg Config, notifier Notifier, op Op[T]) (T, error) {
	if notifier == nil {
		notifier = nopNotifier{}
	}

	var zero T
	maxAttempts := int(cfg.MaxRetries) + 1

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		kind, retryAfter := classify(err)
		if kind == plannererrors.RecoverableNone {
			return zero, err
		}

		notifier.OnRetryableError(cfg.Role, attempt, maxAttempts, kind, err.Error())

		if attempt == maxAttempts {
			notifier.OnExhausted(cfg.Role, cfg.MaxRetries)
			break
		}

		delay := backoffDelay(cfg, attempt-1, retryAfter)
		notifier.OnRetrying(cfg.Role, delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, fmt.Errorf("%s: max retries (%d) exhausted: %w", cfg.Role, cfg.MaxRetries, lastErr)
}

// classify extracts the RecoverableKind and any server-supplied
// retry-after hint from err. Errors that are not (or do not wrap) an
// *plannererrors.LLMError are treated as NonRecoverable, per §4.D: "Only
// Recoverable variants trigger a retry."
func classify(err error) (plannererrors.RecoverableKind, time.Duration) {
	var llmErr *plannererrors.LLMError
	if plannererrors.As(err, &llmErr) {
		return llmErr.Kind, llmErr.RetryAfter
	}
	return plannererrors.RecoverableNone, 0
}

// backoffDelay computes delay_n = min(max_delay, base_delay * 2^n) *
// (1 + uniform(-jitter_frac, +jitter_frac)), substituting a server-supplied
// retryAfter hint (capped at MaxDelay) when present, per §4.D.
func backoffDelay(cfg Config, n int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		if retryAfter > cfg.MaxDelay {
			return cfg.MaxDelay
		}
		return retryAfter
	}

	base := float64(cfg.BaseDelay) * math.Pow(2, float64(n))
	if max := float64(cfg.MaxDelay); base > max {
		base = max
	}

	jitter := 1 + (mathrand.Float64()*2-1)*cfg.JitterFrac
	delay := time.Duration(base * jitter)
	if delay < 0 {
		delay = 0
	}
	if delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return delay
}
