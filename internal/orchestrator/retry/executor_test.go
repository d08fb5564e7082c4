package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	plannererrors "github.com/forgeplan/g3planner/internal/errors"
)

type recordingNotifier struct {
	retryableCalls int
	retryingDelays []time.Duration
	exhausted      bool
}

func (r *recordingNotifier) OnRetryableError(Role, int, int, plannererrors.RecoverableKind, string) {
	r.retryableCalls++
}
func (r *recordingNotifier) OnRetrying(_ Role, delay time.Duration) {
	r.retryingDelays = append(r.retryingDelays, delay)
}
func (r *recordingNotifier) OnExhausted(Role, uint) { r.exhausted = true }

func fastConfig(role Role, maxRetries uint) Config {
	return Config{
		Role:       role,
		MaxRetries: maxRetries,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		JitterFrac: 0,
	}
}

func TestExecuteWithRetry_SucceedsFirstTry(t *testing.T) {
	calls := 0
	result, err := ExecuteWithRetry(context.Background(), fastConfig(RolePlanner, 3), nil, func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Fatalf("unexpected result: %q", result)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestExecuteWithRetry_RecoversAfterRetries(t *testing.T) {
	calls := 0
	notifier := &recordingNotifier{}
	result, err := ExecuteWithRetry(context.Background(), fastConfig(RoleCoach, 3), notifier, func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, plannererrors.NewLLMError("coach", errors.New("rate limited")).WithKind(plannererrors.RecoverableRateLimit)
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 42 {
		t.Fatalf("unexpected result: %d", result)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if notifier.retryableCalls != 2 {
		t.Fatalf("expected 2 retryable notifications, got %d", notifier.retryableCalls)
	}
	if notifier.exhausted {
		t.Fatal("should not report exhausted on eventual success")
	}
}

func TestExecuteWithRetry_NonRecoverableReturnsImmediately(t *testing.T) {
	calls := 0
	sentinelErr := errors.New("boom")
	_, err := ExecuteWithRetry(context.Background(), fastConfig(RolePlayer, 5), nil, func(ctx context.Context) (string, error) {
		calls++
		return "", sentinelErr
	})
	if !errors.Is(err, sentinelErr) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly 1 call for a non-recoverable error, got %d", calls)
	}
}

func TestExecuteWithRetry_ExhaustsRetries(t *testing.T) {
	calls := 0
	notifier := &recordingNotifier{}
	_, err := ExecuteWithRetry(context.Background(), fastConfig(RolePlanner, 2), notifier, func(ctx context.Context) (string, error) {
		calls++
		return "", plannererrors.NewLLMError("planner", errors.New("server error")).WithKind(plannererrors.RecoverableServerError)
	})
	if err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls (1 initial + 2 retries), got %d", calls)
	}
	if !notifier.exhausted {
		t.Fatal("expected OnExhausted to be called")
	}
	if len(notifier.retryingDelays) != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %d", len(notifier.retryingDelays))
	}
}

func TestExecuteWithRetry_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := ExecuteWithRetry(ctx, fastConfig(RoleCoach, 5), nil, func(ctx context.Context) (string, error) {
		calls++
		cancel()
		return "", plannererrors.NewLLMError("coach", errors.New("timeout")).WithKind(plannererrors.RecoverableTimeout)
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call before cancellation observed, got %d", calls)
	}
}

func TestExecuteWithRetry_UsesRetryAfterHint(t *testing.T) {
	cfg := fastConfig(RolePlanner, 1)
	cfg.MaxDelay = 50 * time.Millisecond
	calls := 0
	start := time.Now()
	_, _ = ExecuteWithRetry(context.Background(), cfg, nil, func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", plannererrors.NewLLMError("planner", errors.New("rate limited")).
				WithKind(plannererrors.RecoverableRateLimit).
				WithRetryAfter(10 * time.Millisecond)
		}
		return "done", nil
	})
	if elapsed := time.Since(start); elapsed < 9*time.Millisecond {
		t.Fatalf("expected to honor the 10ms retry-after hint, elapsed %v", elapsed)
	}
}

func TestBackoffDelay_CapsAtMaxDelay(t *testing.T) {
	cfg := Config{BaseDelay: time.Second, MaxDelay: 3 * time.Second, JitterFrac: 0}
	d := backoffDelay(cfg, 10, 0)
	if d != 3*time.Second {
		t.Fatalf("expected delay capped at MaxDelay, got %v", d)
	}
}

func TestBackoffDelay_RetryAfterCappedAtMaxDelay(t *testing.T) {
	cfg := Config{BaseDelay: time.Second, MaxDelay: 2 * time.Second, JitterFrac: 0}
	d := backoffDelay(cfg, 0, 10*time.Second)
	if d != 2*time.Second {
		t.Fatalf("expected retry-after hint capped at MaxDelay, got %v", d)
	}
}
