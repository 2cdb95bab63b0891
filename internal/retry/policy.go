package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/ncms/internal/config"
	"git.home.luguber.info/inful/ncms/internal/logfields"
)

// Policy encapsulates retry/backoff settings for transient failures.
// It is immutable after construction.
type Policy struct {
	Mode       config.RetryBackoffMode // fixed|linear|exponential
	Initial    time.Duration           // base delay
	Max        time.Duration           // cap for growth
	MaxRetries int                     // maximum retry attempts after the first failure
}

// DefaultPolicy performs no retries: a failing call fails the run.
func DefaultPolicy() Policy {
	return Policy{Mode: config.RetryBackoffExponential, Initial: time.Second, Max: 30 * time.Second, MaxRetries: 0}
}

// NewPolicy builds a policy from raw config fields; zero/invalid values fall back to defaults.
func NewPolicy(mode config.RetryBackoffMode, initial, maxDuration time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDuration > 0 {
		p.Max = maxDuration
	}
	if m := config.NormalizeRetryBackoff(string(mode)); m != "" {
		p.Mode = m
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// FromConfig builds the source retry policy from validated configuration.
func FromConfig(cfg *config.Config) Policy {
	initial, maxDelay, err := cfg.RetryDelays()
	if err != nil {
		return NewPolicy(cfg.Notion.Retry.Backoff, 0, 0, cfg.Notion.Retry.MaxRetries)
	}
	return NewPolicy(cfg.Notion.Retry.Backoff, initial, maxDelay, cfg.Notion.Retry.MaxRetries)
}

// Delay returns the backoff delay for the given retry attempt number (1-based: first retry => 1).
func (p Policy) Delay(retryCount int) time.Duration {
	if retryCount <= 0 {
		return 0
	}
	switch p.Mode {
	case config.RetryBackoffFixed:
		return p.Initial
	case config.RetryBackoffExponential:
		d := p.Initial * (1 << (retryCount - 1))
		if d > p.Max || d <= 0 {
			return p.Max
		}
		return d
	default: // linear
		d := time.Duration(retryCount) * p.Initial
		if d > p.Max {
			return p.Max
		}
		return d
	}
}

// Validate ensures invariants; returns error if policy impossible to apply.
func (p Policy) Validate() error {
	if p.Initial <= 0 {
		return fmt.Errorf("initial must be >0")
	}
	if p.Max <= 0 {
		return fmt.Errorf("max must be >0")
	}
	if p.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	return nil
}

// Do runs fn until it succeeds, retryable reports false, retries are
// exhausted, or ctx is done. The last error is returned.
func (p Policy) Do(ctx context.Context, op string, fn func() error, retryable func(error) bool) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt >= p.MaxRetries || (retryable != nil && !retryable(err)) {
			return err
		}

		delay := p.Delay(attempt + 1)
		slog.Warn("Retrying after transient failure",
			slog.String("operation", op),
			logfields.Attempt(attempt+1),
			slog.Duration("delay", delay),
			logfields.Error(err))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}
