package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"git.home.luguber.info/inful/ncms/internal/config"
)

// TestDefaultPolicy verifies the baseline default values.
func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.Mode != config.RetryBackoffExponential {
		t.Fatalf("expected exponential default mode got %s", p.Mode)
	}
	if p.Initial != time.Second {
		t.Fatalf("expected initial 1s got %v", p.Initial)
	}
	if p.Max != 30*time.Second {
		t.Fatalf("expected max 30s got %v", p.Max)
	}
	if p.MaxRetries != 0 {
		t.Fatalf("expected retries disabled by default got %d", p.MaxRetries)
	}
}

// TestNewPolicyOverrides checks override precedence and clamping when initial > max.
func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, 5*time.Second, 2*time.Second, 5)
	if p.Initial != 2*time.Second {
		t.Fatalf("expected clamped initial 2s got %v", p.Initial)
	}
	if p.Max != 2*time.Second {
		t.Fatalf("expected max 2s got %v", p.Max)
	}
	if p.Mode != config.RetryBackoffFixed {
		t.Fatalf("expected fixed mode got %s", p.Mode)
	}
	if p.MaxRetries != 5 {
		t.Fatalf("expected maxRetries 5 got %d", p.MaxRetries)
	}
}

// TestDelayModes ensures fixed, linear, exponential behave and respect cap.
func TestDelayModes(t *testing.T) {
	fixed := NewPolicy(config.RetryBackoffFixed, 100*time.Millisecond, 500*time.Millisecond, 3)
	for i := 1; i <= 3; i++ {
		if d := fixed.Delay(i); d != 100*time.Millisecond {
			t.Fatalf("fixed attempt %d expected 100ms got %v", i, d)
		}
	}

	linear := NewPolicy(config.RetryBackoffLinear, 100*time.Millisecond, 250*time.Millisecond, 5)
	cases := []struct {
		attempt int
		want    time.Duration
	}{{1, 100 * time.Millisecond}, {2, 200 * time.Millisecond}, {3, 250 * time.Millisecond}, {4, 250 * time.Millisecond}}
	for _, c := range cases {
		if got := linear.Delay(c.attempt); got != c.want {
			t.Fatalf("linear attempt %d expected %v got %v", c.attempt, c.want, got)
		}
	}

	exp := NewPolicy(config.RetryBackoffExponential, 50*time.Millisecond, 160*time.Millisecond, 5)
	expCases := []struct {
		attempt int
		want    time.Duration
	}{{1, 50 * time.Millisecond}, {2, 100 * time.Millisecond}, {3, 160 * time.Millisecond}, {4, 160 * time.Millisecond}}
	for _, c := range expCases {
		if got := exp.Delay(c.attempt); got != c.want {
			t.Fatalf("exp attempt %d expected %v got %v", c.attempt, c.want, got)
		}
	}
}

// TestDelayEdgeCases ensures non-positive attempts yield zero.
func TestDelayEdgeCases(t *testing.T) {
	p := NewPolicy(config.RetryBackoffLinear, 10*time.Millisecond, 20*time.Millisecond, 1)
	if d := p.Delay(0); d != 0 {
		t.Fatalf("attempt 0 expected 0 got %v", d)
	}
	if d := p.Delay(-1); d != 0 {
		t.Fatalf("attempt -1 expected 0 got %v", d)
	}
}

// TestValidate covers validation error paths.
func TestValidate(t *testing.T) {
	badInitial := Policy{Mode: config.RetryBackoffLinear, Initial: 0, Max: time.Second, MaxRetries: 1}
	if err := badInitial.Validate(); err == nil {
		t.Fatalf("expected error for zero initial")
	}
	badRetries := Policy{Mode: config.RetryBackoffLinear, Initial: time.Second, Max: 2 * time.Second, MaxRetries: -1}
	if err := badRetries.Validate(); err == nil {
		t.Fatalf("expected error for negative retries")
	}
	good := Policy{Mode: config.RetryBackoffLinear, Initial: time.Second, Max: 2 * time.Second, MaxRetries: 0}
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

// TestUnknownModeFallsBack leaves mode default when unknown string supplied.
func TestUnknownModeFallsBack(t *testing.T) {
	p := NewPolicy("weird", 250*time.Millisecond, 500*time.Millisecond, 1)
	if p.Mode != config.RetryBackoffExponential {
		t.Fatalf("unknown mode should fall back to exponential got %s", p.Mode)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Notion.Retry = config.Retry{MaxRetries: 4, Backoff: config.RetryBackoffFixed, InitialDelay: "20ms", MaxDelay: "1s"}
	p := FromConfig(cfg)
	if p.MaxRetries != 4 || p.Mode != config.RetryBackoffFixed || p.Initial != 20*time.Millisecond || p.Max != time.Second {
		t.Fatalf("unexpected policy %+v", p)
	}
}

func TestDo(t *testing.T) {
	errTransient := errors.New("transient")
	errPermanent := errors.New("permanent")
	isTransient := func(err error) bool { return errors.Is(err, errTransient) }

	t.Run("no retries by default", func(t *testing.T) {
		calls := 0
		err := DefaultPolicy().Do(context.Background(), "op", func() error { calls++; return errTransient }, isTransient)
		if !errors.Is(err, errTransient) || calls != 1 {
			t.Fatalf("expected single failing call, got calls=%d err=%v", calls, err)
		}
	})

	t.Run("succeeds after retries", func(t *testing.T) {
		calls := 0
		p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 3)
		err := p.Do(context.Background(), "op", func() error {
			calls++
			if calls < 3 {
				return errTransient
			}
			return nil
		}, isTransient)
		if err != nil || calls != 3 {
			t.Fatalf("expected success on third call, got calls=%d err=%v", calls, err)
		}
	})

	t.Run("permanent error stops immediately", func(t *testing.T) {
		calls := 0
		p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 3)
		err := p.Do(context.Background(), "op", func() error { calls++; return errPermanent }, isTransient)
		if !errors.Is(err, errPermanent) || calls != 1 {
			t.Fatalf("expected one call, got calls=%d err=%v", calls, err)
		}
	})

	t.Run("cancelled context stops waiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		calls := 0
		p := NewPolicy(config.RetryBackoffFixed, time.Hour, time.Hour, 3)
		err := p.Do(ctx, "op", func() error { calls++; return errTransient }, isTransient)
		if !errors.Is(err, errTransient) || calls != 1 {
			t.Fatalf("expected abort after first call, got calls=%d err=%v", calls, err)
		}
	})
}
