package observability

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestWithRunID(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-123")

	lc := GetContext(ctx)
	if lc.RunID != "run-123" {
		t.Errorf("expected run-123, got %s", lc.RunID)
	}
}

func TestContextChaining(t *testing.T) {
	ctx := context.Background()
	ctx = WithRunID(ctx, "run-1")
	ctx = WithCommand(ctx, "publish")
	ctx = WithStage(ctx, "extract")

	lc := GetContext(ctx)
	if lc.RunID != "run-1" {
		t.Error("RunID was lost in chaining")
	}
	if lc.Command != "publish" {
		t.Error("Command was lost in chaining")
	}
	if lc.Stage != "extract" {
		t.Error("Stage was lost in chaining")
	}
}

func TestOverwriteStage(t *testing.T) {
	ctx := WithStage(context.Background(), "fetch")
	ctx = WithStage(ctx, "sync")

	if lc := GetContext(ctx); lc.Stage != "sync" {
		t.Errorf("expected sync, got %s", lc.Stage)
	}
}

func TestEmptyContext(t *testing.T) {
	lc := GetContext(context.Background())
	if lc.RunID != "" || lc.Command != "" || lc.Stage != "" {
		t.Error("expected empty context")
	}
}

func TestInfoContext(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	ctx := WithRunID(context.Background(), "run-1")
	ctx = WithStage(ctx, "publish")

	InfoContext(ctx, "test message", slog.String("extra", "value"))

	output := buf.String()
	for _, want := range []string{"run-1", "publish", "test message", "extra"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in log output: %s", want, output)
		}
	}
}

func TestDebugContextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	defer slog.SetDefault(prev)

	DebugContext(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Errorf("debug output should be suppressed at info level, got %s", buf.String())
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "debug", "json")
	logger.Debug("hello")
	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("expected JSON output, got %s", buf.String())
	}

	buf.Reset()
	logger = NewLogger(&buf, "bogus", "text")
	logger.Debug("suppressed")
	logger.Info("shown")
	if strings.Contains(buf.String(), "suppressed") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected text output: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
