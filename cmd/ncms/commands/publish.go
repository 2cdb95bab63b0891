package commands

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/ncms/internal/foundation/errors"
	"git.home.luguber.info/inful/ncms/internal/metrics"
	"git.home.luguber.info/inful/ncms/internal/publish"
)

// PublishCmd implements the 'publish' command.
type PublishCmd struct{}

func (p *PublishCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rt, err := newPipeline(cfg, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	report, err := rt.coordinator.Run(ctx)
	rt.flushMetrics()
	return finishRun(os.Stdout, report, err)
}

// ExportCmd implements the 'export' command.
type ExportCmd struct{}

func (e *ExportCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rt, err := newPipeline(cfg, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	report, err := rt.coordinator.Export(ctx)
	rt.flushMetrics()
	return finishRun(os.Stdout, report, err)
}

// finishRun prints the report and turns a failed publish into an error so
// the process exits non-zero.
func finishRun(w io.Writer, report *publish.Report, err error) error {
	if report != nil {
		printReport(w, report)
	}
	if err != nil {
		return err
	}
	if report.Outcome == metrics.OutcomeFailed {
		return errors.GitError("publish failed; article status left unchanged").
			WithCause(report.PublishErr).
			WithContext("run_id", report.RunID).
			Build()
	}
	return nil
}
