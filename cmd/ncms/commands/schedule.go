package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"git.home.luguber.info/inful/ncms/internal/daemon"
	ferrors "git.home.luguber.info/inful/ncms/internal/foundation/errors"
	"git.home.luguber.info/inful/ncms/internal/logfields"
	"git.home.luguber.info/inful/ncms/internal/metrics"
	"git.home.luguber.info/inful/ncms/internal/observability"
	"git.home.luguber.info/inful/ncms/internal/publish"
)

// ScheduleCmd implements the 'schedule' command.
type ScheduleCmd struct {
	Every       time.Duration `help:"Interval between runs" default:"15m"`
	Cron        string        `help:"Cron expression; overrides --every"`
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address (e.g. :9090)"`
	Export      bool          `help:"Only regenerate artifacts; never push or update status"`
}

func (s *ScheduleCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	if err := cfg.ValidateForRun(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rt, err := newPipeline(cfg, s.MetricsAddr != "")
	if err != nil {
		return err
	}
	defer rt.Close()

	if s.MetricsAddr != "" {
		srv := &http.Server{Addr: s.MetricsAddr, Handler: metrics.HTTPHandler(rt.registry), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server failed", logfields.URL(s.MetricsAddr), logfields.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
		slog.Info("Serving metrics", logfields.URL(s.MetricsAddr))
	}

	sched, err := daemon.NewScheduler()
	if err != nil {
		return err
	}

	// Runs never overlap; the scheduler reschedules instead. The mutex keeps
	// a run from starting after shutdown began.
	var mu sync.Mutex
	task := func() {
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		s.runOnce(ctx, rt)
	}

	if s.Cron != "" {
		_, err = sched.ScheduleCron("ncms-run", s.Cron, task)
	} else {
		_, err = sched.ScheduleEvery("ncms-run", s.Every, task)
	}
	if err != nil {
		return err
	}

	sched.Start(ctx)
	observability.InfoContext(ctx, "Scheduler started",
		slog.String("every", s.Every.String()),
		slog.String("cron", s.Cron),
		slog.Bool("export_only", s.Export))

	<-ctx.Done()
	slog.Info("Shutdown signal received, stopping scheduler")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := sched.Stop(stopCtx); err != nil {
		return ferrors.InternalError("failed to stop scheduler").WithCause(err).Build()
	}
	mu.Lock()
	defer mu.Unlock()
	slog.Info("Scheduler stopped")
	return nil
}

// runOnce executes one pipeline run. Errors are logged; the schedule keeps going.
func (s *ScheduleCmd) runOnce(ctx context.Context, rt *pipeline) {
	var (
		report *publish.Report
		err    error
	)
	if s.Export {
		report, err = rt.coordinator.Export(ctx)
	} else {
		report, err = rt.coordinator.Run(ctx)
	}
	rt.flushMetrics()
	if err != nil {
		slog.Error("Scheduled run failed", logfields.Error(err))
		return
	}
	slog.Info("Scheduled run finished",
		logfields.RunID(report.RunID),
		logfields.Outcome(string(report.Outcome)),
		logfields.Count(len(report.Articles)))
}
