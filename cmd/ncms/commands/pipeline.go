package commands

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/ncms/internal/config"
	"git.home.luguber.info/inful/ncms/internal/eventstore"
	"git.home.luguber.info/inful/ncms/internal/git"
	"git.home.luguber.info/inful/ncms/internal/logfields"
	"git.home.luguber.info/inful/ncms/internal/metrics"
	"git.home.luguber.info/inful/ncms/internal/notify"
	"git.home.luguber.info/inful/ncms/internal/notion"
	"git.home.luguber.info/inful/ncms/internal/publish"
)

// pipeline wires the coordinator and its optional collaborators from config.
type pipeline struct {
	cfg         *config.Config
	coordinator *publish.Coordinator
	registry    *prom.Registry
	store       *eventstore.SQLiteStore
	notifier    notify.Notifier
}

// newPipeline builds the coordinator. withRegistry forces a metrics registry
// even when no textfile is configured (for the metrics endpoint).
func newPipeline(cfg *config.Config, withRegistry bool) (*pipeline, error) {
	rt := &pipeline{cfg: cfg, notifier: notify.Noop{}}

	rt.coordinator = publish.NewCoordinator(cfg, notion.NewClient(cfg), git.NewPublisher(cfg))

	if withRegistry || cfg.Metrics.TextfilePath != "" {
		rt.registry = prom.NewRegistry()
		rt.coordinator.WithRecorder(metrics.NewPrometheusRecorder(rt.registry))
	}

	if cfg.State.Database != "" {
		var err error
		if rt.store, err = eventstore.NewSQLiteStore(cfg.State.Database); err != nil {
			return nil, err
		}
		rt.coordinator.WithEventStore(rt.store)
	}

	if cfg.Notify.NATSURL != "" {
		// Notifications are optional; an unreachable server only disables them.
		if nc, err := notify.NewNATSClient(cfg); err != nil {
			slog.Warn("Publish notifications disabled", logfields.URL(cfg.Notify.NATSURL), logfields.Error(err))
		} else {
			rt.notifier = nc
			rt.coordinator.WithNotifier(nc)
		}
	}
	return rt, nil
}

// flushMetrics writes the textfile when one is configured.
func (rt *pipeline) flushMetrics() {
	if rt.registry == nil || rt.cfg.Metrics.TextfilePath == "" {
		return
	}
	if err := metrics.WriteTextfile(rt.cfg.Metrics.TextfilePath, rt.registry); err != nil {
		slog.Warn("Failed to write metrics textfile", logfields.Path(rt.cfg.Metrics.TextfilePath), logfields.Error(err))
	}
}

func (rt *pipeline) Close() {
	_ = rt.notifier.Close()
	if rt.store != nil {
		_ = rt.store.Close()
	}
}

func printReport(w io.Writer, r *publish.Report) {
	_, _ = fmt.Fprintf(w, "Run %s: %s (%d articles, %s)\n", r.RunID, r.Outcome, len(r.Articles), r.Duration.Round(time.Millisecond))
	if r.Sync != nil {
		_, _ = fmt.Fprintf(w, "  artifacts updated: %d, pages written: %d, page failures: %d\n",
			len(r.Sync.Artifacts), len(r.Sync.Pages), len(r.Sync.Failed))
		for _, f := range r.Sync.Failed {
			_, _ = fmt.Fprintf(w, "    %s: %v\n", f.ArticleID, f.Err)
		}
	}
	if r.Publish.Commit != "" {
		_, _ = fmt.Fprintf(w, "  commit: %s pushed: %t\n", r.Publish.Commit, r.Pushed())
	}
	if r.PublishErr != nil {
		_, _ = fmt.Fprintf(w, "  publish failed: %v\n", r.PublishErr)
	}
	if r.Pushed() {
		_, _ = fmt.Fprintf(w, "  status updated: %d, failed: %d\n", r.StatusUpdated, len(r.StatusFailed))
	}
}
