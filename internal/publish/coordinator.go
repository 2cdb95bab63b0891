package publish

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/ncms/internal/article"
	"git.home.luguber.info/inful/ncms/internal/artifacts"
	"git.home.luguber.info/inful/ncms/internal/config"
	"git.home.luguber.info/inful/ncms/internal/content"
	"git.home.luguber.info/inful/ncms/internal/eventstore"
	"git.home.luguber.info/inful/ncms/internal/git"
	"git.home.luguber.info/inful/ncms/internal/logfields"
	"git.home.luguber.info/inful/ncms/internal/metrics"
	"git.home.luguber.info/inful/ncms/internal/notify"
	"git.home.luguber.info/inful/ncms/internal/notion"
	"git.home.luguber.info/inful/ncms/internal/observability"
)

// Source is the content database: it is queried for pages, read for
// block content and updated once articles are published.
type Source interface {
	content.ChildLister
	QueryDatabase(ctx context.Context, databaseID string, filter *notion.Filter) ([]notion.Page, error)
	UpdateSelect(ctx context.Context, pageID, property, value string) error
}

// Coordinator sequences one pipeline run.
type Coordinator struct {
	cfg       *config.Config
	source    Source
	publisher git.Publisher
	recorder  metrics.Recorder
	store     eventstore.Store
	notifier  notify.Notifier
	now       func() time.Time
}

func NewCoordinator(cfg *config.Config, source Source, publisher git.Publisher) *Coordinator {
	return &Coordinator{
		cfg:       cfg,
		source:    source,
		publisher: publisher,
		recorder:  metrics.NoopRecorder{},
		notifier:  notify.Noop{},
		now:       time.Now,
	}
}

// WithRecorder sets the metrics recorder.
func (c *Coordinator) WithRecorder(r metrics.Recorder) *Coordinator {
	if r != nil {
		c.recorder = r
	}
	return c
}

// WithEventStore records every run in store.
func (c *Coordinator) WithEventStore(store eventstore.Store) *Coordinator {
	c.store = store
	return c
}

// WithNotifier announces successful pushes through n.
func (c *Coordinator) WithNotifier(n notify.Notifier) *Coordinator {
	if n != nil {
		c.notifier = n
	}
	return c
}

// Run executes the full pipeline. A failed push is not an error: it is
// reported through Report.PublishErr and the failed outcome, and no status
// is updated. Errors are returned for failures that stop the run earlier.
func (c *Coordinator) Run(ctx context.Context) (*Report, error) {
	return c.run(ctx, "publish", true)
}

// Export regenerates the site artifacts without committing, pushing or
// touching article status.
func (c *Coordinator) Export(ctx context.Context) (*Report, error) {
	return c.run(ctx, "export", false)
}

func (c *Coordinator) run(ctx context.Context, command string, publish bool) (*Report, error) {
	report := &Report{RunID: uuid.NewString(), Command: command, StartTime: time.Now()}
	ctx = observability.WithRunID(ctx, report.RunID)
	ctx = observability.WithCommand(ctx, command)

	observability.InfoContext(ctx, "Starting run")
	c.record(ctx, func() (*eventstore.BaseEvent, error) { return eventstore.NewRunStarted(report.RunID, command) })

	if err := c.stage(ctx, StageValidate, func(context.Context) error { return c.cfg.ValidateForRun() }); err != nil {
		return c.fail(ctx, report, StageValidate, err)
	}

	var pages []notion.Page
	err := c.stage(ctx, StageFetch, func(ctx context.Context) error {
		var err error
		filter := notion.SelectEquals(c.cfg.Notion.StatusProperty, c.cfg.Notion.PublishValue)
		pages, err = c.source.QueryDatabase(ctx, c.cfg.Notion.DatabaseID, filter)
		return err
	})
	if err != nil {
		return c.fail(ctx, report, StageFetch, err)
	}

	err = c.stage(ctx, StageExtract, func(ctx context.Context) error {
		var err error
		extractor := article.NewExtractor(c.source, c.cfg.Notion.StatusProperty, c.cfg.Notion.PublishValue)
		report.Articles, err = extractor.Extract(ctx, pages)
		return err
	})
	if err != nil {
		return c.fail(ctx, report, StageExtract, err)
	}
	c.recorder.SetArticles(len(report.Articles))
	c.record(ctx, func() (*eventstore.BaseEvent, error) {
		return eventstore.NewArticlesExtracted(report.RunID, articleIDs(report.Articles))
	})

	err = c.stage(ctx, StageRegistry, func(ctx context.Context) error {
		return artifacts.NewRegistryIndex(c.cfg.RegistryIndexPath()).Sync(ctx, report.Articles)
	})
	if err != nil {
		return c.fail(ctx, report, StageRegistry, err)
	}

	err = c.stage(ctx, StageSync, func(ctx context.Context) error {
		var err error
		report.Sync, err = artifacts.NewSynchronizer(c.cfg).WithRecorder(c.recorder).Sync(ctx, report.Articles)
		return err
	})
	if err != nil {
		return c.fail(ctx, report, StageSync, err)
	}
	c.record(ctx, func() (*eventstore.BaseEvent, error) {
		return eventstore.NewArtifactsSynced(report.RunID, report.Sync.Artifacts, len(report.Sync.Pages), len(report.Sync.Failed))
	})

	if !publish {
		return c.complete(ctx, report, metrics.OutcomeExported), nil
	}

	// The sitemap and hosting config were rewritten for the empty set; there
	// is nothing to mark as published.
	if len(report.Articles) == 0 {
		observability.InfoContext(ctx, "No articles to publish")
		return c.complete(ctx, report, metrics.OutcomeNoop), nil
	}

	if err := c.publishSite(ctx, report); err != nil {
		report.PublishErr = err
		report.FailedStage = StagePublish
		return c.complete(ctx, report, metrics.OutcomeFailed), nil
	}

	c.updateStatuses(ctx, report)
	c.notify(ctx, report)
	return c.complete(ctx, report, metrics.OutcomePublished), nil
}

func (c *Coordinator) publishSite(ctx context.Context, report *Report) error {
	message := git.CommitMessage(c.cfg.Git.CommitMessage, c.now())
	err := c.stage(ctx, StagePublish, func(ctx context.Context) error {
		var err error
		report.Publish, err = c.publisher.Publish(ctx, message)
		if err == nil && !report.Publish.Pushed {
			err = stderrors.New("publisher reported no push")
		}
		return err
	})
	c.record(ctx, func() (*eventstore.BaseEvent, error) {
		return eventstore.NewSitePublished(report.RunID, report.Publish.Pushed, report.Publish.Commit, err)
	})
	if err != nil {
		report.Publish.Pushed = false
		observability.ErrorContext(ctx, "Publish failed, article status left unchanged", logfields.Error(err))
	}
	return err
}

// updateStatuses marks each article as published. Every update is
// independent: a failure is logged and counted and the rest continue.
func (c *Coordinator) updateStatuses(ctx context.Context, report *Report) {
	ctx = observability.WithStage(ctx, StageStatus)
	start := time.Now()
	for _, a := range report.Articles {
		err := c.source.UpdateSelect(ctx, a.ID, c.cfg.Notion.StatusProperty, c.cfg.Notion.PublishedValue)
		c.recorder.IncStatusUpdate(err == nil)
		if err != nil {
			observability.WarnContext(ctx, "Failed to update article status",
				logfields.ArticleID(a.ID), logfields.Title(a.Title), logfields.Error(err))
			report.StatusFailed = append(report.StatusFailed, a.ID)
			continue
		}
		report.StatusUpdated++
		observability.DebugContext(ctx, "Marked article as published", logfields.ArticleID(a.ID))
	}
	c.recorder.ObserveStageDuration(StageStatus, time.Since(start))
	result := metrics.ResultSuccess
	if len(report.StatusFailed) > 0 {
		result = metrics.ResultFailed
	}
	c.recorder.IncStageResult(StageStatus, result)
	c.record(ctx, func() (*eventstore.BaseEvent, error) {
		return eventstore.NewStatusUpdated(report.RunID, report.StatusUpdated, len(report.StatusFailed))
	})
}

// notify is best effort; a failed notification does not change the outcome.
func (c *Coordinator) notify(ctx context.Context, report *Report) {
	event := &notify.SitePublishedEvent{
		RunID:  report.RunID,
		Commit: report.Publish.Commit,
		Branch: c.cfg.Git.Branch,
	}
	for _, a := range report.Articles {
		event.Articles = append(event.Articles, notify.PublishedArticle{
			ID:    a.ID,
			Slug:  a.Slug,
			Title: a.Title,
			URL:   c.cfg.Site.BaseURL + "/" + a.Slug,
		})
	}
	err := c.stage(ctx, StageNotify, func(ctx context.Context) error {
		return c.notifier.SitePublished(ctx, event)
	})
	if err != nil {
		observability.WarnContext(ctx, "Failed to send publish notification", logfields.Error(err))
	}
}

// stage runs fn with stage logging, timing and result metrics.
func (c *Coordinator) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx = observability.WithStage(ctx, name)
	start := time.Now()
	observability.DebugContext(ctx, "Stage started")

	err := fn(ctx)
	elapsed := time.Since(start)
	c.recorder.ObserveStageDuration(name, elapsed)

	switch {
	case err == nil:
		c.recorder.IncStageResult(name, metrics.ResultSuccess)
		observability.DebugContext(ctx, "Stage completed", logfields.DurationMS(float64(elapsed.Milliseconds())))
	case isCanceled(err):
		c.recorder.IncStageResult(name, metrics.ResultCanceled)
	default:
		c.recorder.IncStageResult(name, metrics.ResultFailed)
	}
	return err
}

func (c *Coordinator) fail(ctx context.Context, report *Report, stage string, err error) (*Report, error) {
	report.FailedStage = stage
	outcome := metrics.OutcomeFailed
	if isCanceled(err) {
		outcome = metrics.OutcomeCanceled
	}
	observability.ErrorContext(observability.WithStage(ctx, stage), "Run failed", logfields.Error(err))
	c.record(ctx, func() (*eventstore.BaseEvent, error) { return eventstore.NewRunFailed(report.RunID, stage, err) })
	report.finish(outcome)
	c.recorder.IncRunOutcome(outcome)
	c.recorder.ObserveRunDuration(report.Duration)
	return report, err
}

func (c *Coordinator) complete(ctx context.Context, report *Report, outcome metrics.OutcomeLabel) *Report {
	report.finish(outcome)
	c.recorder.IncRunOutcome(outcome)
	c.recorder.ObserveRunDuration(report.Duration)
	c.record(ctx, func() (*eventstore.BaseEvent, error) {
		return eventstore.NewRunCompleted(report.RunID, string(outcome), report.Duration)
	})
	observability.InfoContext(ctx, "Run finished",
		logfields.Outcome(string(outcome)),
		logfields.Count(len(report.Articles)),
		logfields.DurationMS(float64(report.Duration.Milliseconds())))
	return report
}

// record appends a ledger event. Ledger failures never fail the run.
func (c *Coordinator) record(ctx context.Context, build func() (*eventstore.BaseEvent, error)) {
	if c.store == nil {
		return
	}
	event, err := build()
	if err == nil {
		// The ledger outlives a canceled run.
		err = eventstore.Record(context.WithoutCancel(ctx), c.store, event)
	}
	if err != nil {
		observability.WarnContext(ctx, "Failed to record run event", logfields.Error(err))
	}
}

func isCanceled(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}

func articleIDs(articles []article.Article) []string {
	ids := make([]string, 0, len(articles))
	for _, a := range articles {
		ids = append(ids, a.ID)
	}
	return ids
}
