package publish

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/ncms/internal/config"
	"git.home.luguber.info/inful/ncms/internal/eventstore"
	"git.home.luguber.info/inful/ncms/internal/foundation/errors"
	"git.home.luguber.info/inful/ncms/internal/git"
	"git.home.luguber.info/inful/ncms/internal/metrics"
	"git.home.luguber.info/inful/ncms/internal/notify"
	"git.home.luguber.info/inful/ncms/internal/notion"
)

type statusUpdate struct {
	pageID, property, value string
}

type fakeSource struct {
	pages     []notion.Page
	blocks    map[string][]notion.Block
	queryErr  error
	updateErr map[string]error

	filter  *notion.Filter
	dbID    string
	queried int
	updates []statusUpdate
}

func (f *fakeSource) QueryDatabase(_ context.Context, databaseID string, filter *notion.Filter) ([]notion.Page, error) {
	f.queried++
	f.dbID, f.filter = databaseID, filter
	return f.pages, f.queryErr
}

func (f *fakeSource) ListBlockChildren(_ context.Context, id string) ([]notion.Block, error) {
	return f.blocks[id], nil
}

func (f *fakeSource) UpdateSelect(_ context.Context, pageID, property, value string) error {
	if err := f.updateErr[pageID]; err != nil {
		return err
	}
	f.updates = append(f.updates, statusUpdate{pageID, property, value})
	return nil
}

type fakePublisher struct {
	result   git.PublishResult
	err      error
	messages []string
}

func (f *fakePublisher) Publish(_ context.Context, message string) (git.PublishResult, error) {
	f.messages = append(f.messages, message)
	return f.result, f.err
}

type fakeNotifier struct {
	events []*notify.SitePublishedEvent
}

func (f *fakeNotifier) SitePublished(_ context.Context, e *notify.SitePublishedEvent) error {
	f.events = append(f.events, e)
	return nil
}

func (f *fakeNotifier) Close() error { return nil }

type countingRecorder struct {
	metrics.NoopRecorder
	outcomes      []metrics.OutcomeLabel
	statusOK      int
	statusFailed  int
	articlesGauge int
}

func (r *countingRecorder) IncRunOutcome(o metrics.OutcomeLabel) { r.outcomes = append(r.outcomes, o) }
func (r *countingRecorder) SetArticles(n int)                    { r.articlesGauge = n }
func (r *countingRecorder) IncStatusUpdate(ok bool) {
	if ok {
		r.statusOK++
	} else {
		r.statusFailed++
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{}
	cfg.Notion.APIKey = "secret"
	cfg.Notion.DatabaseID = "db-1"
	cfg.Notion.StatusProperty = "Status"
	cfg.Notion.PublishValue = "publish"
	cfg.Notion.PublishedValue = "published"
	cfg.Output.Directory = filepath.Join(root, "public")
	cfg.Output.URLSeparator = "/"
	cfg.Site.ProjectDir = root
	cfg.Site.BaseURL = "https://ujnotes.com"
	cfg.Git.Remote = "origin"
	cfg.Git.Branch = "publish"
	cfg.Git.CommitMessage = "Update articles from Notion"
	cfg.Git.AuthorName = "tester"
	cfg.Git.AuthorEmail = "t@example.com"
	return cfg
}

func page(id, slug, title, status string) notion.Page {
	return notion.Page{ID: id, Properties: map[string]notion.Property{
		"Id":     {Type: "title", Title: []notion.RichText{{PlainText: slug}}},
		"Title":  {Type: "rich_text", RichText: []notion.RichText{{PlainText: title}}},
		"Status": {Type: "select", Select: &notion.SelectOption{Name: status}},
	}}
}

func twoArticles() *fakeSource {
	return &fakeSource{
		pages: []notion.Page{
			page("p1", "notes/go", "Go Notes", "publish"),
			page("p2", "about", "About", "publish"),
		},
		blocks: map[string][]notion.Block{
			"p1": {{Type: notion.TypeParagraph, Paragraph: &notion.TextPayload{RichText: []notion.RichText{{PlainText: "Hello"}}}}},
		},
	}
}

func TestRun_PublishesAndMarksArticles(t *testing.T) {
	cfg := testConfig(t)
	src := twoArticles()
	pub := &fakePublisher{result: git.PublishResult{Pushed: true, Commit: "abc123"}}
	notifier := &fakeNotifier{}
	rec := &countingRecorder{}
	store, err := eventstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	c := NewCoordinator(cfg, src, pub).WithRecorder(rec).WithNotifier(notifier).WithEventStore(store)
	c.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local) }

	report, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "db-1", src.dbID)
	assert.Equal(t, notion.SelectEquals("Status", "publish"), src.filter)

	assert.Equal(t, metrics.OutcomePublished, report.Outcome)
	assert.True(t, report.Pushed())
	assert.Equal(t, []string{"Update articles from Notion - 2024-05-06-07-08-09"}, pub.messages)
	assert.Equal(t, []statusUpdate{{"p1", "Status", "published"}, {"p2", "Status", "published"}}, src.updates)
	assert.Equal(t, 2, report.StatusUpdated)
	assert.Empty(t, report.StatusFailed)

	for _, path := range []string{
		cfg.RegistryIndexPath(), cfg.RegistryPath(), cfg.URLTablePath(), cfg.HostingConfigPath(), cfg.SitemapPath(),
		filepath.Join(cfg.ComponentDir(), "notes", "go", "index.php"),
		filepath.Join(cfg.ComponentDir(), "about", "index.php"),
	} {
		assert.FileExists(t, path)
	}

	require.Len(t, notifier.events, 1)
	assert.Equal(t, "abc123", notifier.events[0].Commit)
	assert.Equal(t, "https://ujnotes.com/notes/go", notifier.events[0].Articles[0].URL)

	assert.Equal(t, []metrics.OutcomeLabel{metrics.OutcomePublished}, rec.outcomes)
	assert.Equal(t, 2, rec.statusOK)
	assert.Equal(t, 2, rec.articlesGauge)

	history := eventstore.NewRunHistoryProjection(store, 10)
	require.NoError(t, history.Rebuild(context.Background()))
	run, ok := history.GetRun(report.RunID)
	require.True(t, ok)
	assert.Equal(t, "published", run.Status)
	assert.Equal(t, "publish", run.Command)
	assert.Equal(t, 2, run.Articles)
	assert.Equal(t, 2, run.StatusUpdated)
	assert.Equal(t, "abc123", run.Commit)
}

func TestRun_PushFailureSkipsStatusUpdates(t *testing.T) {
	cfg := testConfig(t)
	src := twoArticles()
	pub := &fakePublisher{err: errors.GitError("push rejected").Build()}
	notifier := &fakeNotifier{}

	report, err := NewCoordinator(cfg, src, pub).WithNotifier(notifier).Run(context.Background())
	require.NoError(t, err, "a failed push is reported, not returned")

	assert.False(t, report.Pushed())
	assert.Equal(t, metrics.OutcomeFailed, report.Outcome)
	assert.Equal(t, StagePublish, report.FailedStage)
	require.Error(t, report.PublishErr)
	assert.True(t, errors.HasCategory(report.PublishErr, errors.CategoryGit))
	assert.Empty(t, src.updates, "no status update without a push")
	assert.Empty(t, notifier.events)
	assert.FileExists(t, cfg.SitemapPath(), "artifacts are still regenerated")
}

func TestRun_PublisherWithoutPushIsFailure(t *testing.T) {
	src := twoArticles()
	report, err := NewCoordinator(testConfig(t), src, &fakePublisher{result: git.PublishResult{Commit: "abc"}}).Run(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Pushed())
	assert.Error(t, report.PublishErr)
	assert.Empty(t, src.updates)
}

func TestRun_StatusUpdateFailuresAreIsolated(t *testing.T) {
	src := twoArticles()
	src.updateErr = map[string]error{"p1": stderrors.New("conflict")}
	rec := &countingRecorder{}

	report, err := NewCoordinator(testConfig(t), src, &fakePublisher{result: git.PublishResult{Pushed: true}}).
		WithRecorder(rec).
		Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, metrics.OutcomePublished, report.Outcome)
	assert.Equal(t, 1, report.StatusUpdated)
	assert.Equal(t, []string{"p1"}, report.StatusFailed)
	assert.Equal(t, []statusUpdate{{"p2", "Status", "published"}}, src.updates)
	assert.Equal(t, 1, rec.statusOK)
	assert.Equal(t, 1, rec.statusFailed)
}

func TestRun_MissingDatabaseIDFailsBeforeFetch(t *testing.T) {
	cfg := testConfig(t)
	cfg.Notion.DatabaseID = ""
	src := twoArticles()

	report, err := NewCoordinator(cfg, src, &fakePublisher{}).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
	assert.Contains(t, err.Error(), "NOTION_DATABASE_ID")
	assert.Equal(t, StageValidate, report.FailedStage)
	assert.Zero(t, src.queried)
}

func TestRun_FetchFailureWritesNothing(t *testing.T) {
	cfg := testConfig(t)
	src := &fakeSource{queryErr: errors.AuthError("unauthorized").Build()}
	pub := &fakePublisher{}

	report, err := NewCoordinator(cfg, src, pub).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryAuth))
	assert.Equal(t, metrics.OutcomeFailed, report.Outcome)
	assert.Empty(t, pub.messages)
	assert.NoFileExists(t, cfg.RegistryPath())
}

func TestRun_ArtifactFailureStopsBeforePublish(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.SitemapPath()), 0o750))
	require.NoError(t, os.WriteFile(cfg.SitemapPath(), []byte("<urlset><url>"), 0o600))
	pub := &fakePublisher{result: git.PublishResult{Pushed: true}}
	src := twoArticles()

	report, err := NewCoordinator(cfg, src, pub).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryArtifact))
	assert.Equal(t, StageSync, report.FailedStage)
	assert.Empty(t, pub.messages)
	assert.Empty(t, src.updates)
}

func TestRun_NoArticlesIsNoop(t *testing.T) {
	cfg := testConfig(t)
	src := &fakeSource{pages: []notion.Page{page("d", "draft", "Draft", "draft")}}
	pub := &fakePublisher{}

	report, err := NewCoordinator(cfg, src, pub).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeNoop, report.Outcome)
	assert.Empty(t, pub.messages)
	assert.Empty(t, src.updates)
	assert.FileExists(t, cfg.SitemapPath())
}

func TestRun_EmptySetClearsFullReplaceArtifacts(t *testing.T) {
	cfg := testConfig(t)
	src := twoArticles()
	pub := &fakePublisher{result: git.PublishResult{Pushed: true, Commit: "c1"}}
	c := NewCoordinator(cfg, src, pub)

	_, err := c.Run(context.Background())
	require.NoError(t, err)
	sitemap, err := os.ReadFile(cfg.SitemapPath())
	require.NoError(t, err)
	require.Contains(t, string(sitemap), "<loc>https://ujnotes.com/notes/go</loc>")

	// Every article is now published; the next query returns nothing.
	src.pages = nil
	report, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeNoop, report.Outcome)
	assert.Len(t, pub.messages, 1, "empty set is not committed")

	sitemap, err = os.ReadFile(cfg.SitemapPath())
	require.NoError(t, err)
	assert.NotContains(t, string(sitemap), "<url>")

	var hosting struct {
		Hosting struct {
			Redirects []any `json:"redirects"`
			Rewrites  []any `json:"rewrites"`
		} `json:"hosting"`
	}
	data, err := os.ReadFile(cfg.HostingConfigPath())
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &hosting))
	assert.Empty(t, hosting.Hosting.Redirects)
	assert.Empty(t, hosting.Hosting.Rewrites)

	// Keyed registries keep their rows.
	registry, err := os.ReadFile(cfg.RegistryPath())
	require.NoError(t, err)
	assert.Contains(t, string(registry), "notes/go")
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := twoArticles()
	src.queryErr = context.Canceled

	report, err := NewCoordinator(testConfig(t), src, &fakePublisher{}).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, metrics.OutcomeCanceled, report.Outcome)
}

func TestExport_DoesNotPublish(t *testing.T) {
	cfg := testConfig(t)
	src := twoArticles()
	pub := &fakePublisher{result: git.PublishResult{Pushed: true}}

	report, err := NewCoordinator(cfg, src, pub).Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeExported, report.Outcome)
	assert.Equal(t, "export", report.Command)
	assert.Empty(t, pub.messages)
	assert.Empty(t, src.updates)
	assert.FileExists(t, cfg.SitemapPath())
	require.NotNil(t, report.Sync)
	assert.Len(t, report.Sync.Pages, 2)
}

func TestRun_WithGoGitPublisher(t *testing.T) {
	cfg := testConfig(t)
	bare := filepath.Join(t.TempDir(), "remote.git")
	_, err := gogit.PlainInit(bare, true)
	require.NoError(t, err)
	repo, err := gogit.PlainInitWithOptions(cfg.Site.ProjectDir, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("publish")},
	})
	require.NoError(t, err)
	_, err = repo.CreateRemote(&ggitcfg.RemoteConfig{Name: "origin", URLs: []string{bare}})
	require.NoError(t, err)

	src := twoArticles()
	report, err := NewCoordinator(cfg, src, git.NewGoGitPublisher(cfg)).Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, report.PublishErr)
	assert.True(t, report.Pushed())
	assert.Len(t, src.updates, 2)

	remote, err := gogit.PlainOpen(bare)
	require.NoError(t, err)
	ref, err := remote.Reference(plumbing.NewBranchReferenceName("publish"), true)
	require.NoError(t, err)
	assert.Equal(t, report.Publish.Commit, ref.Hash().String())

	// A second run with identical content leaves nothing to commit.
	src.updates = nil
	again, err := NewCoordinator(cfg, src, git.NewGoGitPublisher(cfg)).Run(context.Background())
	require.NoError(t, err)
	assert.False(t, again.Pushed())
	assert.Empty(t, src.updates)
}
