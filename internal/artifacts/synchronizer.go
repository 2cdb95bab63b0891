// Package artifacts keeps the site's flat configuration files and article
// pages in step with the current set of published articles.
package artifacts

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/ncms/internal/article"
	"git.home.luguber.info/inful/ncms/internal/config"
	"git.home.luguber.info/inful/ncms/internal/logfields"
	"git.home.luguber.info/inful/ncms/internal/metrics"
)

// Artifact is one synchronized file.
type Artifact interface {
	Name() string
	Path() string
	Sync(ctx context.Context, articles []article.Article) error
}

// FailedArticle records a page that could not be written.
type FailedArticle struct {
	ArticleID string
	Path      string
	Err       error
}

// SyncReport summarizes one synchronization.
type SyncReport struct {
	Artifacts []string
	Pages     []string
	Failed    []FailedArticle
}

// Synchronizer applies the artifact sequence: registry, URL table, hosting
// config, sitemap, then the per-article output tree.
type Synchronizer struct {
	artifacts    []Artifact
	componentDir string
	recorder     metrics.Recorder
}

// NewSynchronizer wires the artifacts at the locations derived from cfg.
func NewSynchronizer(cfg *config.Config) *Synchronizer {
	return &Synchronizer{
		artifacts: []Artifact{
			NewRegistry(cfg.RegistryPath()),
			NewURLTable(cfg.URLTablePath(), cfg.Output.URLSeparator),
			NewHostingConfig(cfg.HostingConfigPath()),
			NewSitemap(cfg.SitemapPath(), cfg.Site.BaseURL),
		},
		componentDir: cfg.ComponentDir(),
		recorder:     metrics.NoopRecorder{},
	}
}

// WithRecorder sets the metrics recorder.
func (s *Synchronizer) WithRecorder(r metrics.Recorder) *Synchronizer {
	if r != nil {
		s.recorder = r
	}
	return s
}

// Sync updates every artifact from articles. Artifact load or write errors
// stop the sync immediately. Page write errors are logged, reported and
// skipped.
func (s *Synchronizer) Sync(ctx context.Context, articles []article.Article) (*SyncReport, error) {
	report := &SyncReport{}

	for _, a := range s.artifacts {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := a.Sync(ctx, articles); err != nil {
			slog.Error("Artifact synchronization failed", logfields.Artifact(a.Name()), logfields.Path(a.Path()), logfields.Error(err))
			return report, err
		}
		s.recorder.IncArtifactWrite(a.Name())
		report.Artifacts = append(report.Artifacts, a.Path())
		slog.Info("Updated artifact", logfields.Artifact(a.Name()), logfields.Path(a.Path()), logfields.Count(len(articles)))
	}

	tree := NewOutputTree(s.componentDir)
	for _, a := range articles {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		path, err := tree.Write(a)
		if err != nil {
			slog.Error("Failed to write article page", logfields.ArticleID(a.ID), logfields.Slug(a.Slug), logfields.Path(path), logfields.Error(err))
			s.recorder.IncArticleWriteFailure()
			report.Failed = append(report.Failed, FailedArticle{ArticleID: a.ID, Path: path, Err: err})
			continue
		}
		slog.Debug("Wrote article page", logfields.Slug(a.Slug), logfields.Path(path))
		report.Pages = append(report.Pages, path)
	}
	return report, nil
}
