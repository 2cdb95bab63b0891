package config

import (
	"log/slog"
	"path/filepath"
	"strings"
)

const (
	DefaultOutputDir      = "output"
	DefaultBaseURL        = "https://ujnotes.com"
	DefaultNotionAPIURL   = "https://api.notion.com/v1"
	DefaultNotionVersion  = "2022-06-28"
	DefaultStatusProperty = "Status"
	DefaultPublishValue   = "publish"
	DefaultPublishedValue = "published"
	DefaultBranch         = "publish"
	DefaultRemote         = "origin"
	DefaultCommitMessage  = "Update articles from Notion"
	DefaultAuthorName     = "ncms"
	DefaultAuthorEmail    = "ncms@localhost"
	DefaultNATSSubject    = "ncms.site.published"
	DefaultRetryInitial   = "1s"
	DefaultRetryMax       = "30s"
)

// applyDefaults fills unset fields and normalizes enum-typed values.
// Unknown enum values are left for Validate to report.
func applyDefaults(cfg *Config) {
	n := &cfg.Notion
	if n.APIURL == "" {
		n.APIURL = DefaultNotionAPIURL
	}
	n.APIURL = strings.TrimRight(n.APIURL, "/")
	if n.Version == "" {
		n.Version = DefaultNotionVersion
	}
	if n.StatusProperty == "" {
		n.StatusProperty = DefaultStatusProperty
	}
	if n.PublishValue == "" {
		n.PublishValue = DefaultPublishValue
	}
	if n.PublishedValue == "" {
		n.PublishedValue = DefaultPublishedValue
	}
	if n.Retry.Backoff == "" {
		n.Retry.Backoff = RetryBackoffExponential
	} else if m := NormalizeRetryBackoff(string(n.Retry.Backoff)); m != "" {
		n.Retry.Backoff = m
	}
	if n.Retry.InitialDelay == "" {
		n.Retry.InitialDelay = DefaultRetryInitial
	}
	if n.Retry.MaxDelay == "" {
		n.Retry.MaxDelay = DefaultRetryMax
	}

	if cfg.Output.Directory == "" {
		slog.Warn("OUTPUT_DIR not set, using default", "path", DefaultOutputDir)
		cfg.Output.Directory = DefaultOutputDir
	}
	if cfg.Output.URLSeparator == "" {
		cfg.Output.URLSeparator = string(filepath.Separator)
	}

	if cfg.Site.ProjectDir == "" {
		slog.Warn("PROJECT_DIR not set, falling back to output directory", "path", cfg.Output.Directory)
		cfg.Site.ProjectDir = cfg.Output.Directory
	}
	if cfg.Site.BaseURL == "" {
		cfg.Site.BaseURL = DefaultBaseURL
	}
	cfg.Site.BaseURL = strings.TrimRight(cfg.Site.BaseURL, "/")

	g := &cfg.Git
	if g.Backend == "" {
		g.Backend = GitBackendGoGit
	} else if b := NormalizeGitBackend(string(g.Backend)); b != "" {
		g.Backend = b
	}
	if g.Remote == "" {
		g.Remote = DefaultRemote
	}
	if g.Branch == "" {
		g.Branch = DefaultBranch
	}
	if g.CommitMessage == "" {
		g.CommitMessage = DefaultCommitMessage
	}
	if g.AuthorName == "" {
		g.AuthorName = DefaultAuthorName
	}
	if g.AuthorEmail == "" {
		g.AuthorEmail = DefaultAuthorEmail
	}

	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))

	if cfg.Notify.NATSURL != "" && cfg.Notify.Subject == "" {
		cfg.Notify.Subject = DefaultNATSSubject
	}
}
