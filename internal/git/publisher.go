package git

import (
	"context"
	"time"

	"git.home.luguber.info/inful/ncms/internal/config"
)

// commitTimeLayout renders YYYY-MM-DD-HH-MM-SS.
const commitTimeLayout = "2006-01-02-15-04-05"

// PublishResult is the outcome of one add, commit and push sequence.
type PublishResult struct {
	Pushed bool
	Commit string
}

// Publisher records the working tree of the site repository and pushes it.
type Publisher interface {
	Publish(ctx context.Context, message string) (PublishResult, error)
}

// CommitMessage appends the local timestamp to prefix.
func CommitMessage(prefix string, now time.Time) string {
	return prefix + " - " + now.Format(commitTimeLayout)
}

// NewPublisher returns the publisher selected by cfg.Git.Backend.
func NewPublisher(cfg *config.Config) Publisher {
	if cfg.Git.Backend == config.GitBackendCLI {
		return NewCLIPublisher(cfg)
	}
	return NewGoGitPublisher(cfg)
}
