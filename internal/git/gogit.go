package git

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	gogit "github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/ncms/internal/auth"
	"git.home.luguber.info/inful/ncms/internal/config"
	"git.home.luguber.info/inful/ncms/internal/foundation/errors"
	"git.home.luguber.info/inful/ncms/internal/logfields"
)

// GoGitPublisher publishes with go-git.
type GoGitPublisher struct {
	dir         string
	remote      string
	branch      string
	authorName  string
	authorEmail string
	auth        *config.AuthConfig
	now         func() time.Time
}

func NewGoGitPublisher(cfg *config.Config) *GoGitPublisher {
	return &GoGitPublisher{
		dir:         cfg.RepositoryDir(),
		remote:      cfg.Git.Remote,
		branch:      cfg.Git.Branch,
		authorName:  cfg.Git.AuthorName,
		authorEmail: cfg.Git.AuthorEmail,
		auth:        cfg.Git.Auth,
		now:         time.Now,
	}
}

// Publish stages every change in the repository (including deletions),
// commits it and pushes the publish branch. A clean worktree is an error,
// matching `git commit` refusing to record an empty commit.
func (p *GoGitPublisher) Publish(ctx context.Context, message string) (PublishResult, error) {
	repo, err := gogit.PlainOpen(p.dir)
	if err != nil {
		return PublishResult{}, errors.GitError("failed to open site repository").
			WithCause(err).
			WithContext("path", p.dir).
			Fatal().
			Build()
	}
	wt, err := repo.Worktree()
	if err != nil {
		return PublishResult{}, ClassifyGitError(err, "worktree", p.remote)
	}

	if err := wt.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return PublishResult{}, ClassifyGitError(err, "add", p.remote)
	}
	status, err := wt.Status()
	if err != nil {
		return PublishResult{}, ClassifyGitError(err, "status", p.remote)
	}
	if status.IsClean() {
		return PublishResult{}, errors.GitError("nothing to commit").
			WithContext("path", p.dir).
			Build()
	}

	hash, err := wt.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{Name: p.authorName, Email: p.authorEmail, When: p.now()},
	})
	if err != nil {
		return PublishResult{}, ClassifyGitError(err, "commit", p.remote)
	}
	result := PublishResult{Commit: hash.String()}
	slog.Info("Committed site changes", logfields.Commit(result.Commit), logfields.Branch(p.branch))

	method, err := auth.CreateAuth(p.auth)
	if err != nil {
		return result, err
	}
	ref := plumbing.NewBranchReferenceName(p.branch)
	err = repo.PushContext(ctx, &gogit.PushOptions{
		RemoteName: p.remote,
		RefSpecs:   []ggitcfg.RefSpec{ggitcfg.RefSpec(fmt.Sprintf("%s:%s", ref, ref))},
		Auth:       method,
	})
	if err != nil && !stderrors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return result, ClassifyGitError(err, "push", p.remote)
	}

	result.Pushed = true
	slog.Info("Pushed publish branch", logfields.Remote(p.remote), logfields.Branch(p.branch), logfields.Commit(result.Commit))
	return result, nil
}
