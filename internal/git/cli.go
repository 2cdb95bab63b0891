package git

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"git.home.luguber.info/inful/ncms/internal/config"
	"git.home.luguber.info/inful/ncms/internal/logfields"
)

// CLIPublisher publishes by running the git binary in the repository directory.
type CLIPublisher struct {
	dir         string
	remote      string
	branch      string
	authorName  string
	authorEmail string
	binary      string
}

func NewCLIPublisher(cfg *config.Config) *CLIPublisher {
	return &CLIPublisher{
		dir:         cfg.RepositoryDir(),
		remote:      cfg.Git.Remote,
		branch:      cfg.Git.Branch,
		authorName:  cfg.Git.AuthorName,
		authorEmail: cfg.Git.AuthorEmail,
		binary:      "git",
	}
}

// Publish runs `git add -A`, `git commit -m` and `git push <remote> <branch>`.
// The sequence stops at the first failing command.
func (p *CLIPublisher) Publish(ctx context.Context, message string) (PublishResult, error) {
	if _, err := p.run(ctx, "add", "-A"); err != nil {
		return PublishResult{}, err
	}
	if _, err := p.run(ctx, "commit", "-m", message); err != nil {
		return PublishResult{}, err
	}
	head, err := p.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return PublishResult{}, err
	}
	result := PublishResult{Commit: head}
	slog.Info("Committed site changes", logfields.Commit(result.Commit), logfields.Branch(p.branch))

	if _, err := p.run(ctx, "push", p.remote, p.branch); err != nil {
		return result, err
	}
	result.Pushed = true
	slog.Info("Pushed publish branch", logfields.Remote(p.remote), logfields.Branch(p.branch), logfields.Commit(result.Commit))
	return result, nil
}

func (p *CLIPublisher) run(ctx context.Context, args ...string) (string, error) {
	// #nosec G204 -- binary and arguments are fixed by this package
	cmd := exec.CommandContext(ctx, p.binary, args...)
	cmd.Dir = p.dir
	cmd.Env = append(os.Environ(), p.identityEnv()...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("Running git", slog.String("args", strings.Join(args, " ")), logfields.Path(p.dir))
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		return "", ClassifyGitError(fmt.Errorf("git %s: %w: %s", args[0], err, detail), args[0], p.remote)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// identityEnv sets the configured author as both author and committer.
func (p *CLIPublisher) identityEnv() []string {
	var env []string
	if p.authorName != "" {
		env = append(env, "GIT_AUTHOR_NAME="+p.authorName, "GIT_COMMITTER_NAME="+p.authorName)
	}
	if p.authorEmail != "" {
		env = append(env, "GIT_AUTHOR_EMAIL="+p.authorEmail, "GIT_COMMITTER_EMAIL="+p.authorEmail)
	}
	return env
}
