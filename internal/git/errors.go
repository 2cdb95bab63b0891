package git

import (
	"strings"

	"git.home.luguber.info/inful/ncms/internal/foundation/errors"
)

// ClassifyGitError translates go-git or command-line git errors into ClassifiedErrors.
func ClassifyGitError(err error, op string, remote string) error {
	if err == nil {
		return nil
	}

	// Already classified
	if _, ok := errors.AsClassified(err); ok {
		return err
	}

	l := strings.ToLower(err.Error())

	builder := errors.GitError("git " + op + " failed").
		WithCause(err).
		WithContext("op", op).
		WithContext("remote", remote)

	switch {
	case strings.Contains(l, "authentication") || strings.Contains(l, "authorization") ||
		strings.Contains(l, "could not read username") || strings.Contains(l, "permission denied"):
		builder.WithCategory(errors.CategoryAuth).UserAction()
	case strings.Contains(l, "repository not found") || strings.Contains(l, "does not exist") ||
		strings.Contains(l, "does not appear to be a git repository") || strings.Contains(l, "remote not found"):
		builder.WithCategory(errors.CategoryNotFound).Fatal()
	case strings.Contains(l, "remote hung up") || strings.Contains(l, "connection reset") ||
		strings.Contains(l, "timeout") || strings.Contains(l, "no route to host") || strings.Contains(l, "could not resolve host"):
		builder.WithCategory(errors.CategoryNetwork).Retryable()
	case strings.Contains(l, "non-fast-forward") || strings.Contains(l, "rejected"):
		builder.WithContext("rejected", true)
	}

	return builder.Build()
}
