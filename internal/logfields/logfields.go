package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyArticleID  = "article_id"
	KeySlug       = "slug"
	KeyTitle      = "title"
	KeyArtifact   = "artifact"
	KeyBlockID    = "block_id"
	KeyBlockType  = "block_type"
	KeyDatabaseID = "database_id"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyCount      = "count"
	KeyBranch     = "branch"
	KeyRemote     = "remote"
	KeyStatus     = "status"
	KeyAttempt    = "attempt"
	KeyCommit     = "commit"
	KeyOutcome    = "outcome"
	KeySubject    = "subject"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr         { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr       { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func ArticleID(id string) slog.Attr     { return slog.String(KeyArticleID, id) }
func Slug(s string) slog.Attr           { return slog.String(KeySlug, s) }
func Title(t string) slog.Attr          { return slog.String(KeyTitle, t) }
func Artifact(name string) slog.Attr    { return slog.String(KeyArtifact, name) }
func BlockID(id string) slog.Attr       { return slog.String(KeyBlockID, id) }
func BlockType(t string) slog.Attr      { return slog.String(KeyBlockType, t) }
func DatabaseID(id string) slog.Attr    { return slog.String(KeyDatabaseID, id) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr            { return slog.String(KeyURL, u) }
func Count(n int) slog.Attr             { return slog.Int(KeyCount, n) }
func Branch(b string) slog.Attr         { return slog.String(KeyBranch, b) }
func Remote(r string) slog.Attr         { return slog.String(KeyRemote, r) }
func Status(s string) slog.Attr         { return slog.String(KeyStatus, s) }
func Attempt(n int) slog.Attr           { return slog.Int(KeyAttempt, n) }
func Commit(hash string) slog.Attr      { return slog.String(KeyCommit, hash) }
func Outcome(o string) slog.Attr        { return slog.String(KeyOutcome, o) }
func Subject(s string) slog.Attr        { return slog.String(KeySubject, s) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
