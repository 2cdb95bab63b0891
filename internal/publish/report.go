package publish

import (
	"time"

	"git.home.luguber.info/inful/ncms/internal/article"
	"git.home.luguber.info/inful/ncms/internal/artifacts"
	"git.home.luguber.info/inful/ncms/internal/git"
	"git.home.luguber.info/inful/ncms/internal/metrics"
)

// Stage names used in logs, metrics and the run ledger.
const (
	StageValidate = "validate"
	StageFetch    = "fetch"
	StageExtract  = "extract"
	StageRegistry = "registry_index"
	StageSync     = "sync"
	StagePublish  = "publish"
	StageStatus   = "status"
	StageNotify   = "notify"
)

// Report describes one pipeline run.
type Report struct {
	RunID     string
	Command   string
	Outcome   metrics.OutcomeLabel
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Articles []article.Article
	Sync     *artifacts.SyncReport

	Publish    git.PublishResult
	PublishErr error

	StatusUpdated int
	StatusFailed  []string

	// FailedStage names the stage whose error ended the run.
	FailedStage string
}

// Pushed reports whether the site repository was pushed.
func (r *Report) Pushed() bool { return r.Publish.Pushed }

func (r *Report) finish(outcome metrics.OutcomeLabel) {
	r.Outcome = outcome
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}
