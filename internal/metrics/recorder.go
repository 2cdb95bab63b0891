package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultSkipped  ResultLabel = "skipped"
	ResultCanceled ResultLabel = "canceled"
)

// OutcomeLabel enumerates final run outcomes.
type OutcomeLabel string

const (
	OutcomePublished OutcomeLabel = "published"
	OutcomeExported  OutcomeLabel = "exported"
	OutcomeNoop      OutcomeLabel = "noop"
	OutcomeFailed    OutcomeLabel = "failed"
	OutcomeCanceled  OutcomeLabel = "canceled"
)

// Recorder defines observability hooks for pipeline runs. Implementations
// may forward to Prometheus; NoopRecorder is used when metrics are off.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncRunOutcome(outcome OutcomeLabel)
	SetArticles(n int)
	IncArtifactWrite(artifact string)
	IncArticleWriteFailure()
	IncStatusUpdate(success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncRunOutcome(OutcomeLabel)                 {}
func (NoopRecorder) SetArticles(int)                            {}
func (NoopRecorder) IncArtifactWrite(string)                    {}
func (NoopRecorder) IncArticleWriteFailure()                    {}
func (NoopRecorder) IncStatusUpdate(bool)                       {}
