package metrics

import "testing"

func TestNoopRecorderSatisfiesInterface(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.SetArticles(3)
	r.IncRunOutcome(OutcomePublished)
	r.IncStatusUpdate(false)
}
