package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "ncms"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration   *prom.HistogramVec
	runDuration     prom.Histogram
	stageResults    *prom.CounterVec
	runOutcomes     *prom.CounterVec
	articles        prom.Gauge
	artifactWrites  *prom.CounterVec
	articleFailures prom.Counter
	statusUpdates   *prom.CounterVec
	lastRun         prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total pipeline run duration",
			Buckets:   prom.DefBuckets,
		}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		runOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Pipeline runs by final outcome",
		}, []string{"outcome"}),
		articles: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "articles",
			Help:      "Articles extracted by the last run",
		}),
		artifactWrites: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_writes_total",
			Help:      "Artifact files rewritten, by artifact",
		}, []string{"artifact"}),
		articleFailures: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "article_write_failures_total",
			Help:      "Per-article output files that could not be written",
		}),
		statusUpdates: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "status_updates_total",
			Help:      "Upstream status updates by result",
		}, []string{"result"}),
		lastRun: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}
	reg.MustRegister(pr.stageDuration, pr.runDuration, pr.stageResults, pr.runOutcomes,
		pr.articles, pr.artifactWrites, pr.articleFailures, pr.statusUpdates, pr.lastRun)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
	p.lastRun.SetToCurrentTime()
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncRunOutcome(outcome OutcomeLabel) {
	if p == nil {
		return
	}
	p.runOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetArticles(n int) {
	if p == nil {
		return
	}
	p.articles.Set(float64(n))
}

func (p *PrometheusRecorder) IncArtifactWrite(artifact string) {
	if p == nil {
		return
	}
	p.artifactWrites.WithLabelValues(artifact).Inc()
}

func (p *PrometheusRecorder) IncArticleWriteFailure() {
	if p == nil {
		return
	}
	p.articleFailures.Inc()
}

func (p *PrometheusRecorder) IncStatusUpdate(success bool) {
	if p == nil {
		return
	}
	res := string(ResultFailed)
	if success {
		res = string(ResultSuccess)
	}
	p.statusUpdates.WithLabelValues(res).Inc()
}
