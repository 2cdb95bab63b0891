// Package metrics records pipeline run metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics cost nothing unless enabled:
//
//	coordinator := publish.NewCoordinator(cfg, deps)            // NoopRecorder
//	reg := prometheus.NewRegistry()
//	deps.Recorder = metrics.NewPrometheusRecorder(reg)          // enabled
//
// One-shot runs export the registry with WriteTextfile for the node_exporter
// textfile collector; the scheduled mode can also serve it over HTTP.
package metrics
