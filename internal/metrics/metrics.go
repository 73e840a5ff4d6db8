// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from report runs.
//
// The package is intentionally minimal and opinionated:
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data.
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - It mirrors the warehouse abstraction pattern used elsewhere in the
//     project, so the rest of the codebase depends only on this interface
//     while concrete metric systems stay isolated in subpackages.
//
// The primary use case is instrumentation of the per-report pipeline stages
// (query, transform, write, delivery) without coupling the core application
// logic to a specific metrics system such as Prometheus or Datadog.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
// It is intentionally generic so we can plug in Prometheus, Datadog, etc.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStage is a convenience for the common pattern:
// measure latency + success/failure per report stage.
//
// Typical stages: "query", "transform", "write", "delivery".
func RecordStage(report, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"report": report,
		"stage":  stage,
		"status": status,
	}

	backend.IncCounter("report_stage_total", 1, lbls)
	backend.ObserveHistogram("report_stage_duration_seconds", d.Seconds(), lbls)
}

// RecordRows counts the rows a report's query returned.
func RecordRows(report string, n int64) {
	if n <= 0 {
		return
	}
	backend.IncCounter("report_rows_total", float64(n), Labels{
		"report": report,
	})
}

// RecordRun increments the whole-run counter, labeled by outcome.
func RecordRun(err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	backend.IncCounter("report_runs_total", 1, Labels{
		"status": status,
	})
}
