// Package metrics provides observability hooks for build metrics. The
// NoopRecorder is the default so components never need nil checks; a
// Prometheus-backed recorder can be injected where scraping is wanted.
package metrics

import "time"

// Recorder defines observability hooks for build phases. Implementations must
// be safe for concurrent use during the parallel read phase.
type Recorder interface {
	ObservePhaseDuration(phase string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncDocsRead(n int)
	IncObjectsCollected(n int)
	IncWarning(category string)
	IncBuildOutcome(outcome string) // outcome: success|failed
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePhaseDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncDocsRead(int)                            {}
func (NoopRecorder) IncObjectsCollected(int)                    {}
func (NoopRecorder) IncWarning(string)                          {}
func (NoopRecorder) IncBuildOutcome(string)                     {}
