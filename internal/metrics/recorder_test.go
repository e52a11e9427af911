package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNoopRecorderIsSafe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObservePhaseDuration("read", time.Second)
	r.ObserveBuildDuration(time.Second)
	r.IncDocsRead(3)
	r.IncObjectsCollected(9)
	r.IncWarning("ref.internal")
	r.IncBuildOutcome("success")
}

func TestPrometheusRecorderRegisters(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObservePhaseDuration("read", 250*time.Millisecond)
	pr.ObserveBuildDuration(time.Second)
	pr.IncDocsRead(2)
	pr.IncObjectsCollected(5)
	pr.IncWarning("ref.external")
	pr.IncBuildOutcome("success")

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["docindex_docs_read_total"])
	require.True(t, names["docindex_warnings_total"])
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObservePhaseDuration("read", time.Second)
	pr.IncDocsRead(1)
	pr.IncBuildOutcome("failed")
}
