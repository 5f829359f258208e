// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, g *Generator) map[string]*dto.MetricFamily {
	t.Helper()
	mfs, err := g.Gatherer().Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(mfs))
	for _, mf := range mfs {
		out[mf.GetName()] = mf
	}
	return out
}

func counterValue(mf *dto.MetricFamily, labels map[string]string) float64 {
	for _, m := range mf.GetMetric() {
		match := true
		for _, lp := range m.GetLabel() {
			if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
				match = false
			}
		}
		if match {
			return m.GetCounter().GetValue()
		}
	}
	return -1
}

func TestGenerator_RecordSuccess(t *testing.T) {
	g := NewGenerator()
	at := time.Unix(1_700_000_000, 0)
	g.RecordSuccess(5*time.Millisecond, 4, 1, at)

	mfs := gather(t, g)
	assert.Equal(t, 1.0, counterValue(mfs["devcontainer_init_runs_total"], map[string]string{"result": ResultSuccess}))
	assert.Equal(t, 4.0, mfs["devcontainer_init_substitutions"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, 1.0, mfs["devcontainer_init_overlay_warnings"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, float64(at.Unix()), mfs["devcontainer_init_last_success_timestamp_seconds"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, uint64(1), mfs["devcontainer_init_run_duration_seconds"].GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestGenerator_RecordFailure(t *testing.T) {
	g := NewGenerator()
	g.RecordFailure(time.Millisecond, "substitute")
	g.RecordFailure(time.Millisecond, "substitute")

	mfs := gather(t, g)
	assert.Equal(t, 2.0, counterValue(mfs["devcontainer_init_runs_total"], map[string]string{"result": ResultFailure, "stage": "substitute"}))
	_, ok := mfs["devcontainer_init_last_success_timestamp_seconds"]
	assert.True(t, ok)
}

func TestGenerator_WriteTextfile(t *testing.T) {
	g := NewGenerator()
	g.RecordSuccess(time.Millisecond, 2, 0, time.Now())

	path := filepath.Join(t.TempDir(), "textfile", "devcontainer_init.prom")
	require.NoError(t, g.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `devcontainer_init_runs_total{result="success",stage="done"} 1`), text)
	assert.Contains(t, text, "# HELP devcontainer_init_substitutions")
}
