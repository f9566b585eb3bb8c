// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ManuGH/deckcfg/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordStep(t *testing.T) {
	before := stepCount(t, "test_step", metrics.ResultApplied)
	metrics.RecordStep("test_step", metrics.ResultApplied)
	metrics.RecordStep("test_step", metrics.ResultApplied)
	assert.Equal(t, before+2, stepCount(t, "test_step", metrics.ResultApplied))
}

func TestRecordRunAndWrites(t *testing.T) {
	metrics.RecordRun(metrics.OutcomeUpgraded, 120*time.Millisecond)
	metrics.RecordSettingsWrite(nil)
	metrics.RecordSettingsWrite(errors.New("disk full"))

	n, err := testutil.GatherAndCount(prometheus.DefaultGatherer,
		"deckcfg_upgrade_runs_total",
		"deckcfg_upgrade_duration_seconds",
		"deckcfg_settings_writes_total",
		"deckcfg_upgrade_last_run_timestamp_seconds",
	)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 5)
}

func TestWriteTextfile(t *testing.T) {
	metrics.RecordStep("textfile_step", metrics.ResultFailed)

	path := filepath.Join(t.TempDir(), "collector", "deckcfg.prom")
	require.NoError(t, metrics.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	body := string(data)
	assert.Contains(t, body, `deckcfg_upgrade_steps_total{result="failed",step="textfile_step"}`)
	assert.Contains(t, body, "# TYPE deckcfg_upgrade_steps_total counter")
}

func stepCount(t *testing.T, step, result string) float64 {
	t.Helper()
	mfs, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != "deckcfg_upgrade_steps_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["step"] == step && labels["result"] == result {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}
