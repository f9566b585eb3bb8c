// SPDX-License-Identifier: MIT
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Step results.
const (
	ResultApplied = "applied"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"
)

// Run outcomes.
const (
	OutcomeFirstRun = "first_run"
	OutcomeCurrent  = "current"
	OutcomeUpgraded = "upgraded"
	OutcomePartial  = "partial"
)

var (
	upgradeStepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deckcfg_upgrade_steps_total",
		Help: "Migration ladder steps by outcome",
	}, []string{"step", "result"}) // result=applied|failed|skipped

	upgradeRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deckcfg_upgrade_runs_total",
		Help: "Migration runs by final outcome",
	}, []string{"outcome"}) // outcome=first_run|current|upgraded|partial

	upgradeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "deckcfg_upgrade_duration_seconds",
		Help:    "Wall time of a migration run",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	})

	settingsWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deckcfg_settings_writes_total",
		Help: "Settings file saves by outcome",
	}, []string{"outcome"}) // outcome=success|failure

	lastRunTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "deckcfg_upgrade_last_run_timestamp_seconds",
		Help: "Unix time of the last completed migration run",
	})
)

// RecordStep counts one ladder step outcome.
func RecordStep(step, result string) {
	upgradeStepsTotal.WithLabelValues(step, result).Inc()
}

// RecordRun counts a finished run and its duration.
func RecordRun(outcome string, d time.Duration) {
	upgradeRunsTotal.WithLabelValues(outcome).Inc()
	upgradeDuration.Observe(d.Seconds())
	lastRunTimestamp.SetToCurrentTime()
}

// RecordSettingsWrite counts a settings save.
func RecordSettingsWrite(err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	settingsWritesTotal.WithLabelValues(outcome).Inc()
}
