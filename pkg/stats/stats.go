// Copyright 2024 The fuzzcheck-go authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package stats tracks and exposes the scheduler's running statistics
// (§4.5's "total runs, runs since last tick, exec/s, average complexity,
// pool size") both as an append-only events.csv (§6.2) and as
// Prometheus gauges via prometheus/client_golang.
package stats

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Snapshot is one point-in-time readout of the scheduler's counters.
type Snapshot struct {
	TotalRuns        int64
	RunsSinceLastTick int64
	ExecPerSecond    float64
	AverageComplexity float64
	PoolSize         int
}

// Tracker accumulates scheduler statistics and exposes them both as a
// Prometheus registry and as CSV rows for events.csv.
type Tracker struct {
	mu sync.Mutex

	totalRuns       int64
	sinceTick       int64
	complexitySum   float64
	lastTick        time.Time
	execPerSecond   float64
	poolSize        int

	runsGauge       prometheus.Gauge
	execRateGauge   prometheus.Gauge
	poolSizeGauge   prometheus.Gauge
	avgCplxGauge    prometheus.Gauge
}

func NewTracker(reg prometheus.Registerer) *Tracker {
	t := &Tracker{
		lastTick:     time.Now(),
		runsGauge:    prometheus.NewGauge(prometheus.GaugeOpts{Name: "fuzzcheck_total_runs", Help: "total predicate invocations"}),
		execRateGauge: prometheus.NewGauge(prometheus.GaugeOpts{Name: "fuzzcheck_exec_per_second", Help: "predicate invocations per second since last tick"}),
		poolSizeGauge: prometheus.NewGauge(prometheus.GaugeOpts{Name: "fuzzcheck_pool_size", Help: "number of inputs currently held in the pool"}),
		avgCplxGauge: prometheus.NewGauge(prometheus.GaugeOpts{Name: "fuzzcheck_average_complexity", Help: "average complexity of inputs processed since last tick"}),
	}
	if reg != nil {
		reg.MustRegister(t.runsGauge, t.execRateGauge, t.poolSizeGauge, t.avgCplxGauge)
	}
	return t
}

// RecordRun registers one completed predicate invocation of the given
// complexity.
func (t *Tracker) RecordRun(complexity float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totalRuns++
	t.sinceTick++
	t.complexitySum += complexity
	t.runsGauge.Set(float64(t.totalRuns))
}

// SetPoolSize records the pool's current size.
func (t *Tracker) SetPoolSize(size int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.poolSize = size
	t.poolSizeGauge.Set(float64(size))
}

// Tick closes out an interval, computing exec/s and average complexity
// since the previous Tick, and resets the interval counters.
func (t *Tracker) Tick(now time.Time) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := now.Sub(t.lastTick).Seconds()
	if elapsed > 0 {
		t.execPerSecond = float64(t.sinceTick) / elapsed
	}
	avgCplx := 0.0
	if t.sinceTick > 0 {
		avgCplx = t.complexitySum / float64(t.sinceTick)
	}
	t.execRateGauge.Set(t.execPerSecond)
	t.avgCplxGauge.Set(avgCplx)

	snap := Snapshot{
		TotalRuns:         t.totalRuns,
		RunsSinceLastTick: t.sinceTick,
		ExecPerSecond:     t.execPerSecond,
		AverageComplexity: avgCplx,
		PoolSize:          t.poolSize,
	}
	t.sinceTick = 0
	t.complexitySum = 0
	t.lastTick = now
	return snap
}

// CSVRow formats a Snapshot as one events.csv line (§6.2): timestamp,
// event, stats.
func CSVRow(timestamp time.Time, event string, snap Snapshot) string {
	return fmt.Sprintf("%d,%s,%d,%.2f,%.4f,%d",
		timestamp.UnixMilli(), event, snap.TotalRuns, snap.ExecPerSecond, snap.AverageComplexity, snap.PoolSize)
}
