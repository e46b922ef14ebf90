package stats

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestTickComputesExecRateAndAverageComplexity(t *testing.T) {
	reg := prometheus.NewRegistry()
	tr := NewTracker(reg)
	start := time.Now()
	tr.lastTick = start

	tr.RecordRun(2)
	tr.RecordRun(4)
	tr.SetPoolSize(3)

	snap := tr.Tick(start.Add(2 * time.Second))
	assert.Equal(t, int64(2), snap.TotalRuns)
	assert.Equal(t, int64(2), snap.RunsSinceLastTick)
	assert.InDelta(t, 1.0, snap.ExecPerSecond, 0.01)
	assert.InDelta(t, 3.0, snap.AverageComplexity, 0.01)
	assert.Equal(t, 3, snap.PoolSize)
}

func TestTickResetsIntervalCounters(t *testing.T) {
	tr := NewTracker(nil)
	start := time.Now()
	tr.lastTick = start
	tr.RecordRun(1)
	tr.Tick(start.Add(time.Second))
	snap := tr.Tick(start.Add(2 * time.Second))
	assert.Equal(t, int64(0), snap.RunsSinceLastTick)
	assert.Equal(t, int64(1), snap.TotalRuns)
}

func TestCSVRowFormat(t *testing.T) {
	row := CSVRow(time.UnixMilli(1000), "new", Snapshot{TotalRuns: 5, ExecPerSecond: 10, AverageComplexity: 1.5, PoolSize: 2})
	assert.Contains(t, row, "new")
	assert.Contains(t, row, "5")
}
