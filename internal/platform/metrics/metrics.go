package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector counts payroll workflow operations in process.
type Collector struct {
	totalOps        uint64
	failedOps       uint64
	totalDurationMs uint64

	mu       sync.Mutex
	byAction map[string]uint64
}

func New() *Collector {
	return &Collector{byAction: map[string]uint64{}}
}

func (c *Collector) Record(action string, err error, duration time.Duration) {
	atomic.AddUint64(&c.totalOps, 1)
	if err != nil {
		atomic.AddUint64(&c.failedOps, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))

	c.mu.Lock()
	c.byAction[action]++
	c.mu.Unlock()
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalOps)
	failed := atomic.LoadUint64(&c.failedOps)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}

	c.mu.Lock()
	actions := make(map[string]uint64, len(c.byAction))
	for action, count := range c.byAction {
		actions[action] = count
	}
	c.mu.Unlock()

	return map[string]any{
		"operationsTotal": total,
		"failuresTotal":   failed,
		"avgDurationMs":   avg,
		"totalDurationMs": totalMs,
		"byAction":        actions,
	}
}
