package logstore

import (
	"sync"

	"github.com/Sumatoshi-tech/truckfactor/internal/blame"
)

// Collector gathers parsed blame logs from concurrent workers. It is
// safe for use from multiple goroutines.
type Collector struct {
	mu   sync.Mutex
	logs []*blame.FileLog
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add records one parsed file log.
func (c *Collector) Add(log *blame.FileLog) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logs = append(c.logs, log)
}

// Logs returns a snapshot of everything collected so far.
func (c *Collector) Logs() []*blame.FileLog {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make([]*blame.FileLog, len(c.logs))
	copy(snapshot, c.logs)

	return snapshot
}

// Len returns the number of collected logs.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.logs)
}
