package ledger

import (
	"maps"
	"sync"

	"github.com/cleared-dev/ledgerflow/internal/model"
)

// Stats counts processed records.
type Stats struct {
	Applied  map[model.Kind]int
	Rejected map[Reason]int
}

// TotalApplied returns the number of accepted records.
func (s Stats) TotalApplied() int {
	n := 0
	for _, c := range s.Applied {
		n += c
	}
	return n
}

// TotalRejected returns the number of rejected records.
func (s Stats) TotalRejected() int {
	n := 0
	for _, c := range s.Rejected {
		n += c
	}
	return n
}

type statsCounter struct {
	mu       sync.Mutex
	applied  map[model.Kind]int
	rejected map[Reason]int
}

func newStatsCounter() *statsCounter {
	return &statsCounter{
		applied:  make(map[model.Kind]int),
		rejected: make(map[Reason]int),
	}
}

func (c *statsCounter) record(kind model.Kind, rej *RejectionError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rej != nil {
		c.rejected[rej.Reason]++
		return
	}
	c.applied[kind]++
}

func (c *statsCounter) snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Applied:  maps.Clone(c.applied),
		Rejected: maps.Clone(c.rejected),
	}
}
