package search

import (
	"time"

	"github.com/poiesic/tipindex/core"
)

// Monitor observes the phases of a single search.
// AfterPartialMatch and AfterRawScan are only called when that phase runs.
// Candidate ids are reported in ascending corpus order.
type Monitor interface {
	Start(query string)
	AfterExactMatch(candidates []core.ID)
	AfterPartialMatch(candidates []core.ID)
	AfterRawScan(candidates []core.ID)
	Finish(results []core.ScoredTip, elapsed time.Duration)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                            {}
func (n *noopMonitor) AfterExactMatch(_ []core.ID)               {}
func (n *noopMonitor) AfterPartialMatch(_ []core.ID)             {}
func (n *noopMonitor) AfterRawScan(_ []core.ID)                  {}
func (n *noopMonitor) Finish(_ []core.ScoredTip, _ time.Duration) {}
