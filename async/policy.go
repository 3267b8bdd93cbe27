package async

import "sync/atomic"

// OverflowPolicy defines what Write does when the memory budget is
// exhausted
type OverflowPolicy int

const (
	// Block suspends the producer until the writer frees capacity.
	// No record is ever lost; this is the default contract.
	Block OverflowPolicy = iota
	// DropNewest discards the incoming record and counts the drop.
	// Opt-in for callers that prefer loss over latency.
	DropNewest
)

// String returns the string representation of the policy
func (p OverflowPolicy) String() string {
	switch p {
	case Block:
		return "Block"
	case DropNewest:
		return "DropNewest"
	default:
		return "Unknown"
	}
}

// Stats tracks controller statistics. All counters are monotonically
// increasing 64-bit values updated atomically.
type Stats struct {
	// FlushCycles counts completed drain-and-write cycles
	FlushCycles atomic.Uint64
	// DroppedTotal counts records discarded under DropNewest
	DroppedTotal atomic.Uint64
	// BlockedTotal counts Write calls that had to wait for capacity
	BlockedTotal atomic.Uint64
	// ProcessedTotal counts records forwarded to the sink
	ProcessedTotal atomic.Uint64
}

// Snapshot is a point-in-time copy of the controller's counters.
type Snapshot struct {
	FlushCycles    uint64
	DroppedTotal   uint64
	BlockedTotal   uint64
	ProcessedTotal uint64
}

// GetSnapshot returns a snapshot of current statistics
func (s *Stats) GetSnapshot() Snapshot {
	return Snapshot{
		FlushCycles:    s.FlushCycles.Load(),
		DroppedTotal:   s.DroppedTotal.Load(),
		BlockedTotal:   s.BlockedTotal.Load(),
		ProcessedTotal: s.ProcessedTotal.Load(),
	}
}
