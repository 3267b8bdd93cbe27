package async

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/nwerner/alog/core"
	"github.com/nwerner/alog/sink"
)

// DefaultMaxBufferBytes caps total estimated buffered size when the
// config leaves MaxBufferBytes zero.
const DefaultMaxBufferBytes = 1 << 20

type state int

const (
	stateCreated state = iota
	stateRunning
	stateStopped
)

// AsyncLogger wraps a synchronous sink and forwards records to it from
// a dedicated writer goroutine, double-buffering in between. See the
// package documentation for the full semantics.
//
// The lifecycle is one-shot: New, Start, any number of concurrent
// Write/Flush calls, Stop. Write and Flush panic outside the running
// state; that is a programming error, not a runtime condition.
type AsyncLogger struct {
	wrapped        sink.Sink
	maxBufferBytes int64
	policy         OverflowPolicy

	// mu protects both buffer slots, the state and the cycle counter
	// bumps. Sink I/O happens strictly outside mu.
	mu         sync.Mutex
	wakeWriter *sync.Cond // producers -> writer: new data, flush request or stop
	flushDone  *sync.Cond // writer -> waiters: a drain cycle completed

	// active receives appends from producers; flushing is owned by the
	// writer while it drains. The two swap under mu, a constant-time
	// pointer exchange.
	active   *buffer
	flushing *buffer

	state state
	done  chan struct{}

	stats Stats
}

// Config configures an AsyncLogger
type Config struct {
	// Sink is the wrapped synchronous sink (required)
	Sink sink.Sink
	// MaxBufferBytes caps the estimated size of both buffers combined
	// (default: DefaultMaxBufferBytes)
	MaxBufferBytes int64
	// Policy selects the overflow behavior (default: Block)
	Policy OverflowPolicy
}

// New creates a controller in the created state. Start must be called
// exactly once before Write or Flush.
func New(cfg Config) *AsyncLogger {
	if cfg.Sink == nil {
		panic("alog/async: Config.Sink is required")
	}
	if cfg.MaxBufferBytes <= 0 {
		cfg.MaxBufferBytes = DefaultMaxBufferBytes
	}

	l := &AsyncLogger{
		wrapped:        cfg.Sink,
		maxBufferBytes: cfg.MaxBufferBytes,
		policy:         cfg.Policy,
		active:         &buffer{},
		flushing:       &buffer{},
		done:           make(chan struct{}),
	}
	l.wakeWriter = sync.NewCond(&l.mu)
	l.flushDone = sync.NewCond(&l.mu)
	return l
}

// Start spawns the writer goroutine. It must be called exactly once.
func (l *AsyncLogger) Start() {
	l.mu.Lock()
	if l.state != stateCreated {
		l.mu.Unlock()
		panic("alog/async: Start called twice")
	}
	l.state = stateRunning
	l.mu.Unlock()

	go l.run()
}

// Write buffers one record and wakes the writer. When the memory
// budget is exhausted the call blocks until the writer frees capacity
// (Block policy) or the record is counted and discarded (DropNewest).
// A single append may overshoot the budget by one record; the budget
// is enforced before the append, not after.
func (l *AsyncLogger) Write(forceFlush bool, t time.Time, text string, level core.Level) {
	l.mu.Lock()
	if l.state != stateRunning {
		l.mu.Unlock()
		panic("alog/async: Write called before Start or after Stop")
	}

	if l.overBudget() {
		if l.policy == DropNewest {
			l.stats.DroppedTotal.Add(1)
			l.wakeWriter.Signal()
			l.mu.Unlock()
			return
		}
		l.stats.BlockedTotal.Add(1)
		for l.overBudget() && l.state == stateRunning {
			l.wakeWriter.Signal()
			l.flushDone.Wait()
		}
	}

	l.active.add(core.Record{Time: t, Level: level, Text: text}, forceFlush)
	l.wakeWriter.Signal()
	l.mu.Unlock()
}

// Flush blocks until every record appended before the call has been
// forwarded to the sink and the sink's Flush has run. Records appended
// concurrently may or may not be included.
func (l *AsyncLogger) Flush() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != stateRunning {
		panic("alog/async: Flush called before Start or after Stop")
	}

	// A drain cycle may already be in flight when we get here, and that
	// cycle can predate our records. Waiting for the counter to advance
	// by two guarantees at least one full cycle that started after this
	// call. The flush flag is re-armed on every wakeup because the
	// writer clears it with each swapped-out buffer.
	target := l.stats.FlushCycles.Load() + 2
	for l.stats.FlushCycles.Load() < target && l.state == stateRunning {
		l.active.flush = true
		l.wakeWriter.Signal()
		l.flushDone.Wait()
	}
}

// LogSize returns the wrapped sink's approximate size. It never blocks
// and never takes the controller lock; the value can be stale by the
// amount currently buffered.
func (l *AsyncLogger) LogSize() int64 {
	return l.wrapped.Size()
}

// BufferedBytes returns the estimated bytes currently held across both
// buffers.
func (l *AsyncLogger) BufferedBytes() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active.size.Load() + l.flushing.size.Load()
}

// Stats returns a snapshot of the controller's counters.
func (l *AsyncLogger) Stats() Snapshot {
	return l.stats.GetSnapshot()
}

// Stop signals the writer to drain everything already buffered and
// exit, then joins it. Write and Flush must not be called afterwards.
func (l *AsyncLogger) Stop() {
	l.mu.Lock()
	if l.state != stateRunning {
		l.mu.Unlock()
		panic("alog/async: Stop called before Start or after Stop")
	}
	l.state = stateStopped
	l.wakeWriter.Signal()
	l.mu.Unlock()

	<-l.done
}

// overBudget reports whether the combined estimated size of both
// buffers has reached the cap. Caller must hold mu.
func (l *AsyncLogger) overBudget() bool {
	return l.active.size.Load()+l.flushing.size.Load() >= l.maxBufferBytes
}

// run is the writer loop: wait, swap, drain outside the lock, publish
// completion, repeat. On stop it keeps draining until the active
// buffer is empty so nothing buffered before Stop is lost.
func (l *AsyncLogger) run() {
	defer close(l.done)

	for {
		l.mu.Lock()
		for !l.active.needsFlushOrWrite() && l.state == stateRunning {
			l.wakeWriter.Wait()
		}
		if !l.active.needsFlushOrWrite() && l.state != stateRunning {
			l.flushDone.Broadcast()
			l.mu.Unlock()
			return
		}
		l.active, l.flushing = l.flushing, l.active
		l.mu.Unlock()

		l.drain(l.flushing)

		l.mu.Lock()
		l.stats.FlushCycles.Add(1)
		l.flushDone.Broadcast()
		l.mu.Unlock()
	}
}

// drain forwards a swapped-out buffer to the sink in append order and
// clears it. The buffer's flush request rides on the final record and
// triggers exactly one sink Flush afterwards. Sink failures are
// reported and otherwise left to the sink; the controller neither
// retries nor translates them.
func (l *AsyncLogger) drain(buf *buffer) {
	last := len(buf.records) - 1
	for i := range buf.records {
		rec := &buf.records[i]
		force := buf.flush && i == last
		if err := l.wrapped.Write(force, rec.Time, rec.Text, rec.Level); err != nil {
			fmt.Fprintf(os.Stderr, "alog: sink write failed: %v\n", err)
		}
	}
	l.stats.ProcessedTotal.Add(uint64(len(buf.records)))

	if buf.flush {
		if err := l.wrapped.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "alog: sink flush failed: %v\n", err)
		}
	}
	buf.clear()
}
