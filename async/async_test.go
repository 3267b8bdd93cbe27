package async

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nwerner/alog/core"
	"github.com/nwerner/alog/sink"
)

func newRunning(t *testing.T, cfg Config) *AsyncLogger {
	t.Helper()
	l := New(cfg)
	l.Start()
	return l
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestWriteForwardsInOrder(t *testing.T) {
	out := sink.NewCaptureSink()
	l := newRunning(t, Config{Sink: out})

	const n = 100
	for i := 0; i < n; i++ {
		l.Write(false, time.Now(), fmt.Sprintf("msg-%03d", i), core.InfoLevel)
	}
	l.Flush()

	texts := out.Texts()
	if len(texts) != n {
		t.Fatalf("sink received %d records, want %d", len(texts), n)
	}
	for i, text := range texts {
		if want := fmt.Sprintf("msg-%03d", i); text != want {
			t.Fatalf("record %d = %q, want %q", i, text, want)
		}
	}

	l.Stop()
}

func TestFlushLowerBound(t *testing.T) {
	out := sink.NewCaptureSink()
	out.WriteDelay = 100 * time.Microsecond
	l := newRunning(t, Config{Sink: out})

	const n = 50
	for i := 0; i < n; i++ {
		l.Write(false, time.Now(), fmt.Sprintf("r%d", i), core.InfoLevel)
	}
	l.Flush()

	// Everything appended strictly before Flush must already be at the
	// sink when Flush returns
	if got := len(out.Lines()); got < n {
		t.Errorf("after Flush sink has %d records, want at least %d", got, n)
	}
	if out.FlushCalls() == 0 {
		t.Error("sink Flush was never invoked")
	}

	l.Stop()
}

func TestStopDrains(t *testing.T) {
	out := sink.NewCaptureSink()
	out.WriteDelay = 50 * time.Microsecond
	l := newRunning(t, Config{Sink: out})

	const n = 200
	for i := 0; i < n; i++ {
		l.Write(false, time.Now(), fmt.Sprintf("r%d", i), core.InfoLevel)
	}
	l.Stop()

	if got := len(out.Lines()); got != n {
		t.Errorf("after Stop sink has %d records, want %d", got, n)
	}
}

func TestFlushOnEmptyBuffer(t *testing.T) {
	out := sink.NewCaptureSink()
	l := newRunning(t, Config{Sink: out})

	l.Flush()

	if out.FlushCalls() == 0 {
		t.Error("Flush on an empty controller should still flush the sink")
	}
	if got := len(out.Lines()); got != 0 {
		t.Errorf("sink received %d records, want 0", got)
	}

	l.Stop()
}

func TestBackpressureNoLoss(t *testing.T) {
	out := sink.NewCaptureSink()
	out.WriteDelay = 200 * time.Microsecond
	l := newRunning(t, Config{Sink: out, MaxBufferBytes: 256})

	const producers = 4
	const perProducer = 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				text := fmt.Sprintf("p%d-%06d-%032d", p, i, i)
				l.Write(false, time.Now(), text, core.InfoLevel)
			}
		}(p)
	}
	wg.Wait()

	stats := l.Stats()
	l.Stop()

	lines := out.Texts()
	if len(lines) != producers*perProducer {
		t.Fatalf("sink received %d records, want %d (no record may be dropped under backpressure)",
			len(lines), producers*perProducer)
	}

	// Writing far more than the budget must have stalled producers
	if stats.BlockedTotal == 0 {
		t.Error("expected blocked producers with a 256-byte budget")
	}
	if stats.DroppedTotal != 0 {
		t.Errorf("Block policy dropped %d records", stats.DroppedTotal)
	}

	// Per-producer relative order survives interleaving
	last := make([]int, producers)
	for i := range last {
		last[i] = -1
	}
	for _, text := range lines {
		var p, seq int
		if _, err := fmt.Sscanf(text, "p%d-%d-", &p, &seq); err != nil {
			t.Fatalf("unparseable record %q: %v", text, err)
		}
		if seq <= last[p] {
			t.Fatalf("producer %d out of order: %d after %d", p, seq, last[p])
		}
		last[p] = seq
	}
}

func TestBoundedMemory(t *testing.T) {
	const budget = 1024
	const textLen = 100

	var maxSeen atomic.Int64
	out := sink.NewCaptureSink()
	out.WriteDelay = 100 * time.Microsecond

	l := New(Config{Sink: out, MaxBufferBytes: budget})
	out.OnWrite = func(sink.CapturedLine) {
		if b := l.BufferedBytes(); b > maxSeen.Load() {
			maxSeen.Store(b)
		}
	}
	l.Start()

	text := fmt.Sprintf("%0*d", textLen, 0)
	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				l.Write(false, time.Now(), text, core.InfoLevel)
			}
		}()
	}
	wg.Wait()
	l.Stop()

	// The budget may be overshot by at most one in-flight record
	limit := int64(budget) + recordOverhead + textLen
	if got := maxSeen.Load(); got > limit {
		t.Errorf("buffered bytes peaked at %d, limit %d", got, limit)
	}
}

// TestBufferAndForceFlush is the end-to-end scenario: a 1KiB budget,
// ten small records, one explicit Flush, then a single urgent record
// that must flush the sink without any Flush call from the caller.
func TestBufferAndForceFlush(t *testing.T) {
	out := sink.NewCaptureSink()
	l := newRunning(t, Config{Sink: out, MaxBufferBytes: 1024})

	for i := 0; i < 10; i++ {
		l.Write(false, time.Now(), fmt.Sprintf("record number %02d padded to fifty bytes....%04d", i, i), core.InfoLevel)
	}
	l.Flush()

	texts := out.Texts()
	if len(texts) != 10 {
		t.Fatalf("sink received %d records, want exactly 10", len(texts))
	}
	for i, text := range texts {
		if want := fmt.Sprintf("record number %02d padded to fifty bytes....%04d", i, i); text != want {
			t.Fatalf("record %d = %q, want %q", i, text, want)
		}
	}
	if s := l.Stats(); s.FlushCycles < 1 {
		t.Errorf("FlushCycles = %d, want >= 1", s.FlushCycles)
	}

	flushesBefore := out.FlushCalls()
	l.Write(true, time.Now(), "urgent", core.ErrorLevel)

	// No explicit Flush: the force_flush flag alone must reach the sink
	waitFor(t, "sink flush after urgent record", func() bool {
		return out.FlushCalls() > flushesBefore
	})

	l.Stop()
}

func TestForceFlushRidesFinalRecord(t *testing.T) {
	gate := make(chan struct{})
	out := sink.NewCaptureSink()
	l := New(Config{Sink: out})
	first := true
	out.OnWrite = func(sink.CapturedLine) {
		if first {
			first = false
			<-gate // stall the writer inside its first drain
		}
	}
	l.Start()

	l.Write(false, time.Now(), "gen1", core.InfoLevel)
	waitFor(t, "writer to enter first drain", func() bool {
		return len(out.Lines()) == 1
	})

	// These accumulate in one generation while the writer is stalled;
	// the urgent flag is on the middle record but must be forwarded on
	// the generation's final record
	l.Write(false, time.Now(), "gen2-a", core.InfoLevel)
	l.Write(true, time.Now(), "gen2-b", core.WarnLevel)
	l.Write(false, time.Now(), "gen2-c", core.InfoLevel)

	close(gate)
	l.Flush()

	lines := out.Lines()
	if len(lines) < 4 {
		t.Fatalf("sink received %d records, want 4", len(lines))
	}
	gen2 := lines[1:4]
	for i, line := range gen2 {
		wantForce := i == len(gen2)-1
		if line.ForceFlush != wantForce {
			t.Errorf("record %q force_flush = %v, want %v", line.Text, line.ForceFlush, wantForce)
		}
	}
	if out.FlushCalls() == 0 {
		t.Error("sink Flush never ran for the urgent generation")
	}

	l.Stop()
}

func TestDropNewestPolicy(t *testing.T) {
	gate := make(chan struct{})
	out := sink.NewCaptureSink()
	l := New(Config{Sink: out, MaxBufferBytes: 256, Policy: DropNewest})
	first := true
	out.OnWrite = func(sink.CapturedLine) {
		if first {
			first = false
			<-gate
		}
	}
	l.Start()

	text := fmt.Sprintf("%0*d", 100, 0)

	l.Write(false, time.Now(), text, core.InfoLevel)
	waitFor(t, "writer to stall in drain", func() bool {
		return len(out.Lines()) == 1
	})

	// The stalled generation still counts against the budget, so
	// pushing enough new records must start dropping instead of
	// blocking
	const attempts = 10
	for i := 0; i < attempts; i++ {
		l.Write(false, time.Now(), text, core.InfoLevel)
	}

	stats := l.Stats()
	if stats.DroppedTotal == 0 {
		t.Error("DropNewest never dropped despite an exhausted budget")
	}
	if stats.BlockedTotal != 0 {
		t.Errorf("DropNewest blocked %d times", stats.BlockedTotal)
	}

	close(gate)
	l.Stop()

	finalStats := l.Stats()
	written := uint64(1 + attempts)
	if got := finalStats.ProcessedTotal + finalStats.DroppedTotal; got != written {
		t.Errorf("processed(%d) + dropped(%d) = %d, want %d (drops must be counted)",
			finalStats.ProcessedTotal, finalStats.DroppedTotal, got, written)
	}
}

func TestLogSizePassthrough(t *testing.T) {
	out := sink.NewCaptureSink()
	l := newRunning(t, Config{Sink: out})

	if got := l.LogSize(); got != 0 {
		t.Errorf("LogSize before any write = %d, want 0", got)
	}

	l.Write(false, time.Now(), "12345", core.InfoLevel)
	l.Flush()

	if got := l.LogSize(); got != 5 {
		t.Errorf("LogSize after flush = %d, want 5", got)
	}

	l.Stop()
}

func TestLifecycleContract(t *testing.T) {
	mustPanic := func(name string, f func()) {
		defer func() {
			if recover() == nil {
				t.Errorf("%s did not panic", name)
			}
		}()
		f()
	}

	l := New(Config{Sink: sink.NewCaptureSink()})
	mustPanic("Write before Start", func() {
		l.Write(false, time.Now(), "x", core.InfoLevel)
	})
	mustPanic("Flush before Start", func() { l.Flush() })
	mustPanic("Stop before Start", func() { l.Stop() })

	l.Start()
	mustPanic("second Start", func() { l.Start() })

	l.Stop()
	mustPanic("Write after Stop", func() {
		l.Write(false, time.Now(), "x", core.InfoLevel)
	})
	mustPanic("Flush after Stop", func() { l.Flush() })
	mustPanic("second Stop", func() { l.Stop() })
}

func TestConcurrentFlushers(t *testing.T) {
	out := sink.NewCaptureSink()
	out.WriteDelay = 50 * time.Microsecond
	l := newRunning(t, Config{Sink: out})

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				l.Write(i%5 == 0, time.Now(), fmt.Sprintf("p%d-%d", p, i), core.InfoLevel)
				if i%10 == 9 {
					l.Flush()
				}
			}
		}(p)
	}
	wg.Wait()
	l.Stop()

	if got := len(out.Lines()); got != 4*20 {
		t.Errorf("sink received %d records, want %d", got, 4*20)
	}
}

func BenchmarkWrite(b *testing.B) {
	out := sink.NewCaptureSink()
	l := New(Config{Sink: out, MaxBufferBytes: 64 << 20})
	l.Start()
	defer l.Stop()

	now := time.Now()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Write(false, now, "benchmark message with a typical length for a log line", core.InfoLevel)
	}
}

func BenchmarkWriteParallel(b *testing.B) {
	out := sink.NewCaptureSink()
	l := New(Config{Sink: out, MaxBufferBytes: 64 << 20})
	l.Start()
	defer l.Stop()

	now := time.Now()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			l.Write(false, now, "benchmark message with a typical length for a log line", core.InfoLevel)
		}
	})
}
