package benchmark

import (
	"sync/atomic"
	"time"

	"github.com/nwerner/alog/core"
)

// noopSink discards everything while counting bytes, so benchmarks
// measure the buffering layer rather than an output device.
type noopSink struct {
	size atomic.Int64
}

func (s *noopSink) Write(forceFlush bool, t time.Time, text string, level core.Level) error {
	s.size.Add(int64(len(text)))
	return nil
}

func (s *noopSink) Flush() error { return nil }

func (s *noopSink) Size() int64 { return s.size.Load() }
