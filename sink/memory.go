package sink

import (
	"sync"
	"time"

	"github.com/nwerner/alog/core"
)

// CapturedLine is one line observed by a CaptureSink.
type CapturedLine struct {
	Time       time.Time
	Level      core.Level
	Text       string
	ForceFlush bool
}

// CaptureSink keeps every written line in memory. It exists for tests
// and for tooling that wants to inspect what the controller forwarded.
type CaptureSink struct {
	mu      sync.Mutex
	lines   []CapturedLine
	flushes int
	size    int64

	// WriteDelay, when non-zero, is slept inside every Write call.
	// Tests use it to simulate a slow disk behind the controller.
	WriteDelay time.Duration

	// OnWrite, when non-nil, runs inside every Write call after the
	// line is recorded, outside the sink lock.
	OnWrite func(CapturedLine)
}

// NewCaptureSink creates an empty in-memory sink.
func NewCaptureSink() *CaptureSink {
	return &CaptureSink{}
}

// Write records the line.
func (s *CaptureSink) Write(forceFlush bool, t time.Time, text string, level core.Level) error {
	if s.WriteDelay > 0 {
		time.Sleep(s.WriteDelay)
	}

	line := CapturedLine{Time: t, Level: level, Text: text, ForceFlush: forceFlush}

	s.mu.Lock()
	s.lines = append(s.lines, line)
	s.size += int64(len(text))
	s.mu.Unlock()

	if s.OnWrite != nil {
		s.OnWrite(line)
	}
	return nil
}

// Flush counts the call; captured lines are already "durable".
func (s *CaptureSink) Flush() error {
	s.mu.Lock()
	s.flushes++
	s.mu.Unlock()
	return nil
}

// Size returns the total bytes of text written.
func (s *CaptureSink) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Lines returns a copy of everything written so far.
func (s *CaptureSink) Lines() []CapturedLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CapturedLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Texts returns just the text of every line, in write order.
func (s *CaptureSink) Texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines))
	for i, l := range s.lines {
		out[i] = l.Text
	}
	return out
}

// FlushCalls returns how many times Flush has been invoked.
func (s *CaptureSink) FlushCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushes
}
