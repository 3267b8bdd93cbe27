package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/nwerner/alog/async"
	"github.com/nwerner/alog/core"
	"github.com/nwerner/alog/formatter"
	"github.com/nwerner/alog/sink"
)

// osExit is a variable to allow overriding os.Exit in tests
var osExit = os.Exit

// Logger is the front end over the async controller (immutable after Build)
type Logger struct {
	al         *async.AsyncLogger
	snk        sink.Sink
	fmtr       formatter.Formatter
	level      core.Level
	flushLevel core.Level
	coarse     bool

	closeOnce sync.Once
	closeErr  error
}

// Builder provides a fluent API for building Logger instances
type Builder struct {
	snk            sink.Sink
	fmtr           formatter.Formatter
	level          core.Level
	flushLevel     core.Level
	maxBufferBytes int64
	policy         async.OverflowPolicy
	coarse         bool
}

// NewBuilder creates a new logger builder
func NewBuilder() *Builder {
	return &Builder{
		level:      core.InfoLevel, // Default level
		flushLevel: core.WarnLevel, // Warnings and above force a sink flush
	}
}

// WithSink sets the wrapped synchronous sink (required)
func (b *Builder) WithSink(s sink.Sink) *Builder {
	b.snk = s
	return b
}

// WithFormatter sets the formatter (default: TextFormatter)
func (b *Builder) WithFormatter(f formatter.Formatter) *Builder {
	b.fmtr = f
	return b
}

// WithLevel sets the minimum level that gets logged at all
func (b *Builder) WithLevel(level core.Level) *Builder {
	b.level = level
	return b
}

// WithFlushLevel sets the level at which records carry the force-flush
// flag through to the sink
func (b *Builder) WithFlushLevel(level core.Level) *Builder {
	b.flushLevel = level
	return b
}

// WithMaxBufferBytes caps the async controller's buffered memory
func (b *Builder) WithMaxBufferBytes(n int64) *Builder {
	b.maxBufferBytes = n
	return b
}

// WithOverflowPolicy selects the controller's overflow behavior
func (b *Builder) WithOverflowPolicy(p async.OverflowPolicy) *Builder {
	b.policy = p
	return b
}

// WithCoarseClock timestamps records from the cached coarse clock
// instead of calling time.Now on every log call
func (b *Builder) WithCoarseClock(enabled bool) *Builder {
	b.coarse = enabled
	return b
}

// Build creates the Logger and starts its writer goroutine
func (b *Builder) Build() (*Logger, error) {
	if b.snk == nil {
		return nil, fmt.Errorf("sink is required")
	}
	fmtr := b.fmtr
	if fmtr == nil {
		fmtr = formatter.NewTextFormatter(formatter.Config{})
	}
	if b.coarse {
		core.StartCoarseClock()
	}

	al := async.New(async.Config{
		Sink:           b.snk,
		MaxBufferBytes: b.maxBufferBytes,
		Policy:         b.policy,
	})
	al.Start()

	return &Logger{
		al:         al,
		snk:        b.snk,
		fmtr:       fmtr,
		level:      b.level,
		flushLevel: b.flushLevel,
		coarse:     b.coarse,
	}, nil
}

func (l *Logger) now() time.Time {
	if l.coarse {
		return core.CoarseNow()
	}
	return time.Now()
}

// log formats the message and hands it to the async controller.
func (l *Logger) log(level core.Level, msg string) {
	t := l.now()
	line := l.fmtr.Format(core.Record{Time: t, Level: level, Text: msg})
	l.al.Write(level >= l.flushLevel, t, string(line), level)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) {
	if core.DebugLevel < l.level {
		return
	}
	l.log(core.DebugLevel, msg)
}

// Info logs an info message
func (l *Logger) Info(msg string) {
	if core.InfoLevel < l.level {
		return
	}
	l.log(core.InfoLevel, msg)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) {
	if core.WarnLevel < l.level {
		return
	}
	l.log(core.WarnLevel, msg)
}

// Error logs an error message
func (l *Logger) Error(msg string) {
	if core.ErrorLevel < l.level {
		return
	}
	l.log(core.ErrorLevel, msg)
}

// Fatal logs a fatal message, flushes all buffers through the sink
// and exits the program with os.Exit(1)
func (l *Logger) Fatal(msg string) {
	l.log(core.FatalLevel, msg)
	l.al.Flush()
	osExit(1)
}

// Debugf logs a debug message with formatting
func (l *Logger) Debugf(format string, args ...interface{}) {
	if core.DebugLevel < l.level {
		return
	}
	l.log(core.DebugLevel, fmt.Sprintf(format, args...))
}

// Infof logs an info message with formatting
func (l *Logger) Infof(format string, args ...interface{}) {
	if core.InfoLevel < l.level {
		return
	}
	l.log(core.InfoLevel, fmt.Sprintf(format, args...))
}

// Warnf logs a warning message with formatting
func (l *Logger) Warnf(format string, args ...interface{}) {
	if core.WarnLevel < l.level {
		return
	}
	l.log(core.WarnLevel, fmt.Sprintf(format, args...))
}

// Errorf logs an error message with formatting
func (l *Logger) Errorf(format string, args ...interface{}) {
	if core.ErrorLevel < l.level {
		return
	}
	l.log(core.ErrorLevel, fmt.Sprintf(format, args...))
}

// Fatalf logs a fatal message with formatting, flushes and exits
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.log(core.FatalLevel, fmt.Sprintf(format, args...))
	l.al.Flush()
	osExit(1)
}

// Flush blocks until everything logged before the call has reached
// the sink
func (l *Logger) Flush() {
	l.al.Flush()
}

// LogSize returns the sink's approximate size
func (l *Logger) LogSize() int64 {
	return l.al.LogSize()
}

// Stats returns a snapshot of the controller's counters
func (l *Logger) Stats() async.Snapshot {
	return l.al.Stats()
}

// Controller exposes the underlying async controller, mainly for
// wiring up metrics collection
func (l *Logger) Controller() *async.AsyncLogger {
	return l.al
}

// Close stops the writer goroutine after a final drain and closes the
// sink if it is closable. Safe to call more than once.
func (l *Logger) Close() error {
	l.closeOnce.Do(func() {
		l.al.Stop()
		if c, ok := l.snk.(io.Closer); ok {
			l.closeErr = c.Close()
		}
	})
	return l.closeErr
}
