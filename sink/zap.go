package sink

import (
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nwerner/alog/core"
)

// ZapSink forwards records into a zap.Logger, so the async controller
// can front an existing zap pipeline (encoders, cores, outputs all
// stay zap's business). Flush maps to Sync.
type ZapSink struct {
	logger *zap.Logger
	size   atomic.Int64
}

// NewZapSink wraps an existing zap logger.
func NewZapSink(logger *zap.Logger) *ZapSink {
	return &ZapSink{logger: logger}
}

// Write logs the line at the mapped zap level. Trailing newlines are
// stripped because zap frames its own output.
func (s *ZapSink) Write(forceFlush bool, t time.Time, text string, level core.Level) error {
	msg := strings.TrimRight(text, "\n")
	s.logger.Log(zapLevel(level), msg)
	s.size.Add(int64(len(msg)))
	return nil
}

// Flush syncs the underlying zap logger.
func (s *ZapSink) Flush() error {
	return s.logger.Sync()
}

// Size returns the total message bytes forwarded to zap. zap does not
// expose output sizes, so this is the closest approximation available.
func (s *ZapSink) Size() int64 {
	return s.size.Load()
}

// zapLevel maps a core.Level onto zapcore.Level. FatalLevel maps to
// zap's Error: zap terminates the process on Fatal entries, and
// process exit is owned by the alog front end, not the sink.
func zapLevel(level core.Level) zapcore.Level {
	switch level {
	case core.DebugLevel:
		return zapcore.DebugLevel
	case core.InfoLevel:
		return zapcore.InfoLevel
	case core.WarnLevel:
		return zapcore.WarnLevel
	case core.ErrorLevel, core.FatalLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
