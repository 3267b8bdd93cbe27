package sink

import (
	"time"

	"github.com/nwerner/alog/core"
)

// Sink is a synchronous destination for formatted log lines.
//
// forceFlush is set by the caller for records logged at or above its
// flush threshold; it is a hint that the record should reach durable
// storage promptly. The async controller passes it through on the last
// record of a buffer generation and follows up with one Flush call.
type Sink interface {
	// Write persists one formatted line. It may block.
	Write(forceFlush bool, t time.Time, text string, level core.Level) error

	// Flush persists everything written so far. It may block.
	Flush() error

	// Size returns the approximate number of bytes written to the
	// underlying storage. It must not block; staleness by the amount
	// currently buffered upstream is acceptable.
	Size() int64
}
