package async

import (
	"sync/atomic"
	"unsafe"

	"github.com/nwerner/alog/core"
)

// recordOverhead is the per-record bookkeeping cost added to the text
// length when estimating buffered memory.
const recordOverhead = int64(unsafe.Sizeof(core.Record{}))

// buffer is an append-only batch of records waiting to be forwarded.
// It has no locking of its own: records and flush are only touched by
// whichever side currently owns the buffer (producers under the
// controller lock, the writer after a swap). size is atomic because
// producers read the flushing buffer's size for the memory budget
// check while the writer is draining it.
type buffer struct {
	records []core.Record
	size    atomic.Int64
	flush   bool
}

// add appends a record and ORs the force-flush request into the
// buffer's flush flag.
func (b *buffer) add(rec core.Record, forceFlush bool) {
	b.size.Add(recordOverhead + int64(len(rec.Text)))
	b.records = append(b.records, rec)
	b.flush = b.flush || forceFlush
}

// clear empties the buffer for reuse. The records slice keeps its
// capacity so steady-state operation stops allocating.
func (b *buffer) clear() {
	b.records = b.records[:0]
	b.size.Store(0)
	b.flush = false
}

// needsFlushOrWrite reports whether the writer has work to do for
// this buffer: pending records, or an explicit flush request on an
// otherwise empty buffer.
func (b *buffer) needsFlushOrWrite() bool {
	return b.flush || len(b.records) > 0
}
