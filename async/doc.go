// Package async implements a double-buffered asynchronous forwarding
// layer in front of a synchronous sink.
//
// Producers append records to the active buffer and wake the writer
// goroutine. The writer swaps in a fresh buffer under the lock, then
// forwards the accumulated records to the wrapped sink outside the
// lock, so a sink blocking on a disk flush never stalls producers
// directly. Total buffered memory is capped: once the estimated size
// of both buffers reaches the configured budget, producers block until
// the writer has drained (the Block policy), or the record is counted
// and discarded (the optional DropNewest policy).
//
// The deferred flush makes the durability semantics slightly weaker
// than writing through synchronously: a crash immediately after Write
// returns can lose buffered records. Callers that are about to
// terminate abnormally should invoke Flush first, which blocks until
// every previously appended record has reached the sink.
//
// Ordering is preserved: within one buffer generation records are
// forwarded in append order, and generation N is fully forwarded
// before anything from generation N+1.
package async
