// Package core defines the shared value types used across alog.
//
// It provides the Level type for severity ordering, the Record type
// that captures a single formatted log event, and a coarse cached
// clock for callers that log frequently enough that time.Now becomes
// measurable.
//
// Records are immutable once constructed. Whichever buffer holds a
// Record owns it until that buffer is cleared; nothing in the library
// mutates a Record after creation.
package core
