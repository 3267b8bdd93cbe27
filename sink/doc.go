// Package sink defines the synchronous sink contract that the async
// controller forwards into, plus the built-in implementations.
//
// A Sink persists fully formatted log lines. Write and Flush may block
// (for example on a disk flush); the async controller always calls
// them from its single writer goroutine, outside the controller lock,
// so slow sinks never stall producers beyond the configured memory
// budget. Size must be fast and is allowed to be approximate.
//
// Built-in sinks:
//
//   - FileSink appends to a single file through a bufio.Writer and
//     fsyncs on Flush.
//   - RotatingSink writes through a lumberjack.Logger for size-based
//     rotation and backup cleanup.
//   - ZapSink forwards each record into a zap.Logger, letting alog
//     front a zap-based logging pipeline.
//   - CaptureSink keeps everything in memory for tests and tooling.
//
// Sinks report errors to their caller and do nothing else with them;
// retry and translation policy belongs to the application.
package sink
