// Package logger provides the convenience front end over the async
// forwarding layer.
//
// A Logger formats each message, stamps it, and hands it to the
// embedded async controller. Messages at or above the configured
// flush level carry the force-flush flag, so warnings and errors reach
// durable storage promptly even though writes are asynchronous.
//
// Fatal and Fatalf flush synchronously before exiting: the writer
// goroutine cannot run once process teardown begins, so the final
// flush has to happen on the calling goroutine.
package logger
