// Package formatter renders core.Record values into log lines.
//
// The async layer forwards whatever text the producer handed it, so
// formatting happens up front in the logger front end. TextFormatter
// produces human-readable lines; JSONFormatter produces one JSON
// object per line. Both append a trailing newline so sinks can write
// lines verbatim.
package formatter
