package core

import "time"

// Record is a single buffered log event: a wall-clock timestamp, the
// fully formatted line and its severity. It is created by the producer
// at write time and never mutated afterwards.
type Record struct {
	Time  time.Time
	Level Level
	Text  string
}
