package sink

import (
	"fmt"
	"sync/atomic"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/nwerner/alog/core"
)

// RotatingSink writes through a lumberjack.Logger, which handles
// size-based rotation, backup retention and compression. lumberjack
// writes straight to the file without its own buffering, so Flush has
// nothing to drain and returns immediately.
type RotatingSink struct {
	lj   *lumberjack.Logger
	size atomic.Int64
}

// RotateConfig holds configuration for RotatingSink
type RotateConfig struct {
	// Filename is the path to the log file
	Filename string
	// MaxSizeMB is the maximum file size in megabytes before rotation (default: 100)
	MaxSizeMB int
	// MaxBackups is the maximum number of old log files to retain (0 = keep all)
	MaxBackups int
	// MaxAgeDays is the maximum age of a backup in days (0 = no age limit)
	MaxAgeDays int
	// Compress enables gzip compression of rotated files
	Compress bool
}

// NewRotatingSink creates a sink backed by a lumberjack.Logger.
func NewRotatingSink(cfg RotateConfig) (*RotatingSink, error) {
	if cfg.Filename == "" {
		return nil, fmt.Errorf("filename is required")
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 100
	}

	return &RotatingSink{
		lj: &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		},
	}, nil
}

// Write appends one line, rotating the file when it grows past the
// configured size.
func (s *RotatingSink) Write(forceFlush bool, t time.Time, text string, level core.Level) error {
	line := text
	if len(line) == 0 || line[len(line)-1] != '\n' {
		line += "\n"
	}
	n, err := s.lj.Write([]byte(line))
	s.size.Add(int64(n))
	return err
}

// Flush is a no-op: lumberjack writes are unbuffered.
func (s *RotatingSink) Flush() error {
	return nil
}

// Size returns the total bytes written across all rotations since this
// sink was created. It is an approximation of on-disk size; rotated
// backups may have been removed by retention.
func (s *RotatingSink) Size() int64 {
	return s.size.Load()
}

// Rotate forces a rotation of the current log file.
func (s *RotatingSink) Rotate() error {
	return s.lj.Rotate()
}

// Close closes the current log file.
func (s *RotatingSink) Close() error {
	return s.lj.Close()
}
