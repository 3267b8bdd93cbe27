package sink

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nwerner/alog/core"
)

// FileSink appends formatted lines to a single log file through a
// bufio.Writer. Flush drains the buffer and fsyncs the file, which is
// the slow operation the async controller exists to hide.
type FileSink struct {
	mu   sync.Mutex
	file *os.File
	bw   *bufio.Writer
	size atomic.Int64
}

// FileConfig holds configuration for FileSink
type FileConfig struct {
	// Filename is the path to the log file
	Filename string
	// BufferSize is the bufio buffer size in bytes (default: 64KiB)
	BufferSize int
}

// NewFileSink opens (or creates) the log file in append mode. The
// reported size starts at the current file size so Size stays
// meaningful across restarts.
func NewFileSink(cfg FileConfig) (*FileSink, error) {
	if cfg.Filename == "" {
		return nil, fmt.Errorf("filename is required")
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 64 * 1024
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(cfg.Filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	file, err := os.OpenFile(cfg.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat log file: %w", err)
	}

	s := &FileSink{
		file: file,
		bw:   bufio.NewWriterSize(file, cfg.BufferSize),
	}
	s.size.Store(info.Size())
	return s, nil
}

// Write appends one line to the file buffer. A trailing newline is
// added when the text does not already carry one.
func (s *FileSink) Write(forceFlush bool, t time.Time, text string, level core.Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.bw.WriteString(text)
	s.size.Add(int64(n))
	if err != nil {
		return err
	}
	if len(text) == 0 || text[len(text)-1] != '\n' {
		if err := s.bw.WriteByte('\n'); err != nil {
			return err
		}
		s.size.Add(1)
	}
	return nil
}

// Flush drains the write buffer and syncs the file to disk.
func (s *FileSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.bw.Flush(); err != nil {
		return err
	}
	return s.file.Sync()
}

// Size returns the approximate number of bytes written, including
// bytes still sitting in the bufio buffer.
func (s *FileSink) Size() int64 {
	return s.size.Load()
}

// Close flushes and closes the underlying file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.bw.Flush(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
