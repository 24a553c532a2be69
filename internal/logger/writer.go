package logger

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/databirdlab/densitycal/internal/errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFilePermissions is used when a log file is created without rotation.
const LogFilePermissions = 0o600

// DefaultBufferSize is the write buffer in front of each log file.
const DefaultBufferSize = 32 * 1024

// DefaultFlushInterval is how often buffered log lines are pushed to the file.
const DefaultFlushInterval = 5 * time.Second

// RotationConfig controls size based rotation of a log file.
type RotationConfig struct {
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
	Compress   bool
}

// IsEnabled reports whether rotation is configured.
func (r RotationConfig) IsEnabled() bool {
	return r.MaxSizeMB > 0
}

// RotationConfigFromFileOutput builds the rotation settings of the main log file.
func RotationConfigFromFileOutput(fo *FileOutput) RotationConfig {
	if fo == nil {
		return RotationConfig{}
	}
	return RotationConfig{
		MaxSizeMB:  fo.MaxSize,
		MaxAgeDays: fo.MaxAge,
		MaxBackups: fo.MaxRotatedFiles,
		Compress:   fo.Compress,
	}
}

// RotationConfigFromModuleOutput builds rotation settings for a module file,
// falling back to the main file output for unset values.
func RotationConfigFromModuleOutput(mo *ModuleOutput, fallback *FileOutput) RotationConfig {
	rc := RotationConfigFromFileOutput(fallback)
	if mo == nil {
		return rc
	}
	if mo.MaxSize > 0 {
		rc.MaxSizeMB = mo.MaxSize
	}
	if mo.MaxAge > 0 {
		rc.MaxAgeDays = mo.MaxAge
	}
	if mo.MaxRotatedFiles > 0 {
		rc.MaxBackups = mo.MaxRotatedFiles
	}
	if mo.Compress != nil {
		rc.Compress = *mo.Compress
	}
	return rc
}

// BufferedFileWriter buffers writes to a log file and flushes them
// periodically. With rotation enabled the file is a lumberjack.Logger.
type BufferedFileWriter struct {
	mu         sync.Mutex
	out        io.WriteCloser
	writer     *bufio.Writer
	filePath   string
	bufferSize int
	interval   time.Duration
	rotation   RotationConfig
	stopFlush  chan struct{}
	flushDone  chan struct{}
	closed     bool
}

// BufferedWriterOption configures a BufferedFileWriter
type BufferedWriterOption func(*BufferedFileWriter)

// WithFlushInterval sets the auto-flush interval. Zero disables auto-flush.
func WithFlushInterval(interval time.Duration) BufferedWriterOption {
	return func(w *BufferedFileWriter) {
		w.interval = interval
	}
}

// WithRotation enables size based rotation.
func WithRotation(rc RotationConfig) BufferedWriterOption {
	return func(w *BufferedFileWriter) {
		w.rotation = rc
	}
}

// NewBufferedFileWriter opens filePath for appending.
func NewBufferedFileWriter(filePath string, opts ...BufferedWriterOption) (*BufferedFileWriter, error) {
	w := &BufferedFileWriter{
		filePath:   filePath,
		bufferSize: DefaultBufferSize,
		interval:   DefaultFlushInterval,
	}
	for _, opt := range opts {
		opt(w)
	}

	if w.rotation.IsEnabled() {
		w.out = &lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    w.rotation.MaxSizeMB,
			MaxAge:     w.rotation.MaxAgeDays,
			MaxBackups: w.rotation.MaxBackups,
			Compress:   w.rotation.Compress,
		}
	} else {
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, LogFilePermissions) //nolint:gosec // path comes from config
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", filePath, err)
		}
		w.out = f
	}
	w.writer = bufio.NewWriterSize(w.out, w.bufferSize)

	if w.interval > 0 {
		w.stopFlush = make(chan struct{})
		w.flushDone = make(chan struct{})
		go w.autoFlushLoop()
	}

	return w, nil
}

func (w *BufferedFileWriter) autoFlushLoop() {
	defer close(w.flushDone)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopFlush:
			return
		case <-ticker.C:
			// errors surface on the next Write or Close
			_ = w.Flush()
		}
	}
}

// Write buffers p. Thread-safe.
func (w *BufferedFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writer == nil {
		return 0, fmt.Errorf("writer is closed")
	}
	return w.writer.Write(p)
}

// Flush pushes buffered data to the file. Thread-safe.
func (w *BufferedFileWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writer == nil {
		return nil
	}
	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}
	return nil
}

// Close flushes and closes the file. Calling Close more than once is safe.
func (w *BufferedFileWriter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	if w.stopFlush != nil {
		close(w.stopFlush)
		<-w.flushDone
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var errs []error
	if err := w.writer.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush buffer: %w", err))
	}
	if f, ok := w.out.(*os.File); ok {
		if err := f.Sync(); err != nil {
			errs = append(errs, fmt.Errorf("failed to sync file: %w", err))
		}
	}
	if err := w.out.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close file: %w", err))
	}
	w.writer = nil

	return errors.Join(errs...)
}

// FilePath returns the path of the underlying file
func (w *BufferedFileWriter) FilePath() string {
	return w.filePath
}

// Buffered returns the number of bytes not yet written to the file
func (w *BufferedFileWriter) Buffered() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writer == nil {
		return 0
	}
	return w.writer.Buffered()
}

var _ io.WriteCloser = (*BufferedFileWriter)(nil)
