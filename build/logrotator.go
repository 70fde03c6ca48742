package build

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jrick/logrotate/rotator"
)

const (
	// DefaultMaxLogFiles is the default maximum number of rolled log
	// files to keep.
	DefaultMaxLogFiles = 3

	// DefaultMaxLogFileSize is the default maximum log file size in MB.
	DefaultMaxLogFileSize = 10
)

// LogConfig holds the options of the log file.
//
//nolint:lll
type LogConfig struct {
	MaxLogFiles    int `long:"maxlogfiles" description:"Maximum rolled logfiles to keep (0 keeps all)"`
	MaxLogFileSize int `long:"maxlogfilesize" description:"Maximum logfile size in MB"`
}

// DefaultLogConfig returns the default logging config options.
func DefaultLogConfig() *LogConfig {
	return &LogConfig{
		MaxLogFiles:    DefaultMaxLogFiles,
		MaxLogFileSize: DefaultMaxLogFileSize,
	}
}

// Validate checks that the log file limits are usable.
func (c *LogConfig) Validate() error {
	if c.MaxLogFiles < 0 {
		return fmt.Errorf("invalid maxlogfiles: %d", c.MaxLogFiles)
	}
	if c.MaxLogFileSize <= 0 {
		return fmt.Errorf("invalid maxlogfilesize: %d",
			c.MaxLogFileSize)
	}

	return nil
}

// RotatingLogWriter feeds a LogWriter's output into a rotating log file.
type RotatingLogWriter struct {
	// Writer is the writer the subsystem loggers should use. Its output
	// reaches the log file once InitLogRotator has been called.
	Writer *LogWriter

	rotator *rotator.Rotator
	done    chan struct{}
}

// NewRotatingLogWriter creates a new file rotating log writer.
//
// NOTE: `InitLogRotator` must be called to set up log rotation after creating
// the writer.
func NewRotatingLogWriter() *RotatingLogWriter {
	return &RotatingLogWriter{
		Writer: &LogWriter{},
	}
}

// InitLogRotator initializes the log file rotator to write logs to logFile and
// create gzipped roll files in the same directory. It must be closed on
// shutdown by calling Close.
func (r *RotatingLogWriter) InitLogRotator(cfg *LogConfig,
	logFile string) error {

	if err := cfg.Validate(); err != nil {
		return err
	}

	logDir, _ := filepath.Split(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	var err error
	r.rotator, err = rotator.New(
		logFile, int64(cfg.MaxLogFileSize*1024), false,
		cfg.MaxLogFiles,
	)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}

	// Errors from the rotator surface on stderr, since the log itself may
	// be what is failing.
	pr, pw := io.Pipe()
	r.done = make(chan struct{})
	go func() {
		defer close(r.done)

		err := r.rotator.Run(pr)
		if err != nil && !errors.Is(err, io.EOF) {
			_, _ = fmt.Fprintf(os.Stderr,
				"failed to run file rotator: %v\n", err)
		}
	}()

	r.Writer.RotatorPipe = pw

	return nil
}

// Close flushes pending log lines and closes the log file. It is a no-op if
// the rotator was never initialized.
func (r *RotatingLogWriter) Close() error {
	if r.rotator == nil {
		return nil
	}

	pipe := r.Writer.RotatorPipe
	r.Writer.RotatorPipe = nil
	if err := pipe.Close(); err != nil {
		return err
	}
	<-r.done

	return r.rotator.Close()
}
