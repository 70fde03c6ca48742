//go:build !stdlog && !nolog

package build

import "os"

// LoggingType is a log type that writes to both stderr and the log rotator, if
// present.
const LoggingType = LogTypeDefault

// LogLevel is the level development stdout loggers start at.
const LogLevel = "info"

// Write writes the byte slice to stderr, keeping stdout free for command
// output, and to the log rotator, if present.
func (w *LogWriter) Write(b []byte) (int, error) {
	os.Stderr.Write(b)
	if w.RotatorPipe != nil {
		w.RotatorPipe.Write(b)
	}

	return len(b), nil
}
