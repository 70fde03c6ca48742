package main

import (
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/dlcgo/dlcd/build"
	"github.com/dlcgo/dlcd/dlcdb"
	"github.com/dlcgo/dlcd/dlcwire"
	"github.com/dlcgo/dlcd/dlcwire/pre163"
)

// Subsystem defines the logging code for the command itself.
const Subsystem = "DCLI"

// log is the command's logger. It stays disabled until setupLoggers runs.
var log = btclog.Disabled

// setupLoggers creates one logger per subsystem on a shared backend that
// writes to a rotating log file under logDir, hands them to their packages
// and applies the debug level string. The returned writer must be closed
// on exit.
func setupLoggers(cfg *config) (*build.RotatingLogWriter, error) {
	logWriter := build.NewRotatingLogWriter()
	err := logWriter.InitLogRotator(
		cfg.Log, filepath.Join(cfg.LogDir, defaultLogFilename),
	)
	if err != nil {
		return nil, err
	}

	mgr := build.NewSubLoggerManager(logWriter.Writer)
	log = build.NewSubLogger(Subsystem, mgr.GenSubLogger)
	dlcwire.UseLogger(build.NewSubLogger(dlcwire.Subsystem, mgr.GenSubLogger))
	pre163.UseLogger(build.NewSubLogger(pre163.Subsystem, mgr.GenSubLogger))
	dlcdb.UseLogger(build.NewSubLogger(dlcdb.Subsystem, mgr.GenSubLogger))

	err = build.ParseAndSetDebugLevels(cfg.DebugLevel, mgr)
	if err != nil {
		_ = logWriter.Close()
		return nil, err
	}

	return logWriter, nil
}
