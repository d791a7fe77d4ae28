package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/erazemk/donations/internal/config"
)

// levelRouter sends error and above to one writer and everything else to another.
type levelRouter struct {
	stdout io.Writer
	stderr io.Writer
}

func (lr levelRouter) Write(p []byte) (int, error) {
	return lr.stdout.Write(p)
}

func (lr levelRouter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level >= zerolog.ErrorLevel && level != zerolog.NoLevel {
		return lr.stderr.Write(p)
	}
	return lr.stdout.Write(p)
}

// setupLogger builds the root logger. Info and warn go to stdout, error goes
// to stderr. If a log file is configured every level is also written there,
// always as JSON. The returned cleanup closes the file.
func setupLogger(cfg config.LogConfig) (zerolog.Logger, func(), error) {
	cleanup := func() {}

	var stdout, stderr io.Writer = os.Stdout, os.Stderr
	if cfg.Format == "console" {
		stdout = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime}
		stderr = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}
	}
	var w io.Writer = levelRouter{stdout: stdout, stderr: stderr}

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		w = zerolog.MultiLevelWriter(w, f)
	}

	logger := zerolog.New(w).Level(cfg.Level).With().Timestamp().Logger()
	return logger, cleanup, nil
}
