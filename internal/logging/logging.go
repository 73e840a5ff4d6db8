// Package logging provides the contextual, structured logger handed to
// every component constructor. Nothing in the pipeline reaches for an
// ambient global logger; the handle is built once in main and passed down.
package logging

import (
	"context"
	"io"
	"os"

	"github.com/clarktrimble/sabot"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger specifies a contextual, structured logger.
type Logger interface {
	Info(ctx context.Context, msg string, kv ...any)
	Error(ctx context.Context, msg string, err error, kv ...any)
}

// Config holds log output settings.
type Config struct {
	// Path is the log file; empty logs to stdout only.
	Path string `json:"path"`

	// MaxSizeMB and MaxBackups bound the rotating file.
	MaxSizeMB  int `json:"max_size_mb"`
	MaxBackups int `json:"max_backups"`
}

// New builds a structured logger writing JSON lines to stdout and, when a
// path is configured, to a size-rotated file. The returned closer flushes
// and closes the file sink.
func New(cfg Config) (Logger, func()) {
	writers := []io.Writer{os.Stdout}
	closer := func() {}

	if cfg.Path != "" {
		maxSize := cfg.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 10
		}
		maxBackups := cfg.MaxBackups
		if maxBackups <= 0 {
			maxBackups = 5
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
		}
		writers = append(writers, rotator)
		closer = func() { rotator.Close() }
	}

	lgr := &sabot.Sabot{Writer: io.MultiWriter(writers...), MaxLen: 999}
	return lgr, closer
}

// Nop is a Logger that discards everything; handy in tests.
type Nop struct{}

func (Nop) Info(ctx context.Context, msg string, kv ...any)             {}
func (Nop) Error(ctx context.Context, msg string, err error, kv ...any) {}
