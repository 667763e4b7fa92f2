// Package logger builds the JSON slog loggers used by both binaries.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/httplog/v3"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	App     string
	Version string
	Env     string
	Level   string
	// File, when set, also receives every record through a size-rotated writer
	File string
	// ECS renames attributes to the Elastic Common Schema used by the request logger
	ECS    bool
	Output io.Writer
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns the logger and a close func for the rotated file, if any.
func New(opts Options) (*slog.Logger, func() error) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	closeFn := func() error { return nil }
	if opts.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		out = io.MultiWriter(out, rotated)
		closeFn = rotated.Close
	}

	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	if opts.ECS {
		handlerOpts.ReplaceAttr = httplog.SchemaECS.Concise(false).ReplaceAttr
	}

	logger := slog.New(slog.NewJSONHandler(out, handlerOpts))
	if opts.App != "" {
		logger = logger.With(
			slog.String("app", opts.App),
			slog.String("version", opts.Version),
			slog.String("env", opts.Env),
		)
	}
	return logger, closeFn
}
