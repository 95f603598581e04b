// Package logging builds the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/talgya/auctionbot/internal/config"
)

// New returns a text logger writing to stdout and, when a file is
// configured, to a rotated log file as well.
func New(cfg config.LoggingConfig) *slog.Logger {
	return slog.New(slog.NewTextHandler(Writer(cfg, os.Stdout), &slog.HandlerOptions{
		Level: Level(cfg.Level),
	}))
}

// Writer tees out into a lumberjack rotated file when cfg.File is set.
// It falls back to out alone if the log directory cannot be created.
func Writer(cfg config.LoggingConfig, out io.Writer) io.Writer {
	if cfg.File == "" {
		return out
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return out
	}

	fileLogger := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	return io.MultiWriter(out, fileLogger)
}

// Level maps a configured level name to a slog level. Unknown names are info.
func Level(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
