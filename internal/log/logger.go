// Package log implements structured logging using slog.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"firestige.xyz/pcapreport/internal/config"
)

var (
	mu      sync.Mutex
	closers []io.Closer
	// consoleOnly replaces the default logger once the file outputs are closed.
	consoleOnly slog.Handler
)

// Init initializes the global logger based on configuration.
// Records go to stderr so stdout stays free for report listings.
func Init(cfg config.LogConfig) error {
	return InitWithWriter(cfg, os.Stderr)
}

// InitWithWriter is Init with an explicit console writer.
func InitWithWriter(cfg config.LogConfig, console io.Writer) error {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	writers := []io.Writer{console}
	var opened []io.Closer

	// File output
	if cfg.Outputs.File.Enabled {
		w, err := createFileWriter(cfg.Outputs.File)
		if err != nil {
			return fmt.Errorf("failed to create file output: %w", err)
		}
		writers = append(writers, w)
		opened = append(opened, w)
	}

	multiWriter := io.MultiWriter(writers...)

	var handler, fallback slog.Handler
	opts := &slog.HandlerOptions{
		Level: level,
	}

	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(multiWriter, opts)
		fallback = slog.NewJSONHandler(console, opts)
	case "text":
		handler = slog.NewTextHandler(multiWriter, opts)
		fallback = slog.NewTextHandler(console, opts)
	default:
		for _, c := range opened {
			c.Close()
		}
		return fmt.Errorf("unsupported log format: %s (must be json or text)", cfg.Format)
	}

	// Release writers of a previous Init before swapping the default logger.
	Close()

	mu.Lock()
	closers = opened
	consoleOnly = fallback
	mu.Unlock()

	slog.SetDefault(slog.New(handler))
	return nil
}

// Close releases file outputs opened by Init. The default logger keeps writing to
// the console only.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if len(closers) > 0 && consoleOnly != nil {
		slog.SetDefault(slog.New(consoleOnly))
	}
	var firstErr error
	for _, c := range closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	closers = nil
	return firstErr
}

// parseLevel converts string level to slog.Level.
func parseLevel(levelStr string) (slog.Level, error) {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown level: %s", levelStr)
	}
}

// createFileWriter creates a lumberjack file writer for log rotation.
func createFileWriter(fc config.FileOutputConfig) (*lumberjack.Logger, error) {
	if fc.Path == "" {
		return nil, fmt.Errorf("file output requires 'path' field")
	}
	return &lumberjack.Logger{
		Filename:   fc.Path,
		MaxSize:    fc.Rotation.MaxSizeMB,
		MaxBackups: fc.Rotation.MaxBackups,
		MaxAge:     fc.Rotation.MaxAgeDays,
		Compress:   fc.Rotation.Compress,
	}, nil
}
