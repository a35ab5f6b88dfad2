package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Setup configures the global slog logger.
// levelStr: "debug", "info", "warn", "error"
// logPath: optional log file; empty means console only
func Setup(levelStr string, logPath string) error {
	// 1. Parse the level
	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// 2. Pick the output writer
	var writer io.Writer = os.Stdout

	if logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
			return err
		}

		// Append mode so repeated runs share one file
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}

		// Mirror everything to both the console and the file
		writer = io.MultiWriter(os.Stdout, file)
	}

	// 3. Handler options
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug, // file:line only in debug runs
	}

	// 4. Text handler reads better for an interactive tool
	logger := slog.New(slog.NewTextHandler(writer, opts))

	// 5. Install as the process-wide default
	slog.SetDefault(logger)

	return nil
}
