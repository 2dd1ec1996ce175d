package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxLogSizeMB  = 5
	maxLogBackups = 3
	maxLogAgeDays = 28
	debugEnv      = "LAZYPORTLIST_DEBUG"
	stderrEnv     = "LAZYPORTLIST_LOG_STDERR"
	logFileEnv    = "LAZYPORTLIST_LOG_FILE"
)

var logFile *lumberjack.Logger

// Init installs the default slog logger. levelOverride wins over
// LAZYPORTLIST_DEBUG; an empty override keeps the environment's choice.
func Init(levelOverride string) error {
	level := slog.LevelInfo
	if os.Getenv(debugEnv) == "1" {
		level = slog.LevelDebug
	}
	if levelOverride != "" {
		parsed, err := ParseLevel(levelOverride)
		if err != nil {
			return err
		}
		level = parsed
	}

	writer := io.Writer(os.Stderr)
	if os.Getenv(stderrEnv) != "1" {
		if path := resolveLogPath(); path != "" {
			if rotating, err := openLogFile(path); err == nil {
				logFile = rotating
				writer = rotating
			}
		}
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
	return nil
}

// Close flushes and releases the log file, if one is open.
func Close() error {
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

func ParseLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "":
		return slog.LevelInfo, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %q (use debug|info|warn|error)", value)
	}
}

func resolveLogPath() string {
	if path := os.Getenv(logFileEnv); path != "" {
		return path
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "lazyportlist", "lazyportlist.log")
}

func openLogFile(path string) (*lumberjack.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
	}, nil
}
