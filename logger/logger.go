package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	globalLogger = slog.Default()
	once         sync.Once
)

type Config struct {
	Level   string   `json:"level" yaml:"level"`     // debug/info/warn/error
	Format  string   `json:"format" yaml:"format"`   // text/json
	Outputs []string `json:"outputs" yaml:"outputs"` // stdout/file path
}

func Init(cfg Config) error {
	var err error
	once.Do(func() {
		var writers []io.Writer
		for _, output := range cfg.Outputs {
			switch output {
			case "", "stdout":
				writers = append(writers, os.Stdout)
			default:
				if mkErr := os.MkdirAll(filepath.Dir(output), 0755); mkErr != nil {
					err = fmt.Errorf("failed to create log directory: %w", mkErr)
					return
				}
				file, openErr := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
				if openErr != nil {
					err = fmt.Errorf("failed to open log file: %w", openErr)
					return
				}
				writers = append(writers, file)
			}
		}
		if len(writers) == 0 {
			writers = append(writers, os.Stdout)
		}
		multiWriter := io.MultiWriter(writers...)

		opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
		var handler slog.Handler
		if cfg.Format == "json" {
			handler = slog.NewJSONHandler(multiWriter, opts)
		} else {
			handler = slog.NewTextHandler(multiWriter, opts)
		}
		globalLogger = slog.New(handler)
	})
	return err
}

func parseLevel(level string) slog.Level {
	switch level {
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

func Debug(msg string, args ...interface{}) {
	globalLogger.Debug(msg, args...)
}

func Info(msg string, args ...interface{}) {
	globalLogger.Info(msg, args...)
}

func Warn(msg string, args ...interface{}) {
	globalLogger.Warn(msg, args...)
}

func Error(msg string, args ...interface{}) {
	globalLogger.Error(msg, args...)
}

func Logger() *slog.Logger {
	return globalLogger
}
