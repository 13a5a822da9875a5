// Package logger builds the *slog.Logger shared by the CLI and the generation
// pipeline.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

type config struct {
	level   slog.Level
	json    bool
	writers []io.Writer
	prefix  string
}

// New returns a charmbracelet/log backed logger on stderr unless options say
// otherwise.
func New(opts ...Option) *slog.Logger {
	cfg := &config{
		level:   slog.LevelWarn,
		writers: []io.Writer{os.Stderr},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	writer := cfg.writers[0]
	if len(cfg.writers) > 1 {
		writer = io.MultiWriter(cfg.writers...)
	}

	if cfg.json {
		return slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: cfg.level}))
	}

	handler := charmlog.NewWithOptions(writer, charmlog.Options{
		Level:           charmlog.Level(cfg.level),
		Prefix:          cfg.prefix,
		ReportTimestamp: cfg.level <= slog.LevelDebug,
	})
	return slog.New(handler)
}

func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel accepts slog level names (debug, info, warn, error) in any case,
// plus "trace" as an alias for debug.
func ParseLevel(value string) (slog.Level, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "trace" {
		return slog.LevelDebug, nil
	}

	var level slog.Level
	if unmarshalError := level.UnmarshalText([]byte(normalized)); unmarshalError != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", value, unmarshalError)
	}
	return level, nil
}
