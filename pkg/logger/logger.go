package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
)

var defaultLogger *slog.Logger

// Options tunes the handler built by Setup. Zero values fall back to the
// development defaults.
type Options struct {
	Env          string
	Level        string
	Format       string
	File         string
	RotationTime time.Duration
	MaxAge       time.Duration
}

func Init(env string) {
	if _, err := Setup(Options{Env: env}); err != nil {
		// Setup only fails on file output, which Init never asks for.
		panic(err)
	}
}

// Setup builds the process logger and installs it as the slog default.
func Setup(opts Options) (*slog.Logger, error) {
	var out io.Writer = os.Stdout
	if opts.File != "" {
		rl, err := newRotatingWriter(opts)
		if err != nil {
			return nil, err
		}
		out = io.MultiWriter(os.Stdout, rl)
	}

	handlerOpts := &slog.HandlerOptions{Level: parseLevel(opts)}

	var handler slog.Handler
	if opts.Format == "json" || (opts.Format == "" && opts.Env == "production") {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
	return defaultLogger, nil
}

func newRotatingWriter(opts Options) (io.Writer, error) {
	rotation := opts.RotationTime
	if rotation <= 0 {
		rotation = 24 * time.Hour
	}
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	return rotatelogs.New(
		opts.File+".%Y%m%d",
		rotatelogs.WithLinkName(opts.File),
		rotatelogs.WithRotationTime(rotation),
		rotatelogs.WithMaxAge(maxAge),
	)
}

func parseLevel(opts Options) slog.Level {
	switch strings.ToLower(opts.Level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if opts.Env == "production" {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		// lazy initialize a development logger to avoid nil pointer panics
		Init("development")
	}
	return defaultLogger
}

// Discard returns a logger that drops every record. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}
