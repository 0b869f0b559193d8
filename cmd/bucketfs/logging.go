package main

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/sagarc03/bucketfs/config"
)

// setupLogging installs the process-wide logger. Everything goes to stderr
// because get streams object bodies on stdout.
func setupLogging(cfg *config.Config) {
	logger := newLogger(os.Stderr, cfg.Env, cfg.Log.Level)
	slog.SetDefault(logger)

	// The SDKs still log through the standard logger in places.
	log.SetFlags(0)
	log.SetOutput(slog.NewLogLogger(logger.Handler(), slog.LevelInfo).Writer())
}

// newLogger emits JSON in production and colored text elsewhere. An empty
// level means info in production and debug otherwise.
func newLogger(w io.Writer, env, level string) *slog.Logger {
	prod := env == "prod" || env == "production"
	if level == "" {
		level = "debug"
		if prod {
			level = "info"
		}
	}
	lvl := parseLevel(level)

	if !prod {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			AddSource:  true,
			TimeFormat: time.TimeOnly + ".000",
		}))
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String("ts", a.Value.Time().UTC().Format(time.RFC3339Nano))
			}
			return a
		},
	}))
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
