package logging

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	// KeyError is the key used for errors in log lines.
	KeyError = "err"

	// KeyDal is the key used to identify the data access layer.
	KeyDal = "dal"

	// KeyComponent is the key used to identify the component logging.
	KeyComponent = "component"

	// KeyGuildID is the key used for guild IDs.
	KeyGuildID = "guild_id"

	// KeyChannelID is the key used for channel IDs.
	KeyChannelID = "channel_id"

	// KeyUserID is the key used for user IDs.
	KeyUserID = "user_id"

	// KeyCommand is the key used for command names.
	KeyCommand = "command"
)

// EnvLogLevel is the environment variable read for the log level.
const EnvLogLevel = `LOG_LEVEL`

// Name is the name of the application that is logging.
type Name string

// Config is the configuration for the logger.
type Config struct {
	appName string
	level   slog.Level
	out     io.Writer
}

// NewConfig creates a new logging configuration. The level is taken from the
// LOG_LEVEL environment variable and defaults to info.
func NewConfig(name Name) *Config {
	return &Config{
		appName: string(name),
		level:   parseLevel(os.Getenv(EnvLogLevel)),
		out:     os.Stdout,
	}
}

// WithWriter sets the writer the logger writes to.
func (c *Config) WithWriter(w io.Writer) *Config {
	c.out = w
	return c
}

// CommonLogger creates a JSON logger tagged with the application name and sets
// it as the default logger.
func CommonLogger(c *Config) (*slog.Logger, error) {
	if c == nil {
		return nil, errors.New("nil logging config")
	} else if c.appName == "" {
		return nil, errors.New("no application name provided")
	}

	h := slog.NewJSONHandler(c.out, &slog.HandlerOptions{
		AddSource: c.level == slog.LevelDebug,
		Level:     c.level,
	})

	l := slog.New(h).With(slog.String("app", c.appName))
	slog.SetDefault(l)
	return l, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
