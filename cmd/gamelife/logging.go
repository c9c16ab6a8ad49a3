package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gamelife/internal/config"
)

const (
	logLevelEnvKey  = "GAMELIFE_LOG_LEVEL"
	logFormatEnvKey = "GAMELIFE_LOG_FORMAT"
)

// levelChoice is the raw log level that won precedence and where it came from.
type levelChoice struct {
	raw    string
	source string
}

// chooseLogLevel applies flag > env > config precedence.
func chooseLogLevel(flagLevel, envLevel, configLevel string) levelChoice {
	for _, c := range []levelChoice{
		{raw: flagLevel, source: "--log-level"},
		{raw: envLevel, source: logLevelEnvKey},
		{raw: configLevel, source: "log_level"},
	} {
		if strings.TrimSpace(c.raw) != "" {
			return c
		}
	}
	return levelChoice{source: "default"}
}

// setupLogging installs the default slog logger writing to w. A bad
// --log-level is an error. A bad env or config level falls back to the
// default and is reported through the returned warning.
func setupLogging(w io.Writer, flagLevel, configLevel string) (string, error) {
	choice := chooseLogLevel(flagLevel, os.Getenv(logLevelEnvKey), configLevel)

	var warning string
	level, err := parseLogLevel(choice.raw)
	if err != nil {
		if choice.source == "--log-level" {
			return "", fmt.Errorf("invalid --log-level %q", flagLevel)
		}
		level, _ = parseLogLevel("")
		warning = fmt.Sprintf("warning: invalid %s=%q; defaulting to %s", choice.source, choice.raw, config.DefaultLogLevel)
	}

	slog.SetDefault(newLogger(w, level, os.Getenv(logFormatEnvKey)))
	return warning, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		value = config.DefaultLogLevel
	}

	switch value {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	if numeric, err := strconv.Atoi(value); err == nil {
		return slog.Level(numeric), nil
	}
	return slog.LevelWarn, fmt.Errorf("invalid log level %q", raw)
}

// newLogger writes text records, or JSON when format is "json".
func newLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
