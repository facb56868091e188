// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Topic names.
const (
	TopicApp         = "app"
	TopicRequests    = "requests"
	TopicDatabase    = "database"
	TopicErrors      = "errors"
	TopicSecurity    = "security"
	TopicAdmin       = "admin"
	TopicFiles       = "files"
	TopicPerformance = "performance"
)

// Console output formats.
const (
	FormatDetailed = "detailed"
	FormatSimple   = "simple"
)

const (
	mb              = 1 << 20
	day             = 24 * time.Hour
	defaultRotation = 10 * mb
)

// TopicConfig is the policy of one topic sink.
type TopicConfig struct {
	Level     slog.Level
	Rotation  int64 // bytes written before the file is rotated
	Retention time.Duration
}

// ConsoleConfig controls the optional console sink.
type ConsoleConfig struct {
	Enabled bool
	Level   slog.Level
	Format  string
}

// Settings is the complete logging policy for one environment.
// Level is a floor applied before any topic level.
type Settings struct {
	Dir      string
	Level    slog.Level
	Compress bool
	Console  ConsoleConfig
	Topics   map[string]TopicConfig
}

// topicOrder fixes the order sinks are opened and reported in.
var topicOrder = []string{
	TopicApp, TopicRequests, TopicDatabase, TopicErrors,
	TopicSecurity, TopicAdmin, TopicFiles, TopicPerformance,
}

// SettingsFor returns the policy table for an environment name. Unknown
// names get the development policy.
func SettingsFor(env string) Settings {
	switch env {
	case "production":
		return Settings{
			Dir:      "logs",
			Level:    slog.LevelInfo,
			Compress: true,
			Console:  ConsoleConfig{Enabled: false, Level: slog.LevelError, Format: FormatSimple},
			Topics: map[string]TopicConfig{
				TopicApp:         {slog.LevelInfo, 100 * mb, 60 * day},
				TopicRequests:    {slog.LevelInfo, 200 * mb, 30 * day},
				TopicDatabase:    {slog.LevelWarn, 50 * mb, 14 * day},
				TopicErrors:      {slog.LevelError, defaultRotation, 90 * day},
				TopicSecurity:    {slog.LevelWarn, defaultRotation, 180 * day},
				TopicAdmin:       {slog.LevelInfo, defaultRotation, 90 * day},
				TopicFiles:       {slog.LevelInfo, defaultRotation, 60 * day},
				TopicPerformance: {slog.LevelWarn, defaultRotation, 30 * day},
			},
		}
	case "testing":
		return Settings{
			Dir:      "logs",
			Level:    slog.LevelWarn,
			Compress: true,
			Console:  ConsoleConfig{Enabled: false, Level: slog.LevelError, Format: FormatSimple},
			Topics: map[string]TopicConfig{
				TopicApp:      {slog.LevelError, 10 * mb, 1 * day},
				TopicErrors:   {slog.LevelError, defaultRotation, 1 * day},
				TopicSecurity: {slog.LevelWarn, defaultRotation, 3 * day},
			},
		}
	default:
		return Settings{
			Dir:      "logs",
			Level:    slog.LevelDebug,
			Compress: true,
			Console:  ConsoleConfig{Enabled: true, Level: slog.LevelDebug, Format: FormatDetailed},
			Topics: map[string]TopicConfig{
				TopicApp:         {slog.LevelDebug, 50 * mb, 7 * day},
				TopicRequests:    {slog.LevelDebug, 100 * mb, 3 * day},
				TopicDatabase:    {slog.LevelDebug, 50 * mb, 3 * day},
				TopicErrors:      {slog.LevelError, defaultRotation, 14 * day},
				TopicSecurity:    {slog.LevelInfo, defaultRotation, 60 * day},
				TopicAdmin:       {slog.LevelInfo, defaultRotation, 30 * day},
				TopicFiles:       {slog.LevelInfo, defaultRotation, 14 * day},
				TopicPerformance: {slog.LevelInfo, defaultRotation, 7 * day},
			},
		}
	}
}

// WithOverrides applies LOG_DIR, LOG_LEVEL and LOG_CONSOLE style overrides.
// Empty values leave the profile untouched.
func (s Settings) WithOverrides(dir, level, console string) (Settings, error) {
	if dir != "" {
		s.Dir = dir
	}
	if level != "" {
		lvl, err := ParseLevel(level)
		if err != nil {
			return s, err
		}
		s.Level = lvl
		s.Console.Level = lvl
	}
	if console != "" {
		on, err := strconv.ParseBool(console)
		if err != nil {
			return s, fmt.Errorf("invalid console switch %q: %w", console, err)
		}
		s.Console.Enabled = on
	}
	return s, nil
}

// ParseLevel accepts debug, info, warn, warning and error in any case.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "critical":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
