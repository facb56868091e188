// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"log/slog"
	"testing"
	"time"
)

func TestSettingsFor(t *testing.T) {
	prod := SettingsFor("production")
	if prod.Console.Enabled {
		t.Error("production console should be disabled")
	}
	if got := prod.Topics[TopicSecurity].Retention; got != 180*24*time.Hour {
		t.Errorf("production security retention = %v, want 180d", got)
	}
	if got := prod.Topics[TopicRequests].Rotation; got != 200<<20 {
		t.Errorf("production requests rotation = %d", got)
	}
	if got := prod.Topics[TopicDatabase].Level; got != slog.LevelWarn {
		t.Errorf("production database level = %v", got)
	}

	// Security outlives every other topic in every profile.
	for _, env := range []string{"development", "production", "testing"} {
		s := SettingsFor(env)
		sec := s.Topics[TopicSecurity].Retention
		for topic, tc := range s.Topics {
			if topic != TopicSecurity && tc.Retention > sec {
				t.Errorf("%s: %s retention %v exceeds security %v", env, topic, tc.Retention, sec)
			}
		}
	}

	test := SettingsFor("testing")
	if len(test.Topics) != 3 {
		t.Errorf("testing topics = %d, want 3", len(test.Topics))
	}

	dev := SettingsFor("anything-else")
	if !dev.Console.Enabled || dev.Console.Format != FormatDetailed {
		t.Errorf("unknown env should use the development console: %+v", dev.Console)
	}
	if len(dev.Topics) != 8 {
		t.Errorf("development topics = %d, want 8", len(dev.Topics))
	}
}

func TestWithOverrides(t *testing.T) {
	s, err := SettingsFor("production").WithOverrides("/var/log/site", "debug", "true")
	if err != nil {
		t.Fatalf("WithOverrides: %v", err)
	}
	if s.Dir != "/var/log/site" || s.Level != slog.LevelDebug || !s.Console.Enabled {
		t.Errorf("overrides not applied: %+v", s)
	}

	if _, err := SettingsFor("production").WithOverrides("", "loud", ""); err == nil {
		t.Error("expected error for bad level")
	}
	if _, err := SettingsFor("production").WithOverrides("", "", "maybe"); err == nil {
		t.Error("expected error for bad console switch")
	}

	same, err := SettingsFor("testing").WithOverrides("", "", "")
	if err != nil || same.Dir != "logs" {
		t.Errorf("empty overrides changed settings: %+v, %v", same, err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"Warning": slog.LevelWarn,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}
