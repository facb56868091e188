// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// captureHandler records every record it receives.
type captureHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func (h *captureHandler) messages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.records))
	for _, r := range h.records {
		out = append(out, r.Message)
	}
	return out
}

func (h *captureHandler) find(prefix string) (slog.Record, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.records {
		if strings.HasPrefix(r.Message, prefix) {
			return r, true
		}
	}
	return slog.Record{}, false
}

// testSettings returns a development-like policy rooted in a temp dir.
func testSettings(t *testing.T) Settings {
	t.Helper()
	s := SettingsFor("development")
	s.Dir = filepath.Join(t.TempDir(), "logs")
	s.Console.Enabled = false
	return s
}

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p := New(testSettings(t), nil)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func readTopic(t *testing.T, p *Pipeline, topic string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(p.Settings().Dir, topic+".log"))
	if err != nil {
		t.Fatalf("reading %s log: %v", topic, err)
	}
	return string(b)
}

func attrValue(r slog.Record, key string) (slog.Value, bool) {
	var (
		v     slog.Value
		found bool
	)
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			v, found = a.Value, true
			return false
		}
		return true
	})
	return v, found
}
