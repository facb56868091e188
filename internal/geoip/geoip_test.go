// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package geoip

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDisabledResolver(t *testing.T) {
	r, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if r.Enabled() {
		t.Error("resolver without a database should be disabled")
	}

	tests := map[string]string{
		"127.0.0.1":   Local,
		"::1":         Local,
		"10.1.2.3":    Local,
		"192.168.1.1": Local,
		"fd00::1":     Local,
		"8.8.8.8":     "",
		"not-an-ip":   "",
	}
	for ip, want := range tests {
		if got := r.LookupCountry(ip); got != want {
			t.Errorf("LookupCountry(%q) = %q, want %q", ip, got, want)
		}
	}
	if err := r.Reload(); err != nil {
		t.Errorf("Reload: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestOpenMissingDatabase(t *testing.T) {
	r, err := Open(filepath.Join(t.TempDir(), "missing.mmdb"))
	if err == nil {
		t.Fatal("expected error for missing database")
	}
	if r == nil || r.Enabled() {
		t.Error("a failed open should still return a disabled resolver")
	}
}

func TestOpenCorruptDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.mmdb")
	if err := os.WriteFile(path, []byte("not a maxmind file"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Fatal("expected error for corrupt database")
	}
}
