// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLimiterCacheReusesLimiter(t *testing.T) {
	lc := newLimiterCache[string](1, 1)
	a := lc.get("10.0.0.1")
	if lc.get("10.0.0.1") != a {
		t.Error("same key should return the same limiter")
	}
	if lc.get("10.0.0.2") == a {
		t.Error("different keys should get different limiters")
	}
	if lc.size() != 2 {
		t.Errorf("size = %d, want 2", lc.size())
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(0.001, 2, slog.New(slog.NewTextHandler(io.Discard, nil)))
	h := rl.Middleware(http.MethodPost)(okHandler())

	post := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/contact", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := post("192.0.2.1:1000"); got != http.StatusOK {
		t.Fatalf("first = %d", got)
	}
	if got := post("192.0.2.1:1001"); got != http.StatusOK {
		t.Fatalf("second = %d", got)
	}
	if got := post("192.0.2.1:1002"); got != http.StatusTooManyRequests {
		t.Errorf("third = %d, want 429", got)
	}
	if got := post("192.0.2.2:1000"); got != http.StatusOK {
		t.Errorf("other client = %d, want 200", got)
	}

	// GET is not limited.
	for range 5 {
		req := httptest.NewRequest(http.MethodGet, "/contact", nil)
		req.RemoteAddr = "192.0.2.1:1003"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET = %d, want 200", rec.Code)
		}
	}
}

func TestRateLimiterMasksLoggedPath(t *testing.T) {
	var buf bytes.Buffer
	secret := strings.Repeat("k", 64)
	rl := NewRateLimiter(0.001, 1, slog.New(slog.NewJSONHandler(&buf, nil))).
		MaskPaths(func(p string) string { return strings.Replace(p, secret, "kkk...", 1) })
	h := rl.Middleware()(okHandler())

	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/"+secret+"/admin/services", nil)
		req.RemoteAddr = "192.0.2.9:1000"
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	out := buf.String()
	if !strings.Contains(out, "RATE_LIMIT_EXCEEDED") {
		t.Fatalf("no rate limit event: %s", out)
	}
	if strings.Contains(out, secret) {
		t.Errorf("full secret logged: %s", out)
	}
	if !strings.Contains(out, "/kkk.../admin/services") {
		t.Errorf("masked path missing: %s", out)
	}
}
