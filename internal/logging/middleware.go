// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mileusna/useragent"
)

// RequestIDHeader carries the correlation id back to the client.
const RequestIDHeader = "X-Request-ID"

var skippedPrefixes = []string{"/static/", "/favicon.ico", "/robots.txt", "/sitemap.xml"}

// CountryLookup resolves a client IP to an ISO country code.
type CountryLookup interface {
	LookupCountry(ip string) string
}

// MiddlewareConfig configures Middleware.
type MiddlewareConfig struct {
	Logger        *slog.Logger
	SlowThreshold time.Duration
	// MaskPath rewrites paths before they are logged (admin secrets).
	MaskPath func(string) string
	// Countries is optional.
	Countries CountryLookup
}

// statusWriter wraps http.ResponseWriter to capture the response status code.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

// WriteHeader captures the status code and delegates to the embedded writer.
func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	n, err := sw.ResponseWriter.Write(b)
	sw.bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// NewRequestID returns a short correlation id.
func NewRequestID() string {
	return uuid.NewString()[:8]
}

// Middleware stamps every request with a correlation id, logs it on the
// way in and out, and emits a performance record for slow requests.
// Static asset paths pass through untouched.
func Middleware(cfg MiddlewareConfig) func(http.Handler) http.Handler {
	if cfg.SlowThreshold <= 0 {
		cfg.SlowThreshold = SlowRequestThreshold
	}
	mask := cfg.MaskPath
	if mask == nil {
		mask = func(p string) string { return p }
	}
	logger := cfg.Logger.With(LoggerKey, "http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range skippedPrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			start := time.Now()
			id := NewRequestID()
			ctx := WithRequestID(r.Context(), id)
			r = r.WithContext(ctx)
			w.Header().Set(RequestIDHeader, id)

			path := mask(r.URL.Path)
			addr := ClientIP(r)

			if logger.Enabled(ctx, slog.LevelDebug) {
				ua := useragent.Parse(r.UserAgent())
				args := []any{
					"method", r.Method,
					"path", path,
					"remote_addr", addr,
					"browser", ua.Name,
					"os", ua.OS,
					"device", deviceKind(ua),
					"bot", ua.Bot,
					"headers", SafeHeaders(r.Header),
				}
				if q := RedactQuery(r.URL.Query()); q != nil {
					args = append(args, "query", q)
				}
				if cfg.Countries != nil {
					if c := cfg.Countries.LookupCountry(addr); c != "" {
						args = append(args, "country", c)
					}
				}
				logger.DebugContext(ctx, fmt.Sprintf("REQUEST %s %s from %s", r.Method, path, addr), args...)
			}

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			d := time.Since(start)

			logger.Log(ctx, StatusLevel(sw.status),
				fmt.Sprintf("RESPONSE %d for %s %s (%ss)", sw.status, r.Method, path, seconds(d)),
				"method", r.Method,
				"path", path,
				"status", sw.status,
				"bytes", sw.bytes,
				"duration_ms", d.Milliseconds(),
			)

			if d > cfg.SlowThreshold {
				Performance(ctx, logger, fmt.Sprintf("request %s %s", r.Method, path), d,
					map[string]any{"status": sw.status, "slow": true})
			}
		})
	}
}

func deviceKind(ua useragent.UserAgent) string {
	switch {
	case ua.Bot:
		return "bot"
	case ua.Tablet:
		return "tablet"
	case ua.Mobile:
		return "mobile"
	case ua.Desktop:
		return "desktop"
	default:
		return "unknown"
	}
}

// ClientIP returns the request's remote address without its port.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
