// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"

	"filippo.io/csrf/gorilla"

	"github.com/olegiv/studio-go/internal/logging"
)

// CSRFConfig holds configuration for CSRF protection.
// filippo.io/csrf/gorilla checks Fetch metadata and Origin headers instead
// of cookies, so no token has to be threaded through forms.
type CSRFConfig struct {
	// AuthKey is a 32-byte key kept for API compatibility with gorilla/csrf.
	AuthKey []byte

	// Logger receives a security record for every rejected request.
	Logger *slog.Logger

	// TrustedOrigins are host[:port] values allowed to post cross-origin.
	TrustedOrigins []string
}

// DefaultCSRFConfig returns a CSRFConfig with sensible defaults.
func DefaultCSRFConfig(authKey []byte, logger *slog.Logger, isDev bool) CSRFConfig {
	cfg := CSRFConfig{AuthKey: authKey, Logger: logger}
	if isDev {
		cfg.TrustedOrigins = []string{"localhost:8080", "127.0.0.1:8080"}
	}
	return cfg
}

// CSRF returns a middleware that rejects cross-site state-changing requests
// with a JSON 403.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := []csrf.Option{
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reason := "unknown"
			if err := csrf.FailureReason(r); err != nil {
				reason = err.Error()
			}
			logging.SecurityEvent(r.Context(), logger, "CSRF_REJECTED", logging.Actor(r.Context()), logging.ClientIP(r),
				map[string]any{
					"reason":         reason,
					"method":         r.Method,
					"origin":         r.Header.Get("Origin"),
					"sec_fetch_site": r.Header.Get("Sec-Fetch-Site"),
				})
			WriteJSON(w, http.StatusForbidden, map[string]string{"error": "Forbidden - CSRF validation failed"})
		})),
	}
	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}

	return csrf.Protect(cfg.AuthKey, opts...)
}
