// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/olegiv/studio-go/internal/logging"
)

// Recoverer turns a panic into a logged error with its stack trace and a
// generic JSON 500. maskPath, when set, rewrites the logged path.
func Recoverer(logger *slog.Logger, maskPath func(string) string) func(http.Handler) http.Handler {
	mask := pathMask(maskPath)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.ErrorContext(r.Context(), "panic serving request",
					"error", fmt.Sprint(rec),
					"method", r.Method,
					"path", mask(r.URL.Path),
					"remote_addr", logging.ClientIP(r),
					"stack", string(debug.Stack()),
				)
				WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pathMask(fn func(string) string) func(string) string {
	if fn == nil {
		return func(p string) string { return p }
	}
	return fn
}
