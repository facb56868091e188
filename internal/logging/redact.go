// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// Redacted replaces sensitive values.
const Redacted = "[REDACTED]"

var sensitiveFields = []string{
	"password", "token", "secret", "key", "auth", "authorization", "cookie", "session", "csrf",
}

var droppedHeaders = map[string]bool{
	"authorization": true,
	"cookie":        true,
	"x-api-key":     true,
	"x-auth-token":  true,
}

// IsSensitive reports whether a field name looks like it carries a credential.
func IsSensitive(name string) bool {
	name = strings.ToLower(name)
	for _, f := range sensitiveFields {
		if strings.Contains(name, f) {
			return true
		}
	}
	return false
}

// replaceAttr is installed on every sink handler.
func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindGroup && IsSensitive(a.Key) {
		return slog.String(a.Key, Redacted)
	}
	return a
}

// RedactMap returns a copy of m with sensitive keys masked, recursing into nested maps.
func RedactMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch {
		case IsSensitive(k):
			out[k] = Redacted
		default:
			if nested, ok := v.(map[string]any); ok {
				out[k] = RedactMap(nested)
			} else {
				out[k] = v
			}
		}
	}
	return out
}

// RedactQuery flattens query parameters, masking sensitive ones.
func RedactQuery(values url.Values) map[string]any {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]any, len(values))
	for k, v := range values {
		if IsSensitive(k) {
			out[k] = Redacted
			continue
		}
		if len(v) == 1 {
			out[k] = v[0]
		} else {
			out[k] = v
		}
	}
	return out
}

// SafeHeaders returns request headers without credential-bearing ones.
func SafeHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if droppedHeaders[strings.ToLower(k)] {
			continue
		}
		out[k] = strings.Join(v, ", ")
	}
	return out
}
