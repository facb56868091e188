// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"time"
)

// healthTimeout bounds the database probe.
const healthTimeout = 3 * time.Second

// HealthStatus is the /health response body.
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Uptime    string            `json:"uptime"`
}

// Health handles GET /health. It answers 503 when the database does not
// respond to a trivial query.
func (h *Public) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status := HealthStatus{
		Status:    "healthy",
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Services:  map[string]string{"database": "connected", "api": "active"},
		Uptime:    "OK",
	}
	code := http.StatusOK

	if err := h.queries.Ping(ctx); err != nil {
		h.logger.ErrorContext(r.Context(), "health check failed", "error", err)
		status.Status = "unhealthy"
		status.Services["database"] = "disconnected"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, status)
}

// Uptime reports how long the handlers have been serving.
func (h *Public) Uptime() time.Duration {
	return time.Since(h.startTime)
}
