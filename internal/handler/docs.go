// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/olegiv/studio-go/internal/version"
)

// publicEndpoints is advertised by /docs, /api/ and the 404 body.
var publicEndpoints = []string{"/", "/health", "/docs"}

// APIInfo handles GET /api/.
func (h *Public) APIInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Studio API",
		"version":   version.APIVersion,
		"status":    "active",
		"timestamp": h.now().UTC().Format(time.RFC3339),
		"endpoints": map[string]string{
			"health": "/health",
			"docs":   "/docs",
		},
	})
}

// Docs handles GET /docs.
func (h *Public) Docs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"title":       "Studio API Documentation",
		"version":     version.APIVersion,
		"description": "Public endpoints of the studio website",
		"endpoints": map[string]string{
			"GET /":       "Home page",
			"GET /health": "Service health including database connectivity",
			"GET /docs":   "This document",
			"GET /api/":   "API information",
		},
		"authentication": "Not required for public endpoints",
		"content_type":   "application/json",
	})
}

// NotFound answers unknown routes with a JSON body listing the public endpoints.
func (h *Public) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"error":               "Endpoint not found",
		"message":             fmt.Sprintf("The requested path '%s' does not exist", r.URL.Path),
		"available_endpoints": publicEndpoints,
	})
}

// MethodNotAllowed answers a known route called with the wrong method.
func (h *Public) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSONError(w, http.StatusMethodNotAllowed, "Method "+r.Method+" not allowed")
}
