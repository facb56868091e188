// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/{secret}/admin/services", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/abcdef/admin/services", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/{secret}/admin/services", "403")); got != 1 {
		t.Errorf("pattern counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Errorf("unmatched counter = %v, want 1", got)
	}
}

func TestHandlerExposesRegisteredMetrics(t *testing.T) {
	m := New()
	m.AdminActions.WithLabelValues("CREATE", "service").Inc()
	m.GaugeFunc("admin_namespaces", "Registered admin namespaces.", func() float64 { return 2 })
	m.CounterFunc("log_sink_failures_total", "Failed log sink writes.", func() float64 { return 0 })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{
		`studio_admin_actions_total{action="CREATE",resource="service"} 1`,
		"studio_admin_namespaces 2",
		"studio_log_sink_failures_total 0",
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

func TestNewIsIndependent(t *testing.T) {
	// Two instances must not collide in a shared registry.
	a, b := New(), New()
	a.ContactMessages.WithLabelValues("accepted").Inc()
	if got := testutil.ToFloat64(b.ContactMessages.WithLabelValues("accepted")); got != 0 {
		t.Errorf("second instance saw %v", got)
	}
}
