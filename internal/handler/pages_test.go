// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestHomeLimitsServicesAndFeatured(t *testing.T) {
	s := newTestSite(t, nil)
	for i := range 8 {
		addService(t, s.queries, fmt.Sprintf("Service %02d", i), i, true)
	}
	addService(t, s.queries, "Hidden service", 0, false)
	for i := range 4 {
		addProject(t, s.queries, fmt.Sprintf("Featured %d", i), true, true)
	}
	addProject(t, s.queries, "Plain project", false, true)

	rec := s.do(t, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()

	if got := strings.Count(body, "<h3>Service "); got != 6 {
		t.Errorf("home shows %d services, want 6", got)
	}
	if !strings.Contains(body, "Service 00") || strings.Contains(body, "Service 06") {
		t.Error("home should show the first six services by sort order")
	}
	if strings.Contains(body, "Hidden service") {
		t.Error("inactive service rendered")
	}
	if got := strings.Count(body, "<h3>Featured "); got != 3 {
		t.Errorf("home shows %d featured projects, want 3", got)
	}
	if strings.Contains(body, "Plain project") {
		t.Error("non-featured project on home page")
	}
}

func TestPublicPages(t *testing.T) {
	s := newTestSite(t, nil)
	addService(t, s.queries, "Accounting setup", 1, true)
	addService(t, s.queries, "Retired offer", 2, false)
	addProject(t, s.queries, "Warehouse bot", false, true)
	addProject(t, s.queries, "Old project", false, false)

	tests := []struct {
		path    string
		want    []string
		notWant []string
	}{
		{"/about", []string{"About Studio"}, nil},
		{"/services", []string{"Accounting setup", "₽150 000", "Fast delivery"}, []string{"Retired offer"}},
		{"/pricing", []string{"Accounting setup", "₽150 000"}, []string{"Retired offer"}},
		{"/portfolio", []string{"Warehouse bot", "<strong>fast</strong>"}, []string{"Old project"}},
		{"/contact", []string{`name="message"`}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, tt.path, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("Content-Type = %q", ct)
			}
			body := rec.Body.String()
			for _, w := range tt.want {
				if !strings.Contains(body, w) {
					t.Errorf("missing %q", w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(body, w) {
					t.Errorf("unexpected %q", w)
				}
			}
		})
	}
}
