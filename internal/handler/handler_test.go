// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/studio-go/internal/metrics"
	"github.com/olegiv/studio-go/internal/middleware"
	"github.com/olegiv/studio-go/internal/model"
	"github.com/olegiv/studio-go/internal/render"
	"github.com/olegiv/studio-go/internal/store"
	tu "github.com/olegiv/studio-go/internal/testutil"
	"github.com/olegiv/studio-go/web"
)

type testSite struct {
	handler *Public
	queries *store.Queries
	metrics *metrics.Metrics
	router  chi.Router
}

func newTestSite(t *testing.T, limiter *middleware.RateLimiter) *testSite {
	t.Helper()

	q := store.New(tu.TestDB(t))
	renderer, err := render.New(render.Config{TemplatesFS: web.TemplateFiles(), SiteName: "Studio"})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	m := metrics.New()
	h := NewPublic(q, renderer, tu.DiscardLogger(), m)
	h.now = func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) }

	r := chi.NewRouter()
	h.Routes(r, limiter)
	return &testSite{handler: h, queries: q, metrics: m, router: r}
}

func (s *testSite) do(t *testing.T, method, target string, body url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return m
}

func addService(t *testing.T, q *store.Queries, title string, order int, active bool) model.Service {
	t.Helper()
	s := model.NewService(model.NewEntity(time.Now()))
	s.Title = title
	s.SortOrder = order
	s.IsActive = active
	s.PriceFrom = sql.NullFloat64{Float64: 150000, Valid: true}
	s.SetFeatures([]string{"Fast delivery"})
	if err := q.CreateService(context.Background(), s); err != nil {
		t.Fatalf("CreateService: %v", err)
	}
	return s
}

func addProject(t *testing.T, q *store.Queries, title string, featured, active bool) model.Portfolio {
	t.Helper()
	p := model.NewPortfolio(model.NewEntity(time.Now()))
	p.Title = title
	p.IsFeatured = featured
	p.IsActive = active
	p.Description = "Built **fast**"
	if err := q.CreatePortfolio(context.Background(), p); err != nil {
		t.Fatalf("CreatePortfolio: %v", err)
	}
	return p
}
