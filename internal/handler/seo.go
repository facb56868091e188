// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"

	"github.com/olegiv/studio-go/internal/model"
	"github.com/olegiv/studio-go/internal/seo"
)

// SetIndexing controls whether robots.txt admits crawlers. Only
// production sites should be indexed.
func (h *Public) SetIndexing(on bool) {
	h.indexable = on
}

// Robots handles GET /robots.txt.
func (h *Public) Robots(w http.ResponseWriter, r *http.Request) {
	body := seo.BuildRobots(seo.RobotsConfig{
		SiteURL:     siteURL(r),
		DisallowAll: !h.indexable,
	})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write([]byte(body))
}

// Sitemap handles GET /sitemap.xml.
func (h *Public) Sitemap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	services, err := h.queries.ListActiveServices(ctx, 0)
	if err != nil {
		h.logAndInternalError(w, r, "failed to list services", err)
		return
	}
	projects, err := h.queries.ListActivePortfolio(ctx, 0)
	if err != nil {
		h.logAndInternalError(w, r, "failed to list portfolio", err)
		return
	}

	servicesMod := newest(services, func(s model.Service) time.Time { return s.UpdatedAt })
	portfolioMod := newest(projects, func(p model.Portfolio) time.Time { return p.UpdatedAt })
	homeMod := servicesMod
	if portfolioMod.After(homeMod) {
		homeMod = portfolioMod
	}

	b := seo.NewSitemapBuilder(siteURL(r))
	b.Add(seo.Page{Path: "/", UpdatedAt: homeMod, ChangeFreq: seo.ChangeFreqWeekly, Priority: "1.0"})
	b.Add(seo.Page{Path: "/services", UpdatedAt: servicesMod, ChangeFreq: seo.ChangeFreqWeekly, Priority: "0.9"})
	b.Add(seo.Page{Path: "/portfolio", UpdatedAt: portfolioMod, ChangeFreq: seo.ChangeFreqWeekly, Priority: "0.9"})
	b.Add(seo.Page{Path: "/pricing", UpdatedAt: servicesMod, ChangeFreq: seo.ChangeFreqMonthly, Priority: "0.7"})
	b.Add(seo.Page{Path: "/about", ChangeFreq: seo.ChangeFreqMonthly, Priority: "0.5"})
	b.Add(seo.Page{Path: "/contact", ChangeFreq: seo.ChangeFreqMonthly, Priority: "0.5"})

	out, err := b.Build()
	if err != nil {
		h.logAndInternalError(w, r, "failed to build sitemap", err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(out)
}

func newest[T any](items []T, at func(T) time.Time) time.Time {
	var latest time.Time
	for _, it := range items {
		if t := at(it); t.After(latest) {
			latest = t
		}
	}
	return latest
}

// siteURL derives the public origin from the request.
func siteURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
