// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/studio-go/internal/middleware"
)

// Routes registers the public site on r. limiter may be nil.
func (h *Public) Routes(r chi.Router, limiter *middleware.RateLimiter) {
	r.Get("/", h.Home)
	r.Get("/about", h.About)
	r.Get("/services", h.Services)
	r.Get("/portfolio", h.Portfolio)
	r.Get("/pricing", h.Pricing)

	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware("POST"))
		}
		r.Get("/contact", h.ContactForm)
		r.Post("/contact", h.ContactSubmit)
	})

	r.Get("/robots.txt", h.Robots)
	r.Get("/sitemap.xml", h.Sitemap)
	r.Get("/health", h.Health)
	r.Get("/docs", h.Docs)
	r.Get("/api/", h.APIInfo)
	r.Get("/api", h.APIInfo)

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)
}
