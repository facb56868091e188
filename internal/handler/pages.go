// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/studio-go/internal/model"
	"github.com/olegiv/studio-go/internal/render"
)

// HomeData is rendered by pages/index.
type HomeData struct {
	Services []model.Service
	Featured []model.Portfolio
}

// Home handles GET /.
func (h *Public) Home(w http.ResponseWriter, r *http.Request) {
	services, err := h.queries.ListActiveServices(r.Context(), homeServicesLimit)
	if err != nil {
		h.logAndInternalError(w, r, "failed to list services", err)
		return
	}
	featured, err := h.queries.ListFeaturedPortfolio(r.Context(), homeFeaturedLimit)
	if err != nil {
		h.logAndInternalError(w, r, "failed to list featured projects", err)
		return
	}
	h.render(w, r, "pages/index", render.TemplateData{
		Data: HomeData{Services: services, Featured: featured},
	})
}

// About handles GET /about.
func (h *Public) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/about", render.TemplateData{Title: "About"})
}

// Services handles GET /services.
func (h *Public) Services(w http.ResponseWriter, r *http.Request) {
	h.serviceList(w, r, "pages/services", "Services")
}

// Pricing handles GET /pricing.
func (h *Public) Pricing(w http.ResponseWriter, r *http.Request) {
	h.serviceList(w, r, "pages/pricing", "Pricing")
}

func (h *Public) serviceList(w http.ResponseWriter, r *http.Request, tmpl, title string) {
	services, err := h.queries.ListActiveServices(r.Context(), 0)
	if err != nil {
		h.logAndInternalError(w, r, "failed to list services", err)
		return
	}
	h.render(w, r, tmpl, render.TemplateData{Title: title, Data: services})
}

// Portfolio handles GET /portfolio.
func (h *Public) Portfolio(w http.ResponseWriter, r *http.Request) {
	projects, err := h.queries.ListActivePortfolio(r.Context(), 0)
	if err != nil {
		h.logAndInternalError(w, r, "failed to list projects", err)
		return
	}
	h.render(w, r, "pages/portfolio", render.TemplateData{Title: "Portfolio", Data: projects})
}

func (h *Public) render(w http.ResponseWriter, r *http.Request, name string, data render.TemplateData) {
	if err := h.renderer.Render(w, r, http.StatusOK, name, data); err != nil {
		h.logAndInternalError(w, r, "failed to render page", err)
	}
}

// logAndInternalError logs err and writes a generic JSON 500.
func (h *Public) logAndInternalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg, "error", err, "path", r.URL.Path)
	writeJSONError(w, http.StatusInternalServerError, "Internal server error")
}
