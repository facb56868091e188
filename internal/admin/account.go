// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package admin

import (
	"net/http"

	"github.com/olegiv/studio-go/internal/auth"
	"github.com/olegiv/studio-go/internal/imaging"
	"github.com/olegiv/studio-go/internal/logging"
	"github.com/olegiv/studio-go/internal/middleware"
	"github.com/olegiv/studio-go/internal/model"
	"github.com/olegiv/studio-go/internal/session"
)

// APIServices handles GET /api/services.
func (a *Admin) APIServices(w http.ResponseWriter, r *http.Request) {
	services, err := a.queries.ListServices(r.Context())
	if err != nil {
		a.internalError(w, r, "failed to list services", err)
		return
	}
	items := model.ToMaps(services)
	for i, s := range services {
		items[i]["image_info"] = a.imageInfo(s.ImageURL)
	}
	middleware.WriteJSON(w, http.StatusOK, items)
}

// APIPortfolio handles GET /api/portfolio.
func (a *Admin) APIPortfolio(w http.ResponseWriter, r *http.Request) {
	projects, err := a.queries.ListPortfolio(r.Context())
	if err != nil {
		a.internalError(w, r, "failed to list projects", err)
		return
	}
	items := model.ToMaps(projects)
	for i, p := range projects {
		items[i]["image_info"] = a.imageInfo(p.ImageURL)
	}
	middleware.WriteJSON(w, http.StatusOK, items)
}

// imageInfo describes a stored upload, or nil for external or missing images.
func (a *Admin) imageInfo(url string) *imaging.ImageInfo {
	if a.uploader == nil || url == "" {
		return nil
	}
	info, ok := a.uploader.Info(url)
	if !ok {
		return nil
	}
	return &info
}

// Logout handles /logout: the session is dropped and the caller leaves
// the namespace. The secret itself stays valid.
func (a *Admin) Logout(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r.Context())
	if a.sessions != nil {
		if err := a.sessions.Destroy(r.Context()); err != nil {
			a.logger.WarnContext(r.Context(), "destroying session failed", "error", err)
		}
	}
	logging.SecurityEvent(r.Context(), a.logger, "LOGOUT", u.ID.String(), logging.ClientIP(r), nil)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RegenerateSecret handles POST /secret/regenerate. The caller is sent to
// the new namespace; the old one stops working immediately.
func (a *Admin) RegenerateSecret(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		writeJSONError(w, http.StatusForbidden, "Access denied")
		return
	}

	updated, err := a.users.RegenerateSecret(r.Context(), u.ID)
	if err != nil {
		a.internalError(w, r, "regenerating admin secret failed", err)
		return
	}
	if err := a.registry.Refresh(r.Context()); err != nil {
		a.internalError(w, r, "rebuilding admin namespaces failed", err)
		return
	}

	a.audit(r, actionUpdate, "user", u.ID.String(), map[string]any{
		"field":      "admin_url",
		"new_prefix": auth.MaskSecret(updated.SecretToken),
	})
	if a.sessions != nil {
		if err := a.sessions.RenewToken(r.Context()); err != nil {
			a.logger.WarnContext(r.Context(), "renewing session token failed", "error", err)
		}
		session.SetFlash(r, a.sessions, session.FlashSuccess,
			"Your admin URL has changed. Bookmark this page; the old address no longer works.")
	}
	http.Redirect(w, r, updated.AdminPath(), http.StatusSeeOther)
}
