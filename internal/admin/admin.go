// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package admin

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/studio-go/internal/auth"
	"github.com/olegiv/studio-go/internal/imaging"
	"github.com/olegiv/studio-go/internal/logging"
	"github.com/olegiv/studio-go/internal/metrics"
	"github.com/olegiv/studio-go/internal/middleware"
	"github.com/olegiv/studio-go/internal/render"
	"github.com/olegiv/studio-go/internal/service"
	"github.com/olegiv/studio-go/internal/session"
	"github.com/olegiv/studio-go/internal/store"
)

// Resource names used in audit records, metrics and upload directories.
const (
	resourceService   = "service"
	resourcePortfolio = "portfolio"

	uploadServices  = "services"
	uploadPortfolio = "portfolio"
)

// Audit actions.
const (
	actionCreate = "CREATE"
	actionUpdate = "UPDATE"
	actionDelete = "DELETE"
)

// Admin holds the panel's handlers. One instance is shared by every
// namespace; the guard puts the caller into the request context.
type Admin struct {
	queries  *store.Queries
	sessions *scs.SessionManager
	renderer *render.Renderer
	uploader *imaging.Uploader
	users    *service.Users
	metrics  *metrics.Metrics
	logger   *slog.Logger
	registry *Registry
	now      func() time.Time
}

// routes builds the router of one namespace.
func (a *Admin) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NoStore)

	r.Get("/", a.Dashboard)

	r.Route("/services", func(r chi.Router) {
		r.Get("/", a.ListServices)
		r.Get("/new", a.NewService)
		r.Post("/new", a.CreateService)
		r.Get("/{id}/edit", a.EditService)
		r.Post("/{id}/edit", a.UpdateService)
		r.Post("/{id}/delete", a.DeleteService)
	})

	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/", a.ListPortfolio)
		r.Get("/new", a.NewPortfolio)
		r.Post("/new", a.CreatePortfolio)
		r.Get("/{id}/edit", a.EditPortfolio)
		r.Post("/{id}/edit", a.UpdatePortfolio)
		r.Post("/{id}/delete", a.DeletePortfolio)
	})

	r.Get("/api/services", a.APIServices)
	r.Get("/api/portfolio", a.APIPortfolio)

	r.Get("/logout", a.Logout)
	r.Post("/logout", a.Logout)
	r.Post("/secret/regenerate", a.RegenerateSecret)

	if a.metrics != nil {
		r.Handle("/metrics", a.metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method "+r.Method+" not allowed")
	})
	return r
}

// deny refuses a request with 403 and records a security event that only
// carries a prefix of the attempted secret.
func (a *Admin) deny(w http.ResponseWriter, r *http.Request, secret, reason string) {
	logging.SecurityEvent(r.Context(), a.logger, "ADMIN_ACCESS_DENIED", "", logging.ClientIP(r),
		map[string]any{"prefix": auth.MaskSecret(secret), "reason": reason})
	a.countAccess("denied")
	writeJSONError(w, http.StatusForbidden, "Access denied")
}

func (a *Admin) countAccess(result string) {
	if a.metrics != nil {
		a.metrics.AdminAccess.WithLabelValues(result).Inc()
	}
}

// audit records a mutation in the admin log and the action counter.
func (a *Admin) audit(r *http.Request, action, resource, id string, details map[string]any) {
	userID := ""
	if u, ok := CurrentUser(r.Context()); ok {
		userID = u.ID.String()
	}
	logging.AdminAction(r.Context(), a.logger, action, resource, id, userID, details)
	if a.metrics != nil {
		a.metrics.AdminActions.WithLabelValues(action, resource).Inc()
	}
}

// page renders an admin template with the namespace data filled in.
func (a *Admin) page(w http.ResponseWriter, r *http.Request, status int, name string, data render.TemplateData) {
	data.AdminBase = basePath(r.Context())
	if u, ok := CurrentUser(r.Context()); ok {
		data.User = &u
	}
	if err := a.renderer.Render(w, r, status, name, data); err != nil {
		a.internalError(w, r, "failed to render admin page", err)
	}
}

func (a *Admin) flash(r *http.Request, kind, msg string) {
	if a.sessions != nil {
		session.SetFlash(r, a.sessions, kind, msg)
	}
}

// redirect sends the client to a path inside its namespace.
func (a *Admin) redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, basePath(r.Context())+path, http.StatusSeeOther)
}

// internalError logs err and writes a generic JSON 500.
func (a *Admin) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	a.logger.ErrorContext(r.Context(), msg, "error", err, "path", MaskPath(r.URL.Path))
	writeJSONError(w, http.StatusInternalServerError, "Internal server error")
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	middleware.WriteJSON(w, status, map[string]string{"error": message})
}
