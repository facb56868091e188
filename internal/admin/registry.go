// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package admin serves the content management panel. Every active
// superuser gets a private namespace at /{secret}/admin, where the secret
// is the account's admin token and the only credential.
package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/olegiv/studio-go/internal/auth"
	"github.com/olegiv/studio-go/internal/imaging"
	"github.com/olegiv/studio-go/internal/logging"
	"github.com/olegiv/studio-go/internal/metrics"
	"github.com/olegiv/studio-go/internal/middleware"
	"github.com/olegiv/studio-go/internal/model"
	"github.com/olegiv/studio-go/internal/render"
	"github.com/olegiv/studio-go/internal/service"
	"github.com/olegiv/studio-go/internal/session"
	"github.com/olegiv/studio-go/internal/store"
)

// SecretParam is the URL parameter the registry is mounted under.
const SecretParam = "secret"

// Config wires the panel's collaborators.
type Config struct {
	Queries  *store.Queries
	Sessions *scs.SessionManager
	Renderer *render.Renderer
	Uploader *imaging.Uploader
	Users    *service.Users
	Metrics  *metrics.Metrics // optional
	Logger   *slog.Logger
}

type namespace struct {
	owner  uuid.UUID
	router http.Handler
}

type table struct {
	namespaces map[string]*namespace
	builtAt    time.Time
}

// Registry maps admin secrets to namespaces. Lookups read an immutable
// table through an atomic pointer; Refresh builds a replacement under a
// mutex and swaps it in whole.
type Registry struct {
	admin *Admin

	mu      sync.Mutex
	current atomic.Pointer[table]
}

// NewRegistry creates an empty registry. Call Refresh to load namespaces.
func NewRegistry(cfg Config) *Registry {
	reg := &Registry{}
	reg.admin = &Admin{
		queries:  cfg.Queries,
		sessions: cfg.Sessions,
		renderer: cfg.Renderer,
		uploader: cfg.Uploader,
		users:    cfg.Users,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		registry: reg,
		now:      time.Now,
	}
	reg.current.Store(&table{namespaces: map[string]*namespace{}})
	return reg
}

// Refresh rebuilds the namespace table from the active superusers.
func (reg *Registry) Refresh(ctx context.Context) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	users, err := reg.admin.queries.ListActiveSuperusers(ctx)
	if err != nil {
		return fmt.Errorf("listing superusers: %w", err)
	}

	next := &table{
		namespaces: make(map[string]*namespace, len(users)),
		builtAt:    reg.admin.now(),
	}
	for _, u := range users {
		if u.SecretToken == "" {
			continue
		}
		next.namespaces[u.SecretToken] = &namespace{
			owner:  u.ID,
			router: reg.admin.routes(),
		}
	}
	previous := reg.current.Swap(next)

	reg.admin.logger.InfoContext(ctx, "ADMIN namespaces rebuilt",
		"count", len(next.namespaces),
		"previous", len(previous.namespaces),
	)
	return nil
}

// Len returns the number of registered namespaces.
func (reg *Registry) Len() int {
	return len(reg.current.Load().namespaces)
}

// BuiltAt returns when the current table was built.
func (reg *Registry) BuiltAt() time.Time {
	return reg.current.Load().builtAt
}

func (reg *Registry) lookup(secret string) (*namespace, bool) {
	ns, ok := reg.current.Load().namespaces[secret]
	return ns, ok
}

// ServeHTTP guards and dispatches a request mounted at /{secret}/admin.
// The database is consulted on every request, so a deactivated account or
// a replaced secret is refused even before the next Refresh.
func (reg *Registry) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a := reg.admin
	ctx := r.Context()
	secret := chi.URLParam(r, SecretParam)
	addr := logging.ClientIP(r)

	ns, ok := reg.lookup(secret)
	if !ok {
		a.deny(w, r, secret, "unknown namespace")
		return
	}

	user, err := a.queries.GetActiveUserBySecret(ctx, secret)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			a.deny(w, r, secret, "no active account")
			return
		}
		a.logger.ErrorContext(ctx, "admin guard lookup failed", "error", err)
		middleware.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}
	if !user.CanAccessAdmin() || user.ID != ns.owner {
		a.deny(w, r, secret, "not an active superuser")
		return
	}

	now := a.now().UTC()
	if err := a.queries.UpdateUserLastLogin(ctx, user.ID, now); err != nil {
		a.logger.WarnContext(ctx, "updating last login failed", "error", err, "user_id", user.ID)
	} else {
		user.LastLogin = sql.NullTime{Time: now, Valid: true}
	}
	if a.sessions != nil {
		a.sessions.Put(ctx, session.KeyAdminUserID, user.ID.String())
	}

	ctx = logging.WithActor(ctx, user.ID.String())
	logging.SecurityEvent(ctx, a.logger, "ADMIN_ACCESS_GRANTED", user.ID.String(), addr,
		map[string]any{"prefix": auth.MaskSecret(secret), "path": strings.TrimPrefix(r.URL.Path, "/"+secret)})
	a.countAccess("granted")

	ctx = withUser(ctx, user, "/"+secret+"/admin")
	ns.router.ServeHTTP(w, r.WithContext(ctx))
}

// MaskPath shortens the secret of admin paths for logging.
func MaskPath(p string) string {
	rest := strings.TrimPrefix(p, "/")
	seg, tail, ok := strings.Cut(rest, "/")
	if !ok || seg == "" || (tail != "admin" && !strings.HasPrefix(tail, "admin/")) {
		return p
	}
	return "/" + auth.MaskSecret(seg) + "/" + tail
}

type ctxKey int

const (
	userKey ctxKey = iota
	baseKey
)

func withUser(ctx context.Context, u model.User, base string) context.Context {
	ctx = context.WithValue(ctx, userKey, u)
	return context.WithValue(ctx, baseKey, base)
}

// CurrentUser returns the administrator the guard admitted.
func CurrentUser(ctx context.Context) (model.User, bool) {
	u, ok := ctx.Value(userKey).(model.User)
	return u, ok
}

// basePath returns the caller's namespace root without a trailing slash.
func basePath(ctx context.Context) string {
	b, _ := ctx.Value(baseKey).(string)
	return b
}
