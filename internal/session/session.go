// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the cookie session manager used by the
// admin panel.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
)

// Session keys.
const (
	KeyAdminUserID = "admin_user_id"
	KeyFlash       = "flash"
	KeyFlashKind   = "flash_kind"
)

// Flash kinds rendered by the admin layout.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

const (
	cookieName       = "studio_session"
	secureCookieName = "__Host-studio_session"
)

// Options configures New.
type Options struct {
	// Driver selects the store: "sqlite" keeps sessions in the database,
	// anything else keeps them in memory.
	Driver   string
	Lifetime time.Duration
	// Secure marks the cookie Secure and switches to a __Host- name.
	Secure bool
}

// New creates a session manager.
func New(db *sql.DB, opts Options) *scs.SessionManager {
	sm := scs.New()

	if opts.Driver == "sqlite" && db != nil {
		sm.Store = sqlite3store.New(db)
	} else {
		sm.Store = memstore.New()
	}

	if opts.Lifetime > 0 {
		sm.Lifetime = opts.Lifetime
	}
	sm.IdleTimeout = 0
	sm.Cookie.Name = cookieName
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = opts.Secure
	if opts.Secure {
		sm.Cookie.Name = secureCookieName
	}

	return sm
}

// SetFlash stores a one-shot message for the next page render.
func SetFlash(r *http.Request, sm *scs.SessionManager, kind, msg string) {
	sm.Put(r.Context(), KeyFlash, msg)
	sm.Put(r.Context(), KeyFlashKind, kind)
}

// PopFlash returns and clears the pending flash message.
func PopFlash(r *http.Request, sm *scs.SessionManager) (kind, msg string) {
	msg = sm.PopString(r.Context(), KeyFlash)
	kind = sm.PopString(r.Context(), KeyFlashKind)
	return kind, msg
}
