// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// DefaultFullName is used when an administrator is created without a display name.
const DefaultFullName = "Administrator"

// MaxEmailLength is the longest accepted email address.
const MaxEmailLength = 120

// User is an administrator account. SecretToken is the path segment of
// the user's private admin namespace and the only admin credential.
type User struct {
	Entity
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	SecretToken  string       `json:"-"`
	IsSuperuser  bool         `json:"is_superuser"`
	IsActive     bool         `json:"is_active"`
	LastLogin    sql.NullTime `json:"last_login"`
	FullName     string       `json:"full_name"`
}

// CanAccessAdmin reports whether the account may use its admin namespace.
func (u User) CanAccessAdmin() bool {
	return u.IsSuperuser && u.IsActive
}

// AdminPath returns the root of the user's admin namespace.
func (u User) AdminPath() string {
	return "/" + u.SecretToken + "/admin/"
}

// ToMap implements Serializable. Credentials are never included.
func (u User) ToMap() map[string]any {
	m := u.baseMap()
	m["email"] = u.Email
	m["is_superuser"] = u.IsSuperuser
	m["is_active"] = u.IsActive
	m["full_name"] = u.FullName
	if u.LastLogin.Valid {
		m["last_login"] = u.LastLogin.Time.Format(time.RFC3339)
	} else {
		m["last_login"] = nil
	}
	return m
}
