// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/studio-go/internal/model"
)

const userColumns = `id, email, password_hash, secret_token, is_superuser, is_active, last_login, full_name, created_at, updated_at`

func scanUser(row scanner) (model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.SecretToken,
		&u.IsSuperuser,
		&u.IsActive,
		&u.LastLogin,
		&u.FullName,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

const createUser = `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// CreateUser inserts u.
func (q *Queries) CreateUser(ctx context.Context, u model.User) error {
	_, err := q.exec(ctx, createUser,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.SecretToken,
		u.IsSuperuser,
		u.IsActive,
		u.LastLogin,
		u.FullName,
		u.CreatedAt,
		u.UpdatedAt,
	)
	return err
}

// GetUserByID returns the user with the given id.
func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return scanUser(q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// GetUserByEmail returns the user with the given email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

// GetActiveUserBySecret returns the active user owning secret.
func (q *Queries) GetActiveUserBySecret(ctx context.Context, secret string) (model.User, error) {
	return scanUser(q.queryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE secret_token = ? AND is_active = TRUE`, secret))
}

// ListUsers returns every user ordered by creation time.
func (q *Queries) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := q.query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanUser)
}

// ListActiveSuperusers returns every user allowed into an admin namespace.
func (q *Queries) ListActiveSuperusers(ctx context.Context) ([]model.User, error) {
	rows, err := q.query(ctx,
		`SELECT `+userColumns+` FROM users WHERE is_superuser = TRUE AND is_active = TRUE ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanUser)
}

// UpdateUserSecret replaces the user's secret token.
func (q *Queries) UpdateUserSecret(ctx context.Context, id uuid.UUID, secret string, now time.Time) error {
	res, err := q.exec(ctx, `UPDATE users SET secret_token = ?, updated_at = ? WHERE id = ?`, secret, now.UTC(), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// UpdateUserLastLogin stamps the user's last admin access.
func (q *Queries) UpdateUserLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := q.exec(ctx, `UPDATE users SET last_login = ?, updated_at = ? WHERE id = ?`, at.UTC(), at.UTC(), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// SetUserActive enables or disables an account.
func (q *Queries) SetUserActive(ctx context.Context, id uuid.UUID, active bool, now time.Time) error {
	res, err := q.exec(ctx, `UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`, active, now.UTC(), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
