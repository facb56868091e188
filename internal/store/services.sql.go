// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/olegiv/studio-go/internal/model"
)

const serviceColumns = `id, title, description, icon, image_url, is_active, sort_order, color, price_from, duration, features, created_at, updated_at`

func scanService(row scanner) (model.Service, error) {
	var s model.Service
	err := row.Scan(
		&s.ID,
		&s.Title,
		&s.Description,
		&s.Icon,
		&s.ImageURL,
		&s.IsActive,
		&s.SortOrder,
		&s.Color,
		&s.PriceFrom,
		&s.Duration,
		&s.Features,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

const createService = `INSERT INTO services (` + serviceColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// CreateService inserts s.
func (q *Queries) CreateService(ctx context.Context, s model.Service) error {
	_, err := q.exec(ctx, createService,
		s.ID,
		s.Title,
		s.Description,
		s.Icon,
		s.ImageURL,
		s.IsActive,
		s.SortOrder,
		s.Color,
		s.PriceFrom,
		s.Duration,
		s.Features,
		s.CreatedAt,
		s.UpdatedAt,
	)
	return err
}

const updateService = `UPDATE services SET
    title = ?, description = ?, icon = ?, image_url = ?, is_active = ?, sort_order = ?,
    color = ?, price_from = ?, duration = ?, features = ?, updated_at = ?
WHERE id = ?`

// UpdateService writes every mutable column of s.
func (q *Queries) UpdateService(ctx context.Context, s model.Service) error {
	res, err := q.exec(ctx, updateService,
		s.Title,
		s.Description,
		s.Icon,
		s.ImageURL,
		s.IsActive,
		s.SortOrder,
		s.Color,
		s.PriceFrom,
		s.Duration,
		s.Features,
		s.UpdatedAt,
		s.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// DeleteService removes the service with the given id.
func (q *Queries) DeleteService(ctx context.Context, id uuid.UUID) error {
	res, err := q.exec(ctx, `DELETE FROM services WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// GetServiceByID returns the service with the given id.
func (q *Queries) GetServiceByID(ctx context.Context, id uuid.UUID) (model.Service, error) {
	return scanService(q.queryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = ?`, id))
}

// ListServices returns every service for the admin list, ordered by sort order.
func (q *Queries) ListServices(ctx context.Context) ([]model.Service, error) {
	rows, err := q.query(ctx, `SELECT `+serviceColumns+` FROM services ORDER BY sort_order ASC, created_at ASC`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanService)
}

// ListActiveServices returns active services ordered by sort order ascending.
// A limit of zero or less returns all of them.
func (q *Queries) ListActiveServices(ctx context.Context, limit int) ([]model.Service, error) {
	query, args := withLimit(
		`SELECT `+serviceColumns+` FROM services WHERE is_active = TRUE ORDER BY sort_order ASC, created_at ASC`,
		limit)
	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanService)
}

// CountActiveServices counts active services.
func (q *Queries) CountActiveServices(ctx context.Context) (int64, error) {
	var n int64
	err := q.queryRow(ctx, `SELECT COUNT(*) FROM services WHERE is_active = TRUE`).Scan(&n)
	return n, err
}

// CountServices counts all services.
func (q *Queries) CountServices(ctx context.Context) (int64, error) {
	var n int64
	err := q.queryRow(ctx, `SELECT COUNT(*) FROM services`).Scan(&n)
	return n, err
}
