// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/olegiv/studio-go/internal/model"
)

const portfolioColumns = `id, title, description, client, location, category, image_url, project_url, price,
    completion_date, is_featured, is_active, sort_order, technologies, status, created_at, updated_at`

// Public listings: sort order descending, then completion date descending.
const portfolioPublicOrder = ` ORDER BY sort_order DESC, completion_date DESC NULLS LAST, created_at DESC`

func scanPortfolio(row scanner) (model.Portfolio, error) {
	var p model.Portfolio
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Client,
		&p.Location,
		&p.Category,
		&p.ImageURL,
		&p.ProjectURL,
		&p.Price,
		&p.CompletionDate,
		&p.IsFeatured,
		&p.IsActive,
		&p.SortOrder,
		&p.Technologies,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

const createPortfolio = `INSERT INTO portfolio (` + portfolioColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// CreatePortfolio inserts p.
func (q *Queries) CreatePortfolio(ctx context.Context, p model.Portfolio) error {
	_, err := q.exec(ctx, createPortfolio,
		p.ID,
		p.Title,
		p.Description,
		p.Client,
		p.Location,
		p.Category,
		p.ImageURL,
		p.ProjectURL,
		p.Price,
		p.CompletionDate,
		p.IsFeatured,
		p.IsActive,
		p.SortOrder,
		p.Technologies,
		p.Status,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

const updatePortfolio = `UPDATE portfolio SET
    title = ?, description = ?, client = ?, location = ?, category = ?, image_url = ?,
    project_url = ?, price = ?, completion_date = ?, is_featured = ?, is_active = ?,
    sort_order = ?, technologies = ?, status = ?, updated_at = ?
WHERE id = ?`

// UpdatePortfolio writes every mutable column of p.
func (q *Queries) UpdatePortfolio(ctx context.Context, p model.Portfolio) error {
	res, err := q.exec(ctx, updatePortfolio,
		p.Title,
		p.Description,
		p.Client,
		p.Location,
		p.Category,
		p.ImageURL,
		p.ProjectURL,
		p.Price,
		p.CompletionDate,
		p.IsFeatured,
		p.IsActive,
		p.SortOrder,
		p.Technologies,
		p.Status,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// DeletePortfolio removes the project with the given id.
func (q *Queries) DeletePortfolio(ctx context.Context, id uuid.UUID) error {
	res, err := q.exec(ctx, `DELETE FROM portfolio WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// GetPortfolioByID returns the project with the given id.
func (q *Queries) GetPortfolioByID(ctx context.Context, id uuid.UUID) (model.Portfolio, error) {
	return scanPortfolio(q.queryRow(ctx, `SELECT `+portfolioColumns+` FROM portfolio WHERE id = ?`, id))
}

// ListPortfolio returns every project for the admin list.
func (q *Queries) ListPortfolio(ctx context.Context) ([]model.Portfolio, error) {
	rows, err := q.query(ctx, `SELECT `+portfolioColumns+` FROM portfolio`+portfolioPublicOrder)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPortfolio)
}

// ListActivePortfolio returns active projects, sort order descending then
// completion date descending. A limit of zero or less returns all of them.
func (q *Queries) ListActivePortfolio(ctx context.Context, limit int) ([]model.Portfolio, error) {
	query, args := withLimit(
		`SELECT `+portfolioColumns+` FROM portfolio WHERE is_active = TRUE`+portfolioPublicOrder, limit)
	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPortfolio)
}

// ListFeaturedPortfolio returns active featured projects in public order.
func (q *Queries) ListFeaturedPortfolio(ctx context.Context, limit int) ([]model.Portfolio, error) {
	query, args := withLimit(
		`SELECT `+portfolioColumns+` FROM portfolio WHERE is_active = TRUE AND is_featured = TRUE`+portfolioPublicOrder,
		limit)
	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPortfolio)
}

// PortfolioStats summarizes active projects for the admin dashboard.
type PortfolioStats struct {
	Active     int64
	Featured   int64
	TotalPrice float64
}

// GetPortfolioStats computes dashboard counters over active projects.
func (q *Queries) GetPortfolioStats(ctx context.Context) (PortfolioStats, error) {
	var s PortfolioStats
	err := q.queryRow(ctx, `SELECT
    COUNT(*),
    COALESCE(SUM(CASE WHEN is_featured = TRUE THEN 1 ELSE 0 END), 0),
    COALESCE(SUM(price), 0)
FROM portfolio WHERE is_active = TRUE`).Scan(&s.Active, &s.Featured, &s.TotalPrice)
	return s, err
}

// CountPortfolio counts all projects.
func (q *Queries) CountPortfolio(ctx context.Context) (int64, error) {
	var n int64
	err := q.queryRow(ctx, `SELECT COUNT(*) FROM portfolio`).Scan(&n)
	return n, err
}
