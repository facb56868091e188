// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler serves the public marketing pages and the JSON
// information endpoints.
package handler

import (
	"log/slog"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/studio-go/internal/metrics"
	"github.com/olegiv/studio-go/internal/render"
	"github.com/olegiv/studio-go/internal/store"
)

// Home page limits.
const (
	homeServicesLimit = 6
	homeFeaturedLimit = 3
)

// Public handles the public site.
type Public struct {
	queries   *store.Queries
	renderer  *render.Renderer
	logger    *slog.Logger
	metrics   *metrics.Metrics
	sanitizer *bluemonday.Policy
	startTime time.Time
	now       func() time.Time
	indexable bool
}

// NewPublic creates the public site handlers. m may be nil.
func NewPublic(q *store.Queries, renderer *render.Renderer, logger *slog.Logger, m *metrics.Metrics) *Public {
	return &Public{
		queries:   q,
		renderer:  renderer,
		logger:    logger,
		metrics:   m,
		sanitizer: bluemonday.StrictPolicy(),
		startTime: time.Now(),
		now:       time.Now,
		indexable: true,
	}
}
