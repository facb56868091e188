// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package admin

import (
	"net/http"

	"github.com/olegiv/studio-go/internal/model"
	"github.com/olegiv/studio-go/internal/render"
)

const recentItems = 5

// Stats are the dashboard counters.
type Stats struct {
	ServicesCount      int64   `json:"services_count"`
	PortfolioCount     int64   `json:"portfolio_count"`
	FeaturedProjects   int64   `json:"featured_projects"`
	TotalProjectsValue float64 `json:"total_projects_value"`
}

// DashboardData is rendered by admin/dashboard.
type DashboardData struct {
	Stats          Stats
	RecentServices []model.Service
	RecentProjects []model.Portfolio
}

// Dashboard handles GET /.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	services, err := a.queries.CountActiveServices(ctx)
	if err != nil {
		a.internalError(w, r, "failed to count services", err)
		return
	}
	ps, err := a.queries.GetPortfolioStats(ctx)
	if err != nil {
		a.internalError(w, r, "failed to compute portfolio stats", err)
		return
	}
	recentServices, err := a.queries.ListServices(ctx)
	if err != nil {
		a.internalError(w, r, "failed to list services", err)
		return
	}
	recentProjects, err := a.queries.ListPortfolio(ctx)
	if err != nil {
		a.internalError(w, r, "failed to list projects", err)
		return
	}

	a.page(w, r, http.StatusOK, "admin/dashboard", render.TemplateData{
		Title: "Dashboard",
		Data: DashboardData{
			Stats: Stats{
				ServicesCount:      services,
				PortfolioCount:     ps.Active,
				FeaturedProjects:   ps.Featured,
				TotalProjectsValue: ps.TotalPrice,
			},
			RecentServices: firstN(recentServices, recentItems),
			RecentProjects: firstN(recentProjects, recentItems),
		},
	})
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
