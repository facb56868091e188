// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/studio-go/internal/model"
)

type defaultService struct {
	title, description, icon, color, duration string
	priceFrom                                 float64
	features                                  []string
}

var defaultServices = []defaultService{
	{
		title:       "Web Development",
		description: "Fast, responsive websites and web applications built for growth.",
		icon:        "fas fa-code",
		color:       "#8B5CF6",
		duration:    "2-6 weeks",
		priceFrom:   50000,
		features:    []string{"Responsive layout", "Admin panel", "SEO-ready markup", "Hosting setup"},
	},
	{
		title:       "Application Development",
		description: "Business automation tools, bots and internal systems.",
		icon:        "fas fa-mobile-alt",
		color:       "#EC4899",
		duration:    "1-3 months",
		priceFrom:   80000,
		features:    []string{"Requirements analysis", "Integrations", "Support and maintenance"},
	},
	{
		title:       "Credit Analysis",
		description: "Loan portfolio analytics and credit risk reporting.",
		icon:        "fas fa-chart-line",
		color:       "#10B981",
		duration:    "1-2 weeks",
		priceFrom:   30000,
		features:    []string{"Risk scoring", "Reporting dashboards", "Data cleanup"},
	},
	{
		title:       "Graphic Design",
		description: "Illustrations, print materials and interface design.",
		icon:        "fas fa-palette",
		color:       "#F59E0B",
		duration:    "3-10 days",
		priceFrom:   15000,
		features:    []string{"Interface mockups", "Print layouts", "Social media kits"},
	},
	{
		title:       "Branding",
		description: "Logo, identity and brand guidelines.",
		icon:        "fas fa-star",
		color:       "#EF4444",
		duration:    "2-4 weeks",
		priceFrom:   40000,
		features:    []string{"Logo design", "Brand book", "Color palette", "Typography"},
	},
	{
		title:       "SEO Optimization",
		description: "Technical audits and search visibility improvements.",
		icon:        "fas fa-search",
		color:       "#3B82F6",
		duration:    "Ongoing",
		priceFrom:   20000,
		features:    []string{"Technical audit", "Keyword research", "Monthly reports"},
	},
}

type defaultProject struct {
	title, description, client, location, category string
	price                                           float64
	completed                                       time.Time
	featured                                        bool
	technologies                                    []string
}

var defaultProjects = []defaultProject{
	{
		title:        "Warehouse Accounting System",
		description:  "Inventory and stock movement tracking for a regional distributor.",
		client:       "Regional distributor",
		location:     "Kazan",
		category:     model.CategoryAccounting,
		price:        150000,
		completed:    time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		featured:     true,
		technologies: []string{"Go", "PostgreSQL", "Vue.js"},
	},
	{
		title:        "Order Processing Automation",
		description:  "Automatic order intake from marketplaces into the CRM.",
		client:       "Online retailer",
		location:     "Moscow",
		category:     model.CategoryAutomation,
		price:        90000,
		completed:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		featured:     true,
		technologies: []string{"Python", "REST APIs", "Redis"},
	},
	{
		title:        "SMS Notification Gateway",
		description:  "Bulk and transactional SMS delivery with delivery reports.",
		client:       "Clinic network",
		location:     "Saint Petersburg",
		category:     model.CategorySMS,
		price:        70000,
		completed:    time.Date(2023, 11, 20, 0, 0, 0, 0, time.UTC),
		technologies: []string{"Go", "SMPP", "SQLite"},
	},
	{
		title:        "Sales Analytics Dashboard",
		description:  "Daily revenue and funnel analytics for management.",
		client:       "Furniture manufacturer",
		location:     "Yekaterinburg",
		category:     model.CategoryAnalytics,
		price:        120000,
		completed:    time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC),
		featured:     true,
		technologies: []string{"SQL", "Metabase", "ETL"},
	},
	{
		title:        "Handmade Goods Marketplace",
		description:  "Multi-vendor storefront with payments and seller dashboards.",
		client:       "Craft cooperative",
		location:     "Novosibirsk",
		category:     model.CategoryMarketplace,
		price:        250000,
		completed:    time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC),
		technologies: []string{"Go", "PostgreSQL", "Stripe"},
	},
}

// SeedResult reports how many rows SeedDefaults created.
type SeedResult struct {
	Services  int
	Portfolio int
}

// SeedDefaults loads the default services and portfolio projects. Each
// table is only seeded while it is empty, so repeated runs are no-ops.
func SeedDefaults(ctx context.Context, q *Queries, logger *slog.Logger) (SeedResult, error) {
	var res SeedResult
	now := time.Now().UTC()

	err := q.RunInTx(ctx, func(tx *Queries) error {
		n, err := tx.CountServices(ctx)
		if err != nil {
			return fmt.Errorf("counting services: %w", err)
		}
		if n == 0 {
			for i, d := range defaultServices {
				s := model.NewService(model.NewEntity(now))
				s.Title = d.title
				s.Description = d.description
				s.Icon = d.icon
				s.Color = d.color
				s.Duration = d.duration
				s.PriceFrom = sql.NullFloat64{Float64: d.priceFrom, Valid: true}
				s.SortOrder = i + 1
				s.SetFeatures(d.features)
				if err := tx.CreateService(ctx, s); err != nil {
					return fmt.Errorf("creating service %q: %w", d.title, err)
				}
				res.Services++
			}
		} else {
			logger.Info("services already present, skipping seed", "count", n)
		}

		n, err = tx.CountPortfolio(ctx)
		if err != nil {
			return fmt.Errorf("counting portfolio: %w", err)
		}
		if n == 0 {
			for i, d := range defaultProjects {
				p := model.NewPortfolio(model.NewEntity(now))
				p.Title = d.title
				p.Description = d.description
				p.Client = d.client
				p.Location = d.location
				p.Category = d.category
				p.Price = sql.NullFloat64{Float64: d.price, Valid: true}
				p.CompletionDate = sql.NullTime{Time: d.completed, Valid: true}
				p.IsFeatured = d.featured
				p.SortOrder = len(defaultProjects) - i
				p.SetTechnologies(d.technologies)
				if err := tx.CreatePortfolio(ctx, p); err != nil {
					return fmt.Errorf("creating project %q: %w", d.title, err)
				}
				res.Portfolio++
			}
		} else {
			logger.Info("portfolio already present, skipping seed", "count", n)
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}

	logger.Info("default data loaded", "services", res.Services, "portfolio", res.Portfolio)
	return res, nil
}
