// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Portfolio statuses.
const (
	StatusCompleted  = "completed"
	StatusInProgress = "in_progress"
	StatusPlanned    = "planned"
	StatusCancelled  = "cancelled"
)

// Portfolio categories.
const (
	CategoryAccounting  = "System accounting"
	CategoryAutomation  = "Automation"
	CategorySMS         = "SMS service"
	CategoryAnalytics   = "Analytics"
	CategoryMarketplace = "Marketplace"
	CategoryOther       = "Other"
)

// DateLayout is the display layout for completion dates.
const DateLayout = "02 Jan 2006"

// Statuses lists every valid portfolio status in display order.
var Statuses = []string{StatusCompleted, StatusInProgress, StatusPlanned, StatusCancelled}

// Categories lists every portfolio category in display order.
var Categories = []string{
	CategoryAccounting,
	CategoryAutomation,
	CategorySMS,
	CategoryAnalytics,
	CategoryMarketplace,
	CategoryOther,
}

var categoryColors = map[string]string{
	CategoryAccounting:  "#8B5CF6",
	CategoryAutomation:  "#EC4899",
	CategorySMS:         "#F59E0B",
	CategoryAnalytics:   "#10B981",
	CategoryMarketplace: "#EF4444",
	CategoryOther:       "#6B7280",
}

// CategoryColor returns the accent color for a category, falling back to Other.
func CategoryColor(category string) string {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return categoryColors[CategoryOther]
}

// IsValidStatus reports whether s is a known portfolio status.
func IsValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsValidCategory reports whether c is a known portfolio category.
func IsValidCategory(c string) bool {
	_, ok := categoryColors[c]
	return ok
}

// Portfolio is a case study displayed in the public portfolio.
type Portfolio struct {
	Entity
	Title          string
	Description    string
	Client         string
	Location       string
	Category       string
	ImageURL       string
	ProjectURL     string
	Price          sql.NullFloat64
	CompletionDate sql.NullTime
	IsFeatured     bool
	IsActive       bool
	SortOrder      int
	Technologies   string // JSON array
	Status         string
}

// NewPortfolio returns a Portfolio populated with defaults.
func NewPortfolio(e Entity) Portfolio {
	return Portfolio{
		Entity:       e,
		Category:     CategoryOther,
		IsActive:     true,
		Technologies: "[]",
		Status:       StatusCompleted,
	}
}

// TechnologiesList decodes the technology list.
func (p Portfolio) TechnologiesList() []string {
	return DecodeList(p.Technologies)
}

// SetTechnologies encodes the technology list.
func (p *Portfolio) SetTechnologies(items []string) {
	p.Technologies = EncodeList(items)
}

// CategoryColor returns the project's category accent color.
func (p Portfolio) CategoryColor() string {
	return CategoryColor(p.Category)
}

// CompletionDateFormatted renders the completion date, or "" when unset.
func (p Portfolio) CompletionDateFormatted() string {
	if !p.CompletionDate.Valid {
		return ""
	}
	return p.CompletionDate.Time.Format(DateLayout)
}

// PriceFormatted renders the price, or "" when unset.
func (p Portfolio) PriceFormatted() string {
	if !p.Price.Valid {
		return ""
	}
	return FormatPrice(p.Price.Float64)
}

// ToMap implements Serializable.
func (p Portfolio) ToMap() map[string]any {
	m := p.baseMap()
	m["title"] = p.Title
	m["description"] = p.Description
	m["client"] = p.Client
	m["location"] = p.Location
	m["category"] = p.Category
	m["category_color"] = p.CategoryColor()
	m["image_url"] = p.ImageURL
	m["project_url"] = p.ProjectURL
	m["is_featured"] = p.IsFeatured
	m["is_active"] = p.IsActive
	m["sort_order"] = p.SortOrder
	m["technologies"] = p.Technologies
	m["technologies_list"] = p.TechnologiesList()
	m["status"] = p.Status
	m["completion_date_formatted"] = p.CompletionDateFormatted()
	m["price_formatted"] = p.PriceFormatted()
	if p.Price.Valid {
		m["price"] = p.Price.Float64
	} else {
		m["price"] = nil
	}
	if p.CompletionDate.Valid {
		m["completion_date"] = p.CompletionDate.Time.Format(time.DateOnly)
	} else {
		m["completion_date"] = nil
	}
	return m
}
