// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "database/sql"

// Service defaults.
const (
	DefaultServiceIcon  = "fas fa-cog"
	DefaultServiceColor = "#8B5CF6"
)

// Service is a sellable offering shown on the public site.
type Service struct {
	Entity
	Title       string
	Description string
	Icon        string
	ImageURL    string
	IsActive    bool
	SortOrder   int
	Color       string
	PriceFrom   sql.NullFloat64
	Duration    string
	Features    string // JSON array
}

// NewService returns a Service populated with defaults.
func NewService(e Entity) Service {
	return Service{
		Entity:   e,
		Icon:     DefaultServiceIcon,
		Color:    DefaultServiceColor,
		IsActive: true,
		Features: "[]",
	}
}

// FeaturesList decodes the feature list.
func (s Service) FeaturesList() []string {
	return DecodeList(s.Features)
}

// SetFeatures encodes the feature list.
func (s *Service) SetFeatures(features []string) {
	s.Features = EncodeList(features)
}

// PriceFormatted renders PriceFrom for display, or "" when unset.
func (s Service) PriceFormatted() string {
	if !s.PriceFrom.Valid {
		return ""
	}
	return FormatPrice(s.PriceFrom.Float64)
}

// ToMap implements Serializable.
func (s Service) ToMap() map[string]any {
	m := s.baseMap()
	m["title"] = s.Title
	m["description"] = s.Description
	m["icon"] = s.Icon
	m["image_url"] = s.ImageURL
	m["is_active"] = s.IsActive
	m["sort_order"] = s.SortOrder
	m["color"] = s.Color
	m["duration"] = s.Duration
	m["features"] = s.Features
	m["features_list"] = s.FeaturesList()
	if s.PriceFrom.Valid {
		m["price_from"] = s.PriceFrom.Float64
	} else {
		m["price_from"] = nil
	}
	return m
}
