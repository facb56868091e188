// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the site's domain entities: administrators,
// sellable services and portfolio projects.
package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entity is the identity and audit timestamp block shared by every entity.
type Entity struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewEntity returns an Entity with a fresh random ID stamped at now.
func NewEntity(now time.Time) Entity {
	now = now.UTC()
	return Entity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch refreshes the update timestamp.
func (e *Entity) Touch(now time.Time) {
	e.UpdatedAt = now.UTC()
}

func (e Entity) baseMap() map[string]any {
	return map[string]any{
		"id":         e.ID.String(),
		"created_at": e.CreatedAt.Format(time.RFC3339),
		"updated_at": e.UpdatedAt.Format(time.RFC3339),
	}
}

// Serializable is implemented by entities exposed through JSON endpoints.
type Serializable interface {
	ToMap() map[string]any
}

// ToMaps serializes a slice of entities.
func ToMaps[T Serializable](items []T) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, item.ToMap())
	}
	return out
}

// EncodeList stores a string list as a JSON array, dropping blank entries.
func EncodeList(items []string) string {
	clean := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			clean = append(clean, s)
		}
	}
	b, err := json.Marshal(clean)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// DecodeList parses a JSON array column. Malformed or empty input yields an empty list.
func DecodeList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []string{}
	}
	return items
}
