// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package admin

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/olegiv/studio-go/internal/imaging"
)

// maxListItems is how many feature_N / technology_N inputs a form carries.
const maxListItems = 10

// maxFormMemory bounds the in-memory part of a multipart form.
const maxFormMemory = imaging.MaxFileSize + 1<<20

// formError is a validation problem shown inline on the form.
type formError struct{ msg string }

func (e formError) Error() string { return e.msg }

func invalid(format string, args ...any) error {
	return formError{msg: fmt.Sprintf(format, args...)}
}

// parseForm accepts both multipart and urlencoded bodies.
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(maxFormMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}

func field(r *http.Request, name string) string {
	return strings.TrimSpace(r.PostFormValue(name))
}

func checkbox(r *http.Request, name string) bool {
	_, ok := r.PostForm[name]
	return ok
}

// listField collects prefix_0 .. prefix_9, skipping blanks.
func listField(r *http.Request, prefix string) []string {
	var items []string
	for i := range maxListItems {
		if v := field(r, prefix+strconv.Itoa(i)); v != "" {
			items = append(items, v)
		}
	}
	return items
}

func optionalFloat(r *http.Request, name, label string) (sql.NullFloat64, error) {
	raw := field(r, name)
	if raw == "" {
		return sql.NullFloat64{}, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return sql.NullFloat64{}, invalid("%s must be a non-negative number", label)
	}
	return sql.NullFloat64{Float64: v, Valid: true}, nil
}

func intField(r *http.Request, name, label string) (int, error) {
	raw := field(r, name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid("%s must be a whole number", label)
	}
	return v, nil
}

func optionalDate(r *http.Request, name, label string) (sql.NullTime, error) {
	raw := field(r, name)
	if raw == "" {
		return sql.NullTime{}, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return sql.NullTime{}, invalid("%s must be a date in YYYY-MM-DD format", label)
	}
	return sql.NullTime{Time: t, Valid: true}, nil
}

// parseID reads the {id} URL parameter.
func parseID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// imageChange is the outcome of the image inputs of a form.
type imageChange struct {
	url      string
	uploaded string // new managed file to remove if saving fails
	replaced string // previous managed file to remove once saved
}

func (c imageChange) changed(current string) bool {
	return c.url != current
}

// resolveImage applies the image inputs: an uploaded image_file wins over
// image_url, and either replaces current. A failed upload is a formError.
func (a *Admin) resolveImage(r *http.Request, category, current string) (imageChange, error) {
	change := imageChange{url: current}

	if r.MultipartForm != nil {
		if files := r.MultipartForm.File["image_file"]; len(files) > 0 && files[0].Filename != "" {
			res := a.uploader.UploadForm(r.Context(), files[0], category)
			a.countUpload(category, res.OK)
			if !res.OK {
				return change, invalid("Image upload failed: %s", res.Message)
			}
			change.url = res.Path
			change.uploaded = res.Path
			if current != "" && a.uploader.IsManaged(current) {
				change.replaced = current
			}
			return change, nil
		}
	}

	if url := field(r, "image_url"); url != current {
		change.url = url
		if current != "" && a.uploader.IsManaged(current) {
			change.replaced = current
		}
	}
	return change, nil
}

// settle removes whichever file is no longer referenced after a save.
func (a *Admin) settle(r *http.Request, c imageChange, saved bool) {
	stale := c.replaced
	if !saved {
		stale = c.uploaded
	}
	if stale == "" {
		return
	}
	if err := a.uploader.Delete(r.Context(), stale); err != nil {
		a.logger.WarnContext(r.Context(), "removing stale image failed", "error", err, "image", stale)
	}
}

func (a *Admin) countUpload(category string, ok bool) {
	if a.metrics == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "rejected"
	}
	a.metrics.Uploads.WithLabelValues(category, result).Inc()
}
