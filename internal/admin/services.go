// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package admin

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/olegiv/studio-go/internal/middleware"
	"github.com/olegiv/studio-go/internal/model"
	"github.com/olegiv/studio-go/internal/render"
	"github.com/olegiv/studio-go/internal/session"
	"github.com/olegiv/studio-go/internal/store"
)

// ServiceFormData is rendered by admin/service_form.
type ServiceFormData struct {
	Service  model.Service
	Features []string
	IsNew    bool
	Action   string
}

// ListServices handles GET /services.
func (a *Admin) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := a.queries.ListServices(r.Context())
	if err != nil {
		a.internalError(w, r, "failed to list services", err)
		return
	}
	a.page(w, r, http.StatusOK, "admin/services", render.TemplateData{Title: "Services", Data: services})
}

// NewService handles GET /services/new.
func (a *Admin) NewService(w http.ResponseWriter, r *http.Request) {
	s := model.NewService(model.Entity{})
	a.serviceForm(w, r, http.StatusOK, s, true, "")
}

// CreateService handles POST /services/new.
func (a *Admin) CreateService(w http.ResponseWriter, r *http.Request) {
	s := model.NewService(model.NewEntity(a.now()))
	a.saveService(w, r, s, true)
}

// EditService handles GET /services/{id}/edit.
func (a *Admin) EditService(w http.ResponseWriter, r *http.Request) {
	s, ok := a.loadService(w, r)
	if !ok {
		return
	}
	a.serviceForm(w, r, http.StatusOK, s, false, "")
}

// UpdateService handles POST /services/{id}/edit.
func (a *Admin) UpdateService(w http.ResponseWriter, r *http.Request) {
	s, ok := a.loadService(w, r)
	if !ok {
		return
	}
	s.Touch(a.now())
	a.saveService(w, r, s, false)
}

func (a *Admin) saveService(w http.ResponseWriter, r *http.Request, s model.Service, isNew bool) {
	if err := parseForm(r); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	previousImage := s.ImageURL
	if err := serviceFromForm(r, &s); err != nil {
		a.serviceForm(w, r, http.StatusBadRequest, s, isNew, err.Error())
		return
	}
	img, err := a.resolveImage(r, uploadServices, previousImage)
	if err != nil {
		a.serviceForm(w, r, http.StatusBadRequest, s, isNew, err.Error())
		return
	}
	s.ImageURL = img.url

	err = a.queries.RunInTx(r.Context(), func(tx *store.Queries) error {
		if isNew {
			return tx.CreateService(r.Context(), s)
		}
		return tx.UpdateService(r.Context(), s)
	})
	a.settle(r, img, err == nil)
	if err != nil {
		a.logger.ErrorContext(r.Context(), "saving service failed", "error", err, "service_id", s.ID)
		a.serviceForm(w, r, http.StatusInternalServerError, s, isNew, "Error saving service")
		return
	}

	details := map[string]any{
		"title":      s.Title,
		"price_from": s.PriceFormatted(),
		"has_image":  s.ImageURL != "",
	}
	action, msg := actionCreate, "Service created successfully"
	if !isNew {
		action, msg = actionUpdate, "Service updated successfully"
		details["image_updated"] = img.changed(previousImage)
	}
	a.audit(r, action, resourceService, s.ID.String(), details)

	a.flash(r, session.FlashSuccess, msg)
	a.redirect(w, r, "/services")
}

// serviceFromForm copies the form into s.
func serviceFromForm(r *http.Request, s *model.Service) error {
	s.Title = field(r, "title")
	s.Description = field(r, "description")
	s.Icon = field(r, "icon")
	if s.Icon == "" {
		s.Icon = model.DefaultServiceIcon
	}
	s.Color = field(r, "color")
	if s.Color == "" {
		s.Color = model.DefaultServiceColor
	}
	s.Duration = field(r, "duration")
	s.IsActive = checkbox(r, "is_active")
	s.SetFeatures(listField(r, "feature_"))

	if s.Title == "" {
		return invalid("Title is required")
	}
	var err error
	if s.PriceFrom, err = optionalFloat(r, "price_from", "Price"); err != nil {
		return err
	}
	if s.SortOrder, err = intField(r, "sort_order", "Sort order"); err != nil {
		return err
	}
	return nil
}

func (a *Admin) serviceForm(w http.ResponseWriter, r *http.Request, status int, s model.Service, isNew bool, formErr string) {
	action := basePath(r.Context()) + "/services/new"
	title := "New service"
	if !isNew {
		action = basePath(r.Context()) + "/services/" + s.ID.String() + "/edit"
		title = "Edit service"
	}
	a.page(w, r, status, "admin/service_form", render.TemplateData{
		Title: title,
		Error: formErr,
		Data: ServiceFormData{
			Service:  s,
			Features: s.FeaturesList(),
			IsNew:    isNew,
			Action:   action,
		},
	})
}

// loadService resolves {id}, answering 400 or 404 itself.
func (a *Admin) loadService(w http.ResponseWriter, r *http.Request) (model.Service, bool) {
	id, ok := parseID(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "Invalid service ID")
		return model.Service{}, false
	}
	s, err := a.queries.GetServiceByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONError(w, http.StatusNotFound, "Service not found")
		} else {
			a.internalError(w, r, "failed to load service", err)
		}
		return model.Service{}, false
	}
	return s, true
}

// DeleteService handles POST /services/{id}/delete.
func (a *Admin) DeleteService(w http.ResponseWriter, r *http.Request) {
	s, ok := a.loadService(w, r)
	if !ok {
		return
	}

	err := a.queries.RunInTx(r.Context(), func(tx *store.Queries) error {
		return tx.DeleteService(r.Context(), s.ID)
	})
	if err != nil {
		a.logger.ErrorContext(r.Context(), "deleting service failed", "error", err, "service_id", s.ID)
		middleware.WriteJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "Error deleting service",
		})
		return
	}
	if s.ImageURL != "" {
		if err := a.uploader.Delete(r.Context(), s.ImageURL); err != nil {
			a.logger.WarnContext(r.Context(), "removing service image failed", "error", err)
		}
	}

	a.audit(r, actionDelete, resourceService, s.ID.String(), map[string]any{"title": s.Title})
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Service deleted successfully",
	})
}
