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

// PortfolioFormData is rendered by admin/portfolio_form.
type PortfolioFormData struct {
	Project      model.Portfolio
	Technologies []string
	Categories   []string
	Statuses     []string
	IsNew        bool
	Action       string
}

// ListPortfolio handles GET /portfolio.
func (a *Admin) ListPortfolio(w http.ResponseWriter, r *http.Request) {
	projects, err := a.queries.ListPortfolio(r.Context())
	if err != nil {
		a.internalError(w, r, "failed to list projects", err)
		return
	}
	a.page(w, r, http.StatusOK, "admin/portfolio", render.TemplateData{Title: "Portfolio", Data: projects})
}

// NewPortfolio handles GET /portfolio/new.
func (a *Admin) NewPortfolio(w http.ResponseWriter, r *http.Request) {
	a.portfolioForm(w, r, http.StatusOK, model.NewPortfolio(model.Entity{}), true, "")
}

// CreatePortfolio handles POST /portfolio/new.
func (a *Admin) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	a.savePortfolio(w, r, model.NewPortfolio(model.NewEntity(a.now())), true)
}

// EditPortfolio handles GET /portfolio/{id}/edit.
func (a *Admin) EditPortfolio(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadPortfolio(w, r)
	if !ok {
		return
	}
	a.portfolioForm(w, r, http.StatusOK, p, false, "")
}

// UpdatePortfolio handles POST /portfolio/{id}/edit.
func (a *Admin) UpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadPortfolio(w, r)
	if !ok {
		return
	}
	p.Touch(a.now())
	a.savePortfolio(w, r, p, false)
}

func (a *Admin) savePortfolio(w http.ResponseWriter, r *http.Request, p model.Portfolio, isNew bool) {
	if err := parseForm(r); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	previousImage := p.ImageURL
	if err := portfolioFromForm(r, &p); err != nil {
		a.portfolioForm(w, r, http.StatusBadRequest, p, isNew, err.Error())
		return
	}
	img, err := a.resolveImage(r, uploadPortfolio, previousImage)
	if err != nil {
		a.portfolioForm(w, r, http.StatusBadRequest, p, isNew, err.Error())
		return
	}
	p.ImageURL = img.url

	err = a.queries.RunInTx(r.Context(), func(tx *store.Queries) error {
		if isNew {
			return tx.CreatePortfolio(r.Context(), p)
		}
		return tx.UpdatePortfolio(r.Context(), p)
	})
	a.settle(r, img, err == nil)
	if err != nil {
		a.logger.ErrorContext(r.Context(), "saving project failed", "error", err, "project_id", p.ID)
		a.portfolioForm(w, r, http.StatusInternalServerError, p, isNew, "Error saving project")
		return
	}

	details := map[string]any{
		"title":     p.Title,
		"category":  p.Category,
		"status":    p.Status,
		"price":     p.PriceFormatted(),
		"has_image": p.ImageURL != "",
	}
	action, msg := actionCreate, "Project created successfully"
	if !isNew {
		action, msg = actionUpdate, "Project updated successfully"
		details["image_updated"] = img.changed(previousImage)
	}
	a.audit(r, action, resourcePortfolio, p.ID.String(), details)

	a.flash(r, session.FlashSuccess, msg)
	a.redirect(w, r, "/portfolio")
}

// portfolioFromForm copies the form into p.
func portfolioFromForm(r *http.Request, p *model.Portfolio) error {
	p.Title = field(r, "title")
	p.Description = field(r, "description")
	p.Client = field(r, "client")
	p.Location = field(r, "location")
	p.ProjectURL = field(r, "project_url")
	p.IsFeatured = checkbox(r, "is_featured")
	p.IsActive = checkbox(r, "is_active")
	p.SetTechnologies(listField(r, "technology_"))

	p.Category = field(r, "category")
	if p.Category == "" {
		p.Category = model.CategoryOther
	}
	p.Status = field(r, "status")
	if p.Status == "" {
		p.Status = model.StatusCompleted
	}

	if p.Title == "" {
		return invalid("Title is required")
	}
	if !model.IsValidCategory(p.Category) {
		return invalid("Unknown category %q", p.Category)
	}
	if !model.IsValidStatus(p.Status) {
		return invalid("Unknown status %q", p.Status)
	}
	var err error
	if p.Price, err = optionalFloat(r, "price", "Price"); err != nil {
		return err
	}
	if p.CompletionDate, err = optionalDate(r, "completion_date", "Completion date"); err != nil {
		return err
	}
	if p.SortOrder, err = intField(r, "sort_order", "Sort order"); err != nil {
		return err
	}
	return nil
}

func (a *Admin) portfolioForm(w http.ResponseWriter, r *http.Request, status int, p model.Portfolio, isNew bool, formErr string) {
	action := basePath(r.Context()) + "/portfolio/new"
	title := "New project"
	if !isNew {
		action = basePath(r.Context()) + "/portfolio/" + p.ID.String() + "/edit"
		title = "Edit project"
	}
	a.page(w, r, status, "admin/portfolio_form", render.TemplateData{
		Title: title,
		Error: formErr,
		Data: PortfolioFormData{
			Project:      p,
			Technologies: p.TechnologiesList(),
			Categories:   model.Categories,
			Statuses:     model.Statuses,
			IsNew:        isNew,
			Action:       action,
		},
	})
}

// loadPortfolio resolves {id}, answering 400 or 404 itself.
func (a *Admin) loadPortfolio(w http.ResponseWriter, r *http.Request) (model.Portfolio, bool) {
	id, ok := parseID(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "Invalid project ID")
		return model.Portfolio{}, false
	}
	p, err := a.queries.GetPortfolioByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONError(w, http.StatusNotFound, "Project not found")
		} else {
			a.internalError(w, r, "failed to load project", err)
		}
		return model.Portfolio{}, false
	}
	return p, true
}

// DeletePortfolio handles POST /portfolio/{id}/delete.
func (a *Admin) DeletePortfolio(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadPortfolio(w, r)
	if !ok {
		return
	}

	err := a.queries.RunInTx(r.Context(), func(tx *store.Queries) error {
		return tx.DeletePortfolio(r.Context(), p.ID)
	})
	if err != nil {
		a.logger.ErrorContext(r.Context(), "deleting project failed", "error", err, "project_id", p.ID)
		middleware.WriteJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "Error deleting project",
		})
		return
	}
	if p.ImageURL != "" {
		if err := a.uploader.Delete(r.Context(), p.ImageURL); err != nil {
			a.logger.WarnContext(r.Context(), "removing project image failed", "error", err)
		}
	}

	a.audit(r, actionDelete, resourcePortfolio, p.ID.String(), map[string]any{"title": p.Title})
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Project deleted successfully",
	})
}
