// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package admin

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/studio-go/internal/model"
	tu "github.com/olegiv/studio-go/internal/testutil"
)

func projectForm(title string) url.Values {
	return url.Values{
		"title":           {title},
		"description":     {"Warehouse automation"},
		"client":          {"ACME"},
		"location":        {"Moscow"},
		"category":        {model.CategoryAutomation},
		"status":          {model.StatusInProgress},
		"project_url":     {"https://acme.example.com"},
		"price":           {"250000"},
		"completion_date": {"2024-11-30"},
		"sort_order":      {"7"},
		"is_featured":     {"on"},
		"is_active":       {"on"},
		"technology_0":    {"Go"},
		"technology_4":    {"PostgreSQL"},
	}
}

func onlyProject(t *testing.T, env *testEnv) model.Portfolio {
	t.Helper()
	projects, err := env.queries.ListPortfolio(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)
	return projects[0]
}

func TestCreatePortfolio(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get(env.base() + "/portfolio/new")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="technology_9"`)

	rec = env.postForm(env.base()+"/portfolio/new", projectForm("Warehouse bot"))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, env.base()+"/portfolio", rec.Header().Get("Location"))

	p := onlyProject(t, env)
	assert.Equal(t, "Warehouse bot", p.Title)
	assert.Equal(t, model.CategoryAutomation, p.Category)
	assert.Equal(t, model.StatusInProgress, p.Status)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, p.TechnologiesList())
	assert.True(t, p.IsFeatured)
	assert.True(t, p.IsActive)
	assert.Equal(t, 7, p.SortOrder)
	require.True(t, p.CompletionDate.Valid)
	assert.Equal(t, "30 Nov 2024", p.CompletionDateFormatted())
	assert.Equal(t, "₽250 000", p.PriceFormatted())

	assert.Contains(t, env.logs.String(), "ADMIN CREATE portfolio id:"+p.ID.String())

	list := env.get(env.base() + "/portfolio")
	require.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), "Warehouse bot")
	assert.Contains(t, list.Body.String(), "in progress")
}

func TestCreatePortfolioValidation(t *testing.T) {
	env := newTestEnv(t)

	with := func(k, v string) url.Values {
		f := projectForm("Project")
		f.Set(k, v)
		return f
	}
	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing title", with("title", ""), "Title is required"},
		{"bad date", with("completion_date", "30.11.2024"), "YYYY-MM-DD"},
		{"bad category", with("category", "Gardening"), "Unknown category"},
		{"bad status", with("status", "abandoned"), "Unknown status"},
		{"bad price", with("price", "a lot"), "Price must be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.postForm(env.base()+"/portfolio/new", tt.form)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}

	projects, err := env.queries.ListPortfolio(context.Background())
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestPortfolioDefaults(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postForm(env.base()+"/portfolio/new", url.Values{"title": {"Bare"}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	p := onlyProject(t, env)
	assert.Equal(t, model.CategoryOther, p.Category)
	assert.Equal(t, model.StatusCompleted, p.Status)
	assert.False(t, p.IsActive)
	assert.False(t, p.Price.Valid)
	assert.False(t, p.CompletionDate.Valid)
}

func TestUpdatePortfolioUploadReplacesOldUpload(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postMultipart(t, env.base()+"/portfolio/new", projectForm("Shop"),
		"shop.png", "image/png", tu.TestPNG(t, 50, 50))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	p := onlyProject(t, env)
	first := p.ImageURL
	require.FileExists(t, env.localFile(first))

	form := projectForm("Shop")
	form.Set("image_url", first)
	rec = env.postMultipart(t, env.base()+"/portfolio/"+p.ID.String()+"/edit", form,
		"shop2.jpg", "image/jpeg", tu.TestJPEG(t, 60, 30))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	p = onlyProject(t, env)
	assert.NotEqual(t, first, p.ImageURL)
	assert.FileExists(t, env.localFile(p.ImageURL))
	assert.NoFileExists(t, env.localFile(first))
	assert.NoFileExists(t, env.thumbFile(first))
}

func TestDeletePortfolio(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postMultipart(t, env.base()+"/portfolio/new", projectForm("Shop"),
		"shop.png", "image/png", tu.TestPNG(t, 50, 50))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	p := onlyProject(t, env)

	rec = env.postForm(env.base()+"/portfolio/not-a-uuid/delete", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.postForm(env.base()+"/portfolio/"+p.ID.String()+"/delete", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["success"])
	assert.NoFileExists(t, env.localFile(p.ImageURL))
	assert.NoFileExists(t, env.thumbFile(p.ImageURL))

	projects, err := env.queries.ListPortfolio(context.Background())
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestPortfolioAPIAndDashboard(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusSeeOther, env.postForm(env.base()+"/portfolio/new", projectForm("A")).Code)
	plain := projectForm("B")
	plain.Del("is_featured")
	plain.Set("price", "50000")
	require.Equal(t, http.StatusSeeOther, env.postForm(env.base()+"/portfolio/new", plain).Code)

	rec := env.get(env.base() + "/api/portfolio")
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]map[string]any](t, rec)
	require.Len(t, items, 2)
	assert.Equal(t, "2024-11-30", items[0]["completion_date"])
	assert.Contains(t, items[0], "image_info")

	dash := env.get(env.base() + "/")
	require.Equal(t, http.StatusOK, dash.Code)
	body := dash.Body.String()
	assert.Contains(t, body, "₽300 000", "total value of active projects")
	assert.Contains(t, body, "<span>2</span>active projects")
	assert.Contains(t, body, "<span>1</span>featured projects")
}
