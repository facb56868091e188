// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render parses the embedded page templates and renders them with
// the site's helper functions.
package render

import (
	"bytes"
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alexedwards/scs/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/olegiv/studio-go/internal/model"
	"github.com/olegiv/studio-go/internal/session"
)

// Template sets. Each page directory is parsed against its own layout.
const (
	publicLayout = "layouts/base.html"
	adminLayout  = "layouts/admin.html"
	partialsDir  = "partials"
)

// Renderer handles template rendering with caching.
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
	siteName       string
	md             goldmark.Markdown
	policy         *bluemonday.Policy
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	SiteName       string
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		siteName:       cfg.SiteName,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		policy: bluemonday.UGCPolicy(),
	}

	partials, err := templateFiles(cfg.TemplatesFS, partialsDir)
	if err != nil {
		return nil, fmt.Errorf("getting partials: %w", err)
	}
	if err := r.parseSet(cfg.TemplatesFS, "pages", publicLayout, partials); err != nil {
		return nil, err
	}
	if err := r.parseSet(cfg.TemplatesFS, "admin", adminLayout, partials); err != nil {
		return nil, err
	}
	return r, nil
}

// parseSet parses every page in dir as "<dir>/<name>" on top of layout.
func (r *Renderer) parseSet(fsys fs.FS, dir, layout string, partials []string) error {
	pages, err := templateFiles(fsys, dir)
	if err != nil {
		return fmt.Errorf("getting %s templates: %w", dir, err)
	}
	for _, p := range pages {
		name := dir + "/" + strings.TrimSuffix(path.Base(p), ".html")

		files := append([]string{layout}, partials...)
		files = append(files, p)

		tmpl, err := template.New("").Funcs(r.templateFuncs()).ParseFS(fsys, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}
		r.templates[name] = tmpl
	}
	return nil
}

// templateFiles returns all .html files in a directory. A missing directory is empty.
func templateFiles(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, nil
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".html") {
			files = append(files, path.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// Has reports whether a template was parsed under name.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// Markdown converts user-authored markdown into sanitized HTML.
func (r *Renderer) Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())) // #nosec G203 -- sanitized by bluemonday
}

func (r *Renderer) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"markdown": r.Markdown,
		"formatDate": func(t time.Time) string {
			return t.Format(model.DateLayout)
		},
		"formatDateTime": func(t time.Time) string {
			return t.Format("02 Jan 2006 15:04")
		},
		"lastLogin": func(t sql.NullTime) string {
			if !t.Valid {
				return "never"
			}
			return t.Time.Format("02 Jan 2006 15:04")
		},
		"dateInput": func(t sql.NullTime) string {
			if !t.Valid {
				return ""
			}
			return t.Time.Format(time.DateOnly)
		},
		"floatInput": func(v sql.NullFloat64) string {
			if !v.Valid {
				return ""
			}
			return fmt.Sprintf("%g", v.Float64)
		},
		"price":         model.FormatPrice,
		"categoryColor": model.CategoryColor,
		"truncate": func(s string, n int) string {
			if utf8.RuneCountInString(s) <= n {
				return s
			}
			return string([]rune(s)[:n]) + "..."
		},
		"at": func(items []string, i int) string {
			if i < 0 || i >= len(items) {
				return ""
			}
			return items[i]
		},
		"seq": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i
			}
			return out
		},
		"add": func(a, b int) int { return a + b },
		"humanStatus": func(s string) string {
			return strings.ReplaceAll(s, "_", " ")
		},
	}
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	SiteName    string
	Data        any
	Flash       string
	FlashType   string
	CurrentYear int
	// AdminBase is the caller's namespace root, e.g. "/<secret>/admin".
	AdminBase string
	User      *model.User
	Error     string
}

// Render renders a template with the given status.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.CurrentYear = time.Now().Year()
	if data.SiteName == "" {
		data.SiteName = r.siteName
	}
	if r.sessionManager != nil && data.Flash == "" {
		data.FlashType, data.Flash = session.PopFlash(req, r.sessionManager)
	}

	// Render to a buffer so a template error never sends a half page.
	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
