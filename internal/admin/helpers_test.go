// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/studio-go/internal/imaging"
	"github.com/olegiv/studio-go/internal/metrics"
	"github.com/olegiv/studio-go/internal/model"
	"github.com/olegiv/studio-go/internal/render"
	"github.com/olegiv/studio-go/internal/service"
	"github.com/olegiv/studio-go/internal/session"
	"github.com/olegiv/studio-go/internal/store"
	tu "github.com/olegiv/studio-go/internal/testutil"
	"github.com/olegiv/studio-go/web"
)

// lockedBuffer is a bytes.Buffer safe for concurrent log writes.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testEnv struct {
	queries  *store.Queries
	registry *Registry
	metrics  *metrics.Metrics
	router   http.Handler
	uploads  string
	logs     *lockedBuffer
	user     model.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	q := store.New(tu.TestDB(t))
	logs := &lockedBuffer{}
	logger := slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	sm := session.New(nil, session.Options{})
	renderer, err := render.New(render.Config{TemplatesFS: web.TemplateFiles(), SessionManager: sm, SiteName: "Studio"})
	require.NoError(t, err)

	uploads := t.TempDir()
	m := metrics.New()
	reg := NewRegistry(Config{
		Queries:  q,
		Sessions: sm,
		Renderer: renderer,
		Uploader: imaging.NewUploader(uploads, logger),
		Users:    service.NewUsers(q, logger),
		Metrics:  m,
		Logger:   logger,
	})

	user := tu.TestSuperuser(t, q, "admin@example.com")
	require.NoError(t, reg.Refresh(context.Background()))

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Mount("/{secret}/admin", reg)

	return &testEnv{
		queries:  q,
		registry: reg,
		metrics:  m,
		router:   r,
		uploads:  uploads,
		logs:     logs,
		user:     user,
	}
}

func (e *testEnv) base() string {
	return "/" + e.user.SecretToken + "/admin"
}

func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	return e.serve(httptest.NewRequest(http.MethodGet, path, nil))
}

func (e *testEnv) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.serve(req)
}

// postMultipart posts fields plus an optional image_file.
func (e *testEnv) postMultipart(t *testing.T, path string, form url.Values, fileName, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vs := range form {
		for _, v := range vs {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	if fileName != "" {
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{`form-data; name="image_file"; filename="` + fileName + `"`}
		h["Content-Type"] = []string{contentType}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = io.Copy(part, bytes.NewReader(data))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.serve(req)
}

// localFile maps a public upload URL to its path on disk.
func (e *testEnv) localFile(publicPath string) string {
	rel := strings.TrimPrefix(publicPath, imaging.PublicPrefix)
	return filepath.Join(e.uploads, filepath.FromSlash(rel))
}

func (e *testEnv) thumbFile(publicPath string) string {
	full := e.localFile(publicPath)
	return filepath.Join(filepath.Dir(full), imaging.ThumbPrefix+filepath.Base(full))
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
