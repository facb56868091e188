// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"context"
	"image"
	"image/color"
	_ "image/jpeg"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func newTestUploader(t *testing.T) *Uploader {
	t.Helper()
	return NewUploader(filepath.Join(t.TempDir(), "uploads"), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func storedFiles(t *testing.T, u *Uploader) []string {
	t.Helper()
	var files []string
	_ = filepath.Walk(u.Root(), func(p string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	return files
}

var uploadedName = regexp.MustCompile(`^/static/uploads/portfolio/[0-9a-f]{32}\.png$`)

func TestUpload_Success(t *testing.T) {
	u := newTestUploader(t)
	data := pngBytes(t, createTestImage(2400, 1200))

	res := u.Upload(context.Background(), "Проект.PNG", "image/png", bytes.NewReader(data), "portfolio")
	if !res.OK {
		t.Fatalf("upload failed: %s", res.Message)
	}
	if !uploadedName.MatchString(res.Path) {
		t.Errorf("Path = %q", res.Path)
	}
	wantThumb := "/static/uploads/portfolio/thumb_" + filepath.Base(res.Path)
	if res.Thumb != wantThumb {
		t.Errorf("Thumb = %q, want %q", res.Thumb, wantThumb)
	}

	info, ok := u.Info(res.Path)
	if !ok {
		t.Fatal("Info not found for uploaded file")
	}
	if info.Width != 1920 || info.Height != 960 || info.Format != "PNG" {
		t.Errorf("main image info = %+v", info)
	}

	thumb, ok := u.Info(res.Thumb)
	if !ok {
		t.Fatal("thumbnail missing")
	}
	if thumb.Width != ThumbSize || thumb.Height != ThumbSize || thumb.Format != "JPEG" {
		t.Errorf("thumbnail info = %+v", thumb)
	}
	if n := len(storedFiles(t, u)); n != 2 {
		t.Errorf("stored %d files, want 2", n)
	}
}

func TestUpload_TransparentPNGAsJPEGIsFlattened(t *testing.T) {
	u := newTestUploader(t)
	img := image.NewNRGBA(image.Rect(0, 0, 50, 50))
	img.Set(25, 25, color.NRGBA{R: 255, A: 255})

	res := u.Upload(context.Background(), "logo.jpg", "image/jpeg", bytes.NewReader(pngBytes(t, img)), "services")
	if !res.OK {
		t.Fatalf("upload failed: %s", res.Message)
	}
	if !strings.HasSuffix(res.Path, ".jpg") {
		t.Errorf("Path = %q, want .jpg", res.Path)
	}

	f, err := os.Open(filepath.Join(u.Root(), "services", filepath.Base(res.Path)))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	stored, format, err := image.Decode(f)
	if err != nil {
		t.Fatalf("decoding stored file: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("stored format = %q", format)
	}
	r, g, b, _ := stored.At(0, 0).RGBA()
	if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Errorf("corner pixel = %d,%d,%d, want near white", r>>8, g>>8, b>>8)
	}
}

func TestUpload_Rejections(t *testing.T) {
	valid := pngBytes(t, createTestImage(10, 10))
	tests := []struct {
		name        string
		file        string
		contentType string
		data        []byte
		category    string
		want        error
	}{
		{"no file", "", "image/png", valid, "portfolio", ErrNoFile},
		{"no extension", "photo", "image/png", valid, "portfolio", ErrNoExtension},
		{"bad extension", "photo.bmp", "image/png", valid, "portfolio", ErrExtension},
		{"bad mime", "photo.png", "text/plain", valid, "portfolio", ErrMIME},
		{"too large", "photo.png", "image/png", bytes.Repeat([]byte{0}, MaxFileSize+1), "portfolio", ErrTooLarge},
		{"corrupt", "photo.png", "image/png", []byte("\x89PNG\r\n\x1a\nnot really a png"), "portfolio", ErrCorrupt},
		{"not an image", "photo.png", "image/png", []byte("plain text"), "portfolio", ErrCorrupt},
		{"bad category", "photo.png", "image/png", valid, "../etc", ErrBadCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := newTestUploader(t)
			res := u.Upload(context.Background(), tt.file, tt.contentType, bytes.NewReader(tt.data), tt.category)
			if res.OK {
				t.Fatal("upload unexpectedly succeeded")
			}
			if res.Message != tt.want.Error() {
				t.Errorf("Message = %q, want %q", res.Message, tt.want.Error())
			}
			if res.Path != "" || res.Thumb != "" {
				t.Errorf("failed upload returned paths %q %q", res.Path, res.Thumb)
			}
			if files := storedFiles(t, u); len(files) != 0 {
				t.Errorf("rejected upload wrote %v", files)
			}
		})
	}
}

func TestUploadForm(t *testing.T) {
	u := newTestUploader(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="shot.jpeg"`)
	h.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write(jpegBytes(t, createTestImage(64, 32)))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatal(err)
	}
	_, fh, err := req.FormFile("image")
	if err != nil {
		t.Fatal(err)
	}

	res := u.UploadForm(context.Background(), fh, "portfolio")
	if !res.OK || !strings.HasSuffix(res.Path, ".jpeg") {
		t.Errorf("UploadForm = %+v", res)
	}

	if res := u.UploadForm(context.Background(), nil, "portfolio"); res.OK || res.Message != ErrNoFile.Error() {
		t.Errorf("nil header = %+v", res)
	}
}

func TestDelete(t *testing.T) {
	u := newTestUploader(t)
	ctx := context.Background()
	res := u.Upload(ctx, "a.png", "image/png", bytes.NewReader(pngBytes(t, createTestImage(20, 20))), "services")
	if !res.OK {
		t.Fatalf("upload failed: %s", res.Message)
	}

	// Unmanaged paths are ignored.
	for _, p := range []string{"", "https://cdn.example.com/a.png", "/static/img/logo.png", "/static/uploads/../../secret.txt", "/static/uploads/"} {
		if err := u.Delete(ctx, p); err != nil {
			t.Errorf("Delete(%q) = %v", p, err)
		}
	}
	if n := len(storedFiles(t, u)); n != 2 {
		t.Fatalf("unmanaged deletes removed files, %d left", n)
	}

	if err := u.Delete(ctx, res.Path); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if files := storedFiles(t, u); len(files) != 0 {
		t.Errorf("files left after delete: %v", files)
	}
	// Deleting again is harmless.
	if err := u.Delete(ctx, res.Path); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestDeleteLeavesCategoryDirectory(t *testing.T) {
	u := newTestUploader(t)
	ctx := context.Background()
	dir := filepath.Join(u.Root(), "services")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	for _, p := range []string{"/static/uploads/services", "/static/uploads/services/", "/static/uploads/services/."} {
		if err := u.Delete(ctx, p); err != nil {
			t.Errorf("Delete(%q) = %v", p, err)
		}
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("category directory removed: %v", err)
	}

	// A directory posing as an image is not removed either.
	if err := os.Mkdir(filepath.Join(dir, "fake.png"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := u.Delete(ctx, "/static/uploads/services/fake.png"); err != nil {
		t.Errorf("Delete(fake.png) = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "fake.png")); err != nil {
		t.Errorf("directory named like an image removed: %v", err)
	}
}

func TestIsManagedAndInfo(t *testing.T) {
	u := newTestUploader(t)
	if u.IsManaged("https://example.com/x.png") {
		t.Error("external URL reported as managed")
	}
	if !u.IsManaged("/static/uploads/portfolio/x.png") {
		t.Error("upload path not reported as managed")
	}
	for _, p := range []string{"/static/uploads/portfolio", "/static/uploads/portfolio/", "/static/uploads/x.png", "/static/uploads/portfolio/nested/x.png", "/static/uploads/portfolio/noext"} {
		if u.IsManaged(p) {
			t.Errorf("IsManaged(%q) = true, want false", p)
		}
	}
	if _, ok := u.Info("/static/uploads/portfolio/missing.png"); ok {
		t.Error("Info found a missing file")
	}
}
