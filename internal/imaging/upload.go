// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mozillazg/go-unidecode"

	"github.com/olegiv/studio-go/internal/logging"
)

// MaxFileSize is the upload ceiling in bytes.
const MaxFileSize = 5 << 20

// PublicPrefix is the URL prefix uploads are served under.
const PublicPrefix = "/static/uploads/"

// ThumbPrefix is prepended to the main file name to name its thumbnail.
const ThumbPrefix = "thumb_"

// AllowedExtensions lists the accepted file extensions.
var AllowedExtensions = []string{"png", "jpg", "jpeg", "gif", "webp"}

var allowedMIME = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/gif":  true,
	"image/webp": true,
}

var categoryPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Validation messages shown next to the form field.
var (
	ErrNoFile       = errors.New("no file selected")
	ErrNoExtension  = errors.New("file must have an extension")
	ErrExtension    = fmt.Errorf("only these files are allowed: %s", strings.Join(AllowedExtensions, ", "))
	ErrMIME         = errors.New("unsupported file type")
	ErrTooLarge     = fmt.Errorf("file must not exceed %dMB", MaxFileSize>>20)
	ErrCorrupt      = errors.New("corrupt or invalid image file")
	ErrBadCategory  = errors.New("invalid upload category")
	errOutsideRoot  = errors.New("path outside the upload directory")
	errNotPublicURL = errors.New("not an uploaded file")
)

// Result is the outcome of an upload. On failure OK is false and Message
// says why; nothing has been written.
type Result struct {
	OK      bool
	Path    string
	Thumb   string
	Message string
}

func failed(err error) Result {
	return Result{Message: err.Error()}
}

// ImageInfo describes a stored upload.
type ImageInfo struct {
	Path   string  `json:"path"`
	Size   int64   `json:"size"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Format string  `json:"format"`
	SizeMB float64 `json:"size_mb"`
}

// Uploader stores images under root, one directory per category.
type Uploader struct {
	root   string
	logger *slog.Logger
}

// NewUploader returns an uploader writing below root.
func NewUploader(root string, logger *slog.Logger) *Uploader {
	return &Uploader{root: root, logger: logger.With(logging.LoggerKey, "files")}
}

// Root returns the upload directory.
func (u *Uploader) Root() string {
	return u.root
}

// UploadForm stores the multipart file fh. A nil fh is reported as no file.
func (u *Uploader) UploadForm(ctx context.Context, fh *multipart.FileHeader, category string) Result {
	if fh == nil {
		return failed(ErrNoFile)
	}
	f, err := fh.Open()
	if err != nil {
		return failed(fmt.Errorf("reading upload: %w", err))
	}
	defer func() { _ = f.Close() }()
	return u.Upload(ctx, fh.Filename, fh.Header.Get("Content-Type"), f, category)
}

// Upload validates the image read from r and stores the optimized main
// file followed by its thumbnail. A thumbnail failure is logged and leaves
// Thumb empty without failing the upload.
func (u *Uploader) Upload(ctx context.Context, name, contentType string, r io.Reader, category string) Result {
	if !categoryPattern.MatchString(category) {
		return failed(ErrBadCategory)
	}
	ext, err := validateName(name)
	if err != nil {
		return failed(err)
	}
	if err := validateMIME(contentType); err != nil {
		return failed(err)
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return failed(fmt.Errorf("reading upload: %w", err))
	}
	if len(data) > MaxFileSize {
		return failed(ErrTooLarge)
	}
	if detectFormat(data) == "" {
		return failed(ErrCorrupt)
	}

	start := time.Now()
	img, err := decode(data)
	if err != nil {
		u.logger.WarnContext(ctx, "image validation failed", "error", err, "file", unidecode.Unidecode(name))
		return failed(ErrCorrupt)
	}

	optimized, err := encode(optimize(img), outputFormat(ext), MainQuality)
	if err != nil {
		u.logger.ErrorContext(ctx, "image optimize failed", "error", err)
		return failed(fmt.Errorf("upload failed: %w", err))
	}

	dir := filepath.Join(u.root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		u.logger.ErrorContext(ctx, "creating upload directory", "error", err)
		return failed(fmt.Errorf("upload failed: %w", err))
	}

	id := uuid.New()
	fileName := hex.EncodeToString(id[:]) + "." + outputExt(ext)
	mainPath := filepath.Join(dir, fileName)
	if err := writeFile(mainPath, optimized); err != nil {
		u.logger.ErrorContext(ctx, "saving upload", "error", err)
		return failed(fmt.Errorf("upload failed: %w", err))
	}

	bounds := img.Bounds()
	logging.FileOperation(ctx, u.logger, "UPLOAD", mainPath, int64(len(optimized)), map[string]any{
		"original_name": unidecode.Unidecode(filepath.Base(name)),
		"category":      category,
		"width":         bounds.Dx(),
		"height":        bounds.Dy(),
	})

	res := Result{OK: true, Path: PublicPrefix + category + "/" + fileName}

	thumbName := ThumbPrefix + fileName
	thumb, err := encode(thumbnail(img), formatJPEG, ThumbnailQuality)
	if err == nil {
		err = writeFile(filepath.Join(dir, thumbName), thumb)
	}
	if err != nil {
		u.logger.WarnContext(ctx, "thumbnail not created", "error", err, "file", fileName)
	} else {
		res.Thumb = PublicPrefix + category + "/" + thumbName
		logging.FileOperation(ctx, u.logger, "THUMBNAIL", filepath.Join(dir, thumbName), int64(len(thumb)), nil)
	}

	if d := time.Since(start); d > logging.SlowRequestThreshold {
		logging.Performance(ctx, u.logger, "image processing", d, map[string]any{"file": fileName})
	}

	return res
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, `\`, "/")))
	if name == "" || name == "." || name == "/" {
		return "", ErrNoFile
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return "", ErrNoExtension
	}
	for _, a := range AllowedExtensions {
		if ext == a {
			return ext, nil
		}
	}
	return "", ErrExtension
}

func validateMIME(contentType string) error {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil || !allowedMIME[strings.ToLower(mt)] {
		return ErrMIME
	}
	return nil
}

// writeFile writes through a temp file so readers never see a partial image.
func writeFile(dst string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}

// resolve maps a public upload URL to a file below root. Only
// <category>/<name>.<ext> paths qualify, never a category directory.
func (u *Uploader) resolve(publicPath string) (string, error) {
	if !strings.HasPrefix(publicPath, PublicPrefix) {
		return "", errNotPublicURL
	}
	rel := path.Clean("/" + strings.TrimPrefix(publicPath, PublicPrefix))
	rel = strings.TrimPrefix(rel, "/")
	category, name, ok := strings.Cut(rel, "/")
	if !ok || !categoryPattern.MatchString(category) || name == "" ||
		strings.Contains(name, "/") || path.Ext(name) == "" {
		return "", errNotPublicURL
	}

	absRoot, err := filepath.Abs(u.root)
	if err != nil {
		return "", err
	}
	full := filepath.Join(absRoot, filepath.FromSlash(rel))
	r, err := filepath.Rel(absRoot, full)
	if err != nil || r == "." || strings.HasPrefix(r, "..") || filepath.IsAbs(r) {
		return "", errOutsideRoot
	}
	return full, nil
}

// IsManaged reports whether publicPath points into the upload directory.
func (u *Uploader) IsManaged(publicPath string) bool {
	_, err := u.resolve(publicPath)
	return err == nil
}

// Delete removes an uploaded file and its thumbnail. Paths that are not
// managed uploads, such as external URLs, are ignored.
func (u *Uploader) Delete(ctx context.Context, publicPath string) error {
	full, err := u.resolve(publicPath)
	if err != nil {
		return nil
	}

	thumb := filepath.Join(filepath.Dir(full), ThumbPrefix+filepath.Base(full))
	var errs []error
	for _, p := range []string{full, thumb} {
		info, statErr := os.Lstat(p)
		if statErr != nil || !info.Mode().IsRegular() {
			continue
		}
		if err := os.Remove(p); err != nil {
			errs = append(errs, fmt.Errorf("removing %s: %w", filepath.Base(p), err))
			continue
		}
		logging.FileOperation(ctx, u.logger, "DELETE", p, info.Size(), nil)
	}
	if len(errs) > 0 {
		err := errors.Join(errs...)
		u.logger.ErrorContext(ctx, "deleting upload failed", "error", err, "path", publicPath)
		return err
	}
	return nil
}

// Info reports size and dimensions of a stored upload. ok is false for
// unmanaged or missing files.
func (u *Uploader) Info(publicPath string) (info ImageInfo, ok bool) {
	full, err := u.resolve(publicPath)
	if err != nil {
		return ImageInfo{}, false
	}
	f, err := os.Open(full)
	if err != nil {
		return ImageInfo{}, false
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return ImageInfo{}, false
	}
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return ImageInfo{}, false
	}
	return ImageInfo{
		Path:   publicPath,
		Size:   st.Size(),
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: strings.ToUpper(format),
		SizeMB: float64(int64(float64(st.Size())/(1<<20)*100+0.5)) / 100,
	}, true
}
