// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging validates uploaded images, normalizes them and derives
// square thumbnails, all with pure Go codecs.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

// Image bounds and encoder settings.
const (
	MaxWidth         = 1920
	MaxHeight        = 1080
	ThumbSize        = 300
	MainQuality      = 85
	ThumbnailQuality = 80
)

// Supported formats as reported by detectFormat.
const (
	formatJPEG = "jpeg"
	formatPNG  = "png"
	formatGIF  = "gif"
	formatWebP = "webp"
)

// detectFormat sniffs the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// TIFF decoding in disintegration/imaging is unsafe on hostile input.
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return formatJPEG
	case strings.Contains(contentType, "png"):
		return formatPNG
	case strings.Contains(contentType, "gif"):
		return formatGIF
	case strings.Contains(contentType, "webp"):
		return formatWebP
	default:
		return ""
	}
}

// decode parses data and applies its EXIF orientation.
func decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return applyOrientation(img, readExifOrientation(bytes.NewReader(data))), nil
}

// readExifOrientation returns 1 when no orientation tag is present.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return o
}

func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// flatten composites img onto an opaque white canvas.
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// optimize bounds the main image to MaxWidth x MaxHeight without upscaling.
func optimize(img image.Image) image.Image {
	return imaging.Fit(img, MaxWidth, MaxHeight, imaging.Lanczos)
}

// thumbnail center-crops img to a ThumbSize square.
func thumbnail(img image.Image) image.Image {
	return imaging.Fill(flatten(img), ThumbSize, ThumbSize, imaging.Center, imaging.Lanczos)
}

// encode writes img in format. Formats without a pure Go encoder are
// written as JPEG; callers pick the stored extension with outputExt.
func encode(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case formatPNG:
		err = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	case formatGIF:
		err = imaging.Encode(&buf, img, imaging.GIF)
	default:
		err = imaging.Encode(&buf, flatten(img), imaging.JPEG, imaging.JPEGQuality(quality))
	}
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// outputFormat maps a validated extension to the format actually written.
func outputFormat(ext string) string {
	switch ext {
	case "png":
		return formatPNG
	case "gif":
		return formatGIF
	default:
		return formatJPEG
	}
}

// outputExt is the extension stored on disk for an uploaded extension.
func outputExt(ext string) string {
	if ext == "webp" {
		return "jpg"
	}
	return ext
}
