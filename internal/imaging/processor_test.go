// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// createTestImage creates a simple test image with the given dimensions.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func jpegBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encoding jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"png", pngBytes(t, createTestImage(4, 4)), formatPNG},
		{"jpeg", jpegBytes(t, createTestImage(4, 4)), formatJPEG},
		{"gif", []byte("GIF89a\x01\x00\x01\x00"), formatGIF},
		{"tiff rejected", []byte("II*\x00\x08\x00\x00\x00"), ""},
		{"text", []byte("hello world"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectFormat(tt.data); got != tt.want {
				t.Errorf("detectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOptimizeBoundsWithoutUpscaling(t *testing.T) {
	big := optimize(createTestImage(2400, 1200))
	if b := big.Bounds(); b.Dx() != 1920 || b.Dy() != 960 {
		t.Errorf("optimized size = %dx%d, want 1920x960", b.Dx(), b.Dy())
	}

	small := optimize(createTestImage(200, 100))
	if b := small.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("small image resized to %dx%d", b.Dx(), b.Dy())
	}
}

func TestThumbnailIsSquare(t *testing.T) {
	for _, size := range [][2]int{{800, 200}, {120, 90}} {
		th := thumbnail(createTestImage(size[0], size[1]))
		if b := th.Bounds(); b.Dx() != ThumbSize || b.Dy() != ThumbSize {
			t.Errorf("thumbnail of %v = %dx%d", size, b.Dx(), b.Dy())
		}
	}
}

func TestApplyOrientation(t *testing.T) {
	img := createTestImage(40, 20)
	tests := map[int][2]int{
		1: {40, 20},
		3: {40, 20},
		6: {20, 40},
		8: {20, 40},
	}
	for o, want := range tests {
		b := applyOrientation(img, o).Bounds()
		if b.Dx() != want[0] || b.Dy() != want[1] {
			t.Errorf("orientation %d: %dx%d, want %dx%d", o, b.Dx(), b.Dy(), want[0], want[1])
		}
	}
	if got := readExifOrientation(bytes.NewReader(pngBytes(t, img))); got != 1 {
		t.Errorf("orientation without EXIF = %d, want 1", got)
	}
}

func TestFlattenOntoWhite(t *testing.T) {
	transparent := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	out := flatten(transparent)
	r, g, b, a := out.At(0, 0).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 || a>>8 != 255 {
		t.Errorf("transparent pixel flattened to %d,%d,%d,%d", r>>8, g>>8, b>>8, a>>8)
	}
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		ext, format, stored string
	}{
		{"png", formatPNG, "png"},
		{"gif", formatGIF, "gif"},
		{"jpg", formatJPEG, "jpg"},
		{"jpeg", formatJPEG, "jpeg"},
		{"webp", formatJPEG, "jpg"},
	}
	for _, tt := range tests {
		if got := outputFormat(tt.ext); got != tt.format {
			t.Errorf("outputFormat(%q) = %q, want %q", tt.ext, got, tt.format)
		}
		if got := outputExt(tt.ext); got != tt.stored {
			t.Errorf("outputExt(%q) = %q, want %q", tt.ext, got, tt.stored)
		}
	}
}
