// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRotatingFile_RotatesAndCompresses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	rf, err := OpenRotatingFile(path, 16, 0, true)
	if err != nil {
		t.Fatalf("OpenRotatingFile: %v", err)
	}
	defer func() { _ = rf.Close() }()

	if _, err := rf.Write([]byte("first line 1234\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := rf.Write([]byte("second line\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	current, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading active file: %v", err)
	}
	if string(current) != "second line\n" {
		t.Errorf("active file = %q, want only the second line", current)
	}

	rotated, err := filepath.Glob(path + ".*.gz")
	if err != nil || len(rotated) != 1 {
		t.Fatalf("rotated files = %v, %v; want one .gz", rotated, err)
	}

	f, err := os.Open(rotated[0])
	if err != nil {
		t.Fatalf("open rotated: %v", err)
	}
	defer func() { _ = f.Close() }()
	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	body, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("reading rotated: %v", err)
	}
	if string(body) != "first line 1234\n" {
		t.Errorf("rotated body = %q", body)
	}
}

func TestRotatingFile_WithoutCompression(t *testing.T) {
	path := filepath.Join(t.TempDir(), "files.log")
	rf, err := OpenRotatingFile(path, 8, 0, false)
	if err != nil {
		t.Fatalf("OpenRotatingFile: %v", err)
	}
	defer func() { _ = rf.Close() }()

	_, _ = rf.Write([]byte("aaaaaaa\n"))
	_, _ = rf.Write([]byte("bbbbbbb\n"))

	matches, _ := filepath.Glob(path + ".*")
	if len(matches) != 1 || strings.HasSuffix(matches[0], ".gz") {
		t.Errorf("rotated files = %v, want one plain file", matches)
	}
}

func TestRotatingFile_OversizedFirstWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	rf, err := OpenRotatingFile(path, 4, 0, false)
	if err != nil {
		t.Fatalf("OpenRotatingFile: %v", err)
	}
	defer func() { _ = rf.Close() }()

	// An empty file accepts one record even if it exceeds the limit.
	if _, err := rf.Write([]byte("a long record\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	matches, _ := filepath.Glob(path + ".*")
	if len(matches) != 0 {
		t.Errorf("unexpected rotation: %v", matches)
	}
}

func TestRotatingFile_Prune(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "security.log")

	rf, err := OpenRotatingFile(path, 1024, time.Hour, false)
	if err != nil {
		t.Fatalf("OpenRotatingFile: %v", err)
	}
	defer func() { _ = rf.Close() }()

	old := path + ".20250101-000000.000000000"
	if err := os.WriteFile(old, []byte("old\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	fresh := path + ".20250102-000000.000000000"
	if err := os.WriteFile(fresh, []byte("fresh\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	n, err := rf.Prune()
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Errorf("Prune removed %d, want 1", n)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("expired file still present")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh file was removed")
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("active file was removed")
	}
}

func TestRotatingFile_WriteAfterClose(t *testing.T) {
	rf, err := OpenRotatingFile(filepath.Join(t.TempDir(), "app.log"), 0, 0, false)
	if err != nil {
		t.Fatalf("OpenRotatingFile: %v", err)
	}
	if err := rf.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := rf.Write([]byte("x")); err == nil {
		t.Error("expected error writing to a closed file")
	}
	if err := rf.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestRotatingFile_KeepsWritingAfterFailedCompression(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	rf, err := OpenRotatingFile(path, 16, 0, true)
	if err != nil {
		t.Fatalf("OpenRotatingFile: %v", err)
	}
	defer func() { _ = rf.Close() }()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rf.now = func() time.Time { return now }

	// A directory where the archive would go makes compression fail.
	rotated := path + "." + now.Format(rotatedStampLayout)
	if err := os.Mkdir(rotated+".gz", 0o755); err != nil {
		t.Fatal(err)
	}

	if _, err := rf.Write([]byte("first line 1234\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	n, err := rf.Write([]byte("second line\n"))
	if err == nil {
		t.Error("expected the compression failure to be reported")
	}
	if n != len("second line\n") {
		t.Errorf("Write wrote %d bytes, want the record written anyway", n)
	}

	kept, err := os.ReadFile(rotated)
	if err != nil {
		t.Fatalf("uncompressed rotated file missing: %v", err)
	}
	if string(kept) != "first line 1234\n" {
		t.Errorf("rotated body = %q", kept)
	}

	if err := os.Remove(rotated + ".gz"); err != nil {
		t.Fatal(err)
	}
	now = now.Add(time.Second)
	if _, err := rf.Write([]byte("third line 12345\n")); err != nil {
		t.Fatalf("Write after recovery: %v", err)
	}

	current, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading active file: %v", err)
	}
	if string(current) != "third line 12345\n" {
		t.Errorf("active file = %q, want the third line", current)
	}
	archives, _ := filepath.Glob(path + ".*.gz")
	if len(archives) != 1 {
		t.Errorf("archives = %v, want one", archives)
	}
}

func TestRotatingFile_KeepsWritingAfterFailedRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	rf, err := OpenRotatingFile(path, 8, 0, false)
	if err != nil {
		t.Fatalf("OpenRotatingFile: %v", err)
	}
	defer func() { _ = rf.Close() }()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rf.now = func() time.Time { return now }

	// A non-empty directory at the target name makes the rename fail.
	target := path + "." + now.Format(rotatedStampLayout)
	if err := os.MkdirAll(filepath.Join(target, "busy"), 0o755); err != nil {
		t.Fatal(err)
	}

	_, _ = rf.Write([]byte("aaaaaaa\n"))
	if _, err := rf.Write([]byte("bbbbbbb\n")); err == nil {
		t.Error("expected the rename failure to be reported")
	}
	if _, err := rf.Write([]byte("c\n")); err != nil && !strings.Contains(err.Error(), "renaming") {
		t.Fatalf("sink stopped accepting writes: %v", err)
	}

	current, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading active file: %v", err)
	}
	if !strings.Contains(string(current), "c\n") {
		t.Errorf("active file = %q, want later records appended", current)
	}
}
