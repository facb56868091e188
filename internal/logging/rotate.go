// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const rotatedStampLayout = "20060102-150405.000000000"

// RotatingFile is an append-only log file that rotates once it would grow
// past maxSize. Rotated files are renamed with a timestamp suffix, gzipped
// when compress is set, and deleted once older than retention.
type RotatingFile struct {
	mu        sync.Mutex
	path      string
	maxSize   int64
	retention time.Duration
	compress  bool
	file      *os.File
	size      int64
	now       func() time.Time
}

// OpenRotatingFile opens (or creates) path for appending.
func OpenRotatingFile(path string, maxSize int64, retention time.Duration, compress bool) (*RotatingFile, error) {
	if maxSize <= 0 {
		maxSize = defaultRotation
	}
	rf := &RotatingFile{
		path:      path,
		maxSize:   maxSize,
		retention: retention,
		compress:  compress,
		now:       time.Now,
	}
	if err := rf.open(); err != nil {
		return nil, err
	}
	return rf, nil
}

func (rf *RotatingFile) open() error {
	if err := os.MkdirAll(filepath.Dir(rf.path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(rf.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	rf.file = f
	rf.size = info.Size()
	return nil
}

// Path returns the active file path.
func (rf *RotatingFile) Path() string {
	return rf.path
}

// Write implements io.Writer.
func (rf *RotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.file == nil {
		return 0, os.ErrClosed
	}
	var rotateErr error
	if rf.size > 0 && rf.size+int64(len(p)) > rf.maxSize {
		rotateErr = rf.rotate()
		if rf.file == nil {
			return 0, rotateErr
		}
	}

	n, err := rf.file.Write(p)
	rf.size += int64(n)
	if err != nil {
		return n, err
	}
	return n, rotateErr
}

// rotate must be called with rf.mu held. The active path is always
// reopened, even when the rename or compression fails; a rotated file that
// cannot be compressed stays plain.
func (rf *RotatingFile) rotate() error {
	var errs []error
	rotated := rf.path + "." + rf.now().UTC().Format(rotatedStampLayout)

	if err := rf.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing log file: %w", err))
	} else if err := os.Rename(rf.path, rotated); err != nil {
		errs = append(errs, fmt.Errorf("renaming log file: %w", err))
	} else if rf.compress {
		if err := gzipFile(rotated); err != nil {
			errs = append(errs, err)
		}
	}
	rf.file = nil

	if err := rf.open(); err != nil {
		return errors.Join(append(errs, err)...)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	_, err := rf.prune()
	return err
}

// Prune deletes rotated files older than the retention period.
func (rf *RotatingFile) Prune() (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.prune()
}

func (rf *RotatingFile) prune() (int, error) {
	if rf.retention <= 0 {
		return 0, nil
	}
	matches, err := filepath.Glob(rf.path + ".*")
	if err != nil {
		return 0, err
	}

	cutoff := rf.now().Add(-rf.retention)
	removed := 0
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
				return removed, fmt.Errorf("removing %s: %w", m, err)
			}
			removed++
		}
	}
	return removed, nil
}

// Close implements io.Closer.
func (rf *RotatingFile) Close() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	if rf.file == nil {
		return nil
	}
	err := rf.file.Close()
	rf.file = nil
	return err
}

func gzipFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening rotated log: %w", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(path+".gz", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating compressed log: %w", err)
	}

	zw := gzip.NewWriter(dst)
	zw.Name = filepath.Base(path)
	_, err = io.Copy(zw, src)
	if err == nil {
		err = zw.Close()
	}
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path + ".gz")
		return fmt.Errorf("compressing log: %w", err)
	}
	return os.Remove(path)
}

// isRotatedName reports whether name is a rotated sibling of base.
func isRotatedName(base, name string) bool {
	return strings.HasPrefix(name, base+".") && name != base
}
