// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"
)

// Thresholds for performance records.
const (
	SlowRequestThreshold = time.Second
	perfWarnThreshold    = 2 * time.Second
	perfErrorThreshold   = 5 * time.Second
)

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}

func detailsAttr(details map[string]any) []any {
	if len(details) == 0 {
		return nil
	}
	return []any{slog.Any("details", RedactMap(details))}
}

// StatusLevel maps an HTTP status to the level its request record uses.
func StatusLevel(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// RequestEvent records a completed request.
func RequestEvent(ctx context.Context, l *slog.Logger, method, path, addr string, status int, d time.Duration) {
	msg := fmt.Sprintf("REQUEST %s %s from %s -> %d (%ss)", method, path, addr, status, seconds(d))
	args := []any{
		"method", method,
		"path", path,
		"remote_addr", addr,
		"status", status,
		"duration_ms", d.Milliseconds(),
	}
	if d > SlowRequestThreshold {
		args = append(args, "slow", true)
	}
	l.Log(ctx, StatusLevel(status), msg, args...)
}

// SecurityEvent records an authentication or access-control event.
func SecurityEvent(ctx context.Context, l *slog.Logger, event, userID, addr string, details map[string]any) {
	if userID == "" {
		userID = "anonymous"
	}
	msg := fmt.Sprintf("SECURITY %s user:%s from %s", event, userID, addr)
	args := append([]any{"event", event, "user_id", userID, "remote_addr", addr}, detailsAttr(details)...)
	l.WarnContext(ctx, msg, args...)
}

// AdminAction records a mutation performed through the admin panel.
func AdminAction(ctx context.Context, l *slog.Logger, action, resource, resourceID, userID string, details map[string]any) {
	msg := fmt.Sprintf("ADMIN %s %s id:%s by user:%s", action, resource, resourceID, userID)
	args := append([]any{
		"action", action,
		"resource", resource,
		"resource_id", resourceID,
		"user_id", userID,
	}, detailsAttr(details)...)
	l.InfoContext(ctx, msg, args...)
}

// FileOperation records an upload, deletion or other file event.
func FileOperation(ctx context.Context, l *slog.Logger, op, path string, size int64, details map[string]any) {
	msg := fmt.Sprintf("FILE %s %s (%.2fMB)", op, filepath.Base(path), float64(size)/(1<<20))
	args := append([]any{"operation", op, "file", path, "size", size}, detailsAttr(details)...)
	l.InfoContext(ctx, msg, args...)
}

// Performance records a timed operation; slower operations log at higher levels.
func Performance(ctx context.Context, l *slog.Logger, op string, d time.Duration, details map[string]any) {
	level := slog.LevelInfo
	switch {
	case d > perfErrorThreshold:
		level = slog.LevelError
	case d > perfWarnThreshold:
		level = slog.LevelWarn
	}
	msg := fmt.Sprintf("PERFORMANCE %s took %ss", op, seconds(d))
	args := append([]any{"operation", op, "duration_ms", d.Milliseconds()}, detailsAttr(details)...)
	l.Log(ctx, level, msg, args...)
}
