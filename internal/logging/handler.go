// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging routes slog records to per-topic sinks. Each sink has
// its own level, keyword filter, rotation size and retention, and the
// policy table is chosen by deployment environment.
package logging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// LoggerKey is the attribute naming the component that emitted a record.
const LoggerKey = "logger"

type topicSink struct {
	topic   string
	level   slog.Level
	filter  Filter
	handler slog.Handler
}

// TopicHandler is a slog.Handler that fans a record out to every topic
// sink whose level and filter accept it, plus an optional console handler.
// A failing sink never prevents delivery to the others.
type TopicHandler struct {
	floor        slog.Level
	sinks        []topicSink
	console      slog.Handler
	consoleLevel slog.Level
	logger       string
	failures     *atomic.Int64
}

// Enabled implements slog.Handler.
func (h *TopicHandler) Enabled(_ context.Context, level slog.Level) bool {
	if level < h.floor {
		return false
	}
	if h.console != nil && level >= h.consoleLevel {
		return true
	}
	for _, s := range h.sinks {
		if level >= s.level {
			return true
		}
	}
	return false
}

// Handle implements slog.Handler.
func (h *TopicHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level < h.floor {
		return nil
	}

	id, actor := RequestID(ctx), Actor(ctx)
	if id != "" || actor != "" {
		r = r.Clone()
		if id != "" {
			r.AddAttrs(slog.String("request_id", id))
		}
		if actor != "" {
			r.AddAttrs(slog.String("actor_id", actor))
		}
	}

	entry := Entry{Level: r.Level, Message: r.Message, Logger: h.logger}

	var errs []error
	for _, s := range h.sinks {
		if r.Level < s.level || !s.filter(entry) {
			continue
		}
		if err := s.handler.Handle(ctx, r); err != nil {
			h.failures.Add(1)
			errs = append(errs, fmt.Errorf("%s sink: %w", s.topic, err))
		}
	}

	if h.console != nil && r.Level >= h.consoleLevel {
		if err := h.console.Handle(ctx, r); err != nil {
			h.failures.Add(1)
			errs = append(errs, fmt.Errorf("console: %w", err))
		}
	}

	return errors.Join(errs...)
}

// WithAttrs implements slog.Handler. A "logger" attribute also becomes
// the name topic filters match on.
func (h *TopicHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	for _, a := range attrs {
		if a.Key == LoggerKey {
			next.logger = a.Value.String()
		}
	}
	for i := range next.sinks {
		next.sinks[i].handler = next.sinks[i].handler.WithAttrs(attrs)
	}
	if next.console != nil {
		next.console = next.console.WithAttrs(attrs)
	}
	return next
}

// WithGroup implements slog.Handler.
func (h *TopicHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	for i := range next.sinks {
		next.sinks[i].handler = next.sinks[i].handler.WithGroup(name)
	}
	if next.console != nil {
		next.console = next.console.WithGroup(name)
	}
	return next
}

func (h *TopicHandler) clone() *TopicHandler {
	sinks := make([]topicSink, len(h.sinks))
	copy(sinks, h.sinks)
	return &TopicHandler{
		floor:        h.floor,
		sinks:        sinks,
		console:      h.console,
		consoleLevel: h.consoleLevel,
		logger:       h.logger,
		failures:     h.failures,
	}
}

// Failures returns how many sink writes have failed since start.
func (h *TopicHandler) Failures() int64 {
	return h.failures.Load()
}
