// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/robfig/cron/v3"
)

// RetentionSchedule is the cron expression for the rotated-file sweep.
const RetentionSchedule = "@daily"

// Pipeline is the logging context built once at startup: the topic sinks,
// the console sink and the root logger handed to the rest of the program.
type Pipeline struct {
	settings Settings
	handler  *TopicHandler
	logger   *slog.Logger
	files    map[string]*RotatingFile
	skipped  map[string]error
	cron     *cron.Cron
}

// New builds the pipeline. A topic whose file cannot be opened is skipped
// and reported on the console; construction itself never fails. When no
// sink survives, the console is forced on so records are not lost.
func New(settings Settings, console io.Writer) *Pipeline {
	p := &Pipeline{
		settings: settings,
		files:    make(map[string]*RotatingFile),
		skipped:  make(map[string]error),
	}

	h := &TopicHandler{
		floor:    settings.Level,
		failures: new(atomic.Int64),
	}

	opts := &slog.HandlerOptions{
		AddSource:   true,
		Level:       slog.LevelDebug,
		ReplaceAttr: replaceAttr,
	}

	for _, topic := range topicOrder {
		tc, ok := settings.Topics[topic]
		if !ok {
			continue
		}
		path := filepath.Join(settings.Dir, topic+".log")
		rf, err := OpenRotatingFile(path, tc.Rotation, tc.Retention, settings.Compress)
		if err != nil {
			p.skipped[topic] = err
			continue
		}
		p.files[topic] = rf
		h.sinks = append(h.sinks, topicSink{
			topic:   topic,
			level:   tc.Level,
			filter:  FilterFor(topic),
			handler: slog.NewJSONHandler(rf, opts),
		})
	}

	consoleCfg := settings.Console
	if len(h.sinks) == 0 && !consoleCfg.Enabled {
		consoleCfg.Enabled = true
		consoleCfg.Level = slog.LevelWarn
	}
	if consoleCfg.Enabled && console != nil {
		h.console = slog.NewTextHandler(console, &slog.HandlerOptions{
			AddSource:   consoleCfg.Format == FormatDetailed,
			Level:       slog.LevelDebug,
			ReplaceAttr: replaceAttr,
		})
		h.consoleLevel = consoleCfg.Level
	}

	p.handler = h
	p.logger = slog.New(h)

	for topic, err := range p.skipped {
		p.logger.Warn("log sink disabled", "topic", topic, "error", err)
	}

	return p
}

// Logger returns the root logger.
func (p *Pipeline) Logger() *slog.Logger {
	return p.logger
}

// Named returns a logger whose records carry the component name that
// topic filters (database, admin) match on.
func (p *Pipeline) Named(name string) *slog.Logger {
	return p.logger.With(LoggerKey, name)
}

// Handler exposes the routing handler.
func (p *Pipeline) Handler() *TopicHandler {
	return p.handler
}

// Settings returns the policy the pipeline was built from.
func (p *Pipeline) Settings() Settings {
	return p.settings
}

// Skipped lists topics whose sinks could not be opened.
func (p *Pipeline) Skipped() map[string]error {
	out := make(map[string]error, len(p.skipped))
	for k, v := range p.skipped {
		out[k] = v
	}
	return out
}

// Topics lists the topics with an open sink, in table order.
func (p *Pipeline) Topics() []string {
	var topics []string
	for _, t := range topicOrder {
		if _, ok := p.files[t]; ok {
			topics = append(topics, t)
		}
	}
	return topics
}

// InstallDefault makes the pipeline the process-wide slog default, which
// also routes the standard log package through it.
func (p *Pipeline) InstallDefault() {
	slog.SetDefault(p.logger)
}

// StdLogger returns a *log.Logger that re-emits through the pipeline at
// level, for libraries such as net/http that only accept the standard type.
func (p *Pipeline) StdLogger(name string, level slog.Level) *log.Logger {
	return slog.NewLogLogger(p.handler.WithAttrs([]slog.Attr{slog.String(LoggerKey, name)}), level)
}

// StartRetention schedules the periodic sweep of expired rotated files.
func (p *Pipeline) StartRetention() error {
	if p.cron != nil {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(RetentionSchedule, func() {
		if n, err := p.Prune(); err != nil {
			p.logger.Error("log retention sweep failed", "error", err)
		} else if n > 0 {
			p.logger.Info("log retention sweep", "removed", n)
		}
	}); err != nil {
		return fmt.Errorf("scheduling log retention: %w", err)
	}
	c.Start()
	p.cron = c
	return nil
}

// Prune removes expired rotated files for every topic.
func (p *Pipeline) Prune() (int, error) {
	total := 0
	var errs []error
	for topic, rf := range p.files {
		n, err := rf.Prune()
		total += n
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", topic, err))
		}
	}
	return total, errors.Join(errs...)
}

// Close stops the retention sweep and closes every sink file.
func (p *Pipeline) Close() error {
	if p.cron != nil {
		<-p.cron.Stop().Done()
		p.cron = nil
	}
	var errs []error
	for topic, rf := range p.files {
		if err := rf.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", topic, err))
		}
	}
	return errors.Join(errs...)
}
