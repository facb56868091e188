// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Ranked is a key (path or message) and how often it was seen.
type Ranked struct {
	Key   string
	Count int
}

// SlowRequest is a request that crossed the slow threshold.
type SlowRequest struct {
	Time       string
	Method     string
	Path       string
	DurationMS int64
}

// Report summarizes a log directory.
type Report struct {
	Files       int
	Records     int
	ParseErrors int
	ByLevel     map[string]int
	ByTopic     map[string]int
	TopPaths    []Ranked
	Slow        []SlowRequest
	TopErrors   []Ranked
}

type logLine struct {
	Time       string `json:"time"`
	Level      string `json:"level"`
	Msg        string `json:"msg"`
	Method     string `json:"method"`
	Path       string `json:"path"`
	Status     int    `json:"status"`
	DurationMS int64  `json:"duration_ms"`
}

// Analyze reads every topic file in dir, including rotated and gzipped
// ones, and summarizes it. top bounds the ranked lists.
func Analyze(dir string, top int) (*Report, error) {
	if top <= 0 {
		top = 10
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading log directory: %w", err)
	}

	rep := &Report{
		ByLevel: make(map[string]int),
		ByTopic: make(map[string]int),
	}
	paths := make(map[string]int)
	errorsByMsg := make(map[string]int)

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		topic, ok := topicOfFile(e.Name())
		if !ok {
			continue
		}
		rep.Files++
		if err := scanLogFile(filepath.Join(dir, e.Name()), func(l logLine, ok bool) {
			if !ok {
				rep.ParseErrors++
				return
			}
			rep.Records++
			rep.ByTopic[topic]++
			rep.ByLevel[l.Level]++

			// Requests are counted once, from their own topic.
			if topic == TopicRequests && strings.HasPrefix(l.Msg, "RESPONSE ") {
				paths[l.Path]++
				if l.DurationMS > SlowRequestThreshold.Milliseconds() {
					rep.Slow = append(rep.Slow, SlowRequest{
						Time: l.Time, Method: l.Method, Path: l.Path, DurationMS: l.DurationMS,
					})
				}
			}
			if topic == TopicErrors {
				errorsByMsg[l.Msg]++
			}
		}); err != nil {
			return nil, err
		}
	}

	rep.TopPaths = rank(paths, top)
	rep.TopErrors = rank(errorsByMsg, top)
	sort.Slice(rep.Slow, func(i, j int) bool { return rep.Slow[i].DurationMS > rep.Slow[j].DurationMS })
	if len(rep.Slow) > top {
		rep.Slow = rep.Slow[:top]
	}
	return rep, nil
}

// topicOfFile maps "requests.log", "requests.log.<stamp>" and
// "requests.log.<stamp>.gz" to "requests".
func topicOfFile(name string) (string, bool) {
	for _, t := range topicOrder {
		base := t + ".log"
		if name == base || isRotatedName(base, name) {
			return t, true
		}
	}
	return "", false
}

func scanLogFile(path string, fn func(logLine, bool)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("decompressing %s: %w", path, err)
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var l logLine
		if err := json.Unmarshal([]byte(line), &l); err != nil {
			fn(l, false)
			continue
		}
		fn(l, true)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

func rank(counts map[string]int, top int) []Ranked {
	out := make([]Ranked, 0, len(counts))
	for k, v := range counts {
		out = append(out, Ranked{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if len(out) > top {
		out = out[:top]
	}
	return out
}

// WriteText renders the report for a terminal.
func (r *Report) WriteText(w io.Writer) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "files: %d  records: %d  unparsable: %d\n", r.Files, r.Records, r.ParseErrors)

	sb.WriteString("\nby level:\n")
	for _, k := range sortedKeys(r.ByLevel) {
		fmt.Fprintf(&sb, "  %-8s %d\n", k, r.ByLevel[k])
	}
	sb.WriteString("\nby topic:\n")
	for _, k := range sortedKeys(r.ByTopic) {
		fmt.Fprintf(&sb, "  %-12s %d\n", k, r.ByTopic[k])
	}
	if len(r.TopPaths) > 0 {
		sb.WriteString("\ntop paths:\n")
		for _, p := range r.TopPaths {
			fmt.Fprintf(&sb, "  %6d  %s\n", p.Count, p.Key)
		}
	}
	if len(r.Slow) > 0 {
		sb.WriteString("\nslow requests:\n")
		for _, s := range r.Slow {
			fmt.Fprintf(&sb, "  %6dms  %s %s  (%s)\n", s.DurationMS, s.Method, s.Path, s.Time)
		}
	}
	if len(r.TopErrors) > 0 {
		sb.WriteString("\ntop errors:\n")
		for _, e := range r.TopErrors {
			fmt.Fprintf(&sb, "  %6d  %s\n", e.Count, e.Key)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
