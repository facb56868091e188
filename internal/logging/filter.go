// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"log/slog"
	"strings"
)

// Entry is the part of a record topic filters look at.
type Entry struct {
	Level   slog.Level
	Message string
	Logger  string
}

// Filter decides whether an entry belongs to a topic.
type Filter func(Entry) bool

// Keyword sets matched against the upper-cased message.
var (
	securityKeywords    = []string{"AUTH", "LOGIN", "LOGOUT", "SECURITY", "ADMIN", "JWT", "UNAUTHORIZED", "FORBIDDEN", "ACCESS"}
	adminKeywords       = []string{"ADMIN", "CREATE", "UPDATE", "DELETE", "MANAGE"}
	fileKeywords        = []string{"UPLOAD", "DOWNLOAD", "FILE", "IMAGE", "DELETE", "OPTIMIZE", "THUMBNAIL"}
	performanceKeywords = []string{"SLOW", "PERFORMANCE", "TIME", "DURATION", "LATENCY", "TIMEOUT"}
	requestKeywords     = []string{"REQUEST", "RESPONSE", "GET", "POST", "PUT", "DELETE", "PATCH"}
	databaseLoggers     = []string{"database", "db", "sql"}
)

// FilterFor returns the routing filter of a topic. Unknown topics accept everything.
func FilterFor(topic string) Filter {
	switch topic {
	case TopicSecurity:
		return keywordFilter(securityKeywords)
	case TopicAdmin:
		kw := keywordFilter(adminKeywords)
		return func(e Entry) bool {
			return kw(e) || strings.Contains(strings.ToLower(e.Logger), "admin")
		}
	case TopicFiles:
		return keywordFilter(fileKeywords)
	case TopicPerformance:
		return keywordFilter(performanceKeywords)
	case TopicRequests:
		return keywordFilter(requestKeywords)
	case TopicDatabase:
		return func(e Entry) bool {
			name := strings.ToLower(e.Logger)
			for _, n := range databaseLoggers {
				if strings.Contains(name, n) {
					return true
				}
			}
			return false
		}
	case TopicErrors:
		return func(e Entry) bool { return e.Level >= slog.LevelError }
	default:
		return func(Entry) bool { return true }
	}
}

func keywordFilter(keywords []string) Filter {
	return func(e Entry) bool {
		msg := strings.ToUpper(e.Message)
		for _, kw := range keywords {
			if strings.Contains(msg, kw) {
				return true
			}
		}
		return false
	}
}
