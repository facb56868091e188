// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command studio serves the marketing site and its admin panel, and
// carries the maintenance commands that operate on the same database.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type command struct {
	name  string
	usage string
	run   func(args []string, stdout io.Writer) error
}

var commands = []command{
	{"serve", "start the HTTP server (default)", runServe},
	{"createsuperuser", "create an administrator [-email -password -name]", runCreateSuperuser},
	{"listusers", "list administrator accounts", runListUsers},
	{"regenerate-secret", "issue a new admin URL secret -email", runRegenerateSecret},
	{"deactivate-user", "disable an administrator -email [-activate]", runDeactivateUser},
	{"seed", "load default services and projects", runSeed},
	{"deploy-check", "verify config, database, migrations and directories", runDeployCheck},
	{"logstats", "summarize the log directory [-dir -top]", runLogStats},
	{"version", "print version information", runVersion},
}

func usage(w io.Writer) {
	_, _ = fmt.Fprintf(w, "Studio - marketing site and admin panel\n\n")
	_, _ = fmt.Fprintf(w, "Usage: %s [command] [options]\n\nCommands:\n", os.Args[0])
	for _, c := range commands {
		_, _ = fmt.Fprintf(w, "  %-18s %s\n", c.name, c.usage)
	}
	_, _ = fmt.Fprintf(w, "\nEnvironment Variables:\n")
	_, _ = fmt.Fprintf(w, "  APP_ENV        development|production|testing (default: development)\n")
	_, _ = fmt.Fprintf(w, "  SECRET_KEY     Session and CSRF key (required in production, min 32 bytes)\n")
	_, _ = fmt.Fprintf(w, "  DATABASE_URL   SQLite path or postgres:// URL\n")
	_, _ = fmt.Fprintf(w, "  LOG_DIR        Directory of per-topic log files (default: logs)\n")
}

func main() {
	// Load .env files if present (development)
	_ = godotenv.Load()

	if err := dispatch(os.Args[1:], os.Stdout); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func dispatch(args []string, stdout io.Writer) error {
	name := "serve"
	if len(args) > 0 {
		switch args[0] {
		case "help", "-h", "-help", "--help":
			usage(stdout)
			return nil
		}
		if !strings.HasPrefix(args[0], "-") {
			name, args = args[0], args[1:]
		}
	}
	for _, c := range commands {
		if c.name == name {
			return c.run(args, stdout)
		}
	}
	usage(os.Stderr)
	return fmt.Errorf("unknown command %q", name)
}
