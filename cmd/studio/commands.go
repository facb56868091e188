// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/olegiv/studio-go/internal/auth"
	"github.com/olegiv/studio-go/internal/config"
	"github.com/olegiv/studio-go/internal/logging"
	"github.com/olegiv/studio-go/internal/model"
	"github.com/olegiv/studio-go/internal/service"
	"github.com/olegiv/studio-go/internal/store"
	"github.com/olegiv/studio-go/internal/version"
)

// stdin feeds interactive prompts.
var stdin io.Reader = os.Stdin

const reloadHint = "Send SIGHUP to a running server (or restart it) to apply the change."

func runCreateSuperuser(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("createsuperuser", flag.ContinueOnError)
	email := fs.String("email", "", "administrator email")
	password := fs.String("password", "", "password (prompted when empty)")
	name := fs.String("name", "", "display name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := bufio.NewReader(stdin)
	var err error
	if *email == "" {
		if *email, err = prompt(in, stdout, "Email: "); err != nil {
			return err
		}
	}
	if *password == "" {
		if *password, err = prompt(in, stdout, "Password: "); err != nil {
			return err
		}
		confirm, err := prompt(in, stdout, "Password (again): ")
		if err != nil {
			return err
		}
		if confirm != *password {
			return errors.New("passwords do not match")
		}
	}

	a, err := bootstrap(os.Stderr)
	if err != nil {
		return err
	}
	defer a.close()

	users := service.NewUsers(a.queries, a.pipeline.Named("admin"))
	u, err := users.CreateSuperuser(context.Background(), service.NewSuperuser{
		Email:    *email,
		Password: *password,
		FullName: *name,
	})
	if err != nil {
		return fmt.Errorf("creating superuser: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "Superuser %s created.\nAdmin URL: %s\n%s\n", u.Email, u.AdminPath(), reloadHint)
	return nil
}

func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	_, _ = fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func runListUsers(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("listusers", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := bootstrap(os.Stderr)
	if err != nil {
		return err
	}
	defer a.close()

	users, err := service.NewUsers(a.queries, a.logger).List(context.Background())
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}
	if len(users) == 0 {
		_, _ = fmt.Fprintln(stdout, "No users.")
		return nil
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "EMAIL\tNAME\tSUPERUSER\tACTIVE\tLAST LOGIN\tADMIN SECRET")
	for _, u := range users {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			u.Email, u.FullName, yesNo(u.IsSuperuser), yesNo(u.IsActive), lastLogin(u), auth.MaskSecret(u.SecretToken))
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func lastLogin(u model.User) string {
	if !u.LastLogin.Valid {
		return "never"
	}
	return u.LastLogin.Time.Format("2006-01-02 15:04")
}

func runRegenerateSecret(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("regenerate-secret", flag.ContinueOnError)
	email := fs.String("email", "", "administrator email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("-email is required")
	}

	a, err := bootstrap(os.Stderr)
	if err != nil {
		return err
	}
	defer a.close()

	u, err := service.NewUsers(a.queries, a.pipeline.Named("admin")).RegenerateSecretByEmail(context.Background(), *email)
	if err != nil {
		return fmt.Errorf("regenerating secret: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "New admin URL for %s: %s\n%s\n", u.Email, u.AdminPath(), reloadHint)
	return nil
}

func runDeactivateUser(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("deactivate-user", flag.ContinueOnError)
	email := fs.String("email", "", "administrator email")
	activate := fs.Bool("activate", false, "re-enable the account instead")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("-email is required")
	}

	a, err := bootstrap(os.Stderr)
	if err != nil {
		return err
	}
	defer a.close()

	u, err := service.NewUsers(a.queries, a.pipeline.Named("admin")).SetActive(context.Background(), *email, *activate)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	state := "deactivated"
	if u.IsActive {
		state = "activated"
	}
	_, _ = fmt.Fprintf(stdout, "User %s %s.\n%s\n", u.Email, state, reloadHint)
	return nil
}

func runSeed(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := bootstrap(os.Stderr)
	if err != nil {
		return err
	}
	defer a.close()

	res, err := store.SeedDefaults(context.Background(), a.queries, a.pipeline.Named("database"))
	if err != nil {
		return fmt.Errorf("seeding: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "Seeded %d services and %d portfolio projects.\n", res.Services, res.Portfolio)
	return nil
}

// checkResult is one line of the deploy-check report.
type checkResult struct {
	name string
	err  error
	note string
}

func runDeployCheck(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("deploy-check", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	results := deployChecks(context.Background())
	failed := 0
	for _, r := range results {
		status := "OK  "
		detail := r.note
		if r.err != nil {
			status = "FAIL"
			detail = r.err.Error()
			failed++
		}
		_, _ = fmt.Fprintf(stdout, "[%s] %-12s %s\n", status, r.name, detail)
	}
	if failed > 0 {
		return fmt.Errorf("%d deploy check(s) failed", failed)
	}
	_, _ = fmt.Fprintln(stdout, "All checks passed.")
	return nil
}

// deployChecks inspects the deployment without changing it: migrations
// are reported, not applied.
func deployChecks(ctx context.Context) []checkResult {
	cfg, err := config.Load()
	if err != nil {
		return []checkResult{{name: "config", err: err}}
	}
	results := []checkResult{{name: "config", note: "environment " + cfg.Env}}

	driver := cfg.DatabaseDriver()
	db, err := store.Open(driver, cfg.DatabaseDSN())
	if err == nil {
		defer func() { _ = db.Close() }()
		err = db.PingContext(ctx)
	}
	results = append(results, checkResult{name: "database", err: err, note: driver})

	if err == nil {
		current, latest, err := store.MigrationStatus(db, driver)
		if err == nil && current < latest {
			err = fmt.Errorf("schema at version %d, latest is %d", current, latest)
		}
		results = append(results, checkResult{name: "migrations", err: err, note: fmt.Sprintf("version %d", current)})

		if err == nil {
			admins, err := store.NewForDriver(db, driver).ListActiveSuperusers(ctx)
			if err == nil && len(admins) == 0 {
				err = errors.New("no active superuser")
			}
			results = append(results, checkResult{name: "superuser", err: err, note: fmt.Sprintf("%d active", len(admins))})
		}
	}

	results = append(results,
		checkResult{name: "uploads", err: checkWritable(cfg.UploadsPath()), note: cfg.UploadsPath()},
		checkResult{name: "logs", err: checkWritable(cfg.LogDir), note: cfg.LogDir},
	)
	return results
}

func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".deploy-check-*")
	if err != nil {
		return fmt.Errorf("%s is not writable: %w", dir, err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(filepath.Clean(name))
}

func runLogStats(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("logstats", flag.ContinueOnError)
	dir := fs.String("dir", "", "log directory (default: LOG_DIR)")
	top := fs.Int("top", 10, "entries per ranked list")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dir == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		*dir = cfg.LogDir
	}

	rep, err := logging.Analyze(*dir, *top)
	if err != nil {
		return err
	}
	return rep.WriteText(stdout)
}

func runVersion(_ []string, stdout io.Writer) error {
	_, err := fmt.Fprintf(stdout, "studio %s (api %s)\n", version.Current(), version.APIVersion)
	return err
}
