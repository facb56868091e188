// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds account operations shared by the admin panel and
// the command line tools.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/studio-go/internal/auth"
	"github.com/olegiv/studio-go/internal/logging"
	"github.com/olegiv/studio-go/internal/model"
	"github.com/olegiv/studio-go/internal/store"
)

// Account errors.
var (
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	ErrInvalidEmail   = errors.New("invalid email address")
	ErrWeakPassword   = fmt.Errorf("password must be at least %d characters", auth.MinPasswordLength)
	ErrUserNotFound   = errors.New("user not found")

	errHashMismatch = errors.New("password hash does not verify")
)

// NewSuperuser is the input of CreateSuperuser.
type NewSuperuser struct {
	Email    string
	Password string
	FullName string
}

// Users manages administrator accounts.
type Users struct {
	queries *store.Queries
	logger  *slog.Logger
	now     func() time.Time
}

// NewUsers creates the account service.
func NewUsers(q *store.Queries, logger *slog.Logger) *Users {
	return &Users{queries: q, logger: logger, now: time.Now}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" || len(email) > model.MaxEmailLength {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}

// CreateSuperuser creates an active superuser with a fresh admin secret.
func (s *Users) CreateSuperuser(ctx context.Context, in NewSuperuser) (model.User, error) {
	email := NormalizeEmail(in.Email)
	if err := validateEmail(email); err != nil {
		return model.User{}, err
	}
	if len(in.Password) < auth.MinPasswordLength {
		return model.User{}, ErrWeakPassword
	}

	if _, err := s.queries.GetUserByEmail(ctx, email); err == nil {
		return model.User{}, ErrDuplicateEmail
	} else if !errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("checking email: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return model.User{}, err
	}
	if ok, err := auth.CheckPassword(in.Password, hash); err != nil {
		return model.User{}, fmt.Errorf("verifying password hash: %w", err)
	} else if !ok {
		return model.User{}, errHashMismatch
	}
	secret, err := auth.NewSecretToken()
	if err != nil {
		return model.User{}, err
	}

	name := strings.TrimSpace(in.FullName)
	if name == "" {
		name = model.DefaultFullName
	}

	u := model.User{
		Entity:       model.NewEntity(s.now()),
		Email:        email,
		PasswordHash: hash,
		SecretToken:  secret,
		IsSuperuser:  true,
		IsActive:     true,
		FullName:     name,
	}
	if err := s.queries.CreateUser(ctx, u); err != nil {
		return model.User{}, fmt.Errorf("creating user: %w", err)
	}

	logging.SecurityEvent(ctx, s.logger, "SUPERUSER_CREATED", u.ID.String(), "local",
		map[string]any{"email": email})
	return u, nil
}

// RegenerateSecret replaces the admin secret of the user with id. The
// old namespace stops resolving once the admin registry is refreshed.
func (s *Users) RegenerateSecret(ctx context.Context, id uuid.UUID) (model.User, error) {
	u, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("loading user: %w", err)
	}

	secret, err := auth.NewSecretToken()
	if err != nil {
		return model.User{}, err
	}
	now := s.now()
	if err := s.queries.UpdateUserSecret(ctx, u.ID, secret, now); err != nil {
		return model.User{}, fmt.Errorf("updating secret: %w", err)
	}

	logging.SecurityEvent(ctx, s.logger, "ADMIN_SECRET_REGENERATED", u.ID.String(), "local",
		map[string]any{"old_prefix": auth.MaskSecret(u.SecretToken)})

	u.SecretToken = secret
	u.Touch(now)
	return u, nil
}

// RegenerateSecretByEmail is RegenerateSecret keyed by email.
func (s *Users) RegenerateSecretByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := s.queries.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("loading user: %w", err)
	}
	return s.RegenerateSecret(ctx, u.ID)
}

// List returns every account.
func (s *Users) List(ctx context.Context) ([]model.User, error) {
	return s.queries.ListUsers(ctx)
}

// SetActive enables or disables the account with email. A disabled
// account keeps its secret, but its namespace is dropped on the next
// admin registry refresh and the guard rejects it immediately.
func (s *Users) SetActive(ctx context.Context, email string, active bool) (model.User, error) {
	u, err := s.queries.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("loading user: %w", err)
	}

	now := s.now()
	if err := s.queries.SetUserActive(ctx, u.ID, active, now); err != nil {
		return model.User{}, fmt.Errorf("updating user: %w", err)
	}

	event := "USER_DEACTIVATED"
	if active {
		event = "USER_ACTIVATED"
	}
	logging.SecurityEvent(ctx, s.logger, event, u.ID.String(), "local",
		map[string]any{"email": u.Email})

	u.IsActive = active
	u.Touch(now)
	return u, nil
}
