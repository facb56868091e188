// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// secretBytes of entropy encode to SecretTokenLength URL-safe characters.
const (
	secretBytes       = 48
	SecretTokenLength = 64
)

// NewSecretToken returns a fresh URL-safe admin secret.
func NewSecretToken() (string, error) {
	b := make([]byte, secretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating secret token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// MaskSecret shortens a secret for logs and error pages: at most the first
// ten characters, and never more than half of it, followed by "...".
func MaskSecret(secret string) string {
	visible := min(10, len(secret)/2)
	return secret[:visible] + "..."
}
