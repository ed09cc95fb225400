// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package password hashes and verifies secrets: user passwords, session and
// API key secrets and one-time passwords.
//
// A Password is an immutable encoded hash "{strategy key}:{fields}". The
// Strategy named by the prefix creates and decodes it; Manager picks the
// strategy configured for a tenant and enforces the password policy.
package password

import (
	"errors"
	"strings"

	"github.com/samber/oops"
)

// Sentinel errors for errors.Is checks.
var (
	ErrStrategyNotSupported = errors.New("password strategy not supported")
	ErrMalformedHash        = errors.New("malformed password hash")
	ErrInvalidPassword      = errors.New("password does not satisfy the policy")
	ErrEmptyPassword        = errors.New("password cannot be empty")
)

// Password is an encoded password hash.
type Password interface {
	// Encode returns the persisted form, prefixed with the strategy key.
	Encode() string
	// IsMatch reports whether candidate hashes to this password, in constant time.
	IsMatch(candidate string) bool
}

// Strategy creates and decodes the passwords of one hashing scheme.
type Strategy interface {
	// Key is the prefix of encoded passwords, e.g. "PBKDF2".
	Key() string
	// Create hashes raw with a fresh salt.
	Create(raw string) (Password, error)
	// Decode parses an encoded password without re-hashing.
	Decode(encoded string) (Password, error)
}

// StrategyKey returns the strategy prefix of an encoded password.
func StrategyKey(encoded string) string {
	key, _, _ := strings.Cut(encoded, ":")
	return key
}

func emptyPassword(strategy string) error {
	return oops.Code("PASSWORD_EMPTY").With("strategy", strategy).Wrap(ErrEmptyPassword)
}

func malformed(strategy, reason string) error {
	return oops.Code("PASSWORD_MALFORMED").
		With("strategy", strategy).
		With("reason", reason).
		Wrap(ErrMalformedHash)
}

// fields splits an encoded password into n fields after checking the key.
func fields(encoded, key string, n int) ([]string, error) {
	parts := strings.Split(encoded, ":")
	if len(parts) != n {
		return nil, malformed(key, "field count")
	}
	if parts[0] != key {
		return nil, malformed(key, "strategy key")
	}
	return parts[1:], nil
}
