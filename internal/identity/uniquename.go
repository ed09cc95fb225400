// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package identity

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/samber/oops"

	"github.com/holomush/identity/internal/settings"
)

// ErrInvalidUniqueName is wrapped by unique name validation failures.
var ErrInvalidUniqueName = errors.New("invalid unique name")

// MaxUniqueNameLength is the hard bound on unique names regardless of tenant settings.
const MaxUniqueNameLength = 255

// UniqueName is a user or role name unique per tenant, compared case-insensitively.
type UniqueName string

// NewUniqueName validates value against the tenant's unique name settings.
func NewUniqueName(value string, s settings.UniqueNameSettings) (UniqueName, error) {
	if value == "" {
		return "", oops.Code("INVALID_UNIQUE_NAME").With("reason", "empty").Wrap(ErrInvalidUniqueName)
	}
	if s.MaximumLength > 0 && utf8.RuneCountInString(value) > s.MaximumLength {
		return "", oops.Code("INVALID_UNIQUE_NAME").
			With("unique_name", value).
			With("maximum_length", s.MaximumLength).
			Wrap(ErrInvalidUniqueName)
	}
	if s.AllowedCharacters != "" {
		for _, r := range value {
			if !strings.ContainsRune(s.AllowedCharacters, r) {
				return "", oops.Code("INVALID_UNIQUE_NAME").
					With("unique_name", value).
					With("character", string(r)).
					Wrap(ErrInvalidUniqueName)
			}
		}
	}
	return UniqueName(value), nil
}

// Validate checks the tenant-independent constraints of n: non-empty and at
// most MaxUniqueNameLength runes. Aggregates call it on names they are handed.
func (n UniqueName) Validate() error {
	if n == "" {
		return oops.Code("INVALID_UNIQUE_NAME").With("reason", "empty").Wrap(ErrInvalidUniqueName)
	}
	if utf8.RuneCountInString(string(n)) > MaxUniqueNameLength {
		return oops.Code("INVALID_UNIQUE_NAME").
			With("unique_name", string(n)).
			With("maximum_length", MaxUniqueNameLength).
			Wrap(ErrInvalidUniqueName)
	}
	return nil
}

// String returns the unique name as entered.
func (n UniqueName) String() string { return string(n) }

// Matches reports whether n and other denote the same name.
func (n UniqueName) Matches(other UniqueName) bool {
	return strings.EqualFold(string(n), string(other))
}
