// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package identity

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/samber/oops"
)

// Length limits of free-text values.
const (
	MaxDisplayNameLength = 255
	MaxDescriptionLength = 1000
)

// ErrInvalidText is wrapped by display name and description validation failures.
var ErrInvalidText = errors.New("invalid text value")

// DisplayName is a human readable, non-blank name.
type DisplayName string

// NewDisplayName trims and validates value.
func NewDisplayName(value string) (DisplayName, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", oops.Code("INVALID_DISPLAY_NAME").With("reason", "blank").Wrap(ErrInvalidText)
	}
	if utf8.RuneCountInString(value) > MaxDisplayNameLength {
		return "", oops.Code("INVALID_DISPLAY_NAME").With("maximum_length", MaxDisplayNameLength).Wrap(ErrInvalidText)
	}
	return DisplayName(value), nil
}

// String returns the display name.
func (d DisplayName) String() string { return string(d) }

// Description is free text; empty clears it.
type Description string

// NewDescription trims and validates value.
func NewDescription(value string) (Description, error) {
	value = strings.TrimSpace(value)
	if utf8.RuneCountInString(value) > MaxDescriptionLength {
		return "", oops.Code("INVALID_DESCRIPTION").With("maximum_length", MaxDescriptionLength).Wrap(ErrInvalidText)
	}
	return Description(value), nil
}

// String returns the description.
func (d Description) String() string { return string(d) }
