// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package user

import (
	"errors"

	"github.com/samber/oops"
)

// Sentinel errors for errors.Is checks.
var (
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrIsDisabled        = errors.New("user is disabled")
	ErrHasNoPassword     = errors.New("user has no password")
	ErrInvalidProfile    = errors.New("invalid profile field")
)

func incorrectPassword(id ID) error {
	return oops.Code("USER_INCORRECT_PASSWORD").With("user_id", id.String()).Wrap(ErrIncorrectPassword)
}

func isDisabled(id ID) error {
	return oops.Code("USER_IS_DISABLED").With("user_id", id.String()).Wrap(ErrIsDisabled)
}

func hasNoPassword(id ID) error {
	return oops.Code("USER_HAS_NO_PASSWORD").With("user_id", id.String()).Wrap(ErrHasNoPassword)
}

func invalidProfile(field, reason string) error {
	return oops.Code("INVALID_USER_PROFILE").
		With("field", field).
		With("reason", reason).
		Wrap(ErrInvalidProfile)
}
