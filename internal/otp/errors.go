// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package otp

import (
	"errors"

	"github.com/samber/oops"
)

// Sentinel errors for errors.Is checks.
var (
	ErrIncorrectPassword      = errors.New("incorrect one-time password")
	ErrExpired                = errors.New("one-time password is expired")
	ErrMaximumAttemptsReached = errors.New("one-time password maximum attempts reached")
	ErrAlreadyUsed            = errors.New("one-time password was already used")
)

func incorrectPassword(id ID, attempts int) error {
	return oops.Code("OTP_INCORRECT_PASSWORD").
		With("otp_id", id.String()).
		With("attempt_count", attempts).
		Wrap(ErrIncorrectPassword)
}

func alreadyUsed(id ID) error {
	return oops.Code("OTP_ALREADY_USED").With("otp_id", id.String()).Wrap(ErrAlreadyUsed)
}
