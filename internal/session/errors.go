// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package session

import (
	"errors"

	"github.com/samber/oops"
)

// Sentinel errors for errors.Is checks.
var (
	ErrIncorrectSecret = errors.New("incorrect session secret")
	ErrNotPersistent   = errors.New("session is not persistent")
	ErrNotActive       = errors.New("session is not active")
)

func incorrectSecret(id ID) error {
	return oops.Code("SESSION_INCORRECT_SECRET").With("session_id", id.String()).Wrap(ErrIncorrectSecret)
}

func notPersistent(id ID) error {
	return oops.Code("SESSION_NOT_PERSISTENT").With("session_id", id.String()).Wrap(ErrNotPersistent)
}

func notActive(id ID) error {
	return oops.Code("SESSION_NOT_ACTIVE").With("session_id", id.String()).Wrap(ErrNotActive)
}
