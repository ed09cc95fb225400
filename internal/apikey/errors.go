// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package apikey

import (
	"errors"
	"time"

	"github.com/samber/oops"
)

// Sentinel errors for errors.Is checks.
var (
	ErrIncorrectSecret       = errors.New("incorrect api key secret")
	ErrExpired               = errors.New("api key is expired")
	ErrExpirationPostponed   = errors.New("api key expiration cannot be postponed")
	ErrExpirationNotInFuture = errors.New("api key expiration must be in the future")
)

func incorrectSecret(id ID) error {
	return oops.Code("API_KEY_INCORRECT_SECRET").With("api_key_id", id.String()).Wrap(ErrIncorrectSecret)
}

func expired(id ID, expiresOn time.Time) error {
	return oops.Code("API_KEY_EXPIRED").
		With("api_key_id", id.String()).
		With("expires_on", expiresOn).
		Wrap(ErrExpired)
}
