// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package password

import (
	"crypto/rand"
	"math/big"

	"github.com/samber/oops"
)

// Character sets for generated secrets.
const (
	SecretCharacters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	DigitCharacters  = "0123456789"
)

// RandomString returns length characters drawn uniformly from characters
// using crypto/rand.
func RandomString(characters string, length int) (string, error) {
	alphabet := []rune(characters)
	if len(alphabet) == 0 || length <= 0 {
		return "", oops.Code("PASSWORD_GENERATION_INVALID").
			With("characters", len(alphabet)).
			With("length", length).
			Errorf("character set and length must be non-empty")
	}
	limit := big.NewInt(int64(len(alphabet)))
	out := make([]rune, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", oops.Code("PASSWORD_GENERATION_FAILED").
				With("operation", "crypto/rand.Int").
				Wrap(err)
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}
