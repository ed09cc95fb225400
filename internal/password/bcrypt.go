// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package password

import (
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// KeyBcrypt prefixes bcrypt passwords.
const KeyBcrypt = "BCRYPT"

// BcryptStrategy encodes "BCRYPT:{modular crypt hash}".
type BcryptStrategy struct {
	cost int
}

// NewBcryptStrategy creates the strategy. A cost of 0 selects bcrypt.DefaultCost.
func NewBcryptStrategy(cost int) *BcryptStrategy {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptStrategy{cost: cost}
}

// Key implements Strategy.
func (s *BcryptStrategy) Key() string { return KeyBcrypt }

// Create implements Strategy. Inputs longer than 72 bytes are rejected.
func (s *BcryptStrategy) Create(raw string) (Password, error) {
	if raw == "" {
		return nil, emptyPassword(KeyBcrypt)
	}
	sum, err := bcrypt.GenerateFromPassword([]byte(raw), s.cost)
	if err != nil {
		return nil, oops.Code("PASSWORD_HASH_FAILED").With("strategy", KeyBcrypt).Wrap(err)
	}
	return bcryptPassword(sum), nil
}

// Decode implements Strategy.
func (s *BcryptStrategy) Decode(encoded string) (Password, error) {
	rest, ok := strings.CutPrefix(encoded, KeyBcrypt+":")
	if !ok {
		return nil, malformed(KeyBcrypt, "strategy key")
	}
	if _, err := bcrypt.Cost([]byte(rest)); err != nil {
		return nil, malformed(KeyBcrypt, "hash")
	}
	return bcryptPassword(rest), nil
}

type bcryptPassword []byte

func (p bcryptPassword) Encode() string { return KeyBcrypt + ":" + string(p) }

func (p bcryptPassword) IsMatch(candidate string) bool {
	return bcrypt.CompareHashAndPassword(p, []byte(candidate)) == nil
}
