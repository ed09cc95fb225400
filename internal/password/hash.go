// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package password

import (
	"github.com/samber/oops"
)

// Decoder decodes encoded passwords. Manager implements it.
type Decoder interface {
	Decode(encoded string) (Password, error)
}

// Hash is a password as held by aggregates and their events. It serializes
// to the encoded form and is decoded on first verification, so replayed
// aggregates need a Decoder while freshly created ones do not.
type Hash struct {
	encoded string
	decoded Password
}

// HashOf wraps a password. A nil password yields the zero Hash.
func HashOf(p Password) Hash {
	if p == nil {
		return Hash{}
	}
	return Hash{encoded: p.Encode(), decoded: p}
}

// IsZero reports whether no password is held.
func (h Hash) IsZero() bool { return h.encoded == "" }

// Encoded returns the persisted form.
func (h Hash) Encoded() string { return h.encoded }

// Verify reports whether candidate matches. d is only consulted when the
// hash was loaded from its encoded form.
func (h Hash) Verify(candidate string, d Decoder) (bool, error) {
	if h.IsZero() {
		return false, oops.Code("PASSWORD_MISSING").Errorf("no password to verify against")
	}
	p := h.decoded
	if p == nil {
		if d == nil {
			return false, oops.Code("PASSWORD_DECODER_MISSING").
				With("strategy", StrategyKey(h.encoded)).
				Errorf("password decoder not configured")
		}
		var err error
		if p, err = d.Decode(h.encoded); err != nil {
			return false, err
		}
	}
	return p.IsMatch(candidate), nil
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.encoded), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(b []byte) error {
	*h = Hash{encoded: string(b)}
	return nil
}
