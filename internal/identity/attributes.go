// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package identity

import (
	"errors"
	"maps"
	"unicode/utf8"

	"github.com/samber/oops"
)

// MaxCustomIdentifierLength bounds custom attribute keys and custom identifier keys.
const MaxCustomIdentifierLength = 64

// MaxCustomValueLength bounds custom attribute and custom identifier values.
const MaxCustomValueLength = 1024

// ErrInvalidCustomIdentifier is wrapped by custom identifier validation failures.
var ErrInvalidCustomIdentifier = errors.New("invalid custom identifier")

// CustomIdentifier is a key of custom attributes and of user custom identifiers:
// ASCII letters, digits, '_' and '-'.
type CustomIdentifier string

// NewCustomIdentifier validates value.
func NewCustomIdentifier(value string) (CustomIdentifier, error) {
	if value == "" || utf8.RuneCountInString(value) > MaxCustomIdentifierLength {
		return "", oops.Code("INVALID_CUSTOM_IDENTIFIER").
			With("custom_identifier", value).
			With("maximum_length", MaxCustomIdentifierLength).
			Wrap(ErrInvalidCustomIdentifier)
	}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return "", oops.Code("INVALID_CUSTOM_IDENTIFIER").
				With("custom_identifier", value).
				With("character", string(r)).
				Wrap(ErrInvalidCustomIdentifier)
		}
	}
	return CustomIdentifier(value), nil
}

// String returns the identifier.
func (c CustomIdentifier) String() string { return string(c) }

// Validate applies the NewCustomIdentifier rules to c.
func (c CustomIdentifier) Validate() error {
	_, err := NewCustomIdentifier(string(c))
	return err
}

// CustomAttributes maps custom identifiers to values.
type CustomAttributes map[CustomIdentifier]string

// CustomAttributesPatch is a sparse update: a nil value removes the key, a
// non-nil value sets it, absent keys are untouched.
type CustomAttributesPatch map[CustomIdentifier]*string

// Set records key=value in the patch and returns the patch.
func (p CustomAttributesPatch) Set(key CustomIdentifier, value string) CustomAttributesPatch {
	p[key] = &value
	return p
}

// Remove records the removal of key in the patch and returns the patch.
func (p CustomAttributesPatch) Remove(key CustomIdentifier) CustomAttributesPatch {
	p[key] = nil
	return p
}

// Validate checks keys and value lengths.
func (p CustomAttributesPatch) Validate() error {
	for k, v := range p {
		if err := k.Validate(); err != nil {
			return err
		}
		if v != nil && utf8.RuneCountInString(*v) > MaxCustomValueLength {
			return oops.Code("INVALID_CUSTOM_ATTRIBUTE").
				With("custom_identifier", string(k)).
				With("maximum_length", MaxCustomValueLength).
				Errorf("custom attribute value too long")
		}
	}
	return nil
}

// Apply returns a copy of a with the patch applied. a is not modified.
func (a CustomAttributes) Apply(p CustomAttributesPatch) CustomAttributes {
	out := make(CustomAttributes, len(a)+len(p))
	maps.Copy(out, a)
	for k, v := range p {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = *v
	}
	return out
}

// Clone returns a copy of a.
func (a CustomAttributes) Clone() CustomAttributes {
	out := make(CustomAttributes, len(a))
	maps.Copy(out, a)
	return out
}
