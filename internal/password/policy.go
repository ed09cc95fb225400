// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package password

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/oops"

	"github.com/holomush/identity/internal/settings"
)

// Policy failure names reported in the "failures" context of PASSWORD_INVALID.
const (
	FailureTooShort           = "too_short"
	FailureTooFewUniqueChars  = "too_few_unique_chars"
	FailureMissingNonAlphanum = "missing_non_alphanumeric"
	FailureMissingLowercase   = "missing_lowercase"
	FailureMissingUppercase   = "missing_uppercase"
	FailureMissingDigit       = "missing_digit"
)

// CheckPolicy returns the policy rules raw breaks, in a stable order.
func CheckPolicy(raw string, p settings.PasswordSettings) []string {
	var failures []string
	if utf8.RuneCountInString(raw) < p.RequiredLength {
		failures = append(failures, FailureTooShort)
	}
	if p.RequiredUniqueChars > 0 && uniqueRunes(raw) < p.RequiredUniqueChars {
		failures = append(failures, FailureTooFewUniqueChars)
	}
	if p.RequireNonAlphanumeric && !strings.ContainsFunc(raw, isNonAlphanumeric) {
		failures = append(failures, FailureMissingNonAlphanum)
	}
	if p.RequireLowercase && !strings.ContainsFunc(raw, unicode.IsLower) {
		failures = append(failures, FailureMissingLowercase)
	}
	if p.RequireUppercase && !strings.ContainsFunc(raw, unicode.IsUpper) {
		failures = append(failures, FailureMissingUppercase)
	}
	if p.RequireDigit && !strings.ContainsFunc(raw, isASCIIDigit) {
		failures = append(failures, FailureMissingDigit)
	}
	return failures
}

// ValidatePolicy fails with PASSWORD_INVALID when raw breaks the policy.
// The password itself is never part of the error.
func ValidatePolicy(raw string, p settings.PasswordSettings) error {
	if failures := CheckPolicy(raw, p); len(failures) > 0 {
		return oops.Code("PASSWORD_INVALID").
			With("failures", failures).
			Wrap(ErrInvalidPassword)
	}
	return nil
}

func uniqueRunes(s string) int {
	seen := make(map[rune]struct{}, len(s))
	for _, r := range s {
		seen[r] = struct{}{}
	}
	return len(seen)
}

func isASCIIDigit(r rune) bool { return r >= '0' && r <= '9' }

func isNonAlphanumeric(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
