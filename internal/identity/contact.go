// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package identity

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/samber/oops"
)

var e164 = regexp.MustCompile(`^\+[1-9][0-9]{1,14}$`)

// EmailAddress is a bare RFC 5322 address, without display name.
type EmailAddress string

// NewEmailAddress validates value. The domain part is lower-cased.
func NewEmailAddress(value string) (EmailAddress, error) {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Name != "" || addr.Address != value {
		return "", oops.Code("INVALID_EMAIL").With("email", value).Errorf("invalid email address")
	}
	local, domain, _ := strings.Cut(addr.Address, "@")
	return EmailAddress(local + "@" + strings.ToLower(domain)), nil
}

// String returns the address.
func (e EmailAddress) String() string { return string(e) }

// Matches compares addresses case-insensitively.
func (e EmailAddress) Matches(other EmailAddress) bool {
	return strings.EqualFold(string(e), string(other))
}

// PhoneNumber is an E.164 number such as +15551234567.
type PhoneNumber string

// NewPhoneNumber validates value.
func NewPhoneNumber(value string) (PhoneNumber, error) {
	if !e164.MatchString(value) {
		return "", oops.Code("INVALID_PHONE_NUMBER").With("phone_number", value).Errorf("phone number must be in E.164 format")
	}
	return PhoneNumber(value), nil
}

// String returns the number.
func (p PhoneNumber) String() string { return string(p) }

// Address is a postal address.
type Address struct {
	Formatted     string `json:"formatted,omitempty"`
	StreetAddress string `json:"street_address,omitempty"`
	Locality      string `json:"locality,omitempty"`
	Region        string `json:"region,omitempty"`
	PostalCode    string `json:"postal_code,omitempty"`
	Country       string `json:"country,omitempty"`
}

// Validate requires at least one component.
func (a Address) Validate() error {
	if a == (Address{}) {
		return oops.Code("INVALID_ADDRESS").Errorf("address is empty")
	}
	return nil
}
