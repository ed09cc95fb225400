// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package otp implements the one-time password aggregate: a single-use
// credential with an optional expiration and an optional attempt limit.
//
// Validate checks, in order: prior success, expiry, exhausted attempts and
// finally the candidate itself. Only a wrong candidate consumes an attempt.
package otp

import (
	"fmt"
	"time"

	"github.com/samber/oops"

	"github.com/holomush/identity/internal/eventsourcing"
	"github.com/holomush/identity/internal/identity"
	"github.com/holomush/identity/internal/password"
)

// AggregateType names one-time password streams.
const AggregateType = "otp"

// ID identifies a one-time password.
type ID = identity.OTPID

// OneTimePassword is an event-sourced one-time password.
type OneTimePassword struct {
	eventsourcing.Root[Event]

	passwords password.Decoder

	id                     ID
	password               password.Hash
	expiresOn              time.Time
	maximumAttempts        int
	attemptCount           int
	hasValidationSucceeded bool
	customAttributes       identity.CustomAttributes
}

func empty(passwords password.Decoder) *OneTimePassword {
	o := &OneTimePassword{passwords: passwords, customAttributes: identity.CustomAttributes{}}
	o.Root = eventsourcing.NewRoot(o.apply)
	return o
}

// New creates a one-time password. A zero expiresOn never expires, otherwise
// it must lie in the future. A zero maximumAttempts allows unlimited attempts.
func New(p password.Password, tenantID identity.TenantID, expiresOn time.Time, maximumAttempts int, actor eventsourcing.ActorID, id ID) (*OneTimePassword, error) {
	if id.IsZero() {
		id = identity.GenerateID[identity.OTPKind](tenantID)
	}
	if id.Tenant() != tenantID {
		return nil, oops.Code("INVALID_ID").
			With("otp_id", id.String()).
			With("tenant_id", tenantID.String()).
			Errorf("one-time password id belongs to another tenant")
	}
	if p == nil {
		return nil, oops.Code("PASSWORD_MISSING").With("otp_id", id.String()).Errorf("password is required")
	}
	if maximumAttempts < 0 {
		return nil, oops.Code("OTP_MAXIMUM_ATTEMPTS_INVALID").
			With("otp_id", id.String()).
			With("maximum_attempts", maximumAttempts).
			Errorf("maximum attempts must be positive")
	}

	o := empty(nil)
	created := &Created{
		EventBase:       eventsourcing.EventBase{AggregateID: id.String()},
		Password:        password.HashOf(p),
		MaximumAttempts: maximumAttempts,
	}
	if !expiresOn.IsZero() {
		expiresOn = expiresOn.UTC()
		if !expiresOn.After(o.Now()) {
			return nil, oops.Code("OTP_EXPIRATION_INVALID").
				With("otp_id", id.String()).
				With("expires_on", expiresOn).
				Errorf("expiration must be in the future")
		}
		created.ExpiresOn = &expiresOn
	}
	o.Raise(created, actor)
	return o, nil
}

// ID returns the one-time password id.
func (o *OneTimePassword) ID() ID { return o.id }

// TenantID returns the tenant of the one-time password.
func (o *OneTimePassword) TenantID() identity.TenantID { return o.id.Tenant() }

// ExpiresOn returns the expiration, zero when it never expires.
func (o *OneTimePassword) ExpiresOn() time.Time { return o.expiresOn }

// MaximumAttempts returns the attempt limit, zero when unlimited.
func (o *OneTimePassword) MaximumAttempts() int { return o.maximumAttempts }

// AttemptCount returns the number of failed validations.
func (o *OneTimePassword) AttemptCount() int { return o.attemptCount }

// HasValidationSucceeded reports whether the password was used.
func (o *OneTimePassword) HasValidationSucceeded() bool { return o.hasValidationSucceeded }

// IsExpired reports whether the password is expired at the aggregate's clock.
func (o *OneTimePassword) IsExpired() bool {
	return !o.expiresOn.IsZero() && !o.Now().Before(o.expiresOn)
}

// CustomAttributes returns a copy of the custom attributes.
func (o *OneTimePassword) CustomAttributes() identity.CustomAttributes {
	return o.customAttributes.Clone()
}

// Validate consumes the password if candidate matches.
func (o *OneTimePassword) Validate(candidate string, actor eventsourcing.ActorID) error {
	if err := o.EnsureNotDeleted(); err != nil {
		return err
	}
	if o.hasValidationSucceeded {
		return alreadyUsed(o.id)
	}
	if o.IsExpired() {
		return oops.Code("OTP_EXPIRED").
			With("otp_id", o.id.String()).
			With("expires_on", o.expiresOn).
			Wrap(ErrExpired)
	}
	if o.maximumAttempts > 0 && o.attemptCount >= o.maximumAttempts {
		return oops.Code("OTP_MAXIMUM_ATTEMPTS_REACHED").
			With("otp_id", o.id.String()).
			With("maximum_attempts", o.maximumAttempts).
			With("attempt_count", o.attemptCount).
			Wrap(ErrMaximumAttemptsReached)
	}
	ok, err := o.password.Verify(candidate, o.passwords)
	if err != nil {
		return oops.With("otp_id", o.id.String()).Wrap(err)
	}
	if !ok {
		o.Raise(&ValidationFailed{}, actor)
		return incorrectPassword(o.id, o.attemptCount)
	}
	o.Raise(&ValidationSucceeded{}, actor)
	return nil
}

// Update patches the custom attributes. An empty patch raises nothing.
func (o *OneTimePassword) Update(actor eventsourcing.ActorID, attrs identity.CustomAttributesPatch) error {
	if err := o.EnsureNotDeleted(); err != nil {
		return err
	}
	if err := attrs.Validate(); err != nil {
		return err
	}
	if len(attrs) == 0 {
		return nil
	}
	o.Raise(&Updated{CustomAttributes: attrs}, actor)
	return nil
}

// Delete logically deletes the one-time password.
func (o *OneTimePassword) Delete(actor eventsourcing.ActorID) error {
	if err := o.EnsureNotDeleted(); err != nil {
		return err
	}
	o.Raise(&Deleted{}, actor)
	return nil
}

func (o *OneTimePassword) apply(e Event) {
	switch e := e.(type) {
	case *Created:
		o.id = identity.MustParseID[identity.OTPKind](e.AggregateID)
		o.password = e.Password
		o.maximumAttempts = e.MaximumAttempts
		if e.ExpiresOn != nil {
			o.expiresOn = e.ExpiresOn.UTC()
		}
	case *ValidationFailed:
		o.attemptCount++
	case *ValidationSucceeded:
		o.hasValidationSucceeded = true
	case *Updated:
		o.customAttributes = o.customAttributes.Apply(e.CustomAttributes)
	case *Deleted:
	default:
		panic(fmt.Sprintf("otp: unhandled event %T", e))
	}
}
