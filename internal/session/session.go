// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package session implements the session aggregate. A session is active from
// sign-in until sign-out; persistent sessions carry a secret (a refresh
// token) that is rotated on every renewal.
package session

import (
	"fmt"
	"time"

	"github.com/samber/oops"

	"github.com/holomush/identity/internal/eventsourcing"
	"github.com/holomush/identity/internal/identity"
	"github.com/holomush/identity/internal/password"
	"github.com/holomush/identity/internal/user"
)

// AggregateType names session streams.
const AggregateType = "session"

// ID identifies a session.
type ID = identity.SessionID

// Session is an event-sourced session.
type Session struct {
	eventsourcing.Root[Event]

	passwords password.Decoder

	id               ID
	userID           identity.UserID
	secret           password.Hash
	isActive         bool
	signedOutBy      eventsourcing.ActorID
	signedOutOn      time.Time
	customAttributes identity.CustomAttributes
}

func empty(passwords password.Decoder) *Session {
	s := &Session{passwords: passwords, customAttributes: identity.CustomAttributes{}}
	s.Root = eventsourcing.NewRoot(s.apply)
	return s
}

// SignIn opens a session for u and records the sign-in on u. A nil secret
// opens a non-persistent session. A zero id is generated in u's tenant.
// Both u and the returned session must be saved.
func SignIn(u *user.User, secret password.Password, actor eventsourcing.ActorID, id ID) (*Session, error) {
	if id.IsZero() {
		id = identity.GenerateID[identity.SessionKind](u.TenantID())
	}
	if id.Tenant() != u.TenantID() {
		return nil, oops.Code("INVALID_ID").
			With("session_id", id.String()).
			With("tenant_id", u.TenantID().String()).
			Errorf("session id belongs to another tenant")
	}
	if err := u.RecordSignIn(id, actor); err != nil {
		return nil, err
	}

	s := empty(nil)
	s.Raise(&Created{
		EventBase: eventsourcing.EventBase{AggregateID: id.String()},
		UserID:    u.ID(),
		Secret:    password.HashOf(secret),
	}, actor)
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() ID { return s.id }

// TenantID returns the tenant of the session.
func (s *Session) TenantID() identity.TenantID { return s.id.Tenant() }

// UserID returns the owner.
func (s *Session) UserID() identity.UserID { return s.userID }

// IsPersistent reports whether the session carries a secret.
func (s *Session) IsPersistent() bool { return !s.secret.IsZero() }

// IsActive reports whether the session has not been signed out.
func (s *Session) IsActive() bool { return s.isActive }

// SignedOutBy returns who ended the session.
func (s *Session) SignedOutBy() eventsourcing.ActorID { return s.signedOutBy }

// SignedOutOn returns when the session ended.
func (s *Session) SignedOutOn() time.Time { return s.signedOutOn }

// CustomAttributes returns a copy of the custom attributes.
func (s *Session) CustomAttributes() identity.CustomAttributes { return s.customAttributes.Clone() }

// Renew rotates the secret of a persistent, active session after verifying
// currentSecret. Non-persistence is reported before inactivity.
func (s *Session) Renew(currentSecret string, newSecret password.Password, actor eventsourcing.ActorID) error {
	if err := s.EnsureNotDeleted(); err != nil {
		return err
	}
	if !s.IsPersistent() {
		return notPersistent(s.id)
	}
	if !s.isActive {
		return notActive(s.id)
	}
	ok, err := s.secret.Verify(currentSecret, s.passwords)
	if err != nil {
		return oops.With("session_id", s.id.String()).Wrap(err)
	}
	if !ok {
		return incorrectSecret(s.id)
	}
	if newSecret == nil {
		return oops.Code("PASSWORD_MISSING").With("session_id", s.id.String()).Errorf("new secret is required")
	}
	s.Raise(&Renewed{Secret: password.HashOf(newSecret)}, actor)
	return nil
}

// SignOut ends the session. Signing out twice fails.
func (s *Session) SignOut(actor eventsourcing.ActorID) error {
	if err := s.EnsureNotDeleted(); err != nil {
		return err
	}
	if !s.isActive {
		return notActive(s.id)
	}
	s.Raise(&SignedOut{}, actor)
	return nil
}

// Update patches the custom attributes. An empty patch raises nothing.
func (s *Session) Update(actor eventsourcing.ActorID, attrs identity.CustomAttributesPatch) error {
	if err := s.EnsureNotDeleted(); err != nil {
		return err
	}
	if err := attrs.Validate(); err != nil {
		return err
	}
	if len(attrs) == 0 {
		return nil
	}
	s.Raise(&Updated{CustomAttributes: attrs}, actor)
	return nil
}

// Delete logically deletes the session.
func (s *Session) Delete(actor eventsourcing.ActorID) error {
	if err := s.EnsureNotDeleted(); err != nil {
		return err
	}
	s.Raise(&Deleted{}, actor)
	return nil
}

func (s *Session) apply(e Event) {
	switch e := e.(type) {
	case *Created:
		s.id = identity.MustParseID[identity.SessionKind](e.AggregateID)
		s.userID = e.UserID
		s.secret = e.Secret
		s.isActive = true
	case *Renewed:
		s.secret = e.Secret
	case *SignedOut:
		s.isActive = false
		s.signedOutBy = e.ActorID
		s.signedOutOn = e.OccurredOn
	case *Updated:
		s.customAttributes = s.customAttributes.Apply(e.CustomAttributes)
	case *Deleted:
	default:
		panic(fmt.Sprintf("session: unhandled event %T", e))
	}
}
