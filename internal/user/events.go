// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package user

import (
	"github.com/holomush/identity/internal/eventsourcing"
	"github.com/holomush/identity/internal/identity"
	"github.com/holomush/identity/internal/password"
)

// Event is the closed set of user events.
type Event interface {
	eventsourcing.DomainEvent
	isUserEvent()
}

// Created is the first event of every user.
type Created struct {
	eventsourcing.EventBase
	UniqueName identity.UniqueName `json:"unique_name"`
}

// UniqueNameChanged renames a user.
type UniqueNameChanged struct {
	eventsourcing.EventBase
	UniqueName identity.UniqueName `json:"unique_name"`
}

// PasswordChanged sets a new password, by the user or an administrator.
type PasswordChanged struct {
	eventsourcing.EventBase
	Password password.Hash `json:"password"`
}

// PasswordReset sets a new password through a reset flow.
type PasswordReset struct {
	eventsourcing.EventBase
	Password password.Hash `json:"password"`
}

// PasswordRemoved leaves the user without a password.
type PasswordRemoved struct {
	eventsourcing.EventBase
}

// EmailChanged sets or, with an empty address, removes the email.
type EmailChanged struct {
	eventsourcing.EventBase
	Email      identity.EmailAddress `json:"email,omitempty"`
	IsVerified bool                  `json:"is_verified,omitempty"`
}

// PhoneChanged sets or, with an empty number, removes the phone number.
type PhoneChanged struct {
	eventsourcing.EventBase
	Phone      identity.PhoneNumber `json:"phone,omitempty"`
	IsVerified bool                 `json:"is_verified,omitempty"`
}

// AddressChanged sets or, with a nil address, removes the postal address.
type AddressChanged struct {
	eventsourcing.EventBase
	Address    *identity.Address `json:"address,omitempty"`
	IsVerified bool              `json:"is_verified,omitempty"`
}

// Disabled prevents the user from authenticating.
type Disabled struct {
	eventsourcing.EventBase
}

// Enabled lifts Disabled.
type Enabled struct {
	eventsourcing.EventBase
}

// CustomIdentifierSet links the user to an external identifier.
type CustomIdentifierSet struct {
	eventsourcing.EventBase
	Key   identity.CustomIdentifier `json:"key"`
	Value string                    `json:"value"`
}

// CustomIdentifierRemoved unlinks an external identifier.
type CustomIdentifierRemoved struct {
	eventsourcing.EventBase
	Key identity.CustomIdentifier `json:"key"`
}

// RoleAdded grants a role.
type RoleAdded struct {
	eventsourcing.EventBase
	RoleID identity.RoleID `json:"role_id"`
}

// RoleRemoved revokes a role.
type RoleRemoved struct {
	eventsourcing.EventBase
	RoleID identity.RoleID `json:"role_id"`
}

// SignedIn records a successful sign-in.
type SignedIn struct {
	eventsourcing.EventBase
	SessionID identity.SessionID `json:"session_id"`
}

// Updated changes profile fields. Nil fields are unchanged.
type Updated struct {
	eventsourcing.EventBase
	FirstName        *string                        `json:"first_name,omitempty"`
	MiddleName       *string                        `json:"middle_name,omitempty"`
	LastName         *string                        `json:"last_name,omitempty"`
	Nickname         *string                        `json:"nickname,omitempty"`
	Birthdate        *string                        `json:"birthdate,omitempty"`
	Gender           *string                        `json:"gender,omitempty"`
	Locale           *string                        `json:"locale,omitempty"`
	TimeZone         *string                        `json:"time_zone,omitempty"`
	Picture          *string                        `json:"picture,omitempty"`
	Profile          *string                        `json:"profile,omitempty"`
	Website          *string                        `json:"website,omitempty"`
	CustomAttributes identity.CustomAttributesPatch `json:"custom_attributes,omitempty"`
}

// Deleted logically deletes a user.
type Deleted struct {
	eventsourcing.EventBase
}

func (*Created) EventType() string                 { return "user.created" }
func (*UniqueNameChanged) EventType() string       { return "user.unique_name_changed" }
func (*PasswordChanged) EventType() string         { return "user.password_changed" }
func (*PasswordReset) EventType() string           { return "user.password_reset" }
func (*PasswordRemoved) EventType() string         { return "user.password_removed" }
func (*EmailChanged) EventType() string            { return "user.email_changed" }
func (*PhoneChanged) EventType() string            { return "user.phone_changed" }
func (*AddressChanged) EventType() string          { return "user.address_changed" }
func (*Disabled) EventType() string                { return "user.disabled" }
func (*Enabled) EventType() string                 { return "user.enabled" }
func (*CustomIdentifierSet) EventType() string     { return "user.custom_identifier_set" }
func (*CustomIdentifierRemoved) EventType() string { return "user.custom_identifier_removed" }
func (*RoleAdded) EventType() string               { return "user.role_added" }
func (*RoleRemoved) EventType() string             { return "user.role_removed" }
func (*SignedIn) EventType() string                { return "user.signed_in" }
func (*Updated) EventType() string                 { return "user.updated" }
func (*Deleted) EventType() string                 { return "user.deleted" }

// DeletesAggregate implements eventsourcing.Deletion.
func (*Deleted) DeletesAggregate() bool { return true }

func (*Created) isUserEvent()                 {}
func (*UniqueNameChanged) isUserEvent()       {}
func (*PasswordChanged) isUserEvent()         {}
func (*PasswordReset) isUserEvent()           {}
func (*PasswordRemoved) isUserEvent()         {}
func (*EmailChanged) isUserEvent()            {}
func (*PhoneChanged) isUserEvent()            {}
func (*AddressChanged) isUserEvent()          {}
func (*Disabled) isUserEvent()                {}
func (*Enabled) isUserEvent()                 {}
func (*CustomIdentifierSet) isUserEvent()     {}
func (*CustomIdentifierRemoved) isUserEvent() {}
func (*RoleAdded) isUserEvent()               {}
func (*RoleRemoved) isUserEvent()             {}
func (*SignedIn) isUserEvent()                {}
func (*Updated) isUserEvent()                 {}
func (*Deleted) isUserEvent()                 {}

// Codec serializes user events.
var Codec = eventsourcing.NewCodec[Event](AggregateType,
	func() Event { return &Created{} },
	func() Event { return &UniqueNameChanged{} },
	func() Event { return &PasswordChanged{} },
	func() Event { return &PasswordReset{} },
	func() Event { return &PasswordRemoved{} },
	func() Event { return &EmailChanged{} },
	func() Event { return &PhoneChanged{} },
	func() Event { return &AddressChanged{} },
	func() Event { return &Disabled{} },
	func() Event { return &Enabled{} },
	func() Event { return &CustomIdentifierSet{} },
	func() Event { return &CustomIdentifierRemoved{} },
	func() Event { return &RoleAdded{} },
	func() Event { return &RoleRemoved{} },
	func() Event { return &SignedIn{} },
	func() Event { return &Updated{} },
	func() Event { return &Deleted{} },
)
