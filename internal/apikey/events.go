// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package apikey

import (
	"time"

	"github.com/holomush/identity/internal/eventsourcing"
	"github.com/holomush/identity/internal/identity"
	"github.com/holomush/identity/internal/password"
)

// Event is the closed set of API key events.
type Event interface {
	eventsourcing.DomainEvent
	isAPIKeyEvent()
}

// Created is the first event of every API key.
type Created struct {
	eventsourcing.EventBase
	DisplayName identity.DisplayName `json:"display_name"`
	Secret      password.Hash        `json:"secret"`
}

// Updated changes descriptive fields. Nil fields are unchanged.
type Updated struct {
	eventsourcing.EventBase
	DisplayName      *identity.DisplayName          `json:"display_name,omitempty"`
	Description      *identity.Description          `json:"description,omitempty"`
	CustomAttributes identity.CustomAttributesPatch `json:"custom_attributes,omitempty"`
}

// ExpirationSet sets or advances the expiration.
type ExpirationSet struct {
	eventsourcing.EventBase
	ExpiresOn time.Time `json:"expires_on"`
}

// Authenticated records a successful authentication.
type Authenticated struct {
	eventsourcing.EventBase
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

// Deleted logically deletes an API key.
type Deleted struct {
	eventsourcing.EventBase
}

func (*Created) EventType() string       { return "apikey.created" }
func (*Updated) EventType() string       { return "apikey.updated" }
func (*ExpirationSet) EventType() string { return "apikey.expiration_set" }
func (*Authenticated) EventType() string { return "apikey.authenticated" }
func (*RoleAdded) EventType() string     { return "apikey.role_added" }
func (*RoleRemoved) EventType() string   { return "apikey.role_removed" }
func (*Deleted) EventType() string       { return "apikey.deleted" }

// DeletesAggregate implements eventsourcing.Deletion.
func (*Deleted) DeletesAggregate() bool { return true }

func (*Created) isAPIKeyEvent()       {}
func (*Updated) isAPIKeyEvent()       {}
func (*ExpirationSet) isAPIKeyEvent() {}
func (*Authenticated) isAPIKeyEvent() {}
func (*RoleAdded) isAPIKeyEvent()     {}
func (*RoleRemoved) isAPIKeyEvent()   {}
func (*Deleted) isAPIKeyEvent()       {}

// Codec serializes API key events.
var Codec = eventsourcing.NewCodec[Event](AggregateType,
	func() Event { return &Created{} },
	func() Event { return &Updated{} },
	func() Event { return &ExpirationSet{} },
	func() Event { return &Authenticated{} },
	func() Event { return &RoleAdded{} },
	func() Event { return &RoleRemoved{} },
	func() Event { return &Deleted{} },
)
