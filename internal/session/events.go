// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package session

import (
	"github.com/holomush/identity/internal/eventsourcing"
	"github.com/holomush/identity/internal/identity"
	"github.com/holomush/identity/internal/password"
)

// Event is the closed set of session events.
type Event interface {
	eventsourcing.DomainEvent
	isSessionEvent()
}

// Created opens a session. A zero Secret makes the session non-persistent.
type Created struct {
	eventsourcing.EventBase
	UserID identity.UserID `json:"user_id"`
	Secret password.Hash   `json:"secret"`
}

// Renewed rotates the session secret.
type Renewed struct {
	eventsourcing.EventBase
	Secret password.Hash `json:"secret"`
}

// SignedOut ends the session.
type SignedOut struct {
	eventsourcing.EventBase
}

// Updated patches the custom attributes.
type Updated struct {
	eventsourcing.EventBase
	CustomAttributes identity.CustomAttributesPatch `json:"custom_attributes,omitempty"`
}

// Deleted logically deletes a session.
type Deleted struct {
	eventsourcing.EventBase
}

func (*Created) EventType() string   { return "session.created" }
func (*Renewed) EventType() string   { return "session.renewed" }
func (*SignedOut) EventType() string { return "session.signed_out" }
func (*Updated) EventType() string   { return "session.updated" }
func (*Deleted) EventType() string   { return "session.deleted" }

// DeletesAggregate implements eventsourcing.Deletion.
func (*Deleted) DeletesAggregate() bool { return true }

func (*Created) isSessionEvent()   {}
func (*Renewed) isSessionEvent()   {}
func (*SignedOut) isSessionEvent() {}
func (*Updated) isSessionEvent()   {}
func (*Deleted) isSessionEvent()   {}

// Codec serializes session events.
var Codec = eventsourcing.NewCodec[Event](AggregateType,
	func() Event { return &Created{} },
	func() Event { return &Renewed{} },
	func() Event { return &SignedOut{} },
	func() Event { return &Updated{} },
	func() Event { return &Deleted{} },
)
