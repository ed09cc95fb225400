// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package role

import (
	"github.com/holomush/identity/internal/eventsourcing"
	"github.com/holomush/identity/internal/identity"
)

// Event is the closed set of role events.
type Event interface {
	eventsourcing.DomainEvent
	isRoleEvent()
}

// Created is the first event of every role.
type Created struct {
	eventsourcing.EventBase
	UniqueName identity.UniqueName `json:"unique_name"`
}

// UniqueNameChanged renames a role.
type UniqueNameChanged struct {
	eventsourcing.EventBase
	UniqueName identity.UniqueName `json:"unique_name"`
}

// Updated changes descriptive fields. Nil fields are unchanged.
type Updated struct {
	eventsourcing.EventBase
	DisplayName      *identity.DisplayName          `json:"display_name,omitempty"`
	Description      *identity.Description          `json:"description,omitempty"`
	CustomAttributes identity.CustomAttributesPatch `json:"custom_attributes,omitempty"`
}

// Deleted logically deletes a role.
type Deleted struct {
	eventsourcing.EventBase
}

func (*Created) EventType() string           { return "role.created" }
func (*UniqueNameChanged) EventType() string { return "role.unique_name_changed" }
func (*Updated) EventType() string           { return "role.updated" }
func (*Deleted) EventType() string           { return "role.deleted" }

// DeletesAggregate implements eventsourcing.Deletion.
func (*Deleted) DeletesAggregate() bool { return true }

func (*Created) isRoleEvent()           {}
func (*UniqueNameChanged) isRoleEvent() {}
func (*Updated) isRoleEvent()           {}
func (*Deleted) isRoleEvent()           {}

// Codec serializes role events.
var Codec = eventsourcing.NewCodec[Event](AggregateType,
	func() Event { return &Created{} },
	func() Event { return &UniqueNameChanged{} },
	func() Event { return &Updated{} },
	func() Event { return &Deleted{} },
)
