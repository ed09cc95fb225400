// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package eventsourcing

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// ActorID identifies who caused an event: a user id, an API key id or a
// system actor such as "system:housekeeping".
type ActorID string

// String returns the actor id.
func (a ActorID) String() string { return string(a) }

// EventBase carries the metadata every domain event has. It is stored in the
// event envelope, not in the JSON payload.
type EventBase struct {
	ID          ulid.ULID `json:"-"`
	AggregateID string    `json:"-"`
	Version     int64     `json:"-"`
	ActorID     ActorID   `json:"-"`
	OccurredOn  time.Time `json:"-"`
}

// Base gives Root access to the metadata of an embedding event.
func (b *EventBase) Base() *EventBase { return b }

// DomainEvent is implemented by pointers to event structs embedding EventBase.
type DomainEvent interface {
	// EventType is the dot-separated persisted name, e.g. "role.created".
	EventType() string
	Base() *EventBase
}

// Deletion is implemented by events that logically delete their aggregate.
type Deletion interface {
	DeletesAggregate() bool
}
