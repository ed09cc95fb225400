// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package core contains the event log primitives shared by every aggregate:
// the persisted event envelope, the event store contract and the event bus.
package core

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Event is a persisted domain event.
//
// The envelope is aggregate-agnostic: Payload holds the JSON encoding of the
// concrete domain event and Type names it (e.g. "role.created").
type Event struct {
	ID            ulid.ULID
	Stream        string // see StreamName
	AggregateType string // e.g. "role", "user"
	AggregateID   string
	Version       int64 // 1-based position within the stream
	Type          string
	ActorID       string
	Timestamp     time.Time
	Payload       []byte // JSON
}

// StreamName returns the stream an aggregate's events are stored in.
// Aggregate ids are only unique per aggregate type, so the type is part of the name.
func StreamName(aggregateType, aggregateID string) string {
	return aggregateType + "/" + aggregateID
}

// SplitStreamName is the inverse of StreamName.
func SplitStreamName(stream string) (aggregateType, aggregateID string, ok bool) {
	return strings.Cut(stream, "/")
}
