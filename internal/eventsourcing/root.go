// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package eventsourcing

import (
	"time"

	"github.com/samber/oops"

	"github.com/holomush/identity/internal/core"
)

// Root holds the state every aggregate shares: identity, version, audit
// stamps, the deleted flag and the events raised since the last save.
//
// Root is not safe for concurrent use; an aggregate instance is owned by one
// caller between load and save.
type Root[E DomainEvent] struct {
	id        string
	version   int64
	createdBy ActorID
	createdOn time.Time
	updatedBy ActorID
	updatedOn time.Time
	deleted   bool
	changes   []E
	apply     func(E)
	clock     func() time.Time
}

// NewRoot creates the root of an aggregate whose events are applied by apply.
func NewRoot[E DomainEvent](apply func(E)) Root[E] {
	return Root[E]{apply: apply, clock: time.Now}
}

// AggregateID returns the serialized aggregate id, empty before the first event.
func (r *Root[E]) AggregateID() string { return r.id }

// Version returns the number of events applied so far.
func (r *Root[E]) Version() int64 { return r.version }

// CreatedBy returns the actor of the first event.
func (r *Root[E]) CreatedBy() ActorID { return r.createdBy }

// CreatedOn returns the time of the first event.
func (r *Root[E]) CreatedOn() time.Time { return r.createdOn }

// UpdatedBy returns the actor of the latest event.
func (r *Root[E]) UpdatedBy() ActorID { return r.updatedBy }

// UpdatedOn returns the time of the latest event.
func (r *Root[E]) UpdatedOn() time.Time { return r.updatedOn }

// IsDeleted reports whether a deletion event has been applied.
func (r *Root[E]) IsDeleted() bool { return r.deleted }

// Changes returns the events raised since the aggregate was loaded or last saved.
func (r *Root[E]) Changes() []E {
	out := make([]E, len(r.changes))
	copy(out, r.changes)
	return out
}

// MarkCommitted clears the uncommitted events after a successful save.
func (r *Root[E]) MarkCommitted() { r.changes = nil }

// UseClock replaces the time source used to stamp events and evaluate expiry.
func (r *Root[E]) UseClock(clock func() time.Time) { r.clock = clock }

// Now returns the current time according to the aggregate's clock, in UTC.
func (r *Root[E]) Now() time.Time {
	if r.clock == nil {
		return time.Now().UTC()
	}
	return r.clock().UTC()
}

// EnsureNotDeleted fails with AGGREGATE_IS_DELETED once the aggregate is deleted.
func (r *Root[E]) EnsureNotDeleted() error {
	if r.deleted {
		return oops.Code("AGGREGATE_IS_DELETED").
			With("aggregate_id", r.id).
			Wrap(ErrAggregateIsDeleted)
	}
	return nil
}

// Raise stamps e as the next event of the aggregate, applies it and queues it
// for persistence. The first event of an aggregate must carry its AggregateID.
func (r *Root[E]) Raise(e E, actor ActorID) {
	b := e.Base()
	if b.ID.IsZero() {
		b.ID = core.NewULID()
	}
	if b.AggregateID == "" {
		b.AggregateID = r.id
	}
	if b.OccurredOn.IsZero() {
		b.OccurredOn = r.Now()
	}
	b.Version = r.version + 1
	b.ActorID = actor

	r.mutate(e)
	r.changes = append(r.changes, e)
}

// LoadFromHistory replays persisted events without queueing them.
func (r *Root[E]) LoadFromHistory(events []E) error {
	for _, e := range events {
		b := e.Base()
		if b.Version != r.version+1 {
			return oops.Code("EVENT_HISTORY_OUT_OF_ORDER").
				With("aggregate_id", b.AggregateID).
				With("expected_version", r.version+1).
				With("actual_version", b.Version).
				Wrap(ErrHistoryOutOfOrder)
		}
		if r.deleted {
			return oops.Code("AGGREGATE_IS_DELETED").
				With("aggregate_id", r.id).
				With("version", b.Version).
				Wrap(ErrAggregateIsDeleted)
		}
		r.mutate(e)
	}
	return nil
}

func (r *Root[E]) mutate(e E) {
	b := e.Base()
	if r.id == "" {
		r.id = b.AggregateID
	}

	r.apply(e)

	if r.version == 0 {
		r.createdBy = b.ActorID
		r.createdOn = b.OccurredOn
	}
	r.updatedBy = b.ActorID
	r.updatedOn = b.OccurredOn
	r.version = b.Version
	if d, ok := any(e).(Deletion); ok && d.DeletesAggregate() {
		r.deleted = true
	}
}
