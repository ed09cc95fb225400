// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package eventsourcing

import (
	"encoding/json"

	"github.com/samber/oops"

	"github.com/holomush/identity/internal/core"
)

// Codec converts the events of one aggregate type to and from core.Event
// envelopes. Payloads are JSON; metadata lives in the envelope.
type Codec[E DomainEvent] struct {
	aggregateType string
	factories     map[string]func() E
}

// NewCodec registers the events of an aggregate type. Each factory returns a
// fresh zero event; its EventType is the registration key.
func NewCodec[E DomainEvent](aggregateType string, factories ...func() E) *Codec[E] {
	c := &Codec[E]{
		aggregateType: aggregateType,
		factories:     make(map[string]func() E, len(factories)),
	}
	for _, f := range factories {
		c.factories[f().EventType()] = f
	}
	return c
}

// AggregateType returns the aggregate type the codec serves.
func (c *Codec[E]) AggregateType() string { return c.aggregateType }

// Encode wraps e in an envelope.
func (c *Codec[E]) Encode(e E) (core.Event, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return core.Event{}, oops.Code("EVENT_ENCODE_FAILED").
			With("event_type", e.EventType()).
			Wrap(err)
	}
	b := e.Base()
	return core.Event{
		ID:            b.ID,
		Stream:        core.StreamName(c.aggregateType, b.AggregateID),
		AggregateType: c.aggregateType,
		AggregateID:   b.AggregateID,
		Version:       b.Version,
		Type:          e.EventType(),
		ActorID:       b.ActorID.String(),
		Timestamp:     b.OccurredOn,
		Payload:       payload,
	}, nil
}

// Decode rebuilds the domain event held by an envelope.
func (c *Codec[E]) Decode(ev core.Event) (E, error) {
	var zero E
	factory, ok := c.factories[ev.Type]
	if !ok {
		return zero, oops.Code("EVENT_TYPE_UNKNOWN").
			With("aggregate_type", c.aggregateType).
			With("event_type", ev.Type).
			Wrap(ErrUnknownEventType)
	}
	e := factory()
	if err := json.Unmarshal(ev.Payload, e); err != nil {
		return zero, oops.Code("EVENT_DECODE_FAILED").
			With("event_type", ev.Type).
			With("event_id", ev.ID.String()).
			Wrap(err)
	}
	b := e.Base()
	b.ID = ev.ID
	b.AggregateID = ev.AggregateID
	b.Version = ev.Version
	b.ActorID = ActorID(ev.ActorID)
	b.OccurredOn = ev.Timestamp.UTC()
	return e, nil
}
