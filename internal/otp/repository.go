// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package otp

import (
	"context"

	"github.com/holomush/identity/internal/core"
	"github.com/holomush/identity/internal/eventsourcing"
	"github.com/holomush/identity/internal/password"
)

// Repository loads and saves one-time passwords. Loads never return deleted ones.
type Repository interface {
	Load(ctx context.Context, id ID) (*OneTimePassword, error)
	Save(ctx context.Context, otps ...*OneTimePassword) error
}

// EventSourcedRepository is the event store backed Repository.
type EventSourcedRepository struct {
	events *eventsourcing.Repository[*OneTimePassword, Event]
}

// NewRepository creates a repository over store. passwords decodes the
// hashes of loaded one-time passwords.
func NewRepository(store core.EventStore, passwords password.Decoder, opts ...eventsourcing.Option) *EventSourcedRepository {
	return &EventSourcedRepository{
		events: eventsourcing.NewRepository(store, Codec, func() *OneTimePassword { return empty(passwords) }, opts...),
	}
}

// Load implements Repository.
func (r *EventSourcedRepository) Load(ctx context.Context, id ID) (*OneTimePassword, error) {
	o, err := r.events.Load(ctx, id.String())
	if err != nil {
		return nil, err
	}
	if o.IsDeleted() {
		return nil, eventsourcing.NotFound(AggregateType, "aggregate_id", id.String(), "deleted", true)
	}
	return o, nil
}

// Save implements Repository.
func (r *EventSourcedRepository) Save(ctx context.Context, otps ...*OneTimePassword) error {
	return r.events.Save(ctx, otps...)
}
