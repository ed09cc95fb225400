// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package apikey

import (
	"context"

	"github.com/holomush/identity/internal/core"
	"github.com/holomush/identity/internal/eventsourcing"
	"github.com/holomush/identity/internal/identity"
	"github.com/holomush/identity/internal/password"
)

// Repository loads and saves API keys. Loads never return deleted keys.
type Repository interface {
	Load(ctx context.Context, id ID) (*APIKey, error)
	LoadByRole(ctx context.Context, role identity.RoleID) ([]*APIKey, error)
	Save(ctx context.Context, keys ...*APIKey) error
}

// EventSourcedRepository is the event store backed Repository.
type EventSourcedRepository struct {
	events *eventsourcing.Repository[*APIKey, Event]
}

// NewRepository creates a repository over store. passwords decodes the
// secrets of loaded keys.
func NewRepository(store core.EventStore, passwords password.Decoder, opts ...eventsourcing.Option) *EventSourcedRepository {
	return &EventSourcedRepository{
		events: eventsourcing.NewRepository(store, Codec, func() *APIKey { return empty(passwords) }, opts...),
	}
}

// Load implements Repository.
func (r *EventSourcedRepository) Load(ctx context.Context, id ID) (*APIKey, error) {
	k, err := r.events.Load(ctx, id.String())
	if err != nil {
		return nil, err
	}
	if k.IsDeleted() {
		return nil, eventsourcing.NotFound(AggregateType, "aggregate_id", id.String(), "deleted", true)
	}
	return k, nil
}

// LoadByRole implements Repository.
func (r *EventSourcedRepository) LoadByRole(ctx context.Context, role identity.RoleID) ([]*APIKey, error) {
	return r.events.Find(ctx, func(k *APIKey) bool { return k.HasRole(role) })
}

// Save implements Repository.
func (r *EventSourcedRepository) Save(ctx context.Context, keys ...*APIKey) error {
	return r.events.Save(ctx, keys...)
}
