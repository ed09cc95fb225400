// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package role

import (
	"context"

	"github.com/holomush/identity/internal/core"
	"github.com/holomush/identity/internal/eventsourcing"
	"github.com/holomush/identity/internal/identity"
)

// Repository loads and saves roles. Loads never return deleted roles.
type Repository interface {
	Load(ctx context.Context, id ID) (*Role, error)
	LoadByUniqueName(ctx context.Context, tenantID identity.TenantID, name identity.UniqueName) (*Role, error)
	Save(ctx context.Context, roles ...*Role) error
}

// EventSourcedRepository is the event store backed Repository. Lookups other
// than Load replay every role stream; the query side belongs to read models.
type EventSourcedRepository struct {
	events *eventsourcing.Repository[*Role, Event]
}

// NewRepository creates a repository over store.
func NewRepository(store core.EventStore, opts ...eventsourcing.Option) *EventSourcedRepository {
	return &EventSourcedRepository{
		events: eventsourcing.NewRepository(store, Codec, empty, opts...),
	}
}

// Load implements Repository.
func (r *EventSourcedRepository) Load(ctx context.Context, id ID) (*Role, error) {
	role, err := r.events.Load(ctx, id.String())
	if err != nil {
		return nil, err
	}
	if role.IsDeleted() {
		return nil, eventsourcing.NotFound(AggregateType, "aggregate_id", id.String(), "deleted", true)
	}
	return role, nil
}

// LoadByUniqueName implements Repository. Names compare case-insensitively.
func (r *EventSourcedRepository) LoadByUniqueName(ctx context.Context, tenantID identity.TenantID, name identity.UniqueName) (*Role, error) {
	return r.events.FindOne(ctx, func(role *Role) bool {
		return role.TenantID() == tenantID && role.UniqueName().Matches(name)
	}, "tenant_id", tenantID.String(), "unique_name", name.String())
}

// Save implements Repository.
func (r *EventSourcedRepository) Save(ctx context.Context, roles ...*Role) error {
	return r.events.Save(ctx, roles...)
}
