// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package user

import (
	"context"

	"github.com/holomush/identity/internal/core"
	"github.com/holomush/identity/internal/eventsourcing"
	"github.com/holomush/identity/internal/identity"
	"github.com/holomush/identity/internal/password"
)

// Repository loads and saves users. Loads never return deleted users.
type Repository interface {
	Load(ctx context.Context, id ID) (*User, error)
	LoadByUniqueName(ctx context.Context, tenantID identity.TenantID, name identity.UniqueName) (*User, error)
	LoadByEmail(ctx context.Context, tenantID identity.TenantID, email identity.EmailAddress) ([]*User, error)
	LoadByCustomIdentifier(ctx context.Context, tenantID identity.TenantID, key identity.CustomIdentifier, value string) (*User, error)
	LoadByRole(ctx context.Context, role identity.RoleID) ([]*User, error)
	Save(ctx context.Context, users ...*User) error
}

// EventSourcedRepository is the event store backed Repository.
type EventSourcedRepository struct {
	events *eventsourcing.Repository[*User, Event]
}

// NewRepository creates a repository over store. passwords decodes the
// password hashes of loaded users.
func NewRepository(store core.EventStore, passwords password.Decoder, opts ...eventsourcing.Option) *EventSourcedRepository {
	return &EventSourcedRepository{
		events: eventsourcing.NewRepository(store, Codec, func() *User { return empty(passwords) }, opts...),
	}
}

// Load implements Repository.
func (r *EventSourcedRepository) Load(ctx context.Context, id ID) (*User, error) {
	u, err := r.events.Load(ctx, id.String())
	if err != nil {
		return nil, err
	}
	if u.IsDeleted() {
		return nil, eventsourcing.NotFound(AggregateType, "aggregate_id", id.String(), "deleted", true)
	}
	return u, nil
}

// LoadByUniqueName implements Repository. Names compare case-insensitively.
func (r *EventSourcedRepository) LoadByUniqueName(ctx context.Context, tenantID identity.TenantID, name identity.UniqueName) (*User, error) {
	return r.events.FindOne(ctx, func(u *User) bool {
		return u.TenantID() == tenantID && u.UniqueName().Matches(name)
	}, "tenant_id", tenantID.String(), "unique_name", name.String())
}

// LoadByEmail implements Repository. Emails need not be unique, so every
// match is returned.
func (r *EventSourcedRepository) LoadByEmail(ctx context.Context, tenantID identity.TenantID, email identity.EmailAddress) ([]*User, error) {
	return r.events.Find(ctx, func(u *User) bool {
		return u.TenantID() == tenantID && u.Email().IsSet() && u.Email().Value.Matches(email)
	})
}

// LoadByCustomIdentifier implements Repository.
func (r *EventSourcedRepository) LoadByCustomIdentifier(ctx context.Context, tenantID identity.TenantID, key identity.CustomIdentifier, value string) (*User, error) {
	return r.events.FindOne(ctx, func(u *User) bool {
		v, ok := u.CustomIdentifier(key)
		return ok && u.TenantID() == tenantID && v == value
	}, "tenant_id", tenantID.String(), "custom_identifier", key.String())
}

// LoadByRole implements Repository.
func (r *EventSourcedRepository) LoadByRole(ctx context.Context, role identity.RoleID) ([]*User, error) {
	return r.events.Find(ctx, func(u *User) bool { return u.HasRole(role) })
}

// Save implements Repository.
func (r *EventSourcedRepository) Save(ctx context.Context, users ...*User) error {
	return r.events.Save(ctx, users...)
}
