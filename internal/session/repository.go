// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package session

import (
	"context"

	"github.com/holomush/identity/internal/core"
	"github.com/holomush/identity/internal/eventsourcing"
	"github.com/holomush/identity/internal/identity"
	"github.com/holomush/identity/internal/password"
)

// Repository loads and saves sessions. Loads never return deleted sessions.
type Repository interface {
	Load(ctx context.Context, id ID) (*Session, error)
	LoadByUser(ctx context.Context, userID identity.UserID) ([]*Session, error)
	LoadActiveByUser(ctx context.Context, userID identity.UserID) ([]*Session, error)
	Save(ctx context.Context, sessions ...*Session) error
}

// EventSourcedRepository is the event store backed Repository.
type EventSourcedRepository struct {
	events *eventsourcing.Repository[*Session, Event]
}

// NewRepository creates a repository over store. passwords decodes the
// secrets of loaded sessions.
func NewRepository(store core.EventStore, passwords password.Decoder, opts ...eventsourcing.Option) *EventSourcedRepository {
	return &EventSourcedRepository{
		events: eventsourcing.NewRepository(store, Codec, func() *Session { return empty(passwords) }, opts...),
	}
}

// Load implements Repository.
func (r *EventSourcedRepository) Load(ctx context.Context, id ID) (*Session, error) {
	s, err := r.events.Load(ctx, id.String())
	if err != nil {
		return nil, err
	}
	if s.IsDeleted() {
		return nil, eventsourcing.NotFound(AggregateType, "aggregate_id", id.String(), "deleted", true)
	}
	return s, nil
}

// LoadByUser implements Repository.
func (r *EventSourcedRepository) LoadByUser(ctx context.Context, userID identity.UserID) ([]*Session, error) {
	return r.events.Find(ctx, func(s *Session) bool { return s.UserID() == userID })
}

// LoadActiveByUser implements Repository.
func (r *EventSourcedRepository) LoadActiveByUser(ctx context.Context, userID identity.UserID) ([]*Session, error) {
	return r.events.Find(ctx, func(s *Session) bool { return s.UserID() == userID && s.IsActive() })
}

// Save implements Repository.
func (r *EventSourcedRepository) Save(ctx context.Context, sessions ...*Session) error {
	return r.events.Save(ctx, sessions...)
}
