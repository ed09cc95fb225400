// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package manager

import (
	"context"
	"log/slog"

	"github.com/samber/oops"

	"github.com/holomush/identity/internal/apikey"
	"github.com/holomush/identity/internal/eventsourcing"
	"github.com/holomush/identity/internal/role"
	"github.com/holomush/identity/internal/user"
)

// RoleManager saves roles.
type RoleManager struct {
	roles   role.Repository
	users   user.Repository
	apiKeys apikey.Repository
	logger  *slog.Logger
}

// NewRoleManager creates a role manager.
func NewRoleManager(roles role.Repository, users user.Repository, apiKeys apikey.Repository, opts ...Option) *RoleManager {
	o := buildOptions(opts)
	return &RoleManager{roles: roles, users: users, apiKeys: apiKeys, logger: o.logger}
}

// Save persists r. A new or renamed role must not share its unique name with
// another live role of its tenant. A deleted role is first removed from every
// API key and user holding it; actor is recorded on those removals.
func (m *RoleManager) Save(ctx context.Context, r *role.Role, actor eventsourcing.ActorID) (err error) {
	ctx, span := startSpan(ctx, "role_manager.save", r.ID().String())
	defer func() { endSpan(span, err) }()

	if r.IsDeleted() {
		if err := m.removeMemberships(ctx, r, actor); err != nil {
			return err
		}
	} else if renamed(r.Changes()) {
		if err := m.ensureUniqueName(ctx, r); err != nil {
			return err
		}
	}
	return m.roles.Save(ctx, r)
}

func renamed(changes []role.Event) bool {
	for _, e := range changes {
		switch e.(type) {
		case *role.Created, *role.UniqueNameChanged:
			return true
		}
	}
	return false
}

func (m *RoleManager) ensureUniqueName(ctx context.Context, r *role.Role) error {
	conflict, err := m.roles.LoadByUniqueName(ctx, r.TenantID(), r.UniqueName())
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return oops.With("role_id", r.ID().String()).Wrap(err)
	}
	if conflict.ID() == r.ID() {
		return nil
	}
	return uniqueNameConflict(role.AggregateType, r.TenantID(), r.UniqueName(), r.ID().String(), conflict.ID().String())
}

func (m *RoleManager) removeMemberships(ctx context.Context, r *role.Role, actor eventsourcing.ActorID) error {
	keys, err := m.apiKeys.LoadByRole(ctx, r.ID())
	if err != nil {
		return oops.With("role_id", r.ID().String()).Wrap(err)
	}
	for _, k := range keys {
		if err := k.RemoveRole(r.ID(), actor); err != nil {
			return oops.With("role_id", r.ID().String()).With("api_key_id", k.ID().String()).Wrap(err)
		}
		if err := m.apiKeys.Save(ctx, k); err != nil {
			return oops.With("role_id", r.ID().String()).Wrap(err)
		}
		cascadeSavesTotal.WithLabelValues(apikey.AggregateType).Inc()
	}

	users, err := m.users.LoadByRole(ctx, r.ID())
	if err != nil {
		return oops.With("role_id", r.ID().String()).Wrap(err)
	}
	for _, u := range users {
		if err := u.RemoveRole(r.ID(), actor); err != nil {
			return oops.With("role_id", r.ID().String()).With("user_id", u.ID().String()).Wrap(err)
		}
		if err := m.users.Save(ctx, u); err != nil {
			return oops.With("role_id", r.ID().String()).Wrap(err)
		}
		cascadeSavesTotal.WithLabelValues(user.AggregateType).Inc()
	}

	m.logger.InfoContext(ctx, "role memberships removed",
		"role_id", r.ID().String(),
		"api_keys", len(keys),
		"users", len(users),
	)
	return nil
}
