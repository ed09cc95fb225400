// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package manager

import (
	"context"
	"log/slog"

	"github.com/samber/oops"

	"github.com/holomush/identity/internal/eventsourcing"
	"github.com/holomush/identity/internal/identity"
	"github.com/holomush/identity/internal/session"
	"github.com/holomush/identity/internal/settings"
	"github.com/holomush/identity/internal/user"
)

// UserManager saves users.
type UserManager struct {
	users    user.Repository
	sessions session.Repository
	settings settings.Resolver
	logger   *slog.Logger
}

// NewUserManager creates a user manager. resolver decides per tenant whether
// email addresses must be unique.
func NewUserManager(users user.Repository, sessions session.Repository, resolver settings.Resolver, opts ...Option) *UserManager {
	o := buildOptions(opts)
	return &UserManager{users: users, sessions: sessions, settings: resolver, logger: o.logger}
}

// Save persists u. Changed unique names, custom identifiers and, when the
// tenant requires it, email addresses must not be held by another live user
// of the tenant. A deleted user first has every session deleted.
func (m *UserManager) Save(ctx context.Context, u *user.User, actor eventsourcing.ActorID) (err error) {
	ctx, span := startSpan(ctx, "user_manager.save", u.ID().String())
	defer func() { endSpan(span, err) }()

	if u.IsDeleted() {
		if err := m.deleteSessions(ctx, u, actor); err != nil {
			return err
		}
		return m.users.Save(ctx, u)
	}

	for _, e := range u.Changes() {
		switch e := e.(type) {
		case *user.Created, *user.UniqueNameChanged:
			err = m.ensureUniqueName(ctx, u)
		case *user.EmailChanged:
			err = m.ensureUniqueEmail(ctx, u, e.Email)
		case *user.CustomIdentifierSet:
			err = m.ensureUniqueCustomIdentifier(ctx, u, e.Key, e.Value)
		}
		if err != nil {
			return err
		}
	}
	return m.users.Save(ctx, u)
}

func (m *UserManager) ensureUniqueName(ctx context.Context, u *user.User) error {
	conflict, err := m.users.LoadByUniqueName(ctx, u.TenantID(), u.UniqueName())
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return oops.With("user_id", u.ID().String()).Wrap(err)
	}
	if conflict.ID() == u.ID() {
		return nil
	}
	return uniqueNameConflict(user.AggregateType, u.TenantID(), u.UniqueName(), u.ID().String(), conflict.ID().String())
}

// ensureUniqueEmail checks the email as of the event. A later EmailChanged in
// the same batch is checked on its own.
func (m *UserManager) ensureUniqueEmail(ctx context.Context, u *user.User, email identity.EmailAddress) error {
	if email == "" || !m.settings.UserSettings(u.TenantID().String()).RequireUniqueEmail {
		return nil
	}
	holders, err := m.users.LoadByEmail(ctx, u.TenantID(), email)
	if err != nil {
		return oops.With("user_id", u.ID().String()).Wrap(err)
	}
	for _, h := range holders {
		if h.ID() != u.ID() {
			conflictsTotal.WithLabelValues(user.AggregateType, "email").Inc()
			return oops.Code("EMAIL_ADDRESS_ALREADY_USED").
				With("tenant_id", u.TenantID().String()).
				With("email", email.String()).
				With("aggregate_id", u.ID().String()).
				With("conflict_id", h.ID().String()).
				Wrap(ErrEmailAddressAlreadyUsed)
		}
	}
	return nil
}

func (m *UserManager) ensureUniqueCustomIdentifier(ctx context.Context, u *user.User, key identity.CustomIdentifier, value string) error {
	conflict, err := m.users.LoadByCustomIdentifier(ctx, u.TenantID(), key, value)
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return oops.With("user_id", u.ID().String()).Wrap(err)
	}
	if conflict.ID() == u.ID() {
		return nil
	}
	conflictsTotal.WithLabelValues(user.AggregateType, "custom_identifier").Inc()
	return oops.Code("CUSTOM_IDENTIFIER_ALREADY_USED").
		With("tenant_id", u.TenantID().String()).
		With("custom_identifier", key.String()).
		With("custom_identifier_value", value).
		With("aggregate_id", u.ID().String()).
		With("conflict_id", conflict.ID().String()).
		Wrap(ErrCustomIdentifierAlreadyUsed)
}

func (m *UserManager) deleteSessions(ctx context.Context, u *user.User, actor eventsourcing.ActorID) error {
	sessions, err := m.sessions.LoadByUser(ctx, u.ID())
	if err != nil {
		return oops.With("user_id", u.ID().String()).Wrap(err)
	}
	for _, s := range sessions {
		if err := s.Delete(actor); err != nil {
			return oops.With("user_id", u.ID().String()).With("session_id", s.ID().String()).Wrap(err)
		}
	}
	if err := m.sessions.Save(ctx, sessions...); err != nil {
		return oops.With("user_id", u.ID().String()).Wrap(err)
	}
	cascadeSavesTotal.WithLabelValues(session.AggregateType).Add(float64(len(sessions)))

	m.logger.InfoContext(ctx, "user sessions deleted",
		"user_id", u.ID().String(),
		"sessions", len(sessions),
	)
	return nil
}
