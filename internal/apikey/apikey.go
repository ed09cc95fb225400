// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package apikey implements the API key aggregate: a long-lived secret that
// authenticates a client until it expires or is deleted.
package apikey

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/oops"

	"github.com/holomush/identity/internal/eventsourcing"
	"github.com/holomush/identity/internal/identity"
	"github.com/holomush/identity/internal/password"
)

// AggregateType names API key streams.
const AggregateType = "apikey"

// ID identifies an API key.
type ID = identity.APIKeyID

// APIKey is an event-sourced API key.
type APIKey struct {
	eventsourcing.Root[Event]

	passwords password.Decoder

	id               ID
	secret           password.Hash
	displayName      identity.DisplayName
	description      identity.Description
	expiresOn        time.Time
	authenticatedOn  time.Time
	roles            map[identity.RoleID]struct{}
	customAttributes identity.CustomAttributes
}

// Update lists the descriptive changes applied by APIKey.Update.
type Update struct {
	DisplayName      identity.Change[identity.DisplayName]
	Description      identity.Change[identity.Description]
	CustomAttributes identity.CustomAttributesPatch
}

func empty(passwords password.Decoder) *APIKey {
	k := &APIKey{
		passwords:        passwords,
		roles:            map[identity.RoleID]struct{}{},
		customAttributes: identity.CustomAttributes{},
	}
	k.Root = eventsourcing.NewRoot(k.apply)
	return k
}

// New creates an API key. A zero id is generated within tenantID; a given id
// must belong to tenantID.
func New(displayName identity.DisplayName, secret password.Password, tenantID identity.TenantID, actor eventsourcing.ActorID, id ID) (*APIKey, error) {
	if id.IsZero() {
		id = identity.GenerateID[identity.APIKeyKind](tenantID)
	}
	if id.Tenant() != tenantID {
		return nil, oops.Code("INVALID_ID").
			With("api_key_id", id.String()).
			With("tenant_id", tenantID.String()).
			Errorf("api key id belongs to another tenant")
	}
	if displayName == "" {
		return nil, oops.Code("INVALID_DISPLAY_NAME").
			With("api_key_id", id.String()).
			Errorf("api key display name is required")
	}
	if secret == nil {
		return nil, oops.Code("PASSWORD_MISSING").
			With("api_key_id", id.String()).
			Errorf("api key secret is required")
	}

	k := empty(nil)
	k.Raise(&Created{
		EventBase:   eventsourcing.EventBase{AggregateID: id.String()},
		DisplayName: displayName,
		Secret:      password.HashOf(secret),
	}, actor)
	return k, nil
}

// ID returns the API key id.
func (k *APIKey) ID() ID { return k.id }

// TenantID returns the tenant of the API key.
func (k *APIKey) TenantID() identity.TenantID { return k.id.Tenant() }

// DisplayName returns the display name.
func (k *APIKey) DisplayName() identity.DisplayName { return k.displayName }

// Description returns the description.
func (k *APIKey) Description() identity.Description { return k.description }

// ExpiresOn returns the expiration, zero when the key never expires.
func (k *APIKey) ExpiresOn() time.Time { return k.expiresOn }

// AuthenticatedOn returns the last successful authentication.
func (k *APIKey) AuthenticatedOn() time.Time { return k.authenticatedOn }

// IsExpired reports whether the key is expired at the aggregate's clock.
func (k *APIKey) IsExpired() bool {
	return !k.expiresOn.IsZero() && !k.Now().Before(k.expiresOn)
}

// HasRole reports whether the key holds role.
func (k *APIKey) HasRole(role identity.RoleID) bool {
	_, ok := k.roles[role]
	return ok
}

// Roles returns the held roles in id order.
func (k *APIKey) Roles() []identity.RoleID {
	out := make([]identity.RoleID, 0, len(k.roles))
	for r := range k.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// CustomAttributes returns a copy of the custom attributes.
func (k *APIKey) CustomAttributes() identity.CustomAttributes { return k.customAttributes.Clone() }

// Update applies descriptive changes. An empty update raises nothing.
func (k *APIKey) Update(actor eventsourcing.ActorID, u Update) error {
	if err := k.EnsureNotDeleted(); err != nil {
		return err
	}
	if err := u.CustomAttributes.Validate(); err != nil {
		return err
	}
	if name, ok := u.DisplayName.Value(); ok && name == "" {
		return oops.Code("INVALID_DISPLAY_NAME").
			With("api_key_id", k.id.String()).
			Errorf("api key display name is required")
	}
	if !u.DisplayName.IsSet() && !u.Description.IsSet() && len(u.CustomAttributes) == 0 {
		return nil
	}
	k.Raise(&Updated{
		DisplayName:      u.DisplayName.Ptr(),
		Description:      u.Description.Ptr(),
		CustomAttributes: u.CustomAttributes,
	}, actor)
	return nil
}

// SetExpiration sets when the key expires. The expiration must lie in the
// future and may only be brought forward once set; setting the current
// expiration again is a no-op.
func (k *APIKey) SetExpiration(expiresOn time.Time, actor eventsourcing.ActorID) error {
	if err := k.EnsureNotDeleted(); err != nil {
		return err
	}
	expiresOn = expiresOn.UTC()
	if expiresOn.Equal(k.expiresOn) {
		return nil
	}
	if !expiresOn.After(k.Now()) {
		return oops.Code("API_KEY_EXPIRATION_INVALID").
			With("api_key_id", k.id.String()).
			With("expires_on", expiresOn).
			Wrap(ErrExpirationNotInFuture)
	}
	if !k.expiresOn.IsZero() && expiresOn.After(k.expiresOn) {
		return oops.Code("API_KEY_EXPIRATION_POSTPONED").
			With("api_key_id", k.id.String()).
			With("expires_on", k.expiresOn).
			With("requested_expires_on", expiresOn).
			Wrap(ErrExpirationPostponed)
	}
	k.Raise(&ExpirationSet{ExpiresOn: expiresOn}, actor)
	return nil
}

// Authenticate verifies secret and records the authentication. Expiry is
// reported regardless of whether the secret matches.
func (k *APIKey) Authenticate(secret string, actor eventsourcing.ActorID) error {
	if err := k.EnsureNotDeleted(); err != nil {
		return err
	}
	if k.IsExpired() {
		return expired(k.id, k.expiresOn)
	}
	ok, err := k.secret.Verify(secret, k.passwords)
	if err != nil {
		return oops.With("api_key_id", k.id.String()).Wrap(err)
	}
	if !ok {
		return incorrectSecret(k.id)
	}
	k.Raise(&Authenticated{}, actor)
	return nil
}

// AddRole grants role. Granting a held role is a no-op.
func (k *APIKey) AddRole(role identity.RoleID, actor eventsourcing.ActorID) error {
	if err := k.EnsureNotDeleted(); err != nil {
		return err
	}
	if k.HasRole(role) {
		return nil
	}
	k.Raise(&RoleAdded{RoleID: role}, actor)
	return nil
}

// RemoveRole revokes role. Revoking a role not held is a no-op.
func (k *APIKey) RemoveRole(role identity.RoleID, actor eventsourcing.ActorID) error {
	if err := k.EnsureNotDeleted(); err != nil {
		return err
	}
	if !k.HasRole(role) {
		return nil
	}
	k.Raise(&RoleRemoved{RoleID: role}, actor)
	return nil
}

// Delete logically deletes the API key.
func (k *APIKey) Delete(actor eventsourcing.ActorID) error {
	if err := k.EnsureNotDeleted(); err != nil {
		return err
	}
	k.Raise(&Deleted{}, actor)
	return nil
}

func (k *APIKey) apply(e Event) {
	switch e := e.(type) {
	case *Created:
		k.id = identity.MustParseID[identity.APIKeyKind](e.AggregateID)
		k.displayName = e.DisplayName
		k.secret = e.Secret
	case *Updated:
		if e.DisplayName != nil {
			k.displayName = *e.DisplayName
		}
		if e.Description != nil {
			k.description = *e.Description
		}
		k.customAttributes = k.customAttributes.Apply(e.CustomAttributes)
	case *ExpirationSet:
		k.expiresOn = e.ExpiresOn.UTC()
	case *Authenticated:
		k.authenticatedOn = e.OccurredOn
	case *RoleAdded:
		k.roles[e.RoleID] = struct{}{}
	case *RoleRemoved:
		delete(k.roles, e.RoleID)
	case *Deleted:
	default:
		panic(fmt.Sprintf("apikey: unhandled event %T", e))
	}
}
