// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package role implements the role aggregate: a tenant-scoped, uniquely named
// group that users and API keys are members of.
//
// Name uniqueness and membership cleanup on deletion span several aggregates
// and are enforced by manager.RoleManager, not here.
package role

import (
	"fmt"

	"github.com/samber/oops"

	"github.com/holomush/identity/internal/eventsourcing"
	"github.com/holomush/identity/internal/identity"
)

// AggregateType names role streams.
const AggregateType = "role"

// ID identifies a role.
type ID = identity.RoleID

// Role is an event-sourced role.
type Role struct {
	eventsourcing.Root[Event]

	id               ID
	uniqueName       identity.UniqueName
	displayName      identity.DisplayName
	description      identity.Description
	customAttributes identity.CustomAttributes
}

// Update lists the descriptive changes applied by Role.Update.
type Update struct {
	DisplayName      identity.Change[identity.DisplayName]
	Description      identity.Change[identity.Description]
	CustomAttributes identity.CustomAttributesPatch
}

func empty() *Role {
	r := &Role{customAttributes: identity.CustomAttributes{}}
	r.Root = eventsourcing.NewRoot(r.apply)
	return r
}

// New creates a role. A zero id is generated within tenantID; a given id must
// belong to tenantID.
func New(uniqueName identity.UniqueName, tenantID identity.TenantID, actor eventsourcing.ActorID, id ID) (*Role, error) {
	if err := uniqueName.Validate(); err != nil {
		return nil, err
	}
	if id.IsZero() {
		id = identity.GenerateID[identity.RoleKind](tenantID)
	}
	if id.Tenant() != tenantID {
		return nil, oops.Code("INVALID_ID").
			With("role_id", id.String()).
			With("tenant_id", tenantID.String()).
			Errorf("role id belongs to another tenant")
	}
	r := empty()
	r.Raise(&Created{
		EventBase:  eventsourcing.EventBase{AggregateID: id.String()},
		UniqueName: uniqueName,
	}, actor)
	return r, nil
}

// ID returns the role id.
func (r *Role) ID() ID { return r.id }

// TenantID returns the tenant the role belongs to.
func (r *Role) TenantID() identity.TenantID { return r.id.Tenant() }

// UniqueName returns the role name.
func (r *Role) UniqueName() identity.UniqueName { return r.uniqueName }

// DisplayName returns the display name, empty when unset.
func (r *Role) DisplayName() identity.DisplayName { return r.displayName }

// Description returns the description.
func (r *Role) Description() identity.Description { return r.description }

// CustomAttributes returns a copy of the custom attributes.
func (r *Role) CustomAttributes() identity.CustomAttributes { return r.customAttributes.Clone() }

// SetUniqueName renames the role. Setting the current name is a no-op.
func (r *Role) SetUniqueName(name identity.UniqueName, actor eventsourcing.ActorID) error {
	if err := r.EnsureNotDeleted(); err != nil {
		return err
	}
	if err := name.Validate(); err != nil {
		return err
	}
	if name == r.uniqueName {
		return nil
	}
	r.Raise(&UniqueNameChanged{UniqueName: name}, actor)
	return nil
}

// Update applies descriptive changes. An empty update raises nothing.
func (r *Role) Update(actor eventsourcing.ActorID, u Update) error {
	if err := r.EnsureNotDeleted(); err != nil {
		return err
	}
	if err := u.CustomAttributes.Validate(); err != nil {
		return err
	}
	if !u.DisplayName.IsSet() && !u.Description.IsSet() && len(u.CustomAttributes) == 0 {
		return nil
	}
	r.Raise(&Updated{
		DisplayName:      u.DisplayName.Ptr(),
		Description:      u.Description.Ptr(),
		CustomAttributes: u.CustomAttributes,
	}, actor)
	return nil
}

// Delete logically deletes the role.
func (r *Role) Delete(actor eventsourcing.ActorID) error {
	if err := r.EnsureNotDeleted(); err != nil {
		return err
	}
	r.Raise(&Deleted{}, actor)
	return nil
}

func (r *Role) apply(e Event) {
	switch e := e.(type) {
	case *Created:
		r.id = identity.MustParseID[identity.RoleKind](e.AggregateID)
		r.uniqueName = e.UniqueName
	case *UniqueNameChanged:
		r.uniqueName = e.UniqueName
	case *Updated:
		if e.DisplayName != nil {
			r.displayName = *e.DisplayName
		}
		if e.Description != nil {
			r.description = *e.Description
		}
		r.customAttributes = r.customAttributes.Apply(e.CustomAttributes)
	case *Deleted:
	default:
		panic(fmt.Sprintf("role: unhandled event %T", e))
	}
}
