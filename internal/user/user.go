// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package user implements the user aggregate: credentials, verifiable
// contacts, profile, role memberships and external identifiers.
//
// Uniqueness of names, emails and external identifiers across users is
// enforced by manager.UserManager.
package user

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/holomush/identity/internal/eventsourcing"
	"github.com/holomush/identity/internal/identity"
	"github.com/holomush/identity/internal/password"
)

// AggregateType names user streams.
const AggregateType = "user"

// ID identifies a user.
type ID = identity.UserID

// Contact is a contact value and its verification state. The zero Value
// means the contact is not set.
type Contact[T comparable] struct {
	Value      T
	IsVerified bool
	VerifiedBy eventsourcing.ActorID
	VerifiedOn time.Time
}

// IsSet reports whether the contact has a value.
func (c Contact[T]) IsSet() bool {
	var zero T
	return c.Value != zero
}

func (c *Contact[T]) change(value T, verified bool, e *eventsourcing.EventBase) {
	var zero T
	if value == zero {
		*c = Contact[T]{}
		return
	}
	c.Value = value
	c.IsVerified = verified
	if verified {
		c.VerifiedBy = e.ActorID
		c.VerifiedOn = e.OccurredOn
	} else {
		c.VerifiedBy = ""
		c.VerifiedOn = time.Time{}
	}
}

// User is an event-sourced user.
type User struct {
	eventsourcing.Root[Event]

	passwords password.Decoder

	id                ID
	uniqueName        identity.UniqueName
	password          password.Hash
	passwordChangedBy eventsourcing.ActorID
	passwordChangedOn time.Time
	email             Contact[identity.EmailAddress]
	phone             Contact[identity.PhoneNumber]
	address           Contact[identity.Address]
	profile           Profile
	disabled          bool
	disabledBy        eventsourcing.ActorID
	disabledOn        time.Time
	roles             map[identity.RoleID]struct{}
	customIdentifiers map[identity.CustomIdentifier]string
	customAttributes  identity.CustomAttributes
	authenticatedOn   time.Time
}

func empty(passwords password.Decoder) *User {
	u := &User{
		passwords:         passwords,
		roles:             make(map[identity.RoleID]struct{}),
		customIdentifiers: make(map[identity.CustomIdentifier]string),
		customAttributes:  identity.CustomAttributes{},
	}
	u.Root = eventsourcing.NewRoot(u.apply)
	return u
}

// New creates a user. A zero id is generated within tenantID; a given id must
// belong to tenantID.
func New(uniqueName identity.UniqueName, tenantID identity.TenantID, actor eventsourcing.ActorID, id ID) (*User, error) {
	if err := uniqueName.Validate(); err != nil {
		return nil, err
	}
	if id.IsZero() {
		id = identity.GenerateID[identity.UserKind](tenantID)
	}
	if id.Tenant() != tenantID {
		return nil, oops.Code("INVALID_ID").
			With("user_id", id.String()).
			With("tenant_id", tenantID.String()).
			Errorf("user id belongs to another tenant")
	}
	u := empty(nil)
	u.Raise(&Created{
		EventBase:  eventsourcing.EventBase{AggregateID: id.String()},
		UniqueName: uniqueName,
	}, actor)
	return u, nil
}

// ID returns the user id.
func (u *User) ID() ID { return u.id }

// TenantID returns the tenant the user belongs to.
func (u *User) TenantID() identity.TenantID { return u.id.Tenant() }

// UniqueName returns the user name.
func (u *User) UniqueName() identity.UniqueName { return u.uniqueName }

// HasPassword reports whether the user can authenticate with a password.
func (u *User) HasPassword() bool { return !u.password.IsZero() }

// PasswordChangedBy returns who last set the password.
func (u *User) PasswordChangedBy() eventsourcing.ActorID { return u.passwordChangedBy }

// PasswordChangedOn returns when the password was last set.
func (u *User) PasswordChangedOn() time.Time { return u.passwordChangedOn }

// Email returns the email contact.
func (u *User) Email() Contact[identity.EmailAddress] { return u.email }

// Phone returns the phone contact.
func (u *User) Phone() Contact[identity.PhoneNumber] { return u.phone }

// Address returns the postal address contact.
func (u *User) Address() Contact[identity.Address] { return u.address }

// Profile returns the descriptive fields.
func (u *User) Profile() Profile { return u.profile }

// FullName joins first, middle and last name.
func (u *User) FullName() string { return u.profile.FullName() }

// IsDisabled reports whether the user is disabled.
func (u *User) IsDisabled() bool { return u.disabled }

// DisabledBy returns who disabled the user.
func (u *User) DisabledBy() eventsourcing.ActorID { return u.disabledBy }

// DisabledOn returns when the user was disabled.
func (u *User) DisabledOn() time.Time { return u.disabledOn }

// AuthenticatedOn returns the time of the last sign-in.
func (u *User) AuthenticatedOn() time.Time { return u.authenticatedOn }

// HasRole reports whether the user is a member of role.
func (u *User) HasRole(role identity.RoleID) bool {
	_, ok := u.roles[role]
	return ok
}

// Roles returns the role memberships ordered by id.
func (u *User) Roles() []identity.RoleID {
	ids := slices.Collect(maps.Keys(u.roles))
	slices.SortFunc(ids, func(a, b identity.RoleID) int { return strings.Compare(a.String(), b.String()) })
	return ids
}

// CustomIdentifier returns the external identifier stored under key.
func (u *User) CustomIdentifier(key identity.CustomIdentifier) (string, bool) {
	v, ok := u.customIdentifiers[key]
	return v, ok
}

// CustomIdentifiers returns a copy of the external identifiers.
func (u *User) CustomIdentifiers() map[identity.CustomIdentifier]string {
	return maps.Clone(u.customIdentifiers)
}

// CustomAttributes returns a copy of the custom attributes.
func (u *User) CustomAttributes() identity.CustomAttributes { return u.customAttributes.Clone() }

// SetUniqueName renames the user. Setting the current name is a no-op.
func (u *User) SetUniqueName(name identity.UniqueName, actor eventsourcing.ActorID) error {
	if err := u.EnsureNotDeleted(); err != nil {
		return err
	}
	if err := name.Validate(); err != nil {
		return err
	}
	if name == u.uniqueName {
		return nil
	}
	u.Raise(&UniqueNameChanged{UniqueName: name}, actor)
	return nil
}

// SetPassword replaces the password without checking the current one.
func (u *User) SetPassword(p password.Password, actor eventsourcing.ActorID) error {
	if err := u.EnsureNotDeleted(); err != nil {
		return err
	}
	if p == nil {
		return oops.Code("PASSWORD_MISSING").With("user_id", u.id.String()).Errorf("password is required")
	}
	u.Raise(&PasswordChanged{Password: password.HashOf(p)}, actor)
	return nil
}

// ChangePassword replaces the password after verifying current.
func (u *User) ChangePassword(current string, p password.Password, actor eventsourcing.ActorID) error {
	if err := u.EnsureNotDeleted(); err != nil {
		return err
	}
	if err := u.verifyPassword(current); err != nil {
		return err
	}
	return u.SetPassword(p, actor)
}

// ResetPassword replaces the password through a reset flow.
func (u *User) ResetPassword(p password.Password, actor eventsourcing.ActorID) error {
	if err := u.EnsureNotDeleted(); err != nil {
		return err
	}
	if p == nil {
		return oops.Code("PASSWORD_MISSING").With("user_id", u.id.String()).Errorf("password is required")
	}
	u.Raise(&PasswordReset{Password: password.HashOf(p)}, actor)
	return nil
}

// RemovePassword removes the password. Removing an absent password is a no-op.
func (u *User) RemovePassword(actor eventsourcing.ActorID) error {
	if err := u.EnsureNotDeleted(); err != nil {
		return err
	}
	if !u.HasPassword() {
		return nil
	}
	u.Raise(&PasswordRemoved{}, actor)
	return nil
}

// Authenticate verifies candidate against the password. It raises no event;
// a successful sign-in is recorded by RecordSignIn.
func (u *User) Authenticate(candidate string) error {
	if err := u.EnsureNotDeleted(); err != nil {
		return err
	}
	if u.disabled {
		return isDisabled(u.id)
	}
	return u.verifyPassword(candidate)
}

// RecordSignIn records that session was opened for the user.
func (u *User) RecordSignIn(session identity.SessionID, actor eventsourcing.ActorID) error {
	if err := u.EnsureNotDeleted(); err != nil {
		return err
	}
	if u.disabled {
		return isDisabled(u.id)
	}
	u.Raise(&SignedIn{SessionID: session}, actor)
	return nil
}

// SetEmail sets the email, or removes it when email is empty.
func (u *User) SetEmail(email identity.EmailAddress, verified bool, actor eventsourcing.ActorID) error {
	if err := u.EnsureNotDeleted(); err != nil {
		return err
	}
	if email == u.email.Value && (email == "" || verified == u.email.IsVerified) {
		return nil
	}
	u.Raise(&EmailChanged{Email: email, IsVerified: verified && email != ""}, actor)
	return nil
}

// SetPhone sets the phone number, or removes it when phone is empty.
func (u *User) SetPhone(phone identity.PhoneNumber, verified bool, actor eventsourcing.ActorID) error {
	if err := u.EnsureNotDeleted(); err != nil {
		return err
	}
	if phone == u.phone.Value && (phone == "" || verified == u.phone.IsVerified) {
		return nil
	}
	u.Raise(&PhoneChanged{Phone: phone, IsVerified: verified && phone != ""}, actor)
	return nil
}

// SetAddress sets the postal address, or removes it when address is nil.
func (u *User) SetAddress(address *identity.Address, verified bool, actor eventsourcing.ActorID) error {
	if err := u.EnsureNotDeleted(); err != nil {
		return err
	}
	if address == nil {
		if !u.address.IsSet() {
			return nil
		}
		u.Raise(&AddressChanged{}, actor)
		return nil
	}
	if err := address.Validate(); err != nil {
		return err
	}
	if *address == u.address.Value && verified == u.address.IsVerified {
		return nil
	}
	a := *address
	u.Raise(&AddressChanged{Address: &a, IsVerified: verified}, actor)
	return nil
}

// Disable prevents authentication. Disabling a disabled user is a no-op.
func (u *User) Disable(actor eventsourcing.ActorID) error {
	if err := u.EnsureNotDeleted(); err != nil {
		return err
	}
	if u.disabled {
		return nil
	}
	u.Raise(&Disabled{}, actor)
	return nil
}

// Enable lifts Disable. Enabling an enabled user is a no-op.
func (u *User) Enable(actor eventsourcing.ActorID) error {
	if err := u.EnsureNotDeleted(); err != nil {
		return err
	}
	if !u.disabled {
		return nil
	}
	u.Raise(&Enabled{}, actor)
	return nil
}

// SetCustomIdentifier links the user to an external identifier.
func (u *User) SetCustomIdentifier(key identity.CustomIdentifier, value string, actor eventsourcing.ActorID) error {
	if err := u.EnsureNotDeleted(); err != nil {
		return err
	}
	if err := key.Validate(); err != nil {
		return err
	}
	if value == "" || len(value) > identity.MaxCustomValueLength {
		return oops.Code("INVALID_CUSTOM_IDENTIFIER").
			With("custom_identifier", key.String()).
			Wrap(identity.ErrInvalidCustomIdentifier)
	}
	if current, ok := u.customIdentifiers[key]; ok && current == value {
		return nil
	}
	u.Raise(&CustomIdentifierSet{Key: key, Value: value}, actor)
	return nil
}

// RemoveCustomIdentifier unlinks an external identifier. Removing an absent
// key is a no-op.
func (u *User) RemoveCustomIdentifier(key identity.CustomIdentifier, actor eventsourcing.ActorID) error {
	if err := u.EnsureNotDeleted(); err != nil {
		return err
	}
	if _, ok := u.customIdentifiers[key]; !ok {
		return nil
	}
	u.Raise(&CustomIdentifierRemoved{Key: key}, actor)
	return nil
}

// AddRole grants role. Granting a held role is a no-op.
func (u *User) AddRole(role identity.RoleID, actor eventsourcing.ActorID) error {
	if err := u.EnsureNotDeleted(); err != nil {
		return err
	}
	if u.HasRole(role) {
		return nil
	}
	u.Raise(&RoleAdded{RoleID: role}, actor)
	return nil
}

// RemoveRole revokes role. Revoking a role not held is a no-op.
func (u *User) RemoveRole(role identity.RoleID, actor eventsourcing.ActorID) error {
	if err := u.EnsureNotDeleted(); err != nil {
		return err
	}
	if !u.HasRole(role) {
		return nil
	}
	u.Raise(&RoleRemoved{RoleID: role}, actor)
	return nil
}

// Update applies profile changes. An empty update raises nothing.
func (u *User) Update(actor eventsourcing.ActorID, upd Update) error {
	if err := u.EnsureNotDeleted(); err != nil {
		return err
	}
	if upd.isEmpty() {
		return nil
	}
	e, err := upd.event()
	if err != nil {
		return oops.With("user_id", u.id.String()).Wrap(err)
	}
	u.Raise(e, actor)
	return nil
}

// Delete logically deletes the user.
func (u *User) Delete(actor eventsourcing.ActorID) error {
	if err := u.EnsureNotDeleted(); err != nil {
		return err
	}
	u.Raise(&Deleted{}, actor)
	return nil
}

func (u *User) verifyPassword(candidate string) error {
	if !u.HasPassword() {
		return hasNoPassword(u.id)
	}
	ok, err := u.password.Verify(candidate, u.passwords)
	if err != nil {
		return oops.With("user_id", u.id.String()).Wrap(err)
	}
	if !ok {
		return incorrectPassword(u.id)
	}
	return nil
}

func (u *User) apply(e Event) {
	switch e := e.(type) {
	case *Created:
		u.id = identity.MustParseID[identity.UserKind](e.AggregateID)
		u.uniqueName = e.UniqueName
	case *UniqueNameChanged:
		u.uniqueName = e.UniqueName
	case *PasswordChanged:
		u.setPassword(e.Password, &e.EventBase)
	case *PasswordReset:
		u.setPassword(e.Password, &e.EventBase)
	case *PasswordRemoved:
		u.setPassword(password.Hash{}, &e.EventBase)
	case *EmailChanged:
		u.email.change(e.Email, e.IsVerified, &e.EventBase)
	case *PhoneChanged:
		u.phone.change(e.Phone, e.IsVerified, &e.EventBase)
	case *AddressChanged:
		var a identity.Address
		if e.Address != nil {
			a = *e.Address
		}
		u.address.change(a, e.IsVerified, &e.EventBase)
	case *Disabled:
		u.disabled = true
		u.disabledBy = e.ActorID
		u.disabledOn = e.OccurredOn
	case *Enabled:
		u.disabled = false
		u.disabledBy = ""
		u.disabledOn = time.Time{}
	case *CustomIdentifierSet:
		u.customIdentifiers[e.Key] = e.Value
	case *CustomIdentifierRemoved:
		delete(u.customIdentifiers, e.Key)
	case *RoleAdded:
		u.roles[e.RoleID] = struct{}{}
	case *RoleRemoved:
		delete(u.roles, e.RoleID)
	case *SignedIn:
		u.authenticatedOn = e.OccurredOn
	case *Updated:
		u.profile.apply(e)
		u.customAttributes = u.customAttributes.Apply(e.CustomAttributes)
	case *Deleted:
	default:
		panic(fmt.Sprintf("user: unhandled event %T", e))
	}
}

func (u *User) setPassword(h password.Hash, e *eventsourcing.EventBase) {
	u.password = h
	u.passwordChangedBy = e.ActorID
	u.passwordChangedOn = e.OccurredOn
}
