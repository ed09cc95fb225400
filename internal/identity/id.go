// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package identity

import (
	"errors"
	"strings"

	"github.com/samber/oops"

	"github.com/holomush/identity/internal/core"
)

// ErrInvalidID is wrapped by id parsing failures.
var ErrInvalidID = errors.New("invalid id")

// TenantID identifies a tenant. The empty tenant is the default one.
type TenantID string

// String returns the tenant id.
func (t TenantID) String() string { return string(t) }

// EntityID identifies an entity within a tenant.
type EntityID string

// String returns the entity id.
func (e EntityID) String() string { return string(e) }

// Aggregate kinds. Each instantiates ID to a distinct type.
type (
	UserKind    struct{}
	RoleKind    struct{}
	SessionKind struct{}
	APIKeyKind  struct{}
	OTPKind     struct{}
)

// Kind-scoped ids.
type (
	UserID    = ID[UserKind]
	RoleID    = ID[RoleKind]
	SessionID = ID[SessionKind]
	APIKeyID  = ID[APIKeyKind]
	OTPID     = ID[OTPKind]
)

// ID is an optionally tenant-scoped aggregate id. K only distinguishes the
// id kinds at compile time; it is never stored.
//
// The serialized form is "{tenant}:{entity}", or "{entity}" without a tenant.
type ID[K any] struct {
	tenant TenantID
	entity EntityID
}

// NewID builds an id from its parts.
func NewID[K any](tenant TenantID, entity EntityID) ID[K] {
	return ID[K]{tenant: tenant, entity: entity}
}

// GenerateID returns a new id with a ULID entity part.
func GenerateID[K any](tenant TenantID) ID[K] {
	return ID[K]{tenant: tenant, entity: EntityID(core.NewULID().String())}
}

// ParseID parses the serialized form. The entity part follows the last colon,
// so tenant ids may themselves contain colons.
func ParseID[K any](s string) (ID[K], error) {
	if s == "" {
		return ID[K]{}, oops.Code("INVALID_ID").With("value", s).Wrap(ErrInvalidID)
	}
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return ID[K]{entity: EntityID(s)}, nil
	}
	tenant, entity := s[:i], s[i+1:]
	if tenant == "" || entity == "" {
		return ID[K]{}, oops.Code("INVALID_ID").With("value", s).Wrap(ErrInvalidID)
	}
	return ID[K]{tenant: TenantID(tenant), entity: EntityID(entity)}, nil
}

// MustParseID is ParseID for ids known to be valid, such as persisted ones.
func MustParseID[K any](s string) ID[K] {
	id, err := ParseID[K](s)
	if err != nil {
		panic(err)
	}
	return id
}

// Tenant returns the tenant part, empty when absent.
func (id ID[K]) Tenant() TenantID { return id.tenant }

// Entity returns the entity part.
func (id ID[K]) Entity() EntityID { return id.entity }

// IsZero reports whether id is the zero id.
func (id ID[K]) IsZero() bool { return id.entity == "" }

// String returns the serialized form.
func (id ID[K]) String() string {
	if id.tenant == "" {
		return string(id.entity)
	}
	return string(id.tenant) + ":" + string(id.entity)
}

// MarshalText implements encoding.TextMarshaler.
func (id ID[K]) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty text yields the zero id.
func (id *ID[K]) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*id = ID[K]{}
		return nil
	}
	parsed, err := ParseID[K](string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
