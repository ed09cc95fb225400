// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package identity_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/identity/internal/identity"
	"github.com/holomush/identity/internal/settings"
	"github.com/holomush/identity/pkg/errutil"
)

func TestID(t *testing.T) {
	t.Run("serializes with and without tenant", func(t *testing.T) {
		assert.Equal(t, "acme:u1", identity.NewID[identity.UserKind]("acme", "u1").String())
		assert.Equal(t, "u1", identity.NewID[identity.UserKind]("", "u1").String())
	})

	t.Run("parses the serialized form", func(t *testing.T) {
		id, err := identity.ParseID[identity.RoleKind]("acme:eu:r1")
		require.NoError(t, err)
		assert.Equal(t, identity.TenantID("acme:eu"), id.Tenant())
		assert.Equal(t, identity.EntityID("r1"), id.Entity())

		bare, err := identity.ParseID[identity.RoleKind]("r1")
		require.NoError(t, err)
		assert.Empty(t, bare.Tenant())
	})

	t.Run("rejects malformed ids", func(t *testing.T) {
		for _, s := range []string{"", ":r1", "acme:"} {
			_, err := identity.ParseID[identity.RoleKind](s)
			assert.True(t, errors.Is(err, identity.ErrInvalidID), "value %q", s)
		}
	})

	t.Run("generated ids are unique and tenant scoped", func(t *testing.T) {
		a := identity.GenerateID[identity.SessionKind]("acme")
		b := identity.GenerateID[identity.SessionKind]("acme")
		assert.NotEqual(t, a, b)
		assert.Equal(t, identity.TenantID("acme"), a.Tenant())
		assert.False(t, a.IsZero())
	})

	t.Run("round-trips through JSON as a string", func(t *testing.T) {
		type holder struct {
			Role identity.RoleID `json:"role"`
			None identity.RoleID `json:"none"`
		}
		data, err := json.Marshal(holder{Role: identity.NewID[identity.RoleKind]("acme", "r1")})
		require.NoError(t, err)
		assert.JSONEq(t, `{"role":"acme:r1","none":""}`, string(data))

		var back holder
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, "acme:r1", back.Role.String())
		assert.True(t, back.None.IsZero())
	})
}

func TestNewUniqueName(t *testing.T) {
	s := settings.DefaultUniqueNameSettings()
	tests := []struct {
		name  string
		value string
		ok    bool
	}{
		{"plain", "alice", true},
		{"email-like", "alice.smith+test@example.com", true},
		{"empty", "", false},
		{"space", "alice smith", false},
		{"unicode", "alîce", false},
		{"too long", strings.Repeat("a", 256), false},
		{"at limit", strings.Repeat("a", 255), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := identity.NewUniqueName(tt.value, s)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.value, n.String())
				return
			}
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "INVALID_UNIQUE_NAME")
		})
	}

	t.Run("honours configured character set", func(t *testing.T) {
		_, err := identity.NewUniqueName("Admin", settings.UniqueNameSettings{AllowedCharacters: "abcdefghijklmnopqrstuvwxyz"})
		errutil.AssertErrorContext(t, err, "character", "A")
	})

	t.Run("matches case-insensitively", func(t *testing.T) {
		assert.True(t, identity.UniqueName("Admin").Matches("aDMIN"))
		assert.False(t, identity.UniqueName("admin").Matches("admins"))
	})
}

func TestNewCustomIdentifier(t *testing.T) {
	_, err := identity.NewCustomIdentifier("employee_id-2")
	require.NoError(t, err)

	for _, bad := range []string{"", "has space", "dot.ted", strings.Repeat("k", 65)} {
		_, err := identity.NewCustomIdentifier(bad)
		assert.True(t, errors.Is(err, identity.ErrInvalidCustomIdentifier), "value %q", bad)
	}
}

func TestCustomAttributes_Apply(t *testing.T) {
	attrs := identity.CustomAttributes{"team": "blue", "floor": "3"}
	patch := identity.CustomAttributesPatch{}.
		Set("team", "red").
		Set("desk", "12").
		Remove("floor").
		Remove("absent")

	got := attrs.Apply(patch)

	assert.Equal(t, identity.CustomAttributes{"team": "red", "desk": "12"}, got)
	assert.Equal(t, "blue", attrs["team"], "the receiver is not modified")
}

func TestCustomAttributesPatch_Validate(t *testing.T) {
	assert.NoError(t, identity.CustomAttributesPatch{}.Set("k", "v").Validate())
	err := identity.CustomAttributesPatch{}.Set("k", strings.Repeat("v", 1025)).Validate()
	errutil.AssertErrorCode(t, err, "INVALID_CUSTOM_ATTRIBUTE")

	err = identity.CustomAttributesPatch{}.Set("not a valid key!!", "v").Validate()
	errutil.AssertErrorCode(t, err, "INVALID_CUSTOM_IDENTIFIER")

	err = identity.CustomAttributesPatch{}.Remove("").Validate()
	errutil.AssertErrorCode(t, err, "INVALID_CUSTOM_IDENTIFIER")
}

func TestUniqueName_Validate(t *testing.T) {
	assert.NoError(t, identity.UniqueName("alice").Validate())
	assert.NoError(t, identity.UniqueName(strings.Repeat("a", identity.MaxUniqueNameLength)).Validate())

	for _, bad := range []identity.UniqueName{"", identity.UniqueName(strings.Repeat("a", identity.MaxUniqueNameLength+1))} {
		err := bad.Validate()
		errutil.AssertErrorCode(t, err, "INVALID_UNIQUE_NAME")
		assert.True(t, errors.Is(err, identity.ErrInvalidUniqueName))
	}
}

func TestText(t *testing.T) {
	d, err := identity.NewDisplayName("  Administrators ")
	require.NoError(t, err)
	assert.Equal(t, "Administrators", d.String())

	_, err = identity.NewDisplayName("   ")
	errutil.AssertErrorCode(t, err, "INVALID_DISPLAY_NAME")

	_, err = identity.NewDescription(strings.Repeat("x", 1001))
	errutil.AssertErrorCode(t, err, "INVALID_DESCRIPTION")
}

func TestContacts(t *testing.T) {
	e, err := identity.NewEmailAddress("Alice@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, "Alice@example.com", e.String())
	assert.True(t, e.Matches("alice@example.com"))

	for _, bad := range []string{"", "alice", "Alice <alice@example.com>"} {
		_, err := identity.NewEmailAddress(bad)
		errutil.AssertErrorCode(t, err, "INVALID_EMAIL")
	}

	_, err = identity.NewPhoneNumber("+15551234567")
	require.NoError(t, err)
	_, err = identity.NewPhoneNumber("555-1234")
	errutil.AssertErrorCode(t, err, "INVALID_PHONE_NUMBER")

	assert.Error(t, identity.Address{}.Validate())
	assert.NoError(t, identity.Address{Country: "NZ"}.Validate())
}

func TestChange(t *testing.T) {
	var unset identity.Change[string]
	assert.False(t, unset.IsSet())
	assert.Nil(t, unset.Ptr())

	cleared := identity.Set("")
	require.NotNil(t, cleared.Ptr())
	assert.Empty(t, *cleared.Ptr())

	v, ok := identity.Set(42).Value()
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}
