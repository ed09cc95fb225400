// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package settings holds the read-only configuration snapshots the identity
// aggregates and managers consult, and the loader that builds them.
package settings

// DefaultUniqueNameCharacters is the character set unique names may use
// unless configured otherwise.
const DefaultUniqueNameCharacters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-._@+"

// UniqueNameSettings constrains user and role unique names.
type UniqueNameSettings struct {
	AllowedCharacters string `koanf:"allowed_characters" json:"allowed_characters,omitempty" jsonschema:"description=Characters a unique name may contain"`
	MaximumLength     int    `koanf:"maximum_length" json:"maximum_length,omitempty" jsonschema:"minimum=1,maximum=255"`
}

// PasswordSettings is the human password policy and hashing strategy.
type PasswordSettings struct {
	HashingStrategy        string `koanf:"hashing_strategy" json:"hashing_strategy,omitempty" jsonschema:"enum=PBKDF2,enum=ARGON2ID,enum=BCRYPT"`
	RequiredLength         int    `koanf:"required_length" json:"required_length,omitempty" jsonschema:"minimum=0"`
	RequiredUniqueChars    int    `koanf:"required_unique_chars" json:"required_unique_chars,omitempty" jsonschema:"minimum=0"`
	RequireNonAlphanumeric bool   `koanf:"require_non_alphanumeric" json:"require_non_alphanumeric,omitempty"`
	RequireLowercase       bool   `koanf:"require_lowercase" json:"require_lowercase,omitempty"`
	RequireUppercase       bool   `koanf:"require_uppercase" json:"require_uppercase,omitempty"`
	RequireDigit           bool   `koanf:"require_digit" json:"require_digit,omitempty"`
}

// UserSettings applies to users of one tenant.
type UserSettings struct {
	UniqueName         UniqueNameSettings `koanf:"unique_name" json:"unique_name,omitempty"`
	Password           PasswordSettings   `koanf:"password" json:"password,omitempty"`
	RequireUniqueEmail bool               `koanf:"require_unique_email" json:"require_unique_email,omitempty"`
}

// RoleSettings applies to roles of one tenant.
type RoleSettings struct {
	UniqueName UniqueNameSettings `koanf:"unique_name" json:"unique_name,omitempty"`
}

// Resolver resolves the settings of a tenant. An empty tenant id selects the
// defaults. Implementations must be safe for concurrent use.
type Resolver interface {
	UserSettings(tenantID string) UserSettings
	RoleSettings(tenantID string) RoleSettings
}

// DefaultUniqueNameSettings returns the built-in unique name constraints.
func DefaultUniqueNameSettings() UniqueNameSettings {
	return UniqueNameSettings{
		AllowedCharacters: DefaultUniqueNameCharacters,
		MaximumLength:     255,
	}
}

// DefaultPasswordSettings returns the built-in password policy.
func DefaultPasswordSettings() PasswordSettings {
	return PasswordSettings{
		HashingStrategy:        "PBKDF2",
		RequiredLength:         8,
		RequiredUniqueChars:    1,
		RequireNonAlphanumeric: true,
		RequireLowercase:       true,
		RequireUppercase:       true,
		RequireDigit:           true,
	}
}

// DefaultUserSettings returns the built-in user settings.
func DefaultUserSettings() UserSettings {
	return UserSettings{
		UniqueName: DefaultUniqueNameSettings(),
		Password:   DefaultPasswordSettings(),
	}
}

// DefaultRoleSettings returns the built-in role settings.
func DefaultRoleSettings() RoleSettings {
	return RoleSettings{UniqueName: DefaultUniqueNameSettings()}
}

func (s UniqueNameSettings) withDefaults() UniqueNameSettings {
	d := DefaultUniqueNameSettings()
	if s.AllowedCharacters == "" {
		s.AllowedCharacters = d.AllowedCharacters
	}
	if s.MaximumLength <= 0 {
		s.MaximumLength = d.MaximumLength
	}
	return s
}

func (s PasswordSettings) withDefaults() PasswordSettings {
	if s.HashingStrategy == "" {
		s.HashingStrategy = DefaultPasswordSettings().HashingStrategy
	}
	return s
}
