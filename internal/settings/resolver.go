// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package settings

// StaticResolver resolves settings from a configuration snapshot taken at
// construction. It is immutable and safe for concurrent use.
type StaticResolver struct {
	users       UserSettings
	roles       RoleSettings
	tenantUsers map[string]UserSettings
	tenantRoles map[string]RoleSettings
}

// NewStaticResolver snapshots cfg. Missing values fall back to the built-in defaults.
func NewStaticResolver(cfg Config) *StaticResolver {
	r := &StaticResolver{
		users:       cfg.Users.withDefaults(),
		roles:       cfg.Roles.withDefaults(),
		tenantUsers: make(map[string]UserSettings),
		tenantRoles: make(map[string]RoleSettings),
	}
	for tenant, tc := range cfg.Tenants {
		if tc.Users != nil {
			r.tenantUsers[tenant] = tc.Users.withDefaults()
		}
		if tc.Roles != nil {
			r.tenantRoles[tenant] = tc.Roles.withDefaults()
		}
	}
	return r
}

// UserSettings implements Resolver.
func (r *StaticResolver) UserSettings(tenantID string) UserSettings {
	if s, ok := r.tenantUsers[tenantID]; ok {
		return s
	}
	return r.users
}

// RoleSettings implements Resolver.
func (r *StaticResolver) RoleSettings(tenantID string) RoleSettings {
	if s, ok := r.tenantRoles[tenantID]; ok {
		return s
	}
	return r.roles
}

func (s UserSettings) withDefaults() UserSettings {
	s.UniqueName = s.UniqueName.withDefaults()
	s.Password = s.Password.withDefaults()
	return s
}

func (s RoleSettings) withDefaults() RoleSettings {
	s.UniqueName = s.UniqueName.withDefaults()
	return s
}
