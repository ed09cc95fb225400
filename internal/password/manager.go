// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package password

import (
	"github.com/samber/oops"

	"github.com/holomush/identity/internal/settings"
)

// Manager is an immutable registry of strategies, shared by all callers.
type Manager struct {
	resolver   settings.Resolver
	strategies map[string]Strategy
}

// DefaultStrategies returns PBKDF2, Argon2id and bcrypt with default parameters.
func DefaultStrategies() []Strategy {
	pbkdf2, _ := NewPBKDF2Strategy(PBKDF2Options{}) // defaults are valid
	return []Strategy{
		pbkdf2,
		NewArgon2IDStrategy(Argon2IDOptions{}),
		NewBcryptStrategy(0),
	}
}

// NewManager registers strategies by key. Registering a key twice is an error.
func NewManager(resolver settings.Resolver, strategies ...Strategy) (*Manager, error) {
	m := &Manager{
		resolver:   resolver,
		strategies: make(map[string]Strategy, len(strategies)),
	}
	for _, s := range strategies {
		if _, dup := m.strategies[s.Key()]; dup {
			return nil, oops.Code("PASSWORD_STRATEGY_DUPLICATE").
				With("strategy", s.Key()).
				Errorf("password strategy registered twice")
		}
		m.strategies[s.Key()] = s
	}
	return m, nil
}

// Strategy returns the strategy registered under key.
func (m *Manager) Strategy(key string) (Strategy, error) {
	s, ok := m.strategies[key]
	if !ok {
		return nil, oops.Code("PASSWORD_STRATEGY_NOT_SUPPORTED").
			With("strategy", key).
			Wrap(ErrStrategyNotSupported)
	}
	return s, nil
}

// Create validates raw against the tenant's policy and hashes it with the
// tenant's strategy.
func (m *Manager) Create(tenantID, raw string) (Password, error) {
	policy := m.resolver.UserSettings(tenantID).Password
	if err := ValidatePolicy(raw, policy); err != nil {
		return nil, oops.With("tenant_id", tenantID).Wrap(err)
	}
	return m.hash(tenantID, raw)
}

// Validate checks raw against the tenant's policy without hashing it.
func (m *Manager) Validate(tenantID, raw string) error {
	return ValidatePolicy(raw, m.resolver.UserSettings(tenantID).Password)
}

// Generate creates a random secret of length characters and its hash. The
// policy is not applied; generated secrets have their own entropy.
func (m *Manager) Generate(tenantID string, length int) (Password, string, error) {
	return m.generate(tenantID, SecretCharacters, length)
}

// GenerateOTP creates a random one-time password from characters and its hash.
func (m *Manager) GenerateOTP(tenantID, characters string, length int) (Password, string, error) {
	return m.generate(tenantID, characters, length)
}

// Decode dispatches an encoded password to the strategy named by its prefix.
func (m *Manager) Decode(encoded string) (Password, error) {
	s, err := m.Strategy(StrategyKey(encoded))
	if err != nil {
		return nil, err
	}
	return s.Decode(encoded)
}

func (m *Manager) generate(tenantID, characters string, length int) (Password, string, error) {
	plain, err := RandomString(characters, length)
	if err != nil {
		return nil, "", err
	}
	p, err := m.hash(tenantID, plain)
	if err != nil {
		return nil, "", err
	}
	return p, plain, nil
}

func (m *Manager) hash(tenantID, raw string) (Password, error) {
	key := m.resolver.UserSettings(tenantID).Password.HashingStrategy
	s, err := m.Strategy(key)
	if err != nil {
		return nil, oops.With("tenant_id", tenantID).Wrap(err)
	}
	return s.Create(raw)
}
