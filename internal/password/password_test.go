// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package password_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/identity/internal/password"
	"github.com/holomush/identity/pkg/errutil"
)

// fastStrategies keeps hashing cheap in tests.
func fastStrategies(t *testing.T) []password.Strategy {
	t.Helper()
	pbkdf2, err := password.NewPBKDF2Strategy(password.PBKDF2Options{Iterations: 1000})
	require.NoError(t, err)
	pbkdf2512, err := password.NewPBKDF2Strategy(password.PBKDF2Options{Algorithm: password.SHA512, Iterations: 1000, HashLength: 32})
	require.NoError(t, err)
	return []password.Strategy{
		pbkdf2,
		pbkdf2512,
		password.NewArgon2IDStrategy(password.Argon2IDOptions{Memory: 1024, Threads: 1}),
		password.NewBcryptStrategy(4),
	}
}

func TestStrategies_RoundTrip(t *testing.T) {
	for _, s := range fastStrategies(t) {
		t.Run(s.Key(), func(t *testing.T) {
			const raw = "correct horse battery staple"
			p, err := s.Create(raw)
			require.NoError(t, err)

			encoded := p.Encode()
			assert.True(t, strings.HasPrefix(encoded, s.Key()+":"))
			assert.NotContains(t, encoded, raw)

			decoded, err := s.Decode(encoded)
			require.NoError(t, err)
			assert.Equal(t, encoded, decoded.Encode())
			assert.True(t, decoded.IsMatch(raw))
			assert.False(t, decoded.IsMatch(raw+"x"))
			assert.False(t, decoded.IsMatch(""))
		})
	}
}

func TestStrategies_SaltIsFresh(t *testing.T) {
	for _, s := range fastStrategies(t) {
		t.Run(s.Key(), func(t *testing.T) {
			a, err := s.Create("secret")
			require.NoError(t, err)
			b, err := s.Create("secret")
			require.NoError(t, err)
			assert.NotEqual(t, a.Encode(), b.Encode())
		})
	}
}

func TestStrategies_RejectEmpty(t *testing.T) {
	for _, s := range fastStrategies(t) {
		_, err := s.Create("")
		assert.True(t, errors.Is(err, password.ErrEmptyPassword), s.Key())
	}
}

func TestPBKDF2_Format(t *testing.T) {
	s, err := password.NewPBKDF2Strategy(password.PBKDF2Options{Iterations: 10})
	require.NoError(t, err)
	p, err := s.Create("pw")
	require.NoError(t, err)

	parts := strings.Split(p.Encode(), ":")
	require.Len(t, parts, 5)
	assert.Equal(t, []string{"PBKDF2", "SHA256", "10"}, parts[:3])
}

func TestPBKDF2_UnsupportedAlgorithm(t *testing.T) {
	_, err := password.NewPBKDF2Strategy(password.PBKDF2Options{Algorithm: "MD5"})
	errutil.AssertErrorCode(t, err, "PASSWORD_STRATEGY_INVALID")
}

func TestDecode_Malformed(t *testing.T) {
	strategies := fastStrategies(t)
	tests := []struct {
		name     string
		strategy password.Strategy
		encoded  string
	}{
		{"pbkdf2 missing fields", strategies[0], "PBKDF2:SHA256:1000"},
		{"pbkdf2 bad iterations", strategies[0], "PBKDF2:SHA256:many:c2FsdA:aGFzaA"},
		{"pbkdf2 bad algorithm", strategies[0], "PBKDF2:MD5:1000:c2FsdA:aGFzaA"},
		{"pbkdf2 bad base64", strategies[0], "PBKDF2:SHA256:1000:!!:aGFzaA"},
		{"argon2 wrong key", strategies[2], "PBKDF2:19:1024:1:1:c2FsdA:aGFzaA"},
		{"argon2 threads overflow", strategies[2], "ARGON2ID:19:1024:1:300:c2FsdA:aGFzaA"},
		{"bcrypt not a hash", strategies[3], "BCRYPT:nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.strategy.Decode(tt.encoded)
			require.Error(t, err)
			assert.True(t, errors.Is(err, password.ErrMalformedHash))
		})
	}
}

func TestStrategyKey(t *testing.T) {
	assert.Equal(t, "BCRYPT", password.StrategyKey("BCRYPT:$2a$04$abc"))
	assert.Equal(t, "plain", password.StrategyKey("plain"))
}
