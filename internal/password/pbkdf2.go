// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"hash"
	"strconv"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/pbkdf2"
)

// KeyPBKDF2 prefixes PBKDF2 passwords.
const KeyPBKDF2 = "PBKDF2"

// PBKDF2 HMAC variants.
const (
	SHA256 = "SHA256"
	SHA512 = "SHA512"
)

// PBKDF2Options configures the PBKDF2 strategy. Zero values select defaults.
type PBKDF2Options struct {
	Algorithm  string // SHA256 (default) or SHA512
	Iterations int    // default 600000
	SaltLength int    // bytes, default 32
	HashLength int    // bytes, default the digest size
}

// PBKDF2Strategy encodes "PBKDF2:{algorithm}:{iterations}:{salt}:{hash}".
type PBKDF2Strategy struct {
	opts PBKDF2Options
}

// NewPBKDF2Strategy creates the strategy.
func NewPBKDF2Strategy(opts PBKDF2Options) (*PBKDF2Strategy, error) {
	if opts.Algorithm == "" {
		opts.Algorithm = SHA256
	}
	h, ok := pbkdf2Hash(opts.Algorithm)
	if !ok {
		return nil, oops.Code("PASSWORD_STRATEGY_INVALID").
			With("strategy", KeyPBKDF2).
			With("algorithm", opts.Algorithm).
			Errorf("unsupported PBKDF2 algorithm")
	}
	if opts.Iterations <= 0 {
		opts.Iterations = 600000
	}
	if opts.SaltLength <= 0 {
		opts.SaltLength = 32
	}
	if opts.HashLength <= 0 {
		opts.HashLength = h().Size()
	}
	return &PBKDF2Strategy{opts: opts}, nil
}

// Key implements Strategy.
func (s *PBKDF2Strategy) Key() string { return KeyPBKDF2 }

// Create implements Strategy.
func (s *PBKDF2Strategy) Create(raw string) (Password, error) {
	if raw == "" {
		return nil, emptyPassword(KeyPBKDF2)
	}
	salt := make([]byte, s.opts.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, oops.Code("PASSWORD_SALT_FAILED").Wrap(err)
	}
	p := &pbkdf2Password{
		algorithm:  s.opts.Algorithm,
		iterations: s.opts.Iterations,
		salt:       salt,
	}
	p.hash = p.derive(raw, s.opts.HashLength)
	return p, nil
}

// Decode implements Strategy.
func (s *PBKDF2Strategy) Decode(encoded string) (Password, error) {
	f, err := fields(encoded, KeyPBKDF2, 5)
	if err != nil {
		return nil, err
	}
	if _, ok := pbkdf2Hash(f[0]); !ok {
		return nil, malformed(KeyPBKDF2, "algorithm")
	}
	iterations, err := strconv.Atoi(f[1])
	if err != nil || iterations <= 0 {
		return nil, malformed(KeyPBKDF2, "iterations")
	}
	salt, err := base64.RawStdEncoding.DecodeString(f[2])
	if err != nil {
		return nil, malformed(KeyPBKDF2, "salt")
	}
	sum, err := base64.RawStdEncoding.DecodeString(f[3])
	if err != nil || len(sum) == 0 {
		return nil, malformed(KeyPBKDF2, "hash")
	}
	return &pbkdf2Password{algorithm: f[0], iterations: iterations, salt: salt, hash: sum}, nil
}

type pbkdf2Password struct {
	algorithm  string
	iterations int
	salt       []byte
	hash       []byte
}

func (p *pbkdf2Password) Encode() string {
	return strings.Join([]string{
		KeyPBKDF2,
		p.algorithm,
		strconv.Itoa(p.iterations),
		base64.RawStdEncoding.EncodeToString(p.salt),
		base64.RawStdEncoding.EncodeToString(p.hash),
	}, ":")
}

func (p *pbkdf2Password) IsMatch(candidate string) bool {
	return subtle.ConstantTimeCompare(p.derive(candidate, len(p.hash)), p.hash) == 1
}

func (p *pbkdf2Password) derive(raw string, keyLen int) []byte {
	h, _ := pbkdf2Hash(p.algorithm)
	return pbkdf2.Key([]byte(raw), p.salt, p.iterations, keyLen, h)
}

func pbkdf2Hash(algorithm string) (func() hash.Hash, bool) {
	switch algorithm {
	case SHA256:
		return sha256.New, true
	case SHA512:
		return sha512.New, true
	default:
		return nil, false
	}
}
