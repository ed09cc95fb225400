// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// KeyArgon2ID prefixes Argon2id passwords.
const KeyArgon2ID = "ARGON2ID"

// Argon2IDOptions configures the Argon2id strategy. Zero values select the
// OWASP-recommended defaults.
type Argon2IDOptions struct {
	Time       uint32 // iterations, default 1
	Memory     uint32 // KiB, default 64 MiB
	Threads    uint8  // default 4
	SaltLength int    // bytes, default 16
	KeyLength  uint32 // bytes, default 32
}

// Argon2IDStrategy encodes
// "ARGON2ID:{version}:{memory}:{time}:{threads}:{salt}:{hash}".
type Argon2IDStrategy struct {
	opts Argon2IDOptions
}

// NewArgon2IDStrategy creates the strategy.
func NewArgon2IDStrategy(opts Argon2IDOptions) *Argon2IDStrategy {
	if opts.Time == 0 {
		opts.Time = 1
	}
	if opts.Memory == 0 {
		opts.Memory = 64 * 1024
	}
	if opts.Threads == 0 {
		opts.Threads = 4
	}
	if opts.SaltLength <= 0 {
		opts.SaltLength = 16
	}
	if opts.KeyLength == 0 {
		opts.KeyLength = 32
	}
	return &Argon2IDStrategy{opts: opts}
}

// Key implements Strategy.
func (s *Argon2IDStrategy) Key() string { return KeyArgon2ID }

// Create implements Strategy.
func (s *Argon2IDStrategy) Create(raw string) (Password, error) {
	if raw == "" {
		return nil, emptyPassword(KeyArgon2ID)
	}
	salt := make([]byte, s.opts.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, oops.Code("PASSWORD_SALT_FAILED").Wrap(err)
	}
	return &argon2Password{
		version: argon2.Version,
		memory:  s.opts.Memory,
		time:    s.opts.Time,
		threads: s.opts.Threads,
		salt:    salt,
		hash:    argon2.IDKey([]byte(raw), salt, s.opts.Time, s.opts.Memory, s.opts.Threads, s.opts.KeyLength),
	}, nil
}

// Decode implements Strategy.
func (s *Argon2IDStrategy) Decode(encoded string) (Password, error) {
	f, err := fields(encoded, KeyArgon2ID, 7)
	if err != nil {
		return nil, err
	}
	version, err := strconv.Atoi(f[0])
	if err != nil || version != argon2.Version {
		return nil, malformed(KeyArgon2ID, "version")
	}
	memory, err := strconv.ParseUint(f[1], 10, 32)
	if err != nil {
		return nil, malformed(KeyArgon2ID, "memory")
	}
	time, err := strconv.ParseUint(f[2], 10, 32)
	if err != nil || time == 0 {
		return nil, malformed(KeyArgon2ID, "time")
	}
	// threads must fit in uint8 to avoid silent truncation
	threads, err := strconv.ParseUint(f[3], 10, 8)
	if err != nil || threads == 0 {
		return nil, malformed(KeyArgon2ID, "threads")
	}
	salt, err := base64.RawStdEncoding.DecodeString(f[4])
	if err != nil {
		return nil, malformed(KeyArgon2ID, "salt")
	}
	sum, err := base64.RawStdEncoding.DecodeString(f[5])
	if err != nil || len(sum) == 0 || len(sum) > 1<<30 {
		return nil, malformed(KeyArgon2ID, "hash")
	}
	return &argon2Password{
		version: version,
		memory:  uint32(memory),
		time:    uint32(time),
		threads: uint8(threads),
		salt:    salt,
		hash:    sum,
	}, nil
}

type argon2Password struct {
	version int
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	hash    []byte
}

func (p *argon2Password) Encode() string {
	return fmt.Sprintf("%s:%d:%d:%d:%d:%s:%s",
		KeyArgon2ID,
		p.version,
		p.memory,
		p.time,
		p.threads,
		base64.RawStdEncoding.EncodeToString(p.salt),
		base64.RawStdEncoding.EncodeToString(p.hash),
	)
}

func (p *argon2Password) IsMatch(candidate string) bool {
	computed := argon2.IDKey([]byte(candidate), p.salt, p.time, p.memory, p.threads, uint32(len(p.hash)))
	return subtle.ConstantTimeCompare(computed, p.hash) == 1
}
