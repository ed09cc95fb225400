// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package token

import (
	"context"
	"sync"
	"time"
)

// Blacklist stores the ids of consumed or revoked tokens until they expire.
type Blacklist interface {
	// Blacklist adds ids. A zero expiresOn keeps them until removed by hand.
	Blacklist(ctx context.Context, ids []string, expiresOn time.Time) error
	// GetBlacklisted returns the subset of ids that are blacklisted.
	GetBlacklisted(ctx context.Context, ids []string) ([]string, error)
	// Purge deletes the entries whose expiration has passed and returns how many.
	Purge(ctx context.Context) (int64, error)
}

// MemoryBlacklist is an in-process Blacklist.
type MemoryBlacklist struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
}

var _ Blacklist = (*MemoryBlacklist)(nil)

// NewMemoryBlacklist creates an empty in-memory blacklist.
func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{entries: make(map[string]time.Time), now: time.Now}
}

// Blacklist implements Blacklist.
func (b *MemoryBlacklist) Blacklist(ctx context.Context, ids []string, expiresOn time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range ids {
		b.entries[id] = expiresOn.UTC()
	}
	return nil
}

// GetBlacklisted implements Blacklist.
func (b *MemoryBlacklist) GetBlacklisted(ctx context.Context, ids []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []string
	for _, id := range ids {
		if _, ok := b.entries[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

// Purge implements Blacklist.
func (b *MemoryBlacklist) Purge(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	now := b.now()
	b.mu.Lock()
	defer b.mu.Unlock()
	var n int64
	for id, expiresOn := range b.entries {
		if !expiresOn.IsZero() && !expiresOn.After(now) {
			delete(b.entries, id)
			n++
		}
	}
	return n, nil
}
