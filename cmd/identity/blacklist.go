// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"

	"github.com/samber/oops"

	"github.com/holomush/identity/internal/settings"
	"github.com/holomush/identity/internal/store"
	"github.com/holomush/identity/internal/token"
)

// openBlacklist builds the blacklist backend named by the configuration.
// The returned close function releases its connections.
func openBlacklist(ctx context.Context, cfg settings.Config) (token.Blacklist, func(), error) {
	switch cfg.Token.Blacklist {
	case "memory":
		return token.NewMemoryBlacklist(), func() {}, nil
	case "postgres":
		if err := requireDatabaseURL(cfg); err != nil {
			return nil, nil, err
		}
		pool, err := store.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		return token.NewPostgresBlacklist(pool), pool.Close, nil
	case "redis":
		if cfg.Redis.URL == "" {
			return nil, nil, oops.Code("CONFIG_INVALID").
				Errorf("redis URL is required (--redis.url or IDENTITY_REDIS_URL)")
		}
		client, err := token.ConnectRedis(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, nil, err
		}
		return token.NewRedisBlacklist(client), func() { _ = client.Close() }, nil
	default:
		return nil, nil, oops.Code("CONFIG_INVALID").
			With("blacklist", cfg.Token.Blacklist).
			Errorf("unknown token blacklist backend")
	}
}
