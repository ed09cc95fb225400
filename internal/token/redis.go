// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package token

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

// RedisKeyPrefix prefixes every blacklist key.
const RedisKeyPrefix = "identity:blacklist:"

// ConnectRedis opens a client for a redis:// URL or a bare host:port address.
func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	opts := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, oops.Code("REDIS_URL_INVALID").Wrap(err)
		}
		opts = parsed
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, oops.Code("REDIS_CONNECT_FAILED").With("addr", opts.Addr).Wrap(err)
	}
	return client, nil
}

// RedisBlacklist stores blacklisted ids as keys that expire with their token.
type RedisBlacklist struct {
	client redis.Cmdable
	now    func() time.Time
}

var _ Blacklist = (*RedisBlacklist)(nil)

// NewRedisBlacklist creates a blacklist backed by client.
func NewRedisBlacklist(client redis.Cmdable) *RedisBlacklist {
	return &RedisBlacklist{client: client, now: time.Now}
}

func redisKey(id string) string {
	return RedisKeyPrefix + id
}

// Blacklist implements Blacklist. Ids whose expiration already passed are
// not stored: their tokens no longer validate.
func (b *RedisBlacklist) Blacklist(ctx context.Context, ids []string, expiresOn time.Time) error {
	var ttl time.Duration
	if !expiresOn.IsZero() {
		ttl = expiresOn.Sub(b.now())
		if ttl <= 0 {
			return nil
		}
	}
	if len(ids) == 0 {
		return nil
	}

	_, err := b.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.Set(ctx, redisKey(id), "1", ttl)
		}
		return nil
	})
	if err != nil {
		return oops.Code("TOKEN_BLACKLIST_WRITE_FAILED").With("count", len(ids)).Wrap(err)
	}
	return nil
}

// GetBlacklisted implements Blacklist.
func (b *RedisBlacklist) GetBlacklisted(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cmds := make([]*redis.IntCmd, len(ids))
	_, err := b.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.Exists(ctx, redisKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, oops.Code("TOKEN_BLACKLIST_READ_FAILED").With("count", len(ids)).Wrap(err)
	}

	var found []string
	for i, cmd := range cmds {
		if cmd.Val() > 0 {
			found = append(found, ids[i])
		}
	}
	return found, nil
}

// Purge implements Blacklist. Redis expires keys itself, so there is never
// anything to purge.
func (b *RedisBlacklist) Purge(context.Context) (int64, error) {
	return 0, nil
}
