// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package token

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

// pgPool is the subset of pgxpool.Pool used by PostgresBlacklist.
type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresBlacklist stores blacklisted token ids in the token_blacklist table.
type PostgresBlacklist struct {
	pool pgPool
	now  func() time.Time
}

var _ Blacklist = (*PostgresBlacklist)(nil)

// NewPostgresBlacklist creates a blacklist backed by pool.
func NewPostgresBlacklist(pool pgPool) *PostgresBlacklist {
	return &PostgresBlacklist{pool: pool, now: time.Now}
}

// Blacklist implements Blacklist. Re-blacklisting an id replaces its expiration.
func (b *PostgresBlacklist) Blacklist(ctx context.Context, ids []string, expiresOn time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	var expires *time.Time
	if !expiresOn.IsZero() {
		utc := expiresOn.UTC()
		expires = &utc
	}
	_, err := b.pool.Exec(ctx, `
		INSERT INTO token_blacklist (token_id, expires_on)
		SELECT unnest($1::text[]), $2
		ON CONFLICT (token_id) DO UPDATE SET expires_on = EXCLUDED.expires_on`,
		ids, expires)
	if err != nil {
		return oops.Code("TOKEN_BLACKLIST_WRITE_FAILED").With("count", len(ids)).Wrap(err)
	}
	return nil
}

// GetBlacklisted implements Blacklist.
func (b *PostgresBlacklist) GetBlacklisted(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := b.pool.Query(ctx, `SELECT token_id FROM token_blacklist WHERE token_id = ANY($1)`, ids)
	if err != nil {
		return nil, oops.Code("TOKEN_BLACKLIST_READ_FAILED").With("count", len(ids)).Wrap(err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, oops.Code("TOKEN_BLACKLIST_READ_FAILED").With("count", len(ids)).Wrap(err)
	}
	return found, nil
}

// Purge implements Blacklist.
func (b *PostgresBlacklist) Purge(ctx context.Context) (int64, error) {
	tag, err := b.pool.Exec(ctx,
		`DELETE FROM token_blacklist WHERE expires_on IS NOT NULL AND expires_on <= $1`,
		b.now().UTC())
	if err != nil {
		return 0, oops.Code("TOKEN_BLACKLIST_PURGE_FAILED").Wrap(err)
	}
	return tag.RowsAffected(), nil
}
