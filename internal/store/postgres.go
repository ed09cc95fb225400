// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package store provides the PostgreSQL event store and schema migrations.
package store

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"

	"github.com/holomush/identity/internal/core"
)

// poolIface is the part of *pgxpool.Pool the store uses; pgxmock implements it.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Connect opens a connection pool and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("DATABASE_CONNECT_FAILED").Wrap(err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, oops.Code("DATABASE_CONNECT_FAILED").With("operation", "ping").Wrap(err)
	}
	return pool, nil
}

// PostgresEventStore implements core.EventStore using PostgreSQL.
type PostgresEventStore struct {
	pool poolIface
}

var _ core.EventStore = (*PostgresEventStore)(nil)

// NewPostgresEventStore creates an event store over pool.
func NewPostgresEventStore(pool poolIface) *PostgresEventStore {
	return &PostgresEventStore{pool: pool}
}

// Append implements core.EventStore. The expected version is checked inside
// the transaction; a concurrent writer that commits first makes the insert
// hit the (stream, version) unique constraint, reported as a conflict too.
func (s *PostgresEventStore) Append(ctx context.Context, stream string, expectedVersion int64, events []core.Event) error {
	if err := ctx.Err(); err != nil {
		return oops.With("stream", stream).Wrap(err)
	}
	if len(events) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return oops.With("operation", "begin append").With("stream", stream).Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	var current int64
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM events WHERE stream = $1`,
		stream).Scan(&current); err != nil {
		return oops.With("operation", "read stream version").With("stream", stream).Wrap(err)
	}
	if current != expectedVersion {
		return core.NewConcurrencyConflict(stream, expectedVersion, current)
	}

	for i, e := range events {
		if e.Version != expectedVersion+int64(i)+1 {
			return core.NewConcurrencyConflict(stream, expectedVersion+int64(i), e.Version-1)
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO events (id, stream, aggregate_type, aggregate_id, version, type, actor_id, occurred_at, payload)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			e.ID.String(), stream, e.AggregateType, e.AggregateID, e.Version, e.Type, e.ActorID, e.Timestamp, e.Payload)
		if isUniqueViolation(err) {
			return core.NewConcurrencyConflict(stream, expectedVersion, e.Version)
		}
		if err != nil {
			return oops.With("operation", "insert event").
				With("stream", stream).
				With("event_id", e.ID.String()).
				Wrap(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return core.NewConcurrencyConflict(stream, expectedVersion, expectedVersion+1)
		}
		return oops.With("operation", "commit append").With("stream", stream).Wrap(err)
	}
	return nil
}

// Load implements core.EventStore.
func (s *PostgresEventStore) Load(ctx context.Context, stream string) ([]core.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, stream, aggregate_type, aggregate_id, version, type, actor_id, occurred_at, payload
		 FROM events WHERE stream = $1 ORDER BY version`,
		stream)
	if err != nil {
		return nil, oops.With("operation", "query events").With("stream", stream).Wrap(err)
	}
	defer rows.Close()

	events := []core.Event{}
	for rows.Next() {
		var (
			e     core.Event
			idStr string
		)
		if err := rows.Scan(&idStr, &e.Stream, &e.AggregateType, &e.AggregateID, &e.Version,
			&e.Type, &e.ActorID, &e.Timestamp, &e.Payload); err != nil {
			return nil, oops.With("operation", "scan event row").With("stream", stream).Wrap(err)
		}
		if e.ID, err = core.ParseULID(idStr); err != nil {
			return nil, oops.With("stream", stream).Wrap(err)
		}
		e.Timestamp = e.Timestamp.UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate events").With("stream", stream).Wrap(err)
	}
	return events, nil
}

// ListStreams implements core.EventStore.
func (s *PostgresEventStore) ListStreams(ctx context.Context, aggregateType string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT stream FROM events WHERE aggregate_type = $1 ORDER BY stream`,
		aggregateType)
	if err != nil {
		return nil, oops.With("operation", "list streams").With("aggregate_type", aggregateType).Wrap(err)
	}
	defer rows.Close()

	var streams []string
	for rows.Next() {
		var stream string
		if err := rows.Scan(&stream); err != nil {
			return nil, oops.With("operation", "scan stream row").Wrap(err)
		}
		streams = append(streams, stream)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate streams").Wrap(err)
	}
	return streams, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
