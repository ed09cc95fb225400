// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package store_test

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/holomush/identity/internal/core"
	"github.com/holomush/identity/internal/store"
)

func event(stream string, version int64) core.Event {
	aggregateType, aggregateID, _ := core.SplitStreamName(stream)
	return core.Event{
		ID:            core.NewULID(),
		Stream:        stream,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Version:       version,
		Type:          aggregateType + ".updated",
		ActorID:       "admin",
		Timestamp:     time.Now().UTC().Truncate(time.Microsecond),
		Payload:       []byte(`{}`),
	}
}

var _ = Describe("PostgresEventStore", Ordered, func() {
	var (
		ctx        context.Context
		container  *postgres.PostgresContainer
		pool       *pgxpool.Pool
		eventStore *store.PostgresEventStore
	)

	BeforeAll(func() {
		ctx = context.Background()
		var err error
		container, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("identity_test"),
			postgres.WithUsername("identity"),
			postgres.WithPassword("identity"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		Expect(err).NotTo(HaveOccurred())

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		Expect(err).NotTo(HaveOccurred())

		migrator, err := store.NewMigrator(dsn)
		Expect(err).NotTo(HaveOccurred())
		Expect(migrator.Up()).To(Succeed())
		Expect(migrator.Close()).To(Succeed())

		pool, err = store.Connect(ctx, dsn)
		Expect(err).NotTo(HaveOccurred())
		eventStore = store.NewPostgresEventStore(pool)
	})

	AfterAll(func() {
		if pool != nil {
			pool.Close()
		}
		if container != nil {
			Expect(container.Terminate(ctx)).To(Succeed())
		}
	})

	It("appends and loads a stream in version order", func() {
		const stream = "role/acme:append"
		first := []core.Event{event(stream, 1), event(stream, 2)}
		Expect(eventStore.Append(ctx, stream, 0, first)).To(Succeed())
		Expect(eventStore.Append(ctx, stream, 2, []core.Event{event(stream, 3)})).To(Succeed())

		events, err := eventStore.Load(ctx, stream)
		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(HaveLen(3))
		Expect(events[0]).To(Equal(first[0]))
		for i, e := range events {
			Expect(e.Version).To(Equal(int64(i + 1)))
		}
	})

	It("rejects appends at a stale version", func() {
		const stream = "role/acme:stale"
		Expect(eventStore.Append(ctx, stream, 0, []core.Event{event(stream, 1)})).To(Succeed())

		err := eventStore.Append(ctx, stream, 0, []core.Event{event(stream, 1)})
		Expect(errors.Is(err, core.ErrConcurrencyConflict)).To(BeTrue())

		events, err := eventStore.Load(ctx, stream)
		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(HaveLen(1))
	})

	It("returns an empty slice for unknown streams", func() {
		events, err := eventStore.Load(ctx, "role/acme:missing")
		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(BeEmpty())
	})

	It("lists the streams of an aggregate type", func() {
		for _, stream := range []string{"apikey/acme:b", "apikey/acme:a", "otp/acme:a"} {
			Expect(eventStore.Append(ctx, stream, 0, []core.Event{event(stream, 1)})).To(Succeed())
		}
		streams, err := eventStore.ListStreams(ctx, "apikey")
		Expect(err).NotTo(HaveOccurred())
		Expect(streams).To(Equal([]string{"apikey/acme:a", "apikey/acme:b"}))
	})
})

var _ = Describe("Migrator", Ordered, func() {
	var (
		ctx       context.Context
		container *postgres.PostgresContainer
		migrator  *store.Migrator
	)

	BeforeAll(func() {
		ctx = context.Background()
		var err error
		container, err = postgres.Run(ctx, "postgres:16-alpine",
			postgres.WithDatabase("migrate_test"),
			postgres.WithUsername("identity"),
			postgres.WithPassword("identity"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2)),
		)
		Expect(err).NotTo(HaveOccurred())
		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		Expect(err).NotTo(HaveOccurred())
		migrator, err = store.NewMigrator(dsn)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		if migrator != nil {
			_ = migrator.Close()
		}
		if container != nil {
			Expect(container.Terminate(ctx)).To(Succeed())
		}
	})

	It("runs the full up and down cycle", func() {
		version, dirty, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(BeZero())
		Expect(dirty).To(BeFalse())

		Expect(migrator.Up()).To(Succeed())
		latest, _, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(latest).To(Equal(uint(2)))

		Expect(migrator.Steps(-1)).To(Succeed())
		version, _, err = migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(latest - 1))

		pending, err := migrator.PendingMigrations()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending).To(Equal([]uint{2}))

		Expect(migrator.Down()).To(Succeed())
		version, _, err = migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(BeZero())
	})
})
