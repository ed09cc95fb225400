// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package token_test

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/holomush/identity/internal/store"
	"github.com/holomush/identity/internal/token"
)

const secret = "integration-signing-secret"

// blacklistBehaves runs the contract every Blacklist backend honors.
func blacklistBehaves(ctx func() context.Context, blacklist func() token.Blacklist) {
	It("reports only blacklisted ids", func() {
		Expect(blacklist().Blacklist(ctx(), []string{"a", "b"}, time.Now().Add(time.Hour))).To(Succeed())
		Expect(blacklist().Blacklist(ctx(), []string{"forever"}, time.Time{})).To(Succeed())

		found, err := blacklist().GetBlacklisted(ctx(), []string{"a", "forever", "unknown"})
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(ConsistOf("a", "forever"))
	})

	It("lets a token be consumed once", func() {
		m := token.NewManager(blacklist())
		created, err := m.Create(ctx(), jwt.MapClaims{"sub": "user"}, secret, token.CreateOptions{
			ExpiresOn: time.Now().Add(time.Hour),
		})
		Expect(err).NotTo(HaveOccurred())

		_, err = m.Validate(ctx(), created.Token, secret, token.ValidateOptions{Consume: true})
		Expect(err).NotTo(HaveOccurred())
		_, err = m.Validate(ctx(), created.Token, secret, token.ValidateOptions{Consume: true})
		Expect(err).To(MatchError(token.ErrBlacklisted))
	})
}

var _ = Describe("PostgresBlacklist", Ordered, func() {
	var (
		ctx       context.Context
		container *postgres.PostgresContainer
		pool      *pgxpool.Pool
		blacklist *token.PostgresBlacklist
	)

	BeforeAll(func() {
		ctx = context.Background()
		var err error
		container, err = postgres.Run(ctx, "postgres:16-alpine",
			postgres.WithDatabase("blacklist_test"),
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
		blacklist = token.NewPostgresBlacklist(pool)
	})

	AfterAll(func() {
		if pool != nil {
			pool.Close()
		}
		if container != nil {
			Expect(container.Terminate(ctx)).To(Succeed())
		}
	})

	blacklistBehaves(func() context.Context { return ctx }, func() token.Blacklist { return blacklist })

	It("purges expired entries only", func() {
		Expect(blacklist.Blacklist(ctx, []string{"stale-1", "stale-2"}, time.Now().Add(-time.Minute))).To(Succeed())
		Expect(blacklist.Blacklist(ctx, []string{"fresh"}, time.Now().Add(time.Hour))).To(Succeed())

		purged, err := blacklist.Purge(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(purged).To(BeNumerically(">=", 2))

		found, err := blacklist.GetBlacklisted(ctx, []string{"stale-1", "stale-2", "fresh"})
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(ConsistOf("fresh"))
	})

	It("replaces the expiration of a re-blacklisted id", func() {
		Expect(blacklist.Blacklist(ctx, []string{"renewed"}, time.Now().Add(-time.Minute))).To(Succeed())
		Expect(blacklist.Blacklist(ctx, []string{"renewed"}, time.Now().Add(time.Hour))).To(Succeed())

		_, err := blacklist.Purge(ctx)
		Expect(err).NotTo(HaveOccurred())
		found, err := blacklist.GetBlacklisted(ctx, []string{"renewed"})
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(ConsistOf("renewed"))
	})
})

var _ = Describe("RedisBlacklist", Ordered, func() {
	var (
		ctx       context.Context
		container testcontainers.Container
		client    *redis.Client
		blacklist *token.RedisBlacklist
	)

	BeforeAll(func() {
		ctx = context.Background()
		var err error
		container, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForLog("Ready to accept connections"),
			},
			Started: true,
		})
		Expect(err).NotTo(HaveOccurred())

		endpoint, err := container.Endpoint(ctx, "")
		Expect(err).NotTo(HaveOccurred())
		client, err = token.ConnectRedis(ctx, endpoint)
		Expect(err).NotTo(HaveOccurred())
		blacklist = token.NewRedisBlacklist(client)
	})

	AfterAll(func() {
		if client != nil {
			Expect(client.Close()).To(Succeed())
		}
		if container != nil {
			Expect(container.Terminate(ctx)).To(Succeed())
		}
	})

	blacklistBehaves(func() context.Context { return ctx }, func() token.Blacklist { return blacklist })

	It("expires keys with the token", func() {
		Expect(blacklist.Blacklist(ctx, []string{"short"}, time.Now().Add(time.Hour))).To(Succeed())
		ttl, err := client.TTL(ctx, token.RedisKeyPrefix+"short").Result()
		Expect(err).NotTo(HaveOccurred())
		Expect(ttl).To(BeNumerically(">", 59*time.Minute))

		Expect(blacklist.Blacklist(ctx, []string{"forever-key"}, time.Time{})).To(Succeed())
		ttl, err = client.TTL(ctx, token.RedisKeyPrefix+"forever-key").Result()
		Expect(err).NotTo(HaveOccurred())
		Expect(ttl).To(Equal(time.Duration(-1)))
	})

	It("has nothing to purge", func() {
		purged, err := blacklist.Purge(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(purged).To(BeZero())
	})
})
