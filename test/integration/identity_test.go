// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package integration

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/holomush/identity/internal/apikey"
	"github.com/holomush/identity/internal/core"
	"github.com/holomush/identity/internal/eventsourcing"
	"github.com/holomush/identity/internal/identity"
	"github.com/holomush/identity/internal/manager"
	"github.com/holomush/identity/internal/password"
	"github.com/holomush/identity/internal/role"
	"github.com/holomush/identity/internal/session"
	"github.com/holomush/identity/internal/settings"
	"github.com/holomush/identity/internal/store"
	"github.com/holomush/identity/internal/token"
	"github.com/holomush/identity/internal/user"
)

const admin eventsourcing.ActorID = "admin"

// testEnv holds the resources shared by the suite.
type testEnv struct {
	ctx       context.Context
	cancel    context.CancelFunc
	container *postgres.PostgresContainer
	pool      *pgxpool.Pool
	events    *store.PostgresEventStore
	bus       *core.Broadcaster
	passwords *password.Manager
	roles     *role.EventSourcedRepository
	users     *user.EventSourcedRepository
	apiKeys   *apikey.EventSourcedRepository
	sessions  *session.EventSourcedRepository
	roleMgr   *manager.RoleManager
	userMgr   *manager.UserManager
}

func setupTestEnv() (*testEnv, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	env := &testEnv{ctx: ctx, cancel: cancel}

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("identity_e2e"),
		postgres.WithUsername("identity"),
		postgres.WithPassword("identity"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		cancel()
		return nil, err
	}
	env.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, env.teardown(err)
	}
	migrator, err := store.NewMigrator(dsn)
	if err != nil {
		return nil, env.teardown(err)
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return nil, env.teardown(err)
	}
	if err := migrator.Close(); err != nil {
		return nil, env.teardown(err)
	}

	env.pool, err = store.Connect(ctx, dsn)
	if err != nil {
		return nil, env.teardown(err)
	}
	env.events = store.NewPostgresEventStore(env.pool)
	env.bus = core.NewBroadcaster()

	cfg := settings.Default()
	cfg.Users.RequireUniqueEmail = true
	cfg.Users.Password.HashingStrategy = password.KeyBcrypt
	resolver := settings.NewStaticResolver(cfg)
	env.passwords, err = password.NewManager(resolver, password.NewBcryptStrategy(4))
	if err != nil {
		return nil, env.teardown(err)
	}

	publish := eventsourcing.WithPublisher(env.bus)
	env.roles = role.NewRepository(env.events, publish)
	env.users = user.NewRepository(env.events, env.passwords, publish)
	env.apiKeys = apikey.NewRepository(env.events, env.passwords, publish)
	env.sessions = session.NewRepository(env.events, env.passwords, publish)
	env.roleMgr = manager.NewRoleManager(env.roles, env.users, env.apiKeys)
	env.userMgr = manager.NewUserManager(env.users, env.sessions, resolver)
	return env, nil
}

func (env *testEnv) teardown(cause error) error {
	if env.pool != nil {
		env.pool.Close()
	}
	if env.container != nil {
		_ = env.container.Terminate(context.Background())
	}
	env.cancel()
	return cause
}

var _ = Describe("Identity kernel on PostgreSQL", Ordered, func() {
	var env *testEnv

	BeforeAll(func() {
		var err error
		env, err = setupTestEnv()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		if env != nil {
			Expect(env.teardown(nil)).To(Succeed())
		}
	})

	newUser := func(name identity.UniqueName, raw string) *user.User {
		u, err := user.New(name, "acme", admin, user.ID{})
		Expect(err).NotTo(HaveOccurred())
		p, err := env.passwords.Create("acme", raw)
		Expect(err).NotTo(HaveOccurred())
		Expect(u.SetPassword(p, admin)).To(Succeed())
		return u
	}

	It("authenticates a replayed user and signs them in", func() {
		u := newUser("alice", "Sup3r-Secret")
		Expect(env.userMgr.Save(env.ctx, u, admin)).To(Succeed())

		loaded, err := env.users.Load(env.ctx, u.ID())
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Authenticate("Sup3r-Secret")).To(Succeed())
		Expect(loaded.Authenticate("wrong")).To(MatchError(user.ErrIncorrectPassword))

		secret, plain, err := env.passwords.Generate("acme", 32)
		Expect(err).NotTo(HaveOccurred())
		s, err := session.SignIn(loaded, secret, admin, session.ID{})
		Expect(err).NotTo(HaveOccurred())
		Expect(env.sessions.Save(env.ctx, s)).To(Succeed())
		Expect(env.userMgr.Save(env.ctx, loaded, admin)).To(Succeed())

		replayed, err := env.sessions.Load(env.ctx, s.ID())
		Expect(err).NotTo(HaveOccurred())
		next, _, err := env.passwords.Generate("acme", 32)
		Expect(err).NotTo(HaveOccurred())
		Expect(replayed.Renew(plain, next, admin)).To(Succeed())
		Expect(env.sessions.Save(env.ctx, replayed)).To(Succeed())
	})

	It("enforces unique names and emails across the store", func() {
		first := newUser("bob", "Sup3r-Secret")
		Expect(first.SetEmail("bob@example.com", false, admin)).To(Succeed())
		Expect(env.userMgr.Save(env.ctx, first, admin)).To(Succeed())

		sameName := newUser("BOB", "Sup3r-Secret")
		Expect(env.userMgr.Save(env.ctx, sameName, admin)).To(MatchError(manager.ErrUniqueNameAlreadyUsed))

		sameEmail := newUser("robert", "Sup3r-Secret")
		Expect(sameEmail.SetEmail("bob@example.com", true, admin)).To(Succeed())
		Expect(env.userMgr.Save(env.ctx, sameEmail, admin)).To(MatchError(manager.ErrEmailAddressAlreadyUsed))
	})

	It("removes a deleted role from every user and api key", func() {
		roleEvents, err := env.bus.Subscribe("role.*")
		Expect(err).NotTo(HaveOccurred())
		defer env.bus.Unsubscribe(roleEvents)

		r, err := role.New("auditors", "acme", admin, role.ID{})
		Expect(err).NotTo(HaveOccurred())
		Expect(env.roleMgr.Save(env.ctx, r, admin)).To(Succeed())
		Eventually(roleEvents).Should(Receive(HaveField("Type", "role.created")))

		member := newUser("carol", "Sup3r-Secret")
		Expect(member.AddRole(r.ID(), admin)).To(Succeed())
		Expect(env.userMgr.Save(env.ctx, member, admin)).To(Succeed())

		secret, _, err := env.passwords.Generate("acme", 32)
		Expect(err).NotTo(HaveOccurred())
		key, err := apikey.New("audit bot", secret, "acme", admin, apikey.ID{})
		Expect(err).NotTo(HaveOccurred())
		Expect(key.AddRole(r.ID(), admin)).To(Succeed())
		Expect(env.apiKeys.Save(env.ctx, key)).To(Succeed())

		Expect(r.Delete(admin)).To(Succeed())
		Expect(env.roleMgr.Save(env.ctx, r, "root")).To(Succeed())
		Eventually(roleEvents).Should(Receive(HaveField("Type", "role.deleted")))

		loadedUser, err := env.users.Load(env.ctx, member.ID())
		Expect(err).NotTo(HaveOccurred())
		Expect(loadedUser.HasRole(r.ID())).To(BeFalse())
		Expect(loadedUser.UpdatedBy()).To(Equal(eventsourcing.ActorID("root")))

		loadedKey, err := env.apiKeys.Load(env.ctx, key.ID())
		Expect(err).NotTo(HaveOccurred())
		Expect(loadedKey.HasRole(r.ID())).To(BeFalse())

		_, err = env.roles.Load(env.ctx, r.ID())
		Expect(err).To(MatchError(eventsourcing.ErrNotFound))
	})

	It("rejects a save from a stale copy", func() {
		r, err := role.New("editors", "acme", admin, role.ID{})
		Expect(err).NotTo(HaveOccurred())
		Expect(env.roleMgr.Save(env.ctx, r, admin)).To(Succeed())

		a, err := env.roles.Load(env.ctx, r.ID())
		Expect(err).NotTo(HaveOccurred())
		b, err := env.roles.Load(env.ctx, r.ID())
		Expect(err).NotTo(HaveOccurred())

		Expect(a.Update(admin, role.Update{Description: identity.Set(identity.Description("first"))})).To(Succeed())
		Expect(env.roleMgr.Save(env.ctx, a, admin)).To(Succeed())

		Expect(b.Update(admin, role.Update{Description: identity.Set(identity.Description("second"))})).To(Succeed())
		Expect(env.roleMgr.Save(env.ctx, b, admin)).To(MatchError(core.ErrConcurrencyConflict))
	})

	It("consumes tokens once through the PostgreSQL blacklist", func() {
		blacklist := token.NewPostgresBlacklist(env.pool)
		tokens := token.NewManager(blacklist)

		created, err := tokens.Create(env.ctx, jwt.MapClaims{"sub": "alice"}, "e2e-secret", token.CreateOptions{
			ExpiresOn: time.Now().Add(time.Hour),
		})
		Expect(err).NotTo(HaveOccurred())

		_, err = tokens.Validate(env.ctx, created.Token, "e2e-secret", token.ValidateOptions{Consume: true})
		Expect(err).NotTo(HaveOccurred())
		_, err = tokens.Validate(env.ctx, created.Token, "e2e-secret", token.ValidateOptions{Consume: true})
		Expect(err).To(MatchError(token.ErrBlacklisted))

		housekeeper, err := token.NewHousekeeper(blacklist, time.Hour)
		Expect(err).NotTo(HaveOccurred())
		_, err = housekeeper.Purge(env.ctx)
		Expect(err).NotTo(HaveOccurred())
		found, err := blacklist.GetBlacklisted(env.ctx, []string{created.ID})
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(ConsistOf(created.ID), "unexpired entries survive the purge")
	})
})
