package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/cravecorner/core/health"
	"github.com/dmitrymomot/cravecorner/integration/database/mongo"
	"github.com/dmitrymomot/cravecorner/integration/database/pg"
	"github.com/dmitrymomot/cravecorner/internal/user"
)

// userStore is the selected backend plus its readiness probe and cleanup.
type userStore struct {
	user.Store
	check health.Check
	close func()
}

func openStore(ctx context.Context, cfg Config, log *slog.Logger) (userStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.StoreDriver)) {
	case driverMemory:
		log.Warn("using in-memory user store; accounts are lost on restart")
		return userStore{Store: user.NewMemoryStore(), close: func() {}}, nil

	case driverMongo:
		client, err := mongo.New(ctx, cfg.Mongo)
		if err != nil {
			return userStore{}, err
		}
		store := user.NewMongoStore(client.Database(cfg.Mongo.Database))
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.WithoutCancel(ctx))
			return userStore{}, fmt.Errorf("ensure user indexes: %w", err)
		}
		return userStore{
			Store: store,
			check: mongo.Healthcheck(client),
			close: func() { _ = client.Disconnect(context.Background()) },
		}, nil

	case driverPostgres:
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return userStore{}, err
		}
		if err := pg.Migrate(ctx, pool, user.Migrations(), log); err != nil {
			pool.Close()
			return userStore{}, err
		}
		return userStore{
			Store: user.NewPostgresStore(pool),
			check: pg.Healthcheck(pool),
			close: pool.Close,
		}, nil
	}
	return userStore{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}
