package cli

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/matzehuels/coursemap/internal/config"
	"github.com/matzehuels/coursemap/pkg/cache"
	"github.com/matzehuels/coursemap/pkg/errors"
	"github.com/matzehuels/coursemap/pkg/storage"
)

// backends are the collaborators of one runner. Catalog and records share
// one Postgres pool or Mongo client when they use the same backend.
type backends struct {
	source  storage.CatalogSource
	records storage.RecordStore
	cache   cache.Cache
}

// connectBackoff retries the first connection to a database server.
var connectBackoff = cache.Backoff{Attempts: 3, Delay: 500 * time.Millisecond}

// connect opens a client with retries. Every failure counts as transient.
func connect[T any](ctx context.Context, open func() (T, error)) (T, error) {
	var v T
	err := cache.Retry(ctx, connectBackoff, func() error {
		var err error
		v, err = open()
		return cache.Retryable(err)
	})
	return v, err
}

type connector struct {
	cfg   *config.Config
	pg    *pgxpool.Pool
	mongo *mongo.Client
	redis *redis.Client
}

func (c *connector) postgres(ctx context.Context) (*pgxpool.Pool, error) {
	if c.pg == nil {
		pool, err := connect(ctx, func() (*pgxpool.Pool, error) {
			return storage.OpenPostgres(ctx, storage.PostgresOptions{
				DSN:      c.cfg.Postgres.DSN,
				MaxConns: c.cfg.Postgres.MaxConns,
			})
		})
		if err != nil {
			return nil, err
		}
		c.pg = pool
	}
	return c.pg, nil
}

func (c *connector) mongoClient(ctx context.Context) (*mongo.Client, error) {
	if c.mongo == nil {
		client, err := connect(ctx, func() (*mongo.Client, error) {
			return storage.OpenMongo(ctx, c.cfg.Mongo.URI)
		})
		if err != nil {
			return nil, err
		}
		c.mongo = client
	}
	return c.mongo, nil
}

func (c *connector) redisClient(ctx context.Context) (*redis.Client, error) {
	if c.redis == nil {
		client, err := connect(ctx, func() (*redis.Client, error) {
			return cache.NewRedisClient(ctx, c.redisOptions())
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to redis")
		}
		c.redis = client
	}
	return c.redis, nil
}

func (c *connector) redisOptions() cache.RedisOptions {
	return cache.RedisOptions{
		Addr:     c.cfg.Redis.Addr,
		Password: c.cfg.Redis.Password,
		DB:       c.cfg.Redis.DB,
		URL:      c.cfg.Redis.URL,
	}
}

// openBackends opens the catalog source, record store and cache named by cfg.
func openBackends(ctx context.Context, cfg *config.Config) (*backends, error) {
	conn := &connector{cfg: cfg}
	b := &backends{}

	var err error
	if b.source, err = conn.openSource(ctx); err != nil {
		return nil, err
	}
	if b.records, err = conn.openRecords(ctx); err != nil {
		_ = b.source.Close()
		return nil, err
	}
	if b.cache, err = conn.openCache(ctx); err != nil {
		_ = b.source.Close()
		_ = b.records.Close()
		return nil, err
	}
	return b, nil
}

func (c *connector) openSource(ctx context.Context) (storage.CatalogSource, error) {
	switch c.cfg.Catalog.Source {
	case config.SourcePostgres:
		pool, err := c.postgres(ctx)
		if err != nil {
			return nil, err
		}
		return storage.NewPostgresCatalog(pool), nil
	case config.SourceMongo:
		client, err := c.mongoClient(ctx)
		if err != nil {
			return nil, err
		}
		return storage.NewMongoCatalog(client, c.cfg.Mongo.Database), nil
	}
	return storage.NewFileCatalog(c.cfg.Catalog.Path)
}

func (c *connector) openRecords(ctx context.Context) (storage.RecordStore, error) {
	switch c.cfg.Records.Backend {
	case config.BackendMemory:
		return storage.NewMemoryRecords(), nil
	case config.BackendRedis:
		client, err := c.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return storage.NewRedisRecords(client, storage.DefaultRedisKeyPrefix), nil
	case config.BackendPostgres:
		pool, err := c.postgres(ctx)
		if err != nil {
			return nil, err
		}
		return storage.NewPostgresRecords(pool), nil
	case config.BackendMongo:
		client, err := c.mongoClient(ctx)
		if err != nil {
			return nil, err
		}
		recs := storage.NewMongoRecords(client, c.cfg.Mongo.Database)
		if err := recs.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return recs, nil
	}
	return storage.NewFileRecords(c.cfg.Records.Dir)
}

func (c *connector) openCache(ctx context.Context) (cache.Cache, error) {
	switch c.cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		// The record store owns a shared client; otherwise the cache does.
		if c.redis != nil {
			return cache.NewRedisCacheFromClient(c.redis, "coursemap:cache:"), nil
		}
		rc, err := connect(ctx, func() (*cache.RedisCache, error) {
			return cache.NewRedisCache(ctx, c.redisOptions())
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to redis")
		}
		return rc, nil
	}
	dir := c.cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}
