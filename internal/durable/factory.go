// Package durable opens the key->string substrate that Durable Slices write through to.
package durable

import (
	"bizstate/internal/durable/core"
	"bizstate/internal/infra/durable/fs"
	"bizstate/internal/infra/durable/gcs"
	"bizstate/internal/infra/durable/memory"
	"bizstate/internal/infra/durable/mongo"
	"bizstate/internal/infra/durable/postgres"
	"bizstate/internal/infra/durable/redis"
	"bizstate/internal/infra/durable/s3"
	"bizstate/internal/infra/durable/sqlite"
	"context"
	"fmt"
)

type (
	Backend = core.Backend
	Driver  = core.Driver
)

// Open constructs the backend named by cfg.Driver. Defaults to sqlite when unset. A
// non-empty KeyPrefix namespaces every key so several workspaces can share one substrate.
func Open(ctx context.Context, cfg Config) (Backend, error) {
	if cfg.Driver == "" {
		cfg.Driver = core.DriverSQLite
	}
	var (
		b   Backend
		err error
	)
	switch cfg.Driver {
	case core.DriverMemory:
		b = memory.New()
	case core.DriverFS:
		b, err = fs.New(cfg.FSRoot)
	case core.DriverSQLite:
		b, err = sqlite.New(ctx, cfg.SQLitePath)
	case core.DriverPostgres:
		b, err = postgres.New(ctx, cfg.PostgresDSN)
	case core.DriverRedis:
		b, err = redis.New(ctx, redis.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB, Namespace: cfg.RedisNamespace})
	case core.DriverS3:
		b, err = s3.New(ctx, s3.Config{Bucket: cfg.S3Bucket, Region: cfg.S3Region, Prefix: cfg.S3Prefix, Endpoint: cfg.S3Endpoint, PathStyle: cfg.S3PathStyle})
	case core.DriverGCS:
		b, err = gcs.New(ctx, gcs.Config{Bucket: cfg.GCSBucket, Prefix: cfg.GCSPrefix, Endpoint: cfg.GCSEndpoint})
	case core.DriverMongo:
		b, err = mongo.New(ctx, mongo.Config{URI: cfg.MongoURI, Database: cfg.MongoDatabase, Collection: cfg.MongoCollection})
	default:
		return nil, fmt.Errorf("unknown storage driver %s", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Driver, err)
	}
	if cfg.KeyPrefix != "" {
		b = WithKeyPrefix(b, cfg.KeyPrefix)
	}
	return b, nil
}
