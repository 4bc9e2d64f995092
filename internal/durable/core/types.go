// Package core defines the durable key->string substrate every Durable Slice writes
// through to.
package core

import (
	"context"
	"errors"
)

// Driver identifies a concrete durable backend implementation.
type Driver string

const (
	DriverMemory   Driver = "memory"   // in-memory (tests)
	DriverFS       Driver = "fs"       // one file per key under a root directory
	DriverSQLite   Driver = "sqlite"   // embedded sqlite file (default)
	DriverPostgres Driver = "postgres" // PostgreSQL server
	DriverRedis    Driver = "redis"    // Redis string keys
	DriverS3       Driver = "s3"       // S3 / MinIO compatible, one object per key
	DriverGCS      Driver = "gcs"      // Google Cloud Storage, one object per key
	DriverMongo    Driver = "mongo"    // MongoDB collection, one document per key
)

// Backend stores exactly one string value per key. Set always overwrites the full value;
// there are no partial writes and no cross-key atomicity.
type Backend interface {
	// Get returns the stored value and true, or "" and false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys lists stored keys in lexical order.
	Keys(ctx context.Context) ([]string, error)
	Driver() Driver
	Close() error
}

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("durable: backend closed")
