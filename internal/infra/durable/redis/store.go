// Package redis implements a durable backend storing each key as a Redis string.
package redis

import (
	"bizstate/internal/durable/core"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	goredis "github.com/redis/go-redis/v9"
)

const defaultNamespace = "bizstate:"

// Config holds explicit construction parameters.
type Config struct {
	Addr      string
	Password  string
	DB        int
	Namespace string // prepended to every key; default "bizstate:"
}

// Store implements core.Backend on Redis string keys.
type Store struct {
	client    goredis.UniversalClient
	namespace string
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return NewFromClient(client, cfg.Namespace), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client goredis.UniversalClient, namespace string) *Store {
	if namespace == "" {
		namespace = defaultNamespace
	}
	return &Store{client: client, namespace: namespace}
}

// Driver returns the backend identifier.
func (s *Store) Driver() core.Driver { return core.DriverRedis }

func (s *Store) redisKey(key string) string { return s.namespace + key }

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.redisKey(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return v, true, nil
}

// Set overwrites the value stored under key without expiry.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.redisKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// Keys scans the namespace and returns keys with the namespace stripped.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.namespace+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.namespace))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.namespace, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close closes the client.
func (s *Store) Close() error { return s.client.Close() }
