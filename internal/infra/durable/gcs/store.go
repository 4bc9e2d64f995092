// Package gcs implements a durable backend on Google Cloud Storage, one object per key.
package gcs

import (
	"bizstate/internal/durable/core"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const objectSuffix = ".json"

// Store implements core.Backend on a GCS bucket. Key k maps to object <prefix><k>.json.
type Store struct {
	client *storage.Client
	bucket string
	prefix string
}

// Config holds construction parameters.
type Config struct {
	Bucket   string
	Prefix   string // optional object key prefix
	Endpoint string // optional; set for the storage emulator
}

// New creates a GCS client using application default credentials. An explicit endpoint
// (emulator) disables authentication.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs bucket required")
	}
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return NewFromClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewFromClient wraps a configured client. Close releases it.
func NewFromClient(client *storage.Client, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

// Driver returns the backend identifier.
func (s *Store) Driver() core.Driver { return core.DriverGCS }

func (s *Store) object(key string) *storage.ObjectHandle {
	return s.client.Bucket(s.bucket).Object(s.prefix + key + objectSuffix)
}

// Get downloads the object for key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	r, err := s.object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("gcs get %s: %w", key, err)
	}
	defer func() { _ = r.Close() }()
	b, err := io.ReadAll(r)
	if err != nil {
		return "", false, fmt.Errorf("gcs read %s: %w", key, err)
	}
	return string(b), true, nil
}

// Set uploads value, replacing the previous object.
func (s *Store) Set(ctx context.Context, key, value string) error {
	w := s.object(key).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := io.WriteString(w, value); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs close %s: %w", key, err)
	}
	return nil
}

// Delete removes the object for key. A missing object is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.object(key).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete %s: %w", key, err)
	}
	return nil
}

// Keys lists every key under the prefix.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: s.prefix})
	var keys []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gcs list: %w", err)
		}
		if !strings.HasSuffix(attrs.Name, objectSuffix) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(strings.TrimPrefix(attrs.Name, s.prefix), objectSuffix))
	}
	sort.Strings(keys)
	return keys, nil
}

// Close closes the GCS client.
func (s *Store) Close() error { return s.client.Close() }
