// Package mongo implements a durable backend storing one document per key in a MongoDB
// collection.
package mongo

import (
	"bizstate/internal/durable/core"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// DefaultDatabase is used when Config.Database is empty.
	DefaultDatabase = "bizstate"
	// DefaultCollection is used when Config.Collection is empty.
	DefaultCollection = "state"
)

// Config holds connection parameters.
type Config struct {
	URI        string
	Database   string
	Collection string
}

type document struct {
	Key     string `bson:"_id"`
	Payload string `bson:"payload"`
}

// Store implements core.Backend on a MongoDB collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

// New connects to MongoDB and pings the primary.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo uri required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	s := NewFromClient(client, cfg.Database, cfg.Collection)
	s.owned = true
	return s, nil
}

// NewFromClient wraps an existing client. Close does not disconnect a client it did not
// create.
func NewFromClient(client *mongo.Client, database, collection string) *Store {
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}
	return &Store{client: client, coll: client.Database(database).Collection(collection)}
}

// Driver returns the backend identifier.
func (s *Store) Driver() core.Driver { return core.DriverMongo }

// Get loads the payload document for key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var doc document
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("mongo find %s: %w", key, err)
	}
	return doc.Payload, true, nil
}

// Set upserts the payload document for key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": key},
		bson.M{"$set": bson.M{"payload": value}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo upsert %s: %w", key, err)
	}
	return nil
}

// Delete removes the document for key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("mongo delete %s: %w", key, err)
	}
	return nil
}

// Keys returns every stored key.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("mongo list: %w", err)
	}
	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode keys: %w", err)
	}
	keys := make([]string, 0, len(docs))
	for _, d := range docs {
		keys = append(keys, d.Key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close disconnects the client when the store created it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
