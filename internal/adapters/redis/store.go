package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/hbnb/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// DefaultKey is the hash that holds every object.
const DefaultKey = "hbnb:objects"

// Store implements ports.Backend using a single Redis hash.
// Each field is a store key ("Class.id") and each value the JSON-encoded object.
type Store struct {
	client *backend.Client
	key    string
}

type Option func(*Store)

// WithKey sets the hash key used for objects.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		key:    DefaultKey,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Save replaces the hash contents with snapshot in one MULTI/EXEC block.
func (s *Store) Save(ctx context.Context, snapshot ports.Snapshot) error {
	fields := make(map[string]any, len(snapshot))
	for key, obj := range snapshot {
		data, err := json.Marshal(obj)
		if err != nil {
			return fmt.Errorf("failed to marshal object %s: %w", key, err)
		}
		fields[key] = data
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key)
	if len(fields) > 0 {
		pipe.HSet(ctx, s.key, fields)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}

	return nil
}

// Load reads every object from the hash.
func (s *Store) Load(ctx context.Context) (ports.Snapshot, error) {
	vals, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	snap := make(ports.Snapshot, len(vals))
	for key, val := range vals {
		var obj map[string]any
		dec := json.NewDecoder(bytes.NewReader([]byte(val)))
		dec.UseNumber()
		if err := dec.Decode(&obj); err != nil {
			return nil, fmt.Errorf("failed to unmarshal object %s: %w", key, err)
		}
		snap[key] = obj
	}

	return snap, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
