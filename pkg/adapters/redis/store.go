// Package redis provides Redis-backed implementations of the schema store
// and the distributed edit lock, for multi-replica deployments.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/acopio/formflow/pkg/domain"
)

// Store implements ports.SchemaStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets an expiration for stored schemas. Zero means no expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithPrefix sets the key prefix for schemas.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// New creates a Redis store with its own client.
func New(address, password string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "formflow:schema:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(formID string) string {
	return s.prefix + formID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// SaveSchema validates the document and persists it alongside an index
// entry used by List.
func (s *Store) SaveSchema(ctx context.Context, formID string, doc *domain.Document) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", fmt.Errorf("refusing to save invalid schema: %w", err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(formID), data, s.ttl)

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01, effectively never
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: formID})

	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to save schema to redis: %w", err)
	}
	return formID, nil
}

// LoadSchema retrieves a document by form id.
func (s *Store) LoadSchema(ctx context.Context, formID string) (*domain.Document, error) {
	val, err := s.client.Get(ctx, s.key(formID)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrSchemaNotFound
		}
		return nil, fmt.Errorf("failed to get schema from redis: %w", err)
	}

	var doc domain.Document
	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}
	return &doc, nil
}

// DeleteSchema removes a document and its index entry.
func (s *Store) DeleteSchema(ctx context.Context, formID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(formID))
	pipe.ZRem(ctx, s.indexKey(), formID)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns known form ids, lazily pruning expired index entries.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired schemas: %w", err)
	}
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	return ids, nil
}
