package dataaccess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Jacobbrewer1/broker/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/broker/pkg/entities"
	"github.com/redis/go-redis/v9"
)

const (
	// BackendRedis is the name of the Redis backend.
	BackendRedis = "redis"

	// DefaultRedisKey is the key the document is stored under.
	DefaultRedisKey = "broker:state"
)

// RedisPersister persists the document as JSON under a single key.
type RedisPersister struct {
	client redis.UniversalClient
	key    string
}

// NewRedisPersister creates a persister storing the document under key.
func NewRedisPersister(client redis.UniversalClient, key string) *RedisPersister {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisPersister{
		client: client,
		key:    key,
	}
}

func (r *RedisPersister) Name() string {
	return BackendRedis
}

// Load reads the key. A missing key yields an empty document.
func (r *RedisPersister) Load(ctx context.Context) (doc *entities.Document, err error) {
	done := monitoring.Observe(BackendRedis, "load")
	defer func() { done(err) }()

	b, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return entities.NewDocument(), nil
	} else if err != nil {
		return nil, fmt.Errorf("error getting state: %w", err)
	}

	doc = new(entities.Document)
	if err := json.Unmarshal(b, doc); err != nil {
		return nil, fmt.Errorf("error decoding state: %w", err)
	}
	doc.Normalize()
	return doc, nil
}

// Save overwrites the key.
func (r *RedisPersister) Save(ctx context.Context, doc *entities.Document) (err error) {
	done := monitoring.Observe(BackendRedis, "save")
	defer func() { done(err) }()

	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("error encoding state: %w", err)
	}

	if err := r.client.Set(ctx, r.key, b, 0).Err(); err != nil {
		return fmt.Errorf("error saving state: %w", err)
	}
	return nil
}

func (r *RedisPersister) Ping(ctx context.Context) (err error) {
	done := monitoring.Observe(BackendRedis, "ping")
	defer func() { done(err) }()

	if err = r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}
