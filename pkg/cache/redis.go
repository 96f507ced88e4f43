// Package cache is a thin redis wrapper plus the verdict store built on
// top of it. Caching is optional everywhere; callers treat a miss and a
// cache failure the same way.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SamuraiJenkinz/onsitereview/internal/models"
)

type Cache struct {
	client *redis.Client
}

type Options struct {
	Address  string
	Password string
	DB       int
}

type Option func(*Options)

func WithAddress(addr string) Option {
	return func(o *Options) {
		o.Address = addr
	}
}

func WithPassword(pass string) Option {
	return func(o *Options) {
		o.Password = pass
	}
}

func WithDB(db int) Option {
	return func(o *Options) {
		o.DB = db
	}
}

func New(ctx context.Context, opts ...Option) (*Cache, error) {
	options := &Options{
		Address:  "localhost:6379",
		Password: "",
		DB:       0,
	}

	for _, opt := range opts {
		opt(options)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     options.Address,
		Password: options.Password,
		DB:       options.DB,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, err
	}

	return &Cache{client: client}, nil
}

func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, expiration).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// DefaultVerdictTTL bounds how long a cached verdict stays valid.
const DefaultVerdictTTL = 24 * time.Hour

// VerdictStore adapts the cache to the narrative gateway: a miss is not
// an error, and only the hit/miss distinction is surfaced.
type VerdictStore struct {
	cache *Cache
	ttl   time.Duration
}

func NewVerdictStore(cache *Cache, ttl time.Duration) *VerdictStore {
	if ttl <= 0 {
		ttl = DefaultVerdictTTL
	}
	return &VerdictStore{cache: cache, ttl: ttl}
}

func (s *VerdictStore) Get(ctx context.Context, key string) (models.Verdict, bool, error) {
	var v models.Verdict
	err := s.cache.Get(ctx, key, &v)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Verdict{}, false, nil
		}
		return models.Verdict{}, false, err
	}
	return v, true, nil
}

func (s *VerdictStore) Set(ctx context.Context, key string, v models.Verdict) error {
	return s.cache.Set(ctx, key, v, s.ttl)
}
