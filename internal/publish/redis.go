package publish

import (
	"context"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/vango-dev/webdsl/internal/errors"
)

// DefaultRedisPrefix is the key prefix used when none is configured.
const DefaultRedisPrefix = "webdsl:"

// RedisSink stores every file under prefix+name and records its content
// type in the manifest hash prefix+"manifest".
type RedisSink struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisSink.
type RedisOption func(*RedisSink)

// WithTTL sets the expiration of stored files. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisSink) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisSink) {
		s.prefix = prefix
	}
}

// NewRedisSink connects to a Redis server.
func NewRedisSink(address, password string, db int, opts ...RedisOption) *RedisSink {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewRedisSinkFromClient(rdb, opts...)
}

// NewRedisSinkFromClient creates a sink from an existing client.
func NewRedisSinkFromClient(client *backend.Client, opts ...RedisOption) *RedisSink {
	s := &RedisSink{
		client: client,
		prefix: DefaultRedisPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the key a file is stored under.
func (s *RedisSink) Key(name string) string {
	return s.prefix + name
}

// ManifestKey returns the key of the manifest hash.
func (s *RedisSink) ManifestKey() string {
	return s.prefix + "manifest"
}

// Put stores data and updates the manifest in one pipeline.
func (s *RedisSink) Put(ctx context.Context, name string, data []byte, contentType string) error {
	clean, err := cleanName(name)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.Key(clean), data, s.ttl)
	pipe.HSet(ctx, s.ManifestKey(), clean, contentType)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.ManifestKey(), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Newf("E401", "redis write of %s failed", clean).Wrap(err)
	}
	return nil
}

// Manifest returns the stored file names and their content types.
func (s *RedisSink) Manifest(ctx context.Context) (map[string]string, error) {
	m, err := s.client.HGetAll(ctx, s.ManifestKey()).Result()
	if err != nil {
		return nil, errors.Newf("E401", "reading manifest").Wrap(err)
	}
	return m, nil
}

// Get returns a stored file.
func (s *RedisSink) Get(ctx context.Context, name string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.Key(name)).Bytes()
	if err == backend.Nil {
		return nil, errors.Newf("E401", "%s is not published", name)
	}
	if err != nil {
		return nil, errors.Newf("E401", "reading %s", name).Wrap(err)
	}
	return data, nil
}

// Close closes the underlying client.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
