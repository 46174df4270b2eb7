package clipboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lh/pagedeck/internal/config"
	"github.com/lh/pagedeck/internal/storage"
	"github.com/redis/go-redis/v9"
)

// filesystemMirror persists the serialized payload as a blob under a fixed
// key. TTL is not enforced at rest; expiry is checked on every read against
// the payload's creation time.
type filesystemMirror struct {
	store storage.System
	key   string
}

// NewFilesystemMirror creates a mirror backed by the blob storage system.
func NewFilesystemMirror(store storage.System, key string) Mirror {
	return &filesystemMirror{store: store, key: key}
}

func (m *filesystemMirror) Write(ctx context.Context, data []byte, ttl time.Duration) error {
	return m.store.Store(ctx, m.key, data)
}

func (m *filesystemMirror) Read(ctx context.Context) ([]byte, error) {
	data, err := m.store.Retrieve(ctx, m.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrMirrorEmpty
		}
		return nil, err
	}
	return data, nil
}

func (m *filesystemMirror) Clear(ctx context.Context) error {
	return m.store.Delete(ctx, m.key)
}

// redisMirror persists the serialized payload under a fixed redis key with a
// server-side TTL, giving the clipboard cross-process reach.
type redisMirror struct {
	client *redis.Client
	key    string
}

// NewRedisMirror creates a mirror backed by redis. The connection is verified
// before the mirror is returned.
func NewRedisMirror(cfg *config.RedisConfig, key string) (Mirror, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis mirror: %w", err)
	}

	return &redisMirror{client: client, key: key}, nil
}

func (m *redisMirror) Write(ctx context.Context, data []byte, ttl time.Duration) error {
	return m.client.Set(ctx, m.key, data, ttl).Err()
}

func (m *redisMirror) Read(ctx context.Context) ([]byte, error) {
	data, err := m.client.Get(ctx, m.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMirrorEmpty
		}
		return nil, err
	}
	return data, nil
}

func (m *redisMirror) Clear(ctx context.Context) error {
	return m.client.Del(ctx, m.key).Err()
}
