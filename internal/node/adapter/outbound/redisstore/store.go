package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anthanhphan/go-dynamo-kv/internal/node/port"
	"github.com/anthanhphan/go-dynamo-kv/pkg/vclock"
	"github.com/redis/go-redis/v9"
)

const DefaultPrefix = "kv"

// Store keeps blobs and clocks in Redis under <prefix>:blob:<folder>:<key> and <prefix>:clock:<folder>:<key>.
type Store struct {
	client *redis.Client
	prefix string
}

// Ensure Store implements port.BlobStore.
var _ port.BlobStore = (*Store)(nil)

type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	// DialTimeout also bounds the startup ping.
	DialTimeout time.Duration
}

// NewStore connects and pings Redis.
func NewStore(opts Options) (*Store, error) {
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	return NewStoreWithClient(client, opts.Prefix), nil
}

// NewStoreWithClient wraps an existing client.
func NewStoreWithClient(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) blobKey(folder, key string) string {
	return fmt.Sprintf("%s:blob:%s:%s", s.prefix, folder, key)
}

func (s *Store) clockKey(folder, key string) string {
	return fmt.Sprintf("%s:clock:%s:%s", s.prefix, folder, key)
}

func (s *Store) WriteBlob(ctx context.Context, folder, key string, payload []byte) error {
	if err := s.client.Set(ctx, s.blobKey(folder, key), payload, 0).Err(); err != nil {
		return &port.StorageIOError{Op: "write", Folder: folder, Name: key, Err: err}
	}
	return nil
}

func (s *Store) ReadBlob(ctx context.Context, folder, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.blobKey(folder, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, port.ErrObjectNotFound
	}
	if err != nil {
		return nil, &port.StorageIOError{Op: "read", Folder: folder, Name: key, Err: err}
	}
	return data, nil
}

func (s *Store) WriteClock(ctx context.Context, folder, key string, clock vclock.VectorClock) error {
	if err := s.client.Set(ctx, s.clockKey(folder, key), clock.String(), 0).Err(); err != nil {
		return &port.StorageIOError{Op: "write clock", Folder: folder, Name: key, Err: err}
	}
	return nil
}

func (s *Store) ReadClock(ctx context.Context, folder, key string, width int) (vclock.VectorClock, error) {
	raw, err := s.client.Get(ctx, s.clockKey(folder, key)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, port.ErrObjectNotFound
	}
	if err != nil {
		return nil, &port.StorageIOError{Op: "read clock", Folder: folder, Name: key, Err: err}
	}
	clock, err := vclock.Parse(raw, width)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", folder, key, err)
	}
	return clock, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
