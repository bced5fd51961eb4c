package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/anthanhphan/go-dynamo-kv/internal/node/port"
	"github.com/anthanhphan/go-dynamo-kv/pkg/vclock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_KeyLayout(t *testing.T) {
	s := NewStoreWithClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "")
	defer func() { _ = s.Close() }()

	assert.Equal(t, "kv:blob:127_0_0_1_9001:report.txt", s.blobKey("127_0_0_1_9001", "report.txt"))
	assert.Equal(t, "kv:clock:127_0_0_1_9001:report.txt", s.clockKey("127_0_0_1_9001", "report.txt"))

	custom := NewStoreWithClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "node-a")
	defer func() { _ = custom.Close() }()
	assert.Equal(t, "node-a:blob:f:k", custom.blobKey("f", "k"))
}

func TestNewStore_FailsWhenUnreachable(t *testing.T) {
	_, err := NewStore(Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}

func TestStore_ErrorsAreTyped(t *testing.T) {
	s := NewStoreWithClient(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	}), "")
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	assert.ErrorIs(t, s.WriteBlob(ctx, "f", "k", []byte("v")), port.ErrStorageIO)
	_, err := s.ReadBlob(ctx, "f", "k")
	assert.ErrorIs(t, err, port.ErrStorageIO)
	assert.ErrorIs(t, s.WriteClock(ctx, "f", "k", vclock.New(3)), port.ErrStorageIO)
	_, err = s.ReadClock(ctx, "f", "k", 3)
	assert.ErrorIs(t, err, port.ErrStorageIO)
}
