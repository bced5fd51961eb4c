package disk

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/anthanhphan/go-dynamo-kv/internal/node/domain"
	"github.com/anthanhphan/go-dynamo-kv/internal/node/port"
	"github.com/anthanhphan/go-dynamo-kv/pkg/vclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	s, err := NewStore(root)
	require.NoError(t, err)
	return s, root
}

func TestStore_BlobRoundTrip(t *testing.T) {
	s, root := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteBlob(ctx, "127_0_0_1_9001", "report.txt", []byte("v1")))
	require.NoError(t, s.WriteBlob(ctx, "127_0_0_1_9001", "report.txt", []byte("v2")))

	got, err := s.ReadBlob(ctx, "127_0_0_1_9001", "report.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	onDisk, err := os.ReadFile(filepath.Join(root, "127_0_0_1_9001", "report.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), onDisk)

	entries, err := os.ReadDir(filepath.Join(root, "127_0_0_1_9001"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestStore_ClockFileLayout(t *testing.T) {
	s, root := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteClock(ctx, "f", "k", vclock.VectorClock{2, 0, 1}))

	raw, err := os.ReadFile(filepath.Join(root, "f", domain.ClockFilePrefix+"k"))
	require.NoError(t, err)
	assert.Equal(t, "2_0_1", string(raw))

	clock, err := s.ReadClock(ctx, "f", "k", 3)
	require.NoError(t, err)
	assert.Equal(t, vclock.VectorClock{2, 0, 1}, clock)
}

func TestStore_Missing(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.ReadBlob(ctx, "f", "nope")
	assert.ErrorIs(t, err, port.ErrObjectNotFound)

	_, err = s.ReadClock(ctx, "f", "nope", 3)
	assert.ErrorIs(t, err, port.ErrObjectNotFound)
}

func TestStore_MalformedClock(t *testing.T) {
	s, root := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "f"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "f", domain.ClockFilePrefix+"k"), []byte("1_x_0"), 0o644))

	_, err := s.ReadClock(context.Background(), "f", "k", 3)
	assert.ErrorIs(t, err, vclock.ErrMalformedClock)
}

func TestStore_RejectsEscapingFolder(t *testing.T) {
	s, _ := newTestStore(t)
	err := s.WriteBlob(context.Background(), "../outside", "k", []byte("v"))
	assert.ErrorIs(t, err, domain.ErrInvalidKey)
}

func TestStore_IOErrorIsTyped(t *testing.T) {
	s, root := newTestStore(t)
	// A regular file where the folder directory should be.
	require.NoError(t, os.WriteFile(filepath.Join(root, "blocked"), []byte("x"), 0o644))

	err := s.WriteBlob(context.Background(), "blocked", "k", []byte("v"))
	assert.ErrorIs(t, err, port.ErrStorageIO)
}

func TestStore_CanceledContext(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.WriteBlob(ctx, "f", "k", []byte("v")), context.Canceled)
}
