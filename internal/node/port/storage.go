package port

import (
	"context"

	"github.com/anthanhphan/go-dynamo-kv/pkg/vclock"
)

//go:generate mockgen -destination=../service/mocks/storage_mock.go -package=mocks -source=storage.go

// BlobStore persists payloads and their clocks, partitioned by folder.
// Missing entries are reported as ErrObjectNotFound; every other failure is a *StorageIOError.
type BlobStore interface {
	// WriteBlob replaces the payload stored under folder/key.
	WriteBlob(ctx context.Context, folder, key string, payload []byte) error

	// ReadBlob returns the payload stored under folder/key.
	ReadBlob(ctx context.Context, folder, key string) ([]byte, error)

	// WriteClock replaces the clock stored for folder/key.
	WriteClock(ctx context.Context, folder, key string, clock vclock.VectorClock) error

	// ReadClock parses the clock stored for folder/key into a clock of the given width.
	ReadClock(ctx context.Context, folder, key string, width int) (vclock.VectorClock, error)

	Close() error
}
