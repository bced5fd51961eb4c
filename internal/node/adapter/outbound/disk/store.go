package disk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthanhphan/go-dynamo-kv/internal/node/domain"
	"github.com/anthanhphan/go-dynamo-kv/internal/node/port"
	"github.com/anthanhphan/go-dynamo-kv/pkg/vclock"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Store keeps each blob at <root>/<folder>/<key> and its clock at <root>/<folder>/vector_clock_<key>.
// Files are replaced atomically through a synced temp file and a rename.
type Store struct {
	root string
}

// Ensure Store implements port.BlobStore.
var _ port.BlobStore = (*Store)(nil)

// NewStore creates root if needed.
func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, errors.New("disk store: data dir is required")
	}
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, &port.StorageIOError{Op: "init", Folder: root, Err: err}
	}
	return &Store{root: root}, nil
}

func (s *Store) WriteBlob(ctx context.Context, folder, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.writeFile(folder, key, payload)
}

func (s *Store) ReadBlob(ctx context.Context, folder, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.readFile(folder, key)
}

func (s *Store) WriteClock(ctx context.Context, folder, key string, clock vclock.VectorClock) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.writeFile(folder, domain.ClockFilePrefix+key, []byte(clock.String()))
}

func (s *Store) ReadClock(ctx context.Context, folder, key string, width int) (vclock.VectorClock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := s.readFile(folder, domain.ClockFilePrefix+key)
	if err != nil {
		return nil, err
	}
	clock, err := vclock.Parse(strings.TrimSpace(string(raw)), width)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", folder, key, err)
	}
	return clock, nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) path(folder, name string) (string, error) {
	if folder == "" || strings.ContainsAny(folder, `/\`) || folder == "." || folder == ".." {
		return "", fmt.Errorf("%w: folder %q", domain.ErrInvalidKey, folder)
	}
	return filepath.Join(s.root, folder, name), nil
}

func (s *Store) readFile(folder, name string) ([]byte, error) {
	path, err := s.path(folder, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, port.ErrObjectNotFound
	}
	if err != nil {
		return nil, &port.StorageIOError{Op: "read", Folder: folder, Name: name, Err: err}
	}
	return data, nil
}

func (s *Store) writeFile(folder, name string, data []byte) error {
	path, err := s.path(folder, name)
	if err != nil {
		return err
	}
	wrap := func(op string, err error) error {
		return &port.StorageIOError{Op: op, Folder: folder, Name: name, Err: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return wrap("mkdir", err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return wrap("create", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return wrap("write", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return wrap("sync", err)
	}
	if err := tmp.Close(); err != nil {
		return wrap("close", err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		return wrap("chmod", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return wrap("rename", err)
	}
	committed = true
	return nil
}
