package port

import (
	"errors"
	"fmt"

	"github.com/anthanhphan/go-dynamo-kv/internal/node/domain"
	"github.com/anthanhphan/go-dynamo-kv/pkg/ring"
	"github.com/anthanhphan/go-dynamo-kv/pkg/vclock"
)

// Operation names the side of a quorum that failed.
type Operation string

const (
	OperationRead  Operation = "read"
	OperationWrite Operation = "write"
)

var (
	ErrRingEmpty           = ring.ErrRingEmpty
	ErrMalformedClock      = vclock.ErrMalformedClock
	ErrQuorumNotMet        = errors.New("quorum not met")
	ErrStorageIO           = errors.New("storage i/o failure")
	ErrConsistencyConflict = errors.New("concurrent versions")
	ErrObjectNotFound      = errors.New("object not found")
	ErrNotReplica          = errors.New("node is not a replica for key")
)

// QuorumNotMetError is returned when fewer than the required replicas answered before the deadline.
type QuorumNotMetError struct {
	Operation Operation
	Key       string
	Acks      int
	Required  int
	Replicas  int
	Reason    string
}

func (e *QuorumNotMetError) Error() string {
	return fmt.Sprintf("%s quorum not met for %q: acks=%d required=%d replicas=%d (%s)",
		e.Operation, e.Key, e.Acks, e.Required, e.Replicas, e.Reason)
}

func (e *QuorumNotMetError) Is(target error) bool {
	return target == ErrQuorumNotMet
}

// StorageIOError wraps a failure of the local blob or clock store.
type StorageIOError struct {
	Op     string
	Folder string
	Name   string
	Err    error
}

func (e *StorageIOError) Error() string {
	return fmt.Sprintf("storage %s %s/%s: %v", e.Op, e.Folder, e.Name, e.Err)
}

func (e *StorageIOError) Unwrap() error {
	return e.Err
}

func (e *StorageIOError) Is(target error) bool {
	return target == ErrStorageIO
}

// ConsistencyConflictError carries every concurrent version of a key. Only returned when conflicts are rejected.
type ConsistencyConflictError struct {
	Key      string
	Versions []domain.ReplicaObject
}

func (e *ConsistencyConflictError) Error() string {
	return fmt.Sprintf("key %q has %d concurrent versions", e.Key, len(e.Versions))
}

func (e *ConsistencyConflictError) Is(target error) bool {
	return target == ErrConsistencyConflict
}
