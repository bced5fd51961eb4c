package domain

import (
	"errors"
	"fmt"
	"hash/crc32"
	"strings"

	"github.com/anthanhphan/go-dynamo-kv/pkg/ring"
	"github.com/anthanhphan/go-dynamo-kv/pkg/vclock"
)

const (
	// MaxObjectSize bounds a single stored payload.
	MaxObjectSize = 16 * 1024 * 1024
	// MaxKeyLength bounds key length so it stays a valid file name on every store.
	MaxKeyLength = 255
	// ClockFilePrefix names the clock persisted next to each blob.
	ClockFilePrefix = "vector_clock_"
)

var (
	ErrInvalidKey       = errors.New("invalid key")
	ErrObjectTooLarge   = errors.New("object exceeds maximum size")
	ErrChecksumMismatch = errors.New("payload checksum mismatch")
)

// StoredObject is a payload together with its vector clock.
type StoredObject struct {
	Key     string
	Payload []byte
	// Checksum is the CRC32 (IEEE) of Payload.
	Checksum uint32
	Clock    vclock.VectorClock
}

// NewStoredObject computes the checksum for payload.
func NewStoredObject(key string, payload []byte, clock vclock.VectorClock) StoredObject {
	return StoredObject{
		Key:      key,
		Payload:  payload,
		Checksum: crc32.ChecksumIEEE(payload),
		Clock:    clock,
	}
}

// Validate checks size and checksum.
func (o StoredObject) Validate() error {
	if len(o.Payload) > MaxObjectSize {
		return ErrObjectTooLarge
	}
	if crc32.ChecksumIEEE(o.Payload) != o.Checksum {
		return ErrChecksumMismatch
	}
	return nil
}

// ValidateKey rejects keys that cannot be stored as a single file name.
func ValidateKey(key string) error {
	switch {
	case key == "":
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	case len(key) > MaxKeyLength:
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidKey, MaxKeyLength)
	case key == "." || key == "..":
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	case strings.ContainsAny(key, "/\\\x00"):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidKey, key)
	case strings.HasPrefix(key, ClockFilePrefix):
		return fmt.Errorf("%w: %q uses the reserved prefix %q", ErrInvalidKey, key, ClockFilePrefix)
	}
	return nil
}

// ReplicaWrite is what a coordinator pushes to one replica.
type ReplicaWrite struct {
	Folder string
	Object StoredObject
	// Repair marks a read-repair push. No write replaces a local version it does not dominate.
	Repair bool
}

// ReplicaAck is a replica's answer to a ReplicaWrite.
type ReplicaAck struct {
	Applied bool
	Clock   vclock.VectorClock
}

// ReplicaRead is one replica's copy of a key. A missing key has Found=false and a zero clock.
type ReplicaRead struct {
	Found   bool
	Object  StoredObject
	Address string
}

// ReplicaObject pairs a read result with the node it came from.
type ReplicaObject struct {
	Node   ring.PhysicalNode
	Found  bool
	Object StoredObject
}

// StoreResult reports which node coordinated a write.
type StoreResult struct {
	Key         string
	Coordinator ring.PhysicalNode
	Clock       vclock.VectorClock
	Acks        int
	Required    int
}

// RetrieveResult is the reconciled outcome of a read.
type RetrieveResult struct {
	Key string
	// Results holds every replica response collected, ordered by node number.
	Results []ReplicaObject
	// Winners holds the distinct maximal versions. More than one means Conflict.
	Winners  []ReplicaObject
	Conflict bool
	// Repairs lists the addresses a read-repair was scheduled for.
	Repairs []string
}

// Latest returns the single winning version when there is no conflict.
func (r *RetrieveResult) Latest() (ReplicaObject, bool) {
	if r == nil || len(r.Winners) != 1 {
		return ReplicaObject{}, false
	}
	return r.Winners[0], true
}

// NodeHealth is what a node reports about itself to health polls.
type NodeHealth struct {
	Address   string
	Number    int
	RingReady bool
}
