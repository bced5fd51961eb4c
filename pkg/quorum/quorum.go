package quorum

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrInvalidReplicas = errors.New("replication factor must be at least 1")
	ErrTooFewNodes     = errors.New("replication factor exceeds configured node count")
)

// Config holds the replication factor N and the read/write quorums derived from it.
// N is written once; later SetReplicas calls are ignored.
type Config struct {
	once     sync.Once
	mu       sync.RWMutex
	replicas int
}

// New validates N against the number of configured nodes and returns a sealed Config.
func New(replicas, nodeCount int) (*Config, error) {
	if replicas < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidReplicas, replicas)
	}
	if replicas > nodeCount {
		return nil, fmt.Errorf("%w: replicas=%d nodes=%d", ErrTooFewNodes, replicas, nodeCount)
	}

	c := &Config{}
	c.SetReplicas(replicas)
	return c, nil
}

// SetReplicas stores N the first time it is called and reports whether it did.
func (c *Config) SetReplicas(n int) bool {
	applied := false
	c.once.Do(func() {
		c.mu.Lock()
		c.replicas = n
		c.mu.Unlock()
		applied = true
	})
	return applied
}

// Replicas returns N.
func (c *Config) Replicas() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.replicas
}

// ReadQuorum returns R = N-1.
func (c *Config) ReadQuorum() int {
	return c.Replicas() - 1
}

// WriteQuorum returns W = N-1.
func (c *Config) WriteQuorum() int {
	return c.Replicas() - 1
}

// PeerAcks returns how many peer acknowledgements are still needed for a quorum of size q
// once the local replica (if any) has been counted.
func PeerAcks(q int, selfIsReplica bool) int {
	if selfIsReplica {
		q--
	}
	if q < 0 {
		return 0
	}
	return q
}
