package ring

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/anthanhphan/go-dynamo-kv/pkg/quorum"
)

const (
	// DefaultVNodesPerNode is the number of virtual nodes placed for each physical node.
	DefaultVNodesPerNode = 100
)

var (
	ErrRingEmpty     = errors.New("hash ring is empty")
	ErrNodeExists    = errors.New("node already registered")
	ErrDuplicateSelf = errors.New("another node is already marked as self")
)

// Ring maps digests to virtual nodes and keeps the registry of physical nodes.
// The registry always mirrors ring membership: removing a node drops both.
type Ring struct {
	mu            sync.RWMutex
	hash          HashFunction
	quorum        *quorum.Config
	vnodes        []VirtualNode // sorted by Digest
	nodes         map[string]PhysicalNode
	order         []string // registry in insertion order
	vnodesPerNode int
}

// NewRing creates an empty ring.
func NewRing(hash HashFunction, q *quorum.Config, vnodesPerNode int) *Ring {
	if hash == nil {
		hash = Murmur3Hash{}
	}
	if vnodesPerNode <= 0 {
		vnodesPerNode = DefaultVNodesPerNode
	}
	return &Ring{
		hash:          hash,
		quorum:        q,
		vnodes:        make([]VirtualNode, 0),
		nodes:         make(map[string]PhysicalNode),
		vnodesPerNode: vnodesPerNode,
	}
}

// AddNode places vnodesPerNode virtual nodes for node and registers it.
func (r *Ring) AddNode(node PhysicalNode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[node.Address]; exists {
		return fmt.Errorf("%w: %s", ErrNodeExists, node.Address)
	}
	if node.Self {
		for _, n := range r.nodes {
			if n.Self {
				return fmt.Errorf("%w: %s", ErrDuplicateSelf, n.Address)
			}
		}
	}

	// Continue numbering after any virtual nodes the address still owns.
	start := r.ownedLocked(node.Address)
	for seq := start; seq < start+r.vnodesPerNode; seq++ {
		r.placeLocked(VirtualNode{
			Digest:     r.hash.Hash(virtualLabel(node.Address, seq)),
			Owner:      node.Address,
			ReplicaSeq: seq,
		})
	}

	r.nodes[node.Address] = node
	r.order = append(r.order, node.Address)
	return nil
}

// RemoveNode drops every virtual node owned by address along with its registry entry.
func (r *Ring) RemoveNode(address string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[address]; !exists {
		return false
	}
	delete(r.nodes, address)

	for i, a := range r.order {
		if a == address {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	kept := make([]VirtualNode, 0, len(r.vnodes))
	for _, vn := range r.vnodes {
		if vn.Owner != address {
			kept = append(kept, vn)
		}
	}
	r.vnodes = kept
	return true
}

// GetNodes returns the preference list for key: up to N distinct physical nodes in clockwise
// order starting at the first digest >= hash(key). The walk stops after one full turn.
func (r *Ring) GetNodes(key string) ([]PhysicalNode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.vnodes) == 0 {
		return nil, ErrRingEmpty
	}

	want := r.quorum.Replicas()
	if want > len(r.nodes) {
		want = len(r.nodes)
	}

	digest := r.hash.Hash(key)
	idx := sort.Search(len(r.vnodes), func(i int) bool {
		return r.vnodes[i].Digest >= digest
	})
	if idx == len(r.vnodes) {
		idx = 0
	}

	seen := make(map[string]bool, want)
	result := make([]PhysicalNode, 0, want)
	for step := 0; step < len(r.vnodes) && len(result) < want; step++ {
		vn := r.vnodes[(idx+step)%len(r.vnodes)]
		if seen[vn.Owner] {
			continue
		}
		seen[vn.Owner] = true
		result = append(result, r.nodes[vn.Owner])
	}

	return result, nil
}

// IsRingCreated reports whether at least one virtual node is placed.
func (r *Ring) IsRingCreated() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.vnodes) > 0
}

// AllNodes returns the registry in the order nodes were added.
func (r *Ring) AllNodes() []PhysicalNode {
	r.mu.RLock()
	defer r.mu.RUnlock()

	nodes := make([]PhysicalNode, 0, len(r.order))
	for _, addr := range r.order {
		nodes = append(nodes, r.nodes[addr])
	}
	return nodes
}

// Self returns the node representing the current process.
func (r *Ring) Self() (PhysicalNode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, n := range r.nodes {
		if n.Self {
			return n, true
		}
	}
	return PhysicalNode{}, false
}

// Replicas returns the replication factor the ring walks for.
func (r *Ring) Replicas() int {
	return r.quorum.Replicas()
}

// VirtualNodeCount returns how many ring entries address currently owns.
func (r *Ring) VirtualNodeCount(address string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ownedLocked(address)
}

func (r *Ring) ownedLocked(address string) int {
	count := 0
	for _, vn := range r.vnodes {
		if vn.Owner == address {
			count++
		}
	}
	return count
}

// placeLocked inserts vn keeping digest order. A digest collision replaces the previous entry.
func (r *Ring) placeLocked(vn VirtualNode) {
	idx := sort.Search(len(r.vnodes), func(i int) bool {
		return r.vnodes[i].Digest >= vn.Digest
	})
	if idx < len(r.vnodes) && r.vnodes[idx].Digest == vn.Digest {
		r.vnodes[idx] = vn
		return
	}
	r.vnodes = append(r.vnodes, VirtualNode{})
	copy(r.vnodes[idx+1:], r.vnodes[idx:])
	r.vnodes[idx] = vn
}
