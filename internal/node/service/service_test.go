package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/anthanhphan/go-dynamo-kv/internal/node/port"
	"github.com/anthanhphan/go-dynamo-kv/internal/node/service/mocks"
	"github.com/anthanhphan/go-dynamo-kv/pkg/quorum"
	"github.com/anthanhphan/go-dynamo-kv/pkg/resilience"
	"github.com/anthanhphan/go-dynamo-kv/pkg/ring"
	"github.com/anthanhphan/go-dynamo-kv/pkg/vclock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// memStore is an in-memory port.BlobStore.
type memStore struct {
	mu     sync.Mutex
	blobs  map[string][]byte
	clocks map[string]vclock.VectorClock
}

func newMemStore() *memStore {
	return &memStore{
		blobs:  make(map[string][]byte),
		clocks: make(map[string]vclock.VectorClock),
	}
}

func (m *memStore) WriteBlob(_ context.Context, folder, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[folder+"/"+key] = append([]byte(nil), payload...)
	return nil
}

func (m *memStore) ReadBlob(_ context.Context, folder, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[folder+"/"+key]
	if !ok {
		return nil, port.ErrObjectNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *memStore) WriteClock(_ context.Context, folder, key string, clock vclock.VectorClock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clocks[folder+"/"+key] = clock.Copy()
	return nil
}

func (m *memStore) ReadClock(_ context.Context, folder, key string, width int) (vclock.VectorClock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clocks[folder+"/"+key]
	if !ok {
		return nil, port.ErrObjectNotFound
	}
	if len(c) != width {
		return nil, fmt.Errorf("%w: width %d", vclock.ErrMalformedClock, len(c))
	}
	return c.Copy(), nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) seed(folder, key string, payload string, clock vclock.VectorClock) {
	_ = m.WriteBlob(context.Background(), folder, key, []byte(payload))
	_ = m.WriteClock(context.Background(), folder, key, clock)
}

func (m *memStore) clock(folder, key string) vclock.VectorClock {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clocks[folder+"/"+key]
}

type harness struct {
	svc   *NodeServiceImpl
	store *memStore
	peers *mocks.MockPeerClient
	pool  *resilience.WorkerPool
	ring  *ring.Ring
	nodes []ring.PhysicalNode
}

func (h *harness) folder(i int) string {
	return ring.FolderFor(h.nodes[i].Address)
}

// drain waits for every queued fan-out call and read repair.
func (h *harness) drain() {
	h.pool.Close()
	h.pool.Wait()
}

type harnessConfig struct {
	nodes    int
	replicas int
	self     int
	vnodes   int
	hash     ring.HashFunction
	mutate   func(*Options)
}

func newHarness(t *testing.T, cfg harnessConfig) *harness {
	t.Helper()

	ctrl := gomock.NewController(t)
	q, err := quorum.New(cfg.replicas, cfg.nodes)
	require.NoError(t, err)

	r := ring.NewRing(cfg.hash, q, cfg.vnodes)
	nodes := make([]ring.PhysicalNode, 0, cfg.nodes)
	for i := 0; i < cfg.nodes; i++ {
		n := ring.PhysicalNode{Address: fmt.Sprintf("127.0.0.1:%d", 9001+i), Number: i, Self: i == cfg.self}
		require.NoError(t, r.AddNode(n))
		nodes = append(nodes, n)
	}

	store := newMemStore()
	peers := mocks.NewMockPeerClient(ctrl)
	pool := resilience.NewWorkerPool("test", 8, 64)
	t.Cleanup(func() {
		pool.Close()
		pool.Wait()
	})

	opts := Options{
		Ring:   r,
		Quorum: q,
		Store:  store,
		Peers:  peers,
		Pool:   pool,
	}
	if cfg.mutate != nil {
		cfg.mutate(&opts)
	}

	svc, err := NewNodeService(opts)
	require.NoError(t, err)

	return &harness{svc: svc, store: store, peers: peers, pool: pool, ring: r, nodes: nodes}
}

func threeNodeHarness(t *testing.T, mutate func(*Options)) *harness {
	return newHarness(t, harnessConfig{nodes: 3, replicas: 3, self: 0, vnodes: 16, mutate: mutate})
}

func TestNewNodeService_RequiresSelf(t *testing.T) {
	q, err := quorum.New(1, 1)
	require.NoError(t, err)
	r := ring.NewRing(nil, q, 4)
	require.NoError(t, r.AddNode(ring.PhysicalNode{Address: "127.0.0.1:9001"}))

	_, err = NewNodeService(Options{Ring: r, Quorum: q})
	require.ErrorIs(t, err, ErrSelfNotInRing)
}
