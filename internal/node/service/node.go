package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/anthanhphan/go-dynamo-kv/internal/node/domain"
	"github.com/anthanhphan/go-dynamo-kv/internal/node/metrics"
	"github.com/anthanhphan/go-dynamo-kv/internal/node/port"
	"github.com/anthanhphan/go-dynamo-kv/pkg/quorum"
	"github.com/anthanhphan/go-dynamo-kv/pkg/resilience"
	"github.com/anthanhphan/go-dynamo-kv/pkg/ring"
	"github.com/spaolacci/murmur3"
)

const (
	DefaultQuorumTimeout = 10 * time.Second
	DefaultRepairTimeout = 5 * time.Second
)

var ErrSelfNotInRing = errors.New("local node is not registered in the ring")

// Options wires a NodeServiceImpl.
type Options struct {
	Ring     *ring.Ring
	Quorum   *quorum.Config
	Store    port.BlobStore
	Peers    port.PeerClient
	Pool     *resilience.WorkerPool
	Metrics  *metrics.Metrics
	Liveness *LivenessTracker

	// QuorumTimeout bounds how long a coordinator waits for its quorum.
	QuorumTimeout time.Duration
	// RPCTimeout bounds one replica call. Defaults to QuorumTimeout.
	RPCTimeout    time.Duration
	RepairTimeout time.Duration
	// RejectConflicts makes Retrieve fail with *port.ConsistencyConflictError instead of returning every version.
	RejectConflicts bool
}

// NodeServiceImpl is a facade that composes the coordinator and replica use-case services.
type NodeServiceImpl struct {
	ring     *ring.Ring
	quorum   *quorum.Config
	store    port.BlobStore
	peers    port.PeerClient
	pool     *resilience.WorkerPool
	metrics  *metrics.Metrics
	liveness *LivenessTracker
	self     ring.PhysicalNode

	quorumTimeout   time.Duration
	rpcTimeout      time.Duration
	repairTimeout   time.Duration
	rejectConflicts bool

	locks keyLocks

	storer    *storeService
	retriever *retrieveService
	replicas  *replicaService
	repairer  *readRepairService
}

// Ensure NodeServiceImpl implements port.NodeService.
var _ port.NodeService = (*NodeServiceImpl)(nil)

// NewNodeService builds the facade and all use-case services.
func NewNodeService(opts Options) (*NodeServiceImpl, error) {
	self, ok := opts.Ring.Self()
	if !ok {
		return nil, ErrSelfNotInRing
	}

	svc := &NodeServiceImpl{
		ring:            opts.Ring,
		quorum:          opts.Quorum,
		store:           opts.Store,
		peers:           opts.Peers,
		pool:            opts.Pool,
		metrics:         opts.Metrics,
		liveness:        opts.Liveness,
		self:            self,
		quorumTimeout:   opts.QuorumTimeout,
		rpcTimeout:      opts.RPCTimeout,
		repairTimeout:   opts.RepairTimeout,
		rejectConflicts: opts.RejectConflicts,
	}
	if svc.quorumTimeout <= 0 {
		svc.quorumTimeout = DefaultQuorumTimeout
	}
	if svc.rpcTimeout <= 0 {
		svc.rpcTimeout = svc.quorumTimeout
	}
	if svc.repairTimeout <= 0 {
		svc.repairTimeout = DefaultRepairTimeout
	}
	if svc.liveness == nil {
		svc.liveness = NewLivenessTracker(opts.Metrics)
	}

	svc.replicas = newReplicaService(svc)
	svc.repairer = newReadRepairService(svc)
	svc.storer = newStoreService(svc)
	svc.retriever = newRetrieveService(svc)

	return svc, nil
}

// Store writes payload under key, coordinating locally or forwarding to a replica.
func (s *NodeServiceImpl) Store(ctx context.Context, key string, payload []byte) (*domain.StoreResult, error) {
	return s.storer.store(ctx, key, payload, true)
}

// Retrieve reads key from a read quorum and reconciles the versions.
func (s *NodeServiceImpl) Retrieve(ctx context.Context, key string) (*domain.RetrieveResult, error) {
	return s.retriever.retrieve(ctx, key)
}

// ApplyReplica stores a replica pushed by a coordinator.
func (s *NodeServiceImpl) ApplyReplica(ctx context.Context, write domain.ReplicaWrite) (domain.ReplicaAck, error) {
	return s.replicas.apply(ctx, write)
}

// ReadReplica returns the local copy of key from folder.
func (s *NodeServiceImpl) ReadReplica(ctx context.Context, folder, key string) (domain.ReplicaRead, error) {
	return s.replicas.read(ctx, folder, key)
}

// CoordinateForwarded runs a store another node forwarded here.
func (s *NodeServiceImpl) CoordinateForwarded(ctx context.Context, key string, payload []byte) (*domain.StoreResult, error) {
	return s.storer.store(ctx, key, payload, false)
}

// Health reports this node's identity and whether its ring is built.
func (s *NodeServiceImpl) Health(_ context.Context) domain.NodeHealth {
	return domain.NodeHealth{
		Address:   s.self.Address,
		Number:    s.self.Number,
		RingReady: s.ring.IsRingCreated(),
	}
}

// Members lists ring members with their last observed liveness.
func (s *NodeServiceImpl) Members(_ context.Context) []port.MemberStatus {
	nodes := s.ring.AllNodes()
	out := make([]port.MemberStatus, 0, len(nodes))
	for _, n := range nodes {
		if n.Address == s.self.Address {
			out = append(out, port.MemberStatus{Node: n, Alive: true, Reason: "self"})
			continue
		}
		alive, reason := s.liveness.Status(n.Address)
		out = append(out, port.MemberStatus{Node: n, Alive: alive, Reason: reason})
	}
	return out
}

// Liveness exposes the tracker shared with the poller and gossip.
func (s *NodeServiceImpl) Liveness() *LivenessTracker {
	return s.liveness
}

const lockStripes = 64

// keyLocks serializes read-modify-write of a blob and its clock.
type keyLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (l *keyLocks) lock(folder, key string) func() {
	m := &l.stripes[murmur3.Sum32([]byte(folder+"/"+key))%lockStripes]
	m.Lock()
	return m.Unlock
}
