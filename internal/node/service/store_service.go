package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/anthanhphan/go-dynamo-kv/internal/node/domain"
	"github.com/anthanhphan/go-dynamo-kv/internal/node/port"
	"github.com/anthanhphan/go-dynamo-kv/pkg/ring"
	"github.com/anthanhphan/go-dynamo-kv/pkg/vclock"
	"github.com/anthanhphan/gosdk/logger"
)

// storeService coordinates writes.
type storeService struct {
	core *NodeServiceImpl
}

func newStoreService(core *NodeServiceImpl) *storeService {
	return &storeService{core: core}
}

// store writes locally when this node is in the preference list, otherwise hands the request to
// the lowest-numbered replica. A forwarded request is never forwarded again.
func (s *storeService) store(ctx context.Context, key string, payload []byte, allowForward bool) (result *domain.StoreResult, err error) {
	started := time.Now()
	defer func() { s.core.metrics.ObserveRequest("store", outcome(err), started) }()

	if err := domain.ValidateKey(key); err != nil {
		return nil, err
	}
	if len(payload) > domain.MaxObjectSize {
		return nil, domain.ErrObjectTooLarge
	}

	nodes, err := s.core.preferenceList(key)
	if err != nil {
		return nil, err
	}

	slot := indexOf(nodes, s.core.self.Address)
	if slot < 0 {
		if !allowForward {
			return nil, fmt.Errorf("%w: %s not among %v", port.ErrNotReplica, s.core.self.Address, nodes)
		}
		return s.forward(ctx, nodes[0], key, payload)
	}

	clock, err := s.core.replicas.writeLocal(ctx, ring.FolderFor(s.core.self.Address), key, payload, slot)
	if err != nil {
		return nil, err
	}

	obj := domain.NewStoredObject(key, payload, clock)
	peers := without(nodes, slot)
	w := s.core.quorum.WriteQuorum()

	replies, err := gatherQuorum(ctx, s.core, port.OperationWrite, key, peers, w, 1,
		func(callCtx context.Context, node ring.PhysicalNode) (domain.ReplicaAck, error) {
			ack, err := s.core.peers.StoreReplica(callCtx, node.Address, domain.ReplicaWrite{
				Folder: ring.FolderFor(node.Address),
				Object: obj,
			})
			if err != nil {
				return ack, err
			}
			return ack, checkAck(ack, obj)
		})
	if err != nil {
		logger.Warnw("Write quorum not reached", "key", key, "clock", clock.String(), "error", err.Error())
		return nil, err
	}

	logger.Debugw("Write succeeded", "key", key, "clock", clock.String(), "acks", 1+len(replies))
	return &domain.StoreResult{
		Key:         key,
		Coordinator: s.core.self,
		Clock:       clock,
		Acks:        1 + len(replies),
		Required:    w,
	}, nil
}

// checkAck fails a replica that kept a version the write does not dominate. Re-sending the same
// version is acknowledged.
func checkAck(ack domain.ReplicaAck, obj domain.StoredObject) error {
	if ack.Applied || ack.Clock.Compare(obj.Clock) == vclock.Equal {
		return nil
	}
	return fmt.Errorf("%w: replica kept %s over %s", port.ErrConsistencyConflict, ack.Clock, obj.Clock)
}

func (s *storeService) forward(ctx context.Context, target ring.PhysicalNode, key string, payload []byte) (*domain.StoreResult, error) {
	logger.Debugw("Forwarding write to replica", "key", key, "target", target.Address)

	fwdCtx, cancel := context.WithTimeout(ctx, s.core.quorumTimeout+s.core.rpcTimeout)
	defer cancel()

	result, err := s.core.peers.Forward(fwdCtx, target.Address, key, payload)
	if err != nil {
		return nil, fmt.Errorf("forward %q to %s: %w", key, target.Address, err)
	}
	return result, nil
}

// preferenceList resolves the replicas for key ordered by node number. The clock slot of a
// replica is its index in this list.
func (s *NodeServiceImpl) preferenceList(key string) ([]ring.PhysicalNode, error) {
	nodes, err := s.ring.GetNodes(key)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Number < nodes[j].Number })
	return nodes, nil
}

func indexOf(nodes []ring.PhysicalNode, address string) int {
	for i, n := range nodes {
		if n.Address == address {
			return i
		}
	}
	return -1
}

func without(nodes []ring.PhysicalNode, skip int) []ring.PhysicalNode {
	out := make([]ring.PhysicalNode, 0, len(nodes))
	for i, n := range nodes {
		if i != skip {
			out = append(out, n)
		}
	}
	return out
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return "error"
}
