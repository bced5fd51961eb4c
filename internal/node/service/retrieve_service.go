package service

import (
	"context"
	"sort"
	"time"

	"github.com/anthanhphan/go-dynamo-kv/internal/node/domain"
	"github.com/anthanhphan/go-dynamo-kv/internal/node/port"
	"github.com/anthanhphan/go-dynamo-kv/pkg/ring"
	"github.com/anthanhphan/gosdk/logger"
)

// retrieveService coordinates reads.
type retrieveService struct {
	core *NodeServiceImpl
}

func newRetrieveService(core *NodeServiceImpl) *retrieveService {
	return &retrieveService{core: core}
}

func (s *retrieveService) retrieve(ctx context.Context, key string) (result *domain.RetrieveResult, err error) {
	started := time.Now()
	defer func() { s.core.metrics.ObserveRequest("retrieve", outcome(err), started) }()

	if err := domain.ValidateKey(key); err != nil {
		return nil, err
	}

	nodes, err := s.core.preferenceList(key)
	if err != nil {
		return nil, err
	}

	collected := make([]domain.ReplicaObject, 0, len(nodes))
	peers := nodes
	localAcks := 0
	if slot := indexOf(nodes, s.core.self.Address); slot >= 0 {
		local, err := s.core.replicas.read(ctx, ring.FolderFor(s.core.self.Address), key)
		if err != nil {
			return nil, err
		}
		collected = append(collected, domain.ReplicaObject{Node: nodes[slot], Found: local.Found, Object: local.Object})
		peers = without(nodes, slot)
		localAcks = 1
	}

	replies, err := gatherQuorum(ctx, s.core, port.OperationRead, key, peers, s.core.quorum.ReadQuorum(), localAcks,
		func(callCtx context.Context, node ring.PhysicalNode) (domain.ReplicaRead, error) {
			return s.core.peers.RetrieveReplica(callCtx, node.Address, ring.FolderFor(node.Address), key)
		})
	if err != nil {
		logger.Warnw("Read quorum not reached", "key", key, "error", err.Error())
		return nil, err
	}
	for _, r := range replies {
		collected = append(collected, domain.ReplicaObject{Node: r.node, Found: r.value.Found, Object: r.value.Object})
	}
	sort.SliceStable(collected, func(i, j int) bool { return collected[i].Node.Number < collected[j].Node.Number })

	rec := reconcile(collected)
	if !rec.found {
		return nil, port.ErrObjectNotFound
	}

	repairs := s.core.repairer.schedule(ctx, key, rec.lagging)

	if rec.conflict() {
		s.core.metrics.Conflict()
		logger.Warnw("Concurrent versions detected", "key", key, "versions", len(rec.winners))
		if s.core.rejectConflicts {
			return nil, &port.ConsistencyConflictError{Key: key, Versions: rec.winners}
		}
	}

	return &domain.RetrieveResult{
		Key:      key,
		Results:  collected,
		Winners:  rec.winners,
		Conflict: rec.conflict(),
		Repairs:  repairs,
	}, nil
}
