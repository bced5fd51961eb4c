package service

import (
	"context"

	"github.com/anthanhphan/go-dynamo-kv/internal/node/domain"
	"github.com/anthanhphan/go-dynamo-kv/pkg/ring"
	"github.com/anthanhphan/gosdk/logger"
)

// readRepairService pushes the winning version to replicas a read found behind.
type readRepairService struct {
	core *NodeServiceImpl
}

func newReadRepairService(core *NodeServiceImpl) *readRepairService {
	return &readRepairService{core: core}
}

// schedule queues one repair per lagging replica and returns the addresses queued.
// Repairs run after the read has returned and never affect its result.
func (s *readRepairService) schedule(ctx context.Context, key string, lagging []laggingReplica) []string {
	scheduled := make([]string, 0, len(lagging))
	for _, lag := range lagging {
		job := func() { s.repair(key, lag) }
		if err := s.core.pool.Submit(ctx, job); err != nil {
			s.core.metrics.ReadRepair("dropped")
			logger.Warnw("Read repair dropped", "key", key, "target", lag.replica.Node.Address, "error", err.Error())
			continue
		}
		s.core.metrics.ReadRepair("scheduled")
		scheduled = append(scheduled, lag.replica.Node.Address)
	}
	return scheduled
}

func (s *readRepairService) repair(key string, lag laggingReplica) {
	ctx, cancel := context.WithTimeout(context.Background(), s.core.repairTimeout)
	defer cancel()

	target := lag.replica.Node.Address
	write := domain.ReplicaWrite{
		Folder: ring.FolderFor(target),
		Object: lag.source.Object,
		Repair: true,
	}

	var (
		ack domain.ReplicaAck
		err error
	)
	if target == s.core.self.Address {
		ack, err = s.core.replicas.apply(ctx, write)
	} else {
		ack, err = s.core.peers.StoreReplica(ctx, target, write)
	}
	if err != nil {
		s.core.metrics.ReadRepair("failed")
		logger.Warnw("Read repair failed", "key", key, "target", target, "error", err.Error())
		return
	}

	if !ack.Applied {
		s.core.metrics.ReadRepair("skipped")
		logger.Debugw("Read repair skipped, replica already current", "key", key, "target", target, "clock", ack.Clock.String())
		return
	}
	s.core.metrics.ReadRepair("applied")
	logger.Infow("Read repair applied", "key", key, "target", target,
		"from", lag.replica.Object.Clock.String(), "to", lag.source.Object.Clock.String())
}
