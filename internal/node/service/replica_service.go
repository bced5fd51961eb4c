package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthanhphan/go-dynamo-kv/internal/node/domain"
	"github.com/anthanhphan/go-dynamo-kv/internal/node/port"
	"github.com/anthanhphan/go-dynamo-kv/pkg/vclock"
	"github.com/anthanhphan/gosdk/logger"
)

// replicaService owns the local blob store.
type replicaService struct {
	core *NodeServiceImpl
}

func newReplicaService(core *NodeServiceImpl) *replicaService {
	return &replicaService{core: core}
}

// writeLocal stores payload and bumps this node's clock slot.
func (s *replicaService) writeLocal(ctx context.Context, folder, key string, payload []byte, slot int) (vclock.VectorClock, error) {
	unlock := s.core.locks.lock(folder, key)
	defer unlock()

	clock, err := s.loadClock(ctx, folder, key)
	if err != nil {
		return nil, err
	}
	clock.IncrementAt(slot)

	if err := s.core.store.WriteBlob(ctx, folder, key, payload); err != nil {
		return nil, err
	}
	if err := s.core.store.WriteClock(ctx, folder, key, clock); err != nil {
		return nil, err
	}
	return clock, nil
}

// apply stores a pushed replica if it dominates the local version.
func (s *replicaService) apply(ctx context.Context, write domain.ReplicaWrite) (domain.ReplicaAck, error) {
	obj := write.Object
	if err := domain.ValidateKey(obj.Key); err != nil {
		return domain.ReplicaAck{}, err
	}
	if err := obj.Validate(); err != nil {
		return domain.ReplicaAck{}, err
	}
	if width := s.core.quorum.Replicas(); len(obj.Clock) != width {
		return domain.ReplicaAck{}, fmt.Errorf("%w: width %d, want %d", vclock.ErrMalformedClock, len(obj.Clock), width)
	}

	unlock := s.core.locks.lock(write.Folder, obj.Key)
	defer unlock()

	current, err := s.loadClock(ctx, write.Folder, obj.Key)
	if err != nil {
		return domain.ReplicaAck{}, err
	}
	// Only a strictly newer version replaces the local one. A concurrent version is kept so the
	// next read sees both sides.
	if ord := obj.Clock.Compare(current); ord != vclock.Greater {
		if ord == vclock.Concurrent {
			logger.Warnw("Replica write concurrent with local version, keeping local",
				"folder", write.Folder, "key", obj.Key, "local", current.String(), "incoming", obj.Clock.String(), "repair", write.Repair)
		}
		return domain.ReplicaAck{Applied: false, Clock: current}, nil
	}

	if err := s.core.store.WriteBlob(ctx, write.Folder, obj.Key, obj.Payload); err != nil {
		return domain.ReplicaAck{}, err
	}
	if err := s.core.store.WriteClock(ctx, write.Folder, obj.Key, obj.Clock); err != nil {
		return domain.ReplicaAck{}, err
	}

	logger.Debugw("Replica stored", "folder", write.Folder, "key", obj.Key, "clock", obj.Clock.String(), "repair", write.Repair)
	return domain.ReplicaAck{Applied: true, Clock: obj.Clock.Copy()}, nil
}

// read returns the local copy. A missing blob is Found=false with a zero clock.
func (s *replicaService) read(ctx context.Context, folder, key string) (domain.ReplicaRead, error) {
	if err := domain.ValidateKey(key); err != nil {
		return domain.ReplicaRead{}, err
	}

	unlock := s.core.locks.lock(folder, key)
	defer unlock()

	missing := domain.ReplicaRead{
		Found:   false,
		Object:  domain.StoredObject{Key: key, Clock: vclock.New(s.core.quorum.Replicas())},
		Address: s.core.self.Address,
	}

	payload, err := s.core.store.ReadBlob(ctx, folder, key)
	if errors.Is(err, port.ErrObjectNotFound) {
		return missing, nil
	}
	if err != nil {
		return domain.ReplicaRead{}, err
	}

	clock, err := s.loadClock(ctx, folder, key)
	if err != nil {
		return domain.ReplicaRead{}, err
	}

	return domain.ReplicaRead{
		Found:   true,
		Object:  domain.NewStoredObject(key, payload, clock),
		Address: s.core.self.Address,
	}, nil
}

// loadClock returns the stored clock, or a zero clock when none exists yet.
func (s *replicaService) loadClock(ctx context.Context, folder, key string) (vclock.VectorClock, error) {
	width := s.core.quorum.Replicas()
	clock, err := s.core.store.ReadClock(ctx, folder, key, width)
	if errors.Is(err, port.ErrObjectNotFound) {
		return vclock.New(width), nil
	}
	if err != nil {
		return nil, err
	}
	return clock, nil
}
