package port

import (
	"context"

	"github.com/anthanhphan/go-dynamo-kv/internal/node/domain"
	"github.com/anthanhphan/go-dynamo-kv/pkg/ring"
)

// KeyValueService is the client-facing coordinator.
type KeyValueService interface {
	// Store writes payload under key, forwarding to a replica when this node is not one.
	Store(ctx context.Context, key string, payload []byte) (*domain.StoreResult, error)

	// Retrieve reads key from a read quorum and reconciles the versions.
	Retrieve(ctx context.Context, key string) (*domain.RetrieveResult, error)
}

// ReplicaService serves peer requests against the local store.
type ReplicaService interface {
	ApplyReplica(ctx context.Context, write domain.ReplicaWrite) (domain.ReplicaAck, error)
	ReadReplica(ctx context.Context, folder, key string) (domain.ReplicaRead, error)

	// CoordinateForwarded runs a forwarded store. It fails with ErrNotReplica instead of forwarding again.
	CoordinateForwarded(ctx context.Context, key string, payload []byte) (*domain.StoreResult, error)

	Health(ctx context.Context) domain.NodeHealth
}

// NodeService is everything a node serves.
type NodeService interface {
	KeyValueService
	ReplicaService

	// Members lists ring members with their last known liveness.
	Members(ctx context.Context) []MemberStatus
}

// MemberStatus is a ring member plus liveness as seen from this node.
type MemberStatus struct {
	Node   ring.PhysicalNode
	Alive  bool
	Reason string
}
