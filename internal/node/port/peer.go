package port

import (
	"context"

	"github.com/anthanhphan/go-dynamo-kv/internal/node/domain"
)

//go:generate mockgen -destination=../service/mocks/peer_mock.go -package=mocks -source=peer.go

// PeerClient is the coordinator's view of the other nodes.
type PeerClient interface {
	// StoreReplica pushes a replica write to the node at addr.
	StoreReplica(ctx context.Context, addr string, write domain.ReplicaWrite) (domain.ReplicaAck, error)

	// RetrieveReplica reads the node's local copy of key from folder.
	RetrieveReplica(ctx context.Context, addr, folder, key string) (domain.ReplicaRead, error)

	// Forward asks the node at addr to coordinate a store it is a replica for.
	Forward(ctx context.Context, addr, key string, payload []byte) (*domain.StoreResult, error)

	// Health polls the node.
	Health(ctx context.Context, addr string) (domain.NodeHealth, error)

	Close() error
}
