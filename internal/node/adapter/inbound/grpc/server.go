package grpc_handler

import (
	"context"

	"github.com/anthanhphan/go-dynamo-kv/internal/node/adapter/rpcerr"
	"github.com/anthanhphan/go-dynamo-kv/internal/node/domain"
	"github.com/anthanhphan/go-dynamo-kv/internal/node/port"
	"github.com/anthanhphan/go-dynamo-kv/internal/rpc/peerv1"
	"github.com/anthanhphan/go-dynamo-kv/pkg/vclock"
	"github.com/anthanhphan/gosdk/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Server implements the gRPC PeerService.
type Server struct {
	peerv1.UnimplementedPeerServiceServer
	service port.ReplicaService
	width   int
}

// NewServer creates a new gRPC server. width is N, used to parse incoming clocks.
func NewServer(service port.ReplicaService, width int) *Server {
	return &Server{
		service: service,
		width:   width,
	}
}

// Register attaches the service to a grpc.Server.
func (s *Server) Register(registrar grpc.ServiceRegistrar) {
	peerv1.RegisterPeerServiceServer(registrar, s)
}

// StoreReplica applies a coordinator's write to the local store.
func (s *Server) StoreReplica(ctx context.Context, req *peerv1.StoreReplicaRequest) (*peerv1.StoreReplicaResponse, error) {
	if req.Key == "" || req.Folder == "" {
		return nil, status.Error(codes.InvalidArgument, "folder and key are required")
	}

	clock, err := vclock.Parse(req.VectorClock, s.width)
	if err != nil {
		return nil, rpcerr.ToStatus(ctx, err)
	}

	ack, err := s.service.ApplyReplica(ctx, domain.ReplicaWrite{
		Folder: req.Folder,
		Object: domain.StoredObject{
			Key:      req.Key,
			Payload:  req.Payload,
			Checksum: req.Checksum,
			Clock:    clock,
		},
		Repair: req.Repair,
	})
	if err != nil {
		logger.Warnw("StoreReplica failed", "folder", req.Folder, "key", req.Key, "error", err.Error())
		return nil, rpcerr.ToStatus(ctx, err)
	}

	return &peerv1.StoreReplicaResponse{Applied: ack.Applied, VectorClock: ack.Clock.String()}, nil
}

// RetrieveReplica returns the local copy of a key.
func (s *Server) RetrieveReplica(ctx context.Context, req *peerv1.RetrieveReplicaRequest) (*peerv1.RetrieveReplicaResponse, error) {
	if req.Key == "" || req.Folder == "" {
		return nil, status.Error(codes.InvalidArgument, "folder and key are required")
	}

	read, err := s.service.ReadReplica(ctx, req.Folder, req.Key)
	if err != nil {
		logger.Warnw("RetrieveReplica failed", "folder", req.Folder, "key", req.Key, "error", err.Error())
		return nil, rpcerr.ToStatus(ctx, err)
	}

	resp := &peerv1.RetrieveReplicaResponse{
		Found:       read.Found,
		VectorClock: read.Object.Clock.String(),
		Node:        read.Address,
	}
	if read.Found {
		resp.Payload = read.Object.Payload
		resp.Checksum = read.Object.Checksum
	}
	return resp, nil
}

// Forward coordinates a store on behalf of a node outside the preference list.
func (s *Server) Forward(ctx context.Context, req *peerv1.ForwardRequest) (*peerv1.ForwardResponse, error) {
	result, err := s.service.CoordinateForwarded(ctx, req.Key, req.Payload)
	if err != nil {
		logger.Warnw("Forwarded store failed", "key", req.Key, "error", err.Error())
		return nil, rpcerr.ToStatus(ctx, err)
	}

	return &peerv1.ForwardResponse{
		CoordinatorAddress: result.Coordinator.Address,
		CoordinatorNumber:  int32(result.Coordinator.Number),
		VectorClock:        result.Clock.String(),
		Acks:               int32(result.Acks),
		Required:           int32(result.Required),
	}, nil
}

// Health reports this node's identity.
func (s *Server) Health(ctx context.Context, _ *peerv1.HealthRequest) (*peerv1.HealthResponse, error) {
	h := s.service.Health(ctx)
	return &peerv1.HealthResponse{Address: h.Address, Number: int32(h.Number), RingReady: h.RingReady}, nil
}
