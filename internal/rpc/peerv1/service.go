package peerv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ServiceName = "kvstore.peer.v1.PeerService"

	StoreReplicaMethod    = "/" + ServiceName + "/StoreReplica"
	RetrieveReplicaMethod = "/" + ServiceName + "/RetrieveReplica"
	ForwardMethod         = "/" + ServiceName + "/Forward"
	HealthMethod          = "/" + ServiceName + "/Health"
)

// PeerServiceServer is implemented by every node.
type PeerServiceServer interface {
	StoreReplica(context.Context, *StoreReplicaRequest) (*StoreReplicaResponse, error)
	RetrieveReplica(context.Context, *RetrieveReplicaRequest) (*RetrieveReplicaResponse, error)
	Forward(context.Context, *ForwardRequest) (*ForwardResponse, error)
	Health(context.Context, *HealthRequest) (*HealthResponse, error)
}

// UnimplementedPeerServiceServer can be embedded for forward compatibility.
type UnimplementedPeerServiceServer struct{}

func (UnimplementedPeerServiceServer) StoreReplica(context.Context, *StoreReplicaRequest) (*StoreReplicaResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method StoreReplica not implemented")
}

func (UnimplementedPeerServiceServer) RetrieveReplica(context.Context, *RetrieveReplicaRequest) (*RetrieveReplicaResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RetrieveReplica not implemented")
}

func (UnimplementedPeerServiceServer) Forward(context.Context, *ForwardRequest) (*ForwardResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Forward not implemented")
}

func (UnimplementedPeerServiceServer) Health(context.Context, *HealthRequest) (*HealthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Health not implemented")
}

func RegisterPeerServiceServer(s grpc.ServiceRegistrar, srv PeerServiceServer) {
	s.RegisterService(&PeerService_ServiceDesc, srv)
}

func unaryHandler[Req any, Resp any](method string, call func(PeerServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PeerServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PeerServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// PeerService_ServiceDesc describes the service for grpc.Server.RegisterService.
var PeerService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PeerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "StoreReplica",
			Handler:    unaryHandler(StoreReplicaMethod, PeerServiceServer.StoreReplica),
		},
		{
			MethodName: "RetrieveReplica",
			Handler:    unaryHandler(RetrieveReplicaMethod, PeerServiceServer.RetrieveReplica),
		},
		{
			MethodName: "Forward",
			Handler:    unaryHandler(ForwardMethod, PeerServiceServer.Forward),
		},
		{
			MethodName: "Health",
			Handler:    unaryHandler(HealthMethod, PeerServiceServer.Health),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "kvstore/peer/v1/peer.json",
}

// PeerServiceClient is the client side of PeerService.
type PeerServiceClient interface {
	StoreReplica(ctx context.Context, in *StoreReplicaRequest, opts ...grpc.CallOption) (*StoreReplicaResponse, error)
	RetrieveReplica(ctx context.Context, in *RetrieveReplicaRequest, opts ...grpc.CallOption) (*RetrieveReplicaResponse, error)
	Forward(ctx context.Context, in *ForwardRequest, opts ...grpc.CallOption) (*ForwardResponse, error)
	Health(ctx context.Context, in *HealthRequest, opts ...grpc.CallOption) (*HealthResponse, error)
}

type peerServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewPeerServiceClient(cc grpc.ClientConnInterface) PeerServiceClient {
	return &peerServiceClient{cc: cc}
}

func (c *peerServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *peerServiceClient) StoreReplica(ctx context.Context, in *StoreReplicaRequest, opts ...grpc.CallOption) (*StoreReplicaResponse, error) {
	out := new(StoreReplicaResponse)
	if err := c.invoke(ctx, StoreReplicaMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *peerServiceClient) RetrieveReplica(ctx context.Context, in *RetrieveReplicaRequest, opts ...grpc.CallOption) (*RetrieveReplicaResponse, error) {
	out := new(RetrieveReplicaResponse)
	if err := c.invoke(ctx, RetrieveReplicaMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *peerServiceClient) Forward(ctx context.Context, in *ForwardRequest, opts ...grpc.CallOption) (*ForwardResponse, error) {
	out := new(ForwardResponse)
	if err := c.invoke(ctx, ForwardMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *peerServiceClient) Health(ctx context.Context, in *HealthRequest, opts ...grpc.CallOption) (*HealthResponse, error) {
	out := new(HealthResponse)
	if err := c.invoke(ctx, HealthMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
