package peer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/anthanhphan/go-dynamo-kv/internal/node/adapter/rpcerr"
	"github.com/anthanhphan/go-dynamo-kv/internal/node/domain"
	"github.com/anthanhphan/go-dynamo-kv/internal/node/metrics"
	"github.com/anthanhphan/go-dynamo-kv/internal/node/port"
	"github.com/anthanhphan/go-dynamo-kv/internal/rpc/peerv1"
	"github.com/anthanhphan/go-dynamo-kv/pkg/resilience"
	"github.com/anthanhphan/go-dynamo-kv/pkg/ring"
	"github.com/anthanhphan/go-dynamo-kv/pkg/vclock"
	"github.com/anthanhphan/gosdk/logger"
)

const defaultCallTimeout = 10 * time.Second

// ClientAdapter implements port.PeerClient over gRPC.
type ClientAdapter struct {
	mu       sync.RWMutex
	conns    map[string]*grpc.ClientConn
	breakers map[string]*resilience.CircuitBreaker

	width            int
	metrics          *metrics.Metrics
	dialOpts         []grpc.DialOption
	failureThreshold int
	openTimeout      time.Duration
}

// Ensure ClientAdapter implements port.PeerClient.
var _ port.PeerClient = (*ClientAdapter)(nil)

type Option func(*ClientAdapter)

// WithDialOptions replaces the default insecure transport.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *ClientAdapter) { c.dialOpts = opts }
}

func WithBreaker(failureThreshold int, openTimeout time.Duration) Option {
	return func(c *ClientAdapter) {
		c.failureThreshold = failureThreshold
		c.openTimeout = openTimeout
	}
}

// NewClientAdapter creates a peer client. width is N, used to parse clocks.
func NewClientAdapter(width int, m *metrics.Metrics, opts ...Option) *ClientAdapter {
	c := &ClientAdapter{
		conns:    make(map[string]*grpc.ClientConn),
		breakers: make(map[string]*resilience.CircuitBreaker),
		width:    width,
		metrics:  m,
		dialOpts: []grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(peerv1.MaxMessageSize),
				grpc.MaxCallSendMsgSize(peerv1.MaxMessageSize),
			),
		},
		failureThreshold: 3,
		openTimeout:      10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ClientAdapter) StoreReplica(ctx context.Context, addr string, write domain.ReplicaWrite) (domain.ReplicaAck, error) {
	callCtx, cancel := withDefaultTimeout(ctx, defaultCallTimeout)
	defer cancel()

	req := &peerv1.StoreReplicaRequest{
		Folder:      write.Folder,
		Key:         write.Object.Key,
		Payload:     write.Object.Payload,
		Checksum:    write.Object.Checksum,
		VectorClock: write.Object.Clock.String(),
		Repair:      write.Repair,
	}

	var ack domain.ReplicaAck
	err := c.withBreaker(callCtx, addr, "StoreReplica", func(execCtx context.Context, client peerv1.PeerServiceClient, opts ...grpc.CallOption) error {
		resp, err := client.StoreReplica(execCtx, req, opts...)
		if err != nil {
			return err
		}
		clock, err := vclock.Parse(resp.VectorClock, c.width)
		if err != nil {
			return fmt.Errorf("ack from %s: %w", addr, err)
		}
		ack = domain.ReplicaAck{Applied: resp.Applied, Clock: clock}
		return nil
	})
	return ack, err
}

func (c *ClientAdapter) RetrieveReplica(ctx context.Context, addr, folder, key string) (domain.ReplicaRead, error) {
	callCtx, cancel := withDefaultTimeout(ctx, defaultCallTimeout)
	defer cancel()

	var read domain.ReplicaRead
	err := c.withBreaker(callCtx, addr, "RetrieveReplica", func(execCtx context.Context, client peerv1.PeerServiceClient, opts ...grpc.CallOption) error {
		resp, err := client.RetrieveReplica(execCtx, &peerv1.RetrieveReplicaRequest{Folder: folder, Key: key}, opts...)
		if err != nil {
			return err
		}
		if !resp.Found {
			read = domain.ReplicaRead{
				Found:   false,
				Object:  domain.StoredObject{Key: key, Clock: vclock.New(c.width)},
				Address: resp.Node,
			}
			return nil
		}

		clock, err := vclock.Parse(resp.VectorClock, c.width)
		if err != nil {
			return fmt.Errorf("replica %s: %w", addr, err)
		}
		obj := domain.StoredObject{Key: key, Payload: resp.Payload, Checksum: resp.Checksum, Clock: clock}
		if err := obj.Validate(); err != nil {
			return fmt.Errorf("replica %s: %w", addr, err)
		}
		read = domain.ReplicaRead{Found: true, Object: obj, Address: resp.Node}
		return nil
	})
	return read, err
}

func (c *ClientAdapter) Forward(ctx context.Context, addr, key string, payload []byte) (*domain.StoreResult, error) {
	callCtx, cancel := withDefaultTimeout(ctx, 2*defaultCallTimeout)
	defer cancel()

	var result *domain.StoreResult
	err := c.withBreaker(callCtx, addr, "Forward", func(execCtx context.Context, client peerv1.PeerServiceClient, opts ...grpc.CallOption) error {
		resp, err := client.Forward(execCtx, &peerv1.ForwardRequest{Key: key, Payload: payload}, opts...)
		if err != nil {
			return err
		}
		clock, err := vclock.Parse(resp.VectorClock, c.width)
		if err != nil {
			return fmt.Errorf("forward result from %s: %w", addr, err)
		}
		result = &domain.StoreResult{
			Key:         key,
			Coordinator: ring.PhysicalNode{Address: resp.CoordinatorAddress, Number: int(resp.CoordinatorNumber)},
			Clock:       clock,
			Acks:        int(resp.Acks),
			Required:    int(resp.Required),
		}
		return nil
	})
	return result, err
}

func (c *ClientAdapter) Health(ctx context.Context, addr string) (domain.NodeHealth, error) {
	callCtx, cancel := withDefaultTimeout(ctx, 3*time.Second)
	defer cancel()

	var health domain.NodeHealth
	err := c.withBreaker(callCtx, addr, "Health", func(execCtx context.Context, client peerv1.PeerServiceClient, opts ...grpc.CallOption) error {
		resp, err := client.Health(execCtx, &peerv1.HealthRequest{}, opts...)
		if err != nil {
			return err
		}
		health = domain.NodeHealth{Address: resp.Address, Number: int(resp.Number), RingReady: resp.RingReady}
		return nil
	})
	return health, err
}

type rpcFunc func(context.Context, peerv1.PeerServiceClient, ...grpc.CallOption) error

func (c *ClientAdapter) withBreaker(ctx context.Context, addr, op string, fn rpcFunc) error {
	breaker := c.getBreaker(addr)

	var trailer metadata.MD
	err := breaker.Execute(ctx, func(execCtx context.Context) error {
		conn, err := c.getConn(addr)
		if err != nil {
			return err
		}
		return fn(execCtx, peerv1.NewPeerServiceClient(conn), grpc.Trailer(&trailer))
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, resilience.ErrCircuitOpen) {
		logger.Debugw("Peer RPC short-circuited", "op", op, "target", addr, "error", err.Error())
		return err
	}

	err = rpcerr.FromStatus(ctx, err, trailer)
	if errors.Is(err, context.Canceled) {
		return err
	}
	if rpcerr.IsTransportFailure(err) {
		logger.Warnw("Peer RPC failed", "op", op, "target", addr, "error", err.Error())
		c.dropConn(addr)
	}
	return err
}

func (c *ClientAdapter) getConn(addr string) (*grpc.ClientConn, error) {
	c.mu.RLock()
	conn, ok := c.conns[addr]
	c.mu.RUnlock()
	if ok {
		return conn, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double check
	if conn, ok := c.conns[addr]; ok {
		return conn, nil
	}

	newConn, err := grpc.NewClient(addr, c.dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	c.conns[addr] = newConn
	return newConn, nil
}

func (c *ClientAdapter) getBreaker(addr string) *resilience.CircuitBreaker {
	c.mu.RLock()
	cb, ok := c.breakers[addr]
	c.mu.RUnlock()
	if ok {
		return cb
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cb, ok = c.breakers[addr]; ok {
		return cb
	}
	cb = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:             addr,
		FailureThreshold: c.failureThreshold,
		OpenTimeout:      c.openTimeout,
		IsFailure:        rpcerr.IsTransportFailure,
		OnStateChange: func(name string, from, to resilience.CircuitBreakerState) {
			logger.Infow("Peer circuit breaker state changed", "peer", name, "from", from, "to", to)
			c.metrics.SetBreakerOpen(name, to != resilience.CircuitClosed)
		},
	})
	c.breakers[addr] = cb
	return cb
}

func (c *ClientAdapter) dropConn(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if conn, ok := c.conns[addr]; ok {
		_ = conn.Close()
		delete(c.conns, addr)
	}
}

// Close closes all connections.
func (c *ClientAdapter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for addr, conn := range c.conns {
		_ = conn.Close()
		delete(c.conns, addr)
	}
	return nil
}

func withDefaultTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
