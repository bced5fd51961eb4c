package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"

	grpcHandler "github.com/anthanhphan/go-dynamo-kv/internal/node/adapter/inbound/grpc"
	httpHandler "github.com/anthanhphan/go-dynamo-kv/internal/node/adapter/inbound/http"
	"github.com/anthanhphan/go-dynamo-kv/internal/node/adapter/outbound/disk"
	"github.com/anthanhphan/go-dynamo-kv/internal/node/adapter/outbound/peer"
	"github.com/anthanhphan/go-dynamo-kv/internal/node/adapter/outbound/redisstore"
	"github.com/anthanhphan/go-dynamo-kv/internal/node/config"
	"github.com/anthanhphan/go-dynamo-kv/internal/node/metrics"
	"github.com/anthanhphan/go-dynamo-kv/internal/node/port"
	"github.com/anthanhphan/go-dynamo-kv/internal/node/service"
	"github.com/anthanhphan/go-dynamo-kv/internal/rpc/peerv1"
	"github.com/anthanhphan/go-dynamo-kv/pkg/gossip"
	"github.com/anthanhphan/go-dynamo-kv/pkg/resilience"
	"github.com/anthanhphan/gosdk/logger"
)

type App struct {
	cfg            *config.Config
	cluster        *cluster
	grpcServer     *grpc.Server
	httpServer     *httpHandler.Server
	store          port.BlobStore
	client         *peer.ClientAdapter
	pool           *resilience.WorkerPool
	poller         *service.HealthPoller
	gossip         *gossip.LivenessDetector
	backgroundStop context.CancelFunc
}

// Overrides replace config values from the command line.
type Overrides struct {
	// Nodes is a comma separated "<number>_<address>" list.
	Nodes       string
	SelfAddress string
}

func New(configPath string, overrides Overrides) (*App, error) {
	// 1. Load Config
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if overrides.Nodes != "" {
		cfg.Cluster.Nodes = config.ParseNodeList(overrides.Nodes)
	}
	if overrides.SelfAddress != "" {
		cfg.Cluster.SelfAddress = overrides.SelfAddress
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// 2. Initialize Logger
	logger.InitLogger(&cfg.Logger)

	// 3. Quorum and ring
	cl, err := buildCluster(cfg.Cluster)
	if err != nil {
		return nil, fmt.Errorf("failed to build ring: %w", err)
	}

	// 4. Storage
	store, err := newBlobStore(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	// 5. Metrics, peer client, worker pool
	m := metrics.New(nil)
	client := peer.NewClientAdapter(cl.quorum.Replicas(), m)
	pool := resilience.NewWorkerPool("replica-fanout", cfg.Cluster.Workers, cfg.Cluster.QueueSize)
	liveness := service.NewLivenessTracker(m)

	// 6. Coordinator and replica service
	svc, err := service.NewNodeService(service.Options{
		Ring:            cl.ring,
		Quorum:          cl.quorum,
		Store:           store,
		Peers:           client,
		Pool:            pool,
		Metrics:         m,
		Liveness:        liveness,
		QuorumTimeout:   cfg.Cluster.QuorumTimeout(),
		RPCTimeout:      cfg.Cluster.RPCTimeout(),
		RepairTimeout:   cfg.Cluster.RepairTimeout(),
		RejectConflicts: cfg.Cluster.RejectConflicts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init node service: %w", err)
	}

	// 7. gRPC server for peers
	grpcServer := grpc.NewServer(
		grpc.MaxRecvMsgSize(peerv1.MaxMessageSize),
		grpc.MaxSendMsgSize(peerv1.MaxMessageSize),
	)
	grpcHandler.NewServer(svc, cl.quorum.Replicas()).Register(grpcServer)

	// 8. HTTP server for clients
	httpServer := httpHandler.NewServer(cfg, svc, m.Handler())

	a := &App{
		cfg:        cfg,
		cluster:    cl,
		grpcServer: grpcServer,
		httpServer: httpServer,
		store:      store,
		client:     client,
		pool:       pool,
		poller:     service.NewHealthPoller(cl.ring, client, liveness, cfg.Cluster.HealthInterval(), cfg.Cluster.HealthTimeout()),
	}

	// 9. Optional gossip liveness
	if cfg.Gossip.Enabled {
		detector, err := gossip.NewLivenessDetector(gossip.Options{
			Name:        fmt.Sprintf("node-%d", cl.self.Number),
			BindAddr:    cfg.Gossip.Hostname,
			BindPort:    cfg.Gossip.Port,
			PeerAddress: cl.self.Address,
			Number:      cl.self.Number,
			Known:       cl.addresses(),
		}, liveness)
		if err != nil {
			return nil, fmt.Errorf("failed to init gossip: %w", err)
		}
		a.gossip = detector
	}

	return a, nil
}

func newBlobStore(cfg config.StorageConfig) (port.BlobStore, error) {
	switch cfg.Driver {
	case config.StorageDriverRedis:
		return redisstore.NewStore(redisstore.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	default:
		return disk.NewStore(cfg.DataDir)
	}
}

func (a *App) Run() error {
	if a.gossip != nil {
		seeds := make([]string, 0, len(a.cfg.Gossip.Seeds))
		for _, seed := range a.cfg.Gossip.Seeds {
			if seed != "" {
				seeds = append(seeds, seed)
			}
		}
		if err := a.gossip.Join(seeds); err != nil {
			logger.Warnw("Failed to join gossip cluster, relying on health polls", "error", err.Error())
		}
	}

	listener, err := net.Listen("tcp", a.cfg.GRPCListenAddr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.cfg.GRPCListenAddr(), err)
	}

	logger.Infow("Node starting",
		"address", a.cluster.self.Address,
		"number", a.cluster.self.Number,
		"replicas", a.cluster.quorum.Replicas(),
		"quorum", a.cluster.quorum.WriteQuorum(),
		"nodes", len(a.cluster.nodes),
		"grpc", a.cfg.GRPCListenAddr(),
		"http", a.cfg.Server.HTTPAddr,
		"storage", a.cfg.Storage.Driver)

	serverErrCh := make(chan error, 2)
	go func() {
		if err := a.grpcServer.Serve(listener); err != nil {
			serverErrCh <- fmt.Errorf("gRPC server failed: %w", err)
		}
	}()
	go func() {
		if err := a.httpServer.Start(); err != nil {
			serverErrCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	bgCtx, cancel := context.WithCancel(context.Background())
	a.backgroundStop = cancel
	go a.poller.Run(bgCtx)

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case sig := <-stop:
		logger.Infow("Shutdown signal received", "signal", sig.String())
	case err := <-serverErrCh:
		// Ignore expected stop errors.
		errMsg := err.Error()
		if !strings.Contains(errMsg, "use of closed network connection") && !errors.Is(err, grpc.ErrServerStopped) {
			runErr = err
			logger.Errorw("Server exited unexpectedly", "error", errMsg)
		}
	}

	a.shutdown()
	return runErr
}

func (a *App) shutdown() {
	logger.Info("Shutting down node")
	if a.backgroundStop != nil {
		a.backgroundStop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpServer.Stop(ctx); err != nil {
		logger.Warnw("HTTP server shutdown failed", "error", err.Error())
	}
	a.grpcServer.GracefulStop()

	if a.gossip != nil {
		if err := a.gossip.Leave(); err != nil {
			logger.Warnw("Gossip leave failed", "error", err.Error())
		}
	}

	// Let in-flight fan-outs and read repairs finish before closing their dependencies.
	a.pool.Close()
	a.pool.Wait()

	if err := a.client.Close(); err != nil {
		logger.Warnw("Peer client close failed", "error", err.Error())
	}
	if err := a.store.Close(); err != nil {
		logger.Warnw("Storage close failed", "error", err.Error())
	}
}
