package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/anthanhphan/gosdk/conflux"
	"github.com/anthanhphan/gosdk/logger"
)

const (
	StorageDriverDisk  = "disk"
	StorageDriverRedis = "redis"
)

// Config holds node configuration
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	Cluster ClusterConfig `json:"cluster" yaml:"cluster"`
	Storage StorageConfig `json:"storage" yaml:"storage"`
	Gossip  GossipConfig  `json:"gossip" yaml:"gossip"`
	Logger  logger.Config `json:"logger" yaml:"logger"`
}

type ServerConfig struct {
	// HTTPAddr serves the client API, health and metrics.
	HTTPAddr string `json:"http_addr" yaml:"http_addr"`
	// GRPCAddr is the peer listener. Defaults to the self address.
	GRPCAddr      string `json:"grpc_addr" yaml:"grpc_addr"`
	MaxObjectSize int    `json:"max_object_size" yaml:"max_object_size"`
}

type ClusterConfig struct {
	// SelfAddress must match one entry of Nodes.
	SelfAddress string `json:"self_address" yaml:"self_address"`
	// Nodes lists every member as "<number>_<address>".
	Nodes            []string `json:"nodes" yaml:"nodes"`
	Replicas         int      `json:"replicas" yaml:"replicas"`
	VNodesPerNode    int      `json:"vnodes_per_node" yaml:"vnodes_per_node"`
	QuorumTimeoutMS  int      `json:"quorum_timeout_ms" yaml:"quorum_timeout_ms"`
	RPCTimeoutMS     int      `json:"rpc_timeout_ms" yaml:"rpc_timeout_ms"`
	RepairTimeoutMS  int      `json:"repair_timeout_ms" yaml:"repair_timeout_ms"`
	HealthIntervalMS int      `json:"health_interval_ms" yaml:"health_interval_ms"`
	HealthTimeoutMS  int      `json:"health_timeout_ms" yaml:"health_timeout_ms"`
	RejectConflicts  bool     `json:"reject_conflicts" yaml:"reject_conflicts"`
	Workers          int      `json:"workers" yaml:"workers"`
	QueueSize        int      `json:"queue_size" yaml:"queue_size"`
}

type StorageConfig struct {
	Driver  string      `json:"driver" yaml:"driver"`
	DataDir string      `json:"data_dir" yaml:"data_dir"`
	Redis   RedisConfig `json:"redis" yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
	Prefix   string `json:"prefix" yaml:"prefix"`
}

// GossipConfig enables memberlist as an extra liveness signal. It never changes membership.
type GossipConfig struct {
	Enabled  bool     `json:"enabled" yaml:"enabled"`
	Hostname string   `json:"hostname" yaml:"hostname"`
	Port     int      `json:"port" yaml:"port"`
	Seeds    []string `json:"seeds" yaml:"seeds"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:      ":8080",
			MaxObjectSize: 16 * 1024 * 1024,
		},
		Cluster: ClusterConfig{
			SelfAddress:      "127.0.0.1:9001",
			Nodes:            []string{"0_127.0.0.1:9001"},
			Replicas:         1,
			VNodesPerNode:    100,
			QuorumTimeoutMS:  10000,
			RepairTimeoutMS:  5000,
			HealthIntervalMS: 30000,
			HealthTimeoutMS:  30000,
			Workers:          32,
			QueueSize:        256,
		},
		Storage: StorageConfig{
			Driver:  StorageDriverDisk,
			DataDir: "./data",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "kv",
			},
		},
		Gossip: GossipConfig{
			Hostname: "127.0.0.1",
			Port:     7946,
		},
		Logger: logger.Config{
			LogLevel:    logger.LevelInfo,
			LogEncoding: logger.EncodingJSON,
		},
	}
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	configPath := path
	if configPath == "" {
		env := os.Getenv("ENV")
		if env == "" {
			env = "local"
		}
		configPath = filepath.Join("internal", "node", "config", env+".yaml")
	}

	cfg := DefaultConfig()

	parsedCfg, err := conflux.ParseConfig(configPath, cfg)
	if err != nil {
		log.Printf("Config file not found or failed to parse, using defaults if file not specified. Path: %s, Error: %v", configPath, err)
		if path != "" {
			return nil, err
		}
		return cfg, nil
	}

	return parsedCfg, nil
}

// Validate checks everything the node needs before it builds its ring.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.HTTPAddr == "" {
		errs = append(errs, errors.New("server.http_addr is required"))
	}
	if c.Cluster.SelfAddress == "" {
		errs = append(errs, errors.New("cluster.self_address is required"))
	}
	if len(c.Cluster.Nodes) == 0 {
		errs = append(errs, errors.New("cluster.nodes must list at least one node"))
	}
	if c.Cluster.Replicas < 1 {
		errs = append(errs, fmt.Errorf("cluster.replicas must be >= 1, got %d", c.Cluster.Replicas))
	}
	if c.Cluster.Replicas > len(c.Cluster.Nodes) {
		errs = append(errs, fmt.Errorf("cluster.replicas (%d) exceeds node count (%d)", c.Cluster.Replicas, len(c.Cluster.Nodes)))
	}
	if c.Cluster.QuorumTimeoutMS <= 0 {
		errs = append(errs, errors.New("cluster.quorum_timeout_ms must be positive"))
	}

	switch c.Storage.Driver {
	case StorageDriverDisk:
		if c.Storage.DataDir == "" {
			errs = append(errs, errors.New("storage.data_dir is required for the disk driver"))
		}
	case StorageDriverRedis:
		if c.Storage.Redis.Addr == "" {
			errs = append(errs, errors.New("storage.redis.addr is required for the redis driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}

	if c.Gossip.Enabled && c.Gossip.Port <= 0 {
		errs = append(errs, errors.New("gossip.port must be set when gossip is enabled"))
	}

	if _, err := c.Cluster.PhysicalNodes(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// GRPCListenAddr is where the peer server listens.
func (c *Config) GRPCListenAddr() string {
	if c.Server.GRPCAddr != "" {
		return c.Server.GRPCAddr
	}
	return c.Cluster.SelfAddress
}

func (c *ClusterConfig) QuorumTimeout() time.Duration {
	return time.Duration(c.QuorumTimeoutMS) * time.Millisecond
}

func (c *ClusterConfig) RPCTimeout() time.Duration {
	return time.Duration(c.RPCTimeoutMS) * time.Millisecond
}

func (c *ClusterConfig) RepairTimeout() time.Duration {
	return time.Duration(c.RepairTimeoutMS) * time.Millisecond
}

func (c *ClusterConfig) HealthInterval() time.Duration {
	return time.Duration(c.HealthIntervalMS) * time.Millisecond
}

func (c *ClusterConfig) HealthTimeout() time.Duration {
	return time.Duration(c.HealthTimeoutMS) * time.Millisecond
}
