package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Cluster.SelfAddress = "127.0.0.1:9002"
	cfg.Cluster.Nodes = []string{"0_127.0.0.1:9001", "1_127.0.0.1:9002", "2_127.0.0.1:9003"}
	cfg.Cluster.Replicas = 3
	return cfg
}

func TestParseNodeSpec(t *testing.T) {
	node, err := ParseNodeSpec(" 2_10.0.0.3:9001 ")
	require.NoError(t, err)
	assert.Equal(t, 2, node.Number)
	assert.Equal(t, "10.0.0.3:9001", node.Address)

	for _, bad := range []string{"", "10.0.0.3:9001", "x_10.0.0.3:9001", "-1_host:1", "3_"} {
		_, err := ParseNodeSpec(bad)
		assert.ErrorIs(t, err, ErrInvalidNodeSpec, bad)
	}
}

func TestParseNodeList(t *testing.T) {
	assert.Equal(t, []string{"0_a:1", "1_b:2"}, ParseNodeList(" 0_a:1, ,1_b:2,"))
	assert.Nil(t, ParseNodeList(""))
}

func TestPhysicalNodes_MarksSelf(t *testing.T) {
	cfg := validConfig()
	nodes, err := cfg.Cluster.PhysicalNodes()
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.False(t, nodes[0].Self)
	assert.True(t, nodes[1].Self)
	assert.False(t, nodes[2].Self)
}

func TestPhysicalNodes_Rejects(t *testing.T) {
	cfg := validConfig()
	cfg.Cluster.Nodes = append(cfg.Cluster.Nodes, "1_127.0.0.1:9004")
	_, err := cfg.Cluster.PhysicalNodes()
	assert.ErrorIs(t, err, ErrInvalidNodeSpec)

	cfg = validConfig()
	cfg.Cluster.Nodes = append(cfg.Cluster.Nodes, "3_127.0.0.1:9001")
	_, err = cfg.Cluster.PhysicalNodes()
	assert.ErrorIs(t, err, ErrInvalidNodeSpec)

	cfg = validConfig()
	cfg.Cluster.SelfAddress = "127.0.0.1:9999"
	_, err = cfg.Cluster.PhysicalNodes()
	assert.ErrorIs(t, err, ErrInvalidNodeSpec)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
	assert.NoError(t, DefaultConfig().Validate())

	cfg := validConfig()
	cfg.Cluster.Replicas = 4
	assert.ErrorContains(t, cfg.Validate(), "exceeds node count")

	cfg = validConfig()
	cfg.Cluster.Replicas = 0
	assert.ErrorContains(t, cfg.Validate(), "cluster.replicas must be >= 1")

	cfg = validConfig()
	cfg.Storage.Driver = "s3"
	assert.ErrorContains(t, cfg.Validate(), `unknown storage.driver "s3"`)

	cfg = validConfig()
	cfg.Storage.Driver = StorageDriverRedis
	cfg.Storage.Redis.Addr = ""
	assert.ErrorContains(t, cfg.Validate(), "storage.redis.addr")
}

func TestDurationsAndAddrs(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, 10*time.Second, cfg.Cluster.QuorumTimeout())
	assert.Equal(t, 30*time.Second, cfg.Cluster.HealthInterval())
	assert.Equal(t, "127.0.0.1:9002", cfg.GRPCListenAddr())

	cfg.Server.GRPCAddr = ":9100"
	assert.Equal(t, ":9100", cfg.GRPCListenAddr())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "node.yaml")
	content := `
server:
  http_addr: ":8181"
cluster:
  self_address: "127.0.0.1:9001"
  nodes: ["0_127.0.0.1:9001", "1_127.0.0.1:9002"]
  replicas: 2
  reject_conflicts: true
storage:
  driver: "disk"
  data_dir: "` + dir + `"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8181", cfg.Server.HTTPAddr)
	assert.Equal(t, 2, cfg.Cluster.Replicas)
	assert.True(t, cfg.Cluster.RejectConflicts)
	assert.Len(t, cfg.Cluster.Nodes, 2)
	assert.NoError(t, cfg.Validate())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
