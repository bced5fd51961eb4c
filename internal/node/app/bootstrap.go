package app

import (
	"fmt"

	"github.com/anthanhphan/go-dynamo-kv/internal/node/config"
	"github.com/anthanhphan/go-dynamo-kv/pkg/quorum"
	"github.com/anthanhphan/go-dynamo-kv/pkg/ring"
)

// cluster is the static membership a node serves with.
type cluster struct {
	quorum *quorum.Config
	ring   *ring.Ring
	self   ring.PhysicalNode
	nodes  []ring.PhysicalNode
}

// buildCluster seals N and places every configured node on the ring. Any error is fatal.
func buildCluster(cfg config.ClusterConfig) (*cluster, error) {
	nodes, err := cfg.PhysicalNodes()
	if err != nil {
		return nil, err
	}

	q, err := quorum.New(cfg.Replicas, len(nodes))
	if err != nil {
		return nil, err
	}

	r := ring.NewRing(ring.Murmur3Hash{}, q, cfg.VNodesPerNode)
	var self ring.PhysicalNode
	for _, n := range nodes {
		if err := r.AddNode(n); err != nil {
			return nil, fmt.Errorf("failed to add node %s: %w", n, err)
		}
		if n.Self {
			self = n
		}
	}

	return &cluster{quorum: q, ring: r, self: self, nodes: nodes}, nil
}

func (c *cluster) addresses() []string {
	out := make([]string, 0, len(c.nodes))
	for _, n := range c.nodes {
		out = append(out, n.Address)
	}
	return out
}
