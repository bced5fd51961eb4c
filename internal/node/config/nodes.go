package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/anthanhphan/go-dynamo-kv/pkg/ring"
)

var ErrInvalidNodeSpec = errors.New("invalid node spec")

// ParseNodeSpec parses "<number>_<address>".
func ParseNodeSpec(spec string) (ring.PhysicalNode, error) {
	spec = strings.TrimSpace(spec)
	number, address, ok := strings.Cut(spec, "_")
	if !ok || address == "" {
		return ring.PhysicalNode{}, fmt.Errorf("%w: %q, want <number>_<address>", ErrInvalidNodeSpec, spec)
	}
	n, err := strconv.Atoi(number)
	if err != nil || n < 0 {
		return ring.PhysicalNode{}, fmt.Errorf("%w: %q has a bad node number", ErrInvalidNodeSpec, spec)
	}
	return ring.PhysicalNode{Address: address, Number: n}, nil
}

// ParseNodeList splits a comma separated list of node specs.
func ParseNodeList(list string) []string {
	var out []string
	for _, s := range strings.Split(list, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// PhysicalNodes parses Nodes and marks the self node. Numbers and addresses must be unique.
func (c *ClusterConfig) PhysicalNodes() ([]ring.PhysicalNode, error) {
	nodes := make([]ring.PhysicalNode, 0, len(c.Nodes))
	numbers := make(map[int]string, len(c.Nodes))
	addresses := make(map[string]bool, len(c.Nodes))
	selfFound := false

	for _, spec := range c.Nodes {
		node, err := ParseNodeSpec(spec)
		if err != nil {
			return nil, err
		}
		if other, dup := numbers[node.Number]; dup {
			return nil, fmt.Errorf("%w: number %d used by %s and %s", ErrInvalidNodeSpec, node.Number, other, node.Address)
		}
		if addresses[node.Address] {
			return nil, fmt.Errorf("%w: address %s listed twice", ErrInvalidNodeSpec, node.Address)
		}
		numbers[node.Number] = node.Address
		addresses[node.Address] = true

		if node.Address == c.SelfAddress {
			node.Self = true
			selfFound = true
		}
		nodes = append(nodes, node)
	}

	if !selfFound {
		return nil, fmt.Errorf("%w: self address %q is not in cluster.nodes", ErrInvalidNodeSpec, c.SelfAddress)
	}
	return nodes, nil
}
