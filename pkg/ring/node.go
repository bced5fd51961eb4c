package ring

import (
	"fmt"
	"strings"
)

// PhysicalNode represents one cluster member.
type PhysicalNode struct {
	Address string `json:"address"`
	// Number is the stable ordinal of the node in the static configuration.
	Number int  `json:"number"`
	Self   bool `json:"self"`
}

func (n PhysicalNode) String() string {
	if n.Self {
		return fmt.Sprintf("%d@%s[self]", n.Number, n.Address)
	}
	return fmt.Sprintf("%d@%s", n.Number, n.Address)
}

// VirtualNode is one placement token of a physical node on the ring.
// It points to its owner by address.
type VirtualNode struct {
	Digest     string
	Owner      string
	ReplicaSeq int
}

// Label is the string hashed to place the virtual node: "<owner address>-<seq>".
func (v VirtualNode) Label() string {
	return virtualLabel(v.Owner, v.ReplicaSeq)
}

func virtualLabel(owner string, seq int) string {
	return fmt.Sprintf("%s-%d", owner, seq)
}

// FolderFor derives the storage folder of a node from its address.
func FolderFor(address string) string {
	return strings.NewReplacer(".", "_", ":", "_", "/", "_").Replace(address)
}
