package gossip

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/anthanhphan/gosdk/logger"
	"github.com/hashicorp/memberlist"
)

// LivenessRecorder receives up/down signals keyed by a member's peer address.
type LivenessRecorder interface {
	Observe(address string, alive bool, reason string)
}

// Options configures the local member.
type Options struct {
	// Name must be unique in the gossip cluster.
	Name     string
	BindAddr string
	BindPort int
	// PeerAddress is the RPC address other nodes know this node by.
	PeerAddress string
	Number      int
	// Known restricts signals to members of the static cluster.
	Known []string
}

// LivenessDetector gossips with the other nodes and reports their failure-detector view.
// It never adds or removes ring members.
type LivenessDetector struct {
	list     *memberlist.Memberlist
	recorder LivenessRecorder
	self     nodeMeta
	known    map[string]bool
}

type nodeMeta struct {
	PeerAddress string `json:"peer_address"`
	Number      int    `json:"number"`
}

// Ensure LivenessDetector implements the memberlist hooks it registers.
var (
	_ memberlist.Delegate      = (*LivenessDetector)(nil)
	_ memberlist.EventDelegate = (*LivenessDetector)(nil)
)

// NewLivenessDetector creates the memberlist instance. Call Join to contact seeds.
func NewLivenessDetector(opts Options, recorder LivenessRecorder) (*LivenessDetector, error) {
	d := newDetector(opts, recorder)

	config := memberlist.DefaultLANConfig()
	config.Name = opts.Name
	config.BindAddr = opts.BindAddr
	config.BindPort = opts.BindPort
	config.AdvertisePort = opts.BindPort
	config.LogOutput = io.Discard
	config.Events = d
	config.Delegate = d

	list, err := memberlist.Create(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create memberlist: %w", err)
	}
	d.list = list
	return d, nil
}

func newDetector(opts Options, recorder LivenessRecorder) *LivenessDetector {
	known := make(map[string]bool, len(opts.Known))
	for _, addr := range opts.Known {
		known[addr] = true
	}
	return &LivenessDetector{
		recorder: recorder,
		self:     nodeMeta{PeerAddress: opts.PeerAddress, Number: opts.Number},
		known:    known,
	}
}

// Join contacts the seeds.
func (d *LivenessDetector) Join(seeds []string) error {
	if len(seeds) > 0 {
		if _, err := d.list.Join(seeds); err != nil {
			return fmt.Errorf("failed to join cluster: %w", err)
		}
	}
	return nil
}

// Leave leaves the gossip cluster and shuts down.
func (d *LivenessDetector) Leave() error {
	if err := d.list.Leave(5 * time.Second); err != nil {
		return err
	}
	return d.list.Shutdown()
}

// NodeMeta advertises the peer address so others can map gossip members to ring nodes.
func (d *LivenessDetector) NodeMeta(limit int) []byte {
	data, err := json.Marshal(d.self)
	if err != nil {
		logger.Warnw("failed to marshal gossip node meta", "error", err.Error())
		return nil
	}
	if len(data) > limit {
		logger.Warnw("gossip node meta exceeds limit", "size", len(data), "limit", limit)
		return nil
	}
	return data
}

// NotifyMsg, GetBroadcasts, LocalState, MergeRemoteState are not used here but required by Delegate
func (d *LivenessDetector) NotifyMsg([]byte)                           {}
func (d *LivenessDetector) GetBroadcasts(overhead, limit int) [][]byte { return nil }
func (d *LivenessDetector) LocalState(join bool) []byte                { return nil }
func (d *LivenessDetector) MergeRemoteState(buf []byte, join bool)     {}

// NotifyJoin is invoked when a node joins.
func (d *LivenessDetector) NotifyJoin(node *memberlist.Node) {
	d.observe(node, true, "gossip join")
}

// NotifyLeave is invoked when a node leaves or is declared dead.
func (d *LivenessDetector) NotifyLeave(node *memberlist.Node) {
	d.observe(node, false, "gossip leave")
}

// NotifyUpdate is invoked when a node's metadata changes.
func (d *LivenessDetector) NotifyUpdate(node *memberlist.Node) {
	d.observe(node, true, "gossip update")
}

func (d *LivenessDetector) observe(node *memberlist.Node, alive bool, reason string) {
	meta, ok := decodeMeta(node.Meta)
	if !ok || meta.PeerAddress == d.self.PeerAddress {
		return
	}
	if len(d.known) > 0 && !d.known[meta.PeerAddress] {
		logger.Warnw("Ignoring gossip member outside the configured cluster", "name", node.Name, "peer", meta.PeerAddress)
		return
	}
	d.recorder.Observe(meta.PeerAddress, alive, reason)
}

func decodeMeta(meta []byte) (nodeMeta, bool) {
	if len(meta) == 0 {
		return nodeMeta{}, false
	}
	var m nodeMeta
	if err := json.Unmarshal(meta, &m); err != nil {
		logger.Warnw("failed to decode node metadata", "error", err.Error())
		return nodeMeta{}, false
	}
	return m, m.PeerAddress != ""
}
