package service

import (
	"context"
	"sync"
	"time"

	"github.com/anthanhphan/go-dynamo-kv/internal/node/metrics"
	"github.com/anthanhphan/go-dynamo-kv/internal/node/port"
	"github.com/anthanhphan/go-dynamo-kv/pkg/ring"
	"github.com/anthanhphan/gosdk/logger"
)

const (
	DefaultHealthInterval = 30 * time.Second
	DefaultHealthTimeout  = 30 * time.Second
)

type peerLiveness struct {
	alive  bool
	reason string
	since  time.Time
}

// LivenessTracker records the last known state of each peer. It is informational only:
// routing always follows the ring.
type LivenessTracker struct {
	mu      sync.RWMutex
	peers   map[string]peerLiveness
	metrics *metrics.Metrics
}

func NewLivenessTracker(m *metrics.Metrics) *LivenessTracker {
	return &LivenessTracker{
		peers:   make(map[string]peerLiveness),
		metrics: m,
	}
}

// Observe records a liveness signal and logs transitions.
func (t *LivenessTracker) Observe(address string, alive bool, reason string) {
	t.mu.Lock()
	prev, known := t.peers[address]
	changed := !known || prev.alive != alive
	state := prev
	if changed {
		state = peerLiveness{alive: alive, since: time.Now()}
	}
	state.reason = reason
	t.peers[address] = state
	t.mu.Unlock()

	t.metrics.SetPeerUp(address, alive)
	if !changed {
		return
	}
	if alive {
		logger.Infow("Peer is up", "peer", address, "reason", reason)
	} else {
		logger.Warnw("Peer is down", "peer", address, "reason", reason)
	}
}

// Status returns the last observation. Peers never observed are reported down.
func (t *LivenessTracker) Status(address string) (bool, string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	state, ok := t.peers[address]
	if !ok {
		return false, "not yet polled"
	}
	return state.alive, state.reason
}

// HealthPoller periodically calls Health on every other ring member.
type HealthPoller struct {
	ring     *ring.Ring
	peers    port.PeerClient
	tracker  *LivenessTracker
	interval time.Duration
	timeout  time.Duration
}

func NewHealthPoller(r *ring.Ring, peers port.PeerClient, tracker *LivenessTracker, interval, timeout time.Duration) *HealthPoller {
	if interval <= 0 {
		interval = DefaultHealthInterval
	}
	if timeout <= 0 {
		timeout = DefaultHealthTimeout
	}
	return &HealthPoller{
		ring:     r,
		peers:    peers,
		tracker:  tracker,
		interval: interval,
		timeout:  timeout,
	}
}

// Run polls until ctx is done.
func (p *HealthPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.PollOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.PollOnce(ctx)
		}
	}
}

// PollOnce polls every peer concurrently and waits for all of them.
func (p *HealthPoller) PollOnce(ctx context.Context) {
	self, _ := p.ring.Self()

	var wg sync.WaitGroup
	for _, node := range p.ring.AllNodes() {
		if node.Address == self.Address {
			continue
		}
		wg.Add(1)
		go func(addr string) {
			defer wg.Done()
			pollCtx, cancel := context.WithTimeout(ctx, p.timeout)
			defer cancel()

			health, err := p.peers.Health(pollCtx, addr)
			switch {
			case err != nil:
				p.tracker.Observe(addr, false, err.Error())
			case !health.RingReady:
				p.tracker.Observe(addr, false, "ring not ready")
			default:
				p.tracker.Observe(addr, true, "health check ok")
			}
		}(node.Address)
	}
	wg.Wait()
}
