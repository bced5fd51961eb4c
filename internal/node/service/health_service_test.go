package service

import (
	"context"
	"errors"
	"testing"

	"github.com/anthanhphan/go-dynamo-kv/internal/node/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestLivenessTracker(t *testing.T) {
	tracker := NewLivenessTracker(nil)

	alive, reason := tracker.Status("127.0.0.1:9002")
	assert.False(t, alive)
	assert.Equal(t, "not yet polled", reason)

	tracker.Observe("127.0.0.1:9002", true, "health check ok")
	alive, _ = tracker.Status("127.0.0.1:9002")
	assert.True(t, alive)

	tracker.Observe("127.0.0.1:9002", false, "connection refused")
	alive, reason = tracker.Status("127.0.0.1:9002")
	assert.False(t, alive)
	assert.Equal(t, "connection refused", reason)
}

func TestHealthPoller_PollOnce(t *testing.T) {
	h := threeNodeHarness(t, nil)

	h.peers.EXPECT().Health(gomock.Any(), h.nodes[1].Address).
		Return(domain.NodeHealth{Address: h.nodes[1].Address, Number: 1, RingReady: true}, nil)
	h.peers.EXPECT().Health(gomock.Any(), h.nodes[2].Address).
		Return(domain.NodeHealth{}, errors.New("connection refused"))

	poller := NewHealthPoller(h.ring, h.peers, h.svc.Liveness(), 0, 0)
	poller.PollOnce(context.Background())

	members := h.svc.Members(context.Background())
	require.Len(t, members, 3)
	assert.True(t, members[0].Alive)
	assert.Equal(t, "self", members[0].Reason)
	assert.True(t, members[1].Alive)
	assert.False(t, members[2].Alive)
	assert.Equal(t, "connection refused", members[2].Reason)
}

func TestHealth_ReportsSelf(t *testing.T) {
	h := newHarness(t, harnessConfig{nodes: 3, replicas: 2, self: 2, vnodes: 4})

	health := h.svc.Health(context.Background())
	assert.Equal(t, h.nodes[2].Address, health.Address)
	assert.Equal(t, 2, health.Number)
	assert.True(t, health.RingReady)
}
