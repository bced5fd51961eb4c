package quorum

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	_, err := New(0, 3)
	assert.True(t, errors.Is(err, ErrInvalidReplicas))

	_, err = New(4, 3)
	assert.True(t, errors.Is(err, ErrTooFewNodes))

	cfg, err := New(3, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Replicas())
}

func TestQuorumMath(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5} {
		cfg, err := New(n, 5)
		require.NoError(t, err)
		assert.Equal(t, n-1, cfg.ReadQuorum())
		assert.Equal(t, n-1, cfg.WriteQuorum())
	}
}

func TestSetReplicas_WriteOnce(t *testing.T) {
	cfg, err := New(3, 3)
	require.NoError(t, err)

	assert.False(t, cfg.SetReplicas(5))
	assert.Equal(t, 3, cfg.Replicas())

	var fresh Config
	assert.True(t, fresh.SetReplicas(2))
	assert.False(t, fresh.SetReplicas(4))
	assert.Equal(t, 2, fresh.Replicas())
}

func TestPeerAcks(t *testing.T) {
	cfg, err := New(3, 3)
	require.NoError(t, err)

	assert.Equal(t, 1, PeerAcks(cfg.WriteQuorum(), true))
	assert.Equal(t, 2, PeerAcks(cfg.WriteQuorum(), false))

	single, err := New(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, PeerAcks(single.ReadQuorum(), true))
	assert.Equal(t, 0, PeerAcks(single.ReadQuorum(), false))
}
