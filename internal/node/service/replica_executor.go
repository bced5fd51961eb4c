package service

import (
	"context"
	"fmt"
	"time"

	"github.com/anthanhphan/go-dynamo-kv/internal/node/port"
	"github.com/anthanhphan/go-dynamo-kv/pkg/quorum"
	"github.com/anthanhphan/go-dynamo-kv/pkg/ring"
	"github.com/anthanhphan/gosdk/logger"
)

type peerReply[T any] struct {
	node  ring.PhysicalNode
	value T
	err   error
}

type peerCall[T any] func(context.Context, ring.PhysicalNode) (T, error)

// gatherQuorum runs call against every peer on the worker pool and returns once enough peers
// succeeded to reach quorum q together with localAcks. Replies that already arrived by then are
// returned too. Calls keep running after the caller gives up; their results are dropped.
func gatherQuorum[T any](
	ctx context.Context,
	s *NodeServiceImpl,
	op port.Operation,
	key string,
	peers []ring.PhysicalNode,
	q int,
	localAcks int,
	call peerCall[T],
) ([]peerReply[T], error) {
	required := quorum.PeerAcks(q, localAcks > 0)
	replies := make([]peerReply[T], 0, len(peers))

	notMet := func(reason string) error {
		s.metrics.QuorumFailed(string(op))
		return &port.QuorumNotMetError{
			Operation: op,
			Key:       key,
			Acks:      localAcks + len(replies),
			Required:  q,
			Replicas:  localAcks + len(peers),
			Reason:    reason,
		}
	}

	if required > len(peers) {
		return replies, notMet("not enough replicas in preference list")
	}

	waitCtx, cancel := context.WithDeadline(ctx, time.Now().Add(s.quorumTimeout))
	defer cancel()

	// Buffered for every peer so late replies never block a worker.
	results := make(chan peerReply[T], len(peers))
	for _, peer := range peers {
		node := peer
		task := func() {
			callCtx, cancelCall := context.WithTimeout(context.WithoutCancel(ctx), s.rpcTimeout)
			defer cancelCall()

			value, err := call(callCtx, node)
			if err != nil {
				s.metrics.PeerCallFailed(string(op), node.Address)
				logger.Warnw("Replica call failed", "operation", op, "key", key, "peer", node.Address, "error", err.Error())
			}
			results <- peerReply[T]{node: node, value: value, err: err}
		}
		if err := s.pool.Submit(waitCtx, task); err != nil {
			results <- peerReply[T]{node: node, err: fmt.Errorf("dispatch to %s: %w", node.Address, err)}
		}
	}

	failures := 0
	for len(replies) < required {
		select {
		case r := <-results:
			if r.err != nil {
				failures++
				if failures > len(peers)-required {
					return replies, notMet(fmt.Sprintf("%d of %d replicas failed, last error: %v", failures, len(peers), r.err))
				}
				continue
			}
			replies = append(replies, r)
		case <-waitCtx.Done():
			if err := ctx.Err(); err != nil {
				return replies, err
			}
			return replies, notMet(fmt.Sprintf("deadline of %s exceeded", s.quorumTimeout))
		}
	}

	for {
		select {
		case r := <-results:
			if r.err == nil {
				replies = append(replies, r)
			}
		default:
			return replies, nil
		}
	}
}
