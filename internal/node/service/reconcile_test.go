package service

import (
	"testing"

	"github.com/anthanhphan/go-dynamo-kv/internal/node/domain"
	"github.com/anthanhphan/go-dynamo-kv/pkg/ring"
	"github.com/anthanhphan/go-dynamo-kv/pkg/vclock"
	"github.com/stretchr/testify/assert"
)

func replicaAt(number int, found bool, clock vclock.VectorClock) domain.ReplicaObject {
	return domain.ReplicaObject{
		Node:   ring.PhysicalNode{Address: string(rune('a' + number)), Number: number},
		Found:  found,
		Object: domain.StoredObject{Key: "k", Clock: clock},
	}
}

func winnerNumbers(rec reconciliation) []int {
	out := make([]int, 0, len(rec.winners))
	for _, w := range rec.winners {
		out = append(out, w.Node.Number)
	}
	return out
}

func laggingPairs(rec reconciliation) map[int]int {
	out := make(map[int]int, len(rec.lagging))
	for _, l := range rec.lagging {
		out[l.replica.Node.Number] = l.source.Node.Number
	}
	return out
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name     string
		results  []domain.ReplicaObject
		winners  []int
		lagging  map[int]int
		conflict bool
		found    bool
	}{
		{
			name: "all equal",
			results: []domain.ReplicaObject{
				replicaAt(0, true, vclock.VectorClock{1, 0, 0}),
				replicaAt(1, true, vclock.VectorClock{1, 0, 0}),
			},
			winners: []int{0},
			lagging: map[int]int{},
			found:   true,
		},
		{
			name: "one behind",
			results: []domain.ReplicaObject{
				replicaAt(0, true, vclock.VectorClock{2, 0, 0}),
				replicaAt(1, true, vclock.VectorClock{1, 0, 0}),
				replicaAt(2, true, vclock.VectorClock{2, 0, 0}),
			},
			winners: []int{0},
			lagging: map[int]int{1: 0},
			found:   true,
		},
		{
			name: "missing replica is lagging",
			results: []domain.ReplicaObject{
				replicaAt(0, false, vclock.VectorClock{0, 0, 0}),
				replicaAt(1, true, vclock.VectorClock{0, 1, 0}),
			},
			winners: []int{1},
			lagging: map[int]int{0: 1},
			found:   true,
		},
		{
			name: "concurrent",
			results: []domain.ReplicaObject{
				replicaAt(0, true, vclock.VectorClock{1, 0, 0}),
				replicaAt(1, true, vclock.VectorClock{0, 1, 0}),
			},
			winners:  []int{0, 1},
			lagging:  map[int]int{},
			conflict: true,
			found:    true,
		},
		{
			name: "concurrent winners and a lagging replica behind both",
			results: []domain.ReplicaObject{
				replicaAt(0, true, vclock.VectorClock{1, 0, 0}),
				replicaAt(1, true, vclock.VectorClock{1, 1, 0}),
				replicaAt(2, true, vclock.VectorClock{1, 0, 1}),
			},
			winners:  []int{1, 2},
			lagging:  map[int]int{0: 1},
			conflict: true,
			found:    true,
		},
		{
			name: "nothing stored",
			results: []domain.ReplicaObject{
				replicaAt(0, false, vclock.VectorClock{0, 0}),
				replicaAt(1, false, vclock.VectorClock{0, 0}),
			},
			winners: []int{0},
			lagging: map[int]int{},
		},
		{
			name: "found preferred among equal zero clocks",
			results: []domain.ReplicaObject{
				replicaAt(0, false, vclock.VectorClock{0, 0}),
				replicaAt(1, true, vclock.VectorClock{0, 0}),
			},
			winners: []int{1},
			lagging: map[int]int{},
			found:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := reconcile(tt.results)
			assert.Equal(t, tt.winners, winnerNumbers(rec))
			assert.Equal(t, tt.lagging, laggingPairs(rec))
			assert.Equal(t, tt.conflict, rec.conflict())
			assert.Equal(t, tt.found, rec.found)
		})
	}
}
