package service

import (
	"github.com/anthanhphan/go-dynamo-kv/internal/node/domain"
	"github.com/anthanhphan/go-dynamo-kv/pkg/vclock"
)

// laggingReplica is a replica whose version is strictly older than source.
type laggingReplica struct {
	replica domain.ReplicaObject
	source  domain.ReplicaObject
}

type reconciliation struct {
	// winners are the distinct versions no other response dominates, in input order.
	winners []domain.ReplicaObject
	lagging []laggingReplica
	found   bool
}

func (r reconciliation) conflict() bool {
	return len(r.winners) > 1
}

// reconcile compares every pair of responses. Input must be ordered by node number so the
// first dominating winner is deterministic.
func reconcile(results []domain.ReplicaObject) reconciliation {
	var rec reconciliation

	for i, candidate := range results {
		if candidate.Found {
			rec.found = true
		}
		if dominatedBy(results, i) {
			continue
		}

		duplicate := false
		for w, existing := range rec.winners {
			if existing.Object.Clock.Compare(candidate.Object.Clock) != vclock.Equal {
				continue
			}
			duplicate = true
			if candidate.Found && !existing.Found {
				rec.winners[w] = candidate
			}
			break
		}
		if !duplicate {
			rec.winners = append(rec.winners, candidate)
		}
	}

	for _, r := range results {
		for _, w := range rec.winners {
			if w.Object.Clock.Dominates(r.Object.Clock) {
				rec.lagging = append(rec.lagging, laggingReplica{replica: r, source: w})
				break
			}
		}
	}

	return rec
}

func dominatedBy(results []domain.ReplicaObject, i int) bool {
	for j, other := range results {
		if j != i && other.Object.Clock.Dominates(results[i].Object.Clock) {
			return true
		}
	}
	return false
}
