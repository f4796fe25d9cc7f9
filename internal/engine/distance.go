package engine

import (
	"context"
	"fmt"
)

// Distance returns the shortest relationship path length between viewer and
// subject in accepted-edge hops: 0 for self, 1-3 for connected members, nil
// when subject is not reachable within MaxHops.
//
// The search is a bounded breadth-first search expanding one hop at a time.
// Each level is fetched with a single batched AcceptedNeighbors call, so the
// store cost is one round-trip per level rather than one per node. A visited
// set guarantees termination on dense or cyclic graphs.
//
// A store read failure aborts the search; no partial or stale result is
// returned.
func (e *Engine) Distance(ctx context.Context, viewer, subject int64) (*int, error) {
	if viewer == subject {
		return intPtr(0), nil
	}

	visited := map[int64]bool{viewer: true}
	frontier := []int64{viewer}

	for depth := 1; depth <= MaxHops; depth++ {
		neighbors, err := e.store.AcceptedNeighbors(ctx, frontier)
		if err != nil {
			return nil, fmt.Errorf("engine: distance search at hop %d: %w", depth, err)
		}

		var next []int64
		for _, ids := range neighbors {
			for _, id := range ids {
				if id == subject {
					return intPtr(depth), nil
				}
				if !visited[id] {
					visited[id] = true
					next = append(next, id)
				}
			}
		}

		if len(next) == 0 {
			break // graph exhausted before the cap
		}
		frontier = next
	}

	// Not reachable within MaxHops. Nodes beyond the cap are never
	// explored: completeness is traded for bounded cost.
	return nil, nil
}

func intPtr(v int) *int {
	return &v
}
