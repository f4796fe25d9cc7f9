package engine

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/roamsocial/trustgraph/internal/storage"
	"github.com/roamsocial/trustgraph/pkg/types"
)

// Info computes the full connection summary for a (viewer, subject) pair:
// degree, closeness, mutual-friend count, shared-memory count, shared-event
// count, and the cached interaction counters from the edge row.
//
// The independent store reads run concurrently; any failure cancels the
// rest and surfaces as a single error. This is a pure read-side
// aggregation: repeated calls with no intervening writes return identical
// results.
func (e *Engine) Info(ctx context.Context, viewer, subject int64) (*types.ConnectionInfo, error) {
	info := &types.ConnectionInfo{}

	if viewer == subject {
		info.ConnectionDegree = intPtr(0)
		return info, nil
	}

	var (
		edge           *types.RelationshipEdge
		events         []*types.InteractionEvent
		viewerFriends  []int64
		subjectFriends []int64
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		degree, err := e.Distance(gctx, viewer, subject)
		if err != nil {
			return err
		}
		info.ConnectionDegree = degree
		return nil
	})

	g.Go(func() error {
		found, err := e.store.GetEdge(gctx, viewer, subject)
		if errors.Is(err, storage.ErrNotFound) {
			return nil // no edge: closeness and counters stay zero
		}
		if err != nil {
			return err
		}
		edge = found
		if edge.Status != types.EdgeAccepted {
			return nil
		}
		events, err = e.store.ListInteractions(gctx, edge.ID)
		return err
	})

	g.Go(func() error {
		var err error
		viewerFriends, err = e.store.AcceptedFriendIDs(gctx, viewer)
		return err
	})

	g.Go(func() error {
		var err error
		subjectFriends, err = e.store.AcceptedFriendIDs(gctx, subject)
		return err
	})

	g.Go(func() error {
		shared, err := e.store.SharedEventCount(gctx, viewer, subject)
		if err != nil {
			return err
		}
		info.SharedEvents = shared
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("engine: connection info for (%d, %d): %w", viewer, subject, err)
	}

	if edge != nil && edge.Status == types.EdgeAccepted {
		info.ClosenessScore, info.SharedMemories = e.scoreComponents(events, info.SharedEvents)
		info.InteractionCount = edge.InteractionCount
		info.LastInteraction = edge.LastInteractionAt
	}

	info.MutualFriends = intersectCount(viewerFriends, subjectFriends)
	return info, nil
}

// intersectCount returns the size of the intersection of two ID lists.
func intersectCount(a, b []int64) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[int64]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	count := 0
	for _, id := range b {
		if set[id] {
			count++
			set[id] = false // count each ID once
		}
	}
	return count
}
