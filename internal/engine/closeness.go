package engine

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/roamsocial/trustgraph/internal/storage"
	"github.com/roamsocial/trustgraph/pkg/types"
)

// Closeness returns the bounded 0-100 engagement score between two members.
// Members without an accepted edge score 0, as does an accepted edge with
// no interaction history. The score is a bounded engagement signal, not a
// raw count: a huge interaction history still caps at 100.
func (e *Engine) Closeness(ctx context.Context, viewer, subject int64) (int, error) {
	edge, err := e.store.GetEdge(ctx, viewer, subject)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("engine: closeness: %w", err)
	}
	if edge.Status != types.EdgeAccepted {
		return 0, nil
	}

	events, err := e.store.ListInteractions(ctx, edge.ID)
	if err != nil {
		return 0, fmt.Errorf("engine: closeness: load interactions: %w", err)
	}

	sharedEvents, err := e.store.SharedEventCount(ctx, viewer, subject)
	if err != nil {
		return 0, fmt.Errorf("engine: closeness: shared events: %w", err)
	}

	score, _ := e.scoreComponents(events, sharedEvents)
	return score, nil
}

// scoreComponents computes the closeness score and the shared-memory count
// from an edge's event history and a precomputed shared-event count.
//
// Components:
//   - activity:     min(50, decayedPointSum * 2)
//   - sharedMemory: min(25, meaningfulEventCount * 5)
//   - sharedEvent:  min(25, sharedEventCount * 5)
//
// The decayed sum weights each event by exp(-ageInDays / 30). The final
// score is rounded and clamped to [0, 100].
func (e *Engine) scoreComponents(events []*types.InteractionEvent, sharedEvents int) (score, meaningful int) {
	now := e.nowFn()

	var decayedSum float64
	for _, evt := range events {
		ageDays := now.Sub(evt.CreatedAt).Hours() / 24.0
		if ageDays < 0 {
			ageDays = 0 // clock skew: future events count as fresh
		}
		decayedSum += float64(evt.Points) * math.Exp(-ageDays/decayHalfLifeDays)

		if evt.ActivityType.IsMeaningful() {
			meaningful++
		}
	}

	activity := math.Min(activityCap, decayedSum*activityMultiplier)
	memory := math.Min(sharedMemoryCap, float64(meaningful)*sharedMemoryWeight)
	event := math.Min(sharedEventCap, float64(sharedEvents)*sharedEventWeight)

	total := int(math.Round(activity + memory + event))
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}
	return total, meaningful
}

// RefreshEdgeCache recomputes the cached degree and closeness score for a
// pair's edge and writes them back. It is called on the interaction write
// path; the write is last-writer-wins and the cache is always recomputable
// on demand, so a concurrent stale write is tolerated.
func (e *Engine) RefreshEdgeCache(ctx context.Context, a, b int64) error {
	degree, err := e.Distance(ctx, a, b)
	if err != nil {
		return fmt.Errorf("engine: refresh cache: %w", err)
	}

	score, err := e.Closeness(ctx, a, b)
	if err != nil {
		return fmt.Errorf("engine: refresh cache: %w", err)
	}

	err = e.store.UpdateEdgeCache(ctx, a, b, storage.EdgeCacheUpdate{Degree: degree, Score: score})
	if err != nil {
		return fmt.Errorf("engine: refresh cache: %w", err)
	}
	return nil
}
