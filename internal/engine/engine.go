// Package engine implements the trust-graph computation layer: relationship
// distance, decayed closeness scoring, connection-info aggregation, access
// policy evaluation, and the content filter pipeline.
//
// The engine is a stateless, per-request computation layer over the shared
// relational store. There is no in-process graph cache and no background
// recomputation loop; every public call is safe to run concurrently for
// different (viewer, subject) pairs.
package engine

import (
	"time"

	"github.com/roamsocial/trustgraph/internal/storage"
)

const (
	// MaxHops is the hard cap on breadth-first search depth. Members
	// farther apart than 3 accepted-edge hops are treated as unconnected;
	// the cap is the primary defense against unbounded search cost on
	// dense graphs.
	MaxHops = 3

	// decayHalfLifeDays controls the exponential time decay of interaction
	// points: each event contributes points * exp(-ageInDays / 30), so
	// recent events count far more than old ones.
	decayHalfLifeDays = 30.0

	// Closeness score components. Activity is worth up to 50 points,
	// shared memories and shared events up to 25 each; the total is
	// clamped to [0, 100].
	activityCap         = 50.0
	activityMultiplier  = 2.0
	sharedMemoryCap     = 25.0
	sharedMemoryWeight  = 5.0
	sharedEventCap      = 25.0
	sharedEventWeight   = 5.0
)

// Engine computes relationship metrics over a RelationshipStore.
type Engine struct {
	store storage.RelationshipStore
	nowFn func() time.Time
}

// New creates an engine over the given relationship store.
func New(store storage.RelationshipStore) *Engine {
	return &Engine{
		store: store,
		nowFn: time.Now,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (e *Engine) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		e.nowFn = nowFn
	}
}
