package storage

import (
	"errors"
	"time"

	"github.com/roamsocial/trustgraph/pkg/types"
)

var (
	// ErrNotFound indicates that the requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates that the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStoreUnavailable indicates the relational store cannot be reached.
	// It is a transient failure: no result was produced and the caller may
	// retry the whole request. Retry policy belongs to the caller, never to
	// this layer.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ListOptions provides pagination and filtering options for content queries.
type ListOptions struct {
	// Limit is the maximum number of items to return (default: 20, max: 100).
	Limit int

	// Offset is the number of items to skip.
	Offset int

	// City filters recommendations by their listed city (case-insensitive).
	City string

	// Country filters recommendations by country (case-insensitive).
	Country string

	// Type filters by recommendation type (e.g. "restaurant").
	Type string

	// PriceLevel filters to items at or below this price level.
	// Zero means no price filter.
	PriceLevel int

	// MinRating filters to items with rating >= this value.
	MinRating float64

	// Tags filters to items carrying all of the given tags.
	Tags []string

	// OwnerID filters to items owned by a specific member.
	// Zero means no owner filter.
	OwnerID int64
}

// Normalize applies defaults and clamps pagination bounds.
func (o *ListOptions) Normalize() {
	if o.Limit <= 0 {
		o.Limit = 20
	}
	if o.Limit > 100 {
		o.Limit = 100
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}

// InteractionAppend carries the fields for appending one interaction event
// to an edge. The edge's interaction counter is incremented atomically in
// the same transaction; the cached closeness score refresh is a separate
// last-writer-wins write and may be briefly stale.
type InteractionAppend struct {
	EventID      string
	ActivityType types.ActivityType
	Payload      []byte
	Points       int
	OccurredAt   time.Time
}

// EdgeCacheUpdate carries recomputed cached fields for an edge.
// A nil Degree clears the cached degree (no path found within the cap).
type EdgeCacheUpdate struct {
	Degree *int
	Score  int
}
