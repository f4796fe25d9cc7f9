// Package storage provides composable storage interfaces for the trust-graph
// engine.
//
// The storage layer is designed with small, focused interfaces that can be
// implemented independently and composed as needed. Two backends ship with
// the engine: SQLite (single-node, embedded) and PostgreSQL (shared).
package storage

import (
	"context"

	"github.com/roamsocial/trustgraph/pkg/types"
)

// RelationshipStore holds members, symmetric friendship edges, their
// append-only interaction logs, and event RSVPs. It is the graph substrate
// for distance and closeness computation.
//
// The engine issues only reads except for two explicit write paths:
// AppendInteraction and UpdateEdgeCache.
type RelationshipStore interface {
	// GetMember retrieves a member by ID.
	// Returns ErrNotFound if the member doesn't exist.
	GetMember(ctx context.Context, id int64) (*types.Member, error)

	// UpsertMember creates or updates a member record.
	UpsertMember(ctx context.Context, m *types.Member) error

	// CreateEdge creates a relationship edge for an unordered member pair.
	// The pair is normalized before storage; at most one edge exists per
	// pair. Returns ErrInvalidInput for a self-edge or when an edge for
	// the pair already exists.
	CreateEdge(ctx context.Context, a, b int64, status types.EdgeStatus) (*types.RelationshipEdge, error)

	// GetEdge retrieves the edge for an unordered member pair regardless
	// of status. Returns ErrNotFound when no edge exists.
	GetEdge(ctx context.Context, a, b int64) (*types.RelationshipEdge, error)

	// UpdateEdgeStatus moves an edge to a new status. Edges are never
	// hard-deleted: blocking or declining is a status change only.
	UpdateEdgeStatus(ctx context.Context, a, b int64, status types.EdgeStatus) error

	// AcceptedNeighbors returns, for every member in frontier, the IDs of
	// members connected by an accepted edge. One batched query per call:
	// the BFS expands a whole frontier level per store round-trip.
	AcceptedNeighbors(ctx context.Context, frontier []int64) (map[int64][]int64, error)

	// AcceptedFriendIDs returns the accepted-friend ID list for one member.
	AcceptedFriendIDs(ctx context.Context, memberID int64) ([]int64, error)

	// AppendInteraction appends an interaction event to the pair's edge,
	// atomically incrementing the edge's interaction_count and advancing
	// last_interaction_at. Returns the stored event.
	// Returns ErrNotFound when no edge exists for the pair.
	AppendInteraction(ctx context.Context, a, b int64, in InteractionAppend) (*types.InteractionEvent, error)

	// ListInteractions returns all interaction events for an edge, newest
	// first. Events are append-only; the result is a complete history.
	ListInteractions(ctx context.Context, edgeID int64) ([]*types.InteractionEvent, error)

	// UpdateEdgeCache writes recomputed cached degree/score fields on the
	// pair's edge. Last-writer-wins; the cache is always recomputable.
	UpdateEdgeCache(ctx context.Context, a, b int64, upd EdgeCacheUpdate) error

	// RSVP records a member's attendance response to an event (upsert).
	RSVP(ctx context.Context, memberID int64, eventID string, status types.RSVPStatus) error

	// SharedEventCount returns the number of events both members RSVPed
	// to with an attending status (going or maybe).
	SharedEventCount(ctx context.Context, a, b int64) (int, error)

	// Close releases any resources held by the store.
	Close() error
}

// ContentStore holds policy-gated content: recommendations and bookable
// resources, plus the bookings recorded against resources.
type ContentStore interface {
	// StoreRecommendation creates or updates a recommendation (upsert).
	StoreRecommendation(ctx context.Context, rec *types.Recommendation) error

	// GetRecommendation retrieves a recommendation by ID.
	// Returns ErrNotFound if it doesn't exist.
	GetRecommendation(ctx context.Context, id string) (*types.Recommendation, error)

	// ListRecommendations retrieves candidate recommendations matching the
	// content filters in opts. Social filtering happens downstream in the
	// filter pipeline, not here.
	ListRecommendations(ctx context.Context, opts ListOptions) ([]*types.Recommendation, error)

	// StoreResource creates or updates a bookable resource (upsert).
	StoreResource(ctx context.Context, res *types.Resource) error

	// GetResource retrieves a resource by ID.
	// Returns ErrNotFound if it doesn't exist.
	GetResource(ctx context.Context, id string) (*types.Resource, error)

	// CreateBooking records a booking against a resource. Eligibility is
	// the caller's responsibility; the store only persists.
	CreateBooking(ctx context.Context, b *types.Booking) error

	// ListBookings returns bookings for a resource, newest first.
	ListBookings(ctx context.Context, resourceID string) ([]*types.Booking, error)

	// Close releases any resources held by the store.
	Close() error
}
