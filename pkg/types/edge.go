package types

import (
	"encoding/json"
	"time"
)

// EdgeStatus is the lifecycle status of a relationship edge.
// Only accepted edges participate in graph search; edges are never
// hard-deleted, only moved to a terminal status.
type EdgeStatus string

const (
	EdgePending  EdgeStatus = "pending"
	EdgeAccepted EdgeStatus = "accepted"
	EdgeDeclined EdgeStatus = "declined"
	EdgeBlocked  EdgeStatus = "blocked"
)

// RelationshipEdge is a symmetric friendship edge between two members.
// The pair is stored normalized (MemberA < MemberB) so that at most one
// edge exists per unordered pair.
//
// ConnectionDegree and ClosenessScore are cached values refreshed on the
// interaction write path. They are last-writer-wins and may be briefly
// stale; the engine recomputes them on demand for read-side decisions.
type RelationshipEdge struct {
	ID                int64      `json:"id"`
	MemberA           int64      `json:"member_a"`
	MemberB           int64      `json:"member_b"`
	Status            EdgeStatus `json:"status"`
	ConnectionDegree  *int       `json:"connection_degree,omitempty"` // nil when never computed
	ClosenessScore    int        `json:"closeness_score"`             // 0-100
	InteractionCount  int        `json:"interaction_count"`
	LastInteractionAt *time.Time `json:"last_interaction_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Other returns the member on the opposite side of the edge from id.
func (e *RelationshipEdge) Other(id int64) int64 {
	if e.MemberA == id {
		return e.MemberB
	}
	return e.MemberA
}

// NormalizePair returns the unordered pair (a, b) in canonical storage
// order (smaller ID first).
func NormalizePair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// ActivityType classifies a logged interaction event.
type ActivityType string

const (
	ActivityPostTag     ActivityType = "post_tag"
	ActivityComment     ActivityType = "comment"
	ActivityLike        ActivityType = "like"
	ActivitySharedEvent ActivityType = "shared_event"
	ActivityMessage     ActivityType = "message"
)

// IsMeaningful reports whether the activity type counts toward the
// shared-memory component of the closeness score. Direct messages are
// excluded: they contribute decayed activity points but are not treated
// as shared memories.
func (a ActivityType) IsMeaningful() bool {
	switch a {
	case ActivityPostTag, ActivityComment, ActivityLike, ActivitySharedEvent:
		return true
	}
	return false
}

// InteractionEvent is a single logged engagement action on a relationship
// edge. Events are append-only: never mutated, never deleted. They drive
// the decayed closeness score.
type InteractionEvent struct {
	ID           string          `json:"id"` // Format: evt:uuid
	EdgeID       int64           `json:"edge_id"`
	ActivityType ActivityType    `json:"activity_type"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	Points       int             `json:"points"` // Weight, default 1
	CreatedAt    time.Time       `json:"created_at"`
}

// ConnectionInfo is the derived, read-only summary of the relationship
// between a viewer and a subject. It is computed fresh per request and
// never persisted; InteractionCount and LastInteraction are pulled from
// the cached edge row when one exists.
type ConnectionInfo struct {
	// ConnectionDegree is the shortest accepted-edge path length between
	// the two members: 0 for self, 1-3 for connected members, nil when no
	// path exists within the 3-hop search cap.
	ConnectionDegree *int `json:"connection_degree"`

	// ClosenessScore is the bounded 0-100 engagement score.
	ClosenessScore int `json:"closeness_score"`

	// MutualFriends is the size of the intersection of the two members'
	// accepted-friend ID sets.
	MutualFriends int `json:"mutual_friends"`

	// SharedMemories counts interaction events of socially-meaningful
	// activity types on the pair's edge.
	SharedMemories int `json:"shared_memories"`

	// SharedEvents counts events both members RSVPed to (going or maybe).
	SharedEvents int `json:"shared_events"`

	InteractionCount int        `json:"interaction_count"`
	LastInteraction  *time.Time `json:"last_interaction,omitempty"`
}
