package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/roamsocial/trustgraph/pkg/types"
)

// newTestStore creates an in-memory SQLite store for testing. NewStore
// applies the full schema, so no additional DDL is required in tests.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// seedMember inserts a member with the given identity fields.
func seedMember(t *testing.T, s *Store, id int64, name, city, country string) {
	t.Helper()
	err := s.UpsertMember(context.Background(), &types.Member{
		ID:        id,
		Name:      name,
		City:      city,
		Country:   country,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("failed to seed member %d: %v", id, err)
	}
}

// seedMembers inserts placeholder members for the given IDs. Edges and
// RSVPs reference members, so graph fixtures seed their members first.
func seedMembers(t *testing.T, s *Store, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		seedMember(t, s, id, fmt.Sprintf("member-%d", id), "Lisbon", "Portugal")
	}
}

// seedEdge creates an edge between a and b with the given status.
func seedEdge(t *testing.T, s *Store, a, b int64, status types.EdgeStatus) *types.RelationshipEdge {
	t.Helper()
	edge, err := s.CreateEdge(context.Background(), a, b, status)
	if err != nil {
		t.Fatalf("failed to seed edge (%d, %d): %v", a, b, err)
	}
	return edge
}
