package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/roamsocial/trustgraph/internal/storage"
	"github.com/roamsocial/trustgraph/pkg/types"
)

func TestGetMember_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetMember(context.Background(), 999)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertMember_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedMember(t, store, 1, "Ana", "Lisbon", "Portugal")

	m, err := store.GetMember(ctx, 1)
	if err != nil {
		t.Fatalf("GetMember: %v", err)
	}
	if m.Name != "Ana" || m.City != "Lisbon" || m.Country != "Portugal" {
		t.Errorf("unexpected member: %+v", m)
	}

	// Upsert updates in place
	m.City = "Porto"
	if err := store.UpsertMember(ctx, m); err != nil {
		t.Fatalf("UpsertMember update: %v", err)
	}
	m2, err := store.GetMember(ctx, 1)
	if err != nil {
		t.Fatalf("GetMember after update: %v", err)
	}
	if m2.City != "Porto" {
		t.Errorf("city = %s, want Porto", m2.City)
	}
}

func TestCreateEdge_NormalizesPair(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedMembers(t, store, 2, 5)

	// Create with arguments in descending order; the stored pair must be
	// normalized so the edge is found regardless of argument order.
	edge := seedEdge(t, store, 5, 2, types.EdgePending)
	if edge.MemberA != 2 || edge.MemberB != 5 {
		t.Errorf("pair not normalized: (%d, %d)", edge.MemberA, edge.MemberB)
	}

	got, err := store.GetEdge(ctx, 5, 2)
	if err != nil {
		t.Fatalf("GetEdge(5, 2): %v", err)
	}
	if got.ID != edge.ID {
		t.Errorf("edge ID mismatch: %d vs %d", got.ID, edge.ID)
	}
	got2, err := store.GetEdge(ctx, 2, 5)
	if err != nil {
		t.Fatalf("GetEdge(2, 5): %v", err)
	}
	if got2.ID != edge.ID {
		t.Errorf("edge lookup not symmetric")
	}
}

func TestCreateEdge_SelfEdgeRejected(t *testing.T) {
	store := newTestStore(t)

	_, err := store.CreateEdge(context.Background(), 7, 7, types.EdgePending)
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for self-edge, got %v", err)
	}
}

func TestCreateEdge_DuplicatePairRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedMembers(t, store, 1, 2)
	seedEdge(t, store, 1, 2, types.EdgePending)

	// Same pair in either order is a duplicate.
	_, err := store.CreateEdge(ctx, 2, 1, types.EdgePending)
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for duplicate pair, got %v", err)
	}
}

func TestCreateEdge_UnknownMembersNotReportedAsDuplicate(t *testing.T) {
	store := newTestStore(t)

	// No members seeded: the insert fails on the foreign key, which must
	// surface as a store error, not as the duplicate-pair invalid-input
	// message shown to users.
	_, err := store.CreateEdge(context.Background(), 100, 200, types.EdgePending)
	if err == nil {
		t.Fatal("expected error for unknown members")
	}
	if errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("foreign-key failure misreported as invalid input: %v", err)
	}
}

func TestUpdateEdgeStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedMembers(t, store, 1, 2)
	seedEdge(t, store, 1, 2, types.EdgePending)

	if err := store.UpdateEdgeStatus(ctx, 2, 1, types.EdgeAccepted); err != nil {
		t.Fatalf("UpdateEdgeStatus: %v", err)
	}

	edge, err := store.GetEdge(ctx, 1, 2)
	if err != nil {
		t.Fatalf("GetEdge: %v", err)
	}
	if edge.Status != types.EdgeAccepted {
		t.Errorf("status = %s, want accepted", edge.Status)
	}
}

func TestUpdateEdgeStatus_MissingEdge(t *testing.T) {
	store := newTestStore(t)

	err := store.UpdateEdgeStatus(context.Background(), 1, 2, types.EdgeAccepted)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAcceptedNeighbors_BatchedFrontier(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Graph: 1-2 accepted, 1-3 accepted, 2-4 accepted, 3-5 pending.
	seedMembers(t, store, 1, 2, 3, 4, 5)
	seedEdge(t, store, 1, 2, types.EdgeAccepted)
	seedEdge(t, store, 1, 3, types.EdgeAccepted)
	seedEdge(t, store, 2, 4, types.EdgeAccepted)
	seedEdge(t, store, 3, 5, types.EdgePending)

	neighbors, err := store.AcceptedNeighbors(ctx, []int64{2, 3})
	if err != nil {
		t.Fatalf("AcceptedNeighbors: %v", err)
	}

	if got := neighbors[2]; len(got) != 2 {
		t.Errorf("neighbors of 2 = %v, want [1 4] in some order", got)
	}
	// The pending 3-5 edge must be excluded.
	if got := neighbors[3]; len(got) != 1 || got[0] != 1 {
		t.Errorf("neighbors of 3 = %v, want [1]", got)
	}
}

func TestAcceptedNeighbors_EmptyFrontier(t *testing.T) {
	store := newTestStore(t)

	neighbors, err := store.AcceptedNeighbors(context.Background(), nil)
	if err != nil {
		t.Fatalf("AcceptedNeighbors: %v", err)
	}
	if len(neighbors) != 0 {
		t.Errorf("expected empty result, got %v", neighbors)
	}
}

func TestAcceptedNeighbors_EdgeWithinFrontier(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// A single edge whose both endpoints are in the frontier must appear
	// under both keys.
	seedMembers(t, store, 1, 2)
	seedEdge(t, store, 1, 2, types.EdgeAccepted)

	neighbors, err := store.AcceptedNeighbors(ctx, []int64{1, 2})
	if err != nil {
		t.Fatalf("AcceptedNeighbors: %v", err)
	}
	if got := neighbors[1]; len(got) != 1 || got[0] != 2 {
		t.Errorf("neighbors of 1 = %v, want [2]", got)
	}
	if got := neighbors[2]; len(got) != 1 || got[0] != 1 {
		t.Errorf("neighbors of 2 = %v, want [1]", got)
	}
}

func TestAcceptedFriendIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedMembers(t, store, 1, 2, 3, 4)
	seedEdge(t, store, 1, 2, types.EdgeAccepted)
	seedEdge(t, store, 1, 3, types.EdgeAccepted)
	seedEdge(t, store, 1, 4, types.EdgeBlocked)

	ids, err := store.AcceptedFriendIDs(ctx, 1)
	if err != nil {
		t.Fatalf("AcceptedFriendIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("friend IDs = %v, want 2 entries", ids)
	}
}

func TestAppendInteraction_IncrementsCounter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedMembers(t, store, 1, 2)
	edge := seedEdge(t, store, 1, 2, types.EdgeAccepted)

	at := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	evt, err := store.AppendInteraction(ctx, 1, 2, storage.InteractionAppend{
		EventID:      "evt:append-1",
		ActivityType: types.ActivityComment,
		Payload:      json.RawMessage(`{"text":"nice"}`),
		Points:       2,
		OccurredAt:   at,
	})
	if err != nil {
		t.Fatalf("AppendInteraction: %v", err)
	}
	if evt.EdgeID != edge.ID || evt.Points != 2 {
		t.Errorf("unexpected event: %+v", evt)
	}

	// A second append bumps the counter again.
	if _, err := store.AppendInteraction(ctx, 2, 1, storage.InteractionAppend{
		EventID:      "evt:append-2",
		ActivityType: types.ActivityLike,
	}); err != nil {
		t.Fatalf("second AppendInteraction: %v", err)
	}

	got, err := store.GetEdge(ctx, 1, 2)
	if err != nil {
		t.Fatalf("GetEdge: %v", err)
	}
	if got.InteractionCount != 2 {
		t.Errorf("interaction count = %d, want 2", got.InteractionCount)
	}
	if got.LastInteractionAt == nil {
		t.Error("last_interaction_at not set")
	}
}

func TestAppendInteraction_MissingEdge(t *testing.T) {
	store := newTestStore(t)

	_, err := store.AppendInteraction(context.Background(), 1, 2, storage.InteractionAppend{
		EventID:      "evt:no-edge",
		ActivityType: types.ActivityComment,
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListInteractions_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedMembers(t, store, 1, 2)
	edge := seedEdge(t, store, 1, 2, types.EdgeAccepted)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := store.AppendInteraction(ctx, 1, 2, storage.InteractionAppend{
			EventID:      "evt:list-" + string(rune('a'+i)),
			ActivityType: types.ActivityMessage,
			OccurredAt:   base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("AppendInteraction %d: %v", i, err)
		}
	}

	events, err := store.ListInteractions(ctx, edge.ID)
	if err != nil {
		t.Fatalf("ListInteractions: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].ID != "evt:list-c" {
		t.Errorf("first event = %s, want evt:list-c (newest first)", events[0].ID)
	}
}

func TestUpdateEdgeCache(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedMembers(t, store, 1, 2)
	seedEdge(t, store, 1, 2, types.EdgeAccepted)

	degree := 1
	if err := store.UpdateEdgeCache(ctx, 2, 1, storage.EdgeCacheUpdate{
		Degree: &degree,
		Score:  42,
	}); err != nil {
		t.Fatalf("UpdateEdgeCache: %v", err)
	}

	edge, err := store.GetEdge(ctx, 1, 2)
	if err != nil {
		t.Fatalf("GetEdge: %v", err)
	}
	if edge.ConnectionDegree == nil || *edge.ConnectionDegree != 1 {
		t.Errorf("cached degree = %v, want 1", edge.ConnectionDegree)
	}
	if edge.ClosenessScore != 42 {
		t.Errorf("cached score = %d, want 42", edge.ClosenessScore)
	}
}

func TestSharedEventCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedMembers(t, store, 1, 2)

	// Both attend picnic; only member 1 attends concert; member 2
	// declined the hike so it must not count.
	mustRSVP := func(memberID int64, eventID string, status types.RSVPStatus) {
		t.Helper()
		if err := store.RSVP(ctx, memberID, eventID, status); err != nil {
			t.Fatalf("RSVP(%d, %s): %v", memberID, eventID, err)
		}
	}
	mustRSVP(1, "picnic", types.RSVPGoing)
	mustRSVP(2, "picnic", types.RSVPMaybe)
	mustRSVP(1, "concert", types.RSVPGoing)
	mustRSVP(1, "hike", types.RSVPGoing)
	mustRSVP(2, "hike", types.RSVPDeclined)

	count, err := store.SharedEventCount(ctx, 1, 2)
	if err != nil {
		t.Fatalf("SharedEventCount: %v", err)
	}
	if count != 1 {
		t.Errorf("shared event count = %d, want 1", count)
	}
}

func TestRSVP_UpsertOverwritesStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedMembers(t, store, 1, 2)

	if err := store.RSVP(ctx, 1, "meetup", types.RSVPGoing); err != nil {
		t.Fatalf("RSVP: %v", err)
	}
	if err := store.RSVP(ctx, 1, "meetup", types.RSVPDeclined); err != nil {
		t.Fatalf("RSVP update: %v", err)
	}
	if err := store.RSVP(ctx, 2, "meetup", types.RSVPGoing); err != nil {
		t.Fatalf("RSVP member 2: %v", err)
	}

	// Member 1 declined, so the pair shares no attended events.
	count, err := store.SharedEventCount(ctx, 1, 2)
	if err != nil {
		t.Fatalf("SharedEventCount: %v", err)
	}
	if count != 0 {
		t.Errorf("shared event count = %d, want 0 after decline", count)
	}
}
