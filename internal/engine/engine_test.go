package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/roamsocial/trustgraph/internal/storage"
	"github.com/roamsocial/trustgraph/pkg/types"
)

// fakeStore is an in-memory RelationshipStore for engine tests. It keeps
// edges normalized the same way the real backends do and supports fault
// injection on the BFS read path.
type fakeStore struct {
	members    map[int64]*types.Member
	edges      map[string]*types.RelationshipEdge
	events     map[int64][]*types.InteractionEvent
	rsvps      map[int64]map[string]types.RSVPStatus
	nextEdgeID int64

	// neighborsErr, when set, is returned by AcceptedNeighbors to simulate
	// a store outage mid-search.
	neighborsErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		members: make(map[int64]*types.Member),
		edges:   make(map[string]*types.RelationshipEdge),
		events:  make(map[int64][]*types.InteractionEvent),
		rsvps:   make(map[int64]map[string]types.RSVPStatus),
	}
}

func pairKey(a, b int64) string {
	a, b = types.NormalizePair(a, b)
	return fmt.Sprintf("%d:%d", a, b)
}

// connect creates an accepted edge between a and b and returns it.
func (f *fakeStore) connect(a, b int64) *types.RelationshipEdge {
	na, nb := types.NormalizePair(a, b)
	f.nextEdgeID++
	e := &types.RelationshipEdge{
		ID:      f.nextEdgeID,
		MemberA: na,
		MemberB: nb,
		Status:  types.EdgeAccepted,
	}
	f.edges[pairKey(a, b)] = e
	return e
}

// addEvent appends an interaction event aged by age to the pair's edge.
func (f *fakeStore) addEvent(a, b int64, activity types.ActivityType, points int, age time.Duration) {
	e := f.edges[pairKey(a, b)]
	f.events[e.ID] = append(f.events[e.ID], &types.InteractionEvent{
		ID:           fmt.Sprintf("evt:%d", len(f.events[e.ID])+1),
		EdgeID:       e.ID,
		ActivityType: activity,
		Points:       points,
		CreatedAt:    time.Now().Add(-age),
	})
	e.InteractionCount++
	t := time.Now().Add(-age)
	e.LastInteractionAt = &t
}

func (f *fakeStore) GetMember(ctx context.Context, id int64) (*types.Member, error) {
	m, ok := f.members[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return m, nil
}

func (f *fakeStore) UpsertMember(ctx context.Context, m *types.Member) error {
	f.members[m.ID] = m
	return nil
}

func (f *fakeStore) CreateEdge(ctx context.Context, a, b int64, status types.EdgeStatus) (*types.RelationshipEdge, error) {
	e := f.connect(a, b)
	e.Status = status
	return e, nil
}

func (f *fakeStore) GetEdge(ctx context.Context, a, b int64) (*types.RelationshipEdge, error) {
	e, ok := f.edges[pairKey(a, b)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return e, nil
}

func (f *fakeStore) UpdateEdgeStatus(ctx context.Context, a, b int64, status types.EdgeStatus) error {
	e, ok := f.edges[pairKey(a, b)]
	if !ok {
		return storage.ErrNotFound
	}
	e.Status = status
	return nil
}

func (f *fakeStore) AcceptedNeighbors(ctx context.Context, frontier []int64) (map[int64][]int64, error) {
	if f.neighborsErr != nil {
		return nil, f.neighborsErr
	}
	result := make(map[int64][]int64)
	inFrontier := make(map[int64]bool, len(frontier))
	for _, id := range frontier {
		inFrontier[id] = true
	}
	for _, e := range f.edges {
		if e.Status != types.EdgeAccepted {
			continue
		}
		if inFrontier[e.MemberA] {
			result[e.MemberA] = append(result[e.MemberA], e.MemberB)
		}
		if inFrontier[e.MemberB] {
			result[e.MemberB] = append(result[e.MemberB], e.MemberA)
		}
	}
	return result, nil
}

func (f *fakeStore) AcceptedFriendIDs(ctx context.Context, memberID int64) ([]int64, error) {
	ids := make([]int64, 0)
	for _, e := range f.edges {
		if e.Status != types.EdgeAccepted {
			continue
		}
		if e.MemberA == memberID {
			ids = append(ids, e.MemberB)
		} else if e.MemberB == memberID {
			ids = append(ids, e.MemberA)
		}
	}
	return ids, nil
}

func (f *fakeStore) AppendInteraction(ctx context.Context, a, b int64, in storage.InteractionAppend) (*types.InteractionEvent, error) {
	e, ok := f.edges[pairKey(a, b)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	evt := &types.InteractionEvent{
		ID:           in.EventID,
		EdgeID:       e.ID,
		ActivityType: in.ActivityType,
		Points:       in.Points,
		CreatedAt:    in.OccurredAt,
	}
	f.events[e.ID] = append(f.events[e.ID], evt)
	e.InteractionCount++
	e.LastInteractionAt = &evt.CreatedAt
	return evt, nil
}

func (f *fakeStore) ListInteractions(ctx context.Context, edgeID int64) ([]*types.InteractionEvent, error) {
	return f.events[edgeID], nil
}

func (f *fakeStore) UpdateEdgeCache(ctx context.Context, a, b int64, upd storage.EdgeCacheUpdate) error {
	e, ok := f.edges[pairKey(a, b)]
	if !ok {
		return storage.ErrNotFound
	}
	e.ConnectionDegree = upd.Degree
	e.ClosenessScore = upd.Score
	return nil
}

func (f *fakeStore) RSVP(ctx context.Context, memberID int64, eventID string, status types.RSVPStatus) error {
	if f.rsvps[memberID] == nil {
		f.rsvps[memberID] = make(map[string]types.RSVPStatus)
	}
	f.rsvps[memberID][eventID] = status
	return nil
}

func (f *fakeStore) SharedEventCount(ctx context.Context, a, b int64) (int, error) {
	count := 0
	for eventID, statusA := range f.rsvps[a] {
		if !statusA.CountsAsAttending() {
			continue
		}
		if statusB, ok := f.rsvps[b][eventID]; ok && statusB.CountsAsAttending() {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) Close() error { return nil }

// chainGraph builds the synthetic chain a-b-c-d-e-f (IDs 1..6, all
// accepted) used by the distance cap tests.
func chainGraph(t *testing.T) *fakeStore {
	t.Helper()
	s := newFakeStore()
	for id := int64(1); id <= 6; id++ {
		s.members[id] = &types.Member{ID: id}
	}
	for id := int64(1); id < 6; id++ {
		s.connect(id, id+1)
	}
	return s
}
