package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/roamsocial/trustgraph/internal/booking"
	"github.com/roamsocial/trustgraph/internal/engine"
	"github.com/roamsocial/trustgraph/internal/notify"
	"github.com/roamsocial/trustgraph/internal/storage/sqlite"
	"github.com/roamsocial/trustgraph/pkg/types"
)

// fixture wires real components against an in-memory SQLite store, with a
// small seeded graph:
//
//	1 (Ana, Lisbon)    — 2 accepted
//	2 (Bruno, Lisbon)  — 3 accepted
//	3 (Carla, Porto)
//	4 (Dan, Berlin)    — unconnected
type fixture struct {
	store *sqlite.Store
	eng   *engine.Engine
	hub   *notify.Hub
	mux   *http.ServeMux
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := sqlite.NewStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	members := []*types.Member{
		{ID: 1, Name: "Ana", City: "Lisbon", Country: "Portugal"},
		{ID: 2, Name: "Bruno", City: "Lisbon", Country: "Portugal"},
		{ID: 3, Name: "Carla", City: "Porto", Country: "Portugal"},
		{ID: 4, Name: "Dan", City: "Berlin", Country: "Germany"},
	}
	for _, m := range members {
		if err := store.UpsertMember(ctx, m); err != nil {
			t.Fatalf("failed to seed member %d: %v", m.ID, err)
		}
	}
	for _, pair := range [][2]int64{{1, 2}, {2, 3}} {
		if _, err := store.CreateEdge(ctx, pair[0], pair[1], types.EdgeAccepted); err != nil {
			t.Fatalf("failed to seed edge %v: %v", pair, err)
		}
	}

	eng := engine.New(store)
	pipeline := engine.NewFilterPipeline(eng, store, store)
	hub := notify.NewHub()
	bookingSvc := booking.NewService(eng, store, hub)

	recH := NewRecommendationHandlers(store, eng, pipeline)
	connH := NewConnectionHandlers(eng)
	intH := NewInteractionHandlers(store, eng, hub)
	edgeH := NewEdgeHandlers(store, hub)
	bookH := NewBookingHandlers(bookingSvc)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/recommendations", recH.List)
	mux.HandleFunc("POST /api/recommendations", recH.Create)
	mux.HandleFunc("GET /api/recommendations/{id}", recH.Get)
	mux.HandleFunc("GET /api/members/{id}/connection", connH.GetConnection)
	mux.HandleFunc("POST /api/interactions", intH.LogInteraction)
	mux.HandleFunc("POST /api/edges", edgeH.CreateEdge)
	mux.HandleFunc("PATCH /api/edges", edgeH.UpdateEdgeStatus)
	mux.HandleFunc("GET /api/resources/{id}/eligibility", bookH.GetEligibility)
	mux.HandleFunc("POST /api/resources/{id}/bookings", bookH.CreateBooking)

	return &fixture{store: store, eng: eng, hub: hub, mux: mux}
}

// seedRecommendation stores a recommendation owned by ownerID with the
// given policy.
func (f *fixture) seedRecommendation(t *testing.T, id string, ownerID int64, policy types.AccessPolicy, mutate func(*types.Recommendation)) {
	t.Helper()
	rec := &types.Recommendation{
		ID:      id,
		OwnerID: ownerID,
		Title:   "Test spot",
		City:    "Lisbon",
		Country: "Portugal",
		Type:    "restaurant",
		Rating:  4.0,
		Policy:  policy,
	}
	if mutate != nil {
		mutate(rec)
	}
	if err := f.store.StoreRecommendation(context.Background(), rec); err != nil {
		t.Fatalf("failed to seed recommendation %s: %v", id, err)
	}
}

// seedResource stores a bookable resource hosted by hostID.
func (f *fixture) seedResource(t *testing.T, id string, hostID int64, policy types.AccessPolicy) {
	t.Helper()
	res := &types.Resource{
		ID:         id,
		HostID:     hostID,
		Title:      "Test resource",
		City:       "Lisbon",
		WhoCanBook: policy,
	}
	if err := f.store.StoreResource(context.Background(), res); err != nil {
		t.Fatalf("failed to seed resource %s: %v", id, err)
	}
}
