package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/roamsocial/trustgraph/internal/storage"
	"github.com/roamsocial/trustgraph/pkg/types"
)

// seedRecommendation builds and stores a recommendation with sane defaults.
func seedRecommendation(t *testing.T, s *Store, id string, ownerID int64, mutate func(*types.Recommendation)) *types.Recommendation {
	t.Helper()
	rec := &types.Recommendation{
		ID:      id,
		OwnerID: ownerID,
		Title:   "A place worth visiting",
		City:    "Lisbon",
		Country: "Portugal",
		Type:    "restaurant",
		Rating:  4.2,
		Policy:  types.AccessPolicy{Rule: types.RuleAnyone},
	}
	if mutate != nil {
		mutate(rec)
	}
	if err := s.StoreRecommendation(context.Background(), rec); err != nil {
		t.Fatalf("failed to seed recommendation %s: %v", id, err)
	}
	return rec
}

func TestStoreRecommendation_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedMembers(t, store, 1)
	seedRecommendation(t, store, "rec:round-trip", 1, func(r *types.Recommendation) {
		r.Body = "Ask for the daily special"
		r.Tags = []string{"seafood", "cheap"}
		r.PriceLevel = 2
		r.Policy = types.AccessPolicy{Rule: types.RuleCustomCloseness, MinimumClosenessScore: 60}
	})

	got, err := store.GetRecommendation(ctx, "rec:round-trip")
	if err != nil {
		t.Fatalf("GetRecommendation: %v", err)
	}
	if got.Body != "Ask for the daily special" || got.PriceLevel != 2 {
		t.Errorf("unexpected recommendation: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "seafood" {
		t.Errorf("tags = %v, want [seafood cheap]", got.Tags)
	}
	if got.Policy.Rule != types.RuleCustomCloseness || got.Policy.MinimumClosenessScore != 60 {
		t.Errorf("policy = %+v, want custom_closeness/60", got.Policy)
	}
}

func TestStoreRecommendation_UpsertUpdates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedMembers(t, store, 1)
	rec := seedRecommendation(t, store, "rec:upsert", 1, nil)
	rec.Title = "Updated title"
	rec.Policy = types.AccessPolicy{Rule: types.RuleFriendsOnly}
	if err := store.StoreRecommendation(ctx, rec); err != nil {
		t.Fatalf("StoreRecommendation update: %v", err)
	}

	got, err := store.GetRecommendation(ctx, "rec:upsert")
	if err != nil {
		t.Fatalf("GetRecommendation: %v", err)
	}
	if got.Title != "Updated title" || got.Policy.Rule != types.RuleFriendsOnly {
		t.Errorf("update not applied: %+v", got)
	}
}

func TestStoreRecommendation_Validation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.StoreRecommendation(ctx, &types.Recommendation{OwnerID: 1, Title: "x"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("missing ID: got %v, want ErrInvalidInput", err)
	}
	if err := store.StoreRecommendation(ctx, &types.Recommendation{ID: "rec:x", Title: "x"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("missing owner: got %v, want ErrInvalidInput", err)
	}
}

func TestGetRecommendation_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetRecommendation(context.Background(), "rec:missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListRecommendations_ContentFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedMembers(t, store, 1, 2)
	seedRecommendation(t, store, "rec:lisbon-cheap", 1, func(r *types.Recommendation) {
		r.City = "Lisbon"
		r.PriceLevel = 1
		r.Rating = 4.5
	})
	seedRecommendation(t, store, "rec:lisbon-fancy", 2, func(r *types.Recommendation) {
		r.City = "Lisbon"
		r.PriceLevel = 4
		r.Rating = 4.8
	})
	seedRecommendation(t, store, "rec:porto", 1, func(r *types.Recommendation) {
		r.City = "Porto"
		r.PriceLevel = 2
		r.Rating = 3.9
	})

	// City filter is case-insensitive.
	recs, err := store.ListRecommendations(ctx, storage.ListOptions{City: "lisbon"})
	if err != nil {
		t.Fatalf("ListRecommendations city: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("city filter: got %d, want 2", len(recs))
	}

	// Price level is an upper bound.
	recs, err = store.ListRecommendations(ctx, storage.ListOptions{PriceLevel: 2})
	if err != nil {
		t.Fatalf("ListRecommendations price: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("price filter: got %d, want 2", len(recs))
	}

	// Min rating is a lower bound.
	recs, err = store.ListRecommendations(ctx, storage.ListOptions{MinRating: 4.6})
	if err != nil {
		t.Fatalf("ListRecommendations rating: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "rec:lisbon-fancy" {
		t.Errorf("rating filter: got %v", recs)
	}

	// Owner filter.
	recs, err = store.ListRecommendations(ctx, storage.ListOptions{OwnerID: 1})
	if err != nil {
		t.Fatalf("ListRecommendations owner: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("owner filter: got %d, want 2", len(recs))
	}
}

func TestListRecommendations_TagFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedMembers(t, store, 1)
	seedRecommendation(t, store, "rec:tagged", 1, func(r *types.Recommendation) {
		r.Tags = []string{"Vegan", "brunch"}
	})
	seedRecommendation(t, store, "rec:untagged", 1, nil)

	// All requested tags must be present; matching is case-insensitive.
	recs, err := store.ListRecommendations(ctx, storage.ListOptions{Tags: []string{"vegan", "BRUNCH"}})
	if err != nil {
		t.Fatalf("ListRecommendations tags: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "rec:tagged" {
		t.Errorf("tag filter: got %v", recs)
	}

	recs, err = store.ListRecommendations(ctx, storage.ListOptions{Tags: []string{"vegan", "dinner"}})
	if err != nil {
		t.Fatalf("ListRecommendations tags miss: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("partial tag match must not qualify, got %v", recs)
	}
}

func TestListRecommendations_Pagination(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedMembers(t, store, 1)
	for i := 0; i < 5; i++ {
		seedRecommendation(t, store, fmt.Sprintf("rec:page-%d", i), 1, func(r *types.Recommendation) {
			r.CreatedAt = time.Date(2026, 7, 1+i, 0, 0, 0, 0, time.UTC)
		})
	}

	recs, err := store.ListRecommendations(ctx, storage.ListOptions{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("ListRecommendations: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d recs, want 2", len(recs))
	}
	// Newest first, offset 1 skips the newest.
	if recs[0].ID != "rec:page-3" || recs[1].ID != "rec:page-2" {
		t.Errorf("page = [%s %s], want [rec:page-3 rec:page-2]", recs[0].ID, recs[1].ID)
	}
}

func TestResource_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedMembers(t, store, 3)
	res := &types.Resource{
		ID:      "res:couch",
		HostID:  3,
		Title:   "Couch in Alfama",
		City:    "Lisbon",
		Country: "Portugal",
		WhoCanBook: types.AccessPolicy{
			Rule:                  types.RuleCustomCloseness,
			MinimumClosenessScore: 70,
		},
	}
	if err := store.StoreResource(ctx, res); err != nil {
		t.Fatalf("StoreResource: %v", err)
	}

	got, err := store.GetResource(ctx, "res:couch")
	if err != nil {
		t.Fatalf("GetResource: %v", err)
	}
	if got.HostID != 3 || got.WhoCanBook.Rule != types.RuleCustomCloseness || got.WhoCanBook.MinimumClosenessScore != 70 {
		t.Errorf("unexpected resource: %+v", got)
	}
}

func TestGetResource_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetResource(context.Background(), "res:missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateAndListBookings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedMembers(t, store, 1, 10, 11)
	if err := store.StoreResource(ctx, &types.Resource{
		ID:     "res:tour",
		HostID: 1,
		Title:  "Walking tour",
	}); err != nil {
		t.Fatalf("StoreResource: %v", err)
	}

	start := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		b := &types.Booking{
			ID:         fmt.Sprintf("bkg:tour-%d", i),
			ResourceID: "res:tour",
			MemberID:   int64(10 + i),
			StartAt:    start,
			EndAt:      start.Add(2 * time.Hour),
			CreatedAt:  start.Add(time.Duration(i) * time.Minute),
		}
		if err := store.CreateBooking(ctx, b); err != nil {
			t.Fatalf("CreateBooking %d: %v", i, err)
		}
		if b.Status != types.BookingPending {
			t.Errorf("default status = %s, want pending", b.Status)
		}
	}

	bookings, err := store.ListBookings(ctx, "res:tour")
	if err != nil {
		t.Fatalf("ListBookings: %v", err)
	}
	if len(bookings) != 2 {
		t.Fatalf("got %d bookings, want 2", len(bookings))
	}
	if bookings[0].ID != "bkg:tour-1" {
		t.Errorf("first booking = %s, want bkg:tour-1 (newest first)", bookings[0].ID)
	}
}
