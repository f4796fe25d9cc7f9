package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/roamsocial/trustgraph/internal/booking"
)

// BookingHandlers contains HTTP handlers for booking eligibility checks
// and booking creation.
type BookingHandlers struct {
	svc *booking.Service
}

// NewBookingHandlers creates a new BookingHandlers instance.
func NewBookingHandlers(svc *booking.Service) *BookingHandlers {
	return &BookingHandlers{svc: svc}
}

// GetEligibility handles GET /api/resources/{id}/eligibility - evaluate
// whether the viewer can book the resource, returning the decision and
// the connection info it was based on.
func (h *BookingHandlers) GetEligibility(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "X-Member-ID header is required", nil)
		return
	}

	resourceID := extractID(r, "id")
	if resourceID == "" {
		respondError(w, http.StatusBadRequest, "resource ID is required", nil)
		return
	}

	elig, err := h.svc.CheckResource(r.Context(), viewer, resourceID)
	if err != nil {
		respondStoreError(w, "failed to check eligibility", err)
		return
	}

	respondJSON(w, http.StatusOK, EligibilityResponse{
		CanBook:        elig.CanBook,
		Reason:         elig.Reason,
		ConnectionInfo: elig.ConnectionInfo,
	})
}

// CreateBookingRequest represents the request body for booking a resource.
type CreateBookingRequest struct {
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

// CreateBooking handles POST /api/resources/{id}/bookings - create a
// booking if the viewer passes the resource's who-can-book policy. A
// denial is a 403 carrying the eligibility reason, not an error.
func (h *BookingHandlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "X-Member-ID header is required", nil)
		return
	}

	resourceID := extractID(r, "id")
	if resourceID == "" {
		respondError(w, http.StatusBadRequest, "resource ID is required", nil)
		return
	}

	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}
	if req.StartAt.IsZero() || req.EndAt.IsZero() {
		respondError(w, http.StatusBadRequest, "start_at and end_at are required", nil)
		return
	}
	if !req.EndAt.After(req.StartAt) {
		respondError(w, http.StatusBadRequest, "end_at must be after start_at", nil)
		return
	}

	bkg, elig, err := h.svc.Book(r.Context(), viewer, resourceID, req.StartAt, req.EndAt)
	if err != nil {
		respondStoreError(w, "failed to create booking", err)
		return
	}
	if bkg == nil {
		respondJSON(w, http.StatusForbidden, EligibilityResponse{
			CanBook:        false,
			Reason:         elig.Reason,
			ConnectionInfo: elig.ConnectionInfo,
		})
		return
	}

	respondJSON(w, http.StatusCreated, bkg)
}
