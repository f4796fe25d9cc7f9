package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/roamsocial/trustgraph/internal/notify"
	"github.com/roamsocial/trustgraph/internal/storage"
	"github.com/roamsocial/trustgraph/pkg/types"
)

// EdgeHandlers contains HTTP handlers for relationship edge management:
// friend requests and status transitions.
type EdgeHandlers struct {
	store storage.RelationshipStore
	hub   *notify.Hub
}

// NewEdgeHandlers creates a new EdgeHandlers instance.
func NewEdgeHandlers(store storage.RelationshipStore, hub *notify.Hub) *EdgeHandlers {
	return &EdgeHandlers{store: store, hub: hub}
}

// CreateEdgeRequest represents the request body for sending a friend
// request to another member.
type CreateEdgeRequest struct {
	MemberID int64 `json:"member_id"`
}

// CreateEdge handles POST /api/edges - create a pending edge between the
// viewer and member_id. At most one edge exists per unordered pair.
func (h *EdgeHandlers) CreateEdge(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "X-Member-ID header is required", nil)
		return
	}

	var req CreateEdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}
	if req.MemberID <= 0 {
		respondError(w, http.StatusBadRequest, "member_id is required", nil)
		return
	}

	edge, err := h.store.CreateEdge(r.Context(), viewer, req.MemberID, types.EdgePending)
	if err != nil {
		respondStoreError(w, "failed to create edge", err)
		return
	}

	respondJSON(w, http.StatusCreated, edge)
}

// UpdateEdgeStatusRequest represents the request body for moving an edge
// to a new status.
type UpdateEdgeStatusRequest struct {
	MemberID int64            `json:"member_id"`
	Status   types.EdgeStatus `json:"status"`
}

// UpdateEdgeStatus handles PATCH /api/edges - move the edge between the
// viewer and member_id to a new status (accept, decline, block). Edges
// are never deleted; a status change is published to the hub.
func (h *EdgeHandlers) UpdateEdgeStatus(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "X-Member-ID header is required", nil)
		return
	}

	var req UpdateEdgeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}
	if req.MemberID <= 0 {
		respondError(w, http.StatusBadRequest, "member_id is required", nil)
		return
	}
	switch req.Status {
	case types.EdgeAccepted, types.EdgeDeclined, types.EdgeBlocked:
	default:
		respondError(w, http.StatusBadRequest, "status must be accepted, declined, or blocked", nil)
		return
	}

	if err := h.store.UpdateEdgeStatus(r.Context(), viewer, req.MemberID, req.Status); err != nil {
		respondStoreError(w, "failed to update edge status", err)
		return
	}

	edge, err := h.store.GetEdge(r.Context(), viewer, req.MemberID)
	if err != nil {
		respondStoreError(w, "failed to load edge", err)
		return
	}

	if h.hub != nil {
		h.hub.Publish(notify.Event{
			Kind:       notify.EventEdgeStatusChanged,
			OccurredAt: time.Now().UTC(),
			Payload:    edge,
		})
	}

	respondJSON(w, http.StatusOK, edge)
}
