package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/roamsocial/trustgraph/internal/engine"
	"github.com/roamsocial/trustgraph/internal/notify"
	"github.com/roamsocial/trustgraph/internal/storage"
	"github.com/roamsocial/trustgraph/pkg/types"
)

// InteractionHandlers contains HTTP handlers for the interaction write
// path: append event, refresh the edge cache, publish to the hub.
type InteractionHandlers struct {
	store  storage.RelationshipStore
	engine *engine.Engine
	hub    *notify.Hub
}

// NewInteractionHandlers creates a new InteractionHandlers instance.
func NewInteractionHandlers(store storage.RelationshipStore, eng *engine.Engine, hub *notify.Hub) *InteractionHandlers {
	return &InteractionHandlers{store: store, engine: eng, hub: hub}
}

// LogInteractionRequest represents the request body for logging an
// interaction between the authenticated viewer and another member.
type LogInteractionRequest struct {
	MemberID     int64              `json:"member_id"` // The other side of the pair
	ActivityType types.ActivityType `json:"activity_type"`
	Payload      json.RawMessage    `json:"payload,omitempty"`
	Points       int                `json:"points,omitempty"`      // Default 1
	OccurredAt   *time.Time         `json:"occurred_at,omitempty"` // Default now
}

// LogInteraction handles POST /api/interactions - append an interaction
// event to the edge between the viewer and member_id. The edge's
// interaction counter is incremented atomically by the store; the cached
// degree and closeness are refreshed afterward, and the event is
// published to the notification hub.
func (h *InteractionHandlers) LogInteraction(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "X-Member-ID header is required", nil)
		return
	}

	var req LogInteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}
	if req.MemberID <= 0 {
		respondError(w, http.StatusBadRequest, "member_id is required", nil)
		return
	}
	if req.MemberID == viewer {
		respondError(w, http.StatusBadRequest, "cannot log an interaction with yourself", nil)
		return
	}
	switch req.ActivityType {
	case types.ActivityPostTag, types.ActivityComment, types.ActivityLike,
		types.ActivitySharedEvent, types.ActivityMessage:
	default:
		respondError(w, http.StatusBadRequest, "unrecognized activity_type", nil)
		return
	}

	points := req.Points
	if points <= 0 {
		points = 1
	}
	occurredAt := time.Now().UTC()
	if req.OccurredAt != nil && !req.OccurredAt.IsZero() {
		occurredAt = *req.OccurredAt
	}

	evt, err := h.store.AppendInteraction(r.Context(), viewer, req.MemberID, storage.InteractionAppend{
		EventID:      "evt:" + uuid.NewString(),
		ActivityType: req.ActivityType,
		Payload:      req.Payload,
		Points:       points,
		OccurredAt:   occurredAt,
	})
	if err != nil {
		respondStoreError(w, "failed to log interaction", err)
		return
	}

	// Cache refresh is best-effort: the cached degree/score are
	// recomputable and last-writer-wins, so a failure here must not fail
	// the already-committed write.
	if err := h.engine.RefreshEdgeCache(r.Context(), viewer, req.MemberID); err != nil {
		log.Printf("WARNING: edge cache refresh failed for (%d, %d): %v", viewer, req.MemberID, err)
	}

	if h.hub != nil {
		h.hub.Publish(notify.Event{
			Kind:       notify.EventInteractionLogged,
			OccurredAt: time.Now().UTC(),
			Payload:    evt,
		})
	}

	respondJSON(w, http.StatusCreated, evt)
}
