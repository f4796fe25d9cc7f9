package handlers

import (
	"net/http"
	"strconv"

	"github.com/roamsocial/trustgraph/internal/engine"
)

// ConnectionHandlers contains HTTP handlers for the connection-info
// read surface.
type ConnectionHandlers struct {
	engine *engine.Engine
}

// NewConnectionHandlers creates a new ConnectionHandlers instance.
func NewConnectionHandlers(eng *engine.Engine) *ConnectionHandlers {
	return &ConnectionHandlers{engine: eng}
}

// GetConnection handles GET /api/members/{id}/connection - compute the
// connection summary between the authenticated viewer and member {id}.
func (h *ConnectionHandlers) GetConnection(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "X-Member-ID header is required", nil)
		return
	}

	subject, err := strconv.ParseInt(extractID(r, "id"), 10, 64)
	if err != nil || subject <= 0 {
		respondError(w, http.StatusBadRequest, "member ID must be a positive integer", err)
		return
	}

	info, err := h.engine.Info(r.Context(), viewer, subject)
	if err != nil {
		respondStoreError(w, "failed to compute connection info", err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}
