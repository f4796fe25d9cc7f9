package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/roamsocial/trustgraph/internal/storage"
	"github.com/roamsocial/trustgraph/pkg/types"
)

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ListRecommendationsResponse is the response format for
// GET /api/recommendations. Filters echoes the social filters that were
// applied so clients can render what the viewer is seeing through.
type ListRecommendationsResponse struct {
	Items   []*types.Recommendation `json:"items"`
	Count   int                     `json:"count"`
	Limit   int                     `json:"limit"`
	Offset  int                     `json:"offset"`
	Filters FilterEcho              `json:"filters"`
}

// FilterEcho describes the social filters applied to a listing.
type FilterEcho struct {
	ConnectionDegree  string `json:"connection_degree,omitempty"`
	MinClosenessScore int    `json:"min_closeness_score,omitempty"`
	LocalStatus       string `json:"local_status,omitempty"`
	OriginCountry     string `json:"origin_country,omitempty"`
	SocialFiltering   bool   `json:"social_filtering"`
}

// EligibilityResponse is the response format for
// GET /api/resources/{id}/eligibility.
type EligibilityResponse struct {
	CanBook        bool                  `json:"can_book"`
	Reason         string                `json:"reason,omitempty"`
	ConnectionInfo *types.ConnectionInfo `json:"connection_info"`
}

// Helper functions

// extractID extracts a path parameter from the request.
func extractID(r *http.Request, key string) string {
	return r.PathValue(key)
}

// parseInt parses an integer from a string, returning defaultValue if
// parsing fails.
func parseInt(s string, defaultValue int) int {
	if s == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return val
}

// parseFloat parses a float from a string, returning defaultValue if
// parsing fails.
func parseFloat(s string, defaultValue float64) float64 {
	if s == "" {
		return defaultValue
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return defaultValue
	}
	return val
}

// viewerID resolves the authenticated viewer from the X-Member-ID header.
// Returns (0, false) for unauthenticated requests.
func viewerID(r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(r.Header.Get("X-Member-ID"))
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// If encoding fails, log but don't try to write another response
		// (headers already sent)
		fmt.Printf("failed to encode JSON response: %v\n", err)
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  http.StatusText(statusCode),
	}

	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}
	}

	respondJSON(w, statusCode, errResp)
}

// respondStoreError maps storage error sentinels to HTTP status codes.
func respondStoreError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, message, err)
	case errors.Is(err, storage.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, storage.ErrStoreUnavailable):
		respondError(w, http.StatusServiceUnavailable, message, err)
	default:
		respondError(w, http.StatusInternalServerError, message, err)
	}
}
