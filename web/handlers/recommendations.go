package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roamsocial/trustgraph/internal/engine"
	"github.com/roamsocial/trustgraph/internal/storage"
	"github.com/roamsocial/trustgraph/pkg/types"
)

// RecommendationHandlers contains HTTP handlers for recommendation
// listing, retrieval, and creation.
type RecommendationHandlers struct {
	content  storage.ContentStore
	engine   *engine.Engine
	pipeline *engine.FilterPipeline
}

// NewRecommendationHandlers creates a new RecommendationHandlers instance.
func NewRecommendationHandlers(content storage.ContentStore, eng *engine.Engine, pipeline *engine.FilterPipeline) *RecommendationHandlers {
	return &RecommendationHandlers{
		content:  content,
		engine:   eng,
		pipeline: pipeline,
	}
}

// List handles GET /api/recommendations - list recommendations with
// content filters plus the viewer's social filters. Unauthenticated
// requests get the content filters only, with no social filtering.
func (h *RecommendationHandlers) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := storage.ListOptions{
		Limit:      parseInt(q.Get("limit"), 0),
		Offset:     parseInt(q.Get("offset"), 0),
		City:       q.Get("city"),
		Country:    q.Get("country"),
		Type:       q.Get("type"),
		PriceLevel: parseInt(q.Get("price_level"), 0),
		MinRating:  parseFloat(q.Get("min_rating"), 0),
	}
	if tags := q.Get("tags"); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				opts.Tags = append(opts.Tags, t)
			}
		}
	}
	opts.Normalize()

	recs, err := h.content.ListRecommendations(r.Context(), opts)
	if err != nil {
		respondStoreError(w, "failed to list recommendations", err)
		return
	}

	echo := FilterEcho{
		ConnectionDegree:  q.Get("connection_degree"),
		MinClosenessScore: parseInt(q.Get("min_closeness_score"), 0),
		LocalStatus:       q.Get("local_status"),
		OriginCountry:     q.Get("origin_country"),
	}
	// A bad query parameter is the caller's mistake, not a policy
	// misconfiguration; reject it here before it reaches the evaluator's
	// default-deny branch.
	if echo.ConnectionDegree != "" && !types.PolicyRule(echo.ConnectionDegree).Known() {
		respondError(w, http.StatusBadRequest, "unrecognized connection_degree filter", nil)
		return
	}

	// Social filtering requires an authenticated viewer; anonymous
	// listings pass through the content filters untouched.
	viewer, ok := viewerID(r)
	if ok {
		echo.SocialFiltering = true

		byID := make(map[string]*types.Recommendation, len(recs))
		ids := make([]string, 0, len(recs))
		for _, rec := range recs {
			byID[rec.ID] = rec
			ids = append(ids, rec.ID)
		}

		fopts := engine.FilterOptions{
			ConnectionDegree:  types.PolicyRule(echo.ConnectionDegree),
			MinClosenessScore: echo.MinClosenessScore,
			LocalStatus:       engine.LocalStatus(echo.LocalStatus),
			OriginCountry:     echo.OriginCountry,
		}
		allowed, err := h.pipeline.Filter(r.Context(), viewer, ids, fopts)
		if err != nil {
			respondStoreError(w, "failed to apply social filters", err)
			return
		}

		filtered := make([]*types.Recommendation, 0, len(allowed))
		for _, id := range allowed {
			filtered = append(filtered, byID[id])
		}
		recs = filtered
	}

	if recs == nil {
		recs = []*types.Recommendation{}
	}
	respondJSON(w, http.StatusOK, ListRecommendationsResponse{
		Items:   recs,
		Count:   len(recs),
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		Filters: echo,
	})
}

// Get handles GET /api/recommendations/{id} - fetch a single
// recommendation, enforcing the item's own visibility policy against the
// viewer. A denied viewer gets 403 with the denial reason rather than a
// bare 404, since the denial reason is part of the product surface.
func (h *RecommendationHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "recommendation ID is required", nil)
		return
	}

	rec, err := h.content.GetRecommendation(r.Context(), id)
	if err != nil {
		respondStoreError(w, "failed to get recommendation", err)
		return
	}

	viewer, _ := viewerID(r)
	if viewer != rec.OwnerID {
		info, err := h.engine.Info(r.Context(), viewer, rec.OwnerID)
		if err != nil {
			respondStoreError(w, "failed to evaluate visibility", err)
			return
		}
		decision := engine.Evaluate(viewer, rec.OwnerID, rec.Policy, info)
		if !decision.Allowed {
			respondJSON(w, http.StatusForbidden, ErrorResponse{
				Error: decision.Reason,
				Code:  http.StatusText(http.StatusForbidden),
			})
			return
		}
	}

	respondJSON(w, http.StatusOK, rec)
}

// CreateRecommendationRequest represents the request body for creating a
// recommendation.
type CreateRecommendationRequest struct {
	Title      string             `json:"title"`
	Body       string             `json:"body,omitempty"`
	City       string             `json:"city,omitempty"`
	Country    string             `json:"country,omitempty"`
	Type       string             `json:"type,omitempty"`
	PriceLevel int                `json:"price_level,omitempty"`
	Rating     float64            `json:"rating,omitempty"`
	Tags       []string           `json:"tags,omitempty"`
	Policy     types.AccessPolicy `json:"policy"`
}

// Create handles POST /api/recommendations - create a new recommendation
// owned by the authenticated viewer, carrying the owner-set policy.
func (h *RecommendationHandlers) Create(w http.ResponseWriter, r *http.Request) {
	viewer, ok := viewerID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "X-Member-ID header is required", nil)
		return
	}

	var req CreateRecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required", nil)
		return
	}
	if req.Policy.Rule != "" && !req.Policy.Rule.Known() {
		respondError(w, http.StatusBadRequest, "unrecognized policy rule", nil)
		return
	}

	now := time.Now().UTC()
	rec := &types.Recommendation{
		ID:         "rec:" + uuid.NewString(),
		OwnerID:    viewer,
		Title:      req.Title,
		Body:       req.Body,
		City:       req.City,
		Country:    req.Country,
		Type:       req.Type,
		PriceLevel: req.PriceLevel,
		Rating:     req.Rating,
		Tags:       req.Tags,
		Policy:     req.Policy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.content.StoreRecommendation(r.Context(), rec); err != nil {
		respondStoreError(w, "failed to create recommendation", err)
		return
	}

	respondJSON(w, http.StatusCreated, rec)
}
