package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roamsocial/trustgraph/internal/storage"
	"github.com/roamsocial/trustgraph/pkg/types"
)

// LocalStatus selects between items whose owner lives in the item's city
// (local) and items recommended by visitors.
type LocalStatus string

const (
	LocalAll     LocalStatus = "all"
	LocalOnly    LocalStatus = "local"
	VisitorsOnly LocalStatus = "visitor"
)

// FilterOptions are the viewer-chosen global filters applied on top of
// whatever per-item policy already passed upstream.
type FilterOptions struct {
	// ConnectionDegree restricts results to owners within the given degree
	// rule (1st_degree, 2nd_degree, 3rd_degree, custom_closeness). Empty
	// means no degree filter.
	ConnectionDegree types.PolicyRule

	// MinClosenessScore applies when ConnectionDegree is custom_closeness.
	MinClosenessScore int

	// LocalStatus filters by whether the owner's home city matches the
	// item's listed city. Defaults to all.
	LocalStatus LocalStatus

	// OriginCountry restricts results to owners from the given country
	// (case-insensitive). Empty means no origin filter.
	OriginCountry string
}

// contentResolver is the slice of ContentStore the pipeline needs.
type contentResolver interface {
	GetRecommendation(ctx context.Context, id string) (*types.Recommendation, error)
}

// memberResolver resolves owner identities for locality and origin checks.
type memberResolver interface {
	GetMember(ctx context.Context, id int64) (*types.Member, error)
}

// FilterPipeline applies the access-policy evaluator and locality/origin
// filters across a batch of candidate recommendation IDs. It is the
// component consumed by list/search endpoints.
type FilterPipeline struct {
	engine  *Engine
	content contentResolver
	members memberResolver
}

// NewFilterPipeline creates a filter pipeline over the given engine and
// content/member stores.
func NewFilterPipeline(engine *Engine, content contentResolver, members memberResolver) *FilterPipeline {
	return &FilterPipeline{
		engine:  engine,
		content: content,
		members: members,
	}
}

// Filter returns the subset of candidateIDs the viewer may see under opts,
// preserving input order. Filters compose by intersection: an item must
// pass every requested filter.
//
// Connection info is computed once per distinct owner, not per item:
// owners repeat across items, so the (viewer, owner) pair keys an
// in-call memo. Candidates that no longer exist are skipped, and a
// missing owner identity is treated as "no connection", not an error.
func (p *FilterPipeline) Filter(ctx context.Context, viewerID int64, candidateIDs []string, opts FilterOptions) ([]string, error) {
	if opts.LocalStatus == "" {
		opts.LocalStatus = LocalAll
	}

	// Per-owner memos, valid for this call only.
	infoByOwner := make(map[int64]*types.ConnectionInfo)
	memberByOwner := make(map[int64]*types.Member)

	allowed := make([]string, 0, len(candidateIDs))

	for _, id := range candidateIDs {
		rec, err := p.content.GetRecommendation(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("engine: filter: load candidate %s: %w", id, err)
		}

		// The viewer's own items always pass.
		if rec.OwnerID == viewerID {
			allowed = append(allowed, id)
			continue
		}

		owner, ok := memberByOwner[rec.OwnerID]
		if !ok {
			owner, err = p.members.GetMember(ctx, rec.OwnerID)
			if errors.Is(err, storage.ErrNotFound) {
				owner = nil // orphaned item: owner checks treat as unknown
			} else if err != nil {
				return nil, fmt.Errorf("engine: filter: resolve owner %d: %w", rec.OwnerID, err)
			}
			memberByOwner[rec.OwnerID] = owner
		}

		if opts.ConnectionDegree != "" {
			info, ok := infoByOwner[rec.OwnerID]
			if !ok {
				info, err = p.engine.Info(ctx, viewerID, rec.OwnerID)
				if err != nil {
					return nil, fmt.Errorf("engine: filter: connection info for owner %d: %w", rec.OwnerID, err)
				}
				infoByOwner[rec.OwnerID] = info
			}

			decision := Evaluate(viewerID, rec.OwnerID, types.AccessPolicy{
				Rule:                  opts.ConnectionDegree,
				MinimumClosenessScore: opts.MinClosenessScore,
			}, info)
			if !decision.Allowed {
				continue
			}
		}

		if !matchesLocality(owner, rec, opts.LocalStatus) {
			continue
		}

		if opts.OriginCountry != "" {
			if owner == nil || !strings.EqualFold(owner.Country, opts.OriginCountry) {
				continue
			}
		}

		allowed = append(allowed, id)
	}

	return allowed, nil
}

// matchesLocality applies the local/visitor filter: an item is "local" when
// its owner's home city equals the item's listed city (case-insensitive).
func matchesLocality(owner *types.Member, rec *types.Recommendation, status LocalStatus) bool {
	if status == LocalAll || status == "" {
		return true
	}
	if owner == nil || rec.City == "" {
		// Without a resolvable owner city the local/visitor split is
		// undecidable; such items match neither restricted mode.
		return false
	}

	isLocal := strings.EqualFold(owner.City, rec.City)
	switch status {
	case LocalOnly:
		return isLocal
	case VisitorsOnly:
		return !isLocal
	}
	return true
}
