package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roamsocial/trustgraph/internal/storage"
	"github.com/roamsocial/trustgraph/pkg/types"
)

// GetMember retrieves a member by ID.
func (s *Store) GetMember(ctx context.Context, id int64) (*types.Member, error) {
	m := &types.Member{}
	var city, country sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, city, country, created_at
		FROM members WHERE id = $1
	`, id).Scan(&m.ID, &m.Name, &city, &country, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: GetMember: %w", err)
	}

	if city.Valid {
		m.City = city.String
	}
	if country.Valid {
		m.Country = country.String
	}
	return m, nil
}

// UpsertMember creates or updates a member record.
func (s *Store) UpsertMember(ctx context.Context, m *types.Member) error {
	if m == nil || m.ID == 0 {
		return fmt.Errorf("%w: member ID is required", storage.ErrInvalidInput)
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO members (id, name, city, country, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			city = EXCLUDED.city,
			country = EXCLUDED.country
	`, m.ID, m.Name, m.City, m.Country, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: UpsertMember: %w", err)
	}
	return nil
}

// CreateEdge creates a relationship edge for an unordered member pair.
func (s *Store) CreateEdge(ctx context.Context, a, b int64, status types.EdgeStatus) (*types.RelationshipEdge, error) {
	if a == b {
		return nil, fmt.Errorf("%w: cannot create a self-edge", storage.ErrInvalidInput)
	}
	a, b = types.NormalizePair(a, b)

	now := time.Now().UTC()
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO relationship_edges (member_a, member_b, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, a, b, string(status), now, now).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: edge already exists for pair (%d, %d)", storage.ErrInvalidInput, a, b)
		}
		return nil, fmt.Errorf("postgres: CreateEdge: %w", err)
	}

	return &types.RelationshipEdge{
		ID:        id,
		MemberA:   a,
		MemberB:   b,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetEdge retrieves the edge for an unordered member pair regardless of status.
func (s *Store) GetEdge(ctx context.Context, a, b int64) (*types.RelationshipEdge, error) {
	a, b = types.NormalizePair(a, b)

	e := &types.RelationshipEdge{}
	var degree sql.NullInt64
	var lastAt sql.NullTime
	var status string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, member_a, member_b, status, connection_degree, closeness_score,
		       interaction_count, last_interaction_at, created_at, updated_at
		FROM relationship_edges
		WHERE member_a = $1 AND member_b = $2
	`, a, b).Scan(&e.ID, &e.MemberA, &e.MemberB, &status, &degree,
		&e.ClosenessScore, &e.InteractionCount, &lastAt, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: GetEdge: %w", err)
	}

	e.Status = types.EdgeStatus(status)
	if degree.Valid {
		d := int(degree.Int64)
		e.ConnectionDegree = &d
	}
	if lastAt.Valid {
		t := lastAt.Time
		e.LastInteractionAt = &t
	}
	return e, nil
}

// UpdateEdgeStatus moves an edge to a new status.
func (s *Store) UpdateEdgeStatus(ctx context.Context, a, b int64, status types.EdgeStatus) error {
	a, b = types.NormalizePair(a, b)

	res, err := s.db.ExecContext(ctx, `
		UPDATE relationship_edges
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE member_a = $2 AND member_b = $3
	`, string(status), a, b)
	if err != nil {
		return fmt.Errorf("postgres: UpdateEdgeStatus: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// AcceptedNeighbors returns, for every member in frontier, the IDs of
// members connected by an accepted edge. The whole frontier is expanded
// with a single query so that BFS costs one round-trip per level rather
// than one per node.
func (s *Store) AcceptedNeighbors(ctx context.Context, frontier []int64) (map[int64][]int64, error) {
	result := make(map[int64][]int64, len(frontier))
	if len(frontier) == 0 {
		return result, nil
	}

	args := make([]interface{}, 0, len(frontier)*2)
	for _, id := range frontier {
		args = append(args, id)
	}
	for _, id := range frontier {
		args = append(args, id)
	}

	query := fmt.Sprintf(`
		SELECT member_a, member_b
		FROM relationship_edges
		WHERE status = 'accepted' AND (member_a IN (%s) OR member_b IN (%s))
	`, buildInClause(1, len(frontier)), buildInClause(1+len(frontier), len(frontier)))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: AcceptedNeighbors: %w", err)
	}
	defer rows.Close()

	frontierSet := make(map[int64]bool, len(frontier))
	for _, id := range frontier {
		frontierSet[id] = true
	}

	for rows.Next() {
		var a, b int64
		if err := rows.Scan(&a, &b); err != nil {
			return nil, fmt.Errorf("postgres: AcceptedNeighbors scan: %w", err)
		}
		// An edge touching two frontier members contributes in both directions.
		if frontierSet[a] {
			result[a] = append(result[a], b)
		}
		if frontierSet[b] {
			result[b] = append(result[b], a)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: AcceptedNeighbors rows: %w", err)
	}
	return result, nil
}

// AcceptedFriendIDs returns the accepted-friend ID list for one member.
func (s *Store) AcceptedFriendIDs(ctx context.Context, memberID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT member_a, member_b
		FROM relationship_edges
		WHERE status = 'accepted' AND (member_a = $1 OR member_b = $1)
	`, memberID)
	if err != nil {
		return nil, fmt.Errorf("postgres: AcceptedFriendIDs: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var a, b int64
		if err := rows.Scan(&a, &b); err != nil {
			return nil, fmt.Errorf("postgres: AcceptedFriendIDs scan: %w", err)
		}
		if a == memberID {
			ids = append(ids, b)
		} else {
			ids = append(ids, a)
		}
	}
	return ids, rows.Err()
}

// AppendInteraction appends an interaction event to the pair's edge and
// atomically bumps the edge's interaction counter. Both writes happen in
// one transaction so the counter can never drift from the event log under
// concurrent interaction logging.
func (s *Store) AppendInteraction(ctx context.Context, a, b int64, in storage.InteractionAppend) (*types.InteractionEvent, error) {
	if in.EventID == "" {
		return nil, fmt.Errorf("%w: event ID is required", storage.ErrInvalidInput)
	}
	if in.Points <= 0 {
		in.Points = 1
	}
	if in.OccurredAt.IsZero() {
		in.OccurredAt = time.Now().UTC()
	}
	a, b = types.NormalizePair(a, b)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("postgres: AppendInteraction: begin: %w", err)
	}
	defer tx.Rollback()

	var edgeID int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM relationship_edges WHERE member_a = $1 AND member_b = $2
	`, a, b).Scan(&edgeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: AppendInteraction: edge lookup: %w", err)
	}

	var payload interface{}
	if len(in.Payload) > 0 {
		payload = string(in.Payload)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO interaction_events (id, edge_id, activity_type, payload, points, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, in.EventID, edgeID, string(in.ActivityType), payload, in.Points, in.OccurredAt); err != nil {
		return nil, fmt.Errorf("postgres: AppendInteraction: insert event: %w", err)
	}

	// Atomic increment: the counter is bumped in SQL, not read-modify-write
	// in Go, so concurrent appends on the same edge cannot lose updates.
	if _, err := tx.ExecContext(ctx, `
		UPDATE relationship_edges
		SET interaction_count = interaction_count + 1,
		    last_interaction_at = $1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`, in.OccurredAt, edgeID); err != nil {
		return nil, fmt.Errorf("postgres: AppendInteraction: bump counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("postgres: AppendInteraction: commit: %w", err)
	}

	evt := &types.InteractionEvent{
		ID:           in.EventID,
		EdgeID:       edgeID,
		ActivityType: in.ActivityType,
		Points:       in.Points,
		CreatedAt:    in.OccurredAt,
	}
	if len(in.Payload) > 0 {
		evt.Payload = append(evt.Payload, in.Payload...)
	}
	return evt, nil
}

// ListInteractions returns all interaction events for an edge, newest first.
func (s *Store) ListInteractions(ctx context.Context, edgeID int64) ([]*types.InteractionEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, edge_id, activity_type, payload, points, created_at
		FROM interaction_events
		WHERE edge_id = $1
		ORDER BY created_at DESC
	`, edgeID)
	if err != nil {
		return nil, fmt.Errorf("postgres: ListInteractions: %w", err)
	}
	defer rows.Close()

	events := make([]*types.InteractionEvent, 0)
	for rows.Next() {
		e := &types.InteractionEvent{}
		var activityType string
		var payload sql.NullString
		if err := rows.Scan(&e.ID, &e.EdgeID, &activityType, &payload, &e.Points, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: ListInteractions scan: %w", err)
		}
		e.ActivityType = types.ActivityType(activityType)
		if payload.Valid {
			e.Payload = []byte(payload.String)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// UpdateEdgeCache writes recomputed cached degree/score fields on the
// pair's edge. Last-writer-wins.
func (s *Store) UpdateEdgeCache(ctx context.Context, a, b int64, upd storage.EdgeCacheUpdate) error {
	a, b = types.NormalizePair(a, b)

	var degree interface{}
	if upd.Degree != nil {
		degree = *upd.Degree
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE relationship_edges
		SET connection_degree = $1, closeness_score = $2, updated_at = CURRENT_TIMESTAMP
		WHERE member_a = $3 AND member_b = $4
	`, degree, upd.Score, a, b)
	if err != nil {
		return fmt.Errorf("postgres: UpdateEdgeCache: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// RSVP records a member's attendance response to an event (upsert).
func (s *Store) RSVP(ctx context.Context, memberID int64, eventID string, status types.RSVPStatus) error {
	if eventID == "" {
		return fmt.Errorf("%w: event ID is required", storage.ErrInvalidInput)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO event_rsvps (member_id, event_id, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (member_id, event_id) DO UPDATE SET status = EXCLUDED.status
	`, memberID, eventID, string(status))
	if err != nil {
		return fmt.Errorf("postgres: RSVP: %w", err)
	}
	return nil
}

// SharedEventCount returns the number of events both members RSVPed to
// with an attending status (going or maybe).
func (s *Store) SharedEventCount(ctx context.Context, a, b int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM event_rsvps ra
		JOIN event_rsvps rb ON ra.event_id = rb.event_id
		WHERE ra.member_id = $1 AND rb.member_id = $2
		  AND ra.status IN ('going', 'maybe')
		  AND rb.status IN ('going', 'maybe')
	`, a, b).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("postgres: SharedEventCount: %w", err)
	}
	return count, nil
}
