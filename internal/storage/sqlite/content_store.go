package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roamsocial/trustgraph/internal/storage"
	"github.com/roamsocial/trustgraph/pkg/types"
)

// StoreRecommendation creates or updates a recommendation (upsert semantics).
func (s *Store) StoreRecommendation(ctx context.Context, rec *types.Recommendation) error {
	if rec == nil {
		return storage.ErrInvalidInput
	}
	if rec.ID == "" {
		return fmt.Errorf("%w: recommendation ID is required", storage.ErrInvalidInput)
	}
	if rec.OwnerID == 0 {
		return fmt.Errorf("%w: owner ID is required", storage.ErrInvalidInput)
	}

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	var tagsJSON interface{}
	if len(rec.Tags) > 0 {
		data, err := json.Marshal(rec.Tags)
		if err != nil {
			return fmt.Errorf("sqlite: StoreRecommendation: marshal tags: %w", err)
		}
		tagsJSON = string(data)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recommendations (
			id, owner_id, title, body, city, country, type,
			price_level, rating, tags, rule, min_closeness, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			body = excluded.body,
			city = excluded.city,
			country = excluded.country,
			type = excluded.type,
			price_level = excluded.price_level,
			rating = excluded.rating,
			tags = excluded.tags,
			rule = excluded.rule,
			min_closeness = excluded.min_closeness,
			updated_at = excluded.updated_at
	`, rec.ID, rec.OwnerID, rec.Title, rec.Body, rec.City, rec.Country, rec.Type,
		rec.PriceLevel, rec.Rating, tagsJSON, string(rec.Policy.Rule),
		rec.Policy.MinimumClosenessScore, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("sqlite: StoreRecommendation: %w", err)
	}
	return nil
}

// GetRecommendation retrieves a recommendation by ID.
func (s *Store) GetRecommendation(ctx context.Context, id string) (*types.Recommendation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, body, city, country, type,
		       price_level, rating, tags, rule, min_closeness, created_at, updated_at
		FROM recommendations WHERE id = ?
	`, id)

	rec, err := scanRecommendation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: GetRecommendation: %w", err)
	}
	return rec, nil
}

// ListRecommendations retrieves candidate recommendations matching the
// content filters in opts. Tag filtering happens in Go: tags are stored as
// a JSON array and SQLite has no portable containment operator.
func (s *Store) ListRecommendations(ctx context.Context, opts storage.ListOptions) ([]*types.Recommendation, error) {
	opts.Normalize()

	var conditions []string
	var args []interface{}

	if opts.City != "" {
		conditions = append(conditions, "LOWER(city) = LOWER(?)")
		args = append(args, opts.City)
	}
	if opts.Country != "" {
		conditions = append(conditions, "LOWER(country) = LOWER(?)")
		args = append(args, opts.Country)
	}
	if opts.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, opts.Type)
	}
	if opts.PriceLevel > 0 {
		conditions = append(conditions, "price_level <= ?")
		args = append(args, opts.PriceLevel)
	}
	if opts.MinRating > 0 {
		conditions = append(conditions, "rating >= ?")
		args = append(args, opts.MinRating)
	}
	if opts.OwnerID != 0 {
		conditions = append(conditions, "owner_id = ?")
		args = append(args, opts.OwnerID)
	}

	query := `
		SELECT id, owner_id, title, body, city, country, type,
		       price_level, rating, tags, rule, min_closeness, created_at, updated_at
		FROM recommendations
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: ListRecommendations: %w", err)
	}
	defer rows.Close()

	recs := make([]*types.Recommendation, 0)
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: ListRecommendations scan: %w", err)
		}
		if len(opts.Tags) > 0 && !hasAllTags(rec.Tags, opts.Tags) {
			continue
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// StoreResource creates or updates a bookable resource (upsert semantics).
func (s *Store) StoreResource(ctx context.Context, res *types.Resource) error {
	if res == nil {
		return storage.ErrInvalidInput
	}
	if res.ID == "" {
		return fmt.Errorf("%w: resource ID is required", storage.ErrInvalidInput)
	}
	if res.HostID == 0 {
		return fmt.Errorf("%w: host ID is required", storage.ErrInvalidInput)
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO resources (id, host_id, title, city, country, rule, min_closeness, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			city = excluded.city,
			country = excluded.country,
			rule = excluded.rule,
			min_closeness = excluded.min_closeness
	`, res.ID, res.HostID, res.Title, res.City, res.Country,
		string(res.WhoCanBook.Rule), res.WhoCanBook.MinimumClosenessScore, res.CreatedAt)
	if err != nil {
		return fmt.Errorf("sqlite: StoreResource: %w", err)
	}
	return nil
}

// GetResource retrieves a resource by ID.
func (s *Store) GetResource(ctx context.Context, id string) (*types.Resource, error) {
	res := &types.Resource{}
	var city, country sql.NullString
	var rule string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, host_id, title, city, country, rule, min_closeness, created_at
		FROM resources WHERE id = ?
	`, id).Scan(&res.ID, &res.HostID, &res.Title, &city, &country,
		&rule, &res.WhoCanBook.MinimumClosenessScore, &res.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: GetResource: %w", err)
	}

	res.WhoCanBook.Rule = types.PolicyRule(rule)
	if city.Valid {
		res.City = city.String
	}
	if country.Valid {
		res.Country = country.String
	}
	return res, nil
}

// CreateBooking records a booking against a resource.
func (s *Store) CreateBooking(ctx context.Context, b *types.Booking) error {
	if b == nil || b.ID == "" || b.ResourceID == "" {
		return fmt.Errorf("%w: booking ID and resource ID are required", storage.ErrInvalidInput)
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	if b.Status == "" {
		b.Status = types.BookingPending
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bookings (id, resource_id, member_id, status, start_at, end_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.ResourceID, b.MemberID, string(b.Status), b.StartAt, b.EndAt, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("sqlite: CreateBooking: %w", err)
	}
	return nil
}

// ListBookings returns bookings for a resource, newest first.
func (s *Store) ListBookings(ctx context.Context, resourceID string) ([]*types.Booking, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, resource_id, member_id, status, start_at, end_at, created_at
		FROM bookings
		WHERE resource_id = ?
		ORDER BY created_at DESC
	`, resourceID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: ListBookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]*types.Booking, 0)
	for rows.Next() {
		b := &types.Booking{}
		var status string
		if err := rows.Scan(&b.ID, &b.ResourceID, &b.MemberID, &status, &b.StartAt, &b.EndAt, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: ListBookings scan: %w", err)
		}
		b.Status = types.BookingStatus(status)
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanRecommendation scans one recommendation row including its policy
// columns and JSON tag array.
func scanRecommendation(row rowScanner) (*types.Recommendation, error) {
	rec := &types.Recommendation{}
	var body, city, country, recType, tagsJSON sql.NullString
	var rule string

	err := row.Scan(&rec.ID, &rec.OwnerID, &rec.Title, &body, &city, &country, &recType,
		&rec.PriceLevel, &rec.Rating, &tagsJSON, &rule,
		&rec.Policy.MinimumClosenessScore, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}

	rec.Policy.Rule = types.PolicyRule(rule)
	if body.Valid {
		rec.Body = body.String
	}
	if city.Valid {
		rec.City = city.String
	}
	if country.Valid {
		rec.Country = country.String
	}
	if recType.Valid {
		rec.Type = recType.String
	}
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &rec.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
	}
	return rec, nil
}

// hasAllTags reports whether tags contains every entry of required
// (case-insensitive).
func hasAllTags(tags, required []string) bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[strings.ToLower(t)] = true
	}
	for _, r := range required {
		if !set[strings.ToLower(r)] {
			return false
		}
	}
	return true
}
