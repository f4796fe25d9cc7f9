// Package booking provides the resource-booking collaborator: eligibility
// checks against the access-policy evaluator plus persisted bookings.
// Slot generation and reminder scheduling are out of scope here; this
// service only decides who may book and records the result.
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roamsocial/trustgraph/internal/engine"
	"github.com/roamsocial/trustgraph/internal/notify"
	"github.com/roamsocial/trustgraph/internal/storage"
	"github.com/roamsocial/trustgraph/pkg/types"
)

// Service wires the trust-graph engine, the content store, and the event
// hub into the booking flow.
type Service struct {
	engine  *engine.Engine
	content storage.ContentStore
	hub     *notify.Hub
}

// NewService creates a booking service. The hub may be nil when event
// publication is not wanted (tests).
func NewService(eng *engine.Engine, content storage.ContentStore, hub *notify.Hub) *Service {
	return &Service{
		engine:  eng,
		content: content,
		hub:     hub,
	}
}

// Eligibility is the result of a booking eligibility check. A denial is a
// normal result carrying a user-facing reason, not an error.
type Eligibility struct {
	CanBook        bool                  `json:"can_book"`
	Reason         string                `json:"reason,omitempty"`
	ConnectionInfo *types.ConnectionInfo `json:"connection_info"`
}

// CanBook evaluates whether viewerID may book hostID's resource under the
// given policy. It computes connection info fresh and applies the rule
// table plus the self-booking guard.
func (s *Service) CanBook(ctx context.Context, viewerID, hostID int64, policy types.AccessPolicy) (*Eligibility, error) {
	info, err := s.engine.Info(ctx, viewerID, hostID)
	if err != nil {
		return nil, fmt.Errorf("booking: eligibility for (%d, %d): %w", viewerID, hostID, err)
	}

	decision := engine.EvaluateBooking(viewerID, hostID, policy, info)
	return &Eligibility{
		CanBook:        decision.Allowed,
		Reason:         decision.Reason,
		ConnectionInfo: info,
	}, nil
}

// CheckResource evaluates eligibility against a stored resource's
// who-can-book policy. Returns storage.ErrNotFound when the resource
// doesn't exist.
func (s *Service) CheckResource(ctx context.Context, viewerID int64, resourceID string) (*Eligibility, error) {
	res, err := s.content.GetResource(ctx, resourceID)
	if err != nil {
		return nil, fmt.Errorf("booking: load resource %s: %w", resourceID, err)
	}
	return s.CanBook(ctx, viewerID, res.HostID, res.WhoCanBook)
}

// Book records a booking for viewerID against the resource after the
// eligibility check passes. When eligibility fails, the Eligibility result
// carries the denial reason and no booking is created; this is not an
// error. Successful bookings are published to the event hub.
func (s *Service) Book(ctx context.Context, viewerID int64, resourceID string, startAt, endAt time.Time) (*types.Booking, *Eligibility, error) {
	elig, err := s.CheckResource(ctx, viewerID, resourceID)
	if err != nil {
		return nil, nil, err
	}
	if !elig.CanBook {
		return nil, elig, nil
	}

	b := &types.Booking{
		ID:         "bkg:" + uuid.NewString(),
		ResourceID: resourceID,
		MemberID:   viewerID,
		Status:     types.BookingPending,
		StartAt:    startAt,
		EndAt:      endAt,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.content.CreateBooking(ctx, b); err != nil {
		return nil, nil, fmt.Errorf("booking: persist booking: %w", err)
	}

	if s.hub != nil {
		s.hub.Publish(notify.Event{
			Kind:    notify.EventBookingCreated,
			Payload: b,
		})
	}
	return b, elig, nil
}
