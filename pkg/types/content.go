package types

import "time"

// Recommendation is a member-authored content item (a place or activity
// tip) gated by an owner-set visibility policy.
type Recommendation struct {
	ID         string       `json:"id"` // Format: rec:uuid
	OwnerID    int64        `json:"owner_id"`
	Title      string       `json:"title"`
	Body       string       `json:"body,omitempty"`
	City       string       `json:"city,omitempty"`
	Country    string       `json:"country,omitempty"`
	Type       string       `json:"type,omitempty"` // e.g. "restaurant", "museum"
	PriceLevel int          `json:"price_level,omitempty"`
	Rating     float64      `json:"rating,omitempty"`
	Tags       []string     `json:"tags,omitempty"`
	Policy     AccessPolicy `json:"policy"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Resource is a bookable item (a couch, a guided tour, a meal) hosted by
// a member. WhoCanBook uses the same rule vocabulary as recommendation
// visibility; a host can never book their own resource.
type Resource struct {
	ID         string       `json:"id"` // Format: res:uuid
	HostID     int64        `json:"host_id"`
	Title      string       `json:"title"`
	City       string       `json:"city,omitempty"`
	Country    string       `json:"country,omitempty"`
	WhoCanBook AccessPolicy `json:"who_can_book"`
	CreatedAt  time.Time    `json:"created_at"`
}

// BookingStatus is the lifecycle status of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is a member's reservation against a resource. Bookings are
// created only after the eligibility check passes.
type Booking struct {
	ID         string        `json:"id"` // Format: bkg:uuid
	ResourceID string        `json:"resource_id"`
	MemberID   int64         `json:"member_id"`
	Status     BookingStatus `json:"status"`
	StartAt    time.Time     `json:"start_at"`
	EndAt      time.Time     `json:"end_at"`
	CreatedAt  time.Time     `json:"created_at"`
}
