// Package types defines the core domain types shared across the trust-graph
// engine: members, relationship edges, interaction events, access policies,
// and the content items those policies gate.
package types

import "time"

// Member is a social-network identity. Members are owned by the identity
// subsystem; this engine reads them for locality and ownership checks only.
type Member struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city,omitempty"`    // Home locality city
	Country   string    `json:"country,omitempty"` // Home locality country
	CreatedAt time.Time `json:"created_at"`
}

// RSVPStatus is a member's attendance response to an event.
type RSVPStatus string

const (
	RSVPGoing    RSVPStatus = "going"
	RSVPMaybe    RSVPStatus = "maybe"
	RSVPDeclined RSVPStatus = "declined"
)

// CountsAsAttending reports whether the status counts toward shared-event
// overlap between two members. Declined responses do not.
func (s RSVPStatus) CountsAsAttending() bool {
	return s == RSVPGoing || s == RSVPMaybe
}
