package models

import "time"

type PartnershipStatus string

const (
	PartnershipPending   PartnershipStatus = "pending"
	PartnershipActive    PartnershipStatus = "active"
	PartnershipPaused    PartnershipStatus = "paused"
	PartnershipCompleted PartnershipStatus = "completed"
)

// Terminal reports whether the status admits no further transitions.
func (s PartnershipStatus) Terminal() bool {
	return s == PartnershipCompleted
}

type Partnership struct {
	ID         string            `json:"id"`
	UserA      string            `json:"user_a"` // initiator
	UserB      string            `json:"user_b,omitempty"`
	Status     PartnershipStatus `json:"status"`
	InviteCode string            `json:"invite_code,omitempty"`
	Timezone   string            `json:"timezone,omitempty"` // IANA name, empty means UTC
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// HasMember reports whether userID is one of the two partners.
func (p Partnership) HasMember(userID string) bool {
	return userID != "" && (p.UserA == userID || p.UserB == userID)
}

// OtherMember returns the partner of userID, or "" if userID is not a member
// or the partnership has no second member yet.
func (p Partnership) OtherMember(userID string) string {
	switch userID {
	case p.UserA:
		return p.UserB
	case p.UserB:
		return p.UserA
	}
	return ""
}
