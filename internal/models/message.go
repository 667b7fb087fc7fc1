package models

import "time"

type MessageKind string

const (
	MessageChat   MessageKind = "chat"
	MessageSystem MessageKind = "system"
)

// Message is one append-only timeline entry scoped to a partnership. System
// messages have an empty SenderID.
type Message struct {
	ID            string      `json:"id"`
	PartnershipID string      `json:"partnership_id"`
	SenderID      string      `json:"sender_id,omitempty"`
	Kind          MessageKind `json:"kind"`
	Body          string      `json:"body"`
	CreatedAt     time.Time   `json:"created_at"`
}
