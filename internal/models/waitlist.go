package models

import "time"

// WaitlistEntry is one candidate waiting for one event.
// Positions of one event are always exactly 1..N in join order.
type WaitlistEntry struct {
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id"`
	ChatID     string    `json:"chat_id"`
	EventTitle string    `json:"event_title,omitempty"`
	Position   int       `json:"position"`
	JoinedAt   time.Time `json:"joined_at"`
}

func (e WaitlistEntry) PeopleAhead() int {
	return e.Position - 1
}

// PositionDelta describes an entry whose position moved after a removal.
type PositionDelta struct {
	UserID      string `json:"user_id"`
	ChatID      string `json:"chat_id"`
	OldPosition int    `json:"old_position"`
	NewPosition int    `json:"new_position"`
}

// LeaveReason records why an entry left the waitlist.
type LeaveReason string

const (
	LeaveReasonUserLeft LeaveReason = "user_left"
	LeaveReasonBooked   LeaveReason = "booked"
	LeaveReasonRejected LeaveReason = "offer_rejected"
)
