package kafka

import "time"

// Notifications published for the chat front-end

type OfferMessage struct {
	OfferID    string    `json:"offer_id"`
	EventID    string    `json:"event_id"`
	EventTitle string    `json:"event_title,omitempty"`
	UserID     string    `json:"user_id"`
	ChatID     string    `json:"chat_id"`
	SlotID     string    `json:"slot_id"`
	OfferToken string    `json:"offer_token"`
	IssuedAt   time.Time `json:"issued_at"`
	Deadline   time.Time `json:"deadline"`
	Timestamp  time.Time `json:"timestamp"`
}

type OutcomeMessage struct {
	OfferID    string    `json:"offer_id"`
	EventID    string    `json:"event_id"`
	EventTitle string    `json:"event_title,omitempty"`
	UserID     string    `json:"user_id"`
	ChatID     string    `json:"chat_id"`
	Outcome    string    `json:"outcome"` // booked, slot_gone, booking_rejected, rate_limited, transport_error, rejected, expired
	Details    string    `json:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

type PositionChangedMessage struct {
	EventID     string    `json:"event_id"`
	EventTitle  string    `json:"event_title,omitempty"`
	UserID      string    `json:"user_id"`
	ChatID      string    `json:"chat_id"`
	OldPosition int       `json:"old_position"`
	NewPosition int       `json:"new_position"`
	Timestamp   time.Time `json:"timestamp"`
}

// Domain events published for other services

type WaitlistJoinedEvent struct {
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	ChatID    string    `json:"chat_id"`
	Position  int       `json:"position"`
	JoinedAt  time.Time `json:"joined_at"`
	Timestamp time.Time `json:"timestamp"`
}

type WaitlistLeftEvent struct {
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Position  int       `json:"position"`
	Reason    string    `json:"reason"` // user_left, booked, offer_rejected
	Timestamp time.Time `json:"timestamp"`
}

// Consumed from the chat front-end

type OfferReplyMessage struct {
	OfferToken string `json:"offer_token"`
	Action     string `json:"action"` // confirm, reject
}
