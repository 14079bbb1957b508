package service

import (
	"time"

	"github.com/vogiaan1904/ticketbottle-waitlist/internal/models"
)

type JoinStatus string

const (
	JoinStatusJoined        JoinStatus = "joined"
	JoinStatusAlreadyJoined JoinStatus = "already_joined"
)

type JoinInput struct {
	EventID    string `json:"event_id"`
	UserID     string `json:"user_id"`
	ChatID     string `json:"chat_id"`
	EventTitle string `json:"event_title"`
}

type JoinOutput struct {
	Status      JoinStatus `json:"status"`
	Position    int        `json:"position"`
	PeopleAhead int        `json:"people_ahead"`
}

type LeaveOutput struct {
	Deltas []models.PositionDelta `json:"deltas"`
}

type WaitlistStatusOutput struct {
	EventID string        `json:"event_id"`
	Size    int           `json:"size"`
	MaxSize int           `json:"max_size"`
	Held    bool          `json:"held"`
	Offer   *models.Offer `json:"offer,omitempty"`
}

type OfferAction string

const (
	OfferActionConfirm OfferAction = "confirm"
	OfferActionReject  OfferAction = "reject"
)

type OfferReplyInput struct {
	Token  string      `json:"offer_token"`
	Action OfferAction `json:"action"`
}

type OfferReplyOutput struct {
	EventID string              `json:"event_id"`
	UserID  string              `json:"user_id"`
	Outcome models.OfferOutcome `json:"outcome"`
}

type SweeperStatus struct {
	IsRunning    bool      `json:"is_running"`
	StartedAt    time.Time `json:"started_at,omitempty"`
	LastSweep    time.Time `json:"last_sweep,omitempty"`
	EventsActive int       `json:"events_active"`
	ErrorCount   int64     `json:"error_count"`
}
