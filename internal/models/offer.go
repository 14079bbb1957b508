package models

import "time"

// Offer is the single outstanding negotiation for an event.
type Offer struct {
	ID              string    `json:"id"`
	EventID         string    `json:"event_id"`
	EventTitle      string    `json:"event_title,omitempty"`
	CandidateUserID string    `json:"candidate_user_id"`
	ChatID          string    `json:"chat_id"`
	SlotID          string    `json:"slot_id"`
	IssuedAt        time.Time `json:"issued_at"`
	Deadline        time.Time `json:"deadline"`
}

func (o Offer) Expired(now time.Time) bool {
	return !now.Before(o.Deadline)
}

type OfferOutcome string

const (
	OfferOutcomeBooked          OfferOutcome = "booked"
	OfferOutcomeSlotGone        OfferOutcome = "slot_gone"
	OfferOutcomeBookingRejected OfferOutcome = "booking_rejected"
	OfferOutcomeRateLimited     OfferOutcome = "rate_limited"
	OfferOutcomeTransportError  OfferOutcome = "transport_error"
	OfferOutcomeRejected        OfferOutcome = "rejected"
	OfferOutcomeExpired         OfferOutcome = "expired"
	OfferOutcomeCancelled       OfferOutcome = "cancelled"
)

type BookingResultKind string

const (
	BookingSuccess        BookingResultKind = "success"
	BookingNoSlot         BookingResultKind = "no_slot"
	BookingRejected       BookingResultKind = "rejected"
	BookingRateLimited    BookingResultKind = "rate_limited"
	BookingTransportError BookingResultKind = "transport_error"
)

// BookingResult is what the external booking service answered for one Book call.
type BookingResult struct {
	Kind    BookingResultKind `json:"kind"`
	Details string            `json:"details,omitempty"`
	Reason  string            `json:"reason,omitempty"`
}

func (r BookingResult) Outcome() OfferOutcome {
	switch r.Kind {
	case BookingSuccess:
		return OfferOutcomeBooked
	case BookingNoSlot:
		return OfferOutcomeSlotGone
	case BookingRateLimited:
		return OfferOutcomeRateLimited
	case BookingTransportError:
		return OfferOutcomeTransportError
	default:
		return OfferOutcomeBookingRejected
	}
}
