package service

import "errors"

var (
	ErrWaitlistFull      = errors.New("waitlist is full")
	ErrNotInWaitlist     = errors.New("user is not in the waitlist")
	ErrWaitlistEmpty     = errors.New("waitlist is empty")
	ErrStaleOffer        = errors.New("no live offer for this user")
	ErrNoCredential      = errors.New("no booking credential for user")
	ErrInvalidOfferToken = errors.New("invalid offer token")
	ErrInvalidInput      = errors.New("invalid input")

	// ErrRateLimited is returned by BookingGateway.ProbeSlot when the
	// booking service throttles us.
	ErrRateLimited = errors.New("booking service rate limited")
)
