package http

import (
	"errors"
	"net/http"

	"github.com/vogiaan1904/ticketbottle-waitlist/internal/service"
	pkgErrors "github.com/vogiaan1904/ticketbottle-waitlist/pkg/errors"
)

var (
	errWaitlistFull      = pkgErrors.NewHTTPError("WTL001", "Waitlist is full", http.StatusConflict)
	errNotInWaitlist     = pkgErrors.NewHTTPError("WTL002", "User is not in the waitlist", http.StatusNotFound)
	errWaitlistEmpty     = pkgErrors.NewHTTPError("WTL003", "Waitlist is empty", http.StatusNotFound)
	errStaleOffer        = pkgErrors.NewHTTPError("WTL004", "No live offer for this user", http.StatusConflict)
	errNoCredential      = pkgErrors.NewHTTPError("WTL005", "No booking credential for user", http.StatusPreconditionFailed)
	errInvalidOfferToken = pkgErrors.NewHTTPError("WTL006", "Invalid offer token", http.StatusUnauthorized)
	errInvalidInput      = pkgErrors.NewHTTPError("WTL007", "Invalid input", http.StatusBadRequest)
	errRateLimited       = pkgErrors.NewHTTPError("WTL008", "Booking service rate limited", http.StatusTooManyRequests)
)

func mapHTTPError(err error) error {
	switch {
	case errors.Is(err, service.ErrWaitlistFull):
		return errWaitlistFull
	case errors.Is(err, service.ErrNotInWaitlist):
		return errNotInWaitlist
	case errors.Is(err, service.ErrWaitlistEmpty):
		return errWaitlistEmpty
	case errors.Is(err, service.ErrStaleOffer):
		return errStaleOffer
	case errors.Is(err, service.ErrNoCredential):
		return errNoCredential
	case errors.Is(err, service.ErrInvalidOfferToken):
		return errInvalidOfferToken
	case errors.Is(err, service.ErrInvalidInput):
		return errInvalidInput
	case errors.Is(err, service.ErrRateLimited):
		return errRateLimited
	default:
		return err
	}
}
