package service

import (
	"context"

	"github.com/vogiaan1904/ticketbottle-waitlist/internal/models"
)

// BookingGateway talks to the external booking service.
type BookingGateway interface {
	// ProbeSlot returns the id of a free slot for the event, if any.
	ProbeSlot(ctx context.Context, eventID, credential string) (slotID string, ok bool, err error)
	Book(ctx context.Context, credential, slotID string) models.BookingResult
}

// NotificationRouter delivers messages to users. Delivery is best effort.
type NotificationRouter interface {
	NotifyOffer(ctx context.Context, n models.OfferNotification) error
	NotifyOutcome(ctx context.Context, n models.OutcomeNotification) error
	NotifyPositionChange(ctx context.Context, n models.PositionChangeNotification) error
}

// EventPublisher announces waitlist membership changes to other services.
type EventPublisher interface {
	PublishJoined(ctx context.Context, entry models.WaitlistEntry) error
	PublishLeft(ctx context.Context, entry models.WaitlistEntry, reason models.LeaveReason) error
}
