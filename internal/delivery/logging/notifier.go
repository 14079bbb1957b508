// Package logging delivers notifications to the service log. It stands in
// for the Kafka producer when Kafka is disabled.
package logging

import (
	"context"

	"github.com/vogiaan1904/ticketbottle-waitlist/internal/models"
	"github.com/vogiaan1904/ticketbottle-waitlist/pkg/logger"
)

type Notifier struct {
	l logger.Logger
}

func NewNotifier(l logger.Logger) *Notifier {
	return &Notifier{l: l}
}

func (n *Notifier) NotifyOffer(ctx context.Context, m models.OfferNotification) error {
	n.l.Info(ctx, "notify offer",
		"event_id", m.Offer.EventID,
		"user_id", m.Offer.CandidateUserID,
		"chat_id", m.Offer.ChatID,
		"slot_id", m.Offer.SlotID,
		"deadline", m.Offer.Deadline,
	)
	return nil
}

func (n *Notifier) NotifyOutcome(ctx context.Context, m models.OutcomeNotification) error {
	n.l.Info(ctx, "notify outcome",
		"event_id", m.EventID,
		"user_id", m.UserID,
		"chat_id", m.ChatID,
		"outcome", string(m.Outcome),
		"details", m.Details,
	)
	return nil
}

func (n *Notifier) NotifyPositionChange(ctx context.Context, m models.PositionChangeNotification) error {
	n.l.Info(ctx, "notify position",
		"event_id", m.EventID,
		"user_id", m.Delta.UserID,
		"old_position", m.Delta.OldPosition,
		"new_position", m.Delta.NewPosition,
	)
	return nil
}

func (n *Notifier) PublishJoined(ctx context.Context, e models.WaitlistEntry) error {
	n.l.Debug(ctx, "waitlist joined", "event_id", e.EventID, "user_id", e.UserID, "position", e.Position)
	return nil
}

func (n *Notifier) PublishLeft(ctx context.Context, e models.WaitlistEntry, reason models.LeaveReason) error {
	n.l.Debug(ctx, "waitlist left", "event_id", e.EventID, "user_id", e.UserID, "reason", string(reason))
	return nil
}
