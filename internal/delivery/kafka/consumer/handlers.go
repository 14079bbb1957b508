package consumer

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/IBM/sarama"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/delivery/kafka"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/service"
)

// HandleOfferReply applies a confirm or reject sent from a chat.
// Replies that can never succeed are logged and acknowledged so they are
// not redelivered.
func (c *Consumer) HandleOfferReply(ctx context.Context, message *sarama.ConsumerMessage) error {
	var m kafka.OfferReplyMessage
	if err := json.Unmarshal(message.Value, &m); err != nil {
		c.l.Warnf(ctx, "delivery.kafka.consumer.handlers.HandleOfferReply: dropping malformed reply: %v", err)
		return nil
	}

	out, err := c.wlSvc.HandleOfferReply(ctx, service.OfferReplyInput{
		Token:  m.OfferToken,
		Action: service.OfferAction(m.Action),
	})
	if err != nil {
		if isFinal(err) {
			c.l.Warnf(ctx, "delivery.kafka.consumer.handlers.HandleOfferReply: dropping reply: %v", err)
			return nil
		}
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandleOfferReply: %v", err)
		return err
	}

	c.l.Info(ctx, "offer reply handled",
		"event_id", out.EventID,
		"user_id", out.UserID,
		"outcome", string(out.Outcome),
	)
	return nil
}

func isFinal(err error) bool {
	return errors.Is(err, service.ErrInvalidOfferToken) ||
		errors.Is(err, service.ErrStaleOffer) ||
		errors.Is(err, service.ErrInvalidInput) ||
		errors.Is(err, service.ErrNotInWaitlist)
}
