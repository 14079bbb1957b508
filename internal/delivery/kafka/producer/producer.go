package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	kafka "github.com/vogiaan1904/ticketbottle-waitlist/internal/delivery/kafka"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/models"
	"github.com/vogiaan1904/ticketbottle-waitlist/pkg/logger"
	"github.com/vogiaan1904/ticketbottle-waitlist/pkg/util"
)

// Producer publishes user notifications and waitlist domain events.
// It satisfies service.NotificationRouter and service.EventPublisher.
type Producer interface {
	NotifyOffer(ctx context.Context, n models.OfferNotification) error
	NotifyOutcome(ctx context.Context, n models.OutcomeNotification) error
	NotifyPositionChange(ctx context.Context, n models.PositionChangeNotification) error
	PublishJoined(ctx context.Context, e models.WaitlistEntry) error
	PublishLeft(ctx context.Context, e models.WaitlistEntry, reason models.LeaveReason) error
	Close() error
}

type implProducer struct {
	l    logger.Logger
	prod sarama.SyncProducer
	now  func() time.Time
}

func NewProducer(prod sarama.SyncProducer, l logger.Logger) Producer {
	return &implProducer{
		l:    l,
		prod: prod,
		now:  time.Now,
	}
}

func (p *implProducer) NotifyOffer(ctx context.Context, n models.OfferNotification) error {
	o := n.Offer
	return p.publish(ctx, kafka.TopicNotifyOffer, o.EventID, kafka.OfferMessage{
		OfferID:    o.ID,
		EventID:    o.EventID,
		EventTitle: o.EventTitle,
		UserID:     o.CandidateUserID,
		ChatID:     o.ChatID,
		SlotID:     o.SlotID,
		OfferToken: n.Token,
		IssuedAt:   o.IssuedAt,
		Deadline:   o.Deadline,
		Timestamp:  p.now(),
	})
}

func (p *implProducer) NotifyOutcome(ctx context.Context, n models.OutcomeNotification) error {
	return p.publish(ctx, kafka.TopicNotifyOutcome, n.EventID, kafka.OutcomeMessage{
		OfferID:    n.OfferID,
		EventID:    n.EventID,
		EventTitle: n.EventTitle,
		UserID:     n.UserID,
		ChatID:     n.ChatID,
		Outcome:    string(n.Outcome),
		Details:    n.Details,
		Timestamp:  p.now(),
	})
}

func (p *implProducer) NotifyPositionChange(ctx context.Context, n models.PositionChangeNotification) error {
	return p.publish(ctx, kafka.TopicNotifyPosition, n.EventID, kafka.PositionChangedMessage{
		EventID:     n.EventID,
		EventTitle:  n.EventTitle,
		UserID:      n.Delta.UserID,
		ChatID:      n.Delta.ChatID,
		OldPosition: n.Delta.OldPosition,
		NewPosition: n.Delta.NewPosition,
		Timestamp:   p.now(),
	})
}

func (p *implProducer) PublishJoined(ctx context.Context, e models.WaitlistEntry) error {
	return p.publish(ctx, kafka.TopicWaitlistJoined, e.EventID, kafka.WaitlistJoinedEvent{
		EventID:   e.EventID,
		UserID:    e.UserID,
		ChatID:    e.ChatID,
		Position:  e.Position,
		JoinedAt:  e.JoinedAt,
		Timestamp: p.now(),
	})
}

func (p *implProducer) PublishLeft(ctx context.Context, e models.WaitlistEntry, reason models.LeaveReason) error {
	return p.publish(ctx, kafka.TopicWaitlistLeft, e.EventID, kafka.WaitlistLeftEvent{
		EventID:   e.EventID,
		UserID:    e.UserID,
		Position:  e.Position,
		Reason:    string(reason),
		Timestamp: p.now(),
	})
}

func (p *implProducer) publish(ctx context.Context, topic, key string, v any) error {
	val, err := json.Marshal(v)
	if err != nil {
		p.l.Errorf(ctx, "delivery.kafka.producer.publish: %v", err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key), // Partition by event_id for ordering
		Value: sarama.ByteEncoder(val),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("timestamp"),
				Value: []byte(util.TimeToISO8601Str(p.now())),
			},
		},
	}

	if _, _, err := p.prod.SendMessage(msg); err != nil {
		p.l.Errorf(ctx, "delivery.kafka.producer.publish: topic=%s: %v", topic, err)
		return err
	}

	return nil
}

func (p *implProducer) Close() error {
	return p.prod.Close()
}
