package consumer

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/delivery/kafka"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/models"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/service"
	"github.com/vogiaan1904/ticketbottle-waitlist/pkg/logger"
)

type fakeWaitlistService struct {
	service.WaitlistService
	replies []service.OfferReplyInput
	err     error
}

func (f *fakeWaitlistService) HandleOfferReply(_ context.Context, in service.OfferReplyInput) (service.OfferReplyOutput, error) {
	f.replies = append(f.replies, in)
	if f.err != nil {
		return service.OfferReplyOutput{}, f.err
	}
	return service.OfferReplyOutput{EventID: "E1", UserID: "A", Outcome: models.OfferOutcomeBooked}, nil
}

func newTestConsumer(svc service.WaitlistService) *Consumer {
	return NewConsumer(nil, svc, logger.InitializeTestZapLogger())
}

func replyMessage(value string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{Topic: kafka.TopicOfferReply, Value: []byte(value)}
}

func TestHandleOfferReply_ForwardsTokenAndAction(t *testing.T) {
	svc := &fakeWaitlistService{}
	c := newTestConsumer(svc)

	err := c.processMessage(context.Background(), replyMessage(`{"offer_token":"tok","action":"confirm"}`))

	require.NoError(t, err)
	require.Len(t, svc.replies, 1)
	assert.Equal(t, "tok", svc.replies[0].Token)
	assert.Equal(t, service.OfferActionConfirm, svc.replies[0].Action)
}

func TestHandleOfferReply_DropsFinalFailures(t *testing.T) {
	for _, err := range []error{service.ErrInvalidOfferToken, service.ErrStaleOffer, service.ErrInvalidInput} {
		svc := &fakeWaitlistService{err: err}
		c := newTestConsumer(svc)

		assert.NoError(t, c.processMessage(context.Background(), replyMessage(`{"offer_token":"x","action":"reject"}`)))
	}
}

func TestHandleOfferReply_MalformedPayloadIsDropped(t *testing.T) {
	svc := &fakeWaitlistService{}
	c := newTestConsumer(svc)

	assert.NoError(t, c.processMessage(context.Background(), replyMessage(`not json`)))
	assert.Empty(t, svc.replies)
}

func TestHandleOfferReply_TransientErrorIsReturned(t *testing.T) {
	boom := errors.New("store down")
	svc := &fakeWaitlistService{err: boom}
	c := newTestConsumer(svc)

	err := c.processMessage(context.Background(), replyMessage(`{"offer_token":"x","action":"confirm"}`))

	assert.ErrorIs(t, err, boom)
}

func TestProcessMessage_UnknownTopicIsIgnored(t *testing.T) {
	svc := &fakeWaitlistService{}
	c := newTestConsumer(svc)

	assert.NoError(t, c.processMessage(context.Background(), &sarama.ConsumerMessage{Topic: "other"}))
	assert.Empty(t, svc.replies)
}
