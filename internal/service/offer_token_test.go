package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/models"
)

func testOffer(now time.Time) models.Offer {
	return models.Offer{
		ID:              "offer-1",
		EventID:         "E1",
		CandidateUserID: "A",
		IssuedAt:        now,
		Deadline:        now.Add(time.Minute),
	}
}

func TestOfferTokens_RoundTrip(t *testing.T) {
	clock := newFakeClock()
	tokens := NewOfferTokens("secret", clock.Now)

	tok, err := tokens.Issue(testOffer(clock.Now()))
	require.NoError(t, err)

	claims, err := tokens.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "offer-1", claims.OfferID)
	assert.Equal(t, "E1", claims.EventID)
	assert.Equal(t, "A", claims.UserID)
	assert.Equal(t, clock.Now().Add(time.Minute).Unix(), claims.ExpiresAt.Unix())
}

func TestOfferTokens_RejectsExpiredAndForeignTokens(t *testing.T) {
	clock := newFakeClock()
	tokens := NewOfferTokens("secret", clock.Now)

	tok, err := tokens.Issue(testOffer(clock.Now()))
	require.NoError(t, err)

	other := NewOfferTokens("another-secret", clock.Now)
	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidOfferToken)

	clock.Advance(2 * time.Minute)
	_, err = tokens.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidOfferToken)

	_, err = tokens.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidOfferToken)
}
