package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/models"
)

// OfferClaims identifies the offer a reply refers to.
type OfferClaims struct {
	OfferID   string
	EventID   string
	UserID    string
	ExpiresAt time.Time
}

// OfferTokens signs and verifies the tokens attached to offer notifications.
type OfferTokens struct {
	secret []byte
	now    func() time.Time
}

func NewOfferTokens(secret string, now func() time.Time) *OfferTokens {
	if now == nil {
		now = time.Now
	}
	return &OfferTokens{secret: []byte(secret), now: now}
}

func (t *OfferTokens) Issue(o models.Offer) (string, error) {
	claims := jwt.MapClaims{
		"offer_id": o.ID,
		"user_id":  o.CandidateUserID,
		"event_id": o.EventID,
		"exp":      o.Deadline.Unix(),
		"iat":      o.IssuedAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign offer token: %w", err)
	}

	return tokenStr, nil
}

func (t *OfferTokens) Parse(token string) (OfferClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil {
		return OfferClaims{}, fmt.Errorf("%w: %v", ErrInvalidOfferToken, err)
	}
	if !parsed.Valid {
		return OfferClaims{}, ErrInvalidOfferToken
	}

	out := OfferClaims{}
	out.OfferID, _ = claims["offer_id"].(string)
	out.EventID, _ = claims["event_id"].(string)
	out.UserID, _ = claims["user_id"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}

	if out.OfferID == "" || out.EventID == "" || out.UserID == "" {
		return OfferClaims{}, fmt.Errorf("%w: missing claims", ErrInvalidOfferToken)
	}

	return out, nil
}
