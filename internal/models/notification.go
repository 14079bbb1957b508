package models

// OfferNotification asks a candidate to confirm or reject an offered slot.
// Token is echoed back by the front-end with the reply.
type OfferNotification struct {
	Offer Offer  `json:"offer"`
	Token string `json:"token"`
}

type OutcomeNotification struct {
	EventID    string       `json:"event_id"`
	EventTitle string       `json:"event_title,omitempty"`
	UserID     string       `json:"user_id"`
	ChatID     string       `json:"chat_id"`
	OfferID    string       `json:"offer_id"`
	Outcome    OfferOutcome `json:"outcome"`
	Details    string       `json:"details,omitempty"`
}

type PositionChangeNotification struct {
	EventID    string        `json:"event_id"`
	EventTitle string        `json:"event_title,omitempty"`
	Delta      PositionDelta `json:"delta"`
}
