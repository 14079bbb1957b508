package http

type joinRequest struct {
	UserID     string `json:"user_id"`
	ChatID     string `json:"chat_id"`
	EventTitle string `json:"event_title"`
}

type offerActionRequest struct {
	UserID string `json:"user_id"`
}

type offerReplyRequest struct {
	OfferToken string `json:"offer_token"`
	Action     string `json:"action"`
}

type credentialRequest struct {
	Cookie string `json:"cookie"`
}

type positionResponse struct {
	EventID     string `json:"event_id"`
	UserID      string `json:"user_id"`
	Position    int    `json:"position"`
	PeopleAhead int    `json:"people_ahead"`
}

type confirmResponse struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
	Outcome string `json:"outcome"`
}

type holdResponse struct {
	EventID string `json:"event_id"`
	Held    bool   `json:"held"`
}
