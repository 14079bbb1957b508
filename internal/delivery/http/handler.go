package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/models"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/service"
	"github.com/vogiaan1904/ticketbottle-waitlist/pkg/logger"
	"github.com/vogiaan1904/ticketbottle-waitlist/pkg/response"
)

type Handler struct {
	svc service.WaitlistService
	l   logger.Logger
}

func NewHandler(svc service.WaitlistService, l logger.Logger) *Handler {
	return &Handler{
		svc: svc,
		l:   l,
	}
}

func (h *Handler) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "waitlist-service",
		"sweeper": h.svc.GetSweeperStatus(),
	})
}

// Join handles POST /events/:event_id/waitlist
func (h *Handler) Join(c echo.Context) error {
	var req joinRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errInvalidInput)
	}

	out, err := h.svc.Join(c.Request().Context(), service.JoinInput{
		EventID:    c.Param("event_id"),
		UserID:     req.UserID,
		ChatID:     req.ChatID,
		EventTitle: req.EventTitle,
	})
	if err != nil {
		return h.fail(c, "Join", err)
	}

	code := http.StatusCreated
	if out.Status == service.JoinStatusAlreadyJoined {
		code = http.StatusOK
	}
	return response.OK(c, code, out)
}

// Leave handles DELETE /events/:event_id/waitlist/:user_id
func (h *Handler) Leave(c echo.Context) error {
	out, err := h.svc.Leave(c.Request().Context(), c.Param("event_id"), c.Param("user_id"))
	if err != nil {
		return h.fail(c, "Leave", err)
	}
	return response.OK(c, http.StatusOK, out)
}

// Position handles GET /events/:event_id/waitlist/:user_id
func (h *Handler) Position(c echo.Context) error {
	eventID, userID := c.Param("event_id"), c.Param("user_id")

	pos, err := h.svc.PositionOf(c.Request().Context(), eventID, userID)
	if err != nil {
		return h.fail(c, "Position", err)
	}

	return response.OK(c, http.StatusOK, positionResponse{
		EventID:     eventID,
		UserID:      userID,
		Position:    pos,
		PeopleAhead: pos - 1,
	})
}

// Status handles GET /events/:event_id/waitlist
func (h *Handler) Status(c echo.Context) error {
	out, err := h.svc.Status(c.Request().Context(), c.Param("event_id"))
	if err != nil {
		return h.fail(c, "Status", err)
	}
	return response.OK(c, http.StatusOK, out)
}

func (h *Handler) Confirm(c echo.Context) error {
	var req offerActionRequest
	if err := c.Bind(&req); err != nil || req.UserID == "" {
		return response.Error(c, errInvalidInput)
	}

	eventID := c.Param("event_id")
	outcome, err := h.svc.Confirm(c.Request().Context(), eventID, req.UserID)
	if err != nil {
		return h.fail(c, "Confirm", err)
	}

	return response.OK(c, http.StatusOK, confirmResponse{
		EventID: eventID,
		UserID:  req.UserID,
		Outcome: string(outcome),
	})
}

func (h *Handler) Reject(c echo.Context) error {
	var req offerActionRequest
	if err := c.Bind(&req); err != nil || req.UserID == "" {
		return response.Error(c, errInvalidInput)
	}

	eventID := c.Param("event_id")
	if err := h.svc.Reject(c.Request().Context(), eventID, req.UserID); err != nil {
		return h.fail(c, "Reject", err)
	}

	return response.OK(c, http.StatusOK, confirmResponse{
		EventID: eventID,
		UserID:  req.UserID,
		Outcome: string(models.OfferOutcomeRejected),
	})
}

// OfferReply handles POST /offers/reply with a signed offer token.
func (h *Handler) OfferReply(c echo.Context) error {
	var req offerReplyRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errInvalidInput)
	}

	out, err := h.svc.HandleOfferReply(c.Request().Context(), service.OfferReplyInput{
		Token:  req.OfferToken,
		Action: service.OfferAction(req.Action),
	})
	if err != nil {
		return h.fail(c, "OfferReply", err)
	}
	return response.OK(c, http.StatusOK, out)
}

func (h *Handler) Hold(c echo.Context) error {
	id, err := h.svc.Hold(c.Request().Context(), c.Param("event_id"))
	if err != nil {
		return h.fail(c, "Hold", err)
	}
	return response.OK(c, http.StatusOK, holdResponse{EventID: id, Held: true})
}

func (h *Handler) Release(c echo.Context) error {
	id, err := h.svc.Release(c.Request().Context(), c.Param("event_id"))
	if err != nil {
		return h.fail(c, "Release", err)
	}
	return response.OK(c, http.StatusOK, holdResponse{EventID: id, Held: false})
}

// SetCredential handles PUT /users/:user_id/credential
func (h *Handler) SetCredential(c echo.Context) error {
	var req credentialRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errInvalidInput)
	}

	userID := c.Param("user_id")
	if err := h.svc.SetCredential(c.Request().Context(), userID, req.Cookie); err != nil {
		return h.fail(c, "SetCredential", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RemoveCredential(c echo.Context) error {
	if err := h.svc.RemoveCredential(c.Request().Context(), c.Param("user_id")); err != nil {
		return h.fail(c, "RemoveCredential", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SweeperStatus(c echo.Context) error {
	return response.OK(c, http.StatusOK, h.svc.GetSweeperStatus())
}

func (h *Handler) fail(c echo.Context, op string, err error) error {
	mapped := mapHTTPError(err)
	if mapped == err {
		h.l.Errorf(c.Request().Context(), "delivery.http.Handler.%s: %v", op, err)
	}
	return response.Error(c, mapped)
}
