package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewServer(h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	MapRoutes(e, h)
	return e
}

func MapRoutes(e *echo.Echo, h *Handler) {
	e.GET("/healthz", h.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")

	events := api.Group("/events/:event_id")
	events.POST("/waitlist", h.Join)
	events.GET("/waitlist", h.Status)
	events.GET("/waitlist/:user_id", h.Position)
	events.DELETE("/waitlist/:user_id", h.Leave)
	events.POST("/offer/confirm", h.Confirm)
	events.POST("/offer/reject", h.Reject)
	events.PUT("/hold", h.Hold)
	events.DELETE("/hold", h.Release)

	api.PUT("/users/:user_id/credential", h.SetCredential)
	api.DELETE("/users/:user_id/credential", h.RemoveCredential)

	api.POST("/offers/reply", h.OfferReply)
	api.GET("/sweeper", h.SweeperStatus)
}
