// Package booking is the HTTP client for the external event booking service.
package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/vogiaan1904/ticketbottle-waitlist/config"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/models"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/service"
	"github.com/vogiaan1904/ticketbottle-waitlist/pkg/logger"
)

// Client implements service.BookingGateway. The credential is the user's
// session cookie and is sent verbatim in the Cookie header.
type Client struct {
	hc        *http.Client
	baseURL   string
	userAgent string
	l         logger.Logger
}

var _ service.BookingGateway = (*Client)(nil)

func New(cfg config.BookingConfig, l logger.Logger) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		MaxIdleConnsPerHost:   10,
	}

	return &Client{
		hc: &http.Client{
			Transport: transport,
			Timeout:   cfg.ConnectTimeout + cfg.ReadTimeout,
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		l:         l,
	}
}

type bookingRequest struct {
	TimeSlot      int64 `json:"timeSlot"`
	ExtraAdults   int   `json:"extraAdults"`
	ExtraChildren int   `json:"extraChildren"`
}

type bookingResponse struct {
	StartDatetime string `json:"startDatetime"`
	Message       string `json:"message"`
}

func (c *Client) ProbeSlot(ctx context.Context, eventID, credential string) (string, bool, error) {
	rawURL := fmt.Sprintf("%s/back/events/%s/timeslots", c.baseURL, url.PathEscape(eventID))
	referer := fmt.Sprintf("%s/?eventId=%s", c.baseURL, url.QueryEscape(eventID))

	status, body, err := c.do(ctx, http.MethodGet, rawURL, credential, referer, nil)
	if err != nil {
		return "", false, err
	}
	if status == http.StatusTooManyRequests {
		return "", false, service.ErrRateLimited
	}
	if status >= 400 {
		return "", false, fmt.Errorf("failed to fetch timeslots (status=%d)", status)
	}

	slotID, ok, err := firstSlotID(body)
	if err != nil {
		return "", false, fmt.Errorf("failed to parse timeslots: %w", err)
	}

	c.l.Debug(ctx, "Probed timeslots",
		"event_id", eventID,
		"slot_id", slotID,
		"available", ok,
	)

	return slotID, ok, nil
}

func (c *Client) Book(ctx context.Context, credential, slotID string) models.BookingResult {
	ts, err := strconv.ParseInt(slotID, 10, 64)
	if err != nil {
		return models.BookingResult{Kind: models.BookingRejected, Reason: fmt.Sprintf("invalid slot id %q", slotID)}
	}

	payload, err := json.Marshal(bookingRequest{TimeSlot: ts})
	if err != nil {
		return models.BookingResult{Kind: models.BookingTransportError, Reason: err.Error()}
	}

	status, body, err := c.do(ctx, http.MethodPost, c.baseURL+"/back/events/booking/", credential, c.baseURL+"/", payload)
	if err != nil {
		return models.BookingResult{Kind: models.BookingTransportError, Reason: err.Error()}
	}
	if status == http.StatusTooManyRequests {
		return models.BookingResult{Kind: models.BookingRateLimited}
	}

	var res bookingResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return models.BookingResult{
			Kind:   models.BookingTransportError,
			Reason: fmt.Sprintf("non-JSON booking response (status=%d)", status),
		}
	}

	c.l.Info(ctx, "Booking response",
		"slot_id", slotID,
		"status", status,
		"start", res.StartDatetime,
	)

	if res.StartDatetime != "" {
		return models.BookingResult{Kind: models.BookingSuccess, Details: res.StartDatetime}
	}

	reason := res.Message
	if reason == "" {
		reason = fmt.Sprintf("booking refused (status=%d)", status)
	}
	return models.BookingResult{Kind: models.BookingRejected, Reason: reason}
}

func (c *Client) do(ctx context.Context, method, rawURL, cookie, referer string, body []byte) (int, []byte, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, rdr)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Origin", c.baseURL)
	}
	req.Header.Set("Cookie", cookie)
	req.Header.Set("Referer", referer)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, nil, err
	}
	return res.StatusCode, b, nil
}

// firstSlotID accepts a bare array of slots or an object wrapping it under
// result, timeSlots or timeslots, and returns the id of the first slot.
func firstSlotID(body []byte) (string, bool, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return "", false, nil
	}

	var slots []json.RawMessage
	if body[0] == '[' {
		if err := json.Unmarshal(body, &slots); err != nil {
			return "", false, err
		}
	} else {
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return "", false, err
		}
		for _, key := range []string{"result", "timeSlots", "timeslots"} {
			raw, ok := wrapped[key]
			if !ok {
				continue
			}
			if err := json.Unmarshal(raw, &slots); err == nil && len(slots) > 0 {
				break
			}
			slots = nil
		}
	}

	if len(slots) == 0 {
		return "", false, nil
	}

	var first struct {
		ID json.Number `json:"id"`
	}
	if err := json.Unmarshal(slots[0], &first); err != nil {
		return "", false, nil
	}
	if _, err := first.ID.Int64(); err != nil {
		return "", false, nil
	}

	return first.ID.String(), true, nil
}
