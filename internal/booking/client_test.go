package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/ticketbottle-waitlist/config"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/models"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/service"
	"github.com/vogiaan1904/ticketbottle-waitlist/pkg/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return New(config.BookingConfig{
		BaseURL:        srv.URL,
		UserAgent:      "waitlist-test",
		ConnectTimeout: time.Second,
		ReadTimeout:    time.Second,
	}, logger.InitializeTestZapLogger())
}

func TestClient_ProbeSlotResponseShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
		ok   bool
	}{
		{"array", `[{"id": 101}, {"id": 102}]`, "101", true},
		{"result", `{"result": [{"id": 7}]}`, "7", true},
		{"timeSlots", `{"timeSlots": [{"id": 55}]}`, "55", true},
		{"timeslots", `{"timeslots": [{"id": 56}]}`, "56", true},
		{"empty result falls through", `{"result": [], "timeslots": [{"id": 9}]}`, "9", true},
		{"empty array", `[]`, "", false},
		{"no id", `[{"name": "morning"}]`, "", false},
		{"unknown shape", `{"items": [{"id": 1}]}`, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/back/events/E1/timeslots", r.URL.Path)
				assert.Equal(t, "session=abc", r.Header.Get("Cookie"))
				assert.Equal(t, "waitlist-test", r.Header.Get("User-Agent"))
				_, _ = w.Write([]byte(tc.body))
			})

			slot, ok, err := c.ProbeSlot(context.Background(), "E1", "session=abc")

			require.NoError(t, err)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, slot)
		})
	}
}

func TestClient_ProbeSlotRateLimited(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, _, err := c.ProbeSlot(context.Background(), "E1", "session=abc")

	assert.ErrorIs(t, err, service.ErrRateLimited)
}

func TestClient_ProbeSlotServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, _, err := c.ProbeSlot(context.Background(), "E1", "session=abc")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrRateLimited)
}

func TestClient_BookSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/back/events/booking/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req bookingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(101), req.TimeSlot)
		assert.Equal(t, 0, req.ExtraAdults)

		_, _ = w.Write([]byte(`{"id": 5, "startDatetime": "2026-05-10T18:00:00+03:00"}`))
	})

	res := c.Book(context.Background(), "session=abc", "101")

	assert.Equal(t, models.BookingSuccess, res.Kind)
	assert.Equal(t, "2026-05-10T18:00:00+03:00", res.Details)
}

func TestClient_BookOutcomes(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		kind   models.BookingResultKind
		reason string
	}{
		{"refused with message", http.StatusBadRequest, `{"message": "already registered"}`, models.BookingRejected, "already registered"},
		{"refused without message", http.StatusConflict, `{}`, models.BookingRejected, "booking refused (status=409)"},
		{"rate limited", http.StatusTooManyRequests, ``, models.BookingRateLimited, ""},
		{"html error page", http.StatusInternalServerError, `<html>oops</html>`, models.BookingTransportError, "non-JSON booking response (status=500)"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			res := c.Book(context.Background(), "session=abc", "101")

			assert.Equal(t, tc.kind, res.Kind)
			assert.Equal(t, tc.reason, res.Reason)
		})
	}
}

func TestClient_BookInvalidSlotAndTransportFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	res := c.Book(context.Background(), "session=abc", "morning")
	assert.Equal(t, models.BookingRejected, res.Kind)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	down := New(config.BookingConfig{BaseURL: srv.URL, ConnectTimeout: time.Second, ReadTimeout: time.Second}, logger.InitializeTestZapLogger())

	res = down.Book(context.Background(), "session=abc", "101")
	assert.Equal(t, models.BookingTransportError, res.Kind)
}
