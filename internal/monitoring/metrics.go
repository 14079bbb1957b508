package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	waitlistSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "waitlist_size",
			Help: "Current number of entries in the waitlist per event",
		},
		[]string{"event_id"},
	)

	waitlistOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waitlist_operations_total",
			Help: "Total waitlist operations",
		},
		[]string{"operation", "status"},
	)

	offers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waitlist_offers_total",
			Help: "Offers issued and resolved, by outcome",
		},
		[]string{"outcome"},
	)

	sweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "waitlist_sweep_duration_seconds",
			Help:    "Duration of one sweep across all active events",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
		},
	)
)

// TrackOperation counts a Join, Leave, Confirm or Reject call.
func TrackOperation(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	waitlistOperations.WithLabelValues(operation, status).Inc()
}

func SetWaitlistSize(eventID string, n int) {
	waitlistSize.WithLabelValues(eventID).Set(float64(n))
}

// TrackOffer counts issued offers ("issued") and every resolution outcome.
func TrackOffer(outcome string) {
	offers.WithLabelValues(outcome).Inc()
}

func ObserveSweep(d time.Duration) {
	sweepDuration.Observe(d.Seconds())
}
