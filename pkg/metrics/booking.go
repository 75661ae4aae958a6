package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BookingMetrics records reservation outcomes per booking mode.
type BookingMetrics struct {
	duration  *prometheus.HistogramVec
	booked    *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	cancelled *prometheus.CounterVec
}

// NewBookingMetrics registers the booking metrics on the provided registerer.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	if reg == nil {
		return &BookingMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "booking_duration_seconds",
		Help:    "Duration of booking transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
	booked := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_success",
		Help: "Reservations booked successfully.",
	}, []string{"mode"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_rejected",
		Help: "Booking attempts rejected, labeled by reason.",
	}, []string{"reason"})
	cancelled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_cancelled",
		Help: "Reservations cancelled.",
	}, []string{"mode"})
	reg.MustRegister(duration, booked, rejected, cancelled)
	return &BookingMetrics{
		duration:  duration,
		booked:    booked,
		rejected:  rejected,
		cancelled: cancelled,
	}
}

// ObserveDuration records how long a booking transaction took.
func (b *BookingMetrics) ObserveDuration(mode string, duration time.Duration) {
	if b == nil || b.duration == nil {
		return
	}
	b.duration.WithLabelValues(normalizeLabel(mode)).Observe(duration.Seconds())
}

// IncBooked increments the success counter for the given mode.
func (b *BookingMetrics) IncBooked(mode string) {
	if b == nil || b.booked == nil {
		return
	}
	b.booked.WithLabelValues(normalizeLabel(mode)).Inc()
}

// IncRejected increments the rejection counter for the given reason.
func (b *BookingMetrics) IncRejected(reason string) {
	if b == nil || b.rejected == nil {
		return
	}
	b.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncCancelled increments the cancellation counter for the given mode.
func (b *BookingMetrics) IncCancelled(mode string) {
	if b == nil || b.cancelled == nil {
		return
	}
	b.cancelled.WithLabelValues(normalizeLabel(mode)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
