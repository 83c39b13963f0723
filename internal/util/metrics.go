package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_orders_created_total",
		Help: "Total number of payment orders created",
	})

	BookingsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookings_created_total",
		Help: "Total number of bookings created by payment verification",
	})

	BookingsCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookings_cancelled_total",
		Help: "Total number of cancelled bookings",
	})

	BookingStatusUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_status_updates_total",
		Help: "Total number of booking status updates",
	}, []string{"status"})

	PaymentVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_verifications_total",
		Help: "Total number of payment verification attempts",
	}, []string{"result"})

	RoomReservationsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "room_reservations_failed_total",
		Help: "Total number of failed room reservations",
	}, []string{"reason"})

	RefundsComputedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "refunds_computed_total",
		Help: "Total number of refund computations on cancellation",
	})

	GatewayRequestLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_gateway_request_latency_seconds",
		Help:    "Latency of payment gateway order creation",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
