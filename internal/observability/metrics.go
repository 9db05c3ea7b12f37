package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "lani", Name: "orders_created_total", Help: "Dispatch orders created"})
	OrdersAccepted  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "lani", Name: "orders_accepted_total", Help: "Dispatch orders accepted by riders"})
	OrdersDelivered = promauto.NewCounter(prometheus.CounterOpts{Namespace: "lani", Name: "orders_delivered_total", Help: "Dispatch orders delivered"})
	OrdersCancelled = promauto.NewCounter(prometheus.CounterOpts{Namespace: "lani", Name: "orders_cancelled_total", Help: "Dispatch orders cancelled"})

	NotificationsSent = promauto.NewCounter(prometheus.CounterOpts{Namespace: "lani", Name: "notifications_sent_total", Help: "In-app notifications created"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "lani", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lani",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
