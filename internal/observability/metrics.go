package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API client metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rooms_client_api_request_duration_seconds",
			Help:    "Latency of calls to the rooms API in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "status"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rooms_client_api_requests_total",
			Help: "Total number of calls to the rooms API",
		},
		[]string{"operation", "status"},
	)

	ContractViolationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rooms_client_contract_violations_total",
			Help: "API responses that did not match the OpenAPI document",
		},
		[]string{"operation"},
	)

	// Client state metrics
	RoomFetchesDiscarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rooms_client_room_fetches_discarded_total",
			Help: "Room list responses dropped because a newer fetch had started",
		},
	)

	// Storage metrics
	StorageOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rooms_client_storage_op_duration_seconds",
			Help:    "Latency of client storage operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5},
		},
		[]string{"driver", "operation"},
	)

	StorageErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rooms_client_storage_errors_total",
			Help: "Failed client storage operations",
		},
		[]string{"driver", "operation"},
	)
)
