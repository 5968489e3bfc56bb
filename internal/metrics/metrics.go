// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

package metrics

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Launch event outcomes.
const (
	OutcomeInserted = "inserted"
	OutcomeDeduped  = "deduped"
	OutcomeError    = "error"
)

// GeoIP lookup results.
const (
	GeoHit      = "hit"
	GeoMiss     = "miss"
	GeoFiltered = "filtered"
	GeoDisabled = "disabled"
	GeoError    = "error"
)

var (
	// Ingestion
	LaunchEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launch_events_total",
			Help: "Launch events processed, by outcome",
		},
		[]string{"outcome"},
	)

	GeoIPLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoip_lookups_total",
			Help: "Geolocation resolutions, by result",
		},
		[]string{"result"},
	)

	GeoIPDatabaseOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "geoip_database_open",
			Help: "1 while the GeoIP database handle is open",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Storage
	EventStoreUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "event_store_up",
			Help: "1 if the last event store ping succeeded",
		},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "event_store_query_duration_seconds",
			Help:    "Duration of event store statements in seconds",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation", "driver"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_store_query_errors_total",
			Help: "Event store statement failures",
		},
		[]string{"operation", "driver", "error_type"},
	)

	DBPoolConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "event_store_pool_connections",
			Help: "Event store pool connections, by state",
		},
		[]string{"driver", "state"},
	)

	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Process
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordLaunchEvent counts one processed launch event.
func RecordLaunchEvent(outcome string) {
	LaunchEventsTotal.WithLabelValues(outcome).Inc()
}

// RecordGeoIPLookup counts one resolution.
func RecordGeoIPLookup(result string) {
	GeoIPLookups.WithLabelValues(result).Inc()
}

// SetGeoIPDatabaseOpen flips the open gauge.
func SetGeoIPDatabaseOpen(open bool) {
	if open {
		GeoIPDatabaseOpen.Set(1)
		return
	}
	GeoIPDatabaseOpen.Set(0)
}

// breakerStates maps gobreaker state names to gauge values.
var breakerStates = map[string]float64{
	"closed":    0,
	"half-open": 1,
	"open":      2,
}

// SetCircuitBreakerState publishes a breaker's current state by name.
// Unknown states are ignored.
func SetCircuitBreakerState(name, state string) {
	if v, ok := breakerStates[state]; ok {
		CircuitBreakerState.WithLabelValues(name).Set(v)
	}
}

// RecordCircuitBreakerTransition counts one state change.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

// SetEventStoreUp records the outcome of the latest store probe.
func SetEventStoreUp(up bool) {
	if up {
		EventStoreUp.Set(1)
		return
	}
	EventStoreUp.Set(0)
}

// RecordDBQuery records a statement's latency and, if it failed, its class.
func RecordDBQuery(operation, driver string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, driver).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, driver, classifyError(err)).Inc()
	}
}

// UpdatePoolStats publishes a pool snapshot.
func UpdatePoolStats(driver string, inUse, idle, maxConns int) {
	DBPoolConnections.WithLabelValues(driver, "in_use").Set(float64(inUse))
	DBPoolConnections.WithLabelValues(driver, "idle").Set(float64(idle))
	DBPoolConnections.WithLabelValues(driver, "max").Set(float64(maxConns))
}

// classifyError keeps label cardinality bounded.
func classifyError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "broken pipe"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "bad connection"):
		return "connection"
	case strings.Contains(msg, "closed"):
		return "closed"
	default:
		return "other"
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// SetAppInfo publishes the build version.
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}
