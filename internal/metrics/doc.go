// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

/*
Package metrics holds the collector's Prometheus instruments.

Everything is registered on the default registry through promauto and served
at GET /metrics.

# Available Metrics

Ingestion:
  - launch_events_total{outcome}: inserted, deduped or error
  - geoip_lookups_total{result}: hit, miss, filtered, disabled, error
  - geoip_database_open: 1 while the City database handle is cached

Storage:
  - event_store_query_duration_seconds{operation,driver}
  - event_store_query_errors_total{operation,driver,error_type}
  - event_store_pool_connections{driver,state}: in_use, idle, max

HTTP:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests

Process:
  - app_info{version,go_version}
*/
package metrics
