// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

/*
Package middleware provides the HTTP middleware shared by every route.

All constructors return chi-compatible func(http.Handler) http.Handler values:

  - RequestID: reuses or generates X-Request-ID, echoes it in the response
    and attaches it to the request context for logging.Ctx.
  - PrometheusMetrics: counts requests and observes latency, labelled by the
    chi route pattern so that path values cannot explode label cardinality.
  - AccessLog: one structured zerolog line per request.

Typical stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog)
*/
package middleware
