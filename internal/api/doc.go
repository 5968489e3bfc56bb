// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

/*
Package api provides the HTTP layer of the collector.

Routes (chi):

	POST /api/events/launch  ingest one launch event
	GET  /health             liveness, always {"ok":true}
	GET  /health/ready       200 when the event store answers a ping, else 503
	GET  /metrics            Prometheus exposition

Launch responses:

  - 200 {"ok":true,"deduped":false} for a new (install_id, client day)
  - 200 {"ok":true,"deduped":true} for a repeat
  - 400 INVALID_JSON when the body is not a JSON object
  - 422 VALIDATION_ERROR when a field is missing or out of range
  - 500 INTERNAL_ERROR when storage fails; the cause is logged, not returned

Every error body has the shape {"error":{"code":...,"message":...}}.

Usage:

	h := api.NewHandler(pipeline, store)
	srv := &http.Server{Handler: api.NewRouter(h)}
*/
package api
