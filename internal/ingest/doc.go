// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

// Package ingest turns one validated launch event into a stored row.
//
// Pipeline.Ingest picks the client address (ClientAddress), asks the
// GeoResolver for a best-effort location, builds the record and hands it to
// the EventStore. It keeps no per-request state, so one Pipeline serves all
// requests concurrently.
//
// ClientAddress trusts X-Forwarded-For and X-Real-IP. The service must sit
// behind a reverse proxy that overwrites these headers; exposed directly,
// clients can choose the address that is stored and geolocated.
package ingest
