// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

// Package main is the collector server.
//
// It accepts application launch events on POST /api/events/launch, enriches
// them with coarse geolocation from a local MaxMind database and stores at
// most one event per install per client-local day.
//
// # Startup
//
//  1. Configuration: defaults, optional config.yaml, environment (Koanf v2)
//  2. Event store: PostgreSQL, MySQL or DuckDB, chosen by DATABASE_URL scheme.
//     An unparseable URL or unreachable database exits the process.
//  3. GeoIP resolver: opened lazily on the first public address
//  4. HTTP server and store probe under the supervisor tree
//
// # Configuration
//
//	DATABASE_URL=postgresql://user:pass@db:5432/telemetry
//	DATABASE_URL=mysql://user:pass@db:3306/telemetry
//	DATABASE_URL=duckdb:///var/lib/telemetry/events.duckdb
//	GEOIP_DB_PATH=/usr/share/GeoIP/GeoLite2-City.mmdb
//	LISTEN_HOST=0.0.0.0 LISTEN_PORT=8080
//	LOG_LEVEL=info LOG_FORMAT=json
//
// # Signal Handling
//
// SIGINT and SIGTERM stop the listener, wait up to SHUTDOWN_TIMEOUT for
// in-flight requests, then close the GeoIP database and the store pool.
package main
