// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

/*
Package database persists launch events.

Every engine implements EventStore with one contract: at most one row per
(install_id, client_date), and Insert reports whether this call created it. A
duplicate is never an error. The engine's unique key alone decides the winner
when identical events race; there is no application-level locking.

The engine is chosen by the DATABASE_URL scheme:

  - PostgreSQL (jackc/pgx/v5 pgxpool): INSERT ... ON CONFLICT DO NOTHING
    RETURNING id. A returned id means inserted.
  - MySQL (go-sql-driver/mysql): INSERT IGNORE with a server-side UUID().
    One affected row means inserted.
  - DuckDB (duckdb/duckdb-go): embedded, same statement shape as PostgreSQL,
    single connection. Used for local runs and unit tests.

Pools are bounded by DATABASE_MAX_CONNS. An exhausted pool blocks the caller
until a connection frees up or its context ends. Connections are taken per
statement and always returned.
*/
package database
