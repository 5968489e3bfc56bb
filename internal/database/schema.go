// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

package database

import (
	"context"
	"database/sql"
	"fmt"
)

// TableName is the table every engine writes to.
const TableName = "app_launch_events"

// Every dialect must declare the (install_id, client_date) unique key;
// inserts are idempotent only because of it.

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS app_launch_events (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		install_id VARCHAR(36) NOT NULL,
		app_version VARCHAR(32) NOT NULL,
		platform VARCHAR(32) NOT NULL,
		os_version VARCHAR(64) NOT NULL,
		locale VARCHAR(32) NOT NULL,
		ip TEXT,
		geo_country TEXT,
		geo_region TEXT,
		geo_city TEXT,
		client_timestamp TIMESTAMPTZ NOT NULL,
		client_date DATE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT uq_app_launch_events_install_day UNIQUE (install_id, client_date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_app_launch_events_client_date ON app_launch_events (client_date)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS app_launch_events (
		id CHAR(36) NOT NULL PRIMARY KEY,
		install_id CHAR(36) NOT NULL,
		app_version VARCHAR(32) NOT NULL,
		platform VARCHAR(32) NOT NULL,
		os_version VARCHAR(64) NOT NULL,
		locale VARCHAR(32) NOT NULL,
		ip VARCHAR(255) NULL,
		geo_country VARCHAR(255) NULL,
		geo_region VARCHAR(255) NULL,
		geo_city VARCHAR(255) NULL,
		client_timestamp DATETIME(6) NOT NULL,
		client_date DATE NOT NULL,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		UNIQUE KEY uq_app_launch_events_install_day (install_id, client_date),
		KEY idx_app_launch_events_client_date (client_date)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// DuckDB stores client_timestamp as a UTC TIMESTAMP so that the core build
// needs no ICU extension.
var duckdbSchema = []string{
	`CREATE TABLE IF NOT EXISTS app_launch_events (
		id UUID PRIMARY KEY DEFAULT uuid(),
		install_id VARCHAR NOT NULL,
		app_version VARCHAR NOT NULL,
		platform VARCHAR NOT NULL,
		os_version VARCHAR NOT NULL,
		locale VARCHAR NOT NULL,
		ip VARCHAR,
		geo_country VARCHAR,
		geo_region VARCHAR,
		geo_city VARCHAR,
		client_timestamp TIMESTAMP NOT NULL,
		client_date DATE NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (install_id, client_date)
	)`,
}

// applySchema runs DDL statements in order on a database/sql pool.
func applySchema(ctx context.Context, db *sql.DB, statements []string) error {
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
