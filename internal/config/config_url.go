// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Supported storage engines.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverDuckDB   = "duckdb"
)

// DuckDBMemory selects an in-process, non-persistent DuckDB database.
const DuckDBMemory = ":memory:"

var (
	ErrDatabaseURLRequired  = errors.New("DATABASE_URL is required")
	ErrDatabaseNameRequired = errors.New("DATABASE_URL must name a database")
	ErrUnsupportedDatabase  = errors.New("DATABASE_URL scheme is not supported")
)

// schemeDrivers maps URL schemes to engines. The mysql+ aliases are accepted so
// that SQLAlchemy-style URLs from existing deployments keep working.
var schemeDrivers = map[string]string{
	"postgres":             DriverPostgres,
	"postgresql":           DriverPostgres,
	"mysql":                DriverMySQL,
	"mysql+pymysql":        DriverMySQL,
	"mysql+mysqlconnector": DriverMySQL,
	"duckdb":               DriverDuckDB,
}

// DatabaseLocation is a parsed DATABASE_URL.
type DatabaseLocation struct {
	Driver string

	// Name is the database name, or the file path (or :memory:) for DuckDB.
	Name string

	// URL is the parsed form for network engines; nil for DuckDB.
	URL *url.URL
}

// Host returns the URL host without port, defaulting to localhost.
func (l DatabaseLocation) Host() string {
	if l.URL == nil || l.URL.Hostname() == "" {
		return "localhost"
	}
	return l.URL.Hostname()
}

// Port returns the URL port or def when absent.
func (l DatabaseLocation) Port(def string) string {
	if l.URL == nil || l.URL.Port() == "" {
		return def
	}
	return l.URL.Port()
}

// ParseDatabaseURL validates raw and splits it into engine and database.
// It fails when raw is empty, uses an unknown scheme, or names no database.
func ParseDatabaseURL(raw string) (DatabaseLocation, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DatabaseLocation{}, ErrDatabaseURLRequired
	}

	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return DatabaseLocation{}, fmt.Errorf("%w: missing scheme in %q", ErrUnsupportedDatabase, redactURL(raw))
	}
	driver, known := schemeDrivers[strings.ToLower(scheme)]
	if !known {
		return DatabaseLocation{}, fmt.Errorf("%w: %q", ErrUnsupportedDatabase, scheme)
	}

	// DuckDB paths are not URL-shaped (":memory:" has no valid host), so the
	// remainder is taken literally.
	if driver == DriverDuckDB {
		if rest == "" {
			return DatabaseLocation{}, ErrDatabaseNameRequired
		}
		return DatabaseLocation{Driver: driver, Name: rest}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		// url.Error echoes the input, password included.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return DatabaseLocation{}, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}

	name := strings.TrimPrefix(u.Path, "/")
	if name == "" || strings.Contains(name, "/") {
		return DatabaseLocation{}, ErrDatabaseNameRequired
	}

	return DatabaseLocation{Driver: driver, Name: name, URL: u}, nil
}

// redactURL drops everything after the scheme so credentials never reach logs.
func redactURL(raw string) string {
	if i := strings.IndexAny(raw, ":@"); i > 0 {
		return raw[:i] + ":..."
	}
	return "..."
}
