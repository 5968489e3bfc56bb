// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/conduct-telemetry/internal/config"
	"github.com/tomtom215/conduct-telemetry/internal/logging"
	"github.com/tomtom215/conduct-telemetry/internal/models"
)

var (
	// ErrStoreClosed is returned by operations on a closed store.
	ErrStoreClosed = errors.New("event store is closed")

	// ErrEventNotFound is returned by FetchByKey when no row has the key.
	ErrEventNotFound = errors.New("launch event not found")
)

const (
	opInsertEvent = "insert_event"
	opCountEvents = "count_events"
	opFetchEvent  = "fetch_event"
)

// EventStore persists launch events idempotently.
type EventStore interface {
	// Insert stores event unless a row with the same install id and client
	// date exists. inserted is true only for the call that created the row.
	Insert(ctx context.Context, event *models.LaunchEvent) (inserted bool, err error)

	// Ping checks that the engine answers.
	Ping(ctx context.Context) error

	// Close releases the pool.
	Close() error

	// Driver names the engine: postgres, mysql or duckdb.
	Driver() string
}

// EventCounter counts stored rows for one dedup key. Every engine
// implements it.
type EventCounter interface {
	CountByKey(ctx context.Context, installID, clientDate string) (int, error)
}

// StoredEvent is a row as the engine returns it. Nullable columns are nil
// when NULL; ClientTimestamp is the stored instant.
type StoredEvent struct {
	InstallID       string
	AppVersion      string
	Platform        string
	OSVersion       string
	Locale          string
	IP              *string
	Geo             models.GeoInfo
	ClientTimestamp time.Time
	ClientDate      string
}

// EventReader reads back the row stored for one dedup key. Every engine
// implements it.
type EventReader interface {
	FetchByKey(ctx context.Context, installID, clientDate string) (StoredEvent, error)
}

// New parses cfg.URL, connects to the selected engine, checks that it answers
// and, when AutoMigrate is set, creates the schema.
func New(ctx context.Context, cfg *config.DatabaseConfig) (EventStore, error) {
	loc, err := config.ParseDatabaseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	var store EventStore
	switch loc.Driver {
	case config.DriverPostgres:
		store, err = NewPostgresStore(ctx, loc, cfg)
	case config.DriverMySQL:
		store, err = NewMySQLStore(ctx, loc, cfg)
	case config.DriverDuckDB:
		store, err = NewDuckDBStore(ctx, loc, cfg)
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnsupportedDatabase, loc.Driver)
	}
	if err != nil {
		return nil, err
	}

	logging.Info().
		Str("driver", loc.Driver).
		Str("database", loc.Name).
		Int("max_conns", cfg.MaxConns).
		Int("min_conns", cfg.MinConns).
		Bool("auto_migrate", cfg.AutoMigrate).
		Msg("Event store ready")
	return store, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// nullIfEmpty stores an unknown client address as NULL.
func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// scanStoredEvent reads the columns selected by the database/sql fetch
// queries, in order.
func scanStoredEvent(row *sql.Row) (StoredEvent, error) {
	var (
		ev                        StoredEvent
		ip, country, region, city sql.NullString
		day                       time.Time
	)
	err := row.Scan(&ev.InstallID, &ev.AppVersion, &ev.Platform, &ev.OSVersion, &ev.Locale,
		&ip, &country, &region, &city, &ev.ClientTimestamp, &day)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredEvent{}, ErrEventNotFound
	}
	if err != nil {
		return StoredEvent{}, err
	}
	ev.IP = stringPtr(ip)
	ev.Geo = models.GeoInfo{Country: stringPtr(country), Region: stringPtr(region), City: stringPtr(city)}
	ev.ClientDate = day.Format(models.ClientDateLayout)
	return ev, nil
}
