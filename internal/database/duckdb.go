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
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver

	"github.com/tomtom215/conduct-telemetry/internal/config"
	"github.com/tomtom215/conduct-telemetry/internal/logging"
	"github.com/tomtom215/conduct-telemetry/internal/metrics"
	"github.com/tomtom215/conduct-telemetry/internal/models"
)

const duckdbInsertEvent = `
INSERT INTO app_launch_events (
	install_id, app_version, platform, os_version, locale, ip,
	geo_country, geo_region, geo_city, client_timestamp, client_date
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (install_id, client_date) DO NOTHING
RETURNING CAST(id AS VARCHAR)`

const duckdbCountEvents = `
SELECT COUNT(*) FROM app_launch_events WHERE install_id = ? AND client_date = ?`

const duckdbFetchEvent = `
SELECT install_id, app_version, platform, os_version, locale, ip,
	geo_country, geo_region, geo_city, client_timestamp, client_date
FROM app_launch_events WHERE install_id = ? AND client_date = ?`

// DuckDBStore writes launch events to an embedded DuckDB database.
type DuckDBStore struct {
	db     *sql.DB
	path   string
	closed atomic.Bool
}

// NewDuckDBStore opens loc.Name, a file path or :memory:. DuckDB allows one
// writer per process, so the pool holds a single connection and concurrent
// inserts queue on it.
func NewDuckDBStore(ctx context.Context, loc config.DatabaseLocation, cfg *config.DatabaseConfig) (*DuckDBStore, error) {
	path := loc.Name
	if path != config.DuckDBMemory {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		return nil, abandon(db, config.DriverDuckDB, fmt.Errorf("connect to duckdb: %w", err))
	}

	s := &DuckDBStore{db: db, path: path}
	if cfg.AutoMigrate {
		if err := applySchema(ctx, db, duckdbSchema); err != nil {
			return nil, abandon(db, config.DriverDuckDB, err)
		}
	}
	return s, nil
}

func (s *DuckDBStore) Insert(ctx context.Context, event *models.LaunchEvent) (bool, error) {
	if s.closed.Load() {
		return false, ErrStoreClosed
	}
	day, err := event.ClientDay()
	if err != nil {
		return false, fmt.Errorf("client date: %w", err)
	}

	start := time.Now()
	var id string
	err = s.db.QueryRowContext(ctx, duckdbInsertEvent,
		event.InstallID,
		event.AppVersion,
		event.Platform,
		event.OSVersion,
		event.Locale,
		nullIfEmpty(event.IP),
		nullString(event.Geo.Country),
		nullString(event.Geo.Region),
		nullString(event.Geo.City),
		event.ClientTimestamp.UTC(),
		day,
	).Scan(&id)

	inserted := true
	if errors.Is(err, sql.ErrNoRows) {
		inserted, err = false, nil
	}
	metrics.RecordDBQuery(opInsertEvent, config.DriverDuckDB, time.Since(start), err)
	s.recordPoolStats()
	if err != nil {
		return false, fmt.Errorf("insert launch event: %w", err)
	}
	return inserted, nil
}

// CountByKey returns the number of rows stored for the key.
func (s *DuckDBStore) CountByKey(ctx context.Context, installID, clientDate string) (int, error) {
	if s.closed.Load() {
		return 0, ErrStoreClosed
	}
	day, err := time.Parse(models.ClientDateLayout, clientDate)
	if err != nil {
		return 0, fmt.Errorf("client date: %w", err)
	}
	start := time.Now()
	var n int64
	err = s.db.QueryRowContext(ctx, duckdbCountEvents, installID, day).Scan(&n)
	metrics.RecordDBQuery(opCountEvents, config.DriverDuckDB, time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("count launch events: %w", err)
	}
	return int(n), nil
}

// FetchByKey returns the row stored for the key or ErrEventNotFound.
func (s *DuckDBStore) FetchByKey(ctx context.Context, installID, clientDate string) (StoredEvent, error) {
	if s.closed.Load() {
		return StoredEvent{}, ErrStoreClosed
	}
	day, err := time.Parse(models.ClientDateLayout, clientDate)
	if err != nil {
		return StoredEvent{}, fmt.Errorf("client date: %w", err)
	}

	start := time.Now()
	ev, err := scanStoredEvent(s.db.QueryRowContext(ctx, duckdbFetchEvent, installID, day))
	if errors.Is(err, ErrEventNotFound) {
		metrics.RecordDBQuery(opFetchEvent, config.DriverDuckDB, time.Since(start), nil)
		return StoredEvent{}, err
	}
	metrics.RecordDBQuery(opFetchEvent, config.DriverDuckDB, time.Since(start), err)
	if err != nil {
		return StoredEvent{}, fmt.Errorf("fetch launch event: %w", err)
	}
	return ev, nil
}

func (s *DuckDBStore) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	return s.db.PingContext(ctx)
}

// Close checkpoints a file database before releasing it.
func (s *DuckDBStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	if s.path != config.DuckDBMemory {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if _, err := s.db.ExecContext(ctx, "CHECKPOINT"); err != nil {
			logging.Warn().Err(err).Str("path", s.path).Msg("DuckDB checkpoint before close failed")
		}
		cancel()
	}
	return s.db.Close()
}

func (s *DuckDBStore) Driver() string { return config.DriverDuckDB }

func (s *DuckDBStore) recordPoolStats() {
	stats := s.db.Stats()
	metrics.UpdatePoolStats(config.DriverDuckDB, stats.InUse, stats.Idle, stats.MaxOpenConnections)
}
