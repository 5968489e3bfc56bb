// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

package database

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tomtom215/conduct-telemetry/internal/config"
	"github.com/tomtom215/conduct-telemetry/internal/metrics"
	"github.com/tomtom215/conduct-telemetry/internal/models"
)

const postgresInsertEvent = `
INSERT INTO app_launch_events (
	install_id, app_version, platform, os_version, locale, ip,
	geo_country, geo_region, geo_city, client_timestamp, client_date
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (install_id, client_date) DO NOTHING
RETURNING id::text`

const postgresCountEvents = `
SELECT count(*) FROM app_launch_events WHERE install_id = $1 AND client_date = $2`

const postgresFetchEvent = `
SELECT install_id, app_version, platform, os_version, locale, ip,
	geo_country, geo_region, geo_city, client_timestamp, client_date
FROM app_launch_events WHERE install_id = $1 AND client_date = $2`

// PostgresStore writes launch events through a pgx connection pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	closed atomic.Bool
}

// NewPostgresStore opens a pool bounded by cfg.MaxConns and cfg.MinConns.
func NewPostgresStore(ctx context.Context, loc config.DatabaseLocation, cfg *config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(loc.URL.String())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns) //nolint:gosec // bounded by config validation
	poolCfg.MinConns = int32(cfg.MinConns) //nolint:gosec // bounded by config validation
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if cfg.AutoMigrate {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Insert relies on RETURNING yielding no row when the conflict clause fires.
func (s *PostgresStore) Insert(ctx context.Context, event *models.LaunchEvent) (bool, error) {
	if s.closed.Load() {
		return false, ErrStoreClosed
	}
	day, err := event.ClientDay()
	if err != nil {
		return false, fmt.Errorf("client date: %w", err)
	}

	start := time.Now()
	var id string
	err = s.pool.QueryRow(ctx, postgresInsertEvent,
		event.InstallID,
		event.AppVersion,
		event.Platform,
		event.OSVersion,
		event.Locale,
		nullIfEmpty(event.IP),
		event.Geo.Country,
		event.Geo.Region,
		event.Geo.City,
		event.ClientTimestamp,
		day,
	).Scan(&id)

	inserted := true
	if errors.Is(err, pgx.ErrNoRows) {
		inserted, err = false, nil
	}
	metrics.RecordDBQuery(opInsertEvent, config.DriverPostgres, time.Since(start), err)
	s.recordPoolStats()
	if err != nil {
		return false, fmt.Errorf("insert launch event: %w", err)
	}
	return inserted, nil
}

// CountByKey returns the number of rows stored for the key.
func (s *PostgresStore) CountByKey(ctx context.Context, installID, clientDate string) (int, error) {
	if s.closed.Load() {
		return 0, ErrStoreClosed
	}
	day, err := time.Parse(models.ClientDateLayout, clientDate)
	if err != nil {
		return 0, fmt.Errorf("client date: %w", err)
	}
	start := time.Now()
	var n int64
	err = s.pool.QueryRow(ctx, postgresCountEvents, installID, day).Scan(&n)
	metrics.RecordDBQuery(opCountEvents, config.DriverPostgres, time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("count launch events: %w", err)
	}
	return int(n), nil
}

// FetchByKey returns the row stored for the key or ErrEventNotFound.
func (s *PostgresStore) FetchByKey(ctx context.Context, installID, clientDate string) (StoredEvent, error) {
	if s.closed.Load() {
		return StoredEvent{}, ErrStoreClosed
	}
	day, err := time.Parse(models.ClientDateLayout, clientDate)
	if err != nil {
		return StoredEvent{}, fmt.Errorf("client date: %w", err)
	}

	start := time.Now()
	var (
		ev     StoredEvent
		stored time.Time
	)
	err = s.pool.QueryRow(ctx, postgresFetchEvent, installID, day).Scan(
		&ev.InstallID, &ev.AppVersion, &ev.Platform, &ev.OSVersion, &ev.Locale,
		&ev.IP, &ev.Geo.Country, &ev.Geo.Region, &ev.Geo.City, &ev.ClientTimestamp, &stored,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.RecordDBQuery(opFetchEvent, config.DriverPostgres, time.Since(start), nil)
		return StoredEvent{}, ErrEventNotFound
	}
	metrics.RecordDBQuery(opFetchEvent, config.DriverPostgres, time.Since(start), err)
	if err != nil {
		return StoredEvent{}, fmt.Errorf("fetch launch event: %w", err)
	}
	ev.ClientDate = stored.Format(models.ClientDateLayout)
	return ev, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	return s.pool.Ping(ctx)
}

// Close waits for acquired connections to be released. Safe to call twice.
func (s *PostgresStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Driver() string { return config.DriverPostgres }

func (s *PostgresStore) recordPoolStats() {
	stat := s.pool.Stat()
	metrics.UpdatePoolStats(config.DriverPostgres,
		int(stat.AcquiredConns()), int(stat.IdleConns()), int(stat.MaxConns()))
}
