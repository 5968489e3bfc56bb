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
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/tomtom215/conduct-telemetry/internal/config"
	"github.com/tomtom215/conduct-telemetry/internal/metrics"
	"github.com/tomtom215/conduct-telemetry/internal/models"
)

// INSERT IGNORE reports zero affected rows for a duplicate key. The client
// must not set CLIENT_FOUND_ROWS, which is the driver default.
const mysqlInsertEvent = `
INSERT IGNORE INTO app_launch_events (
	id, install_id, app_version, platform, os_version, locale, ip,
	geo_country, geo_region, geo_city, client_timestamp, client_date
) VALUES (UUID(), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const mysqlCountEvents = `
SELECT COUNT(*) FROM app_launch_events WHERE install_id = ? AND client_date = ?`

const mysqlFetchEvent = `
SELECT install_id, app_version, platform, os_version, locale, ip,
	geo_country, geo_region, geo_city, client_timestamp, client_date
FROM app_launch_events WHERE install_id = ? AND client_date = ?`

// MySQLStore writes launch events through a database/sql pool.
type MySQLStore struct {
	db     *sql.DB
	closed atomic.Bool
}

// NewMySQLStore opens a pool bounded by cfg.MaxConns. MySQL pools have no
// minimum; cfg.MinConns idle connections are kept once opened.
func NewMySQLStore(ctx context.Context, loc config.DatabaseLocation, cfg *config.DatabaseConfig) (*MySQLStore, error) {
	mc, err := mysqlConfig(loc)
	if err != nil {
		return nil, err
	}
	connector, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, fmt.Errorf("mysql config: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(max(cfg.MinConns, 1))
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		return nil, abandon(db, config.DriverMySQL, fmt.Errorf("connect to mysql: %w", err))
	}

	s := &MySQLStore{db: db}
	if cfg.AutoMigrate {
		if err := applySchema(ctx, db, mysqlSchema); err != nil {
			return nil, abandon(db, config.DriverMySQL, err)
		}
	}
	return s, nil
}

// mysqlConfig converts a mysql:// URL to driver settings. Query parameters
// go through the driver's own DSN parser, so its options (timeout, tls,
// collation, ...) land on their fields and unknown keys become session
// variables. charset is dropped; the connection always uses utf8mb4.
func mysqlConfig(loc config.DatabaseLocation) (*mysql.Config, error) {
	base := mysql.NewConfig()
	base.Net = "tcp"
	base.Addr = net.JoinHostPort(loc.Host(), loc.Port("3306"))
	base.DBName = loc.Name
	if user := loc.URL.User; user != nil {
		base.User = user.Username()
		base.Passwd, _ = user.Password()
	}

	dsn := base.FormatDSN()
	query := loc.URL.Query()
	query.Del("charset")
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + query.Encode()
	}

	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql url parameters: %w", err)
	}
	mc.ParseTime = true
	mc.Loc = time.UTC
	return mc, nil
}

// Insert reports inserted when exactly one row was affected.
func (s *MySQLStore) Insert(ctx context.Context, event *models.LaunchEvent) (bool, error) {
	if s.closed.Load() {
		return false, ErrStoreClosed
	}

	start := time.Now()
	res, err := s.db.ExecContext(ctx, mysqlInsertEvent,
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
		event.ClientDate,
	)
	var affected int64
	if err == nil {
		affected, err = res.RowsAffected()
	}
	metrics.RecordDBQuery(opInsertEvent, config.DriverMySQL, time.Since(start), err)
	s.recordPoolStats()
	if err != nil {
		return false, fmt.Errorf("insert launch event: %w", err)
	}
	return affected == 1, nil
}

// CountByKey returns the number of rows stored for the key.
func (s *MySQLStore) CountByKey(ctx context.Context, installID, clientDate string) (int, error) {
	if s.closed.Load() {
		return 0, ErrStoreClosed
	}
	start := time.Now()
	var n int
	err := s.db.QueryRowContext(ctx, mysqlCountEvents, installID, clientDate).Scan(&n)
	metrics.RecordDBQuery(opCountEvents, config.DriverMySQL, time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("count launch events: %w", err)
	}
	return n, nil
}

// FetchByKey returns the row stored for the key or ErrEventNotFound.
func (s *MySQLStore) FetchByKey(ctx context.Context, installID, clientDate string) (StoredEvent, error) {
	if s.closed.Load() {
		return StoredEvent{}, ErrStoreClosed
	}
	start := time.Now()
	ev, err := scanStoredEvent(s.db.QueryRowContext(ctx, mysqlFetchEvent, installID, clientDate))
	if errors.Is(err, ErrEventNotFound) {
		metrics.RecordDBQuery(opFetchEvent, config.DriverMySQL, time.Since(start), nil)
		return StoredEvent{}, err
	}
	metrics.RecordDBQuery(opFetchEvent, config.DriverMySQL, time.Since(start), err)
	if err != nil {
		return StoredEvent{}, fmt.Errorf("fetch launch event: %w", err)
	}
	return ev, nil
}

func (s *MySQLStore) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	return s.db.PingContext(ctx)
}

func (s *MySQLStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *MySQLStore) Driver() string { return config.DriverMySQL }

func (s *MySQLStore) recordPoolStats() {
	stats := s.db.Stats()
	metrics.UpdatePoolStats(config.DriverMySQL, stats.InUse, stats.Idle, stats.MaxOpenConnections)
}
