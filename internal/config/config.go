// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	GeoIP    GeoIPConfig    `koanf:"geoip"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// DatabaseConfig selects and sizes the event store.
type DatabaseConfig struct {
	// URL names the engine (by scheme) and the database. See ParseDatabaseURL.
	URL string `koanf:"url"`

	// MaxConns bounds the pool. Requests block when it is exhausted.
	MaxConns int `koanf:"max_conns"`

	// MinConns is kept open by engines whose pool supports it (PostgreSQL).
	MinConns int `koanf:"min_conns"`

	// AutoMigrate creates the events table and its unique key if missing.
	AutoMigrate bool `koanf:"auto_migrate"`
}

// GeoIPConfig points at a local MaxMind City database.
type GeoIPConfig struct {
	DBPath string `koanf:"db_path"`
}

// Enabled reports whether a database path is configured.
func (g GeoIPConfig) Enabled() bool {
	return g.DBPath != ""
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, an optional file and the environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
