// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

/*
Package config loads and validates the collector's configuration.

Sources are layered with koanf, later layers winning:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, ./config.yaml, ./config.yml,
    /etc/conduct-telemetry/config.yaml
 3. Environment variables

# Environment Variables

Storage:
  - DATABASE_URL: postgres://, postgresql://, mysql://, mysql+pymysql://,
    mysql+mysqlconnector:// or duckdb:// URL naming a database (required)
  - DATABASE_MAX_CONNS: pool upper bound (default: 5)
  - DATABASE_MIN_CONNS: connections kept open (default: 1)
  - DATABASE_AUTO_MIGRATE: create app_launch_events on startup (default: true)

Geolocation:
  - GEOIP_DB_PATH: MaxMind City database; empty disables lookups

HTTP listener:
  - LISTEN_HOST: bind address (default: 127.0.0.1)
  - LISTEN_PORT: bind port (default: 8080)
  - SERVER_TIMEOUT: read/write timeout (default: 30s)
  - SHUTDOWN_TIMEOUT: graceful shutdown budget (default: 10s)

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json, console (default: json)
  - LOG_CALLER: true/false (default: false)

The collector trusts X-Forwarded-For and X-Real-IP unconditionally, so it must
only be reachable through a reverse proxy that overwrites those headers. The
default bind address keeps it off public interfaces.
*/
package config
