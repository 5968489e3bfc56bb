// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const postgresPort nat.Port = "5432/tcp"

const (
	DefaultPostgresImage = "postgres:16-alpine"

	// TestDatabaseName, TestDatabaseUser and TestDatabasePassword are shared
	// by every container this package starts.
	TestDatabaseName     = "telemetry"
	TestDatabaseUser     = "telemetry"
	TestDatabasePassword = "telemetry-test"
)

// DatabaseContainer is a running engine and the DATABASE_URL that reaches it.
type DatabaseContainer struct {
	testcontainers.Container
	URL string
}

// DatabaseOption configures a database container.
type DatabaseOption func(*databaseConfig)

type databaseConfig struct {
	image        string
	startTimeout time.Duration
}

// WithImage overrides the engine image.
func WithImage(image string) DatabaseOption {
	return func(c *databaseConfig) {
		c.image = image
	}
}

// WithStartTimeout sets how long to wait for the engine to accept connections.
func WithStartTimeout(timeout time.Duration) DatabaseOption {
	return func(c *databaseConfig) {
		c.startTimeout = timeout
	}
}

func applyOptions(image string, opts []DatabaseOption) *databaseConfig {
	cfg := &databaseConfig{image: image, startTimeout: 90 * time.Second}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// NewPostgresContainer starts PostgreSQL with an empty TestDatabaseName.
func NewPostgresContainer(ctx context.Context, opts ...DatabaseOption) (*DatabaseContainer, error) {
	return startDatabase(ctx, engine{
		name: "postgres",
		port: postgresPort,
		env: map[string]string{
			"POSTGRES_DB":       TestDatabaseName,
			"POSTGRES_USER":     TestDatabaseUser,
			"POSTGRES_PASSWORD": TestDatabasePassword,
			"TZ":                "UTC",
		},
		// The entrypoint restarts the server once after init, so the
		// message appears twice before the real listener is up.
		ready: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		urlFunc: func(addr string) string {
			return fmt.Sprintf("postgresql://%s:%s@%s/%s?sslmode=disable",
				TestDatabaseUser, TestDatabasePassword, addr, TestDatabaseName)
		},
	}, applyOptions(DefaultPostgresImage, opts))
}
