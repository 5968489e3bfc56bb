// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

//go:build integration

package database_test

import (
	"context"
	"testing"

	"github.com/tomtom215/conduct-telemetry/internal/config"
	"github.com/tomtom215/conduct-telemetry/internal/database"
	"github.com/tomtom215/conduct-telemetry/internal/database/storetest"
	"github.com/tomtom215/conduct-telemetry/internal/testinfra"
)

func runEngineSuite(t *testing.T, start func(context.Context, ...testinfra.DatabaseOption) (*testinfra.DatabaseContainer, error)) {
	t.Helper()
	testinfra.SkipIfNoDocker(t)

	ctx := context.Background()
	container, err := start(ctx)
	if err != nil {
		t.Fatalf("start container: %v", err)
	}
	t.Cleanup(func() { testinfra.CleanupContainer(t, ctx, container) })

	storetest.Run(t, func(t *testing.T) database.EventStore {
		t.Helper()
		s, err := database.New(ctx, &config.DatabaseConfig{
			URL:         container.URL,
			MaxConns:    config.DefaultMaxConns,
			MinConns:    config.DefaultMinConns,
			AutoMigrate: true,
		})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		return s
	})
}

func TestPostgresStore(t *testing.T) {
	runEngineSuite(t, testinfra.NewPostgresContainer)
}

func TestMySQLStore(t *testing.T) {
	runEngineSuite(t, testinfra.NewMySQLContainer)
}
