// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

// Package testinfra starts database containers for integration tests.
//
// It uses testcontainers-go to run the engines the collector supports in
// production, so the idempotent insert path is exercised against the real
// unique-key behavior of each engine:
//
//	func TestPostgresStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    pg, err := testinfra.NewPostgresContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, pg)
//
//	    store, err := database.New(ctx, &config.DatabaseConfig{URL: pg.URL, ...})
//	    // ...
//	}
//
// Files are behind the integration build tag and need a Docker daemon. Tests
// skip when Docker is unavailable. The first run pulls images.
package testinfra
