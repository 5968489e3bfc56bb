// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tomtom215/conduct-telemetry/internal/config"
	"github.com/tomtom215/conduct-telemetry/internal/database"
	"github.com/tomtom215/conduct-telemetry/internal/geoip"
	"github.com/tomtom215/conduct-telemetry/internal/ingest"
)

// TestLaunchEvent_EndToEnd posts the same event twice over a real listener
// backed by an in-memory DuckDB store and a resolver with no database.
func TestLaunchEvent_EndToEnd(t *testing.T) {
	ctx := context.Background()
	store, err := database.New(ctx, &config.DatabaseConfig{
		URL:         "duckdb://" + config.DuckDBMemory,
		MaxConns:    config.DefaultMaxConns,
		MinConns:    config.DefaultMinConns,
		AutoMigrate: true,
	})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	defer store.Close()

	resolver := geoip.NewResolver(config.GeoIPConfig{})
	defer resolver.Close()

	srv := httptest.NewServer(NewRouter(NewHandler(ingest.New(resolver, store), store)))
	defer srv.Close()

	for i, want := range []string{
		`{"ok":true,"deduped":false}`,
		`{"ok":true,"deduped":true}`,
	} {
		resp, err := http.Post(srv.URL+LaunchEventPath, "application/json", strings.NewReader(sampleEvent))
		if err != nil {
			t.Fatalf("POST #%d: %v", i, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("POST #%d status = %d: %s", i, resp.StatusCode, body)
		}
		if got := strings.TrimSpace(string(body)); got != want {
			t.Errorf("POST #%d body = %s, want %s", i, got, want)
		}
	}

	resp, err := http.Get(srv.URL + "/health/ready")
	if err != nil {
		t.Fatalf("GET /health/ready: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("ready status = %d, want 200", resp.StatusCode)
	}
}
