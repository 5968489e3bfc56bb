// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/conduct-telemetry/internal/api"
	"github.com/tomtom215/conduct-telemetry/internal/config"
	"github.com/tomtom215/conduct-telemetry/internal/database"
	"github.com/tomtom215/conduct-telemetry/internal/geoip"
	"github.com/tomtom215/conduct-telemetry/internal/ingest"
	"github.com/tomtom215/conduct-telemetry/internal/logging"
	"github.com/tomtom215/conduct-telemetry/internal/metrics"
	"github.com/tomtom215/conduct-telemetry/internal/supervisor"
	"github.com/tomtom215/conduct-telemetry/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const storeProbeInterval = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	metrics.SetAppInfo(version)

	logging.Info().Str("version", version).Msg("Starting Conduct Telemetry")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := database.New(ctx, &cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize event store")
	}

	resolver := geoip.NewResolver(cfg.GeoIP)
	if !cfg.GeoIP.Enabled() {
		logging.Warn().Msg("GEOIP_DB_PATH not set, events will be stored without location")
	}

	handler := api.NewHandler(ingest.New(resolver, store), store)
	server := &http.Server{
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	tree.AddDataService(services.NewStoreProbeService(store, storeProbeInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Addr(), cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", cfg.Server.Addr()).Str("driver", store.Driver()).Msg("Starting supervisor tree")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	if err := resolver.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close GeoIP database")
	}
	if err := store.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close event store")
	}

	logging.Info().Msg("Application stopped gracefully")
}
