// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/conduct-telemetry/internal/logging"
	"github.com/tomtom215/conduct-telemetry/internal/metrics"
)

// Pinger is satisfied by database.EventStore.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreProbeService pings the event store on an interval. It logs only on
// state changes.
type StoreProbeService struct {
	store    Pinger
	interval time.Duration
	timeout  time.Duration
	logger   zerolog.Logger
	healthy  *bool
}

// NewStoreProbeService probes store every interval (default 30s).
func NewStoreProbeService(store Pinger, interval time.Duration) *StoreProbeService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &StoreProbeService{
		store:    store,
		interval: interval,
		timeout:  5 * time.Second,
		logger:   logging.WithComponent("store-probe"),
	}
}

// Serve implements suture.Service. It probes once immediately.
func (s *StoreProbeService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.probe(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *StoreProbeService) probe(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
	err := s.store.Ping(pingCtx)
	cancel()
	if ctx.Err() != nil {
		return
	}

	up := err == nil
	metrics.SetEventStoreUp(up)

	if s.healthy != nil && *s.healthy == up {
		return
	}
	s.healthy = &up
	if up {
		s.logger.Info().Msg("Event store reachable")
	} else {
		s.logger.Warn().Err(err).Msg("Event store unreachable")
	}
}

func (s *StoreProbeService) String() string {
	return "store-probe"
}
