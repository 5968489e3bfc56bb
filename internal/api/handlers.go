// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

package api

import (
	"context"
	"time"

	"github.com/tomtom215/conduct-telemetry/internal/ingest"
	"github.com/tomtom215/conduct-telemetry/internal/models"
)

// Ingester stores one validated launch event.
type Ingester interface {
	Ingest(ctx context.Context, in models.LaunchEventInput, origin ingest.RequestOrigin) (*models.LaunchEventResult, error)
}

// Pinger reports whether a dependency answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	pipeline Ingester
	store    Pinger

	// readyTimeout bounds the readiness ping.
	readyTimeout time.Duration
}

// NewHandler creates a Handler. store may be nil, in which case the service
// never reports ready.
func NewHandler(pipeline Ingester, store Pinger) *Handler {
	return &Handler{
		pipeline:     pipeline,
		store:        store,
		readyTimeout: 2 * time.Second,
	}
}
