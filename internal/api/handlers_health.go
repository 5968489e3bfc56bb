// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/conduct-telemetry/internal/models"
)

var errNoStore = errors.New("no event store configured")

// Health is the liveness probe. It does not touch dependencies.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.HealthResponse{OK: true})
}

// HealthReady returns 200 only while the event store answers a ping.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	err := errNoStore
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.readyTimeout)
		err = h.store.Ping(ctx)
		cancel()
	}
	if err != nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeNotReady, "Event store unavailable", err)
		return
	}
	respondJSON(w, http.StatusOK, &models.HealthResponse{OK: true})
}
