// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

package ingest

import (
	"context"
	"fmt"

	"github.com/tomtom215/conduct-telemetry/internal/database"
	"github.com/tomtom215/conduct-telemetry/internal/logging"
	"github.com/tomtom215/conduct-telemetry/internal/metrics"
	"github.com/tomtom215/conduct-telemetry/internal/models"
)

// GeoResolver maps an address to a location. It never fails; an unknown
// location is an empty GeoInfo.
type GeoResolver interface {
	Resolve(address string) models.GeoInfo
}

// Pipeline orchestrates enrichment and storage of launch events.
type Pipeline struct {
	geo   GeoResolver
	store database.EventStore
}

// New returns a Pipeline using the given resolver and store.
func New(geo GeoResolver, store database.EventStore) *Pipeline {
	return &Pipeline{geo: geo, store: store}
}

// Ingest stores in once per install and client day. A repeat of an already
// stored key succeeds with Deduped set. Only storage failures return an error.
func (p *Pipeline) Ingest(ctx context.Context, in models.LaunchEventInput, origin RequestOrigin) (*models.LaunchEventResult, error) {
	ip := ClientAddress(origin)
	event := models.NewLaunchEvent(in, ip, p.geo.Resolve(ip))

	inserted, err := p.store.Insert(ctx, event)
	if err != nil {
		metrics.RecordLaunchEvent(metrics.OutcomeError)
		return nil, fmt.Errorf("store launch event: %w", err)
	}

	outcome := metrics.OutcomeInserted
	if !inserted {
		outcome = metrics.OutcomeDeduped
	}
	metrics.RecordLaunchEvent(outcome)

	logging.Ctx(ctx).Debug().
		Str("install_id", event.InstallID).
		Str("client_date", event.ClientDate).
		Str("platform", event.Platform).
		Str("app_version", event.AppVersion).
		Bool("geo", !event.Geo.IsEmpty()).
		Str("outcome", outcome).
		Msg("Launch event processed")

	return &models.LaunchEventResult{OK: true, Deduped: !inserted}, nil
}
