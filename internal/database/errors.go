// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

package database

import (
	"io"

	"github.com/tomtom215/conduct-telemetry/internal/logging"
)

// abandon closes a pool whose setup failed and returns cause unchanged.
// A close failure is only logged.
func abandon(pool io.Closer, driver string, cause error) error {
	if err := pool.Close(); err != nil {
		logging.Warn().Err(err).Str("driver", driver).Msg("Failed to close event store after setup error")
	}
	return cause
}
