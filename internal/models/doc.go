// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

// Package models defines the launch event at each stage of ingestion: the JSON
// request body, the validated input, the stored record and the response.
package models
