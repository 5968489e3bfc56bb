// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

// Package logging wraps zerolog behind a process-wide logger.
//
// The collector logs through this package only. It is configured once from
// main via Init and is usable before that with JSON-at-info defaults.
//
//	logging.Init(logging.Config{Level: "debug", Format: "console"})
//	logging.Info().Str("addr", addr).Msg("Listening")
//
// Request handlers log through Ctx so that the request id assigned by the
// HTTP middleware is attached to every line:
//
//	logging.Ctx(r.Context()).Error().Err(err).Msg("Insert failed")
//
// Libraries that want a *slog.Logger (the suture supervisor) get one from
// NewSlogLogger, which forwards records into the same zerolog sink.
package logging
