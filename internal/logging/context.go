// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type scopeKey struct{}

// scope is the per-request logging state carried in a context. Both fields
// are optional.
type scope struct {
	requestID string
	logger    *zerolog.Logger
}

func scopeFrom(ctx context.Context) scope {
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

// GenerateRequestID returns a random UUID for requests that arrive without
// an X-Request-ID.
func GenerateRequestID() string {
	return uuid.NewString()
}

// ContextWithRequestID tags every Ctx logger derived from the returned
// context with request_id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	s := scopeFrom(ctx)
	s.requestID = id
	return context.WithValue(ctx, scopeKey{}, s)
}

// RequestIDFromContext returns the request id, or "".
func RequestIDFromContext(ctx context.Context) string {
	return scopeFrom(ctx).requestID
}

// ContextWithLogger makes Ctx use logger instead of the global logger.
// Tests use it to capture per-request output.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	s := scopeFrom(ctx)
	s.logger = &logger
	return context.WithValue(ctx, scopeKey{}, s)
}

// Ctx returns the request's logger.
//
//	logging.Ctx(ctx).Debug().Str("outcome", outcome).Msg("Launch event processed")
func Ctx(ctx context.Context) *zerolog.Logger {
	s := scopeFrom(ctx)

	var l zerolog.Logger
	if s.logger != nil {
		l = *s.logger
	} else {
		l = Logger()
	}
	if s.requestID != "" {
		l = l.With().Str("request_id", s.requestID).Logger()
	}
	return &l
}
