// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSlogHandler_Enabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		zerologLevel zerolog.Level
		slogLevel    slog.Level
		want         bool
	}{
		{"debug logger enables debug", zerolog.DebugLevel, slog.LevelDebug, true},
		{"info logger disables debug", zerolog.InfoLevel, slog.LevelDebug, false},
		{"info logger enables warn", zerolog.InfoLevel, slog.LevelWarn, true},
		{"error logger disables warn", zerolog.ErrorLevel, slog.LevelWarn, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := NewSlogHandlerWithLogger(zerolog.New(&bytes.Buffer{}).Level(tt.zerologLevel))
			if got := h.Enabled(context.Background(), tt.slogLevel); got != tt.want {
				t.Errorf("Enabled(%v) = %v, want %v", tt.slogLevel, got, tt.want)
			}
		})
	}
}

func TestSlogHandler_Attributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf)))

	logger.With("supervisor", "root").
		WithGroup("svc").
		Warn("service restarted",
			"name", "http-server",
			"attempt", 3,
			"backoff", 2*time.Second,
			"healthy", false,
		)

	output := buf.String()
	for _, want := range []string{
		`"level":"warn"`,
		`"supervisor":"root"`,
		`"svc.name":"http-server"`,
		`"svc.attempt":3`,
		`"svc.healthy":false`,
		"service restarted",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
}

func TestSlogHandler_NestedGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf)))

	logger.WithGroup("a").WithGroup("b").Info("m", "k", "v")

	if !strings.Contains(buf.String(), `"a.b.k":"v"`) {
		t.Errorf("expected nested group key, got: %s", buf.String())
	}
}

func TestSlogHandler_WithGroupEmpty(t *testing.T) {
	t.Parallel()

	h := NewSlogHandlerWithLogger(zerolog.Nop())
	if got := h.WithGroup(""); got != h {
		t.Error("WithGroup(\"\") should return the same handler")
	}
}

func TestSlogHandler_InlineGroupAndEmptyKey(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf)))

	logger.Info("m",
		slog.Group("", slog.String("inline", "yes")),
		slog.Group("svc", slog.Duration("backoff", time.Second)),
		slog.String("", "dropped"),
	)

	output := buf.String()
	if !strings.Contains(output, `"inline":"yes"`) {
		t.Errorf("expected inlined group member, got: %s", output)
	}
	if !strings.Contains(output, `"svc.backoff"`) {
		t.Errorf("expected grouped duration, got: %s", output)
	}
	if strings.Contains(output, "dropped") {
		t.Errorf("attribute with empty key should be dropped: %s", output)
	}
}

func TestNewSlogLogger(t *testing.T) {
	if NewSlogLogger() == nil {
		t.Fatal("NewSlogLogger() = nil")
	}
}
