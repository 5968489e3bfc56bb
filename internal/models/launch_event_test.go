// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

package models

import (
	"testing"
	"time"
)

func sampleRequest() LaunchEventRequest {
	return LaunchEventRequest{
		InstallID:  "0D3E5B16-9C9C-4A2C-90A0-4B9325C3F39D",
		AppVersion: "0.8.8",
		Platform:   "macos",
		OSVersion:  "14.5.0",
		Locale:     "zh-CN",
		Timestamp:  "2026-01-30T22:12:10.000Z",
	}
}

func TestLaunchEventRequest_ToInput(t *testing.T) {
	t.Parallel()

	req := sampleRequest()
	in, err := req.ToInput()
	if err != nil {
		t.Fatalf("ToInput() error = %v", err)
	}

	if got := in.InstallID.String(); got != "0d3e5b16-9c9c-4a2c-90a0-4b9325c3f39d" {
		t.Errorf("InstallID = %q, want canonical lowercase form", got)
	}
	want := time.Date(2026, 1, 30, 22, 12, 10, 0, time.UTC)
	if !in.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", in.Timestamp, want)
	}
}

func TestLaunchEventRequest_ToInputRejectsBadFields(t *testing.T) {
	t.Parallel()

	req := sampleRequest()
	req.InstallID = "not-a-uuid"
	if _, err := req.ToInput(); err == nil {
		t.Error("expected error for malformed install_id")
	}

	req = sampleRequest()
	req.Timestamp = "yesterday"
	if _, err := req.ToInput(); err == nil {
		t.Error("expected error for malformed timestamp")
	}
}

func TestNewLaunchEvent_ClientDateUsesClientOffset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		timestamp string
		wantDate  string
	}{
		{"utc", "2026-01-30T22:12:10Z", "2026-01-30"},
		{"east of utc crosses midnight", "2026-01-31T06:12:10+08:00", "2026-01-31"},
		{"west of utc stays on previous day", "2026-01-30T20:00:00-05:00", "2026-01-30"},
		{"naive is utc", "2026-01-30T23:59:59", "2026-01-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ts, err := ParseClientTimestamp(tt.timestamp)
			if err != nil {
				t.Fatalf("ParseClientTimestamp(%q) error = %v", tt.timestamp, err)
			}
			req := sampleRequest()
			in, err := req.ToInput()
			if err != nil {
				t.Fatalf("ToInput() error = %v", err)
			}
			in.Timestamp = ts

			ev := NewLaunchEvent(in, "203.0.113.9", GeoInfo{})
			if ev.ClientDate != tt.wantDate {
				t.Errorf("ClientDate = %q, want %q", ev.ClientDate, tt.wantDate)
			}
			if !ev.ClientTimestamp.Equal(ts) {
				t.Errorf("ClientTimestamp = %v, want %v", ev.ClientTimestamp, ts)
			}
			if ev.IP != "203.0.113.9" {
				t.Errorf("IP = %q", ev.IP)
			}
		})
	}
}

func TestLaunchEvent_ClientDay(t *testing.T) {
	t.Parallel()

	ev := &LaunchEvent{ClientDate: "2026-01-31"}
	day, err := ev.ClientDay()
	if err != nil {
		t.Fatalf("ClientDay() error = %v", err)
	}
	if !day.Equal(time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ClientDay() = %v", day)
	}
}

func TestGeoInfo_IsEmpty(t *testing.T) {
	t.Parallel()

	if !(GeoInfo{}).IsEmpty() {
		t.Error("zero GeoInfo should be empty")
	}
	city := "Shanghai"
	if (GeoInfo{City: &city}).IsEmpty() {
		t.Error("GeoInfo with a city should not be empty")
	}
}

func TestParseClientTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input      string
		wantErr    bool
		wantOffset int
	}{
		{input: "2026-01-30T22:12:10.000Z", wantOffset: 0},
		{input: "2026-01-30T22:12:10z", wantOffset: 0},
		{input: "2026-01-30T22:12:10+08:00", wantOffset: 8 * 3600},
		{input: "2026-01-30 22:12:10-05:30", wantOffset: -(5*3600 + 30*60)},
		{input: "2026-01-30T22:12:10.123456+0200", wantOffset: 2 * 3600},
		{input: "2026-01-30T22:12:10", wantOffset: 0},
		{input: "2026-01-30T22:12", wantOffset: 0},
		{input: "  2026-01-30T22:12:10Z  ", wantOffset: 0},
		{input: "", wantErr: true},
		{input: "2026-01-30", wantErr: true},
		{input: "30/01/2026 22:12", wantErr: true},
		{input: "2026-13-30T22:12:10Z", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseClientTimestamp(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseClientTimestamp(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClientTimestamp(%q) error = %v", tt.input, err)
			}
			if _, offset := got.Zone(); offset != tt.wantOffset {
				t.Errorf("offset = %d, want %d", offset, tt.wantOffset)
			}
		})
	}
}
