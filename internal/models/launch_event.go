// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ClientDateLayout is the format of LaunchEvent.ClientDate.
const ClientDateLayout = "2006-01-02"

// LaunchEventRequest is the body of POST /api/events/launch.
type LaunchEventRequest struct {
	InstallID  string `json:"install_id" validate:"required,installid" example:"0d3e5b16-9c9c-4a2c-90a0-4b9325c3f39d"`
	AppVersion string `json:"app_version" validate:"required,min=1,max=32" example:"0.8.8"`
	Platform   string `json:"platform" validate:"required,min=1,max=32" example:"macos"`
	OSVersion  string `json:"os_version" validate:"required,min=1,max=64" example:"14.5.0"`
	Locale     string `json:"locale" validate:"required,min=2,max=32" example:"zh-CN"`
	Timestamp  string `json:"timestamp" validate:"required,isotime" example:"2026-01-30T22:12:10.000Z"`
}

// ToInput converts a request that already passed validation.
func (r *LaunchEventRequest) ToInput() (LaunchEventInput, error) {
	id, err := uuid.Parse(r.InstallID)
	if err != nil {
		return LaunchEventInput{}, fmt.Errorf("install_id: %w", err)
	}
	ts, err := ParseClientTimestamp(r.Timestamp)
	if err != nil {
		return LaunchEventInput{}, fmt.Errorf("timestamp: %w", err)
	}
	return LaunchEventInput{
		InstallID:  id,
		AppVersion: r.AppVersion,
		Platform:   r.Platform,
		OSVersion:  r.OSVersion,
		Locale:     r.Locale,
		Timestamp:  ts,
	}, nil
}

// LaunchEventInput is a validated, typed launch event.
type LaunchEventInput struct {
	InstallID  uuid.UUID
	AppVersion string
	Platform   string
	OSVersion  string
	Locale     string

	// Timestamp keeps the offset the client sent.
	Timestamp time.Time
}

// GeoInfo is a best-effort location. Each field is independently nil.
type GeoInfo struct {
	Country *string `json:"geo_country"`
	Region  *string `json:"geo_region"`
	City    *string `json:"geo_city"`
}

// IsEmpty reports whether no field is set.
func (g GeoInfo) IsEmpty() bool {
	return g.Country == nil && g.Region == nil && g.City == nil
}

// LaunchEvent is the record handed to an EventStore. At most one is stored
// per (InstallID, ClientDate).
type LaunchEvent struct {
	InstallID  string
	AppVersion string
	Platform   string
	OSVersion  string
	Locale     string

	// IP is the extracted client address. It may be empty or non-routable.
	IP string

	Geo GeoInfo

	ClientTimestamp time.Time

	// ClientDate is ClientTimestamp's calendar day in the client's own
	// offset, formatted with ClientDateLayout.
	ClientDate string
}

// NewLaunchEvent assembles the stored record from validated input.
func NewLaunchEvent(in LaunchEventInput, ip string, geo GeoInfo) *LaunchEvent {
	return &LaunchEvent{
		InstallID:       in.InstallID.String(),
		AppVersion:      in.AppVersion,
		Platform:        in.Platform,
		OSVersion:       in.OSVersion,
		Locale:          in.Locale,
		IP:              ip,
		Geo:             geo,
		ClientTimestamp: in.Timestamp,
		ClientDate:      in.Timestamp.Format(ClientDateLayout),
	}
}

// ClientDay returns ClientDate as midnight UTC, the form SQL drivers bind to
// DATE columns without shifting the day.
func (e *LaunchEvent) ClientDay() (time.Time, error) {
	return time.Parse(ClientDateLayout, e.ClientDate)
}

// LaunchEventResult is the response to an accepted launch event.
type LaunchEventResult struct {
	OK      bool `json:"ok" example:"true"`
	Deduped bool `json:"deduped" example:"false"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	OK bool `json:"ok" example:"true"`
}

// APIError is the error body written by every endpoint.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps APIError.
type ErrorResponse struct {
	Error APIError `json:"error"`
}
