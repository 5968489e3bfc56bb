// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

// Package geoip resolves client addresses to a country, region and city using
// a local MaxMind City database read through oschwald/geoip2-golang.
//
// Resolution never fails from the caller's point of view. Addresses that are
// unparseable or not publicly routable are never looked up, and any problem
// opening or reading the database yields an empty models.GeoInfo.
package geoip
