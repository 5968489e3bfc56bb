// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

/*
Package services adapts collector components to suture.Service.

HTTPServerService binds the listen address, serves until the context is
canceled and then drains in-flight requests with http.Server.Shutdown.

StoreProbeService pings the event store on an interval and publishes the
result as the event_store_up gauge, so alerting does not depend on inbound
traffic.
*/
package services
