// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

package metrics

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	h, ok := o.(prometheus.Histogram)
	if !ok {
		t.Fatalf("observer %T is not a histogram", o)
	}
	m := &dto.Metric{}
	if err := h.Write(m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordLaunchEvent(t *testing.T) {
	for _, outcome := range []string{OutcomeInserted, OutcomeDeduped, OutcomeError} {
		before := testutil.ToFloat64(LaunchEventsTotal.WithLabelValues(outcome))
		RecordLaunchEvent(outcome)
		after := testutil.ToFloat64(LaunchEventsTotal.WithLabelValues(outcome))
		if after != before+1 {
			t.Errorf("launch_events_total{outcome=%q} = %v, want %v", outcome, after, before+1)
		}
	}
}

func TestRecordGeoIPLookup(t *testing.T) {
	for _, result := range []string{GeoHit, GeoMiss, GeoFiltered, GeoDisabled, GeoError} {
		before := testutil.ToFloat64(GeoIPLookups.WithLabelValues(result))
		RecordGeoIPLookup(result)
		if got := testutil.ToFloat64(GeoIPLookups.WithLabelValues(result)); got != before+1 {
			t.Errorf("geoip_lookups_total{result=%q} = %v, want %v", result, got, before+1)
		}
	}
}

func TestSetGeoIPDatabaseOpen(t *testing.T) {
	SetGeoIPDatabaseOpen(true)
	if got := testutil.ToFloat64(GeoIPDatabaseOpen); got != 1 {
		t.Errorf("geoip_database_open = %v, want 1", got)
	}
	SetGeoIPDatabaseOpen(false)
	if got := testutil.ToFloat64(GeoIPDatabaseOpen); got != 0 {
		t.Errorf("geoip_database_open = %v, want 0", got)
	}
}

func TestCircuitBreakerMetrics(t *testing.T) {
	tests := []struct {
		state string
		want  float64
	}{
		{"open", 2},
		{"half-open", 1},
		{"closed", 0},
		{"bogus", 0}, // ignored, keeps the previous value
	}
	for _, tt := range tests {
		SetCircuitBreakerState("test-breaker", tt.state)
		if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("test-breaker")); got != tt.want {
			t.Errorf("state %q: circuit_breaker_state = %v, want %v", tt.state, got, tt.want)
		}
	}

	counter := CircuitBreakerTransitions.WithLabelValues("test-breaker", "closed", "open")
	before := testutil.ToFloat64(counter)
	RecordCircuitBreakerTransition("test-breaker", "closed", "open")
	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("circuit_breaker_transitions_total = %v, want %v", got, before+1)
	}
}

func TestSetEventStoreUp(t *testing.T) {
	for _, up := range []bool{true, false} {
		SetEventStoreUp(up)
		want := 0.0
		if up {
			want = 1
		}
		if got := testutil.ToFloat64(EventStoreUp); got != want {
			t.Errorf("event_store_up after SetEventStoreUp(%v) = %v, want %v", up, got, want)
		}
	}
}

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		driver    string
		err       error
		wantClass string
	}{
		{name: "success", driver: "postgres"},
		{name: "timeout", driver: "mysql", err: fmt.Errorf("insert: %w", context.DeadlineExceeded), wantClass: "timeout"},
		{name: "canceled", driver: "mysql", err: context.Canceled, wantClass: "canceled"},
		{name: "refused", driver: "postgres", err: errors.New("dial tcp: connection refused"), wantClass: "connection"},
		{name: "pool closed", driver: "duckdb", err: errors.New("sql: database is closed"), wantClass: "closed"},
		{name: "other", driver: "duckdb", err: errors.New("syntax error"), wantClass: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := DBQueryDuration.WithLabelValues("insert_event", tt.driver)
			countBefore := histogramCount(t, obs)

			var errBefore float64
			if tt.err != nil {
				errBefore = testutil.ToFloat64(DBQueryErrors.WithLabelValues("insert_event", tt.driver, tt.wantClass))
			}

			RecordDBQuery("insert_event", tt.driver, 3*time.Millisecond, tt.err)

			if got := histogramCount(t, obs); got != countBefore+1 {
				t.Errorf("sample count = %d, want %d", got, countBefore+1)
			}
			if tt.err != nil {
				got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("insert_event", tt.driver, tt.wantClass))
				if got != errBefore+1 {
					t.Errorf("errors{error_type=%q} = %v, want %v", tt.wantClass, got, errBefore+1)
				}
			}
		})
	}
}

func TestUpdatePoolStats(t *testing.T) {
	UpdatePoolStats("postgres", 2, 3, 5)

	want := map[string]float64{"in_use": 2, "idle": 3, "max": 5}
	for state, v := range want {
		if got := testutil.ToFloat64(DBPoolConnections.WithLabelValues("postgres", state)); got != v {
			t.Errorf("pool{state=%q} = %v, want %v", state, got, v)
		}
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/events/launch", "200"))
	RecordAPIRequest("POST", "/api/events/launch", "200", 12*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/events/launch", "200"))
	if after != before+1 {
		t.Errorf("api_requests_total = %v, want %v", after, before+1)
	}
}

func TestTrackActiveRequest_Concurrent(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			TrackActiveRequest(true)
			TrackActiveRequest(false)
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("api_active_requests = %v, want %v", got, before)
	}
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("1.2.3")
	if got := testutil.ToFloat64(AppInfo.WithLabelValues("1.2.3", runtime.Version())); got != 1 {
		t.Errorf("app_info = %v, want 1", got)
	}
}
