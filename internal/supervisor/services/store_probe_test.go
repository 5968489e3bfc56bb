// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/conduct-telemetry/internal/metrics"
)

type scriptedPinger struct {
	mu    sync.Mutex
	errs  []error
	calls int
}

func (p *scriptedPinger) Ping(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	if p.calls < len(p.errs) {
		err = p.errs[p.calls]
	}
	p.calls++
	return err
}

func (p *scriptedPinger) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestStoreProbeService_Probe(t *testing.T) {
	pinger := &scriptedPinger{errs: []error{nil, errors.New("connection refused"), nil}}
	svc := NewStoreProbeService(pinger, time.Hour)
	ctx := context.Background()

	for i, want := range []float64{1, 0, 1} {
		svc.probe(ctx)
		if got := testutil.ToFloat64(metrics.EventStoreUp); got != want {
			t.Errorf("probe #%d: event_store_up = %v, want %v", i, got, want)
		}
	}
}

func TestStoreProbeService_Serve(t *testing.T) {
	pinger := &scriptedPinger{}
	svc := NewStoreProbeService(pinger, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for pinger.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if pinger.count() < 3 {
		t.Errorf("pinged %d times, want at least 3", pinger.count())
	}
}

func TestNewStoreProbeService_DefaultInterval(t *testing.T) {
	if svc := NewStoreProbeService(&scriptedPinger{}, 0); svc.interval != 30*time.Second {
		t.Errorf("interval = %v, want 30s", svc.interval)
	}
}
