// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// ErrNoLogger is returned when the tree is built without a logger.
var ErrNoLogger = errors.New("supervisor: logger is required")

const (
	rootName     = "conduct-telemetry"
	dataLayerKey = "data-layer"
	apiLayerKey  = "api-layer"
)

// TreeConfig tunes restart behavior. Zero fields take DefaultTreeConfig values.
type TreeConfig struct {
	// FailureThreshold is how many failures a layer absorbs before backing off.
	FailureThreshold float64

	// FailureDecay is the failure count half-life, in seconds.
	FailureDecay float64

	// FailureBackoff is how long a layer pauses once over the threshold.
	FailureBackoff time.Duration

	// ShutdownTimeout bounds how long each service may take to stop.
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig matches suture's own defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

func (c TreeConfig) withDefaults() TreeConfig {
	d := DefaultTreeConfig()
	if c.FailureThreshold == 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.FailureDecay == 0 {
		c.FailureDecay = d.FailureDecay
	}
	if c.FailureBackoff == 0 {
		c.FailureBackoff = d.FailureBackoff
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	return c
}

func (c TreeConfig) spec(hook suture.EventHook) suture.Spec {
	return suture.Spec{
		EventHook:        hook,
		FailureThreshold: c.FailureThreshold,
		FailureDecay:     c.FailureDecay,
		FailureBackoff:   c.FailureBackoff,
		Timeout:          c.ShutdownTimeout,
	}
}

// SupervisorTree separates storage probes from the HTTP listener so that a
// crash loop in one layer never restarts the other.
type SupervisorTree struct {
	root   *suture.Supervisor
	layers map[string]*suture.Supervisor
	config TreeConfig
}

// NewSupervisorTree builds the root and both layers. Supervisor events are
// reported through logger.
func NewSupervisorTree(logger *slog.Logger, config TreeConfig) (*SupervisorTree, error) {
	if logger == nil {
		return nil, ErrNoLogger
	}
	config = config.withDefaults()

	// Layers inherit the root's hook when added.
	events := &sutureslog.Handler{Logger: logger}
	root := suture.New(rootName, config.spec(events.MustHook()))

	layers := make(map[string]*suture.Supervisor, 2)
	for _, name := range []string{dataLayerKey, apiLayerKey} {
		layer := suture.New(name, config.spec(nil))
		root.Add(layer)
		layers[name] = layer
	}

	return &SupervisorTree{root: root, layers: layers, config: config}, nil
}

// Root returns the root supervisor.
func (t *SupervisorTree) Root() *suture.Supervisor {
	return t.root
}

// AddDataService adds a background service that watches storage.
func (t *SupervisorTree) AddDataService(svc suture.Service) suture.ServiceToken {
	return t.layers[dataLayerKey].Add(svc)
}

// AddAPIService adds a service that serves clients, normally the HTTP server.
func (t *SupervisorTree) AddAPIService(svc suture.Service) suture.ServiceToken {
	return t.layers[apiLayerKey].Add(svc)
}

// Serve blocks until ctx is canceled and every service has stopped or timed out.
func (t *SupervisorTree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground is Serve in a goroutine.
func (t *SupervisorTree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that missed ShutdownTimeout.
func (t *SupervisorTree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
