// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	dockerOnce sync.Once
	dockerErr  error
)

// SkipIfNoDocker skips the test when no Docker daemon answers. The daemon is
// probed once per test binary.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	dockerOnce.Do(func() {
		dockerErr = probeDocker()
	})
	if dockerErr != nil {
		t.Skipf("Skipping test: Docker not available: %v", dockerErr)
	}
}

func probeDocker() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := testcontainers.NewDockerProvider()
	if err != nil {
		return err
	}
	defer provider.Close()
	return provider.Health(ctx)
}

// CleanupContainer terminates a container and logs, rather than fails on,
// a termination error.
func CleanupContainer(t *testing.T, ctx context.Context, container testcontainers.Container) {
	t.Helper()

	if container != nil {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	}
}

// engine describes how to start one database image and build its URL.
type engine struct {
	name    string
	port    nat.Port
	env     map[string]string
	ready   wait.Strategy
	urlFunc func(addr string) string
}

func startDatabase(ctx context.Context, e engine, cfg *databaseConfig) (*DatabaseContainer, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        cfg.image,
			ExposedPorts: []string{string(e.port)},
			Env:          e.env,
			WaitingFor: wait.ForAll(e.ready, wait.ForListeningPort(e.port)).
				WithStartupTimeout(cfg.startTimeout),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s container: %w", e.name, err)
	}

	host, err := container.Host(ctx)
	if err == nil {
		var mapped nat.Port
		if mapped, err = container.MappedPort(ctx, e.port); err == nil {
			return &DatabaseContainer{
				Container: container,
				URL:       e.urlFunc(net.JoinHostPort(host, mapped.Port())),
			}, nil
		}
	}

	_ = container.Terminate(ctx) //nolint:errcheck // already failing
	return nil, fmt.Errorf("%s endpoint: %w", e.name, err)
}
