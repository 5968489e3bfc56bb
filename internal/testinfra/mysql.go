// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

//go:build integration

package testinfra

import (
	"context"
	"fmt"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	DefaultMySQLImage          = "mysql:8.4"
	mysqlPort         nat.Port = "3306/tcp"
)

// NewMySQLContainer starts MySQL with an empty TestDatabaseName owned by
// TestDatabaseUser.
func NewMySQLContainer(ctx context.Context, opts ...DatabaseOption) (*DatabaseContainer, error) {
	return startDatabase(ctx, engine{
		name: "mysql",
		port: mysqlPort,
		env: map[string]string{
			"MYSQL_ROOT_PASSWORD": TestDatabasePassword,
			"MYSQL_DATABASE":      TestDatabaseName,
			"MYSQL_USER":          TestDatabaseUser,
			"MYSQL_PASSWORD":      TestDatabasePassword,
			"TZ":                  "UTC",
		},
		// The init server listens on port 0; only the final server logs 3306.
		ready: wait.ForLog("port: 3306  MySQL Community Server"),
		urlFunc: func(addr string) string {
			return fmt.Sprintf("mysql://%s:%s@%s/%s",
				TestDatabaseUser, TestDatabasePassword, addr, TestDatabaseName)
		},
	}, applyOptions(DefaultMySQLImage, opts))
}
