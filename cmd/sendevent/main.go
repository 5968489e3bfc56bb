// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

// Command sendevent posts one sample launch event to a collector and prints
// the response. The endpoint comes from EVENT_ENDPOINT, then the first
// argument, then the local default.
//
//	EVENT_ENDPOINT=https://telemetry.example.com/api/events/launch sendevent
//	sendevent http://127.0.0.1:8080/api/events/launch
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/conduct-telemetry/internal/models"
)

const (
	defaultEndpoint = "http://127.0.0.1:8080/api/events/launch"
	requestTimeout  = 5 * time.Second
	maxPrintedBody  = 64 << 10
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Getenv, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "request failed:", err)
		os.Exit(1)
	}
}

func endpoint(args []string, getenv func(string) string) string {
	if v := getenv("EVENT_ENDPOINT"); v != "" {
		return v
	}
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return defaultEndpoint
}

func sampleEvent(now time.Time) models.LaunchEventRequest {
	return models.LaunchEventRequest{
		InstallID:  uuid.NewString(),
		AppVersion: "0.0.0-sendevent",
		Platform:   "linux",
		OSVersion:  "6.8.0",
		Locale:     "en-US",
		Timestamp:  now.Format(time.RFC3339Nano),
	}
}

func run(ctx context.Context, args []string, getenv func(string) string, out io.Writer) error {
	url := endpoint(args, getenv)

	body, err := json.Marshal(sampleEvent(time.Now()))
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("Content-Type", "application/json")

	fmt.Fprintf(out, "endpoint: %s\n", url)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxPrintedBody))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	fmt.Fprintf(out, "status: %d\n", resp.StatusCode)
	fmt.Fprintf(out, "body: %s\n", bytes.TrimSpace(respBody))
	return nil
}
