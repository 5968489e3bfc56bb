// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

package geoip

import "testing"

func TestParsePublic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		address string
		want    bool
	}{
		// Public
		{"8.8.8.8", true},
		{"1.1.1.1", true},
		{" 81.2.69.142 ", true},
		{"2606:4700:4700::1111", true},
		{"[2a00:1450:4001:80b::200e]", true},
		{"::ffff:8.8.8.8", true},

		// Private
		{"10.0.0.1", false},
		{"172.16.5.4", false},
		{"172.31.255.255", false},
		{"192.168.1.100", false},
		{"fd12:3456:789a::1", false},

		// Loopback
		{"127.0.0.1", false},
		{"127.255.255.254", false},
		{"::1", false},
		{"::ffff:127.0.0.1", false},

		// Link-local and multicast
		{"169.254.10.10", false},
		{"fe80::1%eth0", false},
		{"224.0.0.1", false},
		{"ff02::1", false},

		// Reserved and special purpose
		{"0.0.0.0", false},
		{"::", false},
		{"100.64.1.1", false},
		{"192.0.2.15", false},
		{"198.18.0.1", false},
		{"198.51.100.7", false},
		{"203.0.113.9", false},
		{"240.0.0.1", false},
		{"255.255.255.255", false},
		{"2001:db8::1", false},
		{"100::1", false},

		// Unparseable
		{"", false},
		{"unknown", false},
		{"300.1.1.1", false},
		{"8.8.8.8:443", false},
		{"8.8.8.8, 1.1.1.1", false},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			t.Parallel()
			if _, got := ParsePublic(tt.address); got != tt.want {
				t.Errorf("ParsePublic(%q) = %v, want %v", tt.address, got, tt.want)
			}
		})
	}
}
