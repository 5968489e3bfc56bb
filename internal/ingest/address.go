// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

package ingest

import (
	"net"
	"net/http"
	"strings"
)

const (
	HeaderForwardedFor = "X-Forwarded-For"
	HeaderRealIP       = "X-Real-IP"
)

// MaxAddressLength is the widest address the ip column holds. Longer
// candidates are dropped rather than truncated.
const MaxAddressLength = 255

// RequestOrigin is what the transport knows about where a request came from.
type RequestOrigin struct {
	ForwardedFor string
	RealIP       string

	// RemoteAddr is the peer address, usually host:port.
	RemoteAddr string
}

// OriginFromRequest reads the address headers and peer of r.
func OriginFromRequest(r *http.Request) RequestOrigin {
	return RequestOrigin{
		ForwardedFor: r.Header.Get(HeaderForwardedFor),
		RealIP:       r.Header.Get(HeaderRealIP),
		RemoteAddr:   r.RemoteAddr,
	}
}

// ClientAddress returns the first X-Forwarded-For entry, else X-Real-IP, else
// the peer host. The result is not validated and may be empty; it is empty
// when the chosen candidate exceeds MaxAddressLength bytes.
func ClientAddress(o RequestOrigin) string {
	return capLength(clientAddress(o))
}

func clientAddress(o RequestOrigin) string {
	if fwd := strings.TrimSpace(o.ForwardedFor); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if realIP := strings.TrimSpace(o.RealIP); realIP != "" {
		return realIP
	}
	return peerHost(o.RemoteAddr)
}

func capLength(addr string) string {
	if len(addr) > MaxAddressLength {
		return ""
	}
	return addr
}

func peerHost(remote string) string {
	if remote == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(remote); err == nil {
		return host
	}
	// No port: a bare address, or a unix socket peer such as "@".
	return remote
}
