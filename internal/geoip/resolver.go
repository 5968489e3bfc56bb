// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

package geoip

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/oschwald/geoip2-golang"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/conduct-telemetry/internal/config"
	"github.com/tomtom215/conduct-telemetry/internal/logging"
	"github.com/tomtom215/conduct-telemetry/internal/metrics"
	"github.com/tomtom215/conduct-telemetry/internal/models"
)

// nameLocale selects which translation of each place name is stored.
const nameLocale = "en"

// DefaultReopenBackoff is how long the open breaker stays tripped after a
// failed open before one trial open is allowed.
const DefaultReopenBackoff = 30 * time.Second

const breakerName = "geoip-open"

var errResolverClosed = errors.New("geoip resolver closed")

// place is the subset of a City record the collector keeps.
type place struct {
	Country string
	Region  string
	City    string
}

type cityReader interface {
	lookup(ip net.IP) (place, error)
	Close() error
}

type openFunc func(path string) (cityReader, error)

// Resolver maps addresses to a models.GeoInfo. The database is opened on the
// first lookup that needs it and then shared by all goroutines until Close.
type Resolver struct {
	path    string
	open    openFunc
	breaker *gobreaker.CircuitBreaker[cityReader]
	logger  zerolog.Logger

	mu     sync.RWMutex
	reader cityReader
	closed bool
}

// NewResolver returns a resolver for cfg.DBPath. Nothing is opened yet; an
// empty path disables lookups entirely.
func NewResolver(cfg config.GeoIPConfig) *Resolver {
	return newResolver(cfg.DBPath, openMMDB)
}

func newResolver(path string, open openFunc) *Resolver {
	return newResolverWithBackoff(path, open, DefaultReopenBackoff)
}

func newResolverWithBackoff(path string, open openFunc, backoff time.Duration) *Resolver {
	logger := logging.WithComponent("geoip")
	metrics.SetCircuitBreakerState(breakerName, gobreaker.StateClosed.String())

	// A single failed open trips the breaker; after backoff one trial open
	// runs and either closes it or trips it again.
	breaker := gobreaker.NewCircuitBreaker[cityReader](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     backoff,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 1
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().Str("from", from.String()).Str("to", to.String()).
				Msg("GeoIP open breaker state transition")
			metrics.SetCircuitBreakerState(name, to.String())
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
		},
	})

	return &Resolver{
		path:    path,
		open:    open,
		breaker: breaker,
		logger:  logger,
	}
}

// Resolve returns the location of address, or an empty GeoInfo when it is
// not public, lookups are disabled, or anything goes wrong.
func (r *Resolver) Resolve(address string) models.GeoInfo {
	addr, ok := ParsePublic(address)
	if !ok {
		metrics.RecordGeoIPLookup(metrics.GeoFiltered)
		return models.GeoInfo{}
	}
	if r.path == "" {
		metrics.RecordGeoIPLookup(metrics.GeoDisabled)
		return models.GeoInfo{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	reader := r.reader
	if reader == nil {
		// Upgrade to the write lock only for the open itself.
		r.mu.RUnlock()
		var err error
		reader, err = r.ensureOpen()
		r.mu.RLock()
		if err != nil {
			metrics.RecordGeoIPLookup(metrics.GeoError)
			return models.GeoInfo{}
		}
		// Close may have run between the two locks.
		if r.closed {
			metrics.RecordGeoIPLookup(metrics.GeoError)
			return models.GeoInfo{}
		}
	}

	p, err := reader.lookup(net.IP(addr.AsSlice()))
	if err != nil {
		r.logger.Debug().Err(err).Str("ip", addr.String()).Msg("GeoIP lookup failed")
		metrics.RecordGeoIPLookup(metrics.GeoError)
		return models.GeoInfo{}
	}

	geo := p.toGeoInfo()
	if geo.IsEmpty() {
		metrics.RecordGeoIPLookup(metrics.GeoMiss)
	} else {
		metrics.RecordGeoIPLookup(metrics.GeoHit)
	}
	return geo
}

// ensureOpen opens the database once. Concurrent first callers wait on the
// write lock and reuse the winner's handle.
func (r *Resolver) ensureOpen() (cityReader, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, errResolverClosed
	}
	if r.reader != nil {
		return r.reader, nil
	}

	reader, err := r.breaker.Execute(func() (cityReader, error) {
		return r.open(r.path)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("geoip database unavailable: %w", err)
	}
	if err != nil {
		r.logger.Warn().Err(err).Str("path", r.path).
			Msg("Failed to open GeoIP database, geo fields will be empty")
		return nil, err
	}

	r.reader = reader
	metrics.SetGeoIPDatabaseOpen(true)
	r.logger.Info().Str("path", r.path).Msg("GeoIP database opened")
	return reader, nil
}

// Close releases the database handle. Later Resolve calls return empty
// results. It is safe to call more than once.
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	if r.reader == nil {
		return nil
	}
	err := r.reader.Close()
	r.reader = nil
	metrics.SetGeoIPDatabaseOpen(false)
	if err != nil {
		return fmt.Errorf("close geoip database: %w", err)
	}
	return nil
}

func (p place) toGeoInfo() models.GeoInfo {
	return models.GeoInfo{
		Country: optional(p.Country),
		Region:  optional(p.Region),
		City:    optional(p.City),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// mmdbReader adapts *geoip2.Reader.
type mmdbReader struct {
	db *geoip2.Reader
}

func openMMDB(path string) (cityReader, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return mmdbReader{db: db}, nil
}

func (m mmdbReader) lookup(ip net.IP) (place, error) {
	rec, err := m.db.City(ip)
	if err != nil {
		return place{}, err
	}
	return placeFromCity(rec), nil
}

func (m mmdbReader) Close() error {
	return m.db.Close()
}

// placeFromCity takes the most specific (last) subdivision as the region.
func placeFromCity(rec *geoip2.City) place {
	p := place{
		Country: rec.Country.Names[nameLocale],
		City:    rec.City.Names[nameLocale],
	}
	if n := len(rec.Subdivisions); n > 0 {
		p.Region = rec.Subdivisions[n-1].Names[nameLocale]
	}
	return p
}
