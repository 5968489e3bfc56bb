// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

package geoip

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/oschwald/geoip2-golang"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/conduct-telemetry/internal/config"
	"github.com/tomtom215/conduct-telemetry/internal/models"
)

type fakeReader struct {
	places  map[string]place
	err     error
	lookups atomic.Int32
	closed  atomic.Bool
}

func (f *fakeReader) lookup(ip net.IP) (place, error) {
	f.lookups.Add(1)
	if f.err != nil {
		return place{}, f.err
	}
	return f.places[ip.String()], nil
}

func (f *fakeReader) Close() error {
	f.closed.Store(true)
	return nil
}

type countingOpener struct {
	reader *fakeReader
	err    error
	opens  atomic.Int32
}

func (o *countingOpener) open(string) (cityReader, error) {
	o.opens.Add(1)
	if o.err != nil {
		return nil, o.err
	}
	return o.reader, nil
}

func shanghai() *fakeReader {
	return &fakeReader{places: map[string]place{
		"8.8.8.8":              {Country: "China", Region: "Shanghai", City: "Shanghai"},
		"2606:4700:4700::1111": {Country: "United States"},
	}}
}

func assertEmpty(t *testing.T, geo models.GeoInfo) {
	t.Helper()
	if !geo.IsEmpty() {
		t.Errorf("expected empty GeoInfo, got country=%v region=%v city=%v", geo.Country, geo.Region, geo.City)
	}
}

func TestResolver_NonPublicSkipsLookup(t *testing.T) {
	t.Parallel()

	opener := &countingOpener{reader: shanghai()}
	r := newResolver("/data/city.mmdb", opener.open)

	for _, addr := range []string{"10.1.2.3", "127.0.0.1", "::1", "192.168.0.10", "240.0.0.5", "fe80::1"} {
		assertEmpty(t, r.Resolve(addr))
	}
	if n := opener.opens.Load(); n != 0 {
		t.Errorf("database opened %d times, want 0", n)
	}
	if n := opener.reader.lookups.Load(); n != 0 {
		t.Errorf("lookups = %d, want 0", n)
	}
}

func TestResolver_UnparseableAddress(t *testing.T) {
	t.Parallel()

	opener := &countingOpener{reader: shanghai()}
	r := newResolver("/data/city.mmdb", opener.open)

	for _, addr := range []string{"", "not-an-ip", "8.8.8", "::gg"} {
		assertEmpty(t, r.Resolve(addr))
	}
	if n := opener.reader.lookups.Load(); n != 0 {
		t.Errorf("lookups = %d, want 0", n)
	}
}

func TestResolver_Disabled(t *testing.T) {
	t.Parallel()

	r := NewResolver(config.GeoIPConfig{})
	for _, addr := range []string{"8.8.8.8", "2606:4700:4700::1111", "10.0.0.1"} {
		assertEmpty(t, r.Resolve(addr))
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestResolver_Hit(t *testing.T) {
	t.Parallel()

	opener := &countingOpener{reader: shanghai()}
	r := newResolver("/data/city.mmdb", opener.open)

	geo := r.Resolve("8.8.8.8")
	if geo.Country == nil || *geo.Country != "China" {
		t.Errorf("Country = %v, want China", geo.Country)
	}
	if geo.Region == nil || *geo.Region != "Shanghai" {
		t.Errorf("Region = %v, want Shanghai", geo.Region)
	}
	if geo.City == nil || *geo.City != "Shanghai" {
		t.Errorf("City = %v, want Shanghai", geo.City)
	}
}

func TestResolver_PartialRecord(t *testing.T) {
	t.Parallel()

	opener := &countingOpener{reader: shanghai()}
	r := newResolver("/data/city.mmdb", opener.open)

	geo := r.Resolve("2606:4700:4700::1111")
	if geo.Country == nil || *geo.Country != "United States" {
		t.Errorf("Country = %v, want United States", geo.Country)
	}
	if geo.Region != nil || geo.City != nil {
		t.Errorf("Region/City should be nil, got %v/%v", geo.Region, geo.City)
	}
}

func TestResolver_MappedAddressLooksUpIPv4(t *testing.T) {
	t.Parallel()

	opener := &countingOpener{reader: shanghai()}
	r := newResolver("/data/city.mmdb", opener.open)

	geo := r.Resolve("::ffff:8.8.8.8")
	if geo.Country == nil || *geo.Country != "China" {
		t.Errorf("Country = %v, want China", geo.Country)
	}
}

func TestResolver_LookupErrorIsEmpty(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{err: errors.New("corrupt search tree")}
	opener := &countingOpener{reader: reader}
	r := newResolver("/data/city.mmdb", opener.open)

	assertEmpty(t, r.Resolve("8.8.8.8"))
	if n := reader.lookups.Load(); n != 1 {
		t.Errorf("lookups = %d, want 1", n)
	}
}

func TestResolver_OpenFailureBacksOff(t *testing.T) {
	t.Parallel()

	const backoff = 200 * time.Millisecond
	opener := &countingOpener{err: errors.New("no such file")}
	r := newResolverWithBackoff("/missing.mmdb", opener.open, backoff)

	assertEmpty(t, r.Resolve("8.8.8.8"))
	assertEmpty(t, r.Resolve("8.8.8.8"))
	if n := opener.opens.Load(); n != 1 {
		t.Fatalf("opens = %d, want 1 while the breaker is open", n)
	}
	if state := r.breaker.State(); state != gobreaker.StateOpen {
		t.Fatalf("breaker state = %v, want open", state)
	}

	time.Sleep(backoff + 50*time.Millisecond)
	opener.err = nil
	opener.reader = shanghai()

	geo := r.Resolve("8.8.8.8")
	if geo.Country == nil {
		t.Error("expected lookup to succeed after backoff")
	}
	if n := opener.opens.Load(); n != 2 {
		t.Errorf("opens = %d, want 2", n)
	}
	if state := r.breaker.State(); state != gobreaker.StateClosed {
		t.Errorf("breaker state = %v, want closed", state)
	}
}

func TestResolver_FailedTrialOpenTripsAgain(t *testing.T) {
	t.Parallel()

	const backoff = 100 * time.Millisecond
	opener := &countingOpener{err: errors.New("corrupt database")}
	r := newResolverWithBackoff("/bad.mmdb", opener.open, backoff)

	assertEmpty(t, r.Resolve("8.8.8.8"))
	time.Sleep(backoff + 50*time.Millisecond)
	assertEmpty(t, r.Resolve("8.8.8.8"))
	assertEmpty(t, r.Resolve("8.8.8.8"))

	if n := opener.opens.Load(); n != 2 {
		t.Errorf("opens = %d, want 2 (initial and one trial)", n)
	}
	if state := r.breaker.State(); state != gobreaker.StateOpen {
		t.Errorf("breaker state = %v, want open", state)
	}
}

func TestResolver_OpensOnceUnderConcurrency(t *testing.T) {
	t.Parallel()

	opener := &countingOpener{reader: shanghai()}
	r := newResolver("/data/city.mmdb", opener.open)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if geo := r.Resolve("8.8.8.8"); geo.Country == nil {
				t.Error("expected a country")
			}
		}()
	}
	wg.Wait()

	if n := opener.opens.Load(); n != 1 {
		t.Errorf("opens = %d, want 1", n)
	}
	if n := opener.reader.lookups.Load(); n != 64 {
		t.Errorf("lookups = %d, want 64", n)
	}
}

func TestResolver_Close(t *testing.T) {
	t.Parallel()

	opener := &countingOpener{reader: shanghai()}
	r := newResolver("/data/city.mmdb", opener.open)

	if geo := r.Resolve("8.8.8.8"); geo.Country == nil {
		t.Fatal("expected a country before Close")
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !opener.reader.closed.Load() {
		t.Error("reader was not closed")
	}

	assertEmpty(t, r.Resolve("8.8.8.8"))
	if n := opener.opens.Load(); n != 1 {
		t.Errorf("opens = %d, want no reopen after Close", n)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestResolver_MissingDatabaseFile(t *testing.T) {
	t.Parallel()

	r := NewResolver(config.GeoIPConfig{DBPath: t.TempDir() + "/absent.mmdb"})
	assertEmpty(t, r.Resolve("8.8.8.8"))
	if err := r.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestPlaceFromCity(t *testing.T) {
	t.Parallel()

	var rec geoip2.City
	raw := `{
		"Country": {"Names": {"en": "Germany", "de": "Deutschland"}},
		"Subdivisions": [
			{"Names": {"en": "Bavaria"}},
			{"Names": {"en": "Upper Bavaria"}}
		],
		"City": {"Names": {"en": "Munich"}}
	}`
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	p := placeFromCity(&rec)
	if p.Country != "Germany" {
		t.Errorf("Country = %q, want Germany", p.Country)
	}
	if p.Region != "Upper Bavaria" {
		t.Errorf("Region = %q, want most specific subdivision", p.Region)
	}
	if p.City != "Munich" {
		t.Errorf("City = %q, want Munich", p.City)
	}

	empty := placeFromCity(&geoip2.City{})
	if empty != (place{}) {
		t.Errorf("empty record = %+v, want zero place", empty)
	}
}
