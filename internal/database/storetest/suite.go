// Conduct Telemetry - Application Launch Event Collector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conduct-telemetry

// Package storetest holds the behavior every database.EventStore must show.
// Each engine's tests call Run with a factory for a migrated, empty store.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/conduct-telemetry/internal/database"
	"github.com/tomtom215/conduct-telemetry/internal/models"
)

// Factory returns a ready store. Run closes it.
type Factory func(t *testing.T) database.EventStore

// ConcurrentInserts is the number of goroutines racing on one key.
const ConcurrentInserts = 16

// NewEvent returns a valid event for a fresh install id on the day of ts.
func NewEvent(t *testing.T, ts string) *models.LaunchEvent {
	t.Helper()
	parsed, err := models.ParseClientTimestamp(ts)
	if err != nil {
		t.Fatalf("ParseClientTimestamp(%q): %v", ts, err)
	}
	country, city := "United States", "Ashburn"
	return models.NewLaunchEvent(models.LaunchEventInput{
		InstallID:  uuid.New(),
		AppVersion: "0.8.8",
		Platform:   "macos",
		OSVersion:  "14.5.0",
		Locale:     "en-US",
		Timestamp:  parsed,
	}, "8.8.8.8", models.GeoInfo{Country: &country, City: &city})
}

// Run executes the shared store cases against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	open := func(t *testing.T) database.EventStore {
		t.Helper()
		s := newStore(t)
		t.Cleanup(func() { _ = s.Close() })
		return s
	}

	t.Run("FirstInsertThenDuplicate", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		ev := NewEvent(t, "2026-01-30T22:12:10.000Z")

		mustInsert(t, s, ev, true)
		mustInsert(t, s, ev, false)
		mustInsert(t, s, ev, false)
		assertCount(t, s, ev.InstallID, ev.ClientDate, 1)
		assertStored(t, s, ev)

		if err := s.Ping(ctx); err != nil {
			t.Errorf("Ping() = %v", err)
		}
	})

	t.Run("DuplicateWithDifferentPayload", func(t *testing.T) {
		s := open(t)
		ev := NewEvent(t, "2026-01-30T08:00:00Z")
		mustInsert(t, s, ev, true)

		later := *ev
		later.AppVersion = "0.9.0"
		later.ClientTimestamp = ev.ClientTimestamp.Add(10 * time.Hour)
		mustInsert(t, s, &later, false)
		assertCount(t, s, ev.InstallID, ev.ClientDate, 1)
		assertStored(t, s, ev)
	})

	t.Run("DistinctDatesAreIndependent", func(t *testing.T) {
		s := open(t)
		day1 := NewEvent(t, "2026-01-30T23:59:59Z")
		day2 := *day1
		next := day1.ClientTimestamp.Add(2 * time.Second)
		day2.ClientTimestamp = next
		day2.ClientDate = next.Format(models.ClientDateLayout)

		mustInsert(t, s, day1, true)
		mustInsert(t, s, &day2, true)
		assertCount(t, s, day1.InstallID, "2026-01-30", 1)
		assertCount(t, s, day1.InstallID, "2026-01-31", 1)
	})

	t.Run("DistinctInstallsAreIndependent", func(t *testing.T) {
		s := open(t)
		a := NewEvent(t, "2026-01-30T12:00:00Z")
		b := NewEvent(t, "2026-01-30T12:00:00Z")
		mustInsert(t, s, a, true)
		mustInsert(t, s, b, true)
	})

	t.Run("ClientOffsetDecidesDate", func(t *testing.T) {
		s := open(t)
		ev := NewEvent(t, "2026-01-31T06:12:10+08:00")
		if ev.ClientDate != "2026-01-31" {
			t.Fatalf("ClientDate = %q, want 2026-01-31", ev.ClientDate)
		}
		mustInsert(t, s, ev, true)
		assertCount(t, s, ev.InstallID, "2026-01-31", 1)
		assertCount(t, s, ev.InstallID, "2026-01-30", 0)
	})

	t.Run("NullableColumns", func(t *testing.T) {
		s := open(t)
		ev := NewEvent(t, "2026-02-01T10:00:00Z")
		ev.IP = ""
		ev.OSVersion = ""
		ev.Geo = models.GeoInfo{}
		mustInsert(t, s, ev, true)

		got := fetch(t, s, ev.InstallID, ev.ClientDate)
		if got.IP != nil {
			t.Errorf("ip = %q, want NULL", *got.IP)
		}
		if !got.Geo.IsEmpty() {
			t.Errorf("geo = %s, want all NULL", formatGeo(got.Geo))
		}
		if got.OSVersion != "" {
			t.Errorf("os_version = %q, want empty", got.OSVersion)
		}
	})

	t.Run("MixedGeoStoredAsGiven", func(t *testing.T) {
		s := open(t)
		ev := NewEvent(t, "2026-02-01T11:00:00+01:00")
		country, city := "Germany", "Berlin"
		ev.IP = ""
		ev.Geo = models.GeoInfo{Country: &country, City: &city}
		mustInsert(t, s, ev, true)

		got := fetch(t, s, ev.InstallID, ev.ClientDate)
		if got.IP != nil {
			t.Errorf("ip = %q, want NULL", *got.IP)
		}
		if !sameGeo(got.Geo, ev.Geo) {
			t.Errorf("geo = %s, want %s", formatGeo(got.Geo), formatGeo(ev.Geo))
		}
		if !got.ClientTimestamp.Equal(ev.ClientTimestamp) {
			t.Errorf("client_timestamp = %v, want %v", got.ClientTimestamp, ev.ClientTimestamp)
		}
	})

	t.Run("FetchMissingKey", func(t *testing.T) {
		s := open(t)
		reader := eventReader(t, s)
		_, err := reader.FetchByKey(context.Background(), uuid.NewString(), "2026-02-01")
		if !errors.Is(err, database.ErrEventNotFound) {
			t.Errorf("FetchByKey() on empty store = %v, want ErrEventNotFound", err)
		}
	})

	t.Run("ConcurrentDuplicatesExactlyOneWins", func(t *testing.T) {
		s := open(t)
		ev := NewEvent(t, "2026-02-02T09:30:00Z")

		var (
			wg    sync.WaitGroup
			start = make(chan struct{})
			mu    sync.Mutex
			wins  int
			errs  []error
		)
		for i := 0; i < ConcurrentInserts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				inserted, err := s.Insert(ctx, ev)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, err)
					return
				}
				if inserted {
					wins++
				}
			}()
		}
		close(start)
		wg.Wait()

		if len(errs) > 0 {
			t.Fatalf("concurrent Insert() errors: %v", errs)
		}
		if wins != 1 {
			t.Errorf("inserted=true %d times, want exactly 1", wins)
		}
		assertCount(t, s, ev.InstallID, ev.ClientDate, 1)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		s := open(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := s.Insert(ctx, NewEvent(t, "2026-02-03T00:00:00Z")); err == nil {
			t.Error("Insert() with canceled context should fail")
		}
	})

	t.Run("InsertAfterClose", func(t *testing.T) {
		s := open(t)
		if err := s.Close(); err != nil {
			t.Fatalf("Close() = %v", err)
		}
		if err := s.Close(); err != nil {
			t.Errorf("second Close() = %v, want nil", err)
		}
		_, err := s.Insert(context.Background(), NewEvent(t, "2026-02-04T00:00:00Z"))
		if !errors.Is(err, database.ErrStoreClosed) {
			t.Errorf("Insert() after Close = %v, want ErrStoreClosed", err)
		}
	})
}

func mustInsert(t *testing.T, s database.EventStore, ev *models.LaunchEvent, want bool) {
	t.Helper()
	got, err := s.Insert(context.Background(), ev)
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if got != want {
		t.Fatalf("Insert() inserted = %v, want %v", got, want)
	}
}

func assertCount(t *testing.T, s database.EventStore, installID, clientDate string, want int) {
	t.Helper()
	counter, ok := s.(database.EventCounter)
	if !ok {
		t.Fatalf("%T does not implement EventCounter", s)
	}
	got, err := counter.CountByKey(context.Background(), installID, clientDate)
	if err != nil {
		t.Fatalf("CountByKey() error = %v", err)
	}
	if got != want {
		t.Errorf("CountByKey(%s, %s) = %d, want %d", installID, clientDate, got, want)
	}
}

func eventReader(t *testing.T, s database.EventStore) database.EventReader {
	t.Helper()
	reader, ok := s.(database.EventReader)
	if !ok {
		t.Fatalf("%T does not implement EventReader", s)
	}
	return reader
}

func fetch(t *testing.T, s database.EventStore, installID, clientDate string) database.StoredEvent {
	t.Helper()
	got, err := eventReader(t, s).FetchByKey(context.Background(), installID, clientDate)
	if err != nil {
		t.Fatalf("FetchByKey(%s, %s) error = %v", installID, clientDate, err)
	}
	return got
}

// assertStored checks that every column of the stored row matches ev.
func assertStored(t *testing.T, s database.EventStore, ev *models.LaunchEvent) {
	t.Helper()
	got := fetch(t, s, ev.InstallID, ev.ClientDate)

	fields := []struct {
		column    string
		got, want string
	}{
		{"install_id", got.InstallID, ev.InstallID},
		{"app_version", got.AppVersion, ev.AppVersion},
		{"platform", got.Platform, ev.Platform},
		{"os_version", got.OSVersion, ev.OSVersion},
		{"locale", got.Locale, ev.Locale},
		{"client_date", got.ClientDate, ev.ClientDate},
	}
	for _, f := range fields {
		if f.got != f.want {
			t.Errorf("%s = %q, want %q", f.column, f.got, f.want)
		}
	}
	if got.IP == nil || *got.IP != ev.IP {
		t.Errorf("ip = %s, want %q", formatPtr(got.IP), ev.IP)
	}
	if !sameGeo(got.Geo, ev.Geo) {
		t.Errorf("geo = %s, want %s", formatGeo(got.Geo), formatGeo(ev.Geo))
	}
	if !got.ClientTimestamp.Equal(ev.ClientTimestamp) {
		t.Errorf("client_timestamp = %v, want %v", got.ClientTimestamp, ev.ClientTimestamp)
	}
}

func sameGeo(a, b models.GeoInfo) bool {
	return samePtr(a.Country, b.Country) && samePtr(a.Region, b.Region) && samePtr(a.City, b.City)
}

func samePtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func formatGeo(g models.GeoInfo) string {
	return fmt.Sprintf("{country:%s region:%s city:%s}", formatPtr(g.Country), formatPtr(g.Region), formatPtr(g.City))
}

func formatPtr(p *string) string {
	if p == nil {
		return "NULL"
	}
	return fmt.Sprintf("%q", *p)
}
