package maps

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nandanugg/tourist-safety/module/core/domain"
)

type fakeKV struct {
	data    map[string]string
	getErr  error
	setKeys []string
	ttl     time.Duration
}

func (f *fakeKV) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeKV) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.setKeys = append(f.setKeys, key)
	f.ttl = expiration
	f.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

type countingFinder struct {
	calls int
	place *domain.Place
	err   error
}

func (f *countingFinder) FindNearest(context.Context, string, domain.Coordinate) (*domain.Place, error) {
	f.calls++
	return f.place, f.err
}

func TestCacheKey(t *testing.T) {
	got := CacheKey("hospital", domain.Coordinate{Lat: 23.25912, Lon: 77.41268})
	if got != "places:hospital:23.259,77.413" {
		t.Errorf("unexpected key %s", got)
	}
}

func TestCachedFinder_MissThenHit(t *testing.T) {
	store := &fakeKV{data: map[string]string{}}
	next := &countingFinder{place: &domain.Place{Name: "City Hospital", DurationText: "5 mins"}}
	c := NewCachedFinder(next, store, time.Minute, nil)
	at := domain.Coordinate{Lat: 23.2591, Lon: 77.4126}

	for i := 0; i < 2; i++ {
		p, err := c.FindNearest(context.Background(), "hospital", at)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Name != "City Hospital" {
			t.Errorf("unexpected place %+v", p)
		}
	}
	if next.calls != 1 {
		t.Errorf("expected one upstream call, got %d", next.calls)
	}
	if len(store.setKeys) != 1 || store.ttl != time.Minute {
		t.Errorf("expected one write with ttl, got %v %v", store.setKeys, store.ttl)
	}
}

func TestCachedFinder_ErrorsNotCached(t *testing.T) {
	store := &fakeKV{data: map[string]string{}}
	next := &countingFinder{err: domain.ErrNoPlaceFound}
	c := NewCachedFinder(next, store, 0, nil)

	if _, err := c.FindNearest(context.Background(), "police", domain.Coordinate{}); !errors.Is(err, domain.ErrNoPlaceFound) {
		t.Fatalf("expected ErrNoPlaceFound, got %v", err)
	}
	if len(store.setKeys) != 0 {
		t.Errorf("expected nothing cached, got %v", store.setKeys)
	}
}

func TestCachedFinder_ReadFailureFallsThrough(t *testing.T) {
	store := &fakeKV{data: map[string]string{}, getErr: errors.New("connection refused")}
	next := &countingFinder{place: &domain.Place{Name: "Station"}}
	c := NewCachedFinder(next, store, 0, nil)

	p, err := c.FindNearest(context.Background(), "police", domain.Coordinate{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Station" || next.calls != 1 {
		t.Errorf("expected upstream result, got %+v after %d calls", p, next.calls)
	}
}

func TestCachedFinder_HitRebuildsDirectionsForRequester(t *testing.T) {
	store := &fakeKV{data: map[string]string{}}
	dest := domain.Coordinate{Lat: 23.2602, Lon: 77.4150}
	first := domain.Coordinate{Lat: 23.2591, Lon: 77.4121}
	second := domain.Coordinate{Lat: 23.2593, Lon: 77.4123}
	if CacheKey("hospital", first) != CacheKey("hospital", second) {
		t.Fatal("test positions must share a cache cell")
	}

	next := &countingFinder{place: &domain.Place{
		Name:         "City Hospital",
		Location:     dest,
		DistanceText: "0.3 km",
		DurationText: "4 mins",
		URL:          directionsURL(formatLatLng(first), dest),
	}}
	c := NewCachedFinder(next, store, time.Minute, nil)

	if _, err := c.FindNearest(context.Background(), "hospital", first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := c.FindNearest(context.Background(), "hospital", second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.calls != 1 {
		t.Fatalf("expected a cache hit, got %d upstream calls", next.calls)
	}
	if want := directionsURL("23.2593,77.4123", dest); p.URL != want {
		t.Errorf("expected directions from the requester\n got %s\nwant %s", p.URL, want)
	}
	if p.Name != "City Hospital" || p.Location != dest {
		t.Errorf("unexpected place %+v", p)
	}
	if p.DistanceText != notAvailable || p.DurationText != notAvailable {
		t.Errorf("expected walk texts dropped for another origin, got %q %q", p.DistanceText, p.DurationText)
	}

	again, err := c.FindNearest(context.Background(), "hospital", first)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.DurationText != "4 mins" || again.URL != directionsURL(formatLatLng(first), dest) {
		t.Errorf("expected original walk data for the measured origin, got %+v", again)
	}
}
