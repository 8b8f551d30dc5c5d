package weather

import (
	"context"
	"errors"
	"sync"
)

var errBoom = errors.New("boom")

// fakeClient answers fetches via fn and records every coordinate requested.
type fakeClient struct {
	mu    sync.Mutex
	calls []Coordinate
	fn    func(ctx context.Context, c Coordinate) (Snapshot, error)
}

func (f *fakeClient) Fetch(ctx context.Context, c Coordinate) (Snapshot, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
	if f.fn == nil {
		return snapshotAt(c, 70), nil
	}
	return f.fn(ctx, c)
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeStore keeps the last saved list.
type fakeStore struct {
	mu      sync.Mutex
	saved   []Region
	saves   int
	saveErr error
}

func (s *fakeStore) Load(context.Context) []Region {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRegions(s.saved)
}

func (s *fakeStore) Save(_ context.Context, regions []Region) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = cloneRegions(regions)
	return nil
}

func (s *fakeStore) snapshot() ([]Region, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRegions(s.saved), s.saves
}

type fakeGeocoder struct {
	place   Place
	err     error
	name    string
	nameErr error
}

func (g *fakeGeocoder) Geocode(context.Context, PlaceQuery) (Place, error) {
	return g.place, g.err
}

func (g *fakeGeocoder) ReverseGeocode(context.Context, Coordinate) (string, error) {
	return g.name, g.nameErr
}

type countingIndicator struct {
	mu     sync.Mutex
	active int
	max    int
	begins int
}

func (c *countingIndicator) Begin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active++
	c.begins++
	if c.active > c.max {
		c.max = c.active
	}
}

func (c *countingIndicator) End() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active--
}

func snapshotAt(c Coordinate, temp float64) Snapshot {
	return Snapshot{
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		Timezone:  "UTC",
		Currently: DataPoint{Time: 1564930800, Icon: "clear-day", Temperature: temp},
	}
}

func seoulTokyo() []Region {
	return []Region{
		{Name: "Seoul", Latitude: 37.5, Longitude: 127.0},
		{Name: "Tokyo", Latitude: 35.6, Longitude: 139.7},
	}
}
