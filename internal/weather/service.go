package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/i474232898/regional-weather/internal/common"
)

// MaxNameLength bounds region names, including geocoded ones.
const MaxNameLength = 120

// AddResult describes a successful add. RefreshErr is set when the follow-up
// refresh of all regions failed; the add itself is committed regardless.
type AddResult struct {
	Index      int
	Region     Region
	RefreshErr error
}

// Service owns the in-memory region list and keeps it equal to the persisted
// list after every add, delete and refresh commit.
type Service struct {
	client    Client
	store     Store
	refresher *Refresher
	geocoder  Geocoder
	indicator ActivityIndicator
	logger    *slog.Logger

	mu         sync.RWMutex
	regions    []Region
	generation uint64
	closed     bool
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithGeocoder enables place queries and reverse-geocoded names.
func WithGeocoder(g Geocoder) ServiceOption {
	return func(s *Service) {
		s.geocoder = g
	}
}

// WithServiceIndicator sets the indicator toggled around single-region fetches.
func WithServiceIndicator(ind ActivityIndicator) ServiceOption {
	return func(s *Service) {
		if ind != nil {
			s.indicator = ind
		}
	}
}

// WithServiceLogger sets the logger.
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService loads the saved regions from store and returns a ready Service.
func NewService(ctx context.Context, client Client, store Store, refresher *Refresher, opts ...ServiceOption) *Service {
	s := &Service{
		client:    client,
		store:     store,
		refresher: refresher,
		indicator: noopIndicator{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.regions = store.Load(ctx)
	s.logger.Info("regions loaded", "count", len(s.regions))
	return s
}

// Regions returns a copy of the current region list.
func (s *Service) Regions() []Region {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRegions(s.regions)
}

// Summaries returns the list rows in unit.
func (s *Service) Summaries(unit Unit) []RegionSummary {
	regions := s.Regions()
	out := make([]RegionSummary, 0, len(regions))
	for i, r := range regions {
		out = append(out, Summarize(i, r, unit))
	}
	return out
}

// Detail returns the detail page for the region at index.
func (s *Service) Detail(index int, unit Unit) (RegionDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.regions) {
		return RegionDetail{}, ErrRegionNotFound
	}
	return Detail(index, len(s.regions), s.regions[index], unit), nil
}

// Refreshing reports whether a refresh batch is in flight.
func (s *Service) Refreshing() bool {
	return s.refresher.Busy()
}

// Refresh re-fetches every region and commits the result all-or-nothing:
// if any fetch failed nothing is committed or persisted and ErrNetwork is
// returned.
//
// A batch whose base list was changed by an add or delete while it ran is
// discarded with ErrRefreshSuperseded. After Close, a finished batch is
// dropped silently.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrClosed
	}
	base := cloneRegions(s.regions)
	gen := s.generation
	s.mu.RUnlock()

	res, err := s.refresher.RefreshAll(ctx, base)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.Debug("refresh finished after close; dropping result", "batch", res.BatchID, "had_error", res.HadError)
		return nil
	}
	if res.HadError {
		return fmt.Errorf("refresh batch %s: %w", res.BatchID, ErrNetwork)
	}
	if s.generation != gen {
		s.logger.Info("refresh superseded by region change", "batch", res.BatchID)
		return ErrRefreshSuperseded
	}
	s.commitLocked(ctx, res.Regions)
	return nil
}

// AddRegion resolves nr, fetches its weather, appends it and persists the
// list, then refreshes all regions. A failed fetch adds nothing and returns
// ErrNetwork.
func (s *Service) AddRegion(ctx context.Context, nr NewRegion) (AddResult, error) {
	place, err := s.resolve(ctx, nr)
	if err != nil {
		return AddResult{}, err
	}

	s.indicator.Begin()
	snap, err := s.client.Fetch(ctx, place.Coordinate)
	s.indicator.End()
	if err != nil {
		s.logger.Warn("add region fetch failed", "name", place.Name, "error", err)
		if !errors.Is(err, ErrNetwork) {
			err = NewNetworkError(err)
		}
		return AddResult{}, err
	}

	region := Region{
		Name:      place.Name,
		Latitude:  place.Coordinate.Latitude,
		Longitude: place.Coordinate.Longitude,
	}.WithSnapshot(snap)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return AddResult{}, ErrClosed
	}
	next := append(cloneRegions(s.regions), region)
	s.commitLocked(ctx, next)
	index := len(next) - 1
	s.mu.Unlock()

	res := AddResult{Index: index, Region: region}
	if err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrRefreshInProgress) {
		res.RefreshErr = err
	}
	return res, nil
}

// DeleteRegion removes the region at index, shifting later regions down by
// one, and persists the list.
func (s *Service) DeleteRegion(ctx context.Context, index int) (Region, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Region{}, ErrClosed
	}
	if index < 0 || index >= len(s.regions) {
		return Region{}, ErrRegionNotFound
	}
	removed := s.regions[index]
	next := make([]Region, 0, len(s.regions)-1)
	next = append(next, s.regions[:index]...)
	next = append(next, s.regions[index+1:]...)
	s.commitLocked(ctx, next)
	return removed, nil
}

// Close stops the service from accepting or committing changes. Batches
// still in flight finish without effect.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// commitLocked replaces the list and persists it. Persistence failures are
// logged and otherwise ignored; the in-memory list stays authoritative until
// the next successful save.
func (s *Service) commitLocked(ctx context.Context, regions []Region) {
	s.regions = regions
	s.generation++
	if err := s.store.Save(ctx, regions); err != nil {
		s.logger.Error("regions not persisted", "count", len(regions), "error", err)
	}
}

func (s *Service) resolve(ctx context.Context, nr NewRegion) (Place, error) {
	name := strings.TrimSpace(nr.Name)

	switch {
	case nr.Coordinate != nil:
		place := Place{Name: name, Coordinate: *nr.Coordinate}
		if place.Name == "" && s.geocoder != nil {
			n, err := s.geocoder.ReverseGeocode(ctx, place.Coordinate)
			if err != nil {
				s.logger.Warn("reverse geocoding failed", "error", err)
			} else {
				place.Name = n
			}
		}
		place.Name = common.Truncate(place.Name, MaxNameLength)
		return place, nil

	case nr.Query != nil:
		if s.geocoder == nil {
			return Place{}, ErrGeocoderUnavailable
		}
		place, err := s.geocoder.Geocode(ctx, *nr.Query)
		if err != nil {
			return Place{}, fmt.Errorf("geocode %q: %w", nr.Query.City, err)
		}
		if name != "" {
			place.Name = name
		}
		place.Name = common.Truncate(place.Name, MaxNameLength)
		return place, nil

	default:
		return Place{}, ErrInvalidRegion
	}
}
