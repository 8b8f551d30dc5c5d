package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/i474232898/regional-weather/internal/weather"
)

// DefaultRegionsKey is the key the region list is saved under.
const DefaultRegionsKey = "regionInformations"

// RegionStore implements weather.Store by serializing the whole region list
// as one JSON array under a single key.
type RegionStore struct {
	blobs  BlobStore
	key    string
	logger *slog.Logger
}

// NewRegionStore returns a RegionStore over blobs. An empty key selects
// DefaultRegionsKey.
func NewRegionStore(blobs BlobStore, key string, logger *slog.Logger) *RegionStore {
	if key == "" {
		key = DefaultRegionsKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RegionStore{blobs: blobs, key: key, logger: logger}
}

// Load returns the saved regions. Missing, unreadable or undecodable data
// yields an empty list; the failure is logged, not returned.
func (s *RegionStore) Load(ctx context.Context) []weather.Region {
	data, err := s.blobs.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return []weather.Region{}
	}
	if err != nil {
		s.logger.Error("read saved regions", "key", s.key, "error", err)
		return []weather.Region{}
	}

	var regions []weather.Region
	if err := json.Unmarshal(data, &regions); err != nil {
		s.logger.Error("decode saved regions", "key", s.key, "error", err)
		return []weather.Region{}
	}
	if regions == nil {
		regions = []weather.Region{}
	}
	return regions
}

// Save overwrites the saved list with regions. Errors are returned to the
// caller, which decides whether to log them.
func (s *RegionStore) Save(ctx context.Context, regions []weather.Region) error {
	if regions == nil {
		regions = []weather.Region{}
	}
	data, err := json.Marshal(regions)
	if err != nil {
		return fmt.Errorf("encode regions: %w", err)
	}
	if err := s.blobs.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("write regions: %w", err)
	}
	return nil
}
