package weather

import (
	"context"
)

// Client fetches the current forecast snapshot for one coordinate pair.
// Every failure is reported as a *NetworkError.
type Client interface {
	Fetch(ctx context.Context, c Coordinate) (Snapshot, error)
}

// Store persists the ordered region list.
//
// Load returns an empty list when nothing was saved or the saved data cannot
// be decoded. Save overwrites the previous list.
type Store interface {
	Load(ctx context.Context) []Region
	Save(ctx context.Context, regions []Region) error
}

// Geocoder resolves place queries to coordinates and back.
type Geocoder interface {
	Geocode(ctx context.Context, q PlaceQuery) (Place, error)
	ReverseGeocode(ctx context.Context, c Coordinate) (string, error)
}

// ActivityIndicator is told when outbound weather requests start and stop.
// Calls may nest.
type ActivityIndicator interface {
	Begin()
	End()
}

type noopIndicator struct{}

func (noopIndicator) Begin() {}
func (noopIndicator) End()   {}
