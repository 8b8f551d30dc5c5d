package geocoding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/regional-weather/internal/weather"
)

// The geocoder package keeps its API key in a package variable.
var keyMu sync.Mutex

// GoogleGeocoder resolves places through the Google Geocoding API.
type GoogleGeocoder struct {
	apiKey  string
	forward func(geocoder.Address) (geocoder.Location, error)
	reverse func(geocoder.Location) ([]geocoder.Address, error)
}

// NewGoogleGeocoder returns a geocoder using apiKey.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{
		apiKey:  apiKey,
		forward: geocoder.Geocoding,
		reverse: geocoder.GeocodingReverse,
	}
}

// Geocode resolves q to a named coordinate. The place is named after the
// queried city.
func (g *GoogleGeocoder) Geocode(ctx context.Context, q weather.PlaceQuery) (weather.Place, error) {
	if strings.TrimSpace(q.City) == "" {
		return weather.Place{}, fmt.Errorf("%w: city is required", weather.ErrPlaceNotFound)
	}

	addr := geocoder.Address{
		City:    q.City,
		State:   q.State,
		Country: q.Country,
	}

	loc, err := call(ctx, g.apiKey, func() (geocoder.Location, error) {
		return g.forward(addr)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return weather.Place{}, ctxErr
		}
		if isZeroResults(err) {
			return weather.Place{}, fmt.Errorf("%w: %w", weather.ErrPlaceNotFound, err)
		}
		return weather.Place{}, fmt.Errorf("%w: %w", weather.ErrGeocoderUnavailable, err)
	}
	if loc.Latitude == 0 && loc.Longitude == 0 {
		return weather.Place{}, weather.ErrPlaceNotFound
	}

	return weather.Place{
		Name: q.City,
		Coordinate: weather.Coordinate{
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
		},
	}, nil
}

// ReverseGeocode returns a display name for c: the city of the first match,
// or its formatted address.
func (g *GoogleGeocoder) ReverseGeocode(ctx context.Context, c weather.Coordinate) (string, error) {
	addrs, err := call(ctx, g.apiKey, func() ([]geocoder.Address, error) {
		return g.reverse(geocoder.Location{Latitude: c.Latitude, Longitude: c.Longitude})
	})
	if err != nil {
		return "", err
	}
	for _, a := range addrs {
		if a.City != "" {
			return a.City, nil
		}
		if a.FormattedAddress != "" {
			return a.FormattedAddress, nil
		}
	}
	return "", errors.New("no address for coordinate")
}

// isZeroResults reports whether err is the library's ZERO_RESULTS answer
// rather than a transport, quota or key failure.
func isZeroResults(err error) bool {
	return strings.HasPrefix(err.Error(), "No results found")
}

// call runs fn with the package API key set. The underlying client has no
// context support, so cancellation only stops the wait.
func call[T any](ctx context.Context, apiKey string, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)

	go func() {
		keyMu.Lock()
		defer keyMu.Unlock()
		// Geocoding indexes the first result even when the status is unknown.
		defer func() {
			if r := recover(); r != nil {
				var zero T
				done <- result{v: zero, err: fmt.Errorf("geocoder panic: %v", r)}
			}
		}()
		geocoder.ApiKey = apiKey
		v, err := fn()
		done <- result{v: v, err: err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-done:
		return r.v, r.err
	}
}
