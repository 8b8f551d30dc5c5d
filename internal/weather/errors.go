package weather

import "errors"

var (
	// ErrNetwork matches any failure to obtain weather from the provider.
	ErrNetwork = errors.New("network error")

	// ErrRefreshInProgress is returned when a refresh batch is already running.
	ErrRefreshInProgress = errors.New("refresh already in progress")

	// ErrRefreshSuperseded is returned when the region list changed while a
	// batch was in flight; the batch result is discarded.
	ErrRefreshSuperseded = errors.New("refresh superseded by a newer region list")

	// ErrRegionNotFound is returned for an index outside the region list.
	ErrRegionNotFound = errors.New("region not found")

	// ErrGeocoderUnavailable is returned when a place query is given but no
	// geocoder is configured.
	ErrGeocoderUnavailable = errors.New("geocoder not configured")

	// ErrPlaceNotFound is returned when a place query cannot be resolved.
	ErrPlaceNotFound = errors.New("place not found")

	// ErrInvalidRegion is returned when a new region has neither coordinates
	// nor a place query.
	ErrInvalidRegion = errors.New("either coordinates or a place query is required")

	// ErrClosed is returned by operations on a closed service.
	ErrClosed = errors.New("region service closed")
)

// NetworkError wraps a transport, status, or decode failure during a weather
// fetch. Callers are not expected to tell the causes apart.
type NetworkError struct {
	Err error
}

// NewNetworkError wraps err, or returns nil if err is nil.
func NewNetworkError(err error) error {
	if err == nil {
		return nil
	}
	return &NetworkError{Err: err}
}

func (e *NetworkError) Error() string {
	return "network error: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrNetwork.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}
