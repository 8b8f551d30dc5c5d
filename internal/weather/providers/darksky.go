package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/regional-weather/internal/weather"
)

// DarkSkyProvider implements weather.Client against the Dark Sky forecast API.
type DarkSkyProvider struct {
	name     string
	endpoint weather.Endpoint
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

// NewDarkSkyProvider creates a provider issuing one GET per fetch.
func NewDarkSkyProvider(client *http.Client, endpoint weather.Endpoint) *DarkSkyProvider {
	return NewDarkSkyProviderWithBackoff(client, endpoint, BackoffConfig{})
}

// NewDarkSkyProviderWithBackoff is NewDarkSkyProvider with retries enabled
// according to backoff.
func NewDarkSkyProviderWithBackoff(client *http.Client, endpoint weather.Endpoint, backoff BackoffConfig) *DarkSkyProvider {
	if backoff.MaxRetries > 0 {
		if backoff.InitialInterval <= 0 {
			backoff.InitialInterval = 500 * time.Millisecond
		}
		if backoff.MaxInterval <= 0 {
			backoff.MaxInterval = 5 * time.Second
		}
	}
	return &DarkSkyProvider{
		name:     "darksky",
		endpoint: endpoint,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
		},
		circuit: newCircuitBreaker("darksky"),
	}
}

// Fetch returns the forecast snapshot for c. Every failure is a
// *weather.NetworkError.
func (p *DarkSkyProvider) Fetch(ctx context.Context, c weather.Coordinate) (weather.Snapshot, error) {
	if p.endpoint.APIKey == "" {
		return weather.Snapshot{}, weather.NewNetworkError(fmt.Errorf("%s api key is not configured", p.name))
	}

	buildRequest := func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, p.endpoint.URL(c), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Snapshot{}, weather.NewNetworkError(err)
	}
	defer resp.Body.Close()

	var snap weather.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return weather.Snapshot{}, weather.NewNetworkError(fmt.Errorf("decode %s response: %w", p.name, err))
	}
	return snap, nil
}
