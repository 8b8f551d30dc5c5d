package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/i474232898/regional-weather/internal/weather"
)

const forecastBody = `{
  "latitude": 37.5,
  "longitude": 127,
  "timezone": "Asia/Seoul",
  "currently": {"time": 1564930800, "summary": "Clear", "icon": "clear-day", "temperature": 86.5},
  "hourly": {"summary": "Clear all day", "icon": "clear-day", "data": []},
  "daily": {
    "summary": "Rain on Tuesday",
    "icon": "rain",
    "data": [
      {"time": 1564930800, "icon": "clear-day", "temperatureHigh": 91.4, "temperatureLow": 70.1, "temperatureMin": 75.2, "temperatureMax": 92},
      {"time": 1565017200, "icon": "rain", "temperatureHigh": 84, "temperatureLow": 72, "temperatureMin": 73, "temperatureMax": 85}
    ]
  }
}`

func newTestServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestDarkSkyFetch(t *testing.T) {
	var gotPath, gotQuery string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(forecastBody))
	})

	p := NewDarkSkyProvider(srv.Client(), weather.NewEndpoint(srv.URL, "key123", "ko_KR.UTF-8"))
	snap, err := p.Fetch(context.Background(), weather.Coordinate{Latitude: 37.5, Longitude: 127})
	require.NoError(t, err)

	require.Equal(t, "/forecast/key123/37.5,127", gotPath)
	require.Equal(t, "lang=ko&exclude=minutely,alerts,flags", gotQuery)

	require.Equal(t, "Asia/Seoul", snap.Timezone)
	require.Equal(t, 86.5, snap.Currently.Temperature)
	require.Equal(t, "clear-day", snap.Currently.Icon)
	require.Len(t, snap.Daily.Data, 2)
	require.Equal(t, int64(1565017200), snap.Daily.Data[1].Time)
	require.Equal(t, 91.4, snap.Daily.Data[0].TemperatureHigh)
	require.Equal(t, 75.2, snap.Daily.Data[0].TemperatureMin)
}

func TestDarkSkyFetchErrorsAreNetworkErrors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"forbidden": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		},
		"rate limited": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		},
		"bad json": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"currently": `))
		},
	}

	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := newTestServer(t, h)
			p := NewDarkSkyProvider(srv.Client(), weather.NewEndpoint(srv.URL, "k", "en"))

			_, err := p.Fetch(context.Background(), weather.Coordinate{Latitude: 1, Longitude: 2})
			require.Error(t, err)
			require.ErrorIs(t, err, weather.ErrNetwork)

			var ne *weather.NetworkError
			require.ErrorAs(t, err, &ne)
		})
	}
}

func TestDarkSkyFetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := NewDarkSkyProvider(&http.Client{Timeout: time.Second}, weather.NewEndpoint(url, "k", ""))
	_, err := p.Fetch(context.Background(), weather.Coordinate{})
	require.ErrorIs(t, err, weather.ErrNetwork)
}

func TestDarkSkyFetchMissingAPIKey(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, func(http.ResponseWriter, *http.Request) { hits.Add(1) })

	p := NewDarkSkyProvider(srv.Client(), weather.NewEndpoint(srv.URL, "", ""))
	_, err := p.Fetch(context.Background(), weather.Coordinate{})
	require.ErrorIs(t, err, weather.ErrNetwork)
	require.Zero(t, hits.Load())
}

func TestDarkSkyFetchSingleAttemptByDefault(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	p := NewDarkSkyProvider(srv.Client(), weather.NewEndpoint(srv.URL, "k", ""))
	_, err := p.Fetch(context.Background(), weather.Coordinate{})
	require.ErrorIs(t, err, weather.ErrNetwork)
	require.Equal(t, int32(1), hits.Load())
}

func TestDarkSkyFetchRetriesWhenConfigured(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(forecastBody))
	})

	p := NewDarkSkyProviderWithBackoff(srv.Client(), weather.NewEndpoint(srv.URL, "k", ""), BackoffConfig{
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	})
	snap, err := p.Fetch(context.Background(), weather.Coordinate{})
	require.NoError(t, err)
	require.Equal(t, "Asia/Seoul", snap.Timezone)
	require.Equal(t, int32(3), hits.Load())
}
