package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/regional-weather/internal/weather"
)

func TestIndicatorNesting(t *testing.T) {
	ind := NewIndicator()
	require.False(t, ind.Visible())

	ind.Begin()
	ind.Begin()
	require.True(t, ind.Visible())

	ind.End()
	require.True(t, ind.Visible())
	ind.End()
	require.False(t, ind.Visible())

	// Unbalanced End does not go negative.
	ind.End()
	require.False(t, ind.Visible())
	ind.Begin()
	require.True(t, ind.Visible())
	ind.End()
}

type clientFunc func(context.Context, weather.Coordinate) (weather.Snapshot, error)

func (f clientFunc) Fetch(ctx context.Context, c weather.Coordinate) (weather.Snapshot, error) {
	return f(ctx, c)
}

func TestInstrumentPassesThrough(t *testing.T) {
	boom := errors.New("boom")
	c := Instrument(clientFunc(func(_ context.Context, coord weather.Coordinate) (weather.Snapshot, error) {
		if coord.Latitude < 0 {
			return weather.Snapshot{}, boom
		}
		return weather.Snapshot{Timezone: "Asia/Seoul"}, nil
	}))

	snap, err := c.Fetch(context.Background(), weather.Coordinate{Latitude: 1})
	require.NoError(t, err)
	require.Equal(t, "Asia/Seoul", snap.Timezone)

	_, err = c.Fetch(context.Background(), weather.Coordinate{Latitude: -1})
	require.ErrorIs(t, err, boom)
}

func TestHandlerExposesMetrics(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), "regional_weather_http_requests_total"))
}
