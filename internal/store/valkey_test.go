package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Runs against a live server only when VALKEY_TEST_ADDR is set.
func TestValkeyRegionsRoundTrip(t *testing.T) {
	addr := os.Getenv("VALKEY_TEST_ADDR")
	if addr == "" {
		t.Skip("VALKEY_TEST_ADDR not set")
	}
	ctx := context.Background()

	s, err := NewValkey(addr)
	require.NoError(t, err)
	defer s.Close()

	key := "regional-weather-test:" + uuid.NewString()
	_, err = s.Get(ctx, key)
	require.ErrorIs(t, err, ErrNotFound)

	rs := NewRegionStore(s, key, quietLogger())
	want := sampleRegions()
	require.NoError(t, rs.Save(ctx, want))
	require.Equal(t, want, rs.Load(ctx))
}
