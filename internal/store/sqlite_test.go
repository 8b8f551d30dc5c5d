package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSQLiteGetSet(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "regions.db")

	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "k", []byte("one")))
	require.NoError(t, s.Set(ctx, "k", []byte("two")))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("two"), got)
}

func TestSQLiteRegionsSurviveReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "regions.db")

	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	want := sampleRegions()
	require.NoError(t, NewRegionStore(s, "", quietLogger()).Save(ctx, want))
	require.NoError(t, s.Close())

	reopened, err := NewSQLite(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	require.Equal(t, want, NewRegionStore(reopened, "", quietLogger()).Load(ctx))
}
