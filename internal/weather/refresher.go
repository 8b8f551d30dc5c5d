package weather

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

// RefreshResult is the outcome of one refresh batch. Regions always has the
// same length and order as the input; entries whose fetch failed keep their
// previous snapshot.
type RefreshResult struct {
	BatchID  string
	Regions  []Region
	HadError bool
}

// Refresher re-fetches weather for every region of a list concurrently.
// Only one batch runs at a time.
type Refresher struct {
	client         Client
	indicator      ActivityIndicator
	maxConcurrency int
	logger         *slog.Logger

	busy atomic.Bool
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

// WithIndicator sets the activity indicator toggled around each batch.
func WithIndicator(ind ActivityIndicator) RefresherOption {
	return func(r *Refresher) {
		if ind != nil {
			r.indicator = ind
		}
	}
}

// WithMaxConcurrency caps in-flight fetches per batch. n <= 0 means one
// goroutine per region.
func WithMaxConcurrency(n int) RefresherOption {
	return func(r *Refresher) {
		r.maxConcurrency = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) RefresherOption {
	return func(r *Refresher) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRefresher creates a Refresher backed by client.
func NewRefresher(client Client, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		client:    client,
		indicator: noopIndicator{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Busy reports whether a batch is in flight.
func (r *Refresher) Busy() bool {
	return r.busy.Load()
}

// RefreshAll fetches weather for every region and waits for all fetches to
// finish. A failed fetch leaves its entry untouched and sets HadError; there
// is no retry and no cancellation of the remaining fetches.
//
// It returns ErrRefreshInProgress without issuing any request when another
// batch is still running.
func (r *Refresher) RefreshAll(ctx context.Context, regions []Region) (RefreshResult, error) {
	if !r.busy.CAS(false, true) {
		return RefreshResult{}, ErrRefreshInProgress
	}
	defer r.busy.Store(false)

	res := RefreshResult{
		BatchID: uuid.NewString(),
		Regions: cloneRegions(regions),
	}
	if len(regions) == 0 {
		return res, nil
	}

	r.indicator.Begin()
	defer r.indicator.End()

	logger := r.logger.With("batch", res.BatchID)
	logger.Debug("refresh batch started", "regions", len(regions))

	var g errgroup.Group
	if r.maxConcurrency > 0 {
		g.SetLimit(r.maxConcurrency)
	}

	working := res.Regions
	for i, region := range regions {
		g.Go(func() error {
			snap, err := r.client.Fetch(ctx, region.Coordinate())
			if err != nil {
				logger.Warn("region fetch failed", "index", i, "name", region.Name, "error", err)
				return fmt.Errorf("region %d: %w", i, err)
			}
			// Each task owns exactly one slot.
			working[i] = region.WithSnapshot(snap)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		res.HadError = true
	}

	logger.Info("refresh batch finished", "regions", len(regions), "had_error", res.HadError)
	return res, nil
}
