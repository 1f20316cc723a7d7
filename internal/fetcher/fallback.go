package fetcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Fallback tries a primary fetcher and falls back to a secondary one when the
// primary fails outright. ErrNoObservations from the primary is not retried
// against the secondary: the source answered, the sky just has no new data.
type Fallback struct {
	primary   PhotometryFetcher
	secondary PhotometryFetcher
	logger    zerolog.Logger
}

// NewFallback composes two fetchers into a fallback chain.
func NewFallback(primary, secondary PhotometryFetcher, logger zerolog.Logger) *Fallback {
	return &Fallback{
		primary:   primary,
		secondary: secondary,
		logger:    logger.With().Str("component", "fallback_fetcher").Logger(),
	}
}

// FetchLatest delegates to the primary, then the secondary.
func (f *Fallback) FetchLatest(ctx context.Context) (Observation, error) {
	obs, primaryErr := f.primary.FetchLatest(ctx)
	if primaryErr == nil || errors.Is(primaryErr, ErrNoObservations) {
		return obs, primaryErr
	}

	f.logger.Warn().Err(primaryErr).Msg("primary photometry source failed; trying fallback")

	obs, secondaryErr := f.secondary.FetchLatest(ctx)
	if secondaryErr != nil {
		return Observation{}, fmt.Errorf("fallback source: %w (primary: %v)", secondaryErr, primaryErr)
	}
	return obs, nil
}

var _ PhotometryFetcher = (*Fallback)(nil)
