// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/transit-dashboard/models"
)

// AgencySource serves the agency list.
type AgencySource interface {
	Agencies(ctx context.Context) ([]models.Agency, error)
}

// VoteSource serves vote counts keyed by agency id.
type VoteSource interface {
	VoteCounts(ctx context.Context) (models.VoteCounts, error)
}

// Sources bundles the collaborators an Engine reads from and votes through.
type Sources struct {
	Agencies AgencySource
	Votes    VoteSource
	Sink     VoteSink
}

// Acquire fetches agencies and vote counts concurrently and joins them once
// both have arrived. If either fetch fails, the other is cancelled and the
// first error is returned.
func Acquire(ctx context.Context, agencies AgencySource, votes VoteSource) ([]models.Agency, error) {
	var (
		list   []models.Agency
		counts models.VoteCounts
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		list, err = agencies.Agencies(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch agencies: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		counts, err = votes.VoteCounts(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch vote counts: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Join(list, counts), nil
}

// Join left-joins agencies with vote counts. Agencies missing from counts get
// zero votes; negative counts are clamped to zero.
func Join(agencies []models.Agency, counts models.VoteCounts) []models.Agency {
	joined := make([]models.Agency, len(agencies))
	for i, a := range agencies {
		a.Votes = max(counts[a.ID], 0)
		joined[i] = a
	}
	return joined
}
