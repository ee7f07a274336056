// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"

	"github.com/danielhkuo/transit-dashboard/db"
	"github.com/danielhkuo/transit-dashboard/engine"
	"github.com/danielhkuo/transit-dashboard/models"
	"github.com/danielhkuo/transit-dashboard/upstream"
)

// Source is the transit data backend. Both *upstream.Client and *db.Store
// implement it.
type Source interface {
	engine.AgencySource
	engine.VoteSource
	engine.VoteSink

	Agency(ctx context.Context, id int64) (models.Agency, error)
	Feeds(ctx context.Context) ([]models.Feed, error)
	ConnectFeedsAndAgencies(ctx context.Context, feedIDs, agencyIDs []int64) error
}

var (
	_ Source = (*upstream.Client)(nil)
	_ Source = (*db.Store)(nil)
)

// EngineSources wires a Source into the dashboard engine.
func EngineSources(src Source) engine.Sources {
	return engine.Sources{Agencies: src, Votes: src, Sink: src}
}

func isNotFound(err error) bool {
	return errors.Is(err, upstream.ErrNotFound) || errors.Is(err, db.ErrNotFound)
}
