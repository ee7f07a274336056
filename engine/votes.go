// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// VoteSink records a vote with the voting service.
type VoteSink interface {
	CastVote(ctx context.Context, agencyID int64) error
}

// VoteTracker is the session's duplicate-click guard. It is not safe for
// concurrent use; Engine serializes access.
type VoteTracker struct {
	sink     VoteSink
	timeout  time.Duration
	ledger   map[int64]struct{}
	inflight sync.WaitGroup
}

func NewVoteTracker(sink VoteSink, timeout time.Duration) *VoteTracker {
	return &VoteTracker{
		sink:    sink,
		timeout: timeout,
		ledger:  make(map[int64]struct{}),
	}
}

// Cast votes for an agency at most once per session. The record's count is
// incremented immediately and the vote request is sent in the background; a
// failed request is logged and never rolled back.
func (t *VoteTracker) Cast(store *RecordStore, id int64) (votes int, counted bool, err error) {
	rec, ok := store.Get(id)
	if !ok {
		return 0, false, fmt.Errorf("%w: %d", ErrRecordNotFound, id)
	}

	if _, seen := t.ledger[id]; seen {
		return rec.Votes, false, nil
	}

	t.ledger[id] = struct{}{}
	votes, _ = store.IncrementVotes(id)

	if t.sink != nil {
		t.inflight.Add(1)
		go t.send(id)
	}

	return votes, true, nil
}

func (t *VoteTracker) send(id int64) {
	defer t.inflight.Done()

	ctx := context.Background()
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	if err := t.sink.CastVote(ctx, id); err != nil {
		slog.Warn("vote request failed", "agency_id", id, "error", err)
		return
	}
	slog.Debug("vote recorded", "agency_id", id)
}

func (t *VoteTracker) HasVoted(id int64) bool {
	_, ok := t.ledger[id]
	return ok
}

// Voted lists voted agency ids in ascending order.
func (t *VoteTracker) Voted() []int64 {
	ids := make([]int64, 0, len(t.ledger))
	for id := range t.ledger {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Wait blocks until background vote requests have finished.
func (t *VoteTracker) Wait() {
	t.inflight.Wait()
}
