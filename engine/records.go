// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"log/slog"

	"github.com/danielhkuo/transit-dashboard/models"
)

// RecordStore holds the joined agency records. It is populated once and
// afterwards only mutated by vote increments.
type RecordStore struct {
	records []models.Agency
	index   map[int64]int
	loaded  bool
}

func NewRecordStore() *RecordStore {
	return &RecordStore{index: make(map[int64]int)}
}

// Publish fills the store with joined records. Duplicate ids keep the first
// occurrence. A store can only be published once.
func (s *RecordStore) Publish(records []models.Agency) error {
	if s.loaded {
		return ErrAlreadyLoaded
	}

	s.records = make([]models.Agency, 0, len(records))
	for _, rec := range records {
		if _, dup := s.index[rec.ID]; dup {
			slog.Warn("duplicate agency id in source", "agency_id", rec.ID)
			continue
		}
		if rec.Votes < 0 {
			rec.Votes = 0
		}
		s.index[rec.ID] = len(s.records)
		s.records = append(s.records, rec)
	}
	s.loaded = true

	return nil
}

func (s *RecordStore) Loaded() bool {
	return s.loaded
}

func (s *RecordStore) Len() int {
	return len(s.records)
}

// Records returns the backing slice. Callers must treat it as read-only.
func (s *RecordStore) Records() []models.Agency {
	return s.records
}

// Get returns a copy of the record with the given id.
func (s *RecordStore) Get(id int64) (models.Agency, bool) {
	i, ok := s.index[id]
	if !ok {
		return models.Agency{}, false
	}
	return s.records[i], true
}

// IncrementVotes adds one vote to the record and returns the new count.
func (s *RecordStore) IncrementVotes(id int64) (int, bool) {
	i, ok := s.index[id]
	if !ok {
		return 0, false
	}
	s.records[i].Votes++
	return s.records[i].Votes, true
}
