// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/transit-dashboard/models"
)

var ErrNotFound = errors.New("not found")

// Store reads agencies, feeds and votes straight from the database. It
// satisfies the same interfaces as the upstream HTTP client.
type Store struct {
	db        *sql.DB
	namespace string
}

func NewStore(db *sql.DB, namespace string) *Store {
	return &Store{db: db, namespace: namespace}
}

const agencyColumns = `
	a.id, a.name, COALESCE(a.url, ''), COALESCE(a.metro, ''), a.lat, a.lon,
	a.population, a.ridership, a.passenger_miles,
	EXISTS(SELECT 1 FROM agency_feed af WHERE af.agency_id = a.id) AS public_gtfs,
	a.google_gtfs`

type scanner interface {
	Scan(dest ...any) error
}

func scanAgency(row scanner, a *models.Agency, extra ...any) error {
	var lat, lon sql.NullFloat64
	dest := []any{
		&a.ID, &a.Name, &a.URL, &a.Metro, &lat, &lon,
		&a.Population, &a.Ridership, &a.PassengerMiles,
		&a.PublicGTFS, &a.GoogleGTFS,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	if lat.Valid {
		a.Lat = &lat.Float64
	}
	if lon.Valid {
		a.Lon = &lon.Float64
	}
	return nil
}

// Agencies returns every enabled agency ordered by id.
func (s *Store) Agencies(ctx context.Context) ([]models.Agency, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+agencyColumns+`
		FROM agency a
		WHERE a.disabled = FALSE
		ORDER BY a.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query agencies: %w", err)
	}
	defer rows.Close()

	agencies := []models.Agency{}
	for rows.Next() {
		var a models.Agency
		if err := scanAgency(rows, &a); err != nil {
			return nil, fmt.Errorf("failed to scan agency: %w", err)
		}
		agencies = append(agencies, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read agencies: %w", err)
	}

	return agencies, nil
}

// VoteCounts counts votes per agency in the store's namespace.
func (s *Store) VoteCounts(ctx context.Context) (models.VoteCounts, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entity_id, COUNT(*)
		FROM vote
		WHERE namespace = $1
		GROUP BY entity_id
	`, s.namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to query vote counts: %w", err)
	}
	defer rows.Close()

	counts := make(models.VoteCounts)
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan vote count: %w", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vote counts: %w", err)
	}

	return counts, nil
}

// CastVote stores one vote for an agency.
func (s *Store) CastVote(ctx context.Context, agencyID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vote (id, namespace, entity_id, cast_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.NewString(), s.namespace, agencyID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	return nil
}

// Agency returns one agency with its current feeds, including disabled agencies.
func (s *Store) Agency(ctx context.Context, id int64) (models.Agency, error) {
	var a models.Agency
	row := s.db.QueryRowContext(ctx, `
		SELECT `+agencyColumns+`, COALESCE(a.ntd_id, '')
		FROM agency a
		WHERE a.id = $1
	`, id)

	err := scanAgency(row, &a, &a.NtdID)
	if err == sql.ErrNoRows {
		return models.Agency{}, fmt.Errorf("agency %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Agency{}, fmt.Errorf("failed to query agency: %w", err)
	}

	feeds, err := s.queryFeeds(ctx, `
		SELECT f.id, f.agency_name, f.agency_url, COALESCE(f.feed_base_url, ''), f.official, f.expires, f.status
		FROM gtfs_feed f
		JOIN agency_feed af ON af.feed_id = f.id
		WHERE af.agency_id = $1 AND f.superseded_by IS NULL
		ORDER BY f.id
	`, id)
	if err != nil {
		return models.Agency{}, err
	}
	a.Feeds = feeds

	return a, nil
}

// Feeds returns every feed that has not been superseded.
func (s *Store) Feeds(ctx context.Context) ([]models.Feed, error) {
	return s.queryFeeds(ctx, `
		SELECT id, agency_name, agency_url, COALESCE(feed_base_url, ''), official, expires, status
		FROM gtfs_feed
		WHERE superseded_by IS NULL
		ORDER BY id
	`)
}

func (s *Store) queryFeeds(ctx context.Context, query string, args ...any) ([]models.Feed, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query feeds: %w", err)
	}
	defer rows.Close()

	feeds := []models.Feed{}
	for rows.Next() {
		var f models.Feed
		var expires sql.NullTime
		var status string
		if err := rows.Scan(&f.ID, &f.AgencyName, &f.AgencyURL, &f.FeedBaseURL, &f.Official, &expires, &status); err != nil {
			return nil, fmt.Errorf("failed to scan feed: %w", err)
		}
		if expires.Valid {
			f.Expires = &expires.Time
		}
		f.Status = models.FeedInvalid
		if status == "SUCCESSFUL" {
			f.Status = models.FeedValid
		}
		feeds = append(feeds, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feeds: %w", err)
	}

	return feeds, nil
}

// ConnectFeedsAndAgencies links every listed feed to every listed agency.
// Unknown ids are skipped with a warning; existing links are kept.
func (s *Store) ConnectFeedsAndAgencies(ctx context.Context, feedIDs, agencyIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	agencies, err := existingIDs(ctx, tx, "agency", agencyIDs)
	if err != nil {
		return err
	}
	feeds, err := existingIDs(ctx, tx, "gtfs_feed", feedIDs)
	if err != nil {
		return err
	}

	for _, agencyID := range agencies {
		for _, feedID := range feeds {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO agency_feed (agency_id, feed_id)
				VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, agencyID, feedID)
			if err != nil {
				return fmt.Errorf("failed to link agency %d to feed %d: %w", agencyID, feedID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("feeds connected to agencies", "agencies", len(agencies), "feeds", len(feeds))
	return nil
}

// table is one of our own constants, never user input
func existingIDs(ctx context.Context, tx *sql.Tx, table string, ids []int64) ([]int64, error) {
	found := make([]int64, 0, len(ids))
	for _, id := range ids {
		var exists bool
		err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("failed to look up %s %d: %w", table, id, err)
		}
		if !exists {
			slog.Warn("skipping unknown id", "table", table, "id", id)
			continue
		}
		found = append(found, id)
	}
	return found, nil
}
