// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/danielhkuo/transit-dashboard/models"
)

// PageSize is the number of agencies on one dashboard page.
const PageSize = 100

// Sortable fields
const (
	FieldID             = "id"
	FieldName           = "name"
	FieldURL            = "url"
	FieldMetro          = "metro"
	FieldPopulation     = "population"
	FieldRidership      = "ridership"
	FieldPassengerMiles = "passengerMiles"
	FieldPublicGTFS     = "publicGtfs"
	FieldGoogleGTFS     = "googleGtfs"
	FieldVotes          = "votes"
	FieldLat            = "lat"
	FieldLon            = "lon"
)

// DefaultSortField is active when an engine is created.
const DefaultSortField = FieldName

type comparator func(a, b *models.Agency) int

var comparators = map[string]comparator{
	FieldID:             func(a, b *models.Agency) int { return cmp.Compare(a.ID, b.ID) },
	FieldName:           func(a, b *models.Agency) int { return cmp.Compare(a.Name, b.Name) },
	FieldURL:            func(a, b *models.Agency) int { return cmp.Compare(a.URL, b.URL) },
	FieldMetro:          func(a, b *models.Agency) int { return cmp.Compare(a.Metro, b.Metro) },
	FieldPopulation:     func(a, b *models.Agency) int { return cmp.Compare(a.Population, b.Population) },
	FieldRidership:      func(a, b *models.Agency) int { return cmp.Compare(a.Ridership, b.Ridership) },
	FieldPassengerMiles: func(a, b *models.Agency) int { return cmp.Compare(a.PassengerMiles, b.PassengerMiles) },
	FieldPublicGTFS:     func(a, b *models.Agency) int { return compareBool(a.PublicGTFS, b.PublicGTFS) },
	FieldGoogleGTFS:     func(a, b *models.Agency) int { return compareBool(a.GoogleGTFS, b.GoogleGTFS) },
	FieldVotes:          func(a, b *models.Agency) int { return cmp.Compare(a.Votes, b.Votes) },
	FieldLat:            func(a, b *models.Agency) int { return compareOptional(a.Lat, b.Lat) },
	FieldLon:            func(a, b *models.Agency) int { return compareOptional(a.Lon, b.Lon) },
}

// SortFields lists every field the projector can sort by.
func SortFields() []string {
	fields := make([]string, 0, len(comparators))
	for f := range comparators {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	return fields
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// nil sorts before any value
func compareOptional(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return cmp.Compare(*a, *b)
}

// ViewState is the user-controlled part of the view: sort, page and search.
// Filter state lives in the Registry.
type ViewState struct {
	SortField  string
	Descending bool
	Page       int
	Query      string
}

func DefaultViewState() ViewState {
	return ViewState{SortField: DefaultSortField}
}

// Activate applies a click on a sort header. Clicking the active ascending field
// flips it to descending; anything else selects the field ascending.
func (s *ViewState) Activate(field string) error {
	if _, ok := comparators[field]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if s.SortField == field && !s.Descending {
		s.Descending = true
		return nil
	}
	s.SortField = field
	s.Descending = false
	return nil
}

// Page is one projected slice of the filtered, sorted records.
type Page struct {
	Records    []models.Agency
	Index      int
	TotalPages int
	Total      int
	PageSize   int
}

// Arrange filters and sorts records without paginating. The result holds
// copies. Ties on the sort field break by id ascending in both directions.
func Arrange(records []models.Agency, reg *Registry, state ViewState) ([]models.Agency, error) {
	compare, ok := comparators[state.SortField]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, state.SortField)
	}

	out := make([]models.Agency, 0, len(records))
	for i := range records {
		rec := &records[i]
		if reg.Evaluate(rec) && MatchesQuery(rec, state.Query) {
			out = append(out, *rec)
		}
	}

	slices.SortFunc(out, func(a, b models.Agency) int {
		c := compare(&a, &b)
		if state.Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return out, nil
}

// Project runs filter, sort and paginate. The requested page index is clamped
// into [0, TotalPages-1]; an empty result is page 0 of 0.
func Project(records []models.Agency, reg *Registry, state ViewState, pageSize int) (Page, error) {
	if pageSize <= 0 {
		pageSize = PageSize
	}

	arranged, err := Arrange(records, reg, state)
	if err != nil {
		return Page{}, err
	}

	total := len(arranged)
	totalPages := (total + pageSize - 1) / pageSize

	index := state.Page
	if index > totalPages-1 {
		index = totalPages - 1
	}
	if index < 0 {
		index = 0
	}

	start := index * pageSize
	end := min(start+pageSize, total)

	return Page{
		Records:    arranged[start:end],
		Index:      index,
		TotalPages: totalPages,
		Total:      total,
		PageSize:   pageSize,
	}, nil
}
