// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"errors"
	"testing"

	"github.com/danielhkuo/transit-dashboard/models"
)

func TestRegistryOppositeExclusion(t *testing.T) {
	reg := NewRegistry(DefaultRules()...)

	if err := reg.Toggle(RuleNoOfficialFeed); err != nil {
		t.Fatal(err)
	}
	if err := reg.Toggle(RuleOfficialFeed); err != nil {
		t.Fatal(err)
	}

	if !reg.Enabled(RuleOfficialFeed) {
		t.Error("officialFeed should be enabled")
	}
	if reg.Enabled(RuleNoOfficialFeed) {
		t.Error("noOfficialFeed should have been forced off")
	}

	// both off is allowed
	reg.Toggle(RuleOfficialFeed)
	if reg.Enabled(RuleOfficialFeed) || reg.Enabled(RuleNoOfficialFeed) {
		t.Error("expected both rules disabled")
	}
}

func TestRegistryEvaluate(t *testing.T) {
	official := &models.Agency{ID: 1, PublicGTFS: true, Metro: "Denver"}
	alternate := &models.Agency{ID: 2, GoogleGTFS: true}
	neither := &models.Agency{ID: 3}

	tests := []struct {
		name    string
		toggles []string
		want    map[int64]bool
	}{
		{"no rules", nil, map[int64]bool{1: true, 2: true, 3: true}},
		{"official only", []string{RuleOfficialFeed}, map[int64]bool{1: true, 2: false, 3: false}},
		{"no official", []string{RuleNoOfficialFeed}, map[int64]bool{1: false, 2: true, 3: true}},
		{"no official and alternate", []string{RuleNoOfficialFeed, RuleAlternateFeed}, map[int64]bool{1: false, 2: true, 3: false}},
		{"has metro", []string{RuleHasMetro}, map[int64]bool{1: true, 2: false, 3: false}},
		{"toggled twice", []string{RuleHasMetro, RuleHasMetro}, map[int64]bool{1: true, 2: true, 3: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry(DefaultRules()...)
			for _, name := range tt.toggles {
				if err := reg.Toggle(name); err != nil {
					t.Fatal(err)
				}
			}
			for _, a := range []*models.Agency{official, alternate, neither} {
				if got := reg.Evaluate(a); got != tt.want[a.ID] {
					t.Errorf("Evaluate(agency %d) = %v, want %v", a.ID, got, tt.want[a.ID])
				}
			}
		})
	}
}

func TestRegistryUnknownRule(t *testing.T) {
	reg := NewRegistry(DefaultRules()...)
	if err := reg.Toggle("bogus"); !errors.Is(err, ErrUnknownRule) {
		t.Errorf("expected ErrUnknownRule, got %v", err)
	}
}

func TestRegistryStatesIsSnapshot(t *testing.T) {
	reg := NewRegistry(DefaultRules()...)
	states := reg.States()
	if len(states) != len(DefaultRules()) {
		t.Errorf("expected %d rules, got %d", len(DefaultRules()), len(states))
	}

	states[RuleOfficialFeed] = true
	if reg.Enabled(RuleOfficialFeed) {
		t.Error("modifying States() result must not change the registry")
	}
}

func TestMatchesQuery(t *testing.T) {
	a := &models.Agency{Name: "Chicago Transit Authority", URL: "http://www.transitchicago.com", Metro: "Chicago, IL"}

	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"authority", true},
		{"TRANSITCHICAGO", true},
		{"il", true},
		{"boston", false},
	}

	for _, tt := range tests {
		if got := MatchesQuery(a, tt.query); got != tt.want {
			t.Errorf("MatchesQuery(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestMatchesFeedQuery(t *testing.T) {
	f := &models.Feed{AgencyName: "Sound Transit", AgencyURL: "http://soundtransit.org"}

	if !MatchesFeedQuery(f, "sound") {
		t.Error("expected name match")
	}
	if !MatchesFeedQuery(f, ".ORG") {
		t.Error("expected url match")
	}
	if MatchesFeedQuery(f, "king county") {
		t.Error("unexpected match")
	}
}
