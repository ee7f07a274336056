// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"fmt"
	"strings"

	"github.com/danielhkuo/transit-dashboard/models"
)

// Built-in filter rule names
const (
	RuleOfficialFeed    = "officialFeed"
	RuleNoOfficialFeed  = "noOfficialFeed"
	RuleAlternateFeed   = "alternateFeed"
	RuleNoAlternateFeed = "noAlternateFeed"
	RuleHasMetro        = "hasMetro"
	RuleNoMetro         = "noMetro"
)

// Rule is a named filter over agencies. Enabling a rule forces its Opposite
// (if any) off.
type Rule struct {
	Name     string
	Match    func(a *models.Agency) bool
	Opposite string
}

// DefaultRules returns the dashboard's filter buttons.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     RuleOfficialFeed,
			Match:    func(a *models.Agency) bool { return a.PublicGTFS },
			Opposite: RuleNoOfficialFeed,
		},
		{
			Name:     RuleNoOfficialFeed,
			Match:    func(a *models.Agency) bool { return !a.PublicGTFS },
			Opposite: RuleOfficialFeed,
		},
		{
			Name:     RuleAlternateFeed,
			Match:    func(a *models.Agency) bool { return a.GoogleGTFS },
			Opposite: RuleNoAlternateFeed,
		},
		{
			Name:     RuleNoAlternateFeed,
			Match:    func(a *models.Agency) bool { return !a.GoogleGTFS },
			Opposite: RuleAlternateFeed,
		},
		{
			Name:     RuleHasMetro,
			Match:    func(a *models.Agency) bool { return a.Metro != "" },
			Opposite: RuleNoMetro,
		},
		{
			Name:     RuleNoMetro,
			Match:    func(a *models.Agency) bool { return a.Metro == "" },
			Opposite: RuleHasMetro,
		},
	}
}

// Registry tracks which rules are enabled. A record passes when it satisfies
// every enabled rule.
type Registry struct {
	rules   []Rule
	byName  map[string]int
	enabled map[string]bool
}

func NewRegistry(rules ...Rule) *Registry {
	r := &Registry{
		byName:  make(map[string]int, len(rules)),
		enabled: make(map[string]bool, len(rules)),
	}
	for _, rule := range rules {
		if _, dup := r.byName[rule.Name]; dup {
			continue
		}
		r.byName[rule.Name] = len(r.rules)
		r.rules = append(r.rules, rule)
		r.enabled[rule.Name] = false
	}
	return r
}

// Toggle flips the named rule and forces its opposite off.
func (r *Registry) Toggle(name string) error {
	i, ok := r.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRule, name)
	}

	r.enabled[name] = !r.enabled[name]

	if opp := r.rules[i].Opposite; opp != "" {
		if _, ok := r.byName[opp]; ok {
			r.enabled[opp] = false
		}
	}

	return nil
}

func (r *Registry) Enabled(name string) bool {
	return r.enabled[name]
}

// Evaluate reports whether a passes all enabled rules.
func (r *Registry) Evaluate(a *models.Agency) bool {
	for _, rule := range r.rules {
		if r.enabled[rule.Name] && !rule.Match(a) {
			return false
		}
	}
	return true
}

// States returns a snapshot of every rule's enabled flag.
func (r *Registry) States() map[string]bool {
	out := make(map[string]bool, len(r.enabled))
	for name, on := range r.enabled {
		out[name] = on
	}
	return out
}

// MatchesQuery is the free-text filter: case-insensitive substring match on
// name, url or metro. An empty query matches everything.
func MatchesQuery(a *models.Agency, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(a.Name), q) ||
		strings.Contains(strings.ToLower(a.URL), q) ||
		strings.Contains(strings.ToLower(a.Metro), q)
}

// MatchesFeedQuery is the feed screen's filter over agency name and url.
func MatchesFeedQuery(f *models.Feed, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(f.AgencyName), q) ||
		strings.Contains(strings.ToLower(f.AgencyURL), q)
}
