package tagger

import (
	"fmt"

	"github.com/geo-martino/musify-cli/internal/filter"
	"github.com/geo-martino/musify-cli/internal/models"
)

// Rule pairs a filter selecting tracks with the setters to apply to them.
type Rule struct {
	Filter  filter.FilterComparers
	Setters []Setter
}

// Tagger applies tags to a set of tracks based on a set of tagging rules.
type Tagger struct {
	Rules []Rule
}

// IsEmpty reports whether the tagger has no rules.
func (t *Tagger) IsEmpty() bool {
	return len(t.Rules) == 0
}

// SetTags applies every rule to the matching tracks.
//
// Each track must belong to exactly one of the given collections; setters
// which derive values from neighbouring tracks operate within that
// collection. Returns the number of tracks a setter ran against.
func (t *Tagger) SetTags(tracks []*models.Track, collections [][]*models.Track) (int, error) {
	touched := map[*models.Track]struct{}{}

	for _, rule := range t.Rules {
		for _, track := range rule.Filter.Tracks(tracks) {
			collection := findCollection(track, collections)
			for _, setter := range rule.Setters {
				if err := setter.Set(track, collection); err != nil {
					return len(touched), fmt.Errorf("failed to set tags for %s: %w", track.Path, err)
				}
			}
			touched[track] = struct{}{}
		}
	}
	return len(touched), nil
}

func findCollection(track *models.Track, collections [][]*models.Track) []*models.Track {
	for _, collection := range collections {
		for _, other := range collection {
			if other == track {
				return collection
			}
		}
	}
	return nil
}

// FromConfig builds a [Tagger] from raw rule config.
//
// Each rule mapping holds a "filter" key plus one key per tag field to set,
// mapped to that field's setter config.
func FromConfig(raw []map[string]any) (*Tagger, error) {
	t := &Tagger{}

	for _, ruleConfig := range raw {
		rule := Rule{}

		ruleFilter, err := filter.FromConfig(ruleConfig["filter"])
		if err != nil {
			return nil, fmt.Errorf("invalid rule filter: %w", err)
		}
		rule.Filter = ruleFilter

		for field, setterConfig := range ruleConfig {
			if field == "filter" || field == "field" {
				continue
			}
			if !models.IsTagName(field) {
				return nil, fmt.Errorf("unrecognised tag field in rule: %s", field)
			}
			setter, err := setterFromConfig(field, setterConfig)
			if err != nil {
				return nil, fmt.Errorf("invalid setter for field %s: %w", field, err)
			}
			rule.Setters = append(rule.Setters, setter)
		}

		t.Rules = append(t.Rules, rule)
	}
	return t, nil
}
