// package filter implements configurable comparer filters applied to tracks and named collections.
//
// A filter is built from config of several shapes: a bare string matches by
// name, a sequence matches any listed name, and a mapping declares one or
// more conditions against a tag field.
package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/geo-martino/musify-cli/internal/models"
)

// Comparer applies a single condition against a value.
//
// When Field is empty the comparer runs against the item's name.
type Comparer struct {
	Field     string
	Condition string
	Expected  any
}

// Conditions recognised by [Comparer].
const (
	CondIs             = "is"
	CondIsNot          = "is not"
	CondIsIn           = "is in"
	CondIsNotIn        = "is not in"
	CondContains       = "contains"
	CondNotContains    = "does not contain"
	CondStartsWith     = "starts with"
	CondEndsWith       = "ends with"
	CondMatches        = "matches"
	CondGreaterThan    = "greater than"
	CondLessThan       = "less than"
	CondInRange        = "in range"
)

// Match reports whether the given value satisfies the comparer's condition.
func (c Comparer) Match(value any) (bool, error) {
	switch normalizeCondition(c.Condition) {
	case CondIs:
		return equalFold(value, c.Expected), nil
	case CondIsNot:
		return !equalFold(value, c.Expected), nil
	case CondIsIn:
		return containsValue(c.Expected, value), nil
	case CondIsNotIn:
		return !containsValue(c.Expected, value), nil
	case CondContains:
		return strings.Contains(lower(value), lower(c.Expected)), nil
	case CondNotContains:
		return !strings.Contains(lower(value), lower(c.Expected)), nil
	case CondStartsWith:
		return strings.HasPrefix(lower(value), lower(c.Expected)), nil
	case CondEndsWith:
		return strings.HasSuffix(lower(value), lower(c.Expected)), nil
	case CondMatches:
		re, err := regexp.Compile(asString(c.Expected))
		if err != nil {
			return false, fmt.Errorf("invalid pattern for 'matches' condition: %w", err)
		}
		return re.MatchString(asString(value)), nil
	case CondGreaterThan, CondLessThan:
		got, ok1 := asFloat(value)
		want, ok2 := asFloat(c.Expected)
		if !ok1 || !ok2 {
			return false, nil
		}
		if normalizeCondition(c.Condition) == CondGreaterThan {
			return got > want, nil
		}
		return got < want, nil
	case CondInRange:
		bounds := toSlice(c.Expected)
		if len(bounds) != 2 {
			return false, fmt.Errorf("'in range' condition requires exactly 2 bounds, got %d", len(bounds))
		}
		got, ok := asFloat(value)
		lo, okLo := asFloat(bounds[0])
		hi, okHi := asFloat(bounds[1])
		if !ok || !okLo || !okHi {
			return false, nil
		}
		return got >= lo && got <= hi, nil
	}
	return false, fmt.Errorf("unrecognised condition: %s", c.Condition)
}

func normalizeCondition(cond string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(strings.ToLower(cond), "_", " ")), " ")
}

// FilterComparers combines comparers with either any-match or all-match semantics.
type FilterComparers struct {
	Comparers []Comparer
	MatchAll  bool
}

// IsEmpty reports whether the filter has no conditions and therefore passes everything.
func (f FilterComparers) IsEmpty() bool {
	return len(f.Comparers) == 0
}

func (f FilterComparers) match(value func(field string) any) bool {
	if f.IsEmpty() {
		return true
	}

	for _, comparer := range f.Comparers {
		ok, err := comparer.Match(value(comparer.Field))
		if err != nil {
			ok = false
		}
		if f.MatchAll && !ok {
			return false
		}
		if !f.MatchAll && ok {
			return true
		}
	}
	return f.MatchAll
}

// MatchesName reports whether the given name passes the filter.
// Comparers with a configured field are evaluated against nothing and fail.
func (f FilterComparers) MatchesName(name string) bool {
	return f.match(func(field string) any {
		if field != "" {
			return nil
		}
		return name
	})
}

// MatchesTrack reports whether the given track passes the filter.
// Comparers without a field compare against the track's title.
func (f FilterComparers) MatchesTrack(t *models.Track) bool {
	return f.match(func(field string) any {
		if field == "" {
			return t.Title
		}
		return t.Tag(field)
	})
}

// Names returns the names from the given slice which pass the filter.
func (f FilterComparers) Names(names []string) []string {
	if f.IsEmpty() {
		return names
	}
	var out []string
	for _, name := range names {
		if f.MatchesName(name) {
			out = append(out, name)
		}
	}
	return out
}

// Tracks returns the tracks from the given slice which pass the filter.
func (f FilterComparers) Tracks(tracks []*models.Track) []*models.Track {
	if f.IsEmpty() {
		return tracks
	}
	var out []*models.Track
	for _, track := range tracks {
		if f.MatchesTrack(track) {
			out = append(out, track)
		}
	}
	return out
}

// FromConfig builds a [FilterComparers] from raw config.
//
// Accepted shapes:
//   - nil: empty filter, passes everything
//   - string: single "is" condition
//   - sequence: single "is in" condition
//   - mapping: optional "field" and "match_all" keys, every other key is a
//     condition name mapped to its expected value
func FromConfig(raw any) (FilterComparers, error) {
	switch v := raw.(type) {
	case nil:
		return FilterComparers{}, nil
	case string:
		return FilterComparers{Comparers: []Comparer{{Condition: CondIs, Expected: v}}}, nil
	case []any:
		return FilterComparers{Comparers: []Comparer{{Condition: CondIsIn, Expected: v}}}, nil
	case []string:
		return FilterComparers{Comparers: []Comparer{{Condition: CondIsIn, Expected: v}}}, nil
	case map[string]any:
		return fromMapping(v)
	}
	return FilterComparers{}, fmt.Errorf("unrecognised filter config type: %T", raw)
}

func fromMapping(mapping map[string]any) (FilterComparers, error) {
	f := FilterComparers{}

	field, _ := mapping["field"].(string)
	if matchAll, ok := mapping["match_all"].(bool); ok {
		f.MatchAll = matchAll
	}

	for key, expected := range mapping {
		if key == "field" || key == "match_all" {
			continue
		}
		f.Comparers = append(f.Comparers, Comparer{
			Field:     field,
			Condition: key,
			Expected:  expected,
		})
	}
	return f, nil
}

func asString(value any) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%v", value)
}

func lower(value any) string {
	return strings.ToLower(asString(value))
}

func equalFold(got, want any) bool {
	if gotNum, ok1 := asFloat(got); ok1 {
		if wantNum, ok2 := asFloat(want); ok2 {
			return gotNum == wantNum
		}
	}
	return strings.EqualFold(asString(got), asString(want))
}

func containsValue(collection, value any) bool {
	for _, item := range toSlice(collection) {
		if equalFold(value, item) {
			return true
		}
	}
	return false
}

func toSlice(value any) []any {
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	}
	return []any{value}
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	}
	return 0, false
}
