package tagger

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/geo-martino/musify-cli/internal/filter"
	"github.com/geo-martino/musify-cli/internal/models"
)

// Setter writes a value to a single tag field of a track.
//
// The collection holds the tracks the target track is grouped with, for
// setters which derive values from neighbouring tracks.
type Setter interface {
	Set(t *models.Track, collection []*models.Track) error
}

// condition gates a setter on a "when" filter from config.
type condition struct {
	when filter.FilterComparers
}

func (c condition) valid(t *models.Track) bool {
	return c.when.MatchesTrack(t)
}

func conditionFromConfig(mapping map[string]any) (condition, error) {
	when, err := filter.FromConfig(mapping["when"])
	if err != nil {
		return condition{}, fmt.Errorf("invalid 'when' condition in setter config: %w", err)
	}
	return condition{when: when}, nil
}

// ValueSetter writes a fixed value.
type ValueSetter struct {
	Field string
	Value any
	condition
}

func (s ValueSetter) Set(t *models.Track, _ []*models.Track) error {
	if !s.valid(t) {
		return nil
	}
	return t.SetTag(s.Field, s.Value)
}

// FieldSetter copies the value of another tag field.
type FieldSetter struct {
	Field   string
	ValueOf string
	condition
}

func (s FieldSetter) Set(t *models.Track, _ []*models.Track) error {
	if !s.valid(t) {
		return nil
	}
	return t.SetTag(s.Field, t.Tag(s.ValueOf))
}

// ClearSetter clears the field.
type ClearSetter struct {
	Field string
	condition
}

func (s ClearSetter) Set(t *models.Track, _ []*models.Track) error {
	if !s.valid(t) {
		return nil
	}
	return t.SetTag(s.Field, nil)
}

// JoinSetter joins the values of several getters with a separator.
type JoinSetter struct {
	Field     string
	Getters   []Getter
	Separator string
	condition
}

func (s JoinSetter) Set(t *models.Track, _ []*models.Track) error {
	if !s.valid(t) {
		return nil
	}

	values := make([]string, 0, len(s.Getters))
	for _, getter := range s.Getters {
		if value := getter.Get(t); value != nil {
			values = append(values, fmt.Sprintf("%v", value))
		} else {
			values = append(values, "")
		}
	}
	return t.SetTag(s.Field, strings.Join(values, s.Separator))
}

// IncrementalSetter numbers tracks within their group, ordered by sort fields.
type IncrementalSetter struct {
	Field     string
	GroupBy   []string
	SortBy    []string
	Start     int
	Increment int
	condition
}

func (s IncrementalSetter) Set(t *models.Track, collection []*models.Track) error {
	if !s.valid(t) {
		return nil
	}

	group := groupTracks(t, collection, s.GroupBy, "")
	sortBy := s.SortBy
	if len(sortBy) == 0 {
		sortBy = []string{models.TagFilename}
	}
	sortTracks(group, sortBy)

	for i, other := range group {
		if other == t {
			return t.SetTag(s.Field, s.Start+i*s.Increment)
		}
	}
	return nil
}

// MinSetter writes the minimum value of a field across the track's group.
type MinSetter struct {
	Field   string
	ValueOf string
	GroupBy []string
	condition
}

func (s MinSetter) Set(t *models.Track, collection []*models.Track) error {
	return setGroupExtreme(t, collection, s.Field, s.ValueOf, s.GroupBy, s.condition, false)
}

// MaxSetter writes the maximum value of a field across the track's group.
type MaxSetter struct {
	Field   string
	ValueOf string
	GroupBy []string
	condition
}

func (s MaxSetter) Set(t *models.Track, collection []*models.Track) error {
	return setGroupExtreme(t, collection, s.Field, s.ValueOf, s.GroupBy, s.condition, true)
}

func setGroupExtreme(
	t *models.Track, collection []*models.Track,
	field, valueOf string, groupBy []string, cond condition, max bool,
) error {
	if !cond.valid(t) {
		return nil
	}
	if valueOf == "" {
		valueOf = field
	}

	group := groupTracks(t, collection, groupBy, valueOf)
	if len(group) == 0 {
		return nil
	}

	extreme := group[0].Tag(valueOf)
	for _, other := range group[1:] {
		value := other.Tag(valueOf)
		if lessTag(extreme, value) == max {
			extreme = value
		}
	}
	return t.SetTag(field, extreme)
}

var templateFieldPattern = regexp.MustCompile(`\{(\w+)}`)

// TemplateSetter formats a template string, filling {name} placeholders from
// named getters or the track's own tag fields.
type TemplateSetter struct {
	Field    string
	Template string
	Getters  map[string]Getter
	condition
}

func (s TemplateSetter) Set(t *models.Track, _ []*models.Track) error {
	if !s.valid(t) {
		return nil
	}

	result := templateFieldPattern.ReplaceAllStringFunc(s.Template, func(placeholder string) string {
		name := placeholder[1 : len(placeholder)-1]
		if getter, ok := s.Getters[name]; ok {
			if value := getter.Get(t); value != nil {
				return fmt.Sprintf("%v", value)
			}
			return ""
		}
		if value := t.Tag(name); value != nil {
			return fmt.Sprintf("%v", value)
		}
		return ""
	})
	return t.SetTag(s.Field, result)
}

// groupTracks returns the tracks from the collection sharing the given
// group fields with the track. When requireField is set, tracks without a
// value for that field are excluded.
func groupTracks(t *models.Track, collection []*models.Track, groupBy []string, requireField string) []*models.Track {
	var group []*models.Track
	for _, other := range collection {
		matches := true
		for _, field := range groupBy {
			if fmt.Sprintf("%v", other.Tag(field)) != fmt.Sprintf("%v", t.Tag(field)) {
				matches = false
				break
			}
		}
		if matches && (requireField == "" || other.Tag(requireField) != nil) {
			group = append(group, other)
		}
	}
	return group
}

func sortTracks(tracks []*models.Track, fields []string) {
	sort.SliceStable(tracks, func(i, j int) bool {
		for _, field := range fields {
			a, b := tracks[i].Tag(field), tracks[j].Tag(field)
			if fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b) {
				continue
			}
			return lessTag(a, b)
		}
		return false
	})
}

func lessTag(a, b any) bool {
	aNum, aOk := asNumber(a)
	bNum, bOk := asNumber(b)
	if aOk && bOk {
		return aNum < bNum
	}
	return fmt.Sprintf("%v", a) < fmt.Sprintf("%v", b)
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// setterFromConfig creates the appropriate [Setter] for the given field and config.
//
// A non-mapping value is a fixed value to set. A mapping selects the setter
// type by its "operation" key; without one, a "value" key builds a
// [ValueSetter] and a "field" key a [FieldSetter].
func setterFromConfig(field string, raw any) (Setter, error) {
	mapping, ok := raw.(map[string]any)
	if !ok {
		return ValueSetter{Field: field, Value: raw}, nil
	}

	cond, err := conditionFromConfig(mapping)
	if err != nil {
		return nil, err
	}

	operation, _ := mapping["operation"].(string)
	switch strings.ToLower(operation) {
	case "clear":
		return ClearSetter{Field: field, condition: cond}, nil
	case "join":
		return joinFromConfig(field, mapping, cond)
	case "incremental":
		return incrementalFromConfig(field, mapping, cond)
	case "min", "max":
		valueOf, _ := mapping["field"].(string)
		groupBy := fieldsFromConfig(mapping, "group")
		if strings.ToLower(operation) == "min" {
			return MinSetter{Field: field, ValueOf: valueOf, GroupBy: groupBy, condition: cond}, nil
		}
		return MaxSetter{Field: field, ValueOf: valueOf, GroupBy: groupBy, condition: cond}, nil
	case "template":
		return templateFromConfig(field, mapping, cond)
	case "":
		if value, hasValue := mapping["value"]; hasValue {
			return ValueSetter{Field: field, Value: value, condition: cond}, nil
		}
		if valueOf, hasField := mapping["field"].(string); hasField {
			return FieldSetter{Field: field, ValueOf: valueOf, condition: cond}, nil
		}
	}
	return nil, fmt.Errorf("unrecognised setter operation: %v", mapping["operation"])
}

func joinFromConfig(field string, mapping map[string]any, cond condition) (Setter, error) {
	separator, _ := mapping["separator"].(string)

	var getters []Getter
	if values, ok := mapping["values"].([]any); ok {
		for _, value := range values {
			getter, err := getterFromConfig(value)
			if err != nil {
				return nil, err
			}
			getters = append(getters, getter)
		}
	}
	return JoinSetter{Field: field, Getters: getters, Separator: separator, condition: cond}, nil
}

func incrementalFromConfig(field string, mapping map[string]any, cond condition) (Setter, error) {
	start, err := intFromConfig(mapping["start"], 1)
	if err != nil {
		return nil, fmt.Errorf("invalid 'start' in incremental setter: %w", err)
	}
	increment, err := intFromConfig(mapping["increment"], 1)
	if err != nil {
		return nil, fmt.Errorf("invalid 'increment' in incremental setter: %w", err)
	}

	return IncrementalSetter{
		Field:     field,
		GroupBy:   fieldsFromConfig(mapping, "group"),
		SortBy:    fieldsFromConfig(mapping, "sort"),
		Start:     start,
		Increment: increment,
		condition: cond,
	}, nil
}

func templateFromConfig(field string, mapping map[string]any, cond condition) (Setter, error) {
	template, ok := mapping["template"].(string)
	if !ok || template == "" {
		return nil, fmt.Errorf("no template given in setter config")
	}

	getters := map[string]Getter{}
	for key, raw := range mapping {
		switch key {
		case "operation", "template", "when":
			continue
		}
		getter, err := getterFromConfig(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid getter %q in template setter: %w", key, err)
		}
		getters[key] = getter
	}

	for _, match := range templateFieldPattern.FindAllStringSubmatch(template, -1) {
		name := match[1]
		if _, ok := getters[name]; ok {
			continue
		}
		if !models.IsTagName(name) {
			return nil, fmt.Errorf("template contains fields which have not been configured: %s", name)
		}
	}

	return TemplateSetter{Field: field, Template: template, Getters: getters, condition: cond}, nil
}

func fieldsFromConfig(mapping map[string]any, key string) []string {
	var fields []string
	switch v := mapping[key].(type) {
	case string:
		fields = []string{v}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				fields = append(fields, s)
			}
		}
	}
	return fields
}
