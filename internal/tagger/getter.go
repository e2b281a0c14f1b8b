// package tagger applies tags to tracks based on user-defined rules.
//
// A rule pairs a filter selecting tracks with setters for the fields to
// write. Setters derive their values through getters which read other tags,
// path segments or fixed values.
package tagger

import (
	"fmt"
	"strings"

	"github.com/geo-martino/musify-cli/internal/filter"
	"github.com/geo-martino/musify-cli/internal/models"
)

// Getter reads a value from a track.
type Getter interface {
	Get(t *models.Track) any
}

// TagGetter reads the value of a single tag field, optionally zero-padded.
//
// LeadingZerosField, when set, pads to the width of that field's value on
// the same track instead of a fixed width.
type TagGetter struct {
	Field             string
	LeadingZeros      int
	LeadingZerosField string
}

func (g TagGetter) Get(t *models.Track) any {
	if g.Field == "" {
		return nil
	}
	value := t.Tag(g.Field)
	if value == nil {
		return nil
	}

	width := g.LeadingZeros
	if g.LeadingZerosField != "" {
		width = 0
		if ref := t.Tag(g.LeadingZerosField); ref != nil {
			width = len(fmt.Sprintf("%v", ref))
		}
	}
	if width > 0 {
		return zfill(fmt.Sprintf("%v", value), width)
	}
	return value
}

// ConditionalGetter reads a tag field or fixed value only when the track
// passes its condition, returning nil otherwise.
type ConditionalGetter struct {
	When  filter.FilterComparers
	Field string
	Value string
}

func (g ConditionalGetter) Get(t *models.Track) any {
	if !g.When.MatchesTrack(t) {
		return nil
	}
	if g.Field != "" {
		return TagGetter{Field: g.Field}.Get(t)
	}
	return g.Value
}

// PathGetter reads a path segment of the track's file path.
// Parent 0 is the file name, 1 its folder, and so on.
type PathGetter struct {
	Parent int
}

func (g PathGetter) Get(t *models.Track) any {
	parts := strings.Split(strings.TrimRight(strings.ReplaceAll(t.Path, "\\", "/"), "/"), "/")
	idx := len(parts) - g.Parent - 1
	if idx < 0 || idx >= len(parts) {
		return nil
	}
	return parts[idx]
}

// getterFromConfig creates the appropriate [Getter] for the given config.
//
// A bare string names a tag field. A mapping with a "when" key builds a
// [ConditionalGetter], a mapping with field "path" a [PathGetter], and any
// other mapping a [TagGetter].
func getterFromConfig(raw any) (Getter, error) {
	mapping, ok := raw.(map[string]any)
	if !ok {
		field, isString := raw.(string)
		if !isString {
			return nil, fmt.Errorf("unrecognised getter config type: %T", raw)
		}
		if !models.IsTagName(field) {
			return nil, fmt.Errorf("unrecognised tag field in getter config: %s", field)
		}
		return TagGetter{Field: field}, nil
	}

	if _, hasWhen := mapping["when"]; hasWhen {
		return conditionalGetterFromConfig(mapping)
	}

	field, _ := mapping["field"].(string)
	if strings.EqualFold(field, models.TagPath) {
		parent, err := intFromConfig(mapping["parent"], 0)
		if err != nil || parent < 0 {
			return nil, fmt.Errorf("parent value must be >= 0, got %v", mapping["parent"])
		}
		return PathGetter{Parent: parent}, nil
	}

	return tagGetterFromConfig(mapping)
}

func tagGetterFromConfig(mapping map[string]any) (Getter, error) {
	field, _ := mapping["field"].(string)
	if field == "" {
		return nil, fmt.Errorf("no field given in getter config")
	}
	if !models.IsTagName(field) {
		return nil, fmt.Errorf("unrecognised tag field in getter config: %s", field)
	}

	getter := TagGetter{Field: field}
	if err := applyLeadingZeros(&getter, mapping); err != nil {
		return nil, err
	}
	return getter, nil
}

func conditionalGetterFromConfig(mapping map[string]any) (Getter, error) {
	when, err := filter.FromConfig(mapping["when"])
	if err != nil {
		return nil, fmt.Errorf("invalid 'when' condition in getter config: %w", err)
	}

	getter := ConditionalGetter{When: when}
	if field, ok := mapping["field"].(string); ok {
		if !models.IsTagName(field) {
			return nil, fmt.Errorf("unrecognised tag field in getter config: %s", field)
		}
		getter.Field = field
	}
	if value, ok := mapping["value"]; ok {
		getter.Value = fmt.Sprintf("%v", value)
	}
	return getter, nil
}

func applyLeadingZeros(getter *TagGetter, mapping map[string]any) error {
	raw, ok := mapping["leading_zeros"]
	if !ok || raw == nil {
		return nil
	}

	switch v := raw.(type) {
	case int:
		getter.LeadingZeros = v
	case string:
		if !models.IsTagName(v) {
			return fmt.Errorf("unrecognised tag field for leading_zeros: %s", v)
		}
		getter.LeadingZerosField = v
	default:
		return fmt.Errorf("leading_zeros must be an integer or tag field name, got %T", raw)
	}
	return nil
}

func intFromConfig(raw any, fallback int) (int, error) {
	switch v := raw.(type) {
	case nil:
		return fallback, nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	}
	return 0, fmt.Errorf("expected integer, got %T", raw)
}

func zfill(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
