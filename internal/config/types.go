package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/geo-martino/musify-cli/internal/filter"
	"github.com/geo-martino/musify-cli/internal/models"
	"github.com/geo-martino/musify-cli/internal/tagger"
	"gopkg.in/yaml.v3"
)

// Filter wraps [filter.FilterComparers] to decode the filter config shapes.
type Filter struct {
	filter.FilterComparers
}

func (f *Filter) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}

	fc, err := filter.FromConfig(raw)
	if err != nil {
		return parserError("Could not process filter config", "filter", raw)
	}
	f.FilterComparers = fc
	return nil
}

// Rules wraps [tagger.Tagger] to decode tagging rule config.
type Rules struct {
	tagger.Tagger
}

func (r *Rules) UnmarshalYAML(node *yaml.Node) error {
	var raw []map[string]any
	if err := node.Decode(&raw); err != nil {
		return err
	}

	t, err := tagger.FromConfig(raw)
	if err != nil {
		return err
	}
	r.Tagger = *t
	return nil
}

// TagList is a list of tag field names, decoded from a scalar or a sequence.
// Unrecognised tag names are rejected.
type TagList []string

func (t *TagList) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}

	names := toStrings(raw)
	for i, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if !models.IsTagName(name) {
			return parserError("Unrecognised tag name", "tags", name)
		}
		names[i] = name
	}
	*t = names
	return nil
}

// Contains reports whether the list names the given tag, or is empty (all tags).
func (t TagList) Contains(name string) bool {
	if len(t) == 0 {
		return true
	}
	name = strings.ToLower(strings.TrimSpace(name))
	for _, tag := range t {
		if tag == name {
			return true
		}
	}
	return false
}

// Names returns the configured names, or every writable tag name when the
// list is empty.
func (t TagList) Names() []string {
	if len(t) == 0 {
		return models.WritableTagNames
	}
	return t
}

// StringList decodes a scalar or a sequence of scalars to a string slice.
type StringList []string

func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*s = toStrings(raw)
	return nil
}

// Duration decodes either a Go duration string or a number of seconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var seconds float64
	if err := node.Decode(&seconds); err == nil {
		*d = Duration(time.Duration(seconds * float64(time.Second)))
		return nil
	}

	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return parserError("Invalid duration", "", raw)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped [time.Duration].
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Date decodes a YYYY-MM-DD date. The zero value means unset.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}

	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return parserError("Invalid date, expected YYYY-MM-DD", "", raw)
	}
	d.Time = parsed
	return nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

var _ fmt.Stringer = Date{}
