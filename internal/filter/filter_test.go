package filter

import (
	"testing"

	"github.com/geo-martino/musify-cli/internal/models"
)

func TestFromConfig(t *testing.T) {
	t.Run("nil config gives empty filter", func(t *testing.T) {
		f, err := FromConfig(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !f.IsEmpty() {
			t.Error("expected empty filter")
		}
		if !f.MatchesName("anything") {
			t.Error("empty filter should pass everything")
		}
	})

	t.Run("string config matches exact name", func(t *testing.T) {
		f, err := FromConfig("My Playlist")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !f.MatchesName("my playlist") {
			t.Error("expected case-insensitive name match")
		}
		if f.MatchesName("other") {
			t.Error("expected no match for other names")
		}
	})

	t.Run("sequence config matches any listed name", func(t *testing.T) {
		f, err := FromConfig([]any{"one", "two"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !f.MatchesName("two") {
			t.Error("expected match for listed name")
		}
		if f.MatchesName("three") {
			t.Error("expected no match for unlisted name")
		}
	})

	t.Run("mapping config builds field comparers", func(t *testing.T) {
		f, err := FromConfig(map[string]any{
			"field":     "artist",
			"match_all": true,
			"is":        "Artist Name",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(f.Comparers) != 1 {
			t.Fatalf("expected 1 comparer, got %d", len(f.Comparers))
		}
		if !f.MatchAll {
			t.Error("expected match_all to be set")
		}
		if f.Comparers[0].Field != "artist" {
			t.Errorf("expected field artist, got %s", f.Comparers[0].Field)
		}
	})
}

func TestComparerMatch(t *testing.T) {
	tc := []struct {
		name      string
		condition string
		expected  any
		value     any
		want      bool
	}{
		{name: "is match", condition: "is", expected: "rock", value: "Rock", want: true},
		{name: "is mismatch", condition: "is", expected: "rock", value: "jazz", want: false},
		{name: "is not", condition: "is not", expected: "rock", value: "jazz", want: true},
		{name: "is in", condition: "is in", expected: []any{"a", "b"}, value: "b", want: true},
		{name: "is not in", condition: "is not in", expected: []any{"a", "b"}, value: "c", want: true},
		{name: "contains", condition: "contains", expected: "oc", value: "Rock", want: true},
		{name: "does not contain", condition: "does not contain", expected: "xyz", value: "Rock", want: true},
		{name: "starts with", condition: "starts with", expected: "ro", value: "Rock", want: true},
		{name: "ends with", condition: "ends with", expected: "ck", value: "Rock", want: true},
		{name: "matches regex", condition: "matches", expected: "^R.ck$", value: "Rock", want: true},
		{name: "greater than", condition: "greater than", expected: 3, value: 5, want: true},
		{name: "less than", condition: "less than", expected: 3, value: 5, want: false},
		{name: "in range", condition: "in range", expected: []any{1, 10}, value: 5, want: true},
		{name: "out of range", condition: "in range", expected: []any{1, 10}, value: 11, want: false},
		{name: "underscore condition name", condition: "is_not", expected: "rock", value: "jazz", want: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			c := Comparer{Condition: tt.condition, Expected: tt.expected}
			got, err := c.Match(tt.value)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Match(%v %s %v) = %v, want %v", tt.value, tt.condition, tt.expected, got, tt.want)
			}
		})
	}

	t.Run("unrecognised condition errors", func(t *testing.T) {
		c := Comparer{Condition: "resembles", Expected: "x"}
		if _, err := c.Match("y"); err == nil {
			t.Error("expected error for unrecognised condition")
		}
	})
}

func TestFilterTracks(t *testing.T) {
	tracks := []*models.Track{
		{Title: "One", Artist: "Alpha", Genres: []string{"rock"}},
		{Title: "Two", Artist: "Beta", Genres: []string{"jazz"}},
		{Title: "Three", Artist: "Alpha"},
	}

	t.Run("filter by field", func(t *testing.T) {
		f, _ := FromConfig(map[string]any{"field": "artist", "is": "alpha"})
		got := f.Tracks(tracks)
		if len(got) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(got))
		}
	})

	t.Run("match_all combines conditions", func(t *testing.T) {
		f := FilterComparers{
			MatchAll: true,
			Comparers: []Comparer{
				{Field: "artist", Condition: "is", Expected: "alpha"},
				{Field: "genres", Condition: "contains", Expected: "rock"},
			},
		}
		got := f.Tracks(tracks)
		if len(got) != 1 || got[0].Title != "One" {
			t.Fatalf("expected only track One, got %d tracks", len(got))
		}
	})

	t.Run("fieldless comparer uses title", func(t *testing.T) {
		f, _ := FromConfig([]any{"One", "Two"})
		got := f.Tracks(tracks)
		if len(got) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(got))
		}
	})
}
