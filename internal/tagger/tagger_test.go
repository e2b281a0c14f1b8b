package tagger

import (
	"testing"

	"github.com/geo-martino/musify-cli/internal/models"
)

func track(title, artist, path string) *models.Track {
	return &models.Track{Title: title, Artist: artist, Path: path}
}

func TestGetters(t *testing.T) {
	tr := track("Song", "Artist", "/music/Album Folder/03 - Song.mp3")
	tr.TrackNumber = 3
	tr.TrackTotal = 12

	t.Run("tag getter", func(t *testing.T) {
		g, err := getterFromConfig("artist")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := g.Get(tr); got != "Artist" {
			t.Errorf("expected Artist, got %v", got)
		}
	})

	t.Run("tag getter with fixed leading zeros", func(t *testing.T) {
		g, err := getterFromConfig(map[string]any{"field": "track_number", "leading_zeros": 3})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := g.Get(tr); got != "003" {
			t.Errorf("expected 003, got %v", got)
		}
	})

	t.Run("tag getter with field-width leading zeros", func(t *testing.T) {
		g, err := getterFromConfig(map[string]any{"field": "track_number", "leading_zeros": "track_total"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := g.Get(tr); got != "03" {
			t.Errorf("expected 03, got %v", got)
		}
	})

	t.Run("path getter", func(t *testing.T) {
		g, err := getterFromConfig(map[string]any{"field": "path", "parent": 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := g.Get(tr); got != "Album Folder" {
			t.Errorf("expected Album Folder, got %v", got)
		}
	})

	t.Run("conditional getter", func(t *testing.T) {
		g, err := getterFromConfig(map[string]any{
			"when":  map[string]any{"field": "artist", "is": "artist"},
			"value": "matched",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := g.Get(tr); got != "matched" {
			t.Errorf("expected matched, got %v", got)
		}
		if got := g.Get(track("Other", "Nobody", "")); got != nil {
			t.Errorf("expected nil for non-matching track, got %v", got)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		if _, err := getterFromConfig("bogus_field"); err == nil {
			t.Error("expected error for unknown field")
		}
	})
}

func TestSetters(t *testing.T) {
	t.Run("value setter", func(t *testing.T) {
		tr := track("Song", "Artist", "")
		s, err := setterFromConfig("album_artist", "Various")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := s.Set(tr, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tr.AlbumArtist != "Various" {
			t.Errorf("expected Various, got %s", tr.AlbumArtist)
		}
	})

	t.Run("field setter", func(t *testing.T) {
		tr := track("Song", "Artist", "")
		s, err := setterFromConfig("album_artist", map[string]any{"field": "artist"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := s.Set(tr, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tr.AlbumArtist != "Artist" {
			t.Errorf("expected Artist, got %s", tr.AlbumArtist)
		}
	})

	t.Run("clear setter", func(t *testing.T) {
		tr := track("Song", "Artist", "")
		tr.Album = "Old Album"
		s, err := setterFromConfig("album", map[string]any{"operation": "clear"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := s.Set(tr, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tr.Album != "" {
			t.Errorf("expected cleared album, got %s", tr.Album)
		}
	})

	t.Run("join setter", func(t *testing.T) {
		tr := track("Song", "Artist", "/music/Folder/01 Song.mp3")
		s, err := setterFromConfig("album", map[string]any{
			"operation": "join",
			"separator": " - ",
			"values":    []any{"artist", "title"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := s.Set(tr, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tr.Album != "Artist - Song" {
			t.Errorf("expected joined value, got %s", tr.Album)
		}
	})

	t.Run("incremental setter numbers group by sort order", func(t *testing.T) {
		a := track("A", "X", "/m/f/b.mp3")
		b := track("B", "X", "/m/f/a.mp3")
		c := track("C", "X", "/m/f/c.mp3")
		collection := []*models.Track{a, b, c}

		s, err := setterFromConfig("track_number", map[string]any{"operation": "incremental"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, tr := range collection {
			if err := s.Set(tr, collection); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		// default sort is by filename
		if b.TrackNumber != 1 || a.TrackNumber != 2 || c.TrackNumber != 3 {
			t.Errorf("expected 2,1,3 got %d,%d,%d", a.TrackNumber, b.TrackNumber, c.TrackNumber)
		}
	})

	t.Run("max setter takes group maximum", func(t *testing.T) {
		a := track("A", "X", "")
		a.Album, a.Year = "Album", 2001
		b := track("B", "X", "")
		b.Album, b.Year = "Album", 2004
		collection := []*models.Track{a, b}

		s, err := setterFromConfig("year", map[string]any{"operation": "max", "group": "album"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := s.Set(a, collection); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Year != 2004 {
			t.Errorf("expected 2004, got %d", a.Year)
		}
	})

	t.Run("template setter", func(t *testing.T) {
		tr := track("Song", "Artist", "/music/Folder/01 Song.mp3")
		s, err := setterFromConfig("album", map[string]any{
			"operation": "template",
			"template":  "{artist} ({folder})",
			"folder":    map[string]any{"field": "path", "parent": 1},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := s.Set(tr, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tr.Album != "Artist (Folder)" {
			t.Errorf("expected templated album, got %s", tr.Album)
		}
	})

	t.Run("template with unconfigured field rejected", func(t *testing.T) {
		_, err := setterFromConfig("album", map[string]any{
			"operation": "template",
			"template":  "{nonsense}",
		})
		if err == nil {
			t.Error("expected error for unconfigured template field")
		}
	})

	t.Run("when condition gates setter", func(t *testing.T) {
		tr := track("Song", "Artist", "")
		s, err := setterFromConfig("album_artist", map[string]any{
			"value": "Various",
			"when":  map[string]any{"field": "artist", "is": "someone else"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := s.Set(tr, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tr.AlbumArtist != "" {
			t.Errorf("expected setter to be skipped, album_artist = %s", tr.AlbumArtist)
		}
	})
}

func TestTaggerFromConfig(t *testing.T) {
	rules := []map[string]any{
		{
			"filter":       map[string]any{"field": "folder", "is": "Compilations"},
			"album_artist": "Various",
			"compilation":  map[string]any{"value": true},
		},
	}

	tagger, err := FromConfig(rules)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tagger.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(tagger.Rules))
	}
	if len(tagger.Rules[0].Setters) != 2 {
		t.Fatalf("expected 2 setters, got %d", len(tagger.Rules[0].Setters))
	}

	inside := track("In", "A", "/m/Compilations/in.mp3")
	outside := track("Out", "B", "/m/Albums/out.mp3")
	collections := [][]*models.Track{{inside}, {outside}}

	count, err := tagger.SetTags([]*models.Track{inside, outside}, collections)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 track touched, got %d", count)
	}
	if inside.AlbumArtist != "Various" || !inside.Compilation {
		t.Errorf("expected rule applied to matching track: %+v", inside)
	}
	if outside.AlbumArtist != "" || outside.Compilation {
		t.Errorf("expected rule skipped for non-matching track: %+v", outside)
	}

	t.Run("unknown rule field rejected", func(t *testing.T) {
		_, err := FromConfig([]map[string]any{{"bogus": "x"}})
		if err == nil {
			t.Error("expected error for unknown rule field")
		}
	})
}
