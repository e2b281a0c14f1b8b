package library

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/geo-martino/musify-cli/internal/config"
	"github.com/geo-martino/musify-cli/internal/filter"
	"github.com/geo-martino/musify-cli/internal/models"
	"github.com/geo-martino/musify-cli/internal/shared"
)

func writeTrack(t *testing.T, dir, name string, track models.Track) string {
	t.Helper()
	path := filepath.Join(dir, name)
	track.Path = path
	data, err := json.Marshal(track)
	if err != nil {
		t.Fatalf("failed to encode track: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write track: %v", err)
	}
	return path
}

func newLocalLibrary(t *testing.T, execute bool) (*LocalLibrary, string) {
	t.Helper()
	dir := t.TempDir()
	tracksDir := filepath.Join(dir, "tracks")
	playlistsDir := filepath.Join(dir, "playlists")
	for _, d := range []string{tracksDir, playlistsDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
	}

	cfg := config.LocalConfig{
		Paths: config.LocalPaths{
			Library:   config.StringList{tracksDir},
			Playlists: playlistsDir,
		},
	}
	return NewLocal("main", cfg, execute, shared.NewLogger(nil)), dir
}

func TestLocalLibraryLoad(t *testing.T) {
	lib, dir := newLocalLibrary(t, false)
	tracksDir := filepath.Join(dir, "tracks")

	one := writeTrack(t, tracksDir, "one.json", models.Track{Title: "One", Artist: "A"})
	writeTrack(t, tracksDir, "two.json", models.Track{Title: "Two", Artist: "B"})
	playlist := one + "\n# a comment\n" + filepath.Join(tracksDir, "missing.json") + "\n"
	if err := os.WriteFile(filepath.Join(dir, "playlists", "Mix.m3u"), []byte(playlist), 0o644); err != nil {
		t.Fatalf("failed to write playlist: %v", err)
	}

	if err := lib.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("tracks scanned from library folders", func(t *testing.T) {
		if len(lib.Tracks()) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(lib.Tracks()))
		}
	})

	t.Run("playlist resolves tracks and skips unknown entries", func(t *testing.T) {
		playlists := lib.Playlists()
		if len(playlists) != 1 {
			t.Fatalf("expected 1 playlist, got %d", len(playlists))
		}
		if playlists[0].Playlist.Name != "Mix" {
			t.Errorf("unexpected playlist name: %s", playlists[0].Playlist.Name)
		}
		if len(playlists[0].Tracks) != 1 || playlists[0].Tracks[0].Title != "One" {
			t.Errorf("unexpected playlist tracks: %+v", playlists[0].Tracks)
		}
	})

	t.Run("export snapshots everything", func(t *testing.T) {
		export := lib.Export()
		if export.Source != "Local" || export.Name != "main" {
			t.Errorf("unexpected export header: %+v", export)
		}
		if len(export.Tracks) != 2 || len(export.Playlists) != 1 {
			t.Errorf("unexpected export contents: %d tracks, %d playlists", len(export.Tracks), len(export.Playlists))
		}
	})
}

func TestLocalLibraryPlaylistFilter(t *testing.T) {
	lib, dir := newLocalLibrary(t, false)
	lib.cfg.Playlist = filterFor(t, []any{"Keep"})

	for _, name := range []string{"Keep.m3u", "Drop.m3u"} {
		if err := os.WriteFile(filepath.Join(dir, "playlists", name), []byte(""), 0o644); err != nil {
			t.Fatalf("failed to write playlist: %v", err)
		}
	}

	if err := lib.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lib.Playlists()) != 1 || lib.Playlists()[0].Playlist.Name != "Keep" {
		t.Errorf("expected only filtered playlist, got %+v", lib.Playlists())
	}
}

func filterFor(t *testing.T, raw any) config.Filter {
	t.Helper()
	fc, err := filter.FromConfig(raw)
	if err != nil {
		t.Fatalf("failed to build filter: %v", err)
	}
	return config.Filter{FilterComparers: fc}
}

func TestLocalLibrarySaveTracks(t *testing.T) {
	t.Run("dry run counts without writing", func(t *testing.T) {
		lib, dir := newLocalLibrary(t, false)
		path := writeTrack(t, filepath.Join(dir, "tracks"), "one.json", models.Track{Title: "One", Artist: "A"})

		if err := lib.Load(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		lib.Tracks()[0].Album = "Changed"

		count, err := lib.SaveTracks(lib.Tracks())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 would-save, got %d", count)
		}

		track, err := readTrack(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if track.Album != "" {
			t.Errorf("expected file untouched in dry run, got album %s", track.Album)
		}
	})

	t.Run("execute writes atomically", func(t *testing.T) {
		lib, dir := newLocalLibrary(t, true)
		path := writeTrack(t, filepath.Join(dir, "tracks"), "one.json", models.Track{Title: "One", Artist: "A"})

		if err := lib.Load(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		lib.Tracks()[0].Album = "Changed"

		if _, err := lib.SaveTracks(lib.Tracks()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		track, err := readTrack(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if track.Album != "Changed" {
			t.Errorf("expected album written, got %s", track.Album)
		}
	})
}

func TestLocalLibraryRestoreTracks(t *testing.T) {
	lib, dir := newLocalLibrary(t, false)
	path := writeTrack(t, filepath.Join(dir, "tracks"), "one.json", models.Track{Title: "One", Artist: "A"})

	if err := lib.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	backup := models.LibraryExport{
		Tracks: []models.Track{
			{Title: "One", Artist: "A", Album: "Backed Up", Year: 2020, Path: path},
			{Title: "Gone", Artist: "X", Path: filepath.Join(dir, "tracks", "gone.json")},
		},
	}

	count, err := lib.RestoreTracks(backup, []string{models.TagAlbum, models.TagYear})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 track restored, got %d", count)
	}

	track := lib.Tracks()[0]
	if track.Album != "Backed Up" || track.Year != 2020 {
		t.Errorf("expected restored tags, got %+v", track)
	}
}

func TestLocalLibraryMergeTracks(t *testing.T) {
	lib, dir := newLocalLibrary(t, false)
	writeTrack(t, filepath.Join(dir, "tracks"), "one.json", models.Track{Title: "One", Artist: "A", URI: "spotify:track:1"})
	writeTrack(t, filepath.Join(dir, "tracks"), "two.json", models.Track{Title: "Two", Artist: "B"})
	writeTrack(t, filepath.Join(dir, "tracks"), "three.json", models.Track{Title: "Three", Artist: "C"})

	if err := lib.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	remote := []models.Track{
		{Title: "One", Artist: "A", URI: "spotify:track:1", Genres: []string{"rock"}},
		{Title: "two", Artist: "b", Genres: []string{"pop"}},
	}

	count, err := lib.MergeTracks(remote, []string{models.TagGenres})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 tracks merged, got %d", count)
	}

	byTitle := map[string]*models.Track{}
	for _, track := range lib.Tracks() {
		byTitle[track.Title] = track
	}
	if got := byTitle["One"].Genres; len(got) != 1 || got[0] != "rock" {
		t.Errorf("expected URI match merged, got %v", got)
	}
	if got := byTitle["Two"].Genres; len(got) != 1 || got[0] != "pop" {
		t.Errorf("expected title+artist match merged, got %v", got)
	}
	if got := byTitle["Three"].Genres; len(got) != 0 {
		t.Errorf("expected unmatched track untouched, got %v", got)
	}
}

func TestLocalLibraryFolders(t *testing.T) {
	lib, dir := newLocalLibrary(t, false)
	sub := filepath.Join(dir, "tracks", "Album A")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	writeTrack(t, filepath.Join(dir, "tracks"), "loose.json", models.Track{Title: "Loose", Artist: "X"})
	writeTrack(t, sub, "one.json", models.Track{Title: "One", Artist: "A"})
	writeTrack(t, sub, "two.json", models.Track{Title: "Two", Artist: "A"})

	if err := lib.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	folders := lib.Folders()
	if len(folders) != 2 {
		t.Fatalf("expected 2 folders, got %d", len(folders))
	}
	sizes := map[int]bool{len(folders[0]): true, len(folders[1]): true}
	if !sizes[1] || !sizes[2] {
		t.Errorf("expected folders of 1 and 2 tracks, got %d and %d", len(folders[0]), len(folders[1]))
	}
}
