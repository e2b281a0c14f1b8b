package cache

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/geo-martino/musify-cli/internal/models"
	"github.com/geo-martino/musify-cli/internal/shared"
)

func openCache(t *testing.T, expire time.Duration) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"), expire)
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestResponseCache(t *testing.T) {
	t.Run("set and get round trip", func(t *testing.T) {
		c := openCache(t, time.Hour)

		if err := c.SetResponse("/me/tracks", []byte(`{"items":[]}`)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		body, ok := c.GetResponse("/me/tracks")
		if !ok {
			t.Fatal("expected cache hit")
		}
		if string(body) != `{"items":[]}` {
			t.Errorf("unexpected body: %s", body)
		}
	})

	t.Run("miss for unknown endpoint", func(t *testing.T) {
		c := openCache(t, time.Hour)
		if _, ok := c.GetResponse("/nope"); ok {
			t.Error("expected cache miss")
		}
	})

	t.Run("set overwrites previous body", func(t *testing.T) {
		c := openCache(t, time.Hour)

		if err := c.SetResponse("/me", []byte("old")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := c.SetResponse("/me", []byte("new")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		body, ok := c.GetResponse("/me")
		if !ok || string(body) != "new" {
			t.Errorf("expected overwritten body, got %q ok=%v", body, ok)
		}
	})

	t.Run("zero expiry disables caching", func(t *testing.T) {
		c := openCache(t, 0)

		if err := c.SetResponse("/me", []byte("body")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := c.GetResponse("/me"); ok {
			t.Error("expected caching disabled")
		}
	})

	t.Run("expired responses miss", func(t *testing.T) {
		c := openCache(t, time.Nanosecond)

		if err := c.SetResponse("/me", []byte("body")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		time.Sleep(time.Millisecond)
		if _, ok := c.GetResponse("/me"); ok {
			t.Error("expected expired entry to miss")
		}
		if err := c.Expire(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestTrackCache(t *testing.T) {
	track := models.Track{
		Title: "Song", Artist: "Artist", Album: "Album",
		URI: "spotify:track:abc", ISRC: "USX123", Duration: 200,
	}

	t.Run("cache and load round trip", func(t *testing.T) {
		c := openCache(t, time.Hour)

		if err := c.CacheTrack("spotify", "abc", track); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := c.GetTrack("spotify", "abc")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Title != "Song" || got.URI != "spotify:track:abc" || got.Duration != 200 {
			t.Errorf("unexpected track: %+v", got)
		}
	})

	t.Run("duplicates silently ignored", func(t *testing.T) {
		c := openCache(t, time.Hour)

		if err := c.CacheTrack("spotify", "abc", track); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := c.CacheTrack("spotify", "abc", track); err != nil {
			t.Fatalf("expected duplicate ignored, got %v", err)
		}

		count, err := c.CountTracks("spotify")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 cached track, got %d", count)
		}
	})

	t.Run("unknown track not found", func(t *testing.T) {
		c := openCache(t, time.Hour)

		_, err := c.GetTrack("spotify", "missing")
		if !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})

	t.Run("match by title and artist ignores case", func(t *testing.T) {
		c := openCache(t, time.Hour)

		if err := c.CacheTrack("spotify", "abc", track); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := c.MatchTrack("spotify", "song", "ARTIST")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.URI != "spotify:track:abc" {
			t.Errorf("unexpected match: %+v", got)
		}

		if _, err := c.MatchTrack("spotify", "Other Song", "Artist"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})
}
