// package library implements the local and remote music libraries the
// application manages.
//
// The local library lives on disk as exported track files and m3u playlists;
// the remote library talks to the Spotify Web API. Both satisfy [Library] so
// operations can treat them uniformly.
package library

import (
	"context"

	"github.com/geo-martino/musify-cli/internal/models"
)

// Parts of a library that can be loaded or enriched selectively.
const (
	LoadTracks    = "tracks"
	LoadPlaylists = "playlists"
	LoadSaved     = "saved_tracks"
	EnrichTracks  = "tracks"
	EnrichArtists = "artists"
)

// Library is a loadable collection of tracks and playlists.
type Library interface {
	// Name returns the configured name of the library.
	Name() string
	// Source identifies where the library's items live, e.g. "Local" or "Spotify".
	Source() string
	// Load populates the library's tracks and playlists.
	// With no types given, everything loads; otherwise only the named parts.
	Load(ctx context.Context, types ...string) error
	// Tracks returns every loaded track.
	Tracks() []*models.Track
	// Playlists returns every loaded playlist with its tracks.
	Playlists() []models.PlaylistExport
	// Export snapshots the library for backups.
	Export() models.LibraryExport
}

// loadRequested reports whether the given part should load for the requested types.
// An empty request loads everything.
func loadRequested(types []string, part string) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if t == part {
			return true
		}
	}
	return false
}
