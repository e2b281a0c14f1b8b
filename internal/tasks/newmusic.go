package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/geo-martino/musify-cli/internal/models"
)

// NewMusicResult summarises a new music playlist build.
type NewMusicResult struct {
	Playlist string
	Artists  int
	Albums   int
	Tracks   int
}

// NewMusic builds a playlist of tracks from albums the user's followed
// artists released within the configured date window, then syncs it to the
// remote library. Honours dry-run.
func (p *Processor) NewMusic(ctx context.Context, progress chan<- ProgressUpdate) (*NewMusicResult, error) {
	_, remoteCfg, err := p.cfg.TargetRemote()
	if err != nil {
		return nil, err
	}
	cfg := remoteCfg.NewMusic

	name := cfg.Name
	if name == "" {
		name = "New Music"
	}
	start, end := cfg.Start.Time, cfg.End.Time
	if end.IsZero() {
		end = time.Now()
	}
	if start.IsZero() {
		start = end.AddDate(0, 0, -30)
	}

	p.sendProgress(progress, ProgressUpdate{Phase: FindNewMusic, Message: "Fetching followed artists..."})
	artists, err := p.remote.FollowedArtists(ctx)
	if err != nil {
		return nil, err
	}

	result := &NewMusicResult{Playlist: name, Artists: len(artists)}
	var tracks []models.Track

	for i, artist := range artists {
		p.sendProgress(progress, ProgressUpdate{
			Phase:   FindNewMusic,
			Step:    i + 1,
			Total:   len(artists),
			Message: fmt.Sprintf("Checking releases (%s)...", artist.Name),
		})

		albums, err := p.remote.ArtistAlbums(ctx, artist.ID)
		if err != nil {
			return nil, err
		}
		for _, album := range albums {
			released, ok := parseReleaseDate(album.ReleaseDate)
			if !ok || released.Before(start) || released.After(end) {
				continue
			}

			result.Albums++
			albumTracks, err := p.remote.AlbumTracks(ctx, album.ID)
			if err != nil {
				return nil, err
			}
			tracks = append(tracks, albumTracks...)
		}
	}
	result.Tracks = len(tracks)

	playlist := models.PlaylistExport{
		Playlist: models.Playlist{Name: name, TrackCount: len(tracks)},
		Tracks:   tracks,
	}
	// Rebuild rather than sync so reruns replace the playlist's content.
	if _, err := p.remote.RestorePlaylists(ctx, []models.PlaylistExport{playlist}, p.cfg.Execute); err != nil {
		return nil, err
	}

	p.logger.Info("built new music playlist",
		"playlist", name, "artists", result.Artists, "albums", result.Albums, "tracks", result.Tracks)
	return result, nil
}

// parseReleaseDate reads the remote's release date formats: full dates,
// year-month, or a bare year.
func parseReleaseDate(raw string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
