package tasks

import (
	"context"
	"fmt"
	"sort"

	"github.com/geo-martino/musify-cli/internal/library"
	"github.com/geo-martino/musify-cli/internal/models"
)

// SyncRemote pushes the local library's playlists to the remote library per
// the configured sync kind.
func (p *Processor) SyncRemote(ctx context.Context, progress chan<- ProgressUpdate) ([]library.SyncResult, error) {
	p.sendProgress(progress, loadUpdate(p.local.Source()))
	if err := p.local.Load(ctx); err != nil {
		return nil, err
	}

	playlists := p.local.Playlists()
	for i, playlist := range playlists {
		p.sendProgress(progress, syncUpdate(i+1, len(playlists), playlist.Playlist.Name))
	}

	results, err := p.remote.SyncPlaylists(ctx, playlists, p.cfg.Execute)
	if err != nil {
		return nil, fmt.Errorf("failed to sync playlists: %w", err)
	}
	return results, nil
}

// PullTags loads the remote library, enriches it, and merges its tag data
// onto matching local tracks, then saves.
func (p *Processor) PullTags(ctx context.Context, progress chan<- ProgressUpdate) (int, error) {
	if err := p.loadBoth(ctx, progress); err != nil {
		return 0, err
	}

	enrich := p.cfg.Reload.Remote.Enrich
	if enrich.Enabled {
		if err := p.remote.Enrich(ctx, enrich.Types...); err != nil {
			return 0, err
		}
	}

	// Playlist tracks count as remote sources too; saved tracks take priority
	// by coming first.
	sources := exportTracks(p.remote.Tracks())
	for _, playlist := range p.remote.Playlists() {
		sources = append(sources, playlist.Tracks...)
	}

	_, localCfg, err := p.cfg.TargetLocal()
	if err != nil {
		return 0, err
	}

	p.sendProgress(progress, ProgressUpdate{Phase: MergeTags, Message: "Merging remote tags onto local tracks..."})
	merged, err := p.local.MergeTracks(sources, localCfg.Updater.Tags.Names())
	if err != nil {
		return 0, err
	}

	p.sendProgress(progress, saveUpdate(merged))
	if _, err := p.local.SaveTracks(p.local.Tracks()); err != nil {
		return merged, err
	}
	return merged, nil
}

// ProcessCompilations marks each library folder up as a compilation album:
// the album takes the folder name, the album artist becomes "Various",
// tracks renumber by file name and the compilation flag is set. The
// top-level filter selects which folders are covered.
func (p *Processor) ProcessCompilations(ctx context.Context, progress chan<- ProgressUpdate) (int, error) {
	p.sendProgress(progress, loadUpdate(p.local.Source()))
	if err := p.local.Load(ctx, library.LoadTracks); err != nil {
		return 0, err
	}

	var folders [][]*models.Track
	for _, folder := range p.local.Folders() {
		if p.cfg.Filter.MatchesName(folder[0].Folder()) {
			folders = append(folders, folder)
		}
	}

	processed := 0
	for i, folder := range folders {
		album := folder[0].Folder()
		p.sendProgress(progress, ProgressUpdate{
			Phase:   SetCompilations,
			Step:    i + 1,
			Total:   len(folders),
			Message: fmt.Sprintf("Processing compilation (%s)...", album),
		})

		sortByFilename(folder)
		for number, track := range folder {
			track.Album = album
			track.AlbumArtist = "Various"
			track.Compilation = true
			track.TrackNumber = number + 1
			track.TrackTotal = len(folder)
			track.DiscNumber = 1
			track.DiscTotal = 1
			processed++
		}
	}

	p.sendProgress(progress, saveUpdate(processed))
	if _, err := p.local.SaveTracks(p.local.Tracks()); err != nil {
		return processed, err
	}
	return processed, nil
}

func sortByFilename(tracks []*models.Track) {
	sort.SliceStable(tracks, func(i, j int) bool {
		return tracks[i].Filename() < tracks[j].Filename()
	})
}
