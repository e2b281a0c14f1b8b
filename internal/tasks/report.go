package tasks

import (
	"context"

	"github.com/geo-martino/musify-cli/internal/models"
	"github.com/geo-martino/musify-cli/internal/shared"
)

// PlaylistDifference compares one playlist across the two libraries.
type PlaylistDifference struct {
	Name          string
	MatchedCount  int
	MissingRemote []models.Track // in the local playlist but not the remote one
	ExtraRemote   []models.Track // in the remote playlist but not the local one
}

// MissingTagsEntry lists the configured tags a track has no value for.
type MissingTagsEntry struct {
	Track models.Track
	Tags  []string
}

// ReportResult holds the outcome of every enabled report.
type ReportResult struct {
	PlaylistDifferences []PlaylistDifference
	MissingTags         []MissingTagsEntry
}

// Report runs the enabled reports over the loaded libraries.
func (p *Processor) Report(ctx context.Context, progress chan<- ProgressUpdate) (*ReportResult, error) {
	result := &ReportResult{}

	if p.cfg.Reports.PlaylistDifferences.Enabled {
		p.sendProgress(progress, ProgressUpdate{Phase: BuildReport, Message: "Comparing playlists..."})
		if err := p.loadBoth(ctx, progress); err != nil {
			return nil, err
		}
		result.PlaylistDifferences = p.playlistDifferences()
	}

	if p.cfg.Reports.MissingTags.Enabled {
		p.sendProgress(progress, ProgressUpdate{Phase: BuildReport, Message: "Checking for missing tags..."})
		if len(p.local.Tracks()) == 0 {
			if err := p.local.Load(ctx); err != nil {
				return nil, err
			}
		}
		result.MissingTags = p.missingTags()
	}

	return result, nil
}

func (p *Processor) playlistDifferences() []PlaylistDifference {
	cfg := p.cfg.Reports.PlaylistDifferences

	remote := map[string]models.PlaylistExport{}
	for _, playlist := range p.remote.Playlists() {
		remote[playlist.Playlist.Name] = playlist
	}

	var differences []PlaylistDifference
	for _, local := range p.local.Playlists() {
		name := local.Playlist.Name
		if !cfg.Filter.MatchesName(name) {
			continue
		}

		diff := PlaylistDifference{Name: name}
		reference, exists := remote[name]
		if !exists {
			diff.MissingRemote = local.Tracks
			differences = append(differences, diff)
			continue
		}

		remoteKeys := map[string]bool{}
		for _, track := range reference.Tracks {
			remoteKeys[trackKey(track)] = true
		}
		localKeys := map[string]bool{}
		for _, track := range local.Tracks {
			key := trackKey(track)
			localKeys[key] = true
			if remoteKeys[key] {
				diff.MatchedCount++
			} else {
				diff.MissingRemote = append(diff.MissingRemote, track)
			}
		}
		for _, track := range reference.Tracks {
			if !localKeys[trackKey(track)] {
				diff.ExtraRemote = append(diff.ExtraRemote, track)
			}
		}
		differences = append(differences, diff)
	}
	return differences
}

// trackKey matches tracks across libraries: by URI when both sides carry
// one, otherwise by normalised title and artist.
func trackKey(track models.Track) string {
	if track.URI != "" {
		return track.URI
	}
	return shared.NormalizeTrackKey(track.Title, track.Artist)
}

func (p *Processor) missingTags() []MissingTagsEntry {
	cfg := p.cfg.Reports.MissingTags
	tags := cfg.Tags.Names()

	var entries []MissingTagsEntry
	for _, track := range p.local.Tracks() {
		if !cfg.Filter.IsEmpty() && !cfg.Filter.MatchesTrack(track) {
			continue
		}

		var missing []string
		for _, tag := range tags {
			if track.Tag(tag) == nil {
				missing = append(missing, tag)
			}
		}

		// match_all reports only tracks missing every configured tag
		if len(missing) == 0 || (cfg.MatchAll && len(missing) != len(tags)) {
			continue
		}
		entries = append(entries, MissingTagsEntry{Track: *track, Tags: missing})
	}
	return entries
}
