package library

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/geo-martino/musify-cli/internal/config"
	"github.com/geo-martino/musify-cli/internal/models"
	"github.com/geo-martino/musify-cli/internal/shared"
	"github.com/google/renameio/v2"
)

// LocalLibrary manages music tracks and playlists stored on the local file system.
//
// Tracks are JSON files in the configured library folders, one per track,
// in the same shape backups export. Playlists are .m3u files listing track
// paths, one per line.
type LocalLibrary struct {
	name    string
	cfg     config.LocalConfig
	execute bool
	logger  *log.Logger

	tracks    []*models.Track
	playlists []models.PlaylistExport
}

// NewLocal creates a local library from its config.
// When execute is false, saves log what they would write without writing.
func NewLocal(name string, cfg config.LocalConfig, execute bool, logger *log.Logger) *LocalLibrary {
	return &LocalLibrary{
		name:    name,
		cfg:     cfg,
		execute: execute,
		logger:  shared.WithLogger(logger, "library", name, "source", "Local"),
	}
}

func (l *LocalLibrary) Name() string   { return l.name }
func (l *LocalLibrary) Source() string { return "Local" }

// Tracks returns every loaded track.
func (l *LocalLibrary) Tracks() []*models.Track { return l.tracks }

// Playlists returns every loaded playlist with its resolved tracks.
func (l *LocalLibrary) Playlists() []models.PlaylistExport { return l.playlists }

// Load scans the configured library folders for tracks and the playlist
// folder for m3u playlists.
func (l *LocalLibrary) Load(ctx context.Context, types ...string) error {
	if loadRequested(types, LoadTracks) {
		if err := l.loadTracks(ctx); err != nil {
			return err
		}
	}
	if loadRequested(types, LoadPlaylists) {
		if err := l.loadPlaylists(); err != nil {
			return err
		}
	}
	l.logger.Info("loaded library", "tracks", len(l.tracks), "playlists", len(l.playlists))
	return nil
}

func (l *LocalLibrary) loadTracks(ctx context.Context) error {
	l.tracks = nil

	for _, dir := range l.cfg.Paths.Library {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
				return nil
			}

			track, err := readTrack(path)
			if err != nil {
				l.logger.Warn("skipping unreadable track file", "path", path, "error", err)
				return nil
			}
			l.tracks = append(l.tracks, track)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to scan library folder %s: %w", dir, err)
		}
	}
	return nil
}

func readTrack(path string) (*models.Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var track models.Track
	if err := json.Unmarshal(data, &track); err != nil {
		return nil, err
	}
	if track.Path == "" {
		track.Path = path
	}
	return &track, nil
}

func (l *LocalLibrary) loadPlaylists() error {
	l.playlists = nil
	if l.cfg.Paths.Playlists == "" {
		return nil
	}

	entries, err := os.ReadDir(l.cfg.Paths.Playlists)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read playlist folder: %w", err)
	}

	index := l.trackIndex()
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".m3u") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if !l.cfg.Playlist.MatchesName(name) {
			continue
		}

		playlist, err := l.readPlaylist(filepath.Join(l.cfg.Paths.Playlists, entry.Name()), name, index)
		if err != nil {
			return err
		}
		l.playlists = append(l.playlists, playlist)
	}
	return nil
}

func (l *LocalLibrary) readPlaylist(path, name string, index map[string]*models.Track) (models.PlaylistExport, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.PlaylistExport{}, fmt.Errorf("failed to open playlist %s: %w", name, err)
	}
	defer f.Close()

	var tracks []models.Track
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if track, ok := index[l.mapPath(line)]; ok {
			tracks = append(tracks, *track)
		} else {
			l.logger.Debug("playlist entry not in library", "playlist", name, "path", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return models.PlaylistExport{}, fmt.Errorf("failed to read playlist %s: %w", name, err)
	}

	return models.PlaylistExport{
		Playlist: models.Playlist{Name: name, TrackCount: len(tracks)},
		Tracks:   tracks,
	}, nil
}

// mapPath translates a track path through the configured path map,
// for libraries shared across machines with different mount points.
func (l *LocalLibrary) mapPath(path string) string {
	for from, to := range l.cfg.Paths.Map {
		if strings.HasPrefix(path, from) {
			path = to + strings.TrimPrefix(path, from)
			break
		}
	}
	return filepath.Clean(path)
}

func (l *LocalLibrary) trackIndex() map[string]*models.Track {
	index := make(map[string]*models.Track, len(l.tracks))
	for _, track := range l.tracks {
		index[l.mapPath(track.Path)] = track
	}
	return index
}

// SaveTracks writes the given tracks back to their library files.
//
// Writes are atomic. In dry-run mode nothing is written and the count of
// tracks that would change is returned.
func (l *LocalLibrary) SaveTracks(tracks []*models.Track) (int, error) {
	saved := 0
	for _, track := range tracks {
		if track.Path == "" {
			continue
		}
		if !l.execute {
			saved++
			continue
		}

		data, err := json.MarshalIndent(track, "", "  ")
		if err != nil {
			return saved, fmt.Errorf("failed to encode track %s: %w", track.Path, err)
		}
		if err := renameio.WriteFile(track.Path, append(data, '\n'), 0o644); err != nil {
			return saved, fmt.Errorf("failed to write track %s: %w", track.Path, err)
		}
		saved++
	}

	if !l.execute {
		l.logger.Info("dry run, no tracks were written", "would_save", saved)
	} else {
		l.logger.Info("saved tracks", "count", saved)
	}
	return saved, nil
}

// RestoreTracks merges the given tag fields from a backup export onto the
// library's tracks, matching by path. Returns the number of tracks restored.
func (l *LocalLibrary) RestoreTracks(backup models.LibraryExport, tags []string) (int, error) {
	index := l.trackIndex()
	restored := 0

	for _, backed := range backup.Tracks {
		track, ok := index[l.mapPath(backed.Path)]
		if !ok {
			continue
		}

		changed := false
		for _, tag := range tags {
			value := (&backed).Tag(tag)
			if value == nil {
				continue
			}
			if err := track.SetTag(tag, value); err != nil {
				return restored, fmt.Errorf("failed to restore %s on %s: %w", tag, track.Path, err)
			}
			changed = true
		}
		if changed {
			restored++
		}
	}
	return restored, nil
}

// MergeTracks pulls the given tag fields onto the library's tracks from
// matching remote tracks. Tracks match by URI, then ISRC, then by a
// normalised title and artist key. Returns the number of tracks updated.
func (l *LocalLibrary) MergeTracks(remote []models.Track, tags []string) (int, error) {
	byURI := map[string]*models.Track{}
	byISRC := map[string]*models.Track{}
	byKey := map[string]*models.Track{}
	for i := range remote {
		r := &remote[i]
		if r.URI != "" {
			byURI[r.URI] = r
		}
		if r.ISRC != "" {
			byISRC[r.ISRC] = r
		}
		byKey[shared.NormalizeTrackKey(r.Title, r.Artist)] = r
	}

	merged := 0
	for _, track := range l.tracks {
		source := byURI[track.URI]
		if source == nil && track.ISRC != "" {
			source = byISRC[track.ISRC]
		}
		if source == nil {
			source = byKey[shared.NormalizeTrackKey(track.Title, track.Artist)]
		}
		if source == nil {
			continue
		}

		changed := false
		for _, tag := range tags {
			value := source.Tag(tag)
			if value == nil {
				continue
			}
			if fmt.Sprintf("%v", track.Tag(tag)) == fmt.Sprintf("%v", value) {
				continue
			}
			if err := track.SetTag(tag, value); err != nil {
				return merged, fmt.Errorf("failed to merge %s onto %s: %w", tag, track.Path, err)
			}
			changed = true
		}
		if changed {
			merged++
		}
	}
	return merged, nil
}

// Folders groups the library's tracks by their parent folder.
func (l *LocalLibrary) Folders() [][]*models.Track {
	byFolder := map[string][]*models.Track{}
	var order []string
	for _, track := range l.tracks {
		folder := filepath.Dir(track.Path)
		if _, ok := byFolder[folder]; !ok {
			order = append(order, folder)
		}
		byFolder[folder] = append(byFolder[folder], track)
	}

	folders := make([][]*models.Track, 0, len(order))
	for _, folder := range order {
		folders = append(folders, byFolder[folder])
	}
	return folders
}

// Export snapshots the library for backups.
func (l *LocalLibrary) Export() models.LibraryExport {
	export := models.LibraryExport{
		Name:      l.name,
		Source:    l.Source(),
		Playlists: l.playlists,
	}
	for _, track := range l.tracks {
		export.Tracks = append(export.Tracks, *track)
	}
	return export
}
