// package models defines the data model shared by the local and remote music libraries
package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Tag field names recognised in config for tagging rules, reports and updater settings.
const (
	TagTitle       = "title"
	TagArtist      = "artist"
	TagAlbum       = "album"
	TagAlbumArtist = "album_artist"
	TagTrackNumber = "track_number"
	TagTrackTotal  = "track_total"
	TagDiscNumber  = "disc_number"
	TagDiscTotal   = "disc_total"
	TagCompilation = "compilation"
	TagGenres      = "genres"
	TagYear        = "year"
	TagURI         = "uri"
	TagISRC        = "isrc"
	TagPath        = "path"
	TagFilename    = "filename"
	TagFolder      = "folder"
	TagDuration    = "duration"
)

// TagNames lists every tag field name recognised in config.
var TagNames = []string{
	TagTitle, TagArtist, TagAlbum, TagAlbumArtist,
	TagTrackNumber, TagTrackTotal, TagDiscNumber, TagDiscTotal,
	TagCompilation, TagGenres, TagYear, TagURI, TagISRC,
	TagPath, TagFilename, TagFolder, TagDuration,
}

// WritableTagNames lists the tag fields that can be set on a track.
// Filename and folder derive from the path and are read-only.
var WritableTagNames = []string{
	TagTitle, TagArtist, TagAlbum, TagAlbumArtist,
	TagTrackNumber, TagTrackTotal, TagDiscNumber, TagDiscTotal,
	TagCompilation, TagGenres, TagYear, TagURI, TagISRC, TagDuration,
}

// IsTagName reports whether name is a recognised tag field name.
func IsTagName(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, tag := range TagNames {
		if tag == name {
			return true
		}
	}
	return false
}

// Track represents a music track from any library.
type Track struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Artist      string   `json:"artist"`
	Album       string   `json:"album,omitempty"`
	AlbumArtist string   `json:"album_artist,omitempty"`
	TrackNumber int      `json:"track_number,omitempty"`
	TrackTotal  int      `json:"track_total,omitempty"`
	DiscNumber  int      `json:"disc_number,omitempty"`
	DiscTotal   int      `json:"disc_total,omitempty"`
	Compilation bool     `json:"compilation,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Year        int      `json:"year,omitempty"`
	URI         string   `json:"uri,omitempty"`
	ISRC        string   `json:"isrc,omitempty"` // International Standard Recording Code for matching
	Path        string   `json:"path,omitempty"` // File path for local tracks
	Duration    int      `json:"duration,omitempty"`
}

// Filename returns the file name of the track's path without its extension.
func (t *Track) Filename() string {
	if t.Path == "" {
		return ""
	}
	base := filepath.Base(t.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Folder returns the name of the parent folder of the track's path.
func (t *Track) Folder() string {
	if t.Path == "" {
		return ""
	}
	return filepath.Base(filepath.Dir(t.Path))
}

// Tag returns the value of the given tag field by name.
// Returns nil for unset fields and for unrecognised names.
func (t *Track) Tag(name string) any {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case TagTitle:
		return emptyAsNil(t.Title)
	case TagArtist:
		return emptyAsNil(t.Artist)
	case TagAlbum:
		return emptyAsNil(t.Album)
	case TagAlbumArtist:
		return emptyAsNil(t.AlbumArtist)
	case TagTrackNumber:
		return zeroAsNil(t.TrackNumber)
	case TagTrackTotal:
		return zeroAsNil(t.TrackTotal)
	case TagDiscNumber:
		return zeroAsNil(t.DiscNumber)
	case TagDiscTotal:
		return zeroAsNil(t.DiscTotal)
	case TagCompilation:
		return t.Compilation
	case TagGenres:
		if len(t.Genres) == 0 {
			return nil
		}
		return strings.Join(t.Genres, "; ")
	case TagYear:
		return zeroAsNil(t.Year)
	case TagURI:
		return emptyAsNil(t.URI)
	case TagISRC:
		return emptyAsNil(t.ISRC)
	case TagPath:
		return emptyAsNil(t.Path)
	case TagFilename:
		return emptyAsNil(t.Filename())
	case TagFolder:
		return emptyAsNil(t.Folder())
	case TagDuration:
		return zeroAsNil(t.Duration)
	}
	return nil
}

// SetTag sets the value of the given tag field by name.
// A nil value clears the field. Returns an error for unrecognised names
// or values which cannot be coerced to the field's type.
func (t *Track) SetTag(name string, value any) error {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case TagTitle:
		t.Title = asString(value)
	case TagArtist:
		t.Artist = asString(value)
	case TagAlbum:
		t.Album = asString(value)
	case TagAlbumArtist:
		t.AlbumArtist = asString(value)
	case TagTrackNumber, TagTrackTotal, TagDiscNumber, TagDiscTotal, TagYear, TagDuration:
		n, err := asInt(value)
		if err != nil {
			return fmt.Errorf("cannot set %s: %w", name, err)
		}
		switch name {
		case TagTrackNumber:
			t.TrackNumber = n
		case TagTrackTotal:
			t.TrackTotal = n
		case TagDiscNumber:
			t.DiscNumber = n
		case TagDiscTotal:
			t.DiscTotal = n
		case TagYear:
			t.Year = n
		case TagDuration:
			t.Duration = n
		}
	case TagCompilation:
		b, ok := value.(bool)
		if value == nil {
			b = false
		} else if !ok {
			return fmt.Errorf("cannot set %s: expected bool, got %T", name, value)
		}
		t.Compilation = b
	case TagGenres:
		switch v := value.(type) {
		case nil:
			t.Genres = nil
		case []string:
			t.Genres = v
		case string:
			t.Genres = splitGenres(v)
		default:
			return fmt.Errorf("cannot set %s: expected string or []string, got %T", name, value)
		}
	case TagURI:
		t.URI = asString(value)
	case TagISRC:
		t.ISRC = asString(value)
	case TagPath:
		t.Path = asString(value)
	default:
		return fmt.Errorf("unrecognised tag field: %s", name)
	}
	return nil
}

func emptyAsNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func zeroAsNil(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

func asString(value any) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%v", value)
}

func asInt(value any) (int, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(v), "%d", &n); err != nil {
			return 0, fmt.Errorf("invalid integer %q", v)
		}
		return n, nil
	}
	return 0, fmt.Errorf("expected integer, got %T", value)
}

func splitGenres(s string) []string {
	var genres []string
	for _, genre := range strings.Split(s, ";") {
		if genre = strings.TrimSpace(genre); genre != "" {
			genres = append(genres, genre)
		}
	}
	return genres
}

// Playlist represents a music playlist from any library.
type Playlist struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
}

// PlaylistExport represents a playlist with all its tracks for backup and sync operations.
type PlaylistExport struct {
	Playlist Playlist `json:"playlist"`
	Tracks   []Track  `json:"tracks"`
}

// LibraryExport represents a full library snapshot used by backup and restore.
type LibraryExport struct {
	Name      string           `json:"name"`
	Source    string           `json:"source"`
	Tracks    []Track          `json:"tracks"`
	Playlists []PlaylistExport `json:"playlists,omitempty"`
}

// Artist represents a followed artist on a remote library.
type Artist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres,omitempty"`
}

// Album represents an album release from a remote library.
type Album struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	ReleaseDate string `json:"release_date"`
	TotalTracks int    `json:"total_tracks"`
}
