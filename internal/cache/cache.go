// package cache persists remote API responses and tracks in a local SQLite database.
//
// The response cache cuts repeat traffic against rate-limited remote APIs;
// the track cache keeps every remote track ever seen for offline matching.
package cache

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/geo-martino/musify-cli/internal/models"
	"github.com/geo-martino/musify-cli/internal/shared"
)

// Cache wraps the SQLite cache database.
type Cache struct {
	db          *sql.DB
	expireAfter time.Duration
}

// Open opens (creating if needed) the cache database at the given path and
// applies schema migrations. Cached responses expire after expireAfter;
// zero disables response caching entirely.
func Open(path string, expireAfter time.Duration) (*Cache, error) {
	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer, so keep the pool to one connection.
	shared.ConfigureDatabase(db, 1, 1)
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate cache database: %w", err)
	}
	return &Cache{db: db, expireAfter: expireAfter}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// GetResponse returns the cached body for the endpoint, if present and fresh.
func (c *Cache) GetResponse(endpoint string) ([]byte, bool) {
	if c.expireAfter <= 0 {
		return nil, false
	}

	var body []byte
	var expiresAt time.Time
	err := c.db.QueryRow(
		"SELECT body, expires_at FROM responses WHERE endpoint = ?", endpoint,
	).Scan(&body, &expiresAt)
	if err != nil || time.Now().After(expiresAt) {
		return nil, false
	}
	return body, true
}

// SetResponse stores the body for the endpoint with the configured expiry.
func (c *Cache) SetResponse(endpoint string, body []byte) error {
	if c.expireAfter <= 0 {
		return nil
	}

	now := time.Now()
	_, err := c.db.Exec(`
		INSERT INTO responses (endpoint, body, cached_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (endpoint) DO UPDATE SET
			body = excluded.body,
			cached_at = excluded.cached_at,
			expires_at = excluded.expires_at
	`, endpoint, body, now, now.Add(c.expireAfter))
	if err != nil {
		return fmt.Errorf("failed to cache response: %w", err)
	}
	return nil
}

// Expire removes every stale response row.
func (c *Cache) Expire() error {
	if _, err := c.db.Exec("DELETE FROM responses WHERE expires_at < ?", time.Now()); err != nil {
		return fmt.Errorf("failed to expire responses: %w", err)
	}
	return nil
}

// CacheTrack stores a track seen on a remote service.
// Tracks already cached for the same service and id are silently ignored.
func (c *Cache) CacheTrack(service, serviceID string, track models.Track) error {
	_, err := c.db.Exec(`
		INSERT INTO tracks (service, service_id, title, artist, album, uri, isrc, duration, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, service, serviceID, track.Title, track.Artist, track.Album, track.URI, track.ISRC, track.Duration, time.Now())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to cache track: %w", err)
	}
	return nil
}

// GetTrack returns a previously cached track for the service and id.
func (c *Cache) GetTrack(service, serviceID string) (*models.Track, error) {
	var track models.Track
	var album, uri, isrc sql.NullString
	err := c.db.QueryRow(`
		SELECT service_id, title, artist, album, uri, isrc, duration
		FROM tracks WHERE service = ? AND service_id = ?
	`, service, serviceID).Scan(&track.ID, &track.Title, &track.Artist, &album, &uri, &isrc, &track.Duration)
	if err == sql.ErrNoRows {
		return nil, shared.ErrTrackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cached track: %w", err)
	}

	track.Album = album.String
	track.URI = uri.String
	track.ISRC = isrc.String
	return &track, nil
}

// MatchTrack returns a cached track for the service matching the title and
// artist, ignoring case.
func (c *Cache) MatchTrack(service, title, artist string) (*models.Track, error) {
	var track models.Track
	var album, uri, isrc sql.NullString
	err := c.db.QueryRow(`
		SELECT service_id, title, artist, album, uri, isrc, duration
		FROM tracks WHERE service = ? AND title = ? COLLATE NOCASE AND artist = ? COLLATE NOCASE
	`, service, title, artist).Scan(&track.ID, &track.Title, &track.Artist, &album, &uri, &isrc, &track.Duration)
	if err == sql.ErrNoRows {
		return nil, shared.ErrTrackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to match cached track: %w", err)
	}

	track.Album = album.String
	track.URI = uri.String
	track.ISRC = isrc.String
	return &track, nil
}

// CountTracks returns the number of tracks cached for the service.
func (c *Cache) CountTracks(service string) (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM tracks WHERE service = ?", service).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cached tracks: %w", err)
	}
	return count, nil
}
