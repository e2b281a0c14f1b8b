// Spotify Web API client backing the remote library.
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package library

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/geo-martino/musify-cli/internal/cache"
	"github.com/geo-martino/musify-cli/internal/config"
	"github.com/geo-martino/musify-cli/internal/models"
	"github.com/geo-martino/musify-cli/internal/shared"
	"github.com/google/renameio/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

var defaultScopes = []string{
	"playlist-read-private",
	"playlist-read-collaborative",
	"playlist-modify-public",
	"playlist-modify-private",
	"user-library-read",
	"user-follow-read",
}

type externalIDs struct {
	ISRC string `json:"isrc"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	Album       SpotifyAlbum    `json:"album"`
	DurationMS  int             `json:"duration_ms"`
	ExternalIDs externalIDs     `json:"external_ids"`
	URI         string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
	URI    string   `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	ReleaseDate string          `json:"release_date"`
	TotalTracks int             `json:"total_tracks"`
	URI         string          `json:"uri"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
	Tracks      struct {
		Total int `json:"total"`
	} `json:"tracks"`
	URI string `json:"uri"`
}

// page is the envelope of every paginated Spotify response.
type page[T any] struct {
	Items  []T     `json:"items"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Next   *string `json:"next"`
}

type playlistTrack struct {
	Track SpotifyTrack `json:"track"`
}

type savedTrack struct {
	AddedAt string       `json:"added_at"`
	Track   SpotifyTrack `json:"track"`
}

// SpotifyLibrary manages the user's Spotify library over the Web API.
//
// Requests are rate limited and, when a cache is attached, GET responses are
// served from it while fresh.
type SpotifyLibrary struct {
	name   string
	cfg    config.SpotifyConfig
	logger *log.Logger

	oauth      *oauth2.Config
	token      *oauth2.Token
	tokenPath  string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *cache.Cache

	// baseURL is the API root, replaceable in tests.
	baseURL string

	userID    string
	tracks    []*models.Track
	playlists []models.PlaylistExport
	// playlistIDs maps loaded playlist names to their remote ids.
	playlistIDs map[string]string
	// artistIDs maps loaded track URIs to their primary artist's id.
	artistIDs map[string]string
}

// NewSpotify creates a Spotify library from its config.
// The cache may be nil to disable response caching.
func NewSpotify(name string, cfg config.SpotifyConfig, tokenPath string, c *cache.Cache, logger *log.Logger) *SpotifyLibrary {
	scopes := []string(cfg.API.Scope)
	if len(scopes) == 0 {
		scopes = defaultScopes
	}

	interval := cfg.API.Handler.Wait.Initial.Std()
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	if tokenPath == "" {
		tokenPath = cfg.API.TokenPath
	}

	return &SpotifyLibrary{
		name:   name,
		cfg:    cfg,
		logger: shared.WithLogger(logger, "library", name, "source", "Spotify"),
		oauth: &oauth2.Config{
			ClientID:     cfg.API.ClientID,
			ClientSecret: cfg.API.ClientSecret,
			RedirectURL:  "http://localhost:8080/callback",
			Scopes:       scopes,
			Endpoint:     oauth2.Endpoint{AuthURL: spotifyAuthURL, TokenURL: spotifyTokenURL},
		},
		tokenPath:   tokenPath,
		httpClient:  http.DefaultClient,
		limiter:     rate.NewLimiter(rate.Every(interval), 1),
		cache:       c,
		baseURL:     spotifyBaseURL,
		playlistIDs: map[string]string{},
		artistIDs:   map[string]string{},
	}
}

func (s *SpotifyLibrary) Name() string   { return s.name }
func (s *SpotifyLibrary) Source() string { return "Spotify" }

// Tracks returns every loaded saved track.
func (s *SpotifyLibrary) Tracks() []*models.Track { return s.tracks }

// Playlists returns every loaded playlist with its tracks.
func (s *SpotifyLibrary) Playlists() []models.PlaylistExport { return s.playlists }

// OAuthConfig returns the OAuth2 config for running the authorization flow.
func (s *SpotifyLibrary) OAuthConfig() *oauth2.Config { return s.oauth }

// SetTransport overrides the API root and HTTP client, pointing the library
// at a stub server in tests.
func (s *SpotifyLibrary) SetTransport(baseURL string, client *http.Client) {
	s.baseURL = baseURL
	if client != nil {
		s.httpClient = client
	}
}

// AuthURL returns the authorization URL to open in a browser.
func (s *SpotifyLibrary) AuthURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Authenticate loads the cached token from disk and builds the API client.
// Returns [shared.ErrNotAuthenticated] when no usable token exists.
func (s *SpotifyLibrary) Authenticate(ctx context.Context) error {
	if s.cfg.API.ClientID == "" || s.cfg.API.ClientSecret == "" {
		return fmt.Errorf("%w: client_id and client_secret are required", shared.ErrMissingCredentials)
	}

	data, err := os.ReadFile(s.tokenPath)
	if err != nil {
		return fmt.Errorf("%w: no token at %s", shared.ErrNotAuthenticated, s.tokenPath)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return fmt.Errorf("%w: unreadable token file", shared.ErrInvalidCredentials)
	}
	if token.RefreshToken == "" && !token.Valid() {
		return fmt.Errorf("%w: token expired and not refreshable", shared.ErrTokenExpired)
	}

	s.SetToken(ctx, &token)
	return nil
}

// SetToken installs a token and builds the refreshing API client, persisting
// the token to disk.
func (s *SpotifyLibrary) SetToken(ctx context.Context, token *oauth2.Token) {
	s.token = token
	s.httpClient = s.oauth.Client(ctx, token)
	if err := s.saveToken(token); err != nil {
		s.logger.Warn("failed to persist token", "error", err)
	}
}

func (s *SpotifyLibrary) saveToken(token *oauth2.Token) error {
	if s.tokenPath == "" {
		return nil
	}
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.tokenPath), 0o755); err != nil {
		return err
	}
	return renameio.WriteFile(s.tokenPath, data, 0o600)
}

// Authenticated reports whether a token is installed.
func (s *SpotifyLibrary) Authenticated() bool {
	return s.token != nil
}

// doRequest performs a rate-limited, cache-aware API request.
func (s *SpotifyLibrary) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if s.token == nil {
		return shared.ErrNotAuthenticated
	}

	if method == http.MethodGet && s.cache != nil && result != nil {
		if cached, ok := s.cache.GetResponse(endpoint); ok {
			return json.Unmarshal(cached, result)
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	data, err := s.send(req)
	if err != nil {
		return err
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		if method == http.MethodGet && s.cache != nil {
			if err := s.cache.SetResponse(endpoint, data); err != nil {
				s.logger.Warn("failed to cache response", "endpoint", endpoint, "error", err)
			}
		}
	}
	return nil
}

// send executes the request, retrying on rate limits and server errors per
// the configured backoff.
func (s *SpotifyLibrary) send(req *http.Request) ([]byte, error) {
	retries := s.cfg.API.Handler.Retry.Count
	wait := s.cfg.API.Handler.Retry.Initial.Std()
	if wait <= 0 {
		wait = time.Second
	}
	factor := s.cfg.API.Handler.Retry.Factor
	if factor <= 1 {
		factor = 2
	}

	for attempt := 0; ; attempt++ {
		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %s: %v", shared.ErrAPIRequest, req.Method, req.URL.Path, err)
		}

		var buf bytes.Buffer
		_, readErr := buf.ReadFrom(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("failed to read response: %w", readErr)
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return buf.Bytes(), nil
		case (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500) && attempt < retries:
			s.logger.Warn("retrying request", "status", resp.StatusCode, "attempt", attempt+1, "wait", wait)
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(wait):
			}
			wait = time.Duration(float64(wait) * factor)
		case resp.StatusCode == http.StatusUnauthorized:
			return nil, fmt.Errorf("%w: status %d", shared.ErrNotAuthenticated, resp.StatusCode)
		default:
			return nil, fmt.Errorf("%w: %s %s: status %d", shared.ErrAPIRequest, req.Method, req.URL.Path, resp.StatusCode)
		}
	}
}

// getAll follows a paginated endpoint until exhausted, appending each page's
// items through collect.
func getAll[T any](ctx context.Context, s *SpotifyLibrary, endpoint string, limit int, collect func([]T)) error {
	offset := 0
	for {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		var p page[T]
		err := s.doRequest(ctx, http.MethodGet,
			fmt.Sprintf("%s%slimit=%d&offset=%d", endpoint, sep, limit, offset), nil, &p)
		if err != nil {
			return err
		}

		collect(p.Items)
		if p.Next == nil || len(p.Items) == 0 {
			return nil
		}
		offset += limit
	}
}

// Load populates the library from the remote API.
func (s *SpotifyLibrary) Load(ctx context.Context, types ...string) error {
	if err := s.loadUser(ctx); err != nil {
		return err
	}
	if loadRequested(types, LoadSaved) || loadRequested(types, LoadTracks) {
		if err := s.loadSavedTracks(ctx); err != nil {
			return err
		}
	}
	if loadRequested(types, LoadPlaylists) {
		if err := s.loadPlaylists(ctx); err != nil {
			return err
		}
	}
	s.logger.Info("loaded library", "tracks", len(s.tracks), "playlists", len(s.playlists))
	return nil
}

func (s *SpotifyLibrary) loadUser(ctx context.Context) error {
	if s.userID != "" {
		return nil
	}
	var user struct {
		ID string `json:"id"`
	}
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return err
	}
	s.userID = user.ID
	return nil
}

func (s *SpotifyLibrary) loadSavedTracks(ctx context.Context) error {
	s.tracks = nil
	return getAll(ctx, s, "/me/tracks", 50, func(items []savedTrack) {
		for _, item := range items {
			track := trackFromSpotify(item.Track)
			s.tracks = append(s.tracks, &track)
			s.cacheTrack(item.Track)
		}
	})
}

func (s *SpotifyLibrary) loadPlaylists(ctx context.Context) error {
	s.playlists = nil
	s.playlistIDs = map[string]string{}

	var summaries []SpotifyPlaylist
	err := getAll(ctx, s, "/me/playlists", 50, func(items []SpotifyPlaylist) {
		summaries = append(summaries, items...)
	})
	if err != nil {
		return err
	}

	for _, summary := range summaries {
		if !s.cfg.Playlists.Filter.MatchesName(summary.Name) {
			continue
		}

		var tracks []models.Track
		err := getAll(ctx, s, "/playlists/"+summary.ID+"/tracks", 100, func(items []playlistTrack) {
			for _, item := range items {
				tracks = append(tracks, trackFromSpotify(item.Track))
				s.cacheTrack(item.Track)
			}
		})
		if err != nil {
			return err
		}

		s.playlistIDs[summary.Name] = summary.ID
		s.playlists = append(s.playlists, models.PlaylistExport{
			Playlist: models.Playlist{
				ID:          summary.ID,
				Name:        summary.Name,
				Description: summary.Description,
				TrackCount:  len(tracks),
				Public:      summary.Public,
			},
			Tracks: tracks,
		})
	}
	return nil
}

func (s *SpotifyLibrary) cacheTrack(track SpotifyTrack) {
	if len(track.Artists) > 0 && track.URI != "" {
		s.artistIDs[track.URI] = track.Artists[0].ID
	}
	if s.cache == nil || track.ID == "" {
		return
	}
	if err := s.cache.CacheTrack("spotify", track.ID, trackFromSpotify(track)); err != nil {
		s.logger.Warn("failed to cache track", "id", track.ID, "error", err)
	}
}

// Enrich augments loaded tracks with data only available from further
// endpoints, currently artist genres.
func (s *SpotifyLibrary) Enrich(ctx context.Context, types ...string) error {
	if !loadRequested(types, EnrichArtists) {
		return nil
	}

	// Fetch genres in batches of 50 artists, the endpoint's maximum.
	ids := s.trackArtistIDs()
	genresByArtist := map[string][]string{}

	for start := 0; start < len(ids); start += 50 {
		end := start + 50
		if end > len(ids) {
			end = len(ids)
		}

		var response struct {
			Artists []SpotifyArtist `json:"artists"`
		}
		endpoint := "/artists?ids=" + url.QueryEscape(strings.Join(ids[start:end], ","))
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
			return err
		}
		for _, artist := range response.Artists {
			genresByArtist[artist.ID] = artist.Genres
		}
	}

	enriched := 0
	for _, track := range s.tracks {
		genres := genresByArtist[s.artistIDs[track.URI]]
		if len(genres) > 0 {
			track.Genres = genres
			enriched++
		}
	}
	s.logger.Info("enriched tracks with artist genres", "count", enriched)
	return nil
}

// trackArtistIDs collects the distinct primary artist ids of loaded tracks.
func (s *SpotifyLibrary) trackArtistIDs() []string {
	seen := map[string]struct{}{}
	var ids []string
	for _, track := range s.tracks {
		artistID := s.artistIDs[track.URI]
		if artistID == "" {
			continue
		}
		if _, ok := seen[artistID]; ok {
			continue
		}
		seen[artistID] = struct{}{}
		ids = append(ids, artistID)
	}
	return ids
}

// Search finds the best remote match for a track, returning its URI.
//
// With use_cache configured, previously seen remote tracks match offline
// before the search endpoint is queried.
func (s *SpotifyLibrary) Search(ctx context.Context, track *models.Track) (string, error) {
	if s.cfg.Search.UseCache && s.cache != nil {
		if cached, err := s.cache.MatchTrack(s.Source(), track.Title, track.Artist); err == nil && cached.URI != "" {
			return cached.URI, nil
		}
	}

	query := fmt.Sprintf("track:%s artist:%s", track.Title, track.Artist)
	endpoint := "/search?type=track&limit=10&q=" + url.QueryEscape(query)

	var response struct {
		Tracks page[SpotifyTrack] `json:"tracks"`
	}
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return "", err
	}

	want := shared.NormalizeTrackKey(track.Title, track.Artist)
	for _, item := range response.Tracks.Items {
		if len(item.Artists) == 0 {
			continue
		}
		if shared.NormalizeTrackKey(item.Name, item.Artists[0].Name) == want {
			return item.URI, nil
		}
	}
	if len(response.Tracks.Items) > 0 {
		return response.Tracks.Items[0].URI, nil
	}
	return "", fmt.Errorf("%w: %s - %s", shared.ErrTrackNotFound, track.Artist, track.Title)
}

// FollowedArtists returns the artists the user follows.
func (s *SpotifyLibrary) FollowedArtists(ctx context.Context) ([]models.Artist, error) {
	// The following endpoint uses cursor pagination rather than offsets.
	var artists []models.Artist
	after := ""
	for {
		endpoint := "/me/following?type=artist&limit=50"
		if after != "" {
			endpoint += "&after=" + url.QueryEscape(after)
		}

		var response struct {
			Artists struct {
				Items   []SpotifyArtist `json:"items"`
				Cursors struct {
					After string `json:"after"`
				} `json:"cursors"`
			} `json:"artists"`
		}
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
			return nil, err
		}

		for _, artist := range response.Artists.Items {
			artists = append(artists, models.Artist{ID: artist.ID, Name: artist.Name, Genres: artist.Genres})
		}
		if response.Artists.Cursors.After == "" || len(response.Artists.Items) == 0 {
			return artists, nil
		}
		after = response.Artists.Cursors.After
	}
}

// ArtistAlbums returns an artist's album releases.
func (s *SpotifyLibrary) ArtistAlbums(ctx context.Context, artistID string) ([]models.Album, error) {
	var albums []models.Album
	endpoint := "/artists/" + artistID + "/albums?include_groups=album,single"
	err := getAll(ctx, s, endpoint, 50, func(items []SpotifyAlbum) {
		for _, album := range items {
			artist := ""
			if len(album.Artists) > 0 {
				artist = album.Artists[0].Name
			}
			albums = append(albums, models.Album{
				ID:          album.ID,
				Name:        album.Name,
				Artist:      artist,
				ReleaseDate: album.ReleaseDate,
				TotalTracks: album.TotalTracks,
			})
		}
	})
	return albums, err
}

// AlbumTracks returns the tracks of an album.
func (s *SpotifyLibrary) AlbumTracks(ctx context.Context, albumID string) ([]models.Track, error) {
	var tracks []models.Track
	err := getAll(ctx, s, "/albums/"+albumID+"/tracks", 50, func(items []SpotifyTrack) {
		for _, item := range items {
			tracks = append(tracks, trackFromSpotify(item))
		}
	})
	return tracks, err
}

// CreatePlaylist creates a playlist for the user and returns its id.
func (s *SpotifyLibrary) CreatePlaylist(ctx context.Context, name, description string, public bool) (string, error) {
	if err := s.loadUser(ctx); err != nil {
		return "", err
	}

	var created SpotifyPlaylist
	body := map[string]any{"name": name, "description": description, "public": public}
	if err := s.doRequest(ctx, http.MethodPost, "/users/"+s.userID+"/playlists", body, &created); err != nil {
		return "", err
	}
	s.playlistIDs[name] = created.ID
	return created.ID, nil
}

// AddTracks appends track URIs to a playlist in batches of 100.
func (s *SpotifyLibrary) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	for start := 0; start < len(uris); start += 100 {
		end := start + 100
		if end > len(uris) {
			end = len(uris)
		}
		body := map[string]any{"uris": uris[start:end]}
		if err := s.doRequest(ctx, http.MethodPost, "/playlists/"+playlistID+"/tracks", body, nil); err != nil {
			return err
		}
	}
	return nil
}

// RemoveTracks removes track URIs from a playlist in batches of 100.
func (s *SpotifyLibrary) RemoveTracks(ctx context.Context, playlistID string, uris []string) error {
	for start := 0; start < len(uris); start += 100 {
		end := start + 100
		if end > len(uris) {
			end = len(uris)
		}

		tracks := make([]map[string]string, 0, end-start)
		for _, uri := range uris[start:end] {
			tracks = append(tracks, map[string]string{"uri": uri})
		}
		body := map[string]any{"tracks": tracks}
		if err := s.doRequest(ctx, http.MethodDelete, "/playlists/"+playlistID+"/tracks", body, nil); err != nil {
			return err
		}
	}
	return nil
}

// SyncResult summarises the outcome of syncing one playlist.
type SyncResult struct {
	Name    string
	Public  bool
	Created bool
	Added   int
	Removed int
}

// SyncPlaylists pushes the given playlists to the remote library per the
// configured sync kind.
//
// Kind "new" only creates playlists missing remotely. "refresh" clears each
// existing playlist and rebuilds it. "sync" adds missing tracks and removes
// tracks not present in the source. In dry-run mode counts are computed but
// nothing is written.
func (s *SpotifyLibrary) SyncPlaylists(ctx context.Context, playlists []models.PlaylistExport, execute bool) ([]SyncResult, error) {
	kind := s.cfg.Playlists.Sync.Kind
	if kind == "" {
		kind = "new"
	}
	return s.syncPlaylists(ctx, playlists, kind, execute)
}

// RestorePlaylists rebuilds the given playlists remotely from backed up
// state, clearing the existing content of each first.
func (s *SpotifyLibrary) RestorePlaylists(ctx context.Context, playlists []models.PlaylistExport, execute bool) ([]SyncResult, error) {
	return s.syncPlaylists(ctx, playlists, "refresh", execute)
}

func (s *SpotifyLibrary) syncPlaylists(ctx context.Context, playlists []models.PlaylistExport, kind string, execute bool) ([]SyncResult, error) {
	if s.cfg.Playlists.Sync.Reload || len(s.playlistIDs) == 0 {
		if err := s.loadPlaylists(ctx); err != nil {
			return nil, err
		}
	}

	remoteTracks := map[string]map[string]bool{}
	remotePublic := map[string]bool{}
	for _, playlist := range s.playlists {
		uris := map[string]bool{}
		for _, track := range playlist.Tracks {
			uris[track.URI] = true
		}
		remoteTracks[playlist.Playlist.Name] = uris
		remotePublic[playlist.Playlist.Name] = playlist.Playlist.Public
	}

	var results []SyncResult
	for _, playlist := range playlists {
		name := playlist.Playlist.Name
		if !s.cfg.Playlists.Sync.Filter.MatchesName(name) {
			continue
		}

		result := SyncResult{Name: name, Public: remotePublic[name]}
		playlistID, exists := s.playlistIDs[name]

		var sourceURIs []string
		for _, track := range playlist.Tracks {
			if track.URI != "" {
				sourceURIs = append(sourceURIs, track.URI)
			}
		}

		switch {
		case !exists:
			result.Created = true
			result.Added = len(sourceURIs)
			if execute {
				id, err := s.CreatePlaylist(ctx, name, "", false)
				if err != nil {
					return results, err
				}
				if err := s.AddTracks(ctx, id, sourceURIs); err != nil {
					return results, err
				}
			}
		case kind == "new":
			// existing playlists untouched
		case kind == "refresh":
			var existing []string
			for uri := range remoteTracks[name] {
				existing = append(existing, uri)
			}
			result.Removed = len(existing)
			result.Added = len(sourceURIs)
			if execute {
				if err := s.RemoveTracks(ctx, playlistID, existing); err != nil {
					return results, err
				}
				if err := s.AddTracks(ctx, playlistID, sourceURIs); err != nil {
					return results, err
				}
			}
		case kind == "sync":
			sourceSet := map[string]bool{}
			var toAdd []string
			for _, uri := range sourceURIs {
				sourceSet[uri] = true
				if !remoteTracks[name][uri] {
					toAdd = append(toAdd, uri)
				}
			}
			var toRemove []string
			for uri := range remoteTracks[name] {
				if !sourceSet[uri] {
					toRemove = append(toRemove, uri)
				}
			}

			result.Added = len(toAdd)
			result.Removed = len(toRemove)
			if execute {
				if err := s.AddTracks(ctx, playlistID, toAdd); err != nil {
					return results, err
				}
				if err := s.RemoveTracks(ctx, playlistID, toRemove); err != nil {
					return results, err
				}
			}
		}

		results = append(results, result)
	}

	if !execute {
		s.logger.Info("dry run, no playlists were modified", "playlists", len(results))
	}
	return results, nil
}

// ExtendTracks appends tracks from another source which are not already in
// the library, matched by URI. Tracks without a URI are ignored.
func (s *SpotifyLibrary) ExtendTracks(tracks []models.Track) int {
	seen := map[string]bool{}
	for _, track := range s.tracks {
		seen[track.URI] = true
	}

	extended := 0
	for i := range tracks {
		track := tracks[i]
		if track.URI == "" || seen[track.URI] {
			continue
		}
		seen[track.URI] = true
		s.tracks = append(s.tracks, &track)
		extended++
	}
	return extended
}

// Export snapshots the library for backups.
func (s *SpotifyLibrary) Export() models.LibraryExport {
	export := models.LibraryExport{
		Name:      s.name,
		Source:    s.Source(),
		Playlists: s.playlists,
	}
	for _, track := range s.tracks {
		export.Tracks = append(export.Tracks, *track)
	}
	return export
}

// trackFromSpotify converts an API track to the shared track model.
func trackFromSpotify(t SpotifyTrack) models.Track {
	track := models.Track{
		ID:         t.ID,
		Title:      t.Name,
		Album:      t.Album.Name,
		TrackTotal: t.Album.TotalTracks,
		Duration:   t.DurationMS / 1000,
		URI:        t.URI,
		ISRC:       t.ExternalIDs.ISRC,
	}
	if len(t.Artists) > 0 {
		track.Artist = t.Artists[0].Name
	}
	if len(t.Album.Artists) > 0 {
		track.AlbumArtist = t.Album.Artists[0].Name
	}
	if len(t.Album.ReleaseDate) >= 4 {
		fmt.Sscanf(t.Album.ReleaseDate[:4], "%d", &track.Year)
	}
	return track
}
