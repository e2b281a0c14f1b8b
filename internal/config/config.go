// package config loads and resolves the musify configuration file.
//
// A single YAML (or JSON) file configures every part of the application.
// Mappings may include further files, override/enrich each other through
// deep merges, and define per-function overlays which resolve to a full
// config each.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config is the root of the application configuration.
type Config struct {
	Execute bool    `yaml:"execute"`
	Logging Logging `yaml:"logging"`
	Paths   Paths   `yaml:"paths"`

	Filter Filter `yaml:"filter"`
	Reload Reload `yaml:"reload"`
	Pause  string `yaml:"pause"`

	Libraries Libraries `yaml:"libraries"`
	Backup    Backup    `yaml:"backup"`
	Reports   Reports   `yaml:"reports"`

	// Functions holds per-function config overlays keyed by function name,
	// resolved against the base config by [FromFile].
	Functions map[string]map[string]any `yaml:"functions"`
}

// Reload configures which library parts reload before an operation runs.
type Reload struct {
	Local  ReloadLocal  `yaml:"local"`
	Remote ReloadRemote `yaml:"remote"`
}

// ReloadLocal configures the local library parts to reload.
type ReloadLocal struct {
	Types StringList `yaml:"types"`
}

// ReloadRemote configures the remote library parts to reload.
type ReloadRemote struct {
	Types  StringList `yaml:"types"`
	Extend bool       `yaml:"extend"`
	Enrich Enrich     `yaml:"enrich"`
}

// Enrich configures remote item enrichment during reloads.
type Enrich struct {
	Enabled bool       `yaml:"enabled"`
	Types   StringList `yaml:"types"`
}

// Libraries names the configured libraries and selects the active pair.
type Libraries struct {
	Target Target                   `yaml:"target"`
	Local  map[string]LocalConfig   `yaml:"local"`
	Remote map[string]SpotifyConfig `yaml:"remote"`
}

// Target selects the active local and remote library by name.
type Target struct {
	Local  string `yaml:"local"`
	Remote string `yaml:"remote"`
}

// LocalConfig configures a local music library.
type LocalConfig struct {
	Paths    LocalPaths `yaml:"paths"`
	Playlist Filter     `yaml:"playlists"`
	Updater  Updater    `yaml:"updater"`
	Tags     Rules      `yaml:"tags"`
}

// LocalPaths locates a local library's tracks and playlists on disk.
//
// Map translates path prefixes, for libraries shared across machines
// whose mount points differ.
type LocalPaths struct {
	Library   StringList        `yaml:"library"`
	Playlists string            `yaml:"playlist_folder"`
	Map       map[string]string `yaml:"map"`
}

// Updater configures how tag updates are written back to the library.
type Updater struct {
	Tags    TagList `yaml:"tags"`
	Replace bool    `yaml:"replace"`
}

// SpotifyConfig configures a remote Spotify library.
type SpotifyConfig struct {
	API       APIConfig     `yaml:"api"`
	Playlists PlaylistsSync `yaml:"playlists"`
	Search    Search        `yaml:"search"`
	Download  Download      `yaml:"download"`
	NewMusic  NewMusic      `yaml:"new_music"`
}

// APIConfig holds remote API credentials and client behaviour.
type APIConfig struct {
	ClientID     string      `yaml:"client_id"`
	ClientSecret string      `yaml:"client_secret"`
	Scope        StringList  `yaml:"scope"`
	TokenPath    string      `yaml:"token_file_path"`
	Cache        CacheConfig `yaml:"cache"`
	Handler      Handler     `yaml:"handler"`
}

// CacheConfig configures the remote response cache backend.
type CacheConfig struct {
	Type        string   `yaml:"type"`
	DB          string   `yaml:"db"`
	ExpireAfter Duration `yaml:"expire_after"`
}

// Handler configures request retry and backoff behaviour.
type Handler struct {
	Retry RetryConfig `yaml:"retry"`
	Wait  WaitConfig  `yaml:"wait"`
}

// RetryConfig bounds retries with an exponential backoff.
type RetryConfig struct {
	Initial Duration `yaml:"initial"`
	Count   int      `yaml:"count"`
	Factor  float64  `yaml:"factor"`
}

// WaitConfig paces requests to stay below the remote rate limit.
type WaitConfig struct {
	Initial Duration `yaml:"initial"`
	Final   Duration `yaml:"final"`
	Step    Duration `yaml:"step"`
}

// PlaylistsSync configures which remote playlists load and how they sync.
type PlaylistsSync struct {
	Filter Filter     `yaml:"filter"`
	Sync   SyncConfig `yaml:"sync"`
}

// SyncConfig selects the playlist sync behaviour.
//
// Kind is one of "new" (only create missing playlists), "refresh" (clear and
// rebuild) or "sync" (add missing, remove unmatched).
type SyncConfig struct {
	Kind   string `yaml:"kind"`
	Reload bool   `yaml:"reload"`
	Filter Filter `yaml:"filter"`
}

// Search configures the remote track search operation.
type Search struct {
	UseCache bool `yaml:"use_cache"`
}

// Download configures the download helper operation.
type Download struct {
	URLs     StringList `yaml:"urls"`
	Fields   TagList    `yaml:"fields"`
	Interval int        `yaml:"interval"`
}

// NewMusic configures the new music playlist operation.
type NewMusic struct {
	Name  string `yaml:"name"`
	Start Date   `yaml:"start"`
	End   Date   `yaml:"end"`
}

// Backup configures the backup operation.
type Backup struct {
	Key string `yaml:"key"`
}

// Reports configures the report operation.
type Reports struct {
	PlaylistDifferences ReportConfig `yaml:"playlist_differences"`
	MissingTags         MissingTags  `yaml:"missing_tags"`
}

// ReportConfig enables a report and filters the playlists it covers.
type ReportConfig struct {
	Enabled bool   `yaml:"enabled"`
	Filter  Filter `yaml:"filter"`
}

// MissingTags reports tracks missing values for the configured tags.
type MissingTags struct {
	ReportConfig `yaml:",inline"`
	Tags         TagList `yaml:"tags"`
	MatchAll     bool    `yaml:"match_all"`
}

// DefaultConfig returns a config with application defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Logging: Logging{Level: "info", Bars: true},
		Paths: Paths{
			Backup: "backup",
			Cache:  "cache",
			Token:  "token.json",
			Local:  "library",
		},
	}
}

// FromFile loads, resolves and decodes the config file at the given path.
//
// Returns the base config plus one resolved config per entry under
// `functions`. A function's config starts from the base with its `filter`,
// `backup` and `pause` keys dropped, merges the overlay's library target
// over the base's, then deep merges the overlay over it with override
// semantics.
func FromFile(path string) (*Config, map[string]*Config, error) {
	raw, err := LoadFile(path)
	if err != nil {
		return nil, nil, err
	}

	base := DefaultConfig()
	if err := decodeInto(raw, base); err != nil {
		return nil, nil, err
	}
	if err := base.Validate(); err != nil {
		return nil, nil, err
	}

	functions := make(map[string]*Config, len(base.Functions))
	for name, overlay := range base.Functions {
		resolved, err := resolveFunction(raw, overlay)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve config for function %s: %w", name, err)
		}
		if err := resolved.Validate(); err != nil {
			return nil, nil, fmt.Errorf("invalid config for function %s: %w", name, err)
		}
		functions[name] = resolved
	}

	return base, functions, nil
}

func resolveFunction(base map[string]any, overlay map[string]any) (*Config, error) {
	merged := CloneMap(base)
	dropKey(merged, "functions")
	dropKey(merged, "filter")
	dropKey(merged, "backup")
	dropKey(merged, "pause")

	if target, ok := lookupMap(overlay, "libraries", "target"); ok {
		libraries, _ := asMap(merged["libraries"])
		if libraries == nil {
			libraries = map[string]any{}
			merged["libraries"] = libraries
		}
		// Union with the base target so an overlay naming only one half
		// keeps the other half of the active pair.
		existing, _ := asMap(libraries["target"])
		libraries["target"] = Merge(existing, target, true)
	}

	Merge(merged, overlay, true)
	dropKey(merged, "functions")

	config := DefaultConfig()
	if err := decodeInto(merged, config); err != nil {
		return nil, err
	}
	return config, nil
}

func lookupMap(m map[string]any, keys ...string) (map[string]any, bool) {
	for _, key := range keys {
		next, ok := asMap(m[key])
		if !ok {
			return nil, false
		}
		m = next
	}
	return m, true
}

// decodeInto decodes a raw config mapping over the given config.
//
// Round-tripping through the YAML codec keeps unknown keys tolerated and
// leaves defaults in place for keys the mapping does not set.
func decodeInto(raw map[string]any, config *Config) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

// Validate checks the config for inconsistencies a run would trip over.
func (c *Config) Validate() error {
	if target := c.Libraries.Target.Local; target != "" {
		if _, ok := c.Libraries.Local[target]; !ok {
			return parserError("Target local library is not configured", "libraries.target.local", target)
		}
	}
	if target := c.Libraries.Target.Remote; target != "" {
		if _, ok := c.Libraries.Remote[target]; !ok {
			return parserError("Target remote library is not configured", "libraries.target.remote", target)
		}
	}

	for name, remote := range c.Libraries.Remote {
		switch kind := remote.Playlists.Sync.Kind; kind {
		case "", "new", "refresh", "sync":
		default:
			return parserError("Unrecognised sync kind", fmt.Sprintf("libraries.remote.%s.playlists.sync.kind", name), kind)
		}
	}
	return nil
}

// TargetLocal returns the active local library config.
func (c *Config) TargetLocal() (string, LocalConfig, error) {
	name := c.Libraries.Target.Local
	library, ok := c.Libraries.Local[name]
	if !ok {
		return "", LocalConfig{}, parserError("No local library configured", "libraries.target.local", name)
	}
	return name, library, nil
}

// TargetRemote returns the active remote library config.
func (c *Config) TargetRemote() (string, SpotifyConfig, error) {
	name := c.Libraries.Target.Remote
	library, ok := c.Libraries.Remote[name]
	if !ok {
		return "", SpotifyConfig{}, parserError("No remote library configured", "libraries.target.remote", name)
	}
	return name, library, nil
}
