package tasks

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/geo-martino/musify-cli/internal/library"
	"github.com/geo-martino/musify-cli/internal/models"
	"github.com/geo-martino/musify-cli/internal/shared"
)

// Download opens search pages for the tracks of the user's remote playlists
// so the user can source downloads, batching by the configured interval and
// pausing for input between batches. The top-level filter selects which
// playlists are covered.
//
// Each configured URL is a template whose {field} placeholders fill from the
// track's tags.
func (p *Processor) Download(ctx context.Context, progress chan<- ProgressUpdate) (int, error) {
	_, remoteCfg, err := p.cfg.TargetRemote()
	if err != nil {
		return 0, err
	}
	cfg := remoteCfg.Download
	if len(cfg.URLs) == 0 {
		return 0, nil
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = 1
	}

	if !p.remote.Authenticated() {
		if err := p.remote.Authenticate(ctx); err != nil {
			return 0, err
		}
	}
	p.sendProgress(progress, loadUpdate(p.remote.Source()))
	if err := p.remote.Load(ctx, library.LoadPlaylists); err != nil {
		return 0, err
	}

	opened := 0
	batch := 0
	for _, playlist := range p.remote.Playlists() {
		if !p.cfg.Filter.MatchesName(playlist.Playlist.Name) {
			continue
		}

		for i := range playlist.Tracks {
			track := &playlist.Tracks[i]
			if ctx.Err() != nil {
				return opened, ctx.Err()
			}

			p.sendProgress(progress, ProgressUpdate{
				Phase:   OpenDownloads,
				Step:    opened + 1,
				Message: fmt.Sprintf("Opening downloads (%s - %s)...", track.Artist, track.Title),
			})

			for _, template := range cfg.URLs {
				if err := p.openURL(fillURL(template, track, cfg.Fields.Names())); err != nil {
					return opened, fmt.Errorf("failed to open url: %w", err)
				}
			}
			opened++
			batch++

			if batch >= interval {
				batch = 0
				if err := p.downloadPause(); err != nil {
					return opened, err
				}
			}
		}
	}
	return opened, nil
}

func (p *Processor) downloadPause() error {
	_, err := shared.GetUserInput(p.input, p.output, "Press enter for the next batch")
	if err == io.EOF {
		return nil
	}
	return err
}

// fillURL substitutes {field} placeholders in a URL template with the
// track's escaped tag values.
func fillURL(template string, track *models.Track, fields []string) string {
	result := template
	for _, field := range fields {
		placeholder := "{" + field + "}"
		if !strings.Contains(result, placeholder) {
			continue
		}
		value := ""
		if v := track.Tag(field); v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, placeholder, url.QueryEscape(value))
	}
	return result
}
