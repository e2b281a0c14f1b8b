package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/geo-martino/musify-cli/internal/library"
	"github.com/geo-martino/musify-cli/internal/models"
	"github.com/geo-martino/musify-cli/internal/shared"
)

// SearchResult summarises a search and match run.
type SearchResult struct {
	Matched   int
	Unmatched int
	Saved     int
}

// Search finds remote matches for local tracks without a URI, writes the
// matched URIs onto the tracks and saves the library. Tracks the remote
// cannot match are counted and left unchanged. Saves honour dry-run.
func (p *Processor) Search(ctx context.Context, progress chan<- ProgressUpdate) (*SearchResult, error) {
	p.sendProgress(progress, loadUpdate(p.local.Source()))
	if err := p.local.Load(ctx, library.LoadTracks); err != nil {
		return nil, err
	}

	var unmatched []*models.Track
	for _, track := range p.local.Tracks() {
		if track.URI == "" {
			unmatched = append(unmatched, track)
		}
	}

	result := &SearchResult{}
	if len(unmatched) == 0 {
		p.logger.Info("all tracks already matched, skipping search")
		return result, nil
	}

	if !p.remote.Authenticated() {
		if err := p.remote.Authenticate(ctx); err != nil {
			return nil, err
		}
	}

	for i, track := range unmatched {
		p.sendProgress(progress, ProgressUpdate{
			Phase:   MatchTracks,
			Step:    i + 1,
			Total:   len(unmatched),
			Message: fmt.Sprintf("Matching (%s - %s)...", track.Artist, track.Title),
		})

		uri, err := p.remote.Search(ctx, track)
		if err != nil {
			if errors.Is(err, shared.ErrTrackNotFound) {
				result.Unmatched++
				continue
			}
			return nil, err
		}
		if err := track.SetTag(models.TagURI, uri); err != nil {
			return nil, err
		}
		result.Matched++
	}

	p.sendProgress(progress, saveUpdate(result.Matched))
	saved, err := p.local.SaveTracks(p.local.Tracks())
	if err != nil {
		return result, err
	}
	result.Saved = saved

	p.logger.Info("matched tracks against the remote library",
		"matched", result.Matched, "unmatched", result.Unmatched, "saved", saved)
	return result, nil
}
