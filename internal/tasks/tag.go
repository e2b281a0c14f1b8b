package tasks

import (
	"context"
	"fmt"

	"github.com/geo-martino/musify-cli/internal/library"
)

// Tag applies the configured tagging rules to the local library and saves
// the touched tracks.
func (p *Processor) Tag(ctx context.Context, progress chan<- ProgressUpdate) (int, error) {
	_, localCfg, err := p.cfg.TargetLocal()
	if err != nil {
		return 0, err
	}
	if localCfg.Tags.IsEmpty() {
		p.logger.Info("no tagging rules configured")
		return 0, nil
	}

	p.sendProgress(progress, loadUpdate(p.local.Source()))
	if err := p.local.Load(ctx, library.LoadTracks); err != nil {
		return 0, err
	}

	p.sendProgress(progress, ProgressUpdate{Phase: ApplyRules, Message: "Applying tagging rules..."})
	touched, err := localCfg.Tags.SetTags(p.local.Tracks(), p.local.Folders())
	if err != nil {
		return touched, fmt.Errorf("failed to apply tagging rules: %w", err)
	}

	p.sendProgress(progress, saveUpdate(touched))
	if _, err := p.local.SaveTracks(p.local.Tracks()); err != nil {
		return touched, err
	}
	return touched, nil
}
