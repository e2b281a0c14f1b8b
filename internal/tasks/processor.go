// package tasks implements the library management operations the CLI exposes.
//
// The core abstraction is Processor, which owns the configured local and
// remote libraries and runs each operation against them. Operations emit
// progress updates via channels for non-blocking status reporting to the CLI
// layer.
package tasks

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/geo-martino/musify-cli/internal/config"
	"github.com/geo-martino/musify-cli/internal/library"
	"github.com/geo-martino/musify-cli/internal/models"
	"github.com/geo-martino/musify-cli/internal/shared"
)

// Processor runs library operations against the configured libraries.
type Processor struct {
	cfg    *config.Config
	local  *library.LocalLibrary
	remote *library.SpotifyLibrary
	logger *log.Logger

	// input and output drive interactive prompts (pause, download batches).
	input  io.Reader
	output io.Writer

	// openURL opens a URL in the user's browser. Replaceable in tests.
	openURL func(url string) error
}

// NewProcessor creates a processor over the given libraries.
func NewProcessor(cfg *config.Config, local *library.LocalLibrary, remote *library.SpotifyLibrary, logger *log.Logger) *Processor {
	return &Processor{
		cfg:    cfg,
		local:  local,
		remote: remote,
		logger: shared.WithLogger(logger, "component", "processor"),
		input:  os.Stdin,
		output: os.Stdout,
		openURL: func(url string) error {
			fmt.Fprintln(os.Stdout, url)
			return nil
		},
	}
}

// SetIO overrides the reader and writer used for interactive prompts.
func (p *Processor) SetIO(r io.Reader, w io.Writer) {
	p.input = r
	p.output = w
}

// Local returns the processor's local library.
func (p *Processor) Local() *library.LocalLibrary { return p.local }

// Remote returns the processor's remote library.
func (p *Processor) Remote() *library.SpotifyLibrary { return p.remote }

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (p *Processor) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Pre runs the configured pre-operation hooks: reloading library parts and
// pausing for user confirmation.
func (p *Processor) Pre(ctx context.Context, progress chan<- ProgressUpdate) error {
	if err := p.reload(ctx, progress); err != nil {
		return err
	}
	return p.pause()
}

// Post runs the configured post-operation hooks.
func (p *Processor) Post(ctx context.Context) error {
	return p.pause()
}

func (p *Processor) reload(ctx context.Context, progress chan<- ProgressUpdate) error {
	if types := p.cfg.Reload.Local.Types; len(types) > 0 {
		p.sendProgress(progress, loadUpdate(p.local.Source()))
		if err := p.local.Load(ctx, types...); err != nil {
			return fmt.Errorf("failed to reload local library: %w", err)
		}
	}

	remote := p.cfg.Reload.Remote
	if len(remote.Types) == 0 {
		return nil
	}

	p.sendProgress(progress, loadUpdate(p.remote.Source()))
	if err := p.remote.Load(ctx, remote.Types...); err != nil {
		return fmt.Errorf("failed to reload remote library: %w", err)
	}
	if remote.Enrich.Enabled {
		if err := p.remote.Enrich(ctx, remote.Enrich.Types...); err != nil {
			return fmt.Errorf("failed to enrich remote library: %w", err)
		}
	}
	if remote.Extend {
		extended := p.remote.ExtendTracks(exportTracks(p.local.Tracks()))
		p.logger.Debug("extended remote library with local tracks", "count", extended)
	}
	return nil
}

// pause prompts with the configured message and waits for input.
func (p *Processor) pause() error {
	if p.cfg.Pause == "" {
		return nil
	}
	_, err := shared.GetUserInput(p.input, p.output, p.cfg.Pause+" (press enter to continue)")
	if err == io.EOF {
		return nil
	}
	return err
}

// loadBoth ensures both libraries are loaded.
func (p *Processor) loadBoth(ctx context.Context, progress chan<- ProgressUpdate) error {
	p.sendProgress(progress, loadUpdate(p.local.Source()))
	if err := p.local.Load(ctx); err != nil {
		return err
	}
	p.sendProgress(progress, loadUpdate(p.remote.Source()))
	if err := p.remote.Load(ctx); err != nil {
		return err
	}
	return nil
}

func exportTracks(tracks []*models.Track) []models.Track {
	out := make([]models.Track, 0, len(tracks))
	for _, track := range tracks {
		out = append(out, *track)
	}
	return out
}
