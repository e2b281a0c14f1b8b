package main

import (
	"context"
	"fmt"

	"github.com/geo-martino/musify-cli/internal/shared"
	"github.com/urfave/cli/v3"
)

// Backup snapshots both libraries to the per-run backup directory.
func (r *Runner) Backup(ctx context.Context, cmd *cli.Command) error {
	p, err := r.setup(cmd)
	if err != nil {
		return err
	}
	defer r.teardown()

	progressCh, stop := r.watchProgress()
	defer stop()

	if err := p.Pre(ctx, progressCh); err != nil {
		return err
	}
	result, err := p.Backup(ctx, progressCh, cmd.String("key"))
	if err != nil {
		return err
	}
	if err := p.Post(ctx); err != nil {
		return err
	}

	r.writePlain("Wrote %d backup files to %s\n", len(result.Files), result.Dir)
	for _, file := range result.Files {
		r.writePlain("  %s\n", file)
	}
	return nil
}

// Sync pushes local playlists to the remote library.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	p, err := r.setup(cmd)
	if err != nil {
		return err
	}
	defer r.teardown()
	return r.runOperation(ctx, p, "sync")
}

// Search matches unmatched local tracks against the remote library.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	p, err := r.setup(cmd)
	if err != nil {
		return err
	}
	defer r.teardown()
	return r.runOperation(ctx, p, "search")
}

// PullTags merges remote track metadata into matching local tracks.
func (r *Runner) PullTags(ctx context.Context, cmd *cli.Command) error {
	p, err := r.setup(cmd)
	if err != nil {
		return err
	}
	defer r.teardown()
	return r.runOperation(ctx, p, "pull_tags")
}

// Tag applies the configured tagging rules to local tracks.
func (r *Runner) Tag(ctx context.Context, cmd *cli.Command) error {
	p, err := r.setup(cmd)
	if err != nil {
		return err
	}
	defer r.teardown()
	return r.runOperation(ctx, p, "tag")
}

// Compilations normalises album tags across compilation folders.
func (r *Runner) Compilations(ctx context.Context, cmd *cli.Command) error {
	p, err := r.setup(cmd)
	if err != nil {
		return err
	}
	defer r.teardown()
	return r.runOperation(ctx, p, "compilations")
}

// NewMusic builds a playlist of recent releases from followed artists.
func (r *Runner) NewMusic(ctx context.Context, cmd *cli.Command) error {
	p, err := r.setup(cmd)
	if err != nil {
		return err
	}
	defer r.teardown()
	return r.runOperation(ctx, p, "new_music")
}

// Download opens download search pages for tracks in batches.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	p, err := r.setup(cmd)
	if err != nil {
		return err
	}
	defer r.teardown()
	return r.runOperation(ctx, p, "download")
}

// Run executes the named functions in order, each against a processor built
// from its resolved config overlay.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	names := cmd.StringArgs("functions")
	if len(names) == 0 {
		return fmt.Errorf("%w: no functions given", shared.ErrMissingArgument)
	}

	if _, err := r.setup(cmd); err != nil {
		return err
	}
	defer r.teardown()

	for _, name := range names {
		cfg, ok := r.functions[name]
		if !ok {
			return fmt.Errorf("%w: function %q is not configured", shared.ErrInvalidArgument, name)
		}

		r.writePlainHeader(name)
		p, err := r.build(cmd, cfg)
		if err != nil {
			return err
		}
		if err := r.runOperation(ctx, p, name); err != nil {
			return fmt.Errorf("function %s failed: %w", name, err)
		}
	}
	return nil
}
