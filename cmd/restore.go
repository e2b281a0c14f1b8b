package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/geo-martino/musify-cli/internal/shared"
	"github.com/geo-martino/musify-cli/internal/tasks"
	"github.com/geo-martino/musify-cli/internal/ui"
	"github.com/urfave/cli/v3"
)

// Restore merges a previous backup back into the libraries.
//
// The run directory and key come from flags when given, from the interactive
// picker otherwise. The --plain flag swaps the picker for numbered prompts,
// for terminals the picker cannot drive.
func (r *Runner) Restore(ctx context.Context, cmd *cli.Command) error {
	p, err := r.setup(cmd)
	if err != nil {
		return err
	}
	defer r.teardown()

	dir := cmd.String("dir")
	key := cmd.String("key")
	if dir == "" || key == "" {
		dir, key, err = r.pickBackup(p, dir, key, cmd.Bool("plain"))
		if err != nil {
			return err
		}
		if dir == "" {
			return r.writePlain("Restore cancelled\n")
		}
	}

	progressCh, stop := r.watchProgress()
	defer stop()

	result, err := p.Restore(ctx, progressCh, dir, key, cmd.StringSlice("tags"))
	if err != nil {
		return err
	}

	r.writePlain("Restored %d local tracks\n", result.LocalTracks)
	r.writePlain("Resynced %d remote playlists\n", result.RemotePlaylists)
	return nil
}

// pickBackup resolves the backup run directory and key to restore from.
func (r *Runner) pickBackup(p *tasks.Processor, dir, key string, plain bool) (string, string, error) {
	groups, err := p.AvailableBackups()
	if err != nil {
		return "", "", err
	}
	if len(groups) == 0 {
		return "", "", fmt.Errorf("%w: no backups available", shared.ErrBackupNotFound)
	}

	if dir != "" {
		for _, group := range groups {
			if group.Dir != dir && filepath.Base(group.Dir) != dir {
				continue
			}
			if key == "" && len(group.Keys) == 1 {
				key = group.Keys[0]
			}
			if key == "" {
				return "", "", fmt.Errorf("%w: backup %s has multiple keys, pass --key", shared.ErrMissingArgument, dir)
			}
			return group.Dir, key, nil
		}
		return "", "", fmt.Errorf("%w: no backup run %s", shared.ErrBackupNotFound, dir)
	}

	if plain {
		return r.promptBackup(groups)
	}

	selection, confirmed, err := ui.PickBackup(groups)
	if err != nil || !confirmed {
		return "", "", err
	}
	return selection.Dir, selection.Key, nil
}

// promptBackup selects a backup run and key through numbered prompts.
func (r *Runner) promptBackup(groups []tasks.BackupGroup) (string, string, error) {
	r.writePlain("Available backups:\n")
	for i, group := range groups {
		r.writePlain("  %d. %s (%s)\n", i+1, filepath.Base(group.Dir), strings.Join(group.Keys, ", "))
	}

	group, err := promptIndex(r, "Select a backup run", len(groups))
	if err != nil {
		return "", "", err
	}
	selected := groups[group]

	if len(selected.Keys) == 1 {
		return selected.Dir, selected.Keys[0], nil
	}

	r.writePlain("Keys in %s:\n", filepath.Base(selected.Dir))
	for i, key := range selected.Keys {
		r.writePlain("  %d. %s\n", i+1, key)
	}
	key, err := promptIndex(r, "Select a key", len(selected.Keys))
	if err != nil {
		return "", "", err
	}
	return selected.Dir, selected.Keys[key], nil
}

// promptIndex reads a 1-based selection from the input and returns it 0-based.
func promptIndex(r *Runner, prompt string, count int) (int, error) {
	raw, err := shared.GetUserInput(r.input, r.output, prompt)
	if err != nil {
		return 0, err
	}
	index, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || index < 1 || index > count {
		return 0, fmt.Errorf("%w: expected a number between 1 and %d", shared.ErrInvalidInput, count)
	}
	return index - 1, nil
}
