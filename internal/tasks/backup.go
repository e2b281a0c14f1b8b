package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/geo-martino/musify-cli/internal/models"
	"github.com/geo-martino/musify-cli/internal/shared"
	"github.com/google/renameio/v2"
)

// BackupResult describes the backup files written by one run.
type BackupResult struct {
	Dir   string
	Key   string
	Files []string
}

// Backup loads both libraries and writes a JSON snapshot of each to the
// per-run backup directory. An empty key falls back to the configured one,
// then to "backup". Keys are stored uppercased.
func (p *Processor) Backup(ctx context.Context, progress chan<- ProgressUpdate, key string) (*BackupResult, error) {
	if key == "" {
		key = p.cfg.Backup.Key
	}
	if key == "" {
		key = "backup"
	}
	key = strings.ToUpper(key)

	if err := p.loadBoth(ctx, progress); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(p.cfg.Paths.Backup, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	result := &BackupResult{Dir: p.cfg.Paths.Backup, Key: key}
	exports := []models.LibraryExport{p.local.Export(), p.remote.Export()}

	for i, export := range exports {
		p.sendProgress(progress, backupUpdate(i+1, len(exports), export.Name))

		name := fmt.Sprintf("[%s] - %s - %s.json", key, export.Source, export.Name)
		path := filepath.Join(result.Dir, name)

		data, err := json.MarshalIndent(export, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode backup for %s: %w", export.Name, err)
		}
		if err := renameio.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write backup for %s: %w", export.Name, err)
		}
		result.Files = append(result.Files, path)
	}

	p.logger.Info("wrote backups", "dir", result.Dir, "key", key, "files", len(result.Files))
	return result, nil
}

// BackupGroup is one run's backup directory and the keys found inside it.
type BackupGroup struct {
	Dir  string
	Keys []string
}

// AvailableBackups enumerates previous backup run directories, newest first.
func (p *Processor) AvailableBackups() ([]BackupGroup, error) {
	root := p.cfg.Paths.BackupRoot()
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var groups []BackupGroup
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())

		keys := map[string]bool{}
		files, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, file := range files {
			if key := backupKeyOf(file.Name()); key != "" {
				keys[key] = true
			}
		}
		if len(keys) == 0 {
			continue
		}

		group := BackupGroup{Dir: dir}
		for key := range keys {
			group.Keys = append(group.Keys, key)
		}
		sort.Strings(group.Keys)
		groups = append(groups, group)
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Dir > groups[j].Dir })
	return groups, nil
}

// backupKeyOf extracts the key from a backup file name like
// "[KEY] - Source - name.json".
func backupKeyOf(name string) string {
	if !strings.HasPrefix(name, "[") || !strings.HasSuffix(name, ".json") {
		return ""
	}
	end := strings.Index(name, "]")
	if end <= 1 {
		return ""
	}
	return name[1:end]
}

// RestoreResult summarises what a restore run changed.
type RestoreResult struct {
	LocalTracks     int
	RemotePlaylists int
}

// Restore merges backed up data from the given run directory back into the
// libraries.
//
// Local track tags restore for the given fields (all known tags when empty);
// remote playlists resync from the backed up state with kind refresh. Saves
// honour dry-run.
func (p *Processor) Restore(ctx context.Context, progress chan<- ProgressUpdate, dir, key string, tags []string) (*RestoreResult, error) {
	key = strings.ToUpper(key)
	if len(tags) == 0 {
		tags = models.WritableTagNames
	}

	p.sendProgress(progress, loadUpdate(p.local.Source()))
	if err := p.local.Load(ctx); err != nil {
		return nil, err
	}

	result := &RestoreResult{}
	for _, source := range []string{p.local.Source(), p.remote.Source()} {
		export, err := readBackup(dir, key, source)
		if err != nil {
			if errors.Is(err, shared.ErrBackupNotFound) {
				p.logger.Warn("no backup file for source", "dir", dir, "key", key, "source", source)
				continue
			}
			return nil, err
		}

		p.sendProgress(progress, ProgressUpdate{
			Phase:   RestoreBackup,
			Message: fmt.Sprintf("Restoring %s library...", source),
		})

		switch source {
		case p.local.Source():
			restored, err := p.local.RestoreTracks(*export, tags)
			if err != nil {
				return nil, err
			}
			if _, err := p.local.SaveTracks(p.local.Tracks()); err != nil {
				return nil, err
			}
			result.LocalTracks = restored
		case p.remote.Source():
			if !p.remote.Authenticated() {
				if err := p.remote.Authenticate(ctx); err != nil {
					return nil, err
				}
			}
			synced, err := p.remote.RestorePlaylists(ctx, export.Playlists, p.cfg.Execute)
			if err != nil {
				return nil, err
			}
			result.RemotePlaylists = len(synced)
		}
	}
	return result, nil
}

// readBackup finds and decodes the backup file for a key and source in dir.
func readBackup(dir, key, source string) (*models.LibraryExport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	prefix := fmt.Sprintf("[%s] - %s - ", key, source)
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		var export models.LibraryExport
		if err := json.Unmarshal(data, &export); err != nil {
			return nil, fmt.Errorf("failed to decode backup %s: %w", entry.Name(), err)
		}
		return &export, nil
	}
	return nil, fmt.Errorf("%w: no file for key %s and source %s in %s", shared.ErrBackupNotFound, key, source, dir)
}
