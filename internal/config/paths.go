package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Paths locates the application's working directories and files.
//
// Relative paths resolve against Base. The backup path gains a
// per-execution timestamp directory so repeated runs never collide.
type Paths struct {
	Base   string `yaml:"base"`
	Backup string `yaml:"backup"`
	Cache  string `yaml:"cache"`
	Token  string `yaml:"token"`
	Local  string `yaml:"local_library_exports"`

	dt time.Time
}

// dtFormat stamps per-run directories, sortable and filesystem safe.
const dtFormat = "2006-01-02_15.04.05"

// Resolve pins the execution timestamp and makes every path absolute.
func (p *Paths) Resolve(dt time.Time) {
	p.dt = dt
	if p.Base == "" {
		p.Base = "."
	}

	p.Backup = filepath.Join(p.resolve(p.Backup), dt.Format(dtFormat))
	p.Cache = p.resolve(p.Cache)
	p.Token = p.resolve(p.Token)
	p.Local = p.resolve(p.Local)
}

func (p *Paths) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Base, path)
}

// Create makes the directories the application writes to.
func (p *Paths) Create() error {
	for _, dir := range []string{p.Backup, p.Cache, filepath.Dir(p.Token), p.Local} {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// RemoveEmpty deletes per-run directories a run created but never wrote to.
func (p *Paths) RemoveEmpty() {
	for _, dir := range []string{p.Backup} {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue
		}
		_ = os.Remove(dir)
	}
}

// BackupRoot returns the parent of the per-run backup directories.
func (p *Paths) BackupRoot() string {
	return filepath.Dir(p.Backup)
}

// Timestamp returns the pinned execution timestamp.
func (p *Paths) Timestamp() time.Time {
	return p.dt
}
