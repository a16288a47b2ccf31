// Package backup snapshots the store file and prunes old copies.
//
// Backups are best-effort. Every failure is logged and swallowed so a
// full disk or missing directory can never keep the service from
// starting.
package backup

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// DefaultKeep is the number of snapshots retained when no retention
// count is configured.
const DefaultKeep = 5

// stampFormat matches the timestamp used in snapshot filenames:
// <store-file>.<stamp>
const stampFormat = "20060102-150405"

// Sidecar copies the store file into a backups directory at startup and
// keeps only the most recent snapshots.
type Sidecar struct {
	storePath string
	dir       string
	keep      int
	logger    *log.Logger

	now func() time.Time // test seam for snapshot stamps
}

// New creates a backup sidecar for the given store file.
// keep <= 0 falls back to DefaultKeep.
func New(storePath, dir string, keep int, logger *log.Logger) *Sidecar {
	if keep <= 0 {
		keep = DefaultKeep
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Sidecar{
		storePath: storePath,
		dir:       dir,
		keep:      keep,
		logger:    logger,
		now:       time.Now,
	}
}

// Run takes one snapshot and prunes old ones. Errors are logged, never
// returned: backup must not gate startup.
func (b *Sidecar) Run() {
	if err := b.snapshot(); err != nil {
		b.logger.Printf("Backup skipped: %v", err)
		return
	}
	if err := b.prune(); err != nil {
		b.logger.Printf("Backup prune failed: %v", err)
	}
}

// snapshot copies the store file to dir/<base>.<stamp> when the file
// exists and is non-empty.
func (b *Sidecar) snapshot() error {
	info, err := os.Stat(b.storePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("store file %s does not exist", b.storePath)
	}
	if err != nil {
		return fmt.Errorf("failed to stat store file: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("store file %s is empty", b.storePath)
	}

	if err := os.MkdirAll(b.dir, 0755); err != nil {
		return fmt.Errorf("failed to create backups directory: %w", err)
	}

	name := filepath.Base(b.storePath) + "." + b.now().Format(stampFormat)
	dst := filepath.Join(b.dir, name)

	if err := copyFile(b.storePath, dst); err != nil {
		return fmt.Errorf("failed to copy store file: %w", err)
	}

	b.logger.Printf("Backup written: %s", dst)
	return nil
}

// prune deletes all but the keep most recent snapshots by modification
// time.
func (b *Sidecar) prune() error {
	snaps, err := b.Snapshots()
	if err != nil {
		return err
	}
	if len(snaps) <= b.keep {
		return nil
	}

	for _, path := range snaps[b.keep:] {
		if err := os.Remove(path); err != nil {
			b.logger.Printf("Failed to remove old backup %s: %v", path, err)
			continue
		}
		b.logger.Printf("Pruned old backup: %s", path)
	}
	return nil
}

// Snapshots returns existing snapshot paths for this store file, newest
// first by modification time.
func (b *Sidecar) Snapshots() ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backups directory: %w", err)
	}

	base := filepath.Base(b.storePath) + "."
	type snap struct {
		path string
		mod  time.Time
	}
	var snaps []snap

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if len(e.Name()) <= len(base) || e.Name()[:len(base)] != base {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		snaps = append(snaps, snap{filepath.Join(b.dir, e.Name()), info.ModTime()})
	}

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].mod.After(snaps[j].mod) })

	paths := make([]string, len(snaps))
	for i, s := range snaps {
		paths[i] = s.path
	}
	return paths, nil
}

// copyFile writes src to dst atomically via a temp file.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
