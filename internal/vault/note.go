package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrExists is returned when a rename target is already taken.
var ErrExists = errors.New("note already exists")

// TargetPath returns the path a note would have after being renamed to name,
// keeping its directory and extension.
func TargetPath(rel, name string) string {
	ext := filepath.Ext(rel)
	if ext == "" {
		ext = ".md"
	}
	dir := filepath.Dir(rel)
	if dir == "." {
		return name + ext
	}
	return filepath.Join(dir, name+ext)
}

// IsCaseOnlyChange reports whether two paths differ only by letter case.
func IsCaseOnlyChange(oldRel, newRel string) bool {
	return oldRel != newRel && strings.EqualFold(oldRel, newRel)
}

// SameFile reports whether both paths exist and name the same file, as
// happens with a case-only change on a case-insensitive filesystem.
func (v *Vault) SameFile(aRel, bRel string) bool {
	a, err := v.fs.Stat(v.Abs(aRel))
	if err != nil {
		return false
	}
	b, err := v.fs.Stat(v.Abs(bRel))
	if err != nil {
		return false
	}
	return os.SameFile(a, b)
}

// RenameNote renames a note file within the vault.
// It never overwrites another file. A case-only rename of the same note is
// routed through a temporary name so it also works on case-insensitive
// filesystems.
func (v *Vault) RenameNote(oldRel, newRel string) error {
	oldAbs := v.Abs(oldRel)
	newAbs := v.Abs(newRel)

	if oldRel == newRel {
		return nil
	}

	if IsCaseOnlyChange(oldRel, newRel) && v.SameFile(oldRel, newRel) {
		tmp := oldAbs + ".titlesync-tmp"
		if err := v.fs.Rename(oldAbs, tmp); err != nil {
			return fmt.Errorf("rename %s: %w", oldRel, err)
		}
		if err := v.fs.Rename(tmp, newAbs); err != nil {
			return errors.Join(fmt.Errorf("rename %s: %w", oldRel, err), v.fs.Rename(tmp, oldAbs))
		}
		return nil
	}

	// Don't overwrite existing files
	if _, err := v.fs.Stat(newAbs); err == nil {
		return fmt.Errorf("%s: %w", newRel, ErrExists)
	}

	if err := v.fs.MkdirAll(filepath.Dir(newAbs), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	if err := v.fs.Rename(oldAbs, newAbs); err != nil {
		return fmt.Errorf("rename %s: %w", oldRel, err)
	}
	return nil
}

// writeFileAtomic writes data through a temp file in the same directory and
// renames it into place.
func writeFileAtomic(fs afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)
	tmpFile, err := afero.TempFile(fs, dir, ".titlesync-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer fs.Remove(tmpPath) //nolint:errcheck // already renamed on success

	if _, err := tmpFile.Write(data); err != nil {
		return errors.Join(fmt.Errorf("write temp file: %w", err), tmpFile.Close())
	}
	if err := tmpFile.Sync(); err != nil {
		return errors.Join(fmt.Errorf("sync temp file: %w", err), tmpFile.Close())
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := fs.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file to %s: %w", path, err)
	}
	return nil
}
