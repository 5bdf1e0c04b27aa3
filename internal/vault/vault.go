package vault

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Entry represents a note in the vault.
type Entry struct {
	Name string
	Path string // relative to the vault root
}

// Vault represents a directory of markdown notes.
type Vault struct {
	Root string
	fs   afero.Fs
}

// New returns a vault rooted at root on the OS filesystem.
func New(root string) *Vault {
	return NewWithFs(afero.NewOsFs(), root)
}

// NewWithFs returns a vault backed by fs.
func NewWithFs(fs afero.Fs, root string) *Vault {
	return &Vault{Root: root, fs: fs}
}

// Abs returns the absolute path of a vault-relative path.
func (v *Vault) Abs(rel string) string {
	return filepath.Join(v.Root, rel)
}

// Rel converts an absolute path into a vault-relative one.
func (v *Vault) Rel(abs string) (string, error) {
	return filepath.Rel(v.Root, abs)
}

// ListNotes returns all markdown files in the vault sorted by path.
// Hidden files and directories are skipped.
func (v *Vault) ListNotes() ([]Entry, error) {
	var notes []Entry

	err := afero.Walk(v.fs, v.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip errors
		}

		rel, _ := filepath.Rel(v.Root, path)
		if rel == "." {
			return nil
		}

		name := filepath.Base(path)
		if strings.HasPrefix(name, ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() || !IsNote(name) {
			return nil
		}

		notes = append(notes, Entry{Name: name, Path: rel})
		return nil
	})

	sort.Slice(notes, func(i, j int) bool {
		return notes[i].Path < notes[j].Path
	})

	return notes, err
}

// ReadNote returns the content of a note.
func (v *Vault) ReadNote(rel string) ([]byte, error) {
	return afero.ReadFile(v.fs, v.Abs(rel))
}

// Exists reports whether a file exists at the vault-relative path.
func (v *Vault) Exists(rel string) bool {
	_, err := v.fs.Stat(v.Abs(rel))
	return err == nil
}

// IsNote reports whether name looks like a markdown note.
func IsNote(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".md")
}

// NoteName extracts the note name from a file path.
// "folder/my-note.md" -> "my-note"
func NoteName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
