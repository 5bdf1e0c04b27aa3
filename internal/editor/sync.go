// Package editor syncs the note open in a running Neovim.
package editor

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pfassina/titlesync/internal/retitle"
	"github.com/pfassina/titlesync/internal/vault"
)

// ErrNotNote is returned when the active buffer is not a note in the vault.
var ErrNotNote = errors.New("current buffer is not a markdown note in the vault")

// Buffer is the part of a Neovim session the sync needs.
type Buffer interface {
	CurrentFile() (string, error)
	BufferContent() ([]byte, error)
	SetBufferName(name string) error
	WriteBuffer() error
	Notify(msg string, level Level) error
}

// SyncCurrent renames the active buffer's note after its title. The buffer
// content is used as-is, so unsaved edits to the heading count. After a
// rename the buffer is pointed at the new file and written there.
// The outcome, or the failure, is reported through the editor.
func SyncCurrent(buf Buffer, s *retitle.Syncer) (retitle.Result, error) {
	res, err := syncCurrent(buf, s)
	if err != nil {
		buf.Notify("Error syncing title to filename", LevelError) //nolint:errcheck // already failing
		return res, err
	}
	if err := buf.Notify(res.Message(), levelFor(res.Outcome)); err != nil {
		return res, fmt.Errorf("notify: %w", err)
	}
	return res, nil
}

func syncCurrent(buf Buffer, s *retitle.Syncer) (retitle.Result, error) {
	path, err := buf.CurrentFile()
	if err != nil {
		return retitle.Result{}, fmt.Errorf("current file: %w", err)
	}
	rel, err := noteRel(s.Vault(), path)
	if err != nil {
		return retitle.Result{Path: path}, err
	}

	content, err := buf.BufferContent()
	if err != nil {
		return retitle.Result{Path: rel}, fmt.Errorf("buffer content: %w", err)
	}

	res, err := s.SyncContent(rel, content)
	if err != nil || res.Outcome != retitle.Renamed {
		return res, err
	}

	if err := buf.SetBufferName(s.Vault().Abs(res.NewPath)); err != nil {
		return res, fmt.Errorf("set buffer name: %w", err)
	}
	if err := buf.WriteBuffer(); err != nil {
		return res, fmt.Errorf("write buffer: %w", err)
	}
	return res, nil
}

func noteRel(v *vault.Vault, path string) (string, error) {
	if path == "" || !vault.IsNote(path) {
		return "", ErrNotNote
	}
	if !filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	rel, err := v.Rel(path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrNotNote
	}
	return rel, nil
}

func levelFor(o retitle.Outcome) Level {
	switch o {
	case retitle.Renamed, retitle.WouldRename, retitle.AlreadyMatches:
		return LevelInfo
	default:
		return LevelWarn
	}
}
