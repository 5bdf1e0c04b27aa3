// Package retitle renames markdown notes after their first H1 heading.
package retitle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/pfassina/titlesync/internal/history"
	"github.com/pfassina/titlesync/internal/markdown"
	"github.com/pfassina/titlesync/internal/vault"
)

// OptOutKey is the frontmatter key that disables syncing for a note when false.
const OptOutKey = "titlesync"

// ErrNoJournal is returned by Undo when history is disabled.
var ErrNoJournal = errors.New("rename history is disabled")

// Journal records renames so they can be listed and undone.
type Journal interface {
	Record(e history.Entry) (int64, error)
	Last() (history.Entry, error)
	MarkUndone(id int64) error
}

// Options configures a Syncer.
type Options struct {
	RewriteLinks bool
	DryRun       bool
	Journal      Journal     // nil disables history
	Logger       *log.Logger // nil discards logs
}

// Syncer keeps note filenames in sync with their titles. The read, plan,
// collision check and rename sequence runs under one lock so concurrent
// callers (the watcher, the CLI) never race on the same target name.
type Syncer struct {
	vault *vault.Vault
	opts  Options
	log   *log.Logger
	mu    sync.Mutex
}

// New returns a Syncer operating on v.
func New(v *vault.Vault, opts Options) *Syncer {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Syncer{vault: v, opts: opts, log: logger}
}

// Vault returns the vault the syncer operates on.
func (s *Syncer) Vault() *vault.Vault {
	return s.vault
}

// Plan reads a note and reports what syncing it would do, without side effects.
func (s *Syncer) Plan(rel string) (Result, error) {
	content, err := s.vault.ReadNote(rel)
	if err != nil {
		return Result{Path: rel}, fmt.Errorf("read %s: %w", rel, err)
	}
	return s.PlanContent(rel, content), nil
}

// PlanContent is Plan for content that is not necessarily on disk yet, such
// as an unsaved editor buffer.
func (s *Syncer) PlanContent(rel string, content []byte) Result {
	res := Result{Path: rel}

	if enabled, ok := markdown.ExtractFrontmatter(content).Bool(OptOutKey); ok && !enabled {
		res.Outcome = OptedOut
		return res
	}

	heading, ok := markdown.ExtractFirstHeading(content)
	if !ok {
		res.Outcome = NoHeading
		return res
	}
	res.Heading = heading

	name := vault.Filename(heading)
	if name == "" {
		res.Outcome = EmptyFilename
		return res
	}
	res.Filename = name
	res.NewPath = vault.TargetPath(rel, name)

	switch {
	case res.NewPath == rel:
		res.Outcome = AlreadyMatches
	case s.vault.Exists(res.NewPath) && !(vault.IsCaseOnlyChange(rel, res.NewPath) && s.vault.SameFile(rel, res.NewPath)):
		res.Outcome = Collision
	default:
		res.Outcome = WouldRename
	}
	return res
}

// PlanAll plans every note in the vault.
func (s *Syncer) PlanAll(ctx context.Context) ([]Result, error) {
	notes, err := s.vault.ListNotes()
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	var results []Result
	var errs []error
	for _, n := range notes {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := s.Plan(n.Path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

// Sync renames a note after its title.
func (s *Syncer) Sync(rel string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.Plan(rel)
	if err != nil {
		return res, err
	}
	return s.apply(res)
}

// SyncContent is Sync for a note whose current content is given.
func (s *Syncer) SyncContent(rel string, content []byte) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.apply(s.PlanContent(rel, content))
}

// SyncAll syncs every note in the vault. Per-note failures are logged and
// joined into the returned error; the remaining notes are still processed.
func (s *Syncer) SyncAll(ctx context.Context) ([]Result, error) {
	notes, err := s.vault.ListNotes()
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	var results []Result
	var errs []error
	for _, n := range notes {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := s.Sync(n.Path)
		if err != nil {
			s.log.Error("sync failed", "note", n.Path, "err", err)
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

// Apply performs a previously planned rename. Plans go stale, so the
// collision check is repeated by the vault.
func (s *Syncer) Apply(res Result) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.apply(res)
}

func (s *Syncer) apply(res Result) (Result, error) {
	if res.Outcome != WouldRename || s.opts.DryRun {
		s.log.Debug("skip", "note", res.Path, "outcome", res.Outcome)
		return res, nil
	}

	if err := s.vault.RenameNote(res.Path, res.NewPath); err != nil {
		if errors.Is(err, vault.ErrExists) {
			res.Outcome = Collision
			return res, nil
		}
		return res, err
	}
	res.Outcome = Renamed
	s.log.Info("renamed", "from", res.Path, "to", res.NewPath)

	// Journal before touching links; a failed rewrite must stay undoable.
	if s.opts.Journal != nil {
		if _, err := s.opts.Journal.Record(history.Entry{
			OldPath: filepath.ToSlash(res.Path),
			NewPath: filepath.ToSlash(res.NewPath),
			Heading: res.Heading,
		}); err != nil {
			return res, fmt.Errorf("journal rename: %w", err)
		}
	}

	oldName, newName := vault.NoteName(res.Path), vault.NoteName(res.NewPath)
	if s.opts.RewriteLinks {
		links, err := s.vault.RewriteLinks(oldName, newName)
		res.Links = links
		if err != nil {
			return res, fmt.Errorf("rewrite links to %s: %w", oldName, err)
		}
		if len(links) > 0 {
			s.log.Info("rewrote links", "target", newName, "notes", len(links))
		}
	}

	return res, nil
}

// Undo reverts the most recent journaled rename.
func (s *Syncer) Undo() (history.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.Journal == nil {
		return history.Entry{}, ErrNoJournal
	}

	e, err := s.opts.Journal.Last()
	if err != nil {
		return e, err
	}

	from, to := filepath.FromSlash(e.NewPath), filepath.FromSlash(e.OldPath)
	if s.opts.DryRun {
		return e, nil
	}
	if err := s.vault.RenameNote(from, to); err != nil {
		return e, fmt.Errorf("undo %s: %w", e.NewPath, err)
	}
	s.log.Info("reverted", "from", e.NewPath, "to", e.OldPath)

	if err := s.opts.Journal.MarkUndone(e.ID); err != nil {
		return e, err
	}

	if s.opts.RewriteLinks {
		if _, err := s.vault.RewriteLinks(vault.NoteName(from), vault.NoteName(to)); err != nil {
			return e, fmt.Errorf("rewrite links to %s: %w", vault.NoteName(to), err)
		}
	}
	return e, nil
}

func baseName(path string) string {
	return filepath.Base(path)
}
