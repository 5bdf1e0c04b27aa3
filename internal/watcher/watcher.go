// Package watcher reports markdown notes that changed on disk.
package watcher

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/pfassina/titlesync/internal/vault"
)

// DefaultDelay is how long a note must stay quiet before it is reported.
const DefaultDelay = 200 * time.Millisecond

var errEventsClosed = errors.New("watcher: event stream closed")

// Watcher monitors a vault for note writes. Bursts of events for one path
// are debounced into a single onChange call with the vault-relative path.
type Watcher struct {
	fsw      *fsnotify.Watcher
	root     string
	delay    time.Duration
	onChange func(rel string)
	onError  func(error)
	log      *log.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool
}

// New watches root and every non-hidden directory below it.
func New(root string, delay time.Duration, onChange func(rel string), onError func(error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if delay <= 0 {
		delay = DefaultDelay
	}

	w := &Watcher{
		fsw:      fw,
		root:     root,
		delay:    delay,
		onChange: onChange,
		onError:  onError,
		log:      log.New(io.Discard),
		pending:  make(map[string]*time.Timer),
	}

	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// SetLogger replaces the discard logger.
func (w *Watcher) SetLogger(l *log.Logger) {
	if l != nil {
		w.log = l
	}
}

func (w *Watcher) addTree(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if path != w.root && isHidden(info.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return err
		}
		w.log.Debug("watching", "dir", path)
		return nil
	})
}

// Start processes events until ctx is cancelled or Stop is called. It
// returns a non-nil error only when the underlying watcher fails.
func (w *Watcher) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return w.Stop()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return w.fatal(errEventsClosed)
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return w.fatal(errEventsClosed)
			}
			// Overflows and similar are not fatal; later writes are still seen.
			w.log.Warn("watch error", "err", err)
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	name := filepath.Base(path)
	if isHidden(name) {
		return
	}

	if !vault.IsNote(name) {
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				if err := w.addTree(path); err != nil {
					w.log.Warn("watch directory", "dir", path, "err", err)
				}
			}
		}
		return
	}

	// A rename away or a delete leaves nothing to sync. The new name of a
	// renamed note arrives as its own Create.
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return
	}
	w.schedule(rel)
}

func (w *Watcher) schedule(rel string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if timer, ok := w.pending[rel]; ok {
		timer.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(w.delay, func() {
		// timer is assigned under mu.
		w.mu.Lock()
		self := timer
		w.mu.Unlock()
		w.fire(rel, self)
	})
	w.pending[rel] = timer
}

// fire reports rel unless timer was replaced by a later event for the same
// note while it was firing.
func (w *Watcher) fire(rel string, timer *time.Timer) {
	w.mu.Lock()
	if w.closed || w.pending[rel] != timer {
		w.mu.Unlock()
		return
	}
	delete(w.pending, rel)
	w.mu.Unlock()

	w.log.Debug("changed", "note", rel)
	if w.onChange != nil {
		w.onChange(rel)
	}
}

// Stop closes the watcher and drops pending notifications.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.cancelPending()
	w.mu.Unlock()

	return w.fsw.Close()
}

func (w *Watcher) cancelPending() {
	for rel, timer := range w.pending {
		timer.Stop()
		delete(w.pending, rel)
	}
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
