package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
	ch    chan string
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan string, 64)}
}

func (r *recorder) onChange(rel string) {
	r.mu.Lock()
	r.calls = append(r.calls, rel)
	r.mu.Unlock()
	r.ch <- rel
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) wait(t *testing.T, want string) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case got := <-r.ch:
			if got == want {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q, got %v", want, r.snapshot())
		}
	}
}

func newTestWatcher(t *testing.T, root string, rec *recorder) *Watcher {
	t.Helper()
	w, err := New(root, 20*time.Millisecond, rec.onChange, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { w.Stop() })
	return w
}

func TestHandleEventDebounces(t *testing.T) {
	root := t.TempDir()
	rec := newRecorder()
	w := newTestWatcher(t, root, rec)

	path := filepath.Join(root, "note.md")
	for i := 0; i < 5; i++ {
		w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})
	}
	rec.wait(t, "note.md")

	time.Sleep(100 * time.Millisecond)
	if got := rec.snapshot(); len(got) != 1 {
		t.Errorf("calls = %v, want exactly one", got)
	}
}

func TestHandleEventFilters(t *testing.T) {
	root := t.TempDir()
	rec := newRecorder()
	w := newTestWatcher(t, root, rec)

	ignored := []fsnotify.Event{
		{Name: filepath.Join(root, "notes.txt"), Op: fsnotify.Write},
		{Name: filepath.Join(root, ".hidden.md"), Op: fsnotify.Create},
		{Name: filepath.Join(root, ".titlesync-123"), Op: fsnotify.Create},
		{Name: filepath.Join(root, "gone.md"), Op: fsnotify.Remove},
		{Name: filepath.Join(root, "moved.md"), Op: fsnotify.Rename},
		{Name: filepath.Join(root, "perm.md"), Op: fsnotify.Chmod},
	}
	for _, ev := range ignored {
		w.handleEvent(ev)
	}
	w.handleEvent(fsnotify.Event{Name: filepath.Join(root, "sub", "kept.md"), Op: fsnotify.Create})

	rec.wait(t, filepath.Join("sub", "kept.md"))
	time.Sleep(100 * time.Millisecond)
	if got := rec.snapshot(); len(got) != 1 {
		t.Errorf("calls = %v, want only sub/kept.md", got)
	}
}

func TestReplacedTimerDoesNotFire(t *testing.T) {
	root := t.TempDir()
	rec := newRecorder()
	w, err := New(root, time.Hour, rec.onChange, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { w.Stop() })

	w.schedule("note.md")
	w.mu.Lock()
	stale := w.pending["note.md"]
	w.mu.Unlock()

	w.schedule("note.md")
	w.mu.Lock()
	fresh := w.pending["note.md"]
	w.mu.Unlock()

	// A timer that already fired when it was replaced still runs its callback.
	w.fire("note.md", stale)
	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("replaced timer reported %v", got)
	}
	w.mu.Lock()
	kept := w.pending["note.md"] == fresh
	w.mu.Unlock()
	if !kept {
		t.Fatal("replaced timer dropped the pending entry of its successor")
	}

	w.fire("note.md", fresh)
	if got := rec.snapshot(); len(got) != 1 || got[0] != "note.md" {
		t.Errorf("calls = %v, want exactly one", got)
	}
	w.mu.Lock()
	left := len(w.pending)
	w.mu.Unlock()
	if left != 0 {
		t.Errorf("%d pending entries left", left)
	}
}

func TestStopDropsPending(t *testing.T) {
	root := t.TempDir()
	rec := newRecorder()
	w, err := New(root, 50*time.Millisecond, rec.onChange, nil)
	if err != nil {
		t.Fatal(err)
	}

	w.handleEvent(fsnotify.Event{Name: filepath.Join(root, "note.md"), Op: fsnotify.Write})
	if err := w.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}

	time.Sleep(150 * time.Millisecond)
	if got := rec.snapshot(); len(got) != 0 {
		t.Errorf("calls after stop = %v", got)
	}
}

func TestFatalReportsOnce(t *testing.T) {
	root := t.TempDir()
	var errs []error
	w, err := New(root, 0, nil, func(err error) { errs = append(errs, err) })
	if err != nil {
		t.Fatal(err)
	}

	if err := w.fatal(errEventsClosed); err != errEventsClosed {
		t.Errorf("fatal returned %v", err)
	}
	if err := w.fatal(errEventsClosed); err != nil {
		t.Errorf("second fatal returned %v", err)
	}
	if len(errs) != 1 {
		t.Errorf("onError called %d times, want 1", len(errs))
	}
}

func TestStartSeesWrites(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(root, ".git"), 0755); err != nil {
		t.Fatal(err)
	}

	rec := newRecorder()
	w := newTestWatcher(t, root, rec)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	if err := os.WriteFile(filepath.Join(root, "sub", "a.md"), []byte("# A\n"), 0644); err != nil {
		t.Fatal(err)
	}
	rec.wait(t, filepath.Join("sub", "a.md"))

	// Directories created after start are picked up too.
	if err := os.Mkdir(filepath.Join(root, "later"), 0755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(root, "later", "b.md"), []byte("# B\n"), 0644); err != nil {
		t.Fatal(err)
	}
	rec.wait(t, filepath.Join("later", "b.md"))

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
