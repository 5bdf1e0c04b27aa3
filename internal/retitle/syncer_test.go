package retitle

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"github.com/pfassina/titlesync/internal/history"
	"github.com/pfassina/titlesync/internal/vault"
)

func newTestSyncer(t *testing.T, files map[string]string, opts Options) (*Syncer, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for rel, content := range files {
		if err := afero.WriteFile(fs, "/vault/"+rel, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return New(vault.NewWithFs(fs, "/vault"), opts), fs
}

func TestPlanContent(t *testing.T) {
	s, _ := newTestSyncer(t, map[string]string{
		"Taken Title.md": "# Taken Title\n",
		"dir/My Note.md": "# My Note\n",
		"dir/lower.md":   "# lower\n",
	}, Options{})

	tests := []struct {
		name        string
		rel         string
		content     string
		want        Outcome
		wantNewPath string
	}{
		{"rename", "untitled.md", "# My Title\n\nBody", WouldRename, "My Title.md"},
		{"keeps directory", "dir/untitled.md", "# Other: Title\n", WouldRename, "dir/Other- Title.md"},
		{"already matches", "dir/My Note.md", "# My Note\n", AlreadyMatches, "dir/My Note.md"},
		{"no heading", "a.md", "## Only H2\n", NoHeading, ""},
		{"empty filename", "a.md", "# ???:::\n", EmptyFilename, ""},
		{"collision", "a.md", "# Taken Title\n", Collision, "Taken Title.md"},
		{"case only clash with another note", "dir/my note.md", "# My Note\n", Collision, "dir/My Note.md"},
		{"case only change", "dir/lower.md", "# Lower\n", WouldRename, "dir/Lower.md"},
		{"opted out", "a.md", "---\ntitlesync: false\n---\n# Title\n", OptedOut, ""},
		{"explicitly enabled", "a.md", "---\ntitlesync: true\n---\n# Title\n", WouldRename, "Title.md"},
		{"frontmatter heading ignored", "a.md", "---\ntitle: x\n---\n\n# Real Title", WouldRename, "Real Title.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.PlanContent(tt.rel, []byte(tt.content))
			if got.Outcome != tt.want {
				t.Fatalf("outcome = %v, want %v", got.Outcome, tt.want)
			}
			if got.NewPath != tt.wantNewPath {
				t.Errorf("new path = %q, want %q", got.NewPath, tt.wantNewPath)
			}
		})
	}
}

func TestSyncRenamesAndRewritesLinks(t *testing.T) {
	journal, err := history.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer journal.Close()

	s, fs := newTestSyncer(t, map[string]string{
		"draft.md": "# Final Title\n",
		"index.md": "# Index\n\nSee [[draft]] and [[draft#part|the draft]].\n",
	}, Options{RewriteLinks: true, Journal: journal})

	res, err := s.Sync("draft.md")
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != Renamed {
		t.Fatalf("outcome = %v, want Renamed", res.Outcome)
	}
	if res.NewPath != "Final Title.md" {
		t.Errorf("new path = %q", res.NewPath)
	}
	if len(res.Links) != 1 || res.Links[0] != "index.md" {
		t.Errorf("links = %v, want [index.md]", res.Links)
	}
	if got := res.Message(); got != `Renamed to "Final Title.md"` {
		t.Errorf("message = %q", got)
	}

	data, err := afero.ReadFile(fs, "/vault/index.md")
	if err != nil {
		t.Fatal(err)
	}
	want := "# Index\n\nSee [[Final Title]] and [[Final Title#part|the draft]].\n"
	if string(data) != want {
		t.Errorf("index.md = %q, want %q", string(data), want)
	}

	last, err := journal.Last()
	if err != nil {
		t.Fatal(err)
	}
	if last.OldPath != "draft.md" || last.NewPath != "Final Title.md" || last.Heading != "Final Title" {
		t.Errorf("journal entry = %+v", last)
	}

	// Second run is a no-op.
	res, err = s.Sync("Final Title.md")
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != AlreadyMatches {
		t.Errorf("second sync outcome = %v, want AlreadyMatches", res.Outcome)
	}
}

func TestSyncDryRun(t *testing.T) {
	s, fs := newTestSyncer(t, map[string]string{"draft.md": "# Final Title\n"}, Options{DryRun: true})

	res, err := s.Sync("draft.md")
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != WouldRename {
		t.Errorf("outcome = %v, want WouldRename", res.Outcome)
	}
	if ok, _ := afero.Exists(fs, "/vault/draft.md"); !ok {
		t.Error("dry run must not rename")
	}
}

func TestSyncMissingNote(t *testing.T) {
	s, _ := newTestSyncer(t, nil, Options{})
	if _, err := s.Sync("missing.md"); err == nil {
		t.Error("expected read error")
	}
}

func TestSyncContentUsesGivenContent(t *testing.T) {
	s, fs := newTestSyncer(t, map[string]string{"note.md": "# On Disk\n"}, Options{})

	res, err := s.SyncContent("note.md", []byte("# In Buffer\n"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != Renamed || res.NewPath != "In Buffer.md" {
		t.Fatalf("result = %+v", res)
	}
	if ok, _ := afero.Exists(fs, "/vault/In Buffer.md"); !ok {
		t.Error("note was not renamed")
	}
}

func TestSyncAll(t *testing.T) {
	s, fs := newTestSyncer(t, map[string]string{
		"a.md":        "# Alpha\n",
		"b.md":        "no heading\n",
		"Gamma.md":    "# Gamma\n",
		"sub/d.md":    "# Delta: Part 1?\n",
		"dup1.md":     "# Same\n",
		"dup2.md":     "# Same\n",
		"notes.txt":   "# Ignored\n",
		".trash/x.md": "# Hidden\n",
	}, Options{})

	results, err := s.SyncAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	counts := map[Outcome]int{}
	for _, r := range results {
		counts[r.Outcome]++
	}
	if counts[Renamed] != 3 {
		t.Errorf("renamed = %d, want 3 (%v)", counts[Renamed], results)
	}
	if counts[Collision] != 1 {
		t.Errorf("collisions = %d, want 1", counts[Collision])
	}
	if counts[NoHeading] != 1 || counts[AlreadyMatches] != 1 {
		t.Errorf("counts = %v", counts)
	}

	for _, path := range []string{"/vault/Alpha.md", "/vault/sub/Delta- Part 1.md", "/vault/Same.md", "/vault/notes.txt", "/vault/.trash/x.md"} {
		if ok, _ := afero.Exists(fs, path); !ok {
			t.Errorf("%s should exist", path)
		}
	}
}

func TestSyncAllCancelled(t *testing.T) {
	s, _ := newTestSyncer(t, map[string]string{"a.md": "# Alpha\n"}, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.SyncAll(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestPlanAll(t *testing.T) {
	s, fs := newTestSyncer(t, map[string]string{
		"a.md":    "# Alpha\n",
		"Beta.md": "# Beta\n",
	}, Options{})

	results, err := s.PlanAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Path != "Beta.md" || results[0].Outcome != AlreadyMatches {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[1].Path != "a.md" || results[1].Outcome != WouldRename {
		t.Errorf("results[1] = %+v", results[1])
	}
	if ok, _ := afero.Exists(fs, "/vault/a.md"); !ok {
		t.Error("PlanAll must not rename")
	}
}

func TestApplyStalePlan(t *testing.T) {
	s, fs := newTestSyncer(t, map[string]string{"a.md": "# Title\n"}, Options{})

	plan, err := s.Plan("a.md")
	if err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, "/vault/Title.md", []byte("# Title\n"), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := s.Apply(plan)
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != Collision {
		t.Errorf("outcome = %v, want Collision", res.Outcome)
	}
}

func TestConcurrentSyncSameTitle(t *testing.T) {
	files := map[string]string{}
	names := []string{"n1.md", "n2.md", "n3.md", "n4.md", "n5.md", "n6.md"}
	for _, n := range names {
		files[n] = "# Shared Title\n"
	}
	s, _ := newTestSyncer(t, files, Options{})

	var wg sync.WaitGroup
	outcomes := make([]Outcome, len(names))
	for i, n := range names {
		wg.Add(1)
		go func(i int, n string) {
			defer wg.Done()
			res, err := s.Sync(n)
			if err != nil {
				t.Error(err)
				return
			}
			outcomes[i] = res.Outcome
		}(i, n)
	}
	wg.Wait()

	renamed := 0
	for _, o := range outcomes {
		if o == Renamed {
			renamed++
		} else if o != Collision {
			t.Errorf("unexpected outcome %v", o)
		}
	}
	if renamed != 1 {
		t.Errorf("renamed = %d, want exactly 1", renamed)
	}
}

func TestUndo(t *testing.T) {
	journal, err := history.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer journal.Close()

	s, fs := newTestSyncer(t, map[string]string{
		"draft.md": "# Final\n",
		"index.md": "[[draft]]\n",
	}, Options{RewriteLinks: true, Journal: journal})

	if _, err := s.Sync("draft.md"); err != nil {
		t.Fatal(err)
	}

	e, err := s.Undo()
	if err != nil {
		t.Fatal(err)
	}
	if e.OldPath != "draft.md" {
		t.Errorf("undone entry = %+v", e)
	}
	if ok, _ := afero.Exists(fs, "/vault/draft.md"); !ok {
		t.Error("draft.md should be restored")
	}
	data, _ := afero.ReadFile(fs, "/vault/index.md")
	if string(data) != "[[draft]]\n" {
		t.Errorf("index.md = %q", string(data))
	}

	if _, err := s.Undo(); !errors.Is(err, history.ErrEmpty) {
		t.Errorf("second undo err = %v, want ErrEmpty", err)
	}
}

// writeFailFs rejects file creation while fail is set, so link rewrites
// fail after the note itself has been renamed.
type writeFailFs struct {
	afero.Fs
	fail bool
}

var errDiskFull = errors.New("disk full")

func (f *writeFailFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if f.fail && flag&os.O_CREATE != 0 {
		return nil, errDiskFull
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func newWriteFailSyncer(t *testing.T, files map[string]string, opts Options) (*Syncer, *writeFailFs) {
	t.Helper()
	fs := &writeFailFs{Fs: afero.NewMemMapFs()}
	for rel, content := range files {
		if err := afero.WriteFile(fs, "/vault/"+rel, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return New(vault.NewWithFs(fs, "/vault"), opts), fs
}

func TestSyncJournalsBeforeLinkRewrite(t *testing.T) {
	journal, err := history.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer journal.Close()

	s, fs := newWriteFailSyncer(t, map[string]string{
		"draft.md": "# Final\n",
		"index.md": "[[draft]]\n",
	}, Options{RewriteLinks: true, Journal: journal})
	fs.fail = true

	res, err := s.Sync("draft.md")
	if !errors.Is(err, errDiskFull) {
		t.Fatalf("err = %v, want link rewrite failure", err)
	}
	if res.Outcome != Renamed {
		t.Errorf("outcome = %v, want Renamed", res.Outcome)
	}

	e, err := journal.Last()
	if err != nil {
		t.Fatalf("rename was not journaled: %v", err)
	}
	if e.OldPath != "draft.md" || e.NewPath != "Final.md" {
		t.Errorf("entry = %+v", e)
	}

	fs.fail = false
	if _, err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	if ok, _ := afero.Exists(fs, "/vault/draft.md"); !ok {
		t.Error("draft.md should be restored")
	}
}

func TestUndoMarksEntryBeforeLinkRewrite(t *testing.T) {
	journal, err := history.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer journal.Close()

	s, fs := newWriteFailSyncer(t, map[string]string{
		"draft.md": "# Final\n",
		"index.md": "[[draft]]\n",
	}, Options{RewriteLinks: true, Journal: journal})

	if _, err := s.Sync("draft.md"); err != nil {
		t.Fatal(err)
	}

	fs.fail = true
	if _, err := s.Undo(); !errors.Is(err, errDiskFull) {
		t.Fatalf("err = %v, want link rewrite failure", err)
	}
	if ok, _ := afero.Exists(fs, "/vault/draft.md"); !ok {
		t.Fatal("draft.md should be restored")
	}
	if _, err := journal.Last(); !errors.Is(err, history.ErrEmpty) {
		t.Errorf("Last err = %v, want the entry marked undone", err)
	}
	if _, err := s.Undo(); !errors.Is(err, history.ErrEmpty) {
		t.Errorf("second undo err = %v, want ErrEmpty", err)
	}
}

func TestUndoWithoutJournal(t *testing.T) {
	s, _ := newTestSyncer(t, nil, Options{})
	if _, err := s.Undo(); !errors.Is(err, ErrNoJournal) {
		t.Errorf("err = %v, want ErrNoJournal", err)
	}
}

func TestResultMessage(t *testing.T) {
	tests := []struct {
		res  Result
		want string
	}{
		{Result{Outcome: NoHeading}, "No H1 header found in the file"},
		{Result{Outcome: EmptyFilename}, "Title converts to empty filename"},
		{Result{Outcome: AlreadyMatches}, "Filename already matches title"},
		{Result{Outcome: Collision, NewPath: "dir/X.md"}, `Cannot rename: "X.md" already exists`},
		{Result{Outcome: WouldRename, NewPath: "X.md"}, `Would rename to "X.md"`},
		{Result{Outcome: OptedOut}, "Title sync disabled in frontmatter"},
	}

	for _, tt := range tests {
		t.Run(tt.res.Outcome.String(), func(t *testing.T) {
			if got := tt.res.Message(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
