package indexer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/hyperjump/smartsearch/internal/index"
	"github.com/hyperjump/smartsearch/internal/models"
	"github.com/hyperjump/smartsearch/internal/search"
	"github.com/hyperjump/smartsearch/internal/storage"
)

type fakeIndex struct {
	mu      sync.Mutex
	builds  int
	updates []string
	removes []string
}

func (f *fakeIndex) BuildIndex(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builds++
	return nil
}

func (f *fakeIndex) UpdateIndex(_ context.Context, id string, _ *models.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, id)
	return nil
}

func (f *fakeIndex) RemoveFromIndex(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removes = append(f.removes, id)
	return true, nil
}

func openCatalog(t *testing.T) storage.Storage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestExtensionAllowed(t *testing.T) {
	tests := []struct {
		ext     string
		allowed []string
		want    bool
	}{
		{".txt", []string{".txt", ".md"}, true},
		{".TXT", []string{".txt"}, true},
		{".md", []string{"txt", "md"}, true},
		{".go", []string{".txt"}, false},
		{"", []string{".txt"}, false},
	}
	for _, tt := range tests {
		if got := extensionAllowed(tt.ext, tt.allowed); got != tt.want {
			t.Errorf("extensionAllowed(%q, %v) = %v, want %v", tt.ext, tt.allowed, got, tt.want)
		}
	}
}

func TestDocumentID(t *testing.T) {
	dir := t.TempDir()
	a := DocumentID(filepath.Join(dir, "a.txt"))
	if !strings.HasPrefix(a, "file:") || len(a) != len("file:")+64 {
		t.Errorf("unexpected id %q", a)
	}
	if b := DocumentID(filepath.Join(dir, "sub", "..", "a.txt")); b != a {
		t.Errorf("uncleaned path gave %q, want %q", b, a)
	}
	if c := DocumentID(filepath.Join(dir, "b.txt")); c == a {
		t.Error("different paths share an id")
	}
}

func TestPreprocess(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  heat \t pad  ", "heat pad"},
		{"Heat   helps\r\n\n\t \ncramps.\n", "Heat helps\ncramps."},
		{" \n\t\n", ""},
	}
	for _, c := range cases {
		if got := Preprocess(c.in); got != c.want {
			t.Errorf("Preprocess(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIndexFile_nilLogger(t *testing.T) {
	dir := t.TempDir()
	idx := NewIndexer(openCatalog(t), &fakeIndex{}, nil, WithLogger(nil))
	path := filepath.Join(dir, "notes.txt")
	writeFile(t, path, "Heat helps.")
	if _, err := idx.IndexFile(context.Background(), path); err != nil {
		t.Fatalf("IndexFile: %v", err)
	}
	if _, err := idx.SyncDirectories(context.Background(), []string{dir}, true); err != nil {
		t.Fatalf("SyncDirectories: %v", err)
	}
}

func TestIndexFile_createSkipAndUpdate(t *testing.T) {
	dir := t.TempDir()
	store, fake := openCatalog(t), &fakeIndex{}
	idx := NewIndexer(store, fake, nil)
	ctx := context.Background()

	path := filepath.Join(dir, "pdfs", "cramp_relief.txt")
	writeFile(t, path, "Heat   helps\ncramps.")

	changed, err := idx.IndexFile(ctx, path)
	if err != nil || !changed {
		t.Fatalf("IndexFile = %v, %v", changed, err)
	}
	doc, err := store.GetDocument(ctx, DocumentID(path))
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if doc.Type != models.DocumentPDF || doc.Title() != "cramp relief" {
		t.Errorf("got type %q title %q", doc.Type, doc.Title())
	}
	if got := doc.Field(models.FieldContent); got != "Heat helps\ncramps." {
		t.Errorf("content = %q", got)
	}

	changed, err = idx.IndexFile(ctx, path)
	if err != nil || changed {
		t.Fatalf("unchanged file: IndexFile = %v, %v", changed, err)
	}

	writeFile(t, path, "Heat helps cramps and back pain.")
	changed, err = idx.IndexFile(ctx, path)
	if err != nil || !changed {
		t.Fatalf("modified file: IndexFile = %v, %v", changed, err)
	}
	if len(fake.updates) != 2 {
		t.Errorf("UpdateIndex called %d times, want 2", len(fake.updates))
	}
}

func TestIndexFile_rejects(t *testing.T) {
	dir := t.TempDir()
	idx := NewIndexer(openCatalog(t), &fakeIndex{}, nil, WithExtensions([]string{".md"}))
	ctx := context.Background()

	txt := filepath.Join(dir, "notes.txt")
	writeFile(t, txt, "x")
	if _, err := idx.IndexFile(ctx, txt); err == nil {
		t.Error("expected error for disallowed extension")
	}
	if _, err := idx.IndexFile(ctx, filepath.Join(dir, "missing.md")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := idx.IndexFile(ctx, dir); err == nil {
		t.Error("expected error for directory")
	}
}

func TestRemoveFile(t *testing.T) {
	dir := t.TempDir()
	store, fake := openCatalog(t), &fakeIndex{}
	idx := NewIndexer(store, fake, nil)
	ctx := context.Background()

	path := filepath.Join(dir, "a.md")
	writeFile(t, path, "# Breathing\nslow breaths")
	if _, err := idx.IndexFile(ctx, path); err != nil {
		t.Fatal(err)
	}
	removed, err := idx.RemoveFile(ctx, path)
	if err != nil || !removed {
		t.Fatalf("RemoveFile = %v, %v", removed, err)
	}
	if n, _ := store.CountDocuments(ctx); n != 0 {
		t.Errorf("catalog still has %d documents", n)
	}
	if len(fake.removes) != 1 || fake.removes[0] != DocumentID(path) {
		t.Errorf("removes = %v", fake.removes)
	}
}

func TestSyncDirectories(t *testing.T) {
	dir := t.TempDir()
	store, fake := openCatalog(t), &fakeIndex{}
	idx := NewIndexer(store, fake, nil, WithExtensions([]string{".md", ".txt"}), WithWorkers(2))
	ctx := context.Background()

	writeFile(t, filepath.Join(dir, "a.md"), "# Heat\nheating pad")
	writeFile(t, filepath.Join(dir, "guides", "b.txt"), "gentle yoga")
	writeFile(t, filepath.Join(dir, "guides", "c.txt"), "walking")
	writeFile(t, filepath.Join(dir, "skip.bin"), "binary")
	writeFile(t, filepath.Join(dir, ".hidden", "d.md"), "hidden")

	report, err := idx.SyncDirectories(ctx, []string{dir}, true)
	if err != nil {
		t.Fatalf("SyncDirectories: %v", err)
	}
	if report.Scanned != 3 || report.Indexed != 3 || report.Removed != 0 {
		t.Errorf("first sync report = %+v", report)
	}
	counts, err := store.CountByType(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[models.DocumentGuide] != 2 || counts[models.DocumentArticle] != 1 {
		t.Errorf("counts = %v", counts)
	}

	if err := os.Remove(filepath.Join(dir, "guides", "c.txt")); err != nil {
		t.Fatal(err)
	}
	report, err = idx.SyncDirectories(ctx, []string{dir}, true)
	if err != nil {
		t.Fatalf("second SyncDirectories: %v", err)
	}
	if report.Unchanged != 2 || report.Removed != 1 {
		t.Errorf("second sync report = %+v", report)
	}
	if fake.builds != 2 {
		t.Errorf("BuildIndex called %d times, want 2", fake.builds)
	}

	report, err = idx.SyncDirectories(ctx, []string{dir}, false)
	if err != nil {
		t.Fatalf("flat SyncDirectories: %v", err)
	}
	if report.Scanned != 1 {
		t.Errorf("non-recursive scanned %d files, want 1", report.Scanned)
	}
}

func TestSyncDirectories_notADirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	writeFile(t, path, "x")
	idx := NewIndexer(openCatalog(t), &fakeIndex{}, nil)
	if _, err := idx.SyncDirectories(context.Background(), []string{path}, true); err == nil {
		t.Error("expected error for file root")
	}
}

func TestSyncDirectories_feedsSearch(t *testing.T) {
	dir := t.TempDir()
	store := openCatalog(t)
	mgr := index.NewManager(index.DefaultOptions())
	t.Cleanup(func() { _ = mgr.Close() })
	engine := search.NewEngine(mgr, search.WithCatalog(store))
	idx := NewIndexer(store, engine, nil)
	ctx := context.Background()

	writeFile(t, filepath.Join(dir, "tools", "tracker.md"), "# Symptom tracker\nLog ibuprofen doses.")
	writeFile(t, filepath.Join(dir, "heat.md"), "# Heat therapy\nA warm bath helps.")
	if _, err := idx.SyncDirectories(ctx, []string{dir}, true); err != nil {
		t.Fatalf("SyncDirectories: %v", err)
	}

	resp, err := engine.Search(ctx, &models.SearchOptions{Query: "ibuprofen", Mode: models.ModeKeyword})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Type != models.DocumentTool {
		t.Fatalf("results = %+v", resp.Results)
	}

	path := filepath.Join(dir, "heat.md")
	writeFile(t, path, "# Heat therapy\nA warm bath and ibuprofen help.")
	if _, err := idx.IndexFile(ctx, path); err != nil {
		t.Fatalf("IndexFile: %v", err)
	}
	resp, err = engine.Search(ctx, &models.SearchOptions{Query: "ibuprofen", Mode: models.ModeKeyword})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.TotalResults != 2 {
		t.Errorf("after update got %d results, want 2", resp.TotalResults)
	}
}
