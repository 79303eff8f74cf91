package index

import (
	"io"
	"log/slog"
	"testing"

	"github.com/starford/raido/internal/org"
	"github.com/starford/raido/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const indexedDoc = `#+TITLE: Project
#+FILETAGS: :work:
:PROPERTIES:
:ID: file-node
:END:
* Parent :infra:
** TODO Task
:PROPERTIES:
:ID: task-node
:END:
see [[id:other-node]] and [[file:misc.org]]
`

func TestIndexDocument(t *testing.T) {
	db := openTestDB(t)
	if err := IndexDocument(db, org.DefaultConfig(), "p.org", []byte(indexedDoc)); err != nil {
		t.Fatal(err)
	}

	file, err := db.GetNode("file-node")
	if err != nil {
		t.Fatal(err)
	}
	if file == nil {
		t.Fatal("file-level node not indexed")
	}
	if file.Title != "Project" || file.Level != 0 {
		t.Errorf("file node = %+v", file)
	}
	if len(file.Tags) != 1 || file.Tags[0] != "work" {
		t.Errorf("file node tags = %v", file.Tags)
	}

	task, err := db.GetNode("task-node")
	if err != nil {
		t.Fatal(err)
	}
	if task == nil {
		t.Fatal("headline node not indexed")
	}
	if task.Level != 2 || task.Todo != "TODO" || task.Title != "Task" {
		t.Errorf("task node = %+v", task)
	}
	if len(task.OlPath) != 1 || task.OlPath[0] != "Parent" {
		t.Errorf("olpath = %v", task.OlPath)
	}
	// Inherited tags: filetags plus the parent's.
	want := map[string]bool{"work": true, "infra": true}
	for _, tag := range task.Tags {
		if !want[tag] {
			t.Errorf("unexpected tag %q", tag)
		}
		delete(want, tag)
	}
	if len(want) != 0 {
		t.Errorf("missing tags: %v", want)
	}

	bl, err := db.Backlinks("other-node")
	if err != nil {
		t.Fatal(err)
	}
	if len(bl) != 1 || bl[0].SourceFile != "p.org" || bl[0].SourceNode != "task-node" {
		t.Errorf("backlinks = %+v", bl)
	}
	if bl, _ := db.Backlinks("misc.org"); len(bl) != 1 {
		t.Errorf("file backlinks = %+v", bl)
	}
}

func TestSync(t *testing.T) {
	db := openTestDB(t)
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cfg := org.DefaultConfig()
	logger := discardLogger()

	if err := store.Write("a.org", []byte("#+TITLE: Alpha\n")); err != nil {
		t.Fatal(err)
	}
	if err := store.Write("b.org", []byte("#+TITLE: Beta\n")); err != nil {
		t.Fatal(err)
	}

	if err := Sync(db, store, cfg, logger); err != nil {
		t.Fatal(err)
	}
	if _, total, _ := db.ListFiles(10, 0, ""); total != 2 {
		t.Fatalf("indexed %d files, want 2", total)
	}

	// A changed file is re-indexed, a removed one drops out.
	if err := store.Write("a.org", []byte("#+TITLE: Renamed\n")); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete("b.org"); err != nil {
		t.Fatal(err)
	}
	if err := Sync(db, store, cfg, logger); err != nil {
		t.Fatal(err)
	}

	rows, total, err := db.ListFiles(10, 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Fatalf("indexed %d files after resync, want 1", total)
	}
	if rows[0].Path != "a.org" || rows[0].Title != "Renamed" {
		t.Errorf("row = %+v", rows[0])
	}
}

func TestSync_UnchangedFileSkipped(t *testing.T) {
	db := openTestDB(t)
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Write("a.org", []byte("* A\n")); err != nil {
		t.Fatal(err)
	}

	logger := discardLogger()
	if err := Sync(db, store, org.DefaultConfig(), logger); err != nil {
		t.Fatal(err)
	}
	before, _ := db.AllChecksums()

	if err := Sync(db, store, org.DefaultConfig(), logger); err != nil {
		t.Fatal(err)
	}
	after, _ := db.AllChecksums()
	if before["a.org"] != after["a.org"] || after["a.org"] == "" {
		t.Errorf("checksums = %v then %v", before, after)
	}
}
