package docstore

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCorpus(t *testing.T, files map[string]string) *Store {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write corpus file: %v", err)
		}
	}
	return New(dir)
}

func TestReadDocument(t *testing.T) {
	store := writeCorpus(t, map[string]string{"akademik_takvim.txt": "final sınavları ocak ayında"})

	text, err := store.ReadDocument("akademik_takvim.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "final sınavları ocak ayında" {
		t.Fatalf("unexpected document text: %q", text)
	}
}

func TestReadDocumentRejectsTraversal(t *testing.T) {
	store := writeCorpus(t, map[string]string{"doc.txt": "content"})

	for _, name := range []string{"", "../doc.txt", "sub/doc.txt", ".hidden"} {
		if _, err := store.ReadDocument(name); err == nil {
			t.Fatalf("expected error for name %q", name)
		}
	}
}

func TestReadDocumentMissing(t *testing.T) {
	store := writeCorpus(t, nil)
	if _, err := store.ReadDocument("nope.txt"); err == nil {
		t.Fatal("expected error for missing document")
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	store := writeCorpus(t, map[string]string{
		"zeta.txt":   "z",
		"alpha.txt":  "a",
		"notes.md":   "ignored",
		"binary.pdf": "ignored",
	})

	names, err := store.List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 documents, got %v", names)
	}
	if names[0] != "alpha.txt" || names[1] != "zeta.txt" {
		t.Fatalf("expected sorted names, got %v", names)
	}
}
