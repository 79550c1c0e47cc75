package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yndnr/scratchkeep/internal/core/domain"
)

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "b.txt"), []byte("bee"), 0600)
	os.WriteFile(filepath.Join(dir, "a.txt"), []byte("ay"), 0600)
	os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0600)
	os.Mkdir(filepath.Join(dir, "sub"), 0700)

	w, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	names := w.Names()
	if len(names) != 2 || names[0] != "a.txt" || names[1] != "b.txt" {
		t.Fatalf("Names() = %v, want [a.txt b.txt]", names)
	}
	b, _ := w.Buffer("b.txt")
	if got := b.Content(false).Text; got != "bee" {
		t.Errorf("b.txt = %q, want bee", got)
	}
}

func TestLoadDir_Missing(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	if !domain.IsNotFound(err) {
		t.Errorf("LoadDir error = %v, want ErrNotFound", err)
	}
}

func TestLoadFile_UnchangedStaysClean(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a"), []byte("same"), 0600)

	w, err := LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	w.MarkNotModified([]string{"a"})

	if err := w.LoadFile(dir, "a"); err != nil {
		t.Fatal(err)
	}
	b, _ := w.Buffer("a")
	if b.Modified() {
		t.Error("reloading identical text should not mark the buffer modified")
	}

	os.WriteFile(filepath.Join(dir, "a"), []byte("different"), 0600)
	if err := w.LoadFile(dir, "a"); err != nil {
		t.Fatal(err)
	}
	if !b.Modified() {
		t.Error("reloading new text should mark the buffer modified")
	}
}

func TestWriteDir(t *testing.T) {
	w := New()
	w.Create("one").SetText("1")
	w.Create("two").SetText("2")

	dir := filepath.Join(t.TempDir(), "out")
	if err := WriteDir(dir, w); err != nil {
		t.Fatalf("WriteDir: %v", err)
	}

	back, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	for _, name := range []string{"one", "two"} {
		orig, _ := w.Buffer(name)
		got, ok := back.Buffer(name)
		if !ok || got.Content(false).Text != orig.Content(false).Text {
			t.Errorf("buffer %q did not round-trip", name)
		}
	}
}

func TestWriteDir_RejectsPathNames(t *testing.T) {
	w := New()
	w.Create("../escape").SetText("x")

	if err := WriteDir(t.TempDir(), w); err == nil {
		t.Error("WriteDir should reject names containing separators")
	}
}
