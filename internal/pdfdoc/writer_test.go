package pdfdoc

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/local/labelsorter/internal/pdfdoc/pdfdoctest"
)

func pageTexts(t *testing.T, path string) []string {
	t.Helper()
	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Open(%s): %v", path, err)
	}
	defer doc.Close()
	texts := make([]string, doc.NumPage())
	for i := range texts {
		if texts[i], err = doc.Text(i); err != nil {
			t.Fatalf("Text(%d): %v", i, err)
		}
	}
	return texts
}

func assertPages(t *testing.T, path string, want ...string) {
	t.Helper()
	got := pageTexts(t, path)
	if len(got) != len(want) {
		t.Fatalf("%s has %d pages, want %d", path, len(got), len(want))
	}
	for i := range want {
		if !strings.Contains(got[i], want[i]) {
			t.Errorf("page %d = %q, want it to contain %q", i, got[i], want[i])
		}
	}
}

func TestPageCount(t *testing.T) {
	in := filepath.Join(t.TempDir(), "labels.pdf")
	pdfdoctest.Write(t, in, "slip one", "label one", "slip two")
	n, err := PageCount(in)
	if err != nil || n != 3 {
		t.Fatalf("PageCount = %d, %v", n, err)
	}
	if _, err := PageCount(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReorder(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "labels.pdf")
	pdfdoctest.Write(t, in, "slip one", "label one", "slip two", "label two")

	src, err := os.Open(in)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()
	var buf bytes.Buffer
	if err := Reorder(src, &buf, []int{2, 3, 0, 1}); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	out := filepath.Join(dir, "sorted.pdf")
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	assertPages(t, out, "slip two", "label two", "slip one", "label one")
	assertPages(t, in, "slip one", "label one", "slip two", "label two")
}

func TestReorderFileDropsUnlistedPages(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "labels.pdf")
	out := filepath.Join(dir, "sorted.pdf")
	pdfdoctest.Write(t, in, "slip one", "label one", "slip two", "label two", "orphan")

	if err := ReorderFile(in, out, []int{2, 3, 0, 1}); err != nil {
		t.Fatalf("ReorderFile: %v", err)
	}
	assertPages(t, out, "slip two", "label two", "slip one", "label one")
}

func TestReorderFileInPlace(t *testing.T) {
	in := filepath.Join(t.TempDir(), "labels.pdf")
	pdfdoctest.Write(t, in, "slip one", "label one", "slip two", "label two")

	if err := ReorderFile(in, in, []int{2, 3, 0, 1}); err != nil {
		t.Fatalf("ReorderFile: %v", err)
	}
	assertPages(t, in, "slip two", "label two", "slip one", "label one")
}

func TestReorderFileFailureKeepsInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "labels.pdf")
	broken := []byte("%PDF-1.4\nthis is not a real document\n")
	if err := os.WriteFile(in, broken, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ReorderFile(in, in, []int{0, 1}); err == nil {
		t.Fatal("expected error for broken PDF")
	}
	got, err := os.ReadFile(in)
	if err != nil {
		t.Fatalf("input lost: %v", err)
	}
	if !bytes.Equal(got, broken) {
		t.Fatalf("input changed: %q", got)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("leftover files: %v", entries)
	}
}
