package pdfdoc

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type stubSource struct {
	pages  []string
	closed bool
}

func (s *stubSource) NumPage() int { return len(s.pages) }
func (s *stubSource) Text(i int) (string, error) {
	if s.pages[i] == "!" {
		return "", errors.New("bad stream")
	}
	return s.pages[i], nil
}
func (s *stubSource) Close() error {
	s.closed = true
	return nil
}

type stubOpener struct{ src *stubSource }

func (o stubOpener) Open(string) (Source, error) { return o.src, nil }

func withOpener(t *testing.T, o Opener) {
	t.Helper()
	prev := defaultOpener
	setDefaultOpener(o)
	t.Cleanup(func() { setDefaultOpener(prev) })
}

func TestDocumentText(t *testing.T) {
	src := &stubSource{pages: []string{"slip", "label", "!"}}
	withOpener(t, stubOpener{src: src})

	doc, err := Open("labels.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if doc.NumPage() != 3 || doc.Path() != "labels.pdf" {
		t.Fatalf("unexpected document %d pages, path %q", doc.NumPage(), doc.Path())
	}
	if got, err := doc.Text(1); err != nil || got != "label" {
		t.Fatalf("Text(1) = %q, %v", got, err)
	}
	if _, err := doc.Text(2); err == nil {
		t.Fatal("expected backend error to surface")
	}
	if _, err := doc.Text(3); err == nil {
		t.Fatal("expected out of range error")
	}
	if err := doc.Close(); err != nil || !src.closed {
		t.Fatalf("Close: %v, closed=%v", err, src.closed)
	}
}

func TestOpenWithoutOpener(t *testing.T) {
	withOpener(t, nil)
	if _, err := Open("x.pdf"); err == nil {
		t.Fatal("expected error without opener")
	}
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()

	pdf := filepath.Join(dir, "labels.pdf")
	if err := os.WriteFile(pdf, []byte("%PDF-1.4\n1 0 obj\n<< >>\nendobj\n%%EOF\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Detect(pdf); err != nil {
		t.Fatalf("Detect(pdf): %v", err)
	}

	txt := filepath.Join(dir, "labels.pdf.txt")
	if err := os.WriteFile(txt, []byte("just some plain text, not a document"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Detect(txt); !errors.Is(err, ErrNotPDF) {
		t.Fatalf("Detect(txt) = %v, want ErrNotPDF", err)
	}

	if err := Detect(filepath.Join(dir, "missing.pdf")); err == nil || errors.Is(err, ErrNotPDF) {
		t.Fatalf("Detect(missing) = %v", err)
	}
}

func TestPageSelection(t *testing.T) {
	sel, err := pageSelection([]int{4, 5, 0, 1})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"5", "6", "1", "2"}; !reflect.DeepEqual(sel, want) {
		t.Fatalf("sel = %v, want %v", sel, want)
	}
	if _, err := pageSelection(nil); err == nil {
		t.Fatal("empty order must fail")
	}
	if _, err := pageSelection([]int{-1}); err == nil {
		t.Fatal("negative index must fail")
	}
}
