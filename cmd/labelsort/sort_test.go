package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/local/labelsorter/internal/pdfdoc"
	"github.com/local/labelsorter/internal/pdfdoc/pdfdoctest"
)

func execute(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSortRequiresInput(t *testing.T) {
	if _, err := execute("sort"); err == nil {
		t.Fatal("expected error without input file")
	}
}

func TestSortRejectsUnknownFormat(t *testing.T) {
	_, err := execute("sort", "labels.pdf", "--format", "html")
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Fatalf("err = %v", err)
	}
}

func TestSortRejectsNonPDF(t *testing.T) {
	in := filepath.Join(t.TempDir(), "labels.pdf")
	if err := os.WriteFile(in, []byte("plain text pretending to be a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := execute("sort", in, "-q")
	if err == nil || !strings.Contains(err.Error(), "not a PDF") {
		t.Fatalf("err = %v", err)
	}
}

func firstPageText(t *testing.T, path string) string {
	t.Helper()
	doc, err := pdfdoc.Open(path)
	if err != nil {
		t.Fatalf("Open(%s): %v", path, err)
	}
	defer doc.Close()
	text, err := doc.Text(0)
	if err != nil {
		t.Fatal(err)
	}
	return text
}

func TestSortWritesReorderedPDF(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "labels.pdf")
	out := filepath.Join(dir, "sorted.pdf")
	pdfdoctest.Write(t, in, "Shipment 1", "Zebra Lamp Deluxe", "Shipment 2", "Apple Kettle Pro", "orphan")

	stdout, err := execute("sort", in, "-o", out, "-q")
	if err != nil {
		t.Fatalf("sort: %v\n%s", err, stdout)
	}
	for _, want := range []string{"Apple Kettle Pro (x1): 1", "Zebra Lamp Deluxe (x1): 1", "total: 2 labels in 2 groups", "last page dropped"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
	if n, err := pdfdoc.PageCount(out); err != nil || n != 4 {
		t.Fatalf("PageCount(out) = %d, %v", n, err)
	}
	if got := firstPageText(t, out); !strings.Contains(got, "Shipment 2") {
		t.Fatalf("first page = %q", got)
	}
}

func TestSortOutputOverInput(t *testing.T) {
	in := filepath.Join(t.TempDir(), "labels.pdf")
	pdfdoctest.Write(t, in, "Shipment 1", "Zebra Lamp Deluxe", "Shipment 2", "Apple Kettle Pro")

	if _, err := execute("sort", in, "-o", in, "-q"); err != nil {
		t.Fatalf("sort: %v", err)
	}
	if n, err := pdfdoc.PageCount(in); err != nil || n != 4 {
		t.Fatalf("PageCount = %d, %v", n, err)
	}
	if got := firstPageText(t, in); !strings.Contains(got, "Shipment 2") {
		t.Fatalf("first page = %q", got)
	}
}

func TestSortSinglePage(t *testing.T) {
	in := filepath.Join(t.TempDir(), "labels.pdf")
	pdfdoctest.Write(t, in, "Shipment 1")

	_, err := execute("sort", in, "-q")
	if err == nil || !strings.Contains(err.Error(), "fewer than 2 pages") {
		t.Fatalf("err = %v", err)
	}
	if _, statErr := os.Stat(in); statErr != nil {
		t.Fatalf("input lost: %v", statErr)
	}
}
