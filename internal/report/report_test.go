package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/local/labelsorter/internal/labels"
)

var sample = []labels.GroupCount{
	{Name: "Беспроводные наушники TWS", Quantity: 1, Count: 3},
	{Name: "Беспроводные наушники TWS", Quantity: 2, Count: 1},
	{Name: "Кружка", Quantity: 1, Count: 2},
}

func TestOutputFilename(t *testing.T) {
	now := time.Date(2024, time.March, 7, 15, 4, 0, 0, time.UTC)
	tests := []struct {
		in, want string
	}{
		{"ozon_labels.pdf", "ozon_labels_sorted_07-03-2024.pdf"},
		{"/tmp/uploads/abc_Этикетки.PDF", "abc_Этикетки_sorted_07-03-2024.pdf"},
		{"archive.tar.pdf", "archive.tar_sorted_07-03-2024.pdf"},
		{"noext", "noext_sorted_07-03-2024.pdf"},
		{"", "labels_sorted_07-03-2024.pdf"},
	}
	for _, tt := range tests {
		if got := OutputFilename(tt.in, now); got != tt.want {
			t.Errorf("OutputFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	if err := Text(&buf, sample); err != nil {
		t.Fatal(err)
	}
	want := "Беспроводные наушники TWS (x1): 3\n" +
		"Беспроводные наушники TWS (x2): 1\n" +
		"Кружка (x1): 2\n" +
		"total: 6 labels in 3 groups\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown(&buf, "Label groups", sample); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, s := range []string{"# Label groups", "Кружка", "x2", "Total: 6 labels in 3 groups."} {
		if !strings.Contains(out, s) {
			t.Errorf("markdown output missing %q:\n%s", s, out)
		}
	}
}
