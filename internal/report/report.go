package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"

	"github.com/local/labelsorter/internal/labels"
)

// OutputSuffix is inserted between the input name and the date in OutputFilename.
const OutputSuffix = "_sorted_"

// dateLayout renders DD-MM-YYYY.
const dateLayout = "02-01-2006"

// OutputFilename derives the download name for a sorted document:
// input base name without extension, OutputSuffix, the date, ".pdf".
func OutputFilename(input string, now time.Time) string {
	base := filepath.Base(input)
	if base == "." || base == string(filepath.Separator) {
		base = ""
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		base = "labels"
	}
	return base + OutputSuffix + now.Format(dateLayout) + ".pdf"
}

// Total sums label counts over groups.
func Total(groups []labels.GroupCount) int {
	n := 0
	for _, g := range groups {
		n += g.Count
	}
	return n
}

// Text writes one "name (xqty): count" line per group followed by a total line.
func Text(w io.Writer, groups []labels.GroupCount) error {
	for _, g := range groups {
		if _, err := fmt.Fprintln(w, g.String()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "total: %d labels in %d groups\n", Total(groups), len(groups))
	return err
}

// Markdown writes the grouping summary as a markdown document with one table row per group.
func Markdown(w io.Writer, title string, groups []labels.GroupCount) error {
	md := markdown.NewMarkdown(w)

	md.H1(title)
	md.PlainText("")

	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{g.Name, "x" + strconv.Itoa(g.Quantity), strconv.Itoa(g.Count)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Product", "Quantity", "Labels"},
		Rows:   rows,
	})
	md.PlainText("")
	md.PlainText(fmt.Sprintf("Total: %d labels in %d groups.", Total(groups), len(groups)))

	return md.Build()
}
