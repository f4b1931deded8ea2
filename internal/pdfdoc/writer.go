package pdfdoc

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog/log"
)

// PageCount returns the number of pages of the PDF at path.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("pdf page count failed: %w", err)
	}
	return n, nil
}

// Reorder writes a new PDF to w holding the pages of src in the given 0-based order.
// Page content is copied as is; src is only read.
func Reorder(src io.ReadSeeker, w io.Writer, order []int) error {
	sel, err := pageSelection(order)
	if err != nil {
		return err
	}
	conf := model.NewDefaultConfiguration()
	if err := api.Collect(src, w, sel, conf); err != nil {
		return fmt.Errorf("pdf reorder failed: %w", err)
	}
	return nil
}

// ReorderFile is Reorder between two paths. The result is written to a temp file
// next to outPath and renamed over it, so inPath is never truncated, even when
// both name the same file.
func ReorderFile(inPath, outPath string, order []int) error {
	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(outPath), ".reorder-*.pdf")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	_ = tmp.Chmod(0o644)
	if err := Reorder(in, tmp, order); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("pdf reorder: %w", err)
	}
	log.Debug().Str("in", inPath).Str("out", outPath).Int("pages", len(order)).Msg("wrote reordered PDF")
	return nil
}

// pageSelection converts 0-based indices into pdfcpu's 1-based page selection.
func pageSelection(order []int) ([]string, error) {
	if len(order) == 0 {
		return nil, fmt.Errorf("pdf reorder: empty page order")
	}
	sel := make([]string, len(order))
	for i, p := range order {
		if p < 0 {
			return nil, fmt.Errorf("pdf reorder: invalid page index %d", p)
		}
		sel[i] = strconv.Itoa(p + 1)
	}
	return sel, nil
}
