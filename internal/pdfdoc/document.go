package pdfdoc

import (
	"errors"
	"fmt"
	"sync"

	fitz "github.com/gen2brain/go-fitz"
)

// Source is an opened backend document.
type Source interface {
	NumPage() int
	Text(page int) (string, error)
	Close() error
}

// Opener abstracts opening a PDF path into a Source.
type Opener interface {
	Open(path string) (Source, error)
}

// defaultOpener is MuPDF via go-fitz; tests swap it out.
var defaultOpener Opener = fitzOpener{}

// setDefaultOpener allows swapping the default opener, useful for tests or alternate backends.
func setDefaultOpener(o Opener) { defaultOpener = o }

// Document is a read-only paged document. Page text access is serialized,
// so it can be shared by concurrent extraction workers.
type Document struct {
	path string
	src  Source
	mu   sync.Mutex
}

// Open opens the PDF at path for page text extraction.
func Open(path string) (*Document, error) {
	if defaultOpener == nil {
		return nil, errors.New("no PDF opener configured")
	}
	src, err := defaultOpener.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return &Document{path: path, src: src}, nil
}

// Path returns the file the document was opened from.
func (d *Document) Path() string { return d.path }

// NumPage returns the number of pages.
func (d *Document) NumPage() int { return d.src.NumPage() }

// Text returns the raw text of a 0-based page.
func (d *Document) Text(page int) (string, error) {
	if page < 0 || page >= d.src.NumPage() {
		return "", fmt.Errorf("page %d out of range (document has %d pages)", page+1, d.src.NumPage())
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	text, err := d.src.Text(page)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from page %d: %w", page+1, err)
	}
	return text, nil
}

// Close releases the backend document.
func (d *Document) Close() error { return d.src.Close() }

// fitzOpener implements Opener using github.com/gen2brain/go-fitz.
type fitzOpener struct{}

func (fitzOpener) Open(path string) (Source, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}
