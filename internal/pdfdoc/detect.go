package pdfdoc

import (
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

// ErrNotPDF is returned for inputs whose magic bytes are not a PDF.
var ErrNotPDF = errors.New("not a PDF document")

const pdfMIME = "application/pdf"

// Detect checks the actual file type using magic bytes, not the filename.
func Detect(path string) error {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return fmt.Errorf("failed to detect file type: %w", err)
	}

	log.Debug().Str("mime", mtype.String()).Str("file", path).Msg("detected file type")

	if !mtype.Is(pdfMIME) {
		return fmt.Errorf("%w: detected %s", ErrNotPDF, mtype.String())
	}
	return nil
}
