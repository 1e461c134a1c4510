package resume

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrMalformedDocument is returned when the bytes cannot be read as a PDF.
var ErrMalformedDocument = errors.New("malformed document")

// Word characters include non-ASCII letters and digits, so josé@corp.com matches whole.
var emailPattern = regexp.MustCompile(`[\p{L}\p{N}_.-]+@[\p{L}\p{N}_.-]+`)

// ExtractText concatenates the plain text of every page in page order.
// Pages without text contribute nothing.
func ExtractText(data []byte) (text string, err error) {
	// The PDF reader panics on some broken cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrMalformedDocument, r)
		}
	}()

	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty payload", ErrMalformedDocument)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %w", ErrMalformedDocument, i, err)
		}
		builder.WriteString(content)
	}

	return builder.String(), nil
}

// ExtractEmail returns the first e-mail looking substring of text.
func ExtractEmail(text string) (string, bool) {
	match := emailPattern.FindString(text)
	return match, match != ""
}
