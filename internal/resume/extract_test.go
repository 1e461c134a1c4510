package resume

import (
	"errors"
	"strings"
	"testing"

	"github.com/spigell/ats-screener/internal/resume/resumetest"
)

func TestExtractText(t *testing.T) {
	t.Parallel()

	text, err := ExtractText(resumetest.PDF("Jane Doe jane@corp.com"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "jane@corp.com") {
		t.Fatalf("expected e-mail in extracted text, got %q", text)
	}
}

func TestExtractTextKeepsPageOrderAndSkipsEmptyPages(t *testing.T) {
	t.Parallel()

	text, err := ExtractText(resumetest.PDF("first page", "", "third page"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := strings.Index(text, "first page")
	third := strings.Index(text, "third page")
	if first == -1 || third == -1 {
		t.Fatalf("expected both pages in text, got %q", text)
	}
	if first > third {
		t.Fatalf("expected page order to be preserved, got %q", text)
	}
}

func TestExtractTextMalformed(t *testing.T) {
	t.Parallel()

	for name, payload := range map[string][]byte{
		"empty":     nil,
		"html":      []byte("<html><body>nope</body></html>"),
		"truncated": resumetest.PDF("cut here")[:40],
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := ExtractText(payload)
			if !errors.Is(err, ErrMalformedDocument) {
				t.Fatalf("expected ErrMalformedDocument, got %v", err)
			}
		})
	}
}

func TestExtractEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		text  string
		want  string
		found bool
	}{
		{name: "single", text: "Contact: name@example.com", want: "name@example.com", found: true},
		{name: "first wins", text: "a.b-c@one.org then x@two.org", want: "a.b-c@one.org", found: true},
		{name: "underscores", text: "mail jane_doe@corp.co.uk now", want: "jane_doe@corp.co.uk", found: true},
		{name: "non-ascii local part", text: "Contact: josé@corp.com", want: "josé@corp.com", found: true},
		{name: "non-ascii domain", text: "почта: иван@пример.рф", want: "иван@пример.рф", found: true},
		{name: "none", text: "no contact details here"},
		{name: "empty", text: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ExtractEmail(tt.text)
			if ok != tt.found {
				t.Fatalf("expected found=%v, got %v", tt.found, ok)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
