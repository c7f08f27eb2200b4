package resolve

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"scribe/internal/ocr"
)

// DisplayTitle derives a human-readable title from a document reference,
// used in CLI tables and API payloads. URLs pass through unchanged.
func DisplayTitle(doc ocr.Document) string {
	if doc.Type == ocr.DocumentURL {
		return doc.URL
	}

	base := filepath.Base(doc.Path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return filepath.Base(doc.Path)
	}
	return cases.Title(language.Und).String(title)
}
