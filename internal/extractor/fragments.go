// Package extractor turns a statement PDF into per-page collections of
// positioned text fragments, the substrate the geometric parser works
// on. Positions are reported in PDF page space: bottom-left origin, Y
// increasing upward.
package extractor

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/harborview-tools/statement-extractor/internal/geometry"
)

// ExtractFragments reads a PDF file and returns each page's positioned
// text fragments. The structured library is tried first; if it fails or
// yields unreadable text, the raw content-stream decoder takes over.
// Garbage output is never returned: unreadable text means the file is
// image-based or uses font encodings we cannot decode.
func ExtractFragments(filePath string) ([]geometry.Page, error) {
	pages, libErr := extractWithLibrary(filePath)
	if libErr == nil && isReadable(pages) {
		return pages, nil
	}

	rawPages, rawErr := ExtractFragmentsRaw(filePath)
	if rawErr == nil && isReadable(rawPages) {
		return rawPages, nil
	}

	if libErr != nil {
		return nil, fmt.Errorf("PDF text extraction failed: %v; the file may be image-based or use custom font encodings", libErr)
	}
	return nil, fmt.Errorf("no readable text could be extracted from PDF; the file may be image-based or use custom font encodings")
}

// extractWithLibrary uses ledongthuc/pdf's content API, which reports
// every text object with its X/Y position.
func extractWithLibrary(filePath string) (pages []geometry.Page, err error) {
	// The library panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, openErr := pdf.Open(filePath)
	if openErr != nil {
		return nil, openErr
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		var frags geometry.Fragments
		for _, t := range page.Content().Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			frags = append(frags, geometry.Fragment{
				Position: geometry.Point{X: t.X, Y: t.Y},
				Text:     t.S,
			})
		}
		pages = append(pages, geometry.Page{Number: i, Fragments: frags})
	}
	return pages, nil
}

// statementWords appear in virtually all bank statements. Extracted text
// containing none of them is likely mis-decoded.
var statementWords = []string{
	"statement", "balance", "account", "date", "amount", "credit",
	"debit", "check", "deposit", "withdrawal", "total", "transaction",
}

// isReadable checks that the fragments carry enough text, that it is
// mostly plain ASCII rather than decode garbage, and that at least one
// recognizable statement word is present.
func isReadable(pages []geometry.Page) bool {
	total, readable := 0, 0
	var combined strings.Builder
	for _, page := range pages {
		for _, f := range page.Fragments {
			combined.WriteString(strings.ToLower(f.Text))
			combined.WriteByte(' ')
			for _, r := range f.Text {
				total++
				if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
					(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
					strings.ContainsRune(".,-/:;()'\"$%&@#!?+=*", r) {
					readable++
				}
			}
		}
	}
	if total <= 50 {
		return false
	}
	if float64(readable)/float64(total) <= 0.6 {
		return false
	}
	text := combined.String()
	for _, word := range statementWords {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}
