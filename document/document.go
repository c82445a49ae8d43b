// Package document loads a file and produces the two representations the
// viewer works over: a single flat extracted text and the list of pages, each
// page carrying its half-open byte range into that text. Extraction is
// best-effort: an unreadable or malformed document degrades to its raw bytes
// rather than failing, so the file stays viewable.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Page is one page of the paginated rendering. Number is 1-based. Start and
// End delimit the page's text inside Document.Text, so character offsets in
// the flat text map directly onto pages.
type Page struct {
	Number int
	Start  int
	End    int
	Text   string
}

// Document is the loaded, immutable document state shared read-only by the
// query engine and both highlight projectors for the life of a view.
type Document struct {
	Path  string
	Text  string
	Pages []Page
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int { return len(d.Pages) }

// PageAt returns the 1-based page containing the given byte offset into Text.
func (d *Document) PageAt(offset int) int {
	for _, pg := range d.Pages {
		if offset < pg.End {
			return pg.Number
		}
	}
	if n := len(d.Pages); n > 0 {
		return n
	}
	return 1
}

// pageSeparator joins page texts in the flat representation. Offsets of the
// pages tile Text exactly, with one separator between consecutive pages.
const pageSeparator = "\n\n"

// Load reads and extracts a document. The extension selects an extractor
// from the registry; unknown extensions are treated as plain text.
func Load(path string, reg *ExtractorRegistry) (*Document, error) {
	if reg == nil {
		reg = NewExtractorRegistry()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	extractor, ok := reg.Get(ext)
	if !ok {
		extractor = &TextExtractor{}
	}

	pageTexts, err := extractor.Extract(data)
	if err != nil || len(pageTexts) == 0 {
		// Degrade to cleaned raw bytes as a single page run; the document
		// must remain viewable regardless of extraction health.
		pageTexts = splitByLength(Clean(string(data)), charsPerPage)
	}
	for i, pt := range pageTexts {
		pageTexts[i] = Clean(pt)
	}

	text, pgs := paginate(pageTexts)
	return &Document{Path: path, Text: text, Pages: pgs}, nil
}

// paginate assembles the flat text from per-page texts and records each
// page's offset range.
func paginate(pageTexts []string) (string, []Page) {
	if len(pageTexts) == 0 {
		pageTexts = []string{""}
	}
	var b strings.Builder
	pgs := make([]Page, 0, len(pageTexts))
	for i, pt := range pageTexts {
		if i > 0 {
			b.WriteString(pageSeparator)
		}
		start := b.Len()
		b.WriteString(pt)
		pgs = append(pgs, Page{Number: i + 1, Start: start, End: b.Len(), Text: pt})
	}
	return b.String(), pgs
}

// Page-size heuristics for formats without native pagination.
const (
	charsPerPage = 3000
	wordsPerPage = 500
)

// splitByLength slices text into page-sized chunks at word boundaries.
func splitByLength(text string, chunk int) []string {
	text = strings.TrimSpace(text)
	if len(text) <= chunk {
		return []string{text}
	}
	var out []string
	for len(text) > chunk {
		cut := chunk
		// Back up to a whitespace boundary when one is near.
		if i := strings.LastIndexAny(text[:cut], " \n\t"); i > chunk/2 {
			cut = i
		}
		out = append(out, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

// splitByWords slices text into pages of roughly n words each.
func splitByWords(text string, n int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{strings.TrimSpace(text)}
	}
	var out []string
	for start := 0; start < len(words); start += n {
		end := start + n
		if end > len(words) {
			end = len(words)
		}
		out = append(out, strings.Join(words[start:end], " "))
	}
	return out
}
