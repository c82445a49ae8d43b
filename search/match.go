// Package search implements the query-and-match core of the viewer: the
// match model, the literal and semantic query engines, the per-view search
// session, and the worker bridge that keeps query execution off the UI loop.
package search

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Mode selects how a query is executed against the document text.
type Mode int

const (
	// ModeLiteral is a case-insensitive substring search.
	ModeLiteral Mode = iota
	// ModeSemantic delegates to a SemanticMatcher.
	ModeSemantic
)

func (m Mode) String() string {
	if m == ModeSemantic {
		return "semantic"
	}
	return "literal"
}

// Query is a raw search request as typed by the user.
type Query struct {
	Text string
	Mode Mode
}

// Match is a single located occurrence of a query in the document text.
// Start and End are byte offsets into the flat extracted text, half-open.
// Index is the match's position in document order and is the stable identity
// used for highlight lookup and active-match tracking.
type Match struct {
	Index int
	Start int
	End   int
}

// Normalize produces the canonical form of a query string used for cache
// lookups and dispatch decisions: trimmed and Unicode case-folded.
func Normalize(text string) string {
	return cases.Fold().String(strings.TrimSpace(text))
}

// Engine executes queries against document text. The zero value handles
// literal queries; Semantic supplies the alternate executor for ModeSemantic.
type Engine struct {
	Semantic SemanticMatcher
}

// Find returns every match of q in text, non-overlapping, sorted ascending by
// Start, with stable indices assigned. An empty or whitespace-only query, an
// empty document, or a query longer than the document all yield no matches.
func (e *Engine) Find(text string, q Query) []Match {
	needle := strings.TrimSpace(q.Text)
	if needle == "" || text == "" {
		return nil
	}
	if q.Mode == ModeSemantic {
		return e.findSemantic(text, needle)
	}
	return FindLiteral(text, needle)
}

func (e *Engine) findSemantic(text, query string) []Match {
	if e.Semantic == nil {
		return nil
	}
	spans, err := e.Semantic.Match(text, query)
	if err != nil {
		return nil
	}
	return IndexSpans(spans, len(text))
}

// FindLiteral scans text left to right for case-insensitive occurrences of
// query. Occurrences never overlap: after a match ending at end, the scan
// resumes at end rather than start+1.
func FindLiteral(text, query string) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	lowText := strings.ToLower(text)
	lowQuery := strings.ToLower(query)
	if len(lowText) == len(text) && len(lowQuery) == len(query) {
		if len(query) > len(text) {
			return nil
		}
		// Lowercasing preserved byte offsets, so a plain index scan on the
		// lowered copies yields offsets valid for the original text.
		return findLowered(lowText, lowQuery)
	}
	// Byte lengths are meaningless across folds (Kelvin sign vs 'k'), so the
	// too-long precheck compares runes here.
	if utf8.RuneCountInString(query) > utf8.RuneCountInString(text) {
		return nil
	}
	return findFolded(text, query)
}

func findLowered(text, query string) []Match {
	var matches []Match
	pos := 0
	for pos < len(text) {
		i := strings.Index(text[pos:], query)
		if i < 0 {
			break
		}
		start := pos + i
		end := start + len(query)
		matches = append(matches, Match{Index: len(matches), Start: start, End: end})
		pos = end
	}
	return matches
}

// findFolded is the slow path for texts or queries whose lowercase form does
// not preserve byte length (e.g. İ). It fold-compares rune by rune at each
// candidate position.
func findFolded(text, query string) []Match {
	var matches []Match
	i := 0
	for i < len(text) {
		if n := foldPrefixLen(text[i:], query); n > 0 {
			matches = append(matches, Match{Index: len(matches), Start: i, End: i + n})
			i += n
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return matches
}

// foldPrefixLen reports the byte length of the prefix of s that matches query
// under Unicode simple folding, or -1 if s does not start with query.
func foldPrefixLen(s, query string) int {
	i := 0
	for _, qr := range query {
		if i >= len(s) {
			return -1
		}
		sr, size := utf8.DecodeRuneInString(s[i:])
		if !foldEqual(sr, qr) {
			return -1
		}
		i += size
	}
	return i
}

func foldEqual(a, b rune) bool {
	if a == b {
		return true
	}
	if unicode.ToLower(a) == unicode.ToLower(b) {
		return true
	}
	for r := unicode.SimpleFold(a); r != a; r = unicode.SimpleFold(r) {
		if r == b {
			return true
		}
	}
	return false
}

// IndexSpans turns raw spans from an external matcher into the canonical
// match list: clamped to the text, sorted ascending by start, overlaps
// dropped (earliest span wins), stable indices assigned.
func IndexSpans(spans []Span, textLen int) []Match {
	valid := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Start < 0 {
			s.Start = 0
		}
		if s.End > textLen {
			s.End = textLen
		}
		if s.Start >= s.End {
			continue
		}
		valid = append(valid, s)
	}
	sort.Slice(valid, func(i, j int) bool {
		if valid[i].Start != valid[j].Start {
			return valid[i].Start < valid[j].Start
		}
		return valid[i].End < valid[j].End
	})

	matches := make([]Match, 0, len(valid))
	prevEnd := 0
	for _, s := range valid {
		if len(matches) > 0 && s.Start < prevEnd {
			continue
		}
		matches = append(matches, Match{Index: len(matches), Start: s.Start, End: s.End})
		prevEnd = s.End
	}
	if len(matches) == 0 {
		return nil
	}
	return matches
}
