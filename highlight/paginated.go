package highlight

import (
	"sort"
	"strings"
	"unicode/utf8"

	"docview/document"
	"docview/pages"
	"docview/search"
)

// PageSpan is one highlight range inside a single rendered page, in
// page-local byte offsets. A match that crosses a page boundary contributes
// one span per page, each carrying the same match index.
type PageSpan struct {
	Start      int
	End        int
	MatchIndex int
	Active     bool
}

// PageProjector applies highlight spans to the pages of the currently
// visible window. It never touches pages outside the window: a match on an
// unrendered page stays unhighlighted until that page scrolls in and the next
// Apply pass picks it up. The projector owns its per-page state alone and
// shares nothing with the text-view registry.
type PageProjector struct {
	applied map[int][]PageSpan
}

func NewPageProjector() *PageProjector {
	return &PageProjector{applied: make(map[int][]PageSpan)}
}

// Apply recomputes highlight spans for every page in the window. It must be
// re-run whenever the window, the match list, or the active index changes; a
// cleared query clears all spans instead. Pages referenced by the window but
// not (yet) present in pgs are skipped this pass and converge on the next
// recomputation once the renderer has mounted them.
func (p *PageProjector) Apply(win pages.Window, pgs []document.Page, matches []search.Match, activeIndex int, query string) {
	if strings.TrimSpace(query) == "" || len(matches) == 0 {
		p.Clear()
		return
	}

	next := make(map[int][]PageSpan, len(win.VisiblePages))
	for num := range win.VisiblePages {
		if num < 1 || num > len(pgs) {
			continue
		}
		pg := pgs[num-1]
		spans := pageSpans(pg, matches, activeIndex)
		if len(spans) > 0 {
			next[num] = spans
		}
	}
	p.applied = next
}

// pageSpans intersects the ordered match list with one page's offset range
// and rebases the overlaps to page-local coordinates.
func pageSpans(pg document.Page, matches []search.Match, activeIndex int) []PageSpan {
	// First match that could still overlap the page.
	first := sort.Search(len(matches), func(i int) bool { return matches[i].End > pg.Start })

	var spans []PageSpan
	for _, m := range matches[first:] {
		if m.Start >= pg.End {
			break
		}
		start := m.Start
		if start < pg.Start {
			start = pg.Start
		}
		end := m.End
		if end > pg.End {
			end = pg.End
		}
		spans = append(spans, PageSpan{
			Start:      start - pg.Start,
			End:        end - pg.Start,
			MatchIndex: m.Index,
			Active:     m.Index == activeIndex,
		})
	}
	return spans
}

// Clear drops all highlight spans. Safe to call repeatedly and when nothing
// is highlighted.
func (p *PageProjector) Clear() {
	p.applied = make(map[int][]PageSpan)
}

// Spans returns the highlight spans applied to a page, nil when the page is
// outside the window or has no matches.
func (p *PageProjector) Spans(page int) []PageSpan {
	return p.applied[page]
}

// Line is one wrapped display line of a page, with its half-open byte range
// into the page text. Wrapped lines are the terminal analogue of the text
// nodes a page renderer fragments its text into.
type Line struct {
	Start int
	End   int
	Text  string
}

// LayoutPage wraps page text into display lines no wider than width runes,
// breaking at spaces where possible and keeping byte offsets for every line.
func LayoutPage(text string, width int) []Line {
	if width <= 0 {
		width = 80
	}
	var lines []Line
	lineStart := 0
	lastSpace := -1
	col := 0

	for i, r := range text {
		if r == '\n' {
			lines = append(lines, Line{Start: lineStart, End: i, Text: text[lineStart:i]})
			lineStart = i + 1
			col = 0
			lastSpace = -1
			continue
		}
		col++
		if r == ' ' {
			lastSpace = i
		}
		if col > width {
			if lastSpace > lineStart {
				lines = append(lines, Line{Start: lineStart, End: lastSpace, Text: text[lineStart:lastSpace]})
				lineStart = lastSpace + 1
			} else {
				// No space to break at: hard-break before the current rune.
				lines = append(lines, Line{Start: lineStart, End: i, Text: text[lineStart:i]})
				lineStart = i
			}
			if lineStart > i {
				// The break consumed the current rune (a space at the
				// boundary); the new line starts empty.
				col = 0
			} else {
				col = utf8.RuneCountInString(text[lineStart:i]) + 1
			}
			lastSpace = -1
		}
	}
	if lineStart < len(text) || len(lines) == 0 {
		lines = append(lines, Line{Start: lineStart, End: len(text), Text: text[lineStart:]})
	}
	return lines
}

// LineFragments slices one display line at the boundaries of the spans that
// intersect it, producing the same fragment shape the text view renders.
func LineFragments(line Line, spans []PageSpan) []Fragment {
	var fragments []Fragment
	prev := line.Start
	for _, sp := range spans {
		if sp.End <= line.Start || sp.Start >= line.End {
			continue
		}
		start := sp.Start
		if start < line.Start {
			start = line.Start
		}
		end := sp.End
		if end > line.End {
			end = line.End
		}
		if start > prev {
			fragments = append(fragments, Fragment{Kind: KindText, Content: line.Text[prev-line.Start : start-line.Start], MatchIndex: -1})
		}
		fragments = append(fragments, Fragment{
			Kind:       KindHighlight,
			Content:    line.Text[start-line.Start : end-line.Start],
			MatchIndex: sp.MatchIndex,
			Active:     sp.Active,
		})
		prev = end
	}
	if prev < line.End {
		fragments = append(fragments, Fragment{Kind: KindText, Content: line.Text[prev-line.Start:], MatchIndex: -1})
	}
	if len(fragments) == 0 && line.Text != "" {
		fragments = []Fragment{{Kind: KindText, Content: line.Text, MatchIndex: -1}}
	}
	return fragments
}
