// Package highlight turns match lists into renderable fragments for the two
// document views. The flat text view consumes ordered fragments produced by
// slicing the extracted text at match boundaries; the paginated view re-derives
// per-page highlight spans over the currently visible window only.
package highlight

import "docview/search"

// Kind discriminates plain text from highlighted fragments.
type Kind int

const (
	KindText Kind = iota
	KindHighlight
)

// Fragment is one renderable slice of document text. Highlight fragments
// carry the stable match index and whether they belong to the active match.
// Fragments are derived values: regenerated on input change, never mutated.
type Fragment struct {
	Kind       Kind
	Content    string
	MatchIndex int
	Active     bool
}

// Project slices text at match boundaries: a Text fragment for each gap, a
// Highlight fragment for each match span, and a trailing Text fragment for
// the suffix. Matches must be non-overlapping and sorted ascending by Start.
func Project(text string, matches []search.Match, activeIndex int) []Fragment {
	if len(matches) == 0 {
		if text == "" {
			return nil
		}
		return []Fragment{{Kind: KindText, Content: text, MatchIndex: -1}}
	}

	fragments := make([]Fragment, 0, 2*len(matches)+1)
	prev := 0
	for _, m := range matches {
		if m.Start > prev {
			fragments = append(fragments, Fragment{Kind: KindText, Content: text[prev:m.Start], MatchIndex: -1})
		}
		fragments = append(fragments, Fragment{
			Kind:       KindHighlight,
			Content:    text[m.Start:m.End],
			MatchIndex: m.Index,
			Active:     m.Index == activeIndex,
		})
		prev = m.End
	}
	if prev < len(text) {
		fragments = append(fragments, Fragment{Kind: KindText, Content: text[prev:], MatchIndex: -1})
	}
	return fragments
}

// TextProjector memoizes Project on its input triple and owns the lookup
// from match index to rendered line anchor used for scroll-into-view. The
// registry is exclusively owned here; the paginated view keeps its own state.
type TextProjector struct {
	memoText    string
	memoMatches []search.Match
	memoActive  int
	memoValid   bool
	memoOut     []Fragment

	anchors map[int]int
}

func NewTextProjector() *TextProjector {
	return &TextProjector{anchors: make(map[int]int)}
}

// Project returns the fragment sequence for the inputs, recomputing only
// when text, the match slice, or the active index actually changed. When the
// match list changes, anchors registered for matches that no longer exist
// are evicted.
func (p *TextProjector) Project(text string, matches []search.Match, activeIndex int) []Fragment {
	if p.memoValid && text == p.memoText && activeIndex == p.memoActive && sameMatches(matches, p.memoMatches) {
		return p.memoOut
	}
	if !sameMatches(matches, p.memoMatches) {
		p.evictStale(matches)
	}
	p.memoText = text
	p.memoMatches = matches
	p.memoActive = activeIndex
	p.memoOut = Project(text, matches, activeIndex)
	p.memoValid = true
	return p.memoOut
}

// Register records the rendered line anchor for a match as its highlight
// fragment mounts.
func (p *TextProjector) Register(matchIndex, line int) {
	p.anchors[matchIndex] = line
}

// Anchor returns the rendered line registered for a match.
func (p *TextProjector) Anchor(matchIndex int) (int, bool) {
	line, ok := p.anchors[matchIndex]
	return line, ok
}

// evictStale drops anchors for match indices no longer present so stale
// references can never be scrolled to.
func (p *TextProjector) evictStale(matches []search.Match) {
	if len(matches) == 0 {
		p.anchors = make(map[int]int)
		return
	}
	for idx := range p.anchors {
		if idx < 0 || idx >= len(matches) {
			delete(p.anchors, idx)
		}
	}
}

// sameMatches compares match slices by identity: same length and same backing
// array. Match lists are only ever replaced wholesale, never patched, so
// identity equality is sufficient for memoization.
func sameMatches(a, b []search.Match) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}
