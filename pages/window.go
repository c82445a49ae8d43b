// Package pages tracks which pages of a long document are currently rendered
// and visible. Virtualization is driven purely by scroll geometry: search
// state never adds or removes a page from the window.
package pages

// Window is the visible-page window: the single page with the greatest
// visible share of the viewport, and the set of at-least-partially visible
// pages padded by a fixed buffer of adjacent pages on each side.
type Window struct {
	CurrentPage  int
	VisiblePages map[int]bool
}

// Visible reports whether a page is inside the window.
func (w Window) Visible(page int) bool {
	return w.VisiblePages[page]
}

// DefaultBuffer is the number of adjacent pages kept rendered on each side
// of the visible range.
const DefaultBuffer = 2

// currentThreshold is the minimum visible share of a page required before it
// can take over as the current page.
const currentThreshold = 0.2

// Virtualizer recomputes the window from page geometry on every scroll or
// resize. Page heights are in display lines; page numbers are 1-based.
type Virtualizer struct {
	heights []int
	starts  []int
	total   int
	buffer  int
	win     Window
}

// NewVirtualizer builds a virtualizer over per-page heights. buffer < 0
// selects DefaultBuffer.
func NewVirtualizer(heights []int, buffer int) *Virtualizer {
	if buffer < 0 {
		buffer = DefaultBuffer
	}
	v := &Virtualizer{buffer: buffer}
	v.SetHeights(heights)
	return v
}

// SetHeights replaces the page geometry, e.g. after a resize re-wraps every
// page. The window is stale until the next Observe.
func (v *Virtualizer) SetHeights(heights []int) {
	v.heights = heights
	v.starts = make([]int, len(heights))
	total := 0
	for i, h := range heights {
		v.starts[i] = total
		total += h
	}
	v.total = total
}

// PageCount returns the number of pages under management.
func (v *Virtualizer) PageCount() int { return len(v.heights) }

// TotalLines returns the full scrollable height in lines.
func (v *Virtualizer) TotalLines() int { return v.total }

// PageStart returns the first display line of a 1-based page.
func (v *Virtualizer) PageStart(page int) int {
	if page < 1 || page > len(v.starts) {
		return 0
	}
	return v.starts[page-1]
}

// Window returns the window computed by the last Observe.
func (v *Virtualizer) Window() Window { return v.win }

// Observe recomputes the window for a viewport of viewportLines starting at
// scrollLine. The current page is the one with the greatest visible
// intersection ratio; it only changes when that ratio clears the threshold,
// so a sliver of a neighboring page never steals currency. The visible set
// is every intersecting page padded by the buffer, clamped to the document.
func (v *Virtualizer) Observe(scrollLine, viewportLines int) Window {
	n := len(v.heights)
	if n == 0 || viewportLines <= 0 {
		v.win = Window{VisiblePages: map[int]bool{}}
		return v.win
	}
	if scrollLine < 0 {
		scrollLine = 0
	}
	viewTop := scrollLine
	viewBottom := scrollLine + viewportLines

	lo, hi := 0, -1 // inclusive 0-based range of intersecting pages
	current := v.win.CurrentPage
	bestRatio := 0.0

	for i := 0; i < n; i++ {
		top := v.starts[i]
		bottom := top + v.heights[i]
		if bottom <= viewTop || top >= viewBottom {
			continue
		}
		if hi < 0 {
			lo = i
		}
		hi = i

		overlap := minInt(bottom, viewBottom) - maxInt(top, viewTop)
		ratio := 0.0
		if v.heights[i] > 0 {
			ratio = float64(overlap) / float64(v.heights[i])
		}
		if ratio > bestRatio {
			bestRatio = ratio
			if ratio >= currentThreshold {
				current = i + 1
			}
		}
	}

	if hi < 0 {
		// Scrolled past the end; clamp to the last page.
		lo, hi = n-1, n-1
		current = n
	}
	if current < 1 || current > n {
		current = lo + 1
	}

	lo -= v.buffer
	hi += v.buffer
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}

	visible := make(map[int]bool, hi-lo+1)
	for i := lo; i <= hi; i++ {
		visible[i+1] = true
	}
	v.win = Window{CurrentPage: current, VisiblePages: visible}
	return v.win
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
