// Package app is the terminal UI of the viewer: one document, two renderings
// (a virtualized paginated view and a flat extracted-text view), and the
// search bar driving the shared search session across both.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"docview/config"
	"docview/document"
	"docview/highlight"
	"docview/pages"
	"docview/search"
)

type viewMode int

const (
	viewPaginated viewMode = iota
	viewText
)

func (v viewMode) String() string {
	if v == viewText {
		return "text"
	}
	return "pages"
}

// Model is the Bubble Tea model for the document viewer.
type Model struct {
	doc      *document.Document
	reg      *document.ExtractorRegistry
	settings config.Settings
	matcher  search.SemanticMatcher

	session  *search.Session
	textProj *highlight.TextProjector
	pageProj *highlight.PageProjector
	virt     *pages.Virtualizer

	input    textinput.Model
	textView viewport.Model

	// Paginated view geometry: wrapped lines per page and the scroll offset
	// in display lines.
	pageLayouts [][]highlight.Line
	pageScroll  int

	mode       viewMode
	searchOpen bool

	events    chan tea.Msg
	stopWatch func()

	width    int
	height   int
	ready    bool
	memUsage string
	quitting bool
}

// NewModel wires a loaded document into a fresh viewer: a new search session
// (one per open view), both projectors, the virtualizer, and the file
// watcher that invalidates the session when the document changes on disk.
func NewModel(doc *document.Document, reg *document.ExtractorRegistry, settings config.Settings, matcher search.SemanticMatcher) Model {
	input := textinput.New()
	input.Placeholder = "search document"
	input.CharLimit = 256
	input.Prompt = "/"

	events := make(chan tea.Msg, 16)

	m := Model{
		doc:      doc,
		reg:      reg,
		settings: settings,
		matcher:  matcher,
		textProj: highlight.NewTextProjector(),
		pageProj: highlight.NewPageProjector(),
		virt:     pages.NewVirtualizer(nil, settings.PageBuffer),
		input:    input,
		events:   events,
	}
	m.session = newSession(doc, settings, matcher, events)

	stop, err := document.Watch(doc.Path, func() {
		postEvent(events, documentChangedMsg{})
	})
	if err != nil {
		if !settings.Silent {
			fmt.Fprintf(os.Stderr, "Warning: cannot watch %s: %v\n", doc.Path, err)
		}
		stop = func() {}
	}
	m.stopWatch = stop
	return m
}

func newSession(doc *document.Document, settings config.Settings, matcher search.SemanticMatcher, events chan tea.Msg) *search.Session {
	engine := &search.Engine{Semantic: matcher}
	var s *search.Session
	s = search.NewSession(doc.Text, engine, settings.Debounce(), func() {
		postEvent(events, searchUpdatedMsg{sessionID: s.ID})
	})
	return s
}

// postEvent forwards a message to the UI without ever blocking a worker:
// when the buffer is full the oldest event is dropped to keep the latest
// flowing.
func postEvent(events chan tea.Msg, msg tea.Msg) {
	select {
	case events <- msg:
	default:
		select {
		case <-events:
		default:
		}
		select {
		case events <- msg:
		default:
		}
	}
}

// Run drives the viewer until quit, pumping session and watcher events into
// the program.
func Run(doc *document.Document, reg *document.ExtractorRegistry, settings config.Settings, matcher search.SemanticMatcher) error {
	m := NewModel(doc, reg, settings, matcher)
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		for msg := range m.events {
			p.Send(msg)
		}
	}()
	_, err := p.Run()
	m.stopWatch()
	m.session.Close()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, memUsageTick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.textView = viewport.New(m.contentWidth(), m.contentHeight())
			m.ready = true
		} else {
			m.textView.Width = m.contentWidth()
			m.textView.Height = m.contentHeight()
		}
		m.relayout()
		return m, nil

	case searchUpdatedMsg:
		// A disposed session's late deliveries still ride the shared events
		// channel; only the current session may drive the views.
		if msg.sessionID != m.session.ID {
			return m, nil
		}
		m.refreshText()
		m.applyHighlights()
		if _, ok := m.session.ActiveMatch(); ok {
			m.scrollToActive()
		}
		return m, nil

	case documentChangedMsg:
		return m.reloadDocument(), nil

	case memUsageMsg:
		m.memUsage = msg.Text
		return m, memUsageTick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.searchOpen {
		switch msg.String() {
		case "esc":
			// Escape clears the search and closes the bar.
			m.searchOpen = false
			m.input.Blur()
			m.input.SetValue("")
			m.session.ClearSearch()
			m.pageProj.Clear()
			m.refreshText()
			return m, nil
		case "enter", "ctrl+n":
			m.session.NextMatch()
			m.refreshText()
			m.applyHighlights()
			m.scrollToActive()
			return m, nil
		case "shift+enter", "ctrl+p":
			m.session.PrevMatch()
			m.refreshText()
			m.applyHighlights()
			m.scrollToActive()
			return m, nil
		case "ctrl+s":
			m.toggleMode()
			return m, nil
		case "tab":
			m.mode = m.otherView()
			return m, nil
		}
		var cmd tea.Cmd
		before := m.input.Value()
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != before {
			m.session.SetQuery(m.input.Value())
		}
		return m, cmd
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "/":
		m.searchOpen = true
		return m, m.input.Focus()
	case "tab":
		m.mode = m.otherView()
		return m, nil
	case "n":
		m.session.NextMatch()
		m.refreshText()
		m.applyHighlights()
		m.scrollToActive()
		return m, nil
	case "N":
		m.session.PrevMatch()
		m.refreshText()
		m.applyHighlights()
		m.scrollToActive()
		return m, nil
	case "up", "k":
		m.scrollBy(-1)
		return m, nil
	case "down", "j":
		m.scrollBy(1)
		return m, nil
	case "pgup":
		m.scrollBy(-m.contentHeight())
		return m, nil
	case "pgdown", " ":
		m.scrollBy(m.contentHeight())
		return m, nil
	case "home", "g":
		m.scrollTo(0)
		return m, nil
	case "end", "G":
		m.scrollTo(1 << 30)
		return m, nil
	}
	return m, nil
}

func (m *Model) toggleMode() {
	if m.session.Mode() == search.ModeLiteral {
		m.session.SetMode(search.ModeSemantic)
	} else {
		m.session.SetMode(search.ModeLiteral)
	}
}

func (m Model) otherView() viewMode {
	if m.mode == viewText {
		return viewPaginated
	}
	return viewText
}

// contentWidth and contentHeight are the inner box dimensions available to
// either view.
func (m Model) contentWidth() int {
	w := m.width - 6
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) contentHeight() int {
	h := m.height - headerHeight - footerHeight - boxChrome
	if h < 3 {
		h = 3
	}
	return h
}

const (
	headerHeight = 3 // title, search bar, snippet
	footerHeight = 1
	boxChrome    = 2 // box border
)

// relayout recomputes page geometry after a resize and re-applies both
// projections.
func (m *Model) relayout() {
	width := m.contentWidth()
	m.pageLayouts = make([][]highlight.Line, m.doc.PageCount())
	heights := make([]int, m.doc.PageCount())
	for i, pg := range m.doc.Pages {
		lines := highlight.LayoutPage(pg.Text, width)
		m.pageLayouts[i] = lines
		heights[i] = len(lines) + pageChrome
	}
	m.virt.SetHeights(heights)
	m.observe()
	m.refreshText()
	m.applyHighlights()
}

// pageChrome is the per-page header line plus the trailing blank line.
const pageChrome = 2

func (m *Model) observe() {
	maxScroll := m.virt.TotalLines() - m.contentHeight()
	if maxScroll < 0 {
		maxScroll = 0
	}
	if m.pageScroll > maxScroll {
		m.pageScroll = maxScroll
	}
	if m.pageScroll < 0 {
		m.pageScroll = 0
	}
	m.virt.Observe(m.pageScroll, m.contentHeight())
}

// applyHighlights re-runs the paginated projector over the current window.
// Virtualization and search state change independently, so this runs on
// either kind of change and converges.
func (m *Model) applyHighlights() {
	m.pageProj.Apply(m.virt.Window(), m.doc.Pages, m.session.Matches(), m.session.ActiveIndex(), m.session.QueryText())
}

// refreshText re-projects the flat text view and rebuilds the viewport
// content, registering a line anchor for every highlight fragment it lays
// out.
func (m *Model) refreshText() {
	frags := m.textProj.Project(m.doc.Text, m.session.Matches(), m.session.ActiveIndex())
	m.textView.SetContent(m.renderFragments(frags, m.contentWidth()))
}

// renderFragments lays projected fragments out as wrapped display lines,
// styling highlight fragments and recording the line each one mounts on.
func (m *Model) renderFragments(frags []highlight.Fragment, width int) string {
	var b strings.Builder
	var seg strings.Builder
	line := 0
	col := 0

	for _, f := range frags {
		styled := f.Kind == highlight.KindHighlight
		if styled {
			m.textProj.Register(f.MatchIndex, line)
		}
		style := matchStyle
		if f.Active {
			style = activeMatchStyle
		}
		flush := func() {
			if seg.Len() == 0 {
				return
			}
			if styled {
				b.WriteString(style.Render(seg.String()))
			} else {
				b.WriteString(seg.String())
			}
			seg.Reset()
		}
		for _, r := range f.Content {
			if r == '\n' {
				flush()
				b.WriteByte('\n')
				line++
				col = 0
				continue
			}
			if col >= width {
				flush()
				b.WriteByte('\n')
				line++
				col = 0
			}
			seg.WriteRune(r)
			col++
		}
		flush()
	}
	return b.String()
}

// scrollToActive centers the active match in both views. The two scroll
// containers are independent: centering one never disturbs the other's
// virtualization beyond the recomputation it triggers itself.
func (m *Model) scrollToActive() {
	match, ok := m.session.ActiveMatch()
	if !ok || search.Normalize(m.session.QueryText()) == "" {
		return
	}

	// Flat text view: jump to the registered anchor, instantly.
	if anchor, ok := m.textProj.Anchor(match.Index); ok {
		offset := anchor - m.textView.Height/2
		if offset < 0 {
			offset = 0
		}
		m.textView.SetYOffset(offset)
	}

	// Paginated view: locate the match's page and line, then center it.
	pageNum := m.doc.PageAt(match.Start)
	if pageNum < 1 || pageNum > len(m.pageLayouts) {
		return
	}
	local := match.Start - m.doc.Pages[pageNum-1].Start
	lineIdx := 0
	for i, ln := range m.pageLayouts[pageNum-1] {
		if local < ln.End || ln.End == ln.Start {
			lineIdx = i
			break
		}
		lineIdx = i
	}
	target := m.virt.PageStart(pageNum) + 1 + lineIdx
	m.pageScroll = target - m.contentHeight()/2
	m.observe()
	m.applyHighlights()
}

func (m *Model) scrollBy(delta int) {
	if m.mode == viewText {
		offset := m.textView.YOffset + delta
		if offset < 0 {
			offset = 0
		}
		m.textView.SetYOffset(offset)
		return
	}
	m.pageScroll += delta
	m.observe()
	m.applyHighlights()
}

func (m *Model) scrollTo(line int) {
	if m.mode == viewText {
		if line <= 0 {
			m.textView.GotoTop()
		} else {
			m.textView.GotoBottom()
		}
		return
	}
	m.pageScroll = line
	m.observe()
	m.applyHighlights()
}

// reloadDocument replaces the document after an on-disk change. The old
// session is disposed (its cache is scoped to the old extracted text) and a
// fresh one created over the new text.
func (m Model) reloadDocument() Model {
	doc, err := document.Load(m.doc.Path, m.reg)
	if err != nil {
		if !m.settings.Silent {
			fmt.Fprintf(os.Stderr, "Warning: reload failed for %s: %v\n", m.doc.Path, err)
		}
		return m
	}
	m.session.Close()
	m.doc = doc
	m.session = newSession(doc, m.settings, m.matcher, m.events)
	m.textProj = highlight.NewTextProjector()
	m.pageProj = highlight.NewPageProjector()
	m.input.SetValue("")
	m.searchOpen = false
	m.pageScroll = 0
	if m.ready {
		m.relayout()
	}
	return m
}

func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if !m.ready {
		return "Loading..."
	}

	var parts []string
	parts = append(parts, m.renderTitle())
	parts = append(parts, m.renderSearchBar())
	parts = append(parts, m.renderSnippet())

	var content string
	if m.mode == viewText {
		content = m.textView.View()
	} else {
		content = m.renderPageView()
	}
	box := appStyle.Width(m.width - 2).Height(m.contentHeight()).Render(content)
	parts = append(parts, box)

	parts = append(parts, m.renderFooter())
	return strings.Join(parts, "\n")
}

func (m Model) renderTitle() string {
	name := filepath.Base(m.doc.Path)
	title := headerStyle.Render("📄 " + name)
	win := m.virt.Window()
	pos := infoStyle.Render(fmt.Sprintf("  page %d of %d • %s view", win.CurrentPage, m.doc.PageCount(), m.mode))
	return title + pos
}

func (m Model) renderSearchBar() string {
	var status string
	switch {
	case m.session.IsSearching():
		status = warningStyle.Render("⏳ searching…")
	case search.Normalize(m.session.QueryText()) == "":
		status = separatorStyle.Render("press / to search")
	case m.session.MatchCount() == 0:
		status = errorStyle.Render("no matches")
	default:
		status = successStyle.Render(fmt.Sprintf("%d / %d", m.session.ActivePosition(), m.session.MatchCount()))
	}
	mode := infoStyle.Render(fmt.Sprintf("[%s]", m.session.Mode()))

	if m.searchOpen {
		return m.input.View() + "  " + status + " " + mode
	}
	return subHeaderStyle.Render("🔍 ") + status + " " + mode
}

// renderSnippet shows context around the active match: a little before, more
// after.
func (m Model) renderSnippet() string {
	match, ok := m.session.ActiveMatch()
	if !ok {
		return ""
	}
	return infoStyle.Render(snippetAround(m.doc.Text, match, m.width-4))
}

// snippetAround extracts the context window around a match (50 bytes before,
// 150 after), collapsed to one line and capped at width bytes. All cuts land
// on rune boundaries.
func snippetAround(text string, match search.Match, width int) string {
	start := match.Start - 50
	if start < 0 {
		start = 0
	}
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	end := match.End + 150
	if end > len(text) {
		end = len(text)
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}

	snippet := strings.Join(strings.Fields(text[start:end]), " ")
	if start > 0 {
		snippet = "…" + snippet
	}
	if end < len(text) {
		snippet += "…"
	}
	if width > 0 && len(snippet) > width {
		cut := width
		for cut > 0 && !utf8.RuneStart(snippet[cut]) {
			cut--
		}
		snippet = snippet[:cut]
	}
	return snippet
}

// renderPageView renders the slice of page blocks intersecting the viewport.
// Pages inside the visible window get their highlight spans; pages the
// window has dropped render as unhighlighted placeholders until they scroll
// back in.
func (m Model) renderPageView() string {
	h := m.contentHeight()
	top := m.pageScroll
	bottom := top + h
	win := m.virt.Window()
	width := m.contentWidth()

	var lines []string
	for i := 0; i < m.doc.PageCount(); i++ {
		pageNum := i + 1
		start := m.virt.PageStart(pageNum)
		pageH := len(m.pageLayouts[i]) + pageChrome
		if start+pageH <= top {
			continue
		}
		if start >= bottom {
			break
		}

		block := m.renderPageBlock(pageNum, win, width)
		for j, ln := range block {
			abs := start + j
			if abs >= top && abs < bottom {
				lines = append(lines, ln)
			}
		}
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderPageBlock(pageNum int, win pages.Window, width int) []string {
	rule := fmt.Sprintf("── page %d ", pageNum)
	if pad := width - len(rule); pad > 0 {
		rule += strings.Repeat("─", pad)
	}
	block := []string{pageHeaderStyle.Render(rule)}

	layout := m.pageLayouts[pageNum-1]
	if win.Visible(pageNum) {
		spans := m.pageProj.Spans(pageNum)
		for _, ln := range layout {
			block = append(block, renderLine(ln, spans))
		}
	} else {
		// Outside the window the page is not rendered; keep its geometry.
		for range layout {
			block = append(block, "")
		}
	}
	return append(block, "")
}

// renderLine styles one display line, slicing it at highlight boundaries.
func renderLine(ln highlight.Line, spans []highlight.PageSpan) string {
	frags := highlight.LineFragments(ln, spans)
	var b strings.Builder
	for _, f := range frags {
		switch {
		case f.Kind == highlight.KindHighlight && f.Active:
			b.WriteString(activeMatchStyle.Render(f.Content))
		case f.Kind == highlight.KindHighlight:
			b.WriteString(matchStyle.Render(f.Content))
		default:
			b.WriteString(f.Content)
		}
	}
	return b.String()
}

func (m Model) renderFooter() string {
	help := "/ search • enter/shift+enter next/prev • tab view • ctrl+s mode • q quit"
	if m.memUsage != "" {
		help += " • " + m.memUsage
	}
	return separatorStyle.Render(help)
}
