package search

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session holds the search state for one open document view: the current
// query, the match list, the active match, and a result cache keyed by the
// folded query. It is created when the view opens and closed when the view
// closes; the cache lives exactly that long, since the extracted text can
// change between sessions.
//
// All methods are safe for concurrent use. Results computed by the bridge
// worker are folded back in through SetMatches.
type Session struct {
	// ID identifies the session across its lifecycle, e.g. in teardown guards.
	ID string

	text     string
	engine   *Engine
	bridge   *Bridge
	debounce time.Duration
	onUpdate func()

	mu        sync.Mutex
	query     Query
	matches   []Match
	active    int
	searching bool
	cache     map[string][]Match
	timer     *time.Timer
	closed    bool
}

// NewSession creates a session over an immutable extracted text. debounce
// delays dispatch after SetQuery so queries do not fire on every keystroke;
// zero disables the delay. onUpdate, if non-nil, is invoked after every state
// change, possibly from the bridge worker goroutine.
func NewSession(text string, engine *Engine, debounce time.Duration, onUpdate func()) *Session {
	if engine == nil {
		engine = &Engine{}
	}
	s := &Session{
		ID:       uuid.New().String(),
		text:     text,
		engine:   engine,
		debounce: debounce,
		onUpdate: onUpdate,
		active:   -1,
		cache:    make(map[string][]Match),
	}
	s.bridge = NewBridge(engine, func(q Query, matches []Match) {
		s.SetMatches(matches, q)
	})
	return s
}

// Text returns the extracted document text the session searches over.
func (s *Session) Text() string { return s.text }

// SetQuery stores the raw query and either applies cached matches
// synchronously or schedules a (debounced) search through the bridge. An
// empty or whitespace-only query clears all match state.
func (s *Session) SetQuery(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.query.Text = text
	s.dispatchLocked()
	s.mu.Unlock()
	s.notify()
}

// SetMode switches between literal and semantic execution and re-runs the
// current query under the new mode.
func (s *Session) SetMode(m Mode) {
	s.mu.Lock()
	if s.closed || s.query.Mode == m {
		s.mu.Unlock()
		return
	}
	s.query.Mode = m
	s.dispatchLocked()
	s.mu.Unlock()
	s.notify()
}

// dispatchLocked resolves the current query: clear state for an empty query,
// serve from cache, or mark searching and hand off to the bridge.
func (s *Session) dispatchLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	folded := Normalize(s.query.Text)
	if folded == "" {
		s.matches = nil
		s.active = -1
		s.searching = false
		return
	}

	if cached, ok := s.cache[s.cacheKey(folded)]; ok {
		s.matches = cached
		s.active = 0
		s.searching = false
		return
	}

	s.searching = true
	q := s.query
	if s.debounce <= 0 {
		s.bridge.Search(s.text, q)
		return
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		// Only fire if the query is still the one this timer was armed for.
		live := !s.closed && s.query == q
		s.mu.Unlock()
		if live {
			s.bridge.Search(s.text, q)
		}
	})
}

// SetMatches replaces the match list with the result computed for forQuery:
// the active index resets to the first match (or -1), the searching flag
// clears, and non-empty results are cached under the folded query. Results
// for a query that is no longer current are dropped.
func (s *Session) SetMatches(matches []Match, forQuery Query) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if forQuery.Mode != s.query.Mode || Normalize(forQuery.Text) != Normalize(s.query.Text) {
		s.mu.Unlock()
		return
	}
	s.matches = matches
	if len(matches) > 0 {
		s.active = 0
		// Empty results are deliberately not cached so a query can be retried
		// after the underlying content changes.
		s.cache[s.cacheKey(Normalize(forQuery.Text))] = matches
	} else {
		s.active = -1
	}
	s.searching = false
	s.mu.Unlock()
	s.notify()
}

// NextMatch advances the active match with wraparound and returns the new
// active index. It is a no-op returning -1 when there are no matches.
func (s *Session) NextMatch() int {
	s.mu.Lock()
	if s.closed || len(s.matches) == 0 {
		s.mu.Unlock()
		return -1
	}
	s.active = (s.active + 1) % len(s.matches)
	idx := s.active
	s.mu.Unlock()
	s.notify()
	return idx
}

// PrevMatch retreats the active match with wraparound and returns the new
// active index. It is a no-op returning -1 when there are no matches.
func (s *Session) PrevMatch() int {
	s.mu.Lock()
	if s.closed || len(s.matches) == 0 {
		s.mu.Unlock()
		return -1
	}
	s.active--
	if s.active < 0 {
		s.active = len(s.matches) - 1
	}
	idx := s.active
	s.mu.Unlock()
	s.notify()
	return idx
}

// ClearSearch resets query, matches, and active index to their initial state
// and empties the cache.
func (s *Session) ClearSearch() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.query.Text = ""
	s.matches = nil
	s.active = -1
	s.searching = false
	s.cache = make(map[string][]Match)
	s.mu.Unlock()
	s.notify()
}

// CachedMatches looks up previously computed matches by folded query under
// the current mode.
func (s *Session) CachedMatches(query string) ([]Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matches, ok := s.cache[s.cacheKey(Normalize(query))]
	return matches, ok
}

// Close disposes the session: the bridge worker is torn down and the cache
// dropped. No state change or callback happens after Close.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.cache = nil
	s.mu.Unlock()
	s.bridge.Close()
}

// Matches returns the current match list. Callers must treat it as read-only.
func (s *Session) Matches() []Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matches
}

// ActiveIndex returns the index of the active match, or -1 when there is none.
func (s *Session) ActiveIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ActiveMatch returns the active match, if any.
func (s *Session) ActiveMatch() (Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active < 0 || s.active >= len(s.matches) {
		return Match{}, false
	}
	return s.matches[s.active], true
}

// MatchCount returns the number of matches for the current query.
func (s *Session) MatchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matches)
}

// ActivePosition returns the 1-based position of the active match for
// display ("3 / 17"), or 0 when there is no active match.
func (s *Session) ActivePosition() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active < 0 {
		return 0
	}
	return s.active + 1
}

// IsSearching reports whether a search is in flight for the current query.
func (s *Session) IsSearching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searching
}

// QueryText returns the raw query as typed.
func (s *Session) QueryText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query.Text
}

// Mode returns the current execution mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query.Mode
}

// cacheKey scopes cached results by mode so toggling between literal and
// semantic never serves the other mode's spans.
func (s *Session) cacheKey(folded string) string {
	if s.query.Mode == ModeSemantic {
		return "s\x00" + folded
	}
	return "l\x00" + folded
}

func (s *Session) notify() {
	if s.onUpdate != nil {
		s.onUpdate()
	}
}
