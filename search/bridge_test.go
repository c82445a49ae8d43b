package search

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedMatcher blocks every Match call until released, so a test can hold a
// search in flight while issuing a superseding one.
type gatedMatcher struct {
	started chan string
	release chan struct{}
}

func (g *gatedMatcher) Match(text, query string) ([]Span, error) {
	g.started <- query
	<-g.release
	matches := FindLiteral(text, query)
	spans := make([]Span, len(matches))
	for i, m := range matches {
		spans[i] = Span{Start: m.Start, End: m.End}
	}
	return spans, nil
}

type recorder struct {
	mu        sync.Mutex
	delivered []Query
}

func (r *recorder) deliver(q Query, _ []Match) {
	r.mu.Lock()
	r.delivered = append(r.delivered, q)
	r.mu.Unlock()
}

func (r *recorder) queries() []Query {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Query(nil), r.delivered...)
}

func TestBridgeDeliversResults(t *testing.T) {
	rec := &recorder{}
	b := NewBridge(&Engine{}, rec.deliver)
	defer b.Close()

	b.Search("the cat sat", Query{Text: "at"})
	require.Eventually(t, func() bool { return len(rec.queries()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "at", rec.queries()[0].Text)
}

func TestBridgeSuppressesSupersededResults(t *testing.T) {
	matcher := &gatedMatcher{started: make(chan string, 2), release: make(chan struct{}, 2)}
	rec := &recorder{}
	b := NewBridge(&Engine{Semantic: matcher}, rec.deliver)
	defer b.Close()

	b.Search("alpha beta", Query{Text: "alpha", Mode: ModeSemantic})
	<-matcher.started // first request is now executing

	b.Search("alpha beta", Query{Text: "beta", Mode: ModeSemantic})
	matcher.release <- struct{}{}
	matcher.release <- struct{}{}

	require.Eventually(t, func() bool { return len(rec.queries()) == 1 }, 2*time.Second, 5*time.Millisecond)
	// The superseded first result was computed but never delivered.
	assert.Equal(t, "beta", rec.queries()[0].Text)

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, rec.queries(), 1)
}

func TestBridgePanickingMatcherDegradesToNoMatches(t *testing.T) {
	var got []Match
	done := make(chan struct{}, 1)
	b := NewBridge(&Engine{Semantic: SemanticFunc(func(text, query string) ([]Span, error) {
		panic("matcher exploded")
	})}, func(q Query, matches []Match) {
		got = matches
		done <- struct{}{}
	})
	defer b.Close()

	b.Search("text", Query{Text: "x", Mode: ModeSemantic})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("no delivery after panic")
	}
	assert.Nil(t, got)
}

func TestBridgeBurstAlwaysDeliversLatest(t *testing.T) {
	rec := &recorder{}
	b := NewBridge(&Engine{}, rec.deliver)
	defer b.Close()

	// Flood well past the request buffer; the newest request must survive
	// every drop-oldest round and surface exactly once at the end.
	var last string
	for i := 0; i < 200; i++ {
		last = fmt.Sprintf("q%03d", i)
		b.Search("q000 through q199", Query{Text: last})
	}

	require.Eventually(t, func() bool {
		qs := rec.queries()
		return len(qs) > 0 && qs[len(qs)-1].Text == last
	}, 2*time.Second, 5*time.Millisecond)
}

func TestBridgeClosedDeliversNothing(t *testing.T) {
	rec := &recorder{}
	b := NewBridge(&Engine{}, rec.deliver)
	b.Close()

	b.Search("text", Query{Text: "x"})
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, rec.queries())
	b.Close() // idempotent
}
