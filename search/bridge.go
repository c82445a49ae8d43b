package search

import "sync"

// request is one unit of work handed to the bridge worker. seq is the
// monotonically increasing sequence number used for stale-result suppression.
type request struct {
	seq   uint64
	text  string
	query Query
}

// Bridge runs query execution on a dedicated worker goroutine so typing in
// the query field never blocks the UI loop. Each request carries a sequence
// number; only the response matching the highest issued sequence is
// delivered. There is no cancellation of in-flight work; superseded requests
// run to completion and their results are discarded on arrival.
type Bridge struct {
	engine  *Engine
	deliver func(q Query, matches []Match)

	mu     sync.Mutex
	latest uint64
	closed bool

	requests chan request
	quit     chan struct{}
}

// NewBridge starts the worker goroutine. deliver is invoked from the worker
// for every non-stale result; callers route it back into their session.
func NewBridge(engine *Engine, deliver func(q Query, matches []Match)) *Bridge {
	b := &Bridge{
		engine:   engine,
		deliver:  deliver,
		requests: make(chan request, 8),
		quit:     make(chan struct{}),
	}
	go b.run()
	return b
}

// Search issues a new request, superseding every request issued before it.
// It never blocks on the worker: when the request buffer is full the oldest
// queued request is dropped, since it is stale by definition. The newest
// request is always enqueued, so every issued query reaches an Idle state.
func (b *Bridge) Search(text string, q Query) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.latest++
	req := request{seq: b.latest, text: text, query: q}
	b.mu.Unlock()

	for {
		select {
		case b.requests <- req:
			return
		default:
		}
		select {
		case <-b.requests:
		default:
		}
	}
}

// Close tears down the worker. No delivery happens after Close returns the
// bridge to the closed state, even for work already in flight.
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()
	close(b.quit)
}

func (b *Bridge) run() {
	for {
		select {
		case <-b.quit:
			return
		case req := <-b.requests:
			matches := b.execute(req)

			b.mu.Lock()
			stale := b.closed || req.seq != b.latest
			b.mu.Unlock()
			if stale {
				continue
			}
			b.deliver(req.query, matches)
		}
	}
}

// execute runs the engine with panic protection. A failing or panicking
// matcher degrades to "no matches" rather than taking down the viewer.
func (b *Bridge) execute(req request) (matches []Match) {
	defer func() {
		if r := recover(); r != nil {
			matches = nil
		}
	}()
	return b.engine.Find(req.text, req.query)
}
