package search

import (
	"fmt"
	"regexp"
	"strings"
)

// Span is a raw located range produced by an external matcher, in the same
// byte-offset coordinate space as Match. Ordering and identity are assigned
// by the engine, not the matcher.
type Span struct {
	Start int
	End   int
}

// SemanticMatcher is the alternate query executor behind ModeSemantic. It
// receives the full document text and the trimmed query and returns candidate
// spans; the engine sorts them and assigns stable indices. Implementations
// are free to call out to an external service.
type SemanticMatcher interface {
	Match(text, query string) ([]Span, error)
}

// SemanticFunc adapts a plain function to the SemanticMatcher interface.
type SemanticFunc func(text, query string) ([]Span, error)

func (f SemanticFunc) Match(text, query string) ([]Span, error) {
	return f(text, query)
}

// WordMatcher is the built-in offline semantic matcher: it locates whole-word
// case-insensitive occurrences of each token of the query, so "payment terms"
// highlights every standalone "payment" and every standalone "terms".
type WordMatcher struct{}

func (WordMatcher) Match(text, query string) ([]Span, error) {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	var spans []Span
	for _, token := range tokens {
		pattern := fmt.Sprintf(`(?i)\b%s\b`, regexp.QuoteMeta(token))
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		for _, idx := range re.FindAllStringIndex(text, -1) {
			spans = append(spans, Span{Start: idx[0], End: idx[1]})
		}
	}
	return spans, nil
}
