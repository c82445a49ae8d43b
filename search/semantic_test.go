package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordMatcherWholeWords(t *testing.T) {
	spans, err := WordMatcher{}.Match("scatter cat concat cat.", "cat")
	require.NoError(t, err)
	// Only the standalone occurrences, punctuation-adjacent included.
	require.Len(t, spans, 2)
	assert.Equal(t, Span{Start: 8, End: 11}, spans[0])
	assert.Equal(t, Span{Start: 19, End: 22}, spans[1])
}

func TestWordMatcherMultipleTokens(t *testing.T) {
	spans, err := WordMatcher{}.Match("payment due; see terms of payment", "payment terms")
	require.NoError(t, err)
	assert.Len(t, spans, 3)
}

func TestWordMatcherQuotesMetaCharacters(t *testing.T) {
	spans, err := WordMatcher{}.Match("price is 3.50 here", "3.50")
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, Span{Start: 9, End: 13}, spans[0])
}

func TestWordMatcherEmptyQuery(t *testing.T) {
	spans, err := WordMatcher{}.Match("text", "   ")
	require.NoError(t, err)
	assert.Nil(t, spans)
}
