package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindLiteralBasic(t *testing.T) {
	matches := FindLiteral("the cat sat on the mat", "at")
	require.Len(t, matches, 3)
	assert.Equal(t, Match{Index: 0, Start: 5, End: 7}, matches[0])
	assert.Equal(t, Match{Index: 1, Start: 9, End: 11}, matches[1])
	assert.Equal(t, Match{Index: 2, Start: 20, End: 22}, matches[2])
}

func TestFindLiteralCaseInsensitive(t *testing.T) {
	matches := FindLiteral("Hello World", "world")
	require.Len(t, matches, 1)
	assert.Equal(t, 6, matches[0].Start)
	assert.Equal(t, 11, matches[0].End)

	matches = FindLiteral("ERROR error Error", "error")
	assert.Len(t, matches, 3)
}

func TestFindLiteralNonOverlapping(t *testing.T) {
	// After a match ends the scan resumes at its end, not one past its start.
	matches := FindLiteral("aaaa", "aa")
	require.Len(t, matches, 2)
	assert.Equal(t, 0, matches[0].Start)
	assert.Equal(t, 2, matches[1].Start)
}

func TestFindLiteralEdgeCases(t *testing.T) {
	assert.Nil(t, FindLiteral("some text", ""))
	assert.Nil(t, FindLiteral("some text", "   "))
	assert.Nil(t, FindLiteral("", "query"))
	assert.Nil(t, FindLiteral("ab", "abc"))
	assert.Nil(t, FindLiteral("nothing here", "zebra"))
}

func TestFindLiteralTrimsQuery(t *testing.T) {
	matches := FindLiteral("one two three", "  two  ")
	require.Len(t, matches, 1)
	assert.Equal(t, 4, matches[0].Start)
}

func TestFindLiteralFoldedPath(t *testing.T) {
	// The Kelvin sign lowercases to a shorter byte sequence, forcing the
	// rune-wise fold scan. Offsets must stay valid for the original text.
	text := "Kelvin K here"
	matches := FindLiteral(text, "k")
	require.Len(t, matches, 2)
	assert.Equal(t, Match{Index: 0, Start: 0, End: 1}, matches[0])
	assert.Equal(t, Match{Index: 1, Start: 7, End: 10}, matches[1])
	assert.Equal(t, "K", text[matches[1].Start:matches[1].End])
}

func TestFindLiteralFoldedQueryLongerInBytes(t *testing.T) {
	// The Kelvin sign is three bytes to the text's one; the too-long check
	// must not reject a fold-equal single-rune match.
	matches := FindLiteral("k", "K")
	require.Len(t, matches, 1)
	assert.Equal(t, Match{Index: 0, Start: 0, End: 1}, matches[0])

	assert.Nil(t, FindLiteral("k", "KK"))
}

func TestEngineFindModes(t *testing.T) {
	engine := &Engine{Semantic: WordMatcher{}}

	literal := engine.Find("concatenate the cat", Query{Text: "cat", Mode: ModeLiteral})
	require.Len(t, literal, 2)

	// Semantic whole-word matching skips the embedded occurrence.
	semantic := engine.Find("concatenate the cat", Query{Text: "cat", Mode: ModeSemantic})
	require.Len(t, semantic, 1)
	assert.Equal(t, 16, semantic[0].Start)
}

func TestEngineFindSemanticWithoutMatcher(t *testing.T) {
	engine := &Engine{}
	assert.Nil(t, engine.Find("cat", Query{Text: "cat", Mode: ModeSemantic}))
}

func TestIndexSpans(t *testing.T) {
	spans := []Span{
		{Start: 10, End: 14},
		{Start: -3, End: 2},
		{Start: 12, End: 16}, // overlaps the first, dropped
		{Start: 18, End: 99},
	}
	matches := IndexSpans(spans, 20)
	require.Len(t, matches, 3)
	assert.Equal(t, Match{Index: 0, Start: 0, End: 2}, matches[0])
	assert.Equal(t, Match{Index: 1, Start: 10, End: 14}, matches[1])
	assert.Equal(t, Match{Index: 2, Start: 18, End: 20}, matches[2])
}

func TestIndexSpansEmpty(t *testing.T) {
	assert.Nil(t, IndexSpans(nil, 10))
	assert.Nil(t, IndexSpans([]Span{{Start: 5, End: 5}}, 10))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, Normalize("Test"), Normalize("  test  "))
	assert.Equal(t, "", Normalize("   "))
}

func BenchmarkFindLiteral(b *testing.B) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 2000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		FindLiteral(text, "Lazy")
	}
}
