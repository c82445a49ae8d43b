package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docview/search"
)

func TestProjectSlicesAtMatchBoundaries(t *testing.T) {
	text := "abcdef"
	matches := []search.Match{
		{Index: 0, Start: 1, End: 3},
		{Index: 1, Start: 4, End: 5},
	}
	frags := Project(text, matches, 1)
	require.Len(t, frags, 5)

	assert.Equal(t, Fragment{Kind: KindText, Content: "a", MatchIndex: -1}, frags[0])
	assert.Equal(t, Fragment{Kind: KindHighlight, Content: "bc", MatchIndex: 0}, frags[1])
	assert.Equal(t, Fragment{Kind: KindText, Content: "d", MatchIndex: -1}, frags[2])
	assert.Equal(t, Fragment{Kind: KindHighlight, Content: "e", MatchIndex: 1, Active: true}, frags[3])
	assert.Equal(t, Fragment{Kind: KindText, Content: "f", MatchIndex: -1}, frags[4])

	// Concatenated fragments reproduce the text exactly.
	var rebuilt string
	for _, f := range frags {
		rebuilt += f.Content
	}
	assert.Equal(t, text, rebuilt)
}

func TestProjectWithoutMatches(t *testing.T) {
	frags := Project("plain text", nil, -1)
	require.Len(t, frags, 1)
	assert.Equal(t, KindText, frags[0].Kind)
	assert.Equal(t, "plain text", frags[0].Content)

	assert.Nil(t, Project("", nil, -1))
}

func TestProjectAdjacentMatches(t *testing.T) {
	matches := []search.Match{
		{Index: 0, Start: 0, End: 2},
		{Index: 1, Start: 2, End: 4},
	}
	frags := Project("aaaa", matches, -1)
	require.Len(t, frags, 2)
	assert.Equal(t, KindHighlight, frags[0].Kind)
	assert.Equal(t, KindHighlight, frags[1].Kind)
}

func TestTextProjectorMemoizes(t *testing.T) {
	p := NewTextProjector()
	text := "one two one"
	matches := []search.Match{{Index: 0, Start: 0, End: 3}, {Index: 1, Start: 8, End: 11}}

	first := p.Project(text, matches, 0)
	second := p.Project(text, matches, 0)
	require.NotEmpty(t, first)
	// Unchanged inputs return the identical projection.
	assert.Same(t, &first[0], &second[0])

	// A different active index recomputes.
	third := p.Project(text, matches, 1)
	require.Len(t, third, 3)
	assert.False(t, third[0].Active)
	assert.True(t, third[2].Active)
}

func TestTextProjectorAnchors(t *testing.T) {
	p := NewTextProjector()
	matches := []search.Match{{Index: 0, Start: 0, End: 1}, {Index: 1, Start: 4, End: 5}}
	p.Project("a bc d", matches, 0)

	p.Register(0, 3)
	p.Register(1, 9)

	line, ok := p.Anchor(1)
	require.True(t, ok)
	assert.Equal(t, 9, line)

	// A shorter replacement list evicts anchors for vanished indices.
	p.Project("a bc d", []search.Match{{Index: 0, Start: 0, End: 1}}, 0)
	_, ok = p.Anchor(1)
	assert.False(t, ok)
	_, ok = p.Anchor(0)
	assert.True(t, ok)

	// Clearing all matches drops every anchor.
	p.Project("a bc d", nil, -1)
	_, ok = p.Anchor(0)
	assert.False(t, ok)
}
