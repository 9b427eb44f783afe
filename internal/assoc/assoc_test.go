// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assoc

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/wordproblem-engine/pkg/types"
)

func tok(pos int, word, tag string) types.Token {
	return types.Token{Position: pos, Word: word, Lemma: word, POS: tag}
}

// "Tom put 3 apples of Sam in the big box hoping quietly , ripe , eager"
func boxSentence() *types.Sentence {
	return &types.Sentence{
		Text: "Tom put 3 apples of Sam in the big box hoping quietly, ripe, eager",
		Tokens: []types.Token{
			tok(1, "Tom", "NNP"),
			tok(2, "put", "VBD"),
			tok(3, "3", "CD"),
			tok(4, "apples", "NNS"),
			tok(5, "of", "IN"),
			tok(6, "Sam", "NNP"),
			tok(7, "in", "IN"),
			tok(8, "the", "DT"),
			tok(9, "big", "JJ"),
			tok(10, "box", "NN"),
			tok(11, "hoping", "VBG"),
			tok(12, "quietly", "RB"),
			tok(13, "ripe", "JJ"),
			tok(14, "eager", "JJ"),
		},
		Edges: []types.Edge{
			{Gov: 2, Dep: 1, Rel: "nsubj"},
			{Gov: 2, Dep: 4, Rel: "dobj"},
			{Gov: 4, Dep: 3, Rel: "num"},
			{Gov: 4, Dep: 6, Rel: "prep_of"},
			{Gov: 6, Dep: 10, Rel: "prep_in"},
			{Gov: 10, Dep: 9, Rel: "amod"},
			{Gov: 10, Dep: 8, Rel: "det"},
			{Gov: 2, Dep: 11, Rel: "ccomp"},
			{Gov: 11, Dep: 12, Rel: "advmod"},
			{Gov: 4, Dep: 13, Rel: "amod"},
			{Gov: 2, Dep: 14, Rel: "amod"},
		},
	}
}

// "How many apples does Tom have ?"
func question() *types.Sentence {
	return &types.Sentence{
		Text: "How many apples does Tom have?",
		Tokens: []types.Token{
			tok(1, "How", "WRB"),
			tok(2, "many", "JJ"),
			tok(3, "apples", "NNS"),
			tok(4, "does", "VBZ"),
			tok(5, "Tom", "NNP"),
			tok(6, "have", "VB"),
			tok(7, "?", "."),
		},
		Edges: []types.Edge{
			{Gov: 6, Dep: 3, Rel: "dobj"},
			{Gov: 6, Dep: 5, Rel: "nsubj"},
			{Gov: 6, Dep: 4, Rel: "aux"},
			{Gov: 3, Dep: 2, Rel: "amod"},
			{Gov: 2, Dep: 1, Rel: "advmod"},
		},
	}
}

func TestFindAssociatedWord(t *testing.T) {
	f := New()
	s := boxSentence()

	tests := []struct {
		name    string
		anchors []int
		target  string
		want    types.Positions
	}{
		{"governing verb", []int{3, 4}, "vb", types.NewPositions(2)},
		{"tag prefix is case-insensitive", []int{3, 4}, "VB", types.NewPositions(2)},
		{"nouns one edge away", []int{4}, "nn", types.NewPositions(6)},
		{"anchors are excluded", []int{4, 6}, "nn", types.NewPositions(10)},
		{"both directions", []int{10}, "", types.NewPositions(6, 8, 9)},
		{"invalid anchors ignored", []int{0, 99}, "vb", types.NewPositions()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.FindAssociatedWord(tt.anchors, s, tt.target))
		})
	}
}

func TestFindAssociatedWordForQuestion(t *testing.T) {
	f := New()
	s := question()

	t.Run("wh anchors dropped", func(t *testing.T) {
		assert.Equal(t, types.NewPositions(6), f.FindAssociatedWordForQuestion([]int{1, 1, 3}, s, "vb"))
	})

	t.Run("wh words never returned", func(t *testing.T) {
		assert.Equal(t, types.NewPositions(3), f.FindAssociatedWordForQuestion([]int{2}, s, ""))
	})

	t.Run("climbs to a governing verb", func(t *testing.T) {
		assert.Equal(t, types.NewPositions(6), f.FindAssociatedWordForQuestion([]int{2}, s, "vb"))
	})

	t.Run("only wh anchors", func(t *testing.T) {
		assert.Empty(t, f.FindAssociatedWordForQuestion([]int{1}, s, "vb"))
	})

	t.Run("cyclic graph terminates", func(t *testing.T) {
		cyclic := &types.Sentence{
			Tokens: []types.Token{tok(1, "a", "NN"), tok(2, "b", "NN"), tok(3, "c", "NN")},
			Edges:  []types.Edge{{Gov: 1, Dep: 2, Rel: "x"}, {Gov: 2, Dep: 1, Rel: "y"}},
		}
		assert.Empty(t, f.FindAssociatedWordForQuestion([]int{1}, cyclic, "vb"))
	})
}

func TestFindAssociatedWordWithRel(t *testing.T) {
	s := boxSentence()

	t.Run("verb and type anchors", func(t *testing.T) {
		f := New()
		assert.Equal(t, types.NewPositions(1), f.FindAssociatedWordWithRel(types.NewPositions(2), []int{3, 4}, s, "nsubj"))
		assert.Equal(t, types.NewPositions(6), f.FindAssociatedWordWithRel(types.NewPositions(2), []int{3, 4}, s, "prep_of"))
	})

	t.Run("label match is case-insensitive", func(t *testing.T) {
		f := New()
		assert.Equal(t, types.NewPositions(4), f.FindAssociatedWordWithRel(types.NewPositions(2), nil, s, "DOBJ"))
	})

	t.Run("aliases", func(t *testing.T) {
		ud := &types.Sentence{
			Tokens: []types.Token{tok(1, "Tom", "PROPN"), tok(2, "ate", "VERB"), tok(3, "pies", "NOUN"), tok(4, "kitchen", "NOUN")},
			Edges: []types.Edge{
				{Gov: 2, Dep: 1, Rel: "nsubj"},
				{Gov: 2, Dep: 3, Rel: "obj"},
				{Gov: 2, Dep: 4, Rel: "obl:in"},
			},
		}
		plain := New()
		assert.Empty(t, plain.FindAssociatedWordWithRel(types.NewPositions(2), nil, ud, "dobj"))

		f := New(WithRelationAliases(UniversalAliases()))
		assert.Equal(t, types.NewPositions(3), f.FindAssociatedWordWithRel(types.NewPositions(2), nil, ud, "dobj"))
		assert.Equal(t, types.NewPositions(4), f.FindAssociatedWordWithRel(types.NewPositions(2), nil, ud, "prep_in"))
	})
}

func TestContext(t *testing.T) {
	f := New()
	s := boxSentence()

	c := f.Context(types.NewPositions(2), []int{3, 4}, s)
	assert.Len(t, c, len(types.Relations))

	want := map[types.Relation]types.Positions{
		types.RelVerb:       types.NewPositions(2),
		types.RelNsubj:      types.NewPositions(1),
		types.RelDobj:       types.NewPositions(4),
		types.RelPrepOf:     types.NewPositions(6),
		types.RelCcomp:      types.NewPositions(11),
		types.RelPrepIn:     types.NewPositions(10),
		types.RelAdvmod:     types.NewPositions(12),
		types.RelAmod:       types.NewPositions(13, 14),
		types.RelPrepInAmod: types.NewPositions(9),
	}
	for _, rel := range types.Relations {
		expected, ok := want[rel]
		if !ok {
			expected = types.NewPositions()
		}
		assert.Equal(t, expected, c[rel], string(rel))
	}
}

func TestContext_NoVerb(t *testing.T) {
	c := New().Context(types.NewPositions(), []int{4}, boxSentence())
	assert.Empty(t, c[types.RelNsubj])
	assert.Equal(t, types.NewPositions(6), c[types.RelPrepOf])
	assert.Equal(t, types.NewPositions(10), c[types.RelPrepIn])
	assert.Equal(t, types.NewPositions(9), c[types.RelPrepInAmod])
	assert.Equal(t, types.NewPositions(13), c[types.RelAmod])
}

func TestContext_PrepInAmodSkipsVerbAndType(t *testing.T) {
	c := New().Context(types.NewPositions(2), []int{3, 4}, boxSentence())

	assert.Equal(t, types.NewPositions(9), c[types.RelPrepInAmod])
	assert.NotContains(t, c[types.RelPrepInAmod], 13, "modifier of a type token")
	assert.NotContains(t, c[types.RelPrepInAmod], 14, "modifier of the verb")
	assert.Contains(t, c[types.RelAmod], 13)
	assert.Contains(t, c[types.RelAmod], 14)
}

func TestDebugTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	New(WithLogger(logger)).FindAssociatedWord([]int{4}, boxSentence(), "vb")
	assert.Empty(t, buf.String())

	New(WithLogger(logger), WithDebug(true)).FindAssociatedWord([]int{4}, boxSentence(), "vb")
	assert.Contains(t, buf.String(), "associated words")
}
