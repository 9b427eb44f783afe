// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSentence() *Sentence {
	return &Sentence{
		Text: "Tom has 3 apples.",
		Tokens: []Token{
			{Position: 1, Word: "Tom", Lemma: "tom", POS: "NNP"},
			{Position: 2, Word: "has", Lemma: "have", POS: "VBZ"},
			{Position: 3, Word: "3", Lemma: "3", POS: "CD"},
			{Position: 4, Word: "apples", Lemma: "apple", POS: "NNS"},
		},
		Edges: []Edge{{Gov: 2, Dep: 1, Rel: "nsubj"}, {Gov: 2, Dep: 4, Rel: "dobj"}, {Gov: 4, Dep: 3, Rel: "num"}},
	}
}

func TestSentenceAccessors(t *testing.T) {
	s := testSentence()

	lemma, err := s.Lemma(2)
	require.NoError(t, err)
	assert.Equal(t, "have", lemma)

	pos, err := s.POS(3)
	require.NoError(t, err)
	assert.Equal(t, "CD", pos)

	_, err = s.Word(0)
	assert.ErrorIs(t, err, ErrTokenOutOfRange)
	_, err = s.Token(5)
	assert.ErrorIs(t, err, ErrTokenOutOfRange)

	assert.False(t, s.IsQuestion())
	assert.Equal(t, []Edge{{Gov: 4, Dep: 3, Rel: "num"}}, s.Governors(3))
	assert.Len(t, s.Dependents(2), 2)
	assert.Empty(t, s.Dependents(1))
}

func TestSentenceValidate(t *testing.T) {
	s := testSentence()
	require.NoError(t, s.Validate())

	s.Edges = append(s.Edges, Edge{Gov: 9, Dep: 1, Rel: "x"})
	assert.ErrorIs(t, s.Validate(), ErrTokenOutOfRange)

	s = testSentence()
	s.Tokens[1].Position = 7
	assert.ErrorIs(t, s.Validate(), ErrTokenOutOfRange)
}

func TestTagHelpers(t *testing.T) {
	assert.True(t, IsNoun("NNS"))
	assert.True(t, IsNoun("nnp"))
	assert.False(t, IsNoun("CD"))
	assert.True(t, IsProperNoun("NNPS"))
	assert.False(t, IsProperNoun("NN"))
	assert.True(t, IsVerb("VBD"))
	assert.True(t, IsAdjective("JJR"))
	assert.True(t, IsWh("WRB"))
	assert.True(t, IsWh("WP$"))
	assert.True(t, IsCardinal("cd"))
	assert.True(t, IsPossessiveLemma("Have"))
	assert.True(t, IsPossessiveLemma("be"))
	assert.False(t, IsPossessiveLemma("give"))
}

func TestPositions(t *testing.T) {
	ps := NewPositions(4, 1, 4, 2)
	assert.Equal(t, Positions{1, 2, 4}, ps)
	assert.True(t, ps.Contains(4))
	assert.False(t, ps.Contains(3))

	assert.NotNil(t, NewPositions())
	assert.Empty(t, NewPositions())

	assert.Equal(t, Positions{1, 2, 3, 4}, ps.Union(NewPositions(3), NewPositions(1)))
	assert.Equal(t, Positions{1, 2, 4}, ps, "union leaves the receiver alone")
}

func TestNewContext(t *testing.T) {
	c := NewContext()
	assert.Len(t, c, 15)
	for _, r := range Relations {
		ps, ok := c[r]
		assert.True(t, ok, string(r))
		assert.Empty(t, ps)
	}
}

func TestNounPhrase(t *testing.T) {
	var nilPhrase *NounPhrase
	assert.True(t, nilPhrase.IsEmpty())
	assert.Equal(t, "", nilPhrase.String())
	_, ok := nilPhrase.Head()
	assert.False(t, ok)

	s := testSentence()
	np := &NounPhrase{Tokens: []Token{s.Tokens[0], s.Tokens[3]}}
	head, ok := np.Head()
	require.True(t, ok)
	assert.Equal(t, "apple", head.Lemma)
	assert.Equal(t, []int{1, 4}, np.Positions())
	assert.Equal(t, "Tom apples", np.String())
}

func TestProblemAdd(t *testing.T) {
	p := &Problem{ID: "p", Sentences: []*Sentence{testSentence()}}

	c := p.AddConstant("3", 1, 3)
	u := p.AddUnknown(1, 4)

	assert.Equal(t, 2, p.Len())
	assert.Equal(t, "s1p3", c.UniqueID)
	assert.Equal(t, "s1p4", u.UniqueID)
	assert.True(t, u.IsUnknown)
	assert.Empty(t, u.Value)
	for _, q := range p.Quantities {
		assert.Equal(t, NoPart, q.PartOf)
		assert.True(t, q.Type.IsEmpty())
		assert.Len(t, q.Context, len(Relations))
	}
}

func TestProblemContextTokens(t *testing.T) {
	p := &Problem{ID: "p", Sentences: []*Sentence{testSentence()}}
	q := p.AddConstant("3", 1, 3)
	q.Context[RelNsubj] = NewPositions(1)

	toks, err := p.ContextTokens(q, RelNsubj)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, "Tom", toks[0].Word)

	q.Context[RelDobj] = NewPositions(12)
	_, err = p.ContextTokens(q, RelDobj)
	assert.ErrorIs(t, err, ErrTokenOutOfRange)

	_, err = p.Sentence(2)
	assert.ErrorIs(t, err, ErrTokenOutOfRange)
}

func TestConceptValidate(t *testing.T) {
	tests := []struct {
		name    string
		concept Concept
		wantErr bool
	}{
		{
			name:    "change with default start",
			concept: Concept{Kind: ConceptChange, Change: &ChangeConcept{Start: DefaultQuantity, End: 2, Losses: []int{1}}},
		},
		{
			name:    "change end out of range",
			concept: Concept{Kind: ConceptChange, Change: &ChangeConcept{Start: 0, End: 3}},
			wantErr: true,
		},
		{
			name:    "change default end",
			concept: Concept{Kind: ConceptChange, Change: &ChangeConcept{Start: 0, End: DefaultQuantity}},
			wantErr: true,
		},
		{
			name:    "change missing payload",
			concept: Concept{Kind: ConceptChange},
			wantErr: true,
		},
		{
			name:    "part-whole",
			concept: Concept{Kind: ConceptPartWhole, PartWhole: &PartWholeConcept{Whole: 2, Parts: []int{0, 1}}},
		},
		{
			name:    "part-whole bad part",
			concept: Concept{Kind: ConceptPartWhole, PartWhole: &PartWholeConcept{Whole: 2, Parts: []int{5}}},
			wantErr: true,
		},
		{
			name:    "comparison",
			concept: Concept{Kind: ConceptComparison, Comparison: &ComparisonConcept{Large: 0, Small: 1, Difference: 2}},
		},
		{
			name:    "comparison default slot",
			concept: Concept{Kind: ConceptComparison, Comparison: &ComparisonConcept{Large: 0, Small: 1, Difference: DefaultQuantity}},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			concept: Concept{Kind: "ratio"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.concept.Validate(3)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSampleQuantities(t *testing.T) {
	assert.Nil(t, (&Sample{}).Quantities())

	p := &Problem{}
	p.AddConstant("1", 1, 1)
	assert.Len(t, (&Sample{Problem: p}).Quantities(), 1)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "results", cfg.Store.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}
