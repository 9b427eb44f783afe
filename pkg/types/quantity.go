// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"sort"
	"strings"
)

// Relation names a slot of a quantity's context bundle.
type Relation string

const (
	RelVerb       Relation = "verb"
	RelAmod       Relation = "amod"
	RelNsubj      Relation = "nsubj"
	RelTmod       Relation = "tmod"
	RelIobj       Relation = "iobj"
	RelDobj       Relation = "dobj"
	RelPrepOf     Relation = "prep_of"
	RelPrepIn     Relation = "prep_in"
	RelPrepTo     Relation = "prep_to"
	RelCcomp      Relation = "ccomp"
	RelAdvmod     Relation = "advmod"
	RelNmod       Relation = "nmod"
	RelPrepInAmod Relation = "prep_in_amod"
	RelXcomp      Relation = "xcomp"
	RelDep        Relation = "dep"
)

// Relations is the fixed context vocabulary, in the order it is reported.
var Relations = []Relation{
	RelVerb, RelAmod, RelNsubj, RelTmod, RelIobj, RelDobj, RelPrepOf,
	RelPrepIn, RelPrepTo, RelCcomp, RelAdvmod, RelNmod, RelPrepInAmod,
	RelXcomp, RelDep,
}

// Positions is a sorted set of token positions.
type Positions []int

// NewPositions builds a sorted, duplicate-free set from ps.
func NewPositions(ps ...int) Positions {
	if len(ps) == 0 {
		return Positions{}
	}
	out := make(Positions, len(ps))
	copy(out, ps)
	sort.Ints(out)
	n := 0
	for i, p := range out {
		if i == 0 || p != out[n-1] {
			out[n] = p
			n++
		}
	}
	return out[:n]
}

// Contains reports whether p is in the set.
func (ps Positions) Contains(p int) bool {
	i := sort.SearchInts(ps, p)
	return i < len(ps) && ps[i] == p
}

// Union returns the set union of ps and others.
func (ps Positions) Union(others ...Positions) Positions {
	all := append([]int(nil), ps...)
	for _, o := range others {
		all = append(all, o...)
	}
	return NewPositions(all...)
}

// Context maps every relation of the fixed vocabulary to the positions
// satisfying it for one quantity.
type Context map[Relation]Positions

// NewContext returns a context with every relation present and empty.
func NewContext() Context {
	c := make(Context, len(Relations))
	for _, r := range Relations {
		c[r] = Positions{}
	}
	return c
}

// NounPhrase is the ordered token sequence typing a quantity. A resolved
// phrase is shared read-only between quantities when it is propagated.
type NounPhrase struct {
	Tokens []Token `json:"tokens" yaml:"tokens"`
}

// IsEmpty reports whether the phrase has no tokens.
func (np *NounPhrase) IsEmpty() bool {
	return np == nil || len(np.Tokens) == 0
}

// Head returns the last token of the phrase.
func (np *NounPhrase) Head() (Token, bool) {
	if np.IsEmpty() {
		return Token{}, false
	}
	return np.Tokens[len(np.Tokens)-1], true
}

// Positions returns the token positions of the phrase.
func (np *NounPhrase) Positions() []int {
	if np == nil {
		return nil
	}
	out := make([]int, len(np.Tokens))
	for i, t := range np.Tokens {
		out[i] = t.Position
	}
	return out
}

// String joins the words of the phrase.
func (np *NounPhrase) String() string {
	if np == nil {
		return ""
	}
	words := make([]string, len(np.Tokens))
	for i, t := range np.Tokens {
		words[i] = t.Word
	}
	return strings.Join(words, " ")
}

// NoPart marks a quantity that is not a part of another.
const NoPart = -1

// Quantity is a stated number or a question target found in a problem.
type Quantity struct {
	// Value is the surface numeric string; empty for unknowns.
	Value string `json:"value" yaml:"value"`

	// SentenceID is the 1-based index of the origin sentence.
	SentenceID int `json:"sentence_id" yaml:"sentence_id"`

	// Position is the 1-based token position inside the sentence.
	Position int `json:"position" yaml:"position"`

	// Type is the noun phrase the quantity counts.
	Type *NounPhrase `json:"type" yaml:"type"`

	// Context holds the grammatically related tokens by relation.
	Context Context `json:"context" yaml:"context"`

	IsUnknown bool `json:"is_unknown" yaml:"is_unknown"`
	IsPart    bool `json:"is_part" yaml:"is_part"`

	// PartOf is the index in Problem.Quantities of the quantity this one
	// is a part of, or NoPart.
	PartOf int `json:"part_of" yaml:"part_of"`

	// UniqueID keys pairwise features.
	UniqueID string `json:"unique_id" yaml:"unique_id"`
}

// Problem is one word problem: its sentences and the quantities found in
// them, constants and unknowns in discovery order.
type Problem struct {
	ID         string      `json:"id" yaml:"id"`
	Sentences  []*Sentence `json:"sentences" yaml:"sentences"`
	Quantities []*Quantity `json:"quantities" yaml:"quantities"`
}

// Len returns the number of quantities registered so far.
func (p *Problem) Len() int {
	return len(p.Quantities)
}

// Sentence returns the sentence with 1-based id sid.
func (p *Problem) Sentence(sid int) (*Sentence, error) {
	if sid < 1 || sid > len(p.Sentences) {
		return nil, fmt.Errorf("sentence %d of problem %q: %w", sid, p.ID, ErrTokenOutOfRange)
	}
	return p.Sentences[sid-1], nil
}

// AddConstant registers a stated quantity and returns it.
func (p *Problem) AddConstant(value string, sid, pos int) *Quantity {
	return p.add(&Quantity{Value: value, SentenceID: sid, Position: pos})
}

// AddUnknown registers a question target and returns it.
func (p *Problem) AddUnknown(sid, pos int) *Quantity {
	return p.add(&Quantity{SentenceID: sid, Position: pos, IsUnknown: true})
}

func (p *Problem) add(q *Quantity) *Quantity {
	q.Context = NewContext()
	q.PartOf = NoPart
	q.Type = &NounPhrase{}
	q.UniqueID = fmt.Sprintf("s%dp%d", q.SentenceID, q.Position)
	p.Quantities = append(p.Quantities, q)
	return q
}

// ContextTokens resolves the positions stored under rel to tokens of the
// quantity's own sentence.
func (p *Problem) ContextTokens(q *Quantity, rel Relation) ([]Token, error) {
	s, err := p.Sentence(q.SentenceID)
	if err != nil {
		return nil, err
	}
	ps := q.Context[rel]
	out := make([]Token, 0, len(ps))
	for _, pos := range ps {
		t, err := s.Token(pos)
		if err != nil {
			return nil, fmt.Errorf("context %s of %s: %w", rel, q.UniqueID, err)
		}
		out = append(out, t)
	}
	return out, nil
}
