// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTokenOutOfRange is returned when a token position does not exist in a
// sentence. Callers treat it as a structural annotation gap.
var ErrTokenOutOfRange = errors.New("token position out of range")

// Token is one annotated word of a sentence. Positions are 1-based and
// contiguous within a sentence.
type Token struct {
	Position int    `json:"position" yaml:"position"`
	Word     string `json:"word" yaml:"word"`
	Lemma    string `json:"lemma" yaml:"lemma"`
	POS      string `json:"pos" yaml:"pos"`
}

// Edge is a labeled dependency from Gov to Dep.
type Edge struct {
	Gov int    `json:"gov" yaml:"gov"`
	Dep int    `json:"dep" yaml:"dep"`
	Rel string `json:"rel" yaml:"rel"`
}

// Sentence is a parsed sentence as produced by the upstream annotator.
type Sentence struct {
	// Text is the raw sentence text.
	Text string `json:"text" yaml:"text"`

	// Tokens holds the tokens in order; Tokens[i].Position == i+1.
	Tokens []Token `json:"tokens" yaml:"tokens"`

	// Edges holds the dependency edges between tokens of this sentence.
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Len returns the number of tokens.
func (s *Sentence) Len() int {
	return len(s.Tokens)
}

// HasToken reports whether pos names a token of the sentence.
func (s *Sentence) HasToken(pos int) bool {
	return pos >= 1 && pos <= len(s.Tokens)
}

// Token returns the token at pos.
func (s *Sentence) Token(pos int) (Token, error) {
	if !s.HasToken(pos) {
		return Token{}, fmt.Errorf("%w: %d not in [1,%d]", ErrTokenOutOfRange, pos, len(s.Tokens))
	}
	return s.Tokens[pos-1], nil
}

// POS returns the part-of-speech tag at pos.
func (s *Sentence) POS(pos int) (string, error) {
	t, err := s.Token(pos)
	return t.POS, err
}

// Lemma returns the lemma at pos.
func (s *Sentence) Lemma(pos int) (string, error) {
	t, err := s.Token(pos)
	return t.Lemma, err
}

// Word returns the surface word at pos.
func (s *Sentence) Word(pos int) (string, error) {
	t, err := s.Token(pos)
	return t.Word, err
}

// IsQuestion reports whether the raw text contains a question mark.
func (s *Sentence) IsQuestion() bool {
	return strings.Contains(s.Text, "?")
}

// Governors returns the edges in which pos is the dependent.
func (s *Sentence) Governors(pos int) []Edge {
	var out []Edge
	for _, e := range s.Edges {
		if e.Dep == pos {
			out = append(out, e)
		}
	}
	return out
}

// Dependents returns the edges in which pos is the governor.
func (s *Sentence) Dependents(pos int) []Edge {
	var out []Edge
	for _, e := range s.Edges {
		if e.Gov == pos {
			out = append(out, e)
		}
	}
	return out
}

// Validate checks that positions are contiguous and that every edge
// references tokens of this sentence.
func (s *Sentence) Validate() error {
	for i, t := range s.Tokens {
		if t.Position != i+1 {
			return fmt.Errorf("token %q at index %d has position %d: %w", t.Word, i, t.Position, ErrTokenOutOfRange)
		}
	}
	for _, e := range s.Edges {
		if !s.HasToken(e.Gov) || !s.HasToken(e.Dep) {
			return fmt.Errorf("edge %s(%d, %d): %w", e.Rel, e.Gov, e.Dep, ErrTokenOutOfRange)
		}
	}
	return nil
}

// IsNoun reports whether a Penn Treebank tag is a noun tag.
func IsNoun(pos string) bool {
	return strings.HasPrefix(strings.ToLower(pos), "nn")
}

// IsProperNoun reports whether a Penn Treebank tag is a proper noun tag.
func IsProperNoun(pos string) bool {
	return strings.HasPrefix(strings.ToLower(pos), "nnp")
}

// IsVerb reports whether a Penn Treebank tag is a verb tag.
func IsVerb(pos string) bool {
	return strings.HasPrefix(strings.ToLower(pos), "vb")
}

// IsAdjective reports whether a Penn Treebank tag is an adjective tag.
func IsAdjective(pos string) bool {
	return strings.HasPrefix(strings.ToLower(pos), "jj")
}

// IsWh reports whether a Penn Treebank tag is a wh-word tag (WDT, WP, WP$, WRB).
func IsWh(pos string) bool {
	return strings.HasPrefix(strings.ToLower(pos), "w")
}

// IsCardinal reports whether a tag marks a cardinal number.
func IsCardinal(pos string) bool {
	return strings.EqualFold(pos, "cd")
}

// IsPossessiveLemma reports whether lemma is a copular or possessive verb
// (be, has, have).
func IsPossessiveLemma(lemma string) bool {
	return strings.EqualFold(lemma, "be") || strings.EqualFold(lemma, "has") || strings.EqualFold(lemma, "have")
}
