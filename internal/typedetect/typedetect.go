// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package typedetect finds the noun phrase a quantity counts.
package typedetect

import (
	"strings"

	"github.com/pdiddy/wordproblem-engine/pkg/types"
)

// modifierRels attach a number or quantifier to the noun it counts.
var modifierRels = map[string]bool{
	"num":      true,
	"nummod":   true,
	"amod":     true,
	"quantmod": true,
	"number":   true,
	"det":      true,
	"advmod":   true,
	"nsubj":    true,
}

// compoundRels attach the non-head words of a noun phrase.
var compoundRels = map[string]bool{
	"nn":       true,
	"compound": true,
}

// objectRels attach a nominal object to its governor.
var objectRels = []string{"dobj", "obj", "iobj", "pobj", "prep_", "nmod", "obl"}

// FindType returns the noun phrase nearest to anchor that types it: a
// nominal governor reached through a modifier edge, the anchor itself when
// it is a noun, or the closest noun to its right inside the same phrase.
// When several candidates exist, the one whose head lemma matches the head
// of previous wins. The result is empty when nothing is found.
func FindType(anchor types.Token, s *types.Sentence, previous *types.NounPhrase) *types.NounPhrase {
	if !s.HasToken(anchor.Position) {
		return &types.NounPhrase{}
	}

	var candidates []int
	for _, e := range s.Governors(anchor.Position) {
		if modifierRels[strings.ToLower(e.Rel)] && s.HasToken(e.Gov) && types.IsNoun(s.Tokens[e.Gov-1].POS) {
			candidates = append(candidates, e.Gov)
		}
	}
	if types.IsNoun(anchor.POS) {
		candidates = append(candidates, anchor.Position)
	}
	if right, ok := nounToRight(anchor.Position, s); ok {
		candidates = append(candidates, right)
	}
	if len(candidates) == 0 {
		return &types.NounPhrase{}
	}

	head := candidates[0]
	if prevHead, ok := previous.Head(); ok && len(candidates) > 1 {
		for _, c := range candidates {
			if strings.EqualFold(s.Tokens[c-1].Lemma, prevHead.Lemma) {
				head = c
				break
			}
		}
	}
	return phrase(head, s)
}

// FindObj returns the first nominal object of s lying left of rightBoundary,
// or the first common noun there when no object edge qualifies. A boundary
// of zero or less leaves the sentence unbounded.
func FindObj(s *types.Sentence, rightBoundary int) *types.NounPhrase {
	inRange := func(pos int) bool {
		return s.HasToken(pos) && (rightBoundary <= 0 || pos < rightBoundary)
	}

	best := 0
	for _, e := range s.Edges {
		if !inRange(e.Dep) || !isObjectRel(e.Rel) || !types.IsNoun(s.Tokens[e.Dep-1].POS) {
			continue
		}
		if best == 0 || e.Dep < best {
			best = e.Dep
		}
	}
	if best != 0 {
		return phrase(best, s)
	}

	for _, t := range s.Tokens {
		if !inRange(t.Position) {
			break
		}
		if types.IsNoun(t.POS) && !types.IsProperNoun(t.POS) {
			return phrase(t.Position, s)
		}
	}
	return &types.NounPhrase{}
}

// nounToRight scans right of pos through adjectives, determiners and other
// nouns and returns the first noun, stopping at anything that ends a phrase.
func nounToRight(pos int, s *types.Sentence) (int, bool) {
	for p := pos + 1; s.HasToken(p); p++ {
		tag := s.Tokens[p-1].POS
		switch {
		case types.IsNoun(tag):
			return p, true
		case types.IsAdjective(tag), strings.EqualFold(tag, "dt"), strings.EqualFold(tag, "prp$"):
			continue
		default:
			return 0, false
		}
	}
	return 0, false
}

// phrase builds the noun phrase headed by head: its compound dependents and
// the head itself, in sentence order.
func phrase(head int, s *types.Sentence) *types.NounPhrase {
	ps := []int{head}
	for _, e := range s.Dependents(head) {
		if compoundRels[strings.ToLower(e.Rel)] && s.HasToken(e.Dep) {
			ps = append(ps, e.Dep)
		}
	}
	np := &types.NounPhrase{}
	for _, p := range types.NewPositions(ps...) {
		np.Tokens = append(np.Tokens, s.Tokens[p-1])
	}
	return np
}

func isObjectRel(rel string) bool {
	rel = strings.ToLower(rel)
	for _, o := range objectRels {
		if rel == o || (strings.HasSuffix(o, "_") && strings.HasPrefix(rel, o)) || strings.HasPrefix(rel, o+":") {
			return true
		}
	}
	return false
}
