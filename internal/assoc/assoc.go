// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assoc answers one-step queries over a sentence's dependency graph:
// which tokens of a given part of speech, or attached by a given relation,
// are reachable from a set of anchor tokens.
package assoc

import (
	"log/slog"
	"strings"

	"github.com/pdiddy/wordproblem-engine/pkg/types"
)

// Finder runs associated-word queries. The zero value is not usable; call New.
type Finder struct {
	logger  *slog.Logger
	debug   bool
	aliases map[string][]string
}

// Option configures a Finder.
type Option func(*Finder)

// WithLogger sets the logger used for debug traces.
func WithLogger(l *slog.Logger) Option {
	return func(f *Finder) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithDebug logs every lookup and its result at debug level.
func WithDebug(debug bool) Option {
	return func(f *Finder) { f.debug = debug }
}

// WithRelationAliases lets additional edge labels satisfy a relation.
// Keys and values are compared case-insensitively.
func WithRelationAliases(aliases map[string][]string) Option {
	return func(f *Finder) {
		for rel, labels := range aliases {
			key := strings.ToLower(rel)
			f.aliases[key] = append(f.aliases[key], labels...)
		}
	}
}

// UniversalAliases maps collapsed Stanford labels to their Universal
// Dependencies counterparts.
func UniversalAliases() map[string][]string {
	return map[string][]string{
		"dobj":    {"obj"},
		"prep_of": {"nmod:of", "obl:of"},
		"prep_in": {"nmod:in", "obl:in"},
		"prep_to": {"nmod:to", "obl:to"},
		"tmod":    {"nmod:tmod", "obl:tmod"},
		"nmod":    {"obl"},
	}
}

// New returns a Finder.
func New(opts ...Option) *Finder {
	f := &Finder{
		logger:  slog.Default(),
		aliases: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FindAssociatedWord returns the tokens one edge away from any anchor, in
// either direction, whose tag starts with targetPOS (case-insensitive).
// Anchors are never returned.
func (f *Finder) FindAssociatedWord(anchors []int, s *types.Sentence, targetPOS string) types.Positions {
	valid := validAnchors(anchors, s)
	out := f.neighbors(valid, s, targetPOS, false)
	f.trace("pos", targetPOS, valid, out)
	return out
}

// FindAssociatedWordForQuestion is FindAssociatedWord for question
// sentences. Wh-word anchors do not propagate and wh-words are never
// returned. When no neighbor matches, the governor chain of each anchor is
// climbed towards the root and the first matching governor is taken.
func (f *Finder) FindAssociatedWordForQuestion(anchors []int, s *types.Sentence, targetPOS string) types.Positions {
	var kept []int
	for _, a := range validAnchors(anchors, s) {
		if !types.IsWh(s.Tokens[a-1].POS) {
			kept = append(kept, a)
		}
	}

	out := f.neighbors(kept, s, targetPOS, true)
	if len(out) == 0 {
		var found []int
		for _, a := range kept {
			if g, ok := climb(a, s, targetPOS); ok {
				found = append(found, g)
			}
		}
		out = types.NewPositions(found...)
	}
	f.trace("question pos", targetPOS, kept, out)
	return out
}

// FindAssociatedWordWithRel returns the dependents, attached by an edge
// labeled rel, of any token in verbAnchors or typeAnchors.
func (f *Finder) FindAssociatedWordWithRel(verbAnchors types.Positions, typeAnchors []int, s *types.Sentence, rel string) types.Positions {
	anchors := types.NewPositions(validAnchors(append(append([]int(nil), verbAnchors...), typeAnchors...), s)...)

	var found []int
	for _, e := range s.Edges {
		if anchors.Contains(e.Gov) && f.matches(e.Rel, rel) {
			found = append(found, e.Dep)
		}
	}
	out := types.NewPositions(found...)
	f.trace("relation", rel, anchors, out)
	return out
}

// Context fills the whole relation vocabulary for a quantity whose governing
// verbs are verb and whose own and type tokens are typeIDs.
//
// Three lookups are chained: prep_in also starts from the prep_of results,
// advmod also starts from the ccomp results, and prep_in_amod looks for
// adjectival modifiers of the prep_in results alone, without verb anchors.
func (f *Finder) Context(verb types.Positions, typeIDs []int, s *types.Sentence) types.Context {
	c := types.NewContext()
	c[types.RelVerb] = types.NewPositions(verb...)

	for _, rel := range []types.Relation{
		types.RelNsubj, types.RelIobj, types.RelPrepOf, types.RelPrepTo,
		types.RelNmod, types.RelDobj, types.RelTmod, types.RelAmod,
		types.RelXcomp, types.RelDep, types.RelCcomp,
	} {
		c[rel] = f.FindAssociatedWordWithRel(verb, typeIDs, s, string(rel))
	}

	c[types.RelPrepIn] = f.FindAssociatedWordWithRel(verb,
		types.NewPositions(typeIDs...).Union(c[types.RelPrepOf]), s, string(types.RelPrepIn))
	c[types.RelAdvmod] = f.FindAssociatedWordWithRel(verb,
		types.NewPositions(typeIDs...).Union(c[types.RelCcomp]), s, string(types.RelAdvmod))
	c[types.RelPrepInAmod] = f.FindAssociatedWordWithRel(types.Positions{},
		c[types.RelPrepIn], s, string(types.RelAmod))

	return c
}

func (f *Finder) neighbors(anchors []int, s *types.Sentence, targetPOS string, skipWh bool) types.Positions {
	isAnchor := types.NewPositions(anchors...)
	var found []int
	consider := func(pos int) {
		if isAnchor.Contains(pos) || !s.HasToken(pos) {
			return
		}
		tag := s.Tokens[pos-1].POS
		if skipWh && types.IsWh(tag) {
			return
		}
		if hasTagPrefix(tag, targetPOS) {
			found = append(found, pos)
		}
	}
	for _, a := range anchors {
		for _, e := range s.Governors(a) {
			consider(e.Gov)
		}
		for _, e := range s.Dependents(a) {
			consider(e.Dep)
		}
	}
	return types.NewPositions(found...)
}

// climb follows first governors upwards from pos until a token tagged
// targetPOS is found or the root is reached.
func climb(pos int, s *types.Sentence, targetPOS string) (int, bool) {
	seen := map[int]bool{pos: true}
	for {
		govs := s.Governors(pos)
		if len(govs) == 0 {
			return 0, false
		}
		pos = govs[0].Gov
		if seen[pos] || !s.HasToken(pos) {
			return 0, false
		}
		seen[pos] = true
		tag := s.Tokens[pos-1].POS
		if !types.IsWh(tag) && hasTagPrefix(tag, targetPOS) {
			return pos, true
		}
	}
}

func (f *Finder) matches(label, rel string) bool {
	if strings.EqualFold(label, rel) {
		return true
	}
	for _, alias := range f.aliases[strings.ToLower(rel)] {
		if strings.EqualFold(label, alias) {
			return true
		}
	}
	return false
}

func (f *Finder) trace(kind, target string, anchors []int, out types.Positions) {
	if !f.debug {
		return
	}
	f.logger.Debug("associated words", "kind", kind, "target", target, "anchors", anchors, "found", []int(out))
}

func validAnchors(anchors []int, s *types.Sentence) []int {
	out := make([]int, 0, len(anchors))
	for _, a := range anchors {
		if s.HasToken(a) {
			out = append(out, a)
		}
	}
	return out
}

func hasTagPrefix(tag, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(tag), strings.ToLower(prefix))
}
