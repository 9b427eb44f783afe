// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package unknown registers the quantities of a word problem: every stated
// number and the target of each question, each with its type and context.
package unknown

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pdiddy/wordproblem-engine/internal/assoc"
	"github.com/pdiddy/wordproblem-engine/internal/typedetect"
	"github.com/pdiddy/wordproblem-engine/pkg/types"
)

// ErrNoTarget is returned for a question sentence whose target token
// cannot be located.
var ErrNoTarget = errors.New("question target not found")

// verbTag is the tag prefix of the verbs governing a quantity.
const verbTag = "vb"

// Finder walks the sentences of a problem and registers its quantities.
type Finder struct {
	words  *assoc.Finder
	logger *slog.Logger
}

// Option configures a Finder.
type Option func(*Finder)

// WithLogger sets the logger for per-quantity debug output.
func WithLogger(l *slog.Logger) Option {
	return func(f *Finder) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithAssociatedWordFinder replaces the default dependency query engine.
func WithAssociatedWordFinder(w *assoc.Finder) Option {
	return func(f *Finder) {
		if w != nil {
			f.words = w
		}
	}
}

// New returns a Finder.
func New(opts ...Option) *Finder {
	f := &Finder{logger: slog.Default()}
	for _, opt := range opts {
		opt(f)
	}
	if f.words == nil {
		f.words = assoc.New(assoc.WithLogger(f.logger))
	}
	return f
}

// state is carried from one sentence to the next.
type state struct {
	// previousType is the last resolved type; nil until one is resolved.
	previousType *types.NounPhrase
}

// FindUnknowns replaces p.Quantities with the constants and unknowns found
// in p's sentences, in scan order. Only one unknown is registered per
// question sentence.
func (f *Finder) FindUnknowns(p *types.Problem) error {
	p.Quantities = nil

	var st state
	for i := range p.Sentences {
		next, err := f.processSentence(p, i+1, st)
		if err != nil {
			return fmt.Errorf("problem %q sentence %d: %w", p.ID, i+1, err)
		}
		st = next
	}
	return nil
}

func (f *Finder) processSentence(p *types.Problem, sid int, st state) (state, error) {
	s := p.Sentences[sid-1]

	for _, tok := range s.Tokens {
		if !types.IsCardinal(tok.POS) {
			continue
		}
		var err error
		if st, err = f.addConstant(p, sid, tok, st); err != nil {
			return st, err
		}
	}

	if s.IsQuestion() {
		return f.addUnknown(p, sid, st)
	}
	return st, nil
}

func (f *Finder) addConstant(p *types.Problem, sid int, tok types.Token, st state) (state, error) {
	s := p.Sentences[sid-1]
	before := p.Len()
	q := p.AddConstant(tok.Word, sid, tok.Position)

	typ := typedetect.FindType(tok, s, st.previousType)
	typeIDs := append([]int{tok.Position}, typ.Positions()...)

	verb := f.words.FindAssociatedWord(typeIDs, s, verbTag)
	q.Context = f.words.Context(verb, typeIDs, s)

	if isPartCue(s, tok.Position) && before >= 2 {
		q.IsPart = true
		q.PartOf = before - 2
	}

	if typ.IsEmpty() {
		switch {
		case st.previousType == nil:
			typ = findObjectBefore(p, sid, tok.Position)
		case p.Len() > 1:
			next, err := s.Lemma(tok.Position + 1)
			if err != nil {
				return st, fmt.Errorf("token after %q: %w", tok.Word, err)
			}
			typ = st.previousType
			if strings.EqualFold(next, "of") {
				if earlier, ok := typeMentionedAfter(p, s, tok.Position+2); ok {
					typ = earlier
				}
			}
		default:
			typ = st.previousType
		}
	}

	q.Type = typ
	st.previousType = typ
	f.logger.Debug("constant quantity",
		"problem", p.ID, "id", q.UniqueID, "value", q.Value,
		"type", typ.String(), "part_of", q.PartOf)
	return st, nil
}

func (f *Finder) addUnknown(p *types.Problem, sid int, st state) (state, error) {
	s := p.Sentences[sid-1]
	raw := strings.ToLower(s.Text)
	if !strings.Contains(raw, "how") && !strings.Contains(raw, "what") {
		return st, fmt.Errorf("%w: no how/what cue in %q", ErrNoTarget, s.Text)
	}

	var how, many, much, what bool
	cue, target := 0, 0
scan:
	for _, t := range s.Tokens {
		switch {
		case how && many:
			if types.IsNoun(t.POS) || types.IsAdjective(t.POS) {
				break scan
			}
		case how && much:
			break scan
		case strings.EqualFold(t.Lemma, "how"):
			how = true
			cue = t.Position
		case how && strings.EqualFold(t.Lemma, "many"):
			many = true
		case how:
			much = true
		case strings.EqualFold(t.Lemma, "what"):
			what = true
			cue = t.Position
		case what:
			break scan
		}
		target = t.Position
	}

	if cue == 0 || target == 0 {
		return st, fmt.Errorf("%w: no question word token in %q", ErrNoTarget, s.Text)
	}

	tok := s.Tokens[target-1]
	q := p.AddUnknown(sid, target)

	typ := typedetect.FindType(tok, s, st.previousType)
	typeIDs := []int{cue}
	if how {
		typeIDs = append(typeIDs, target-1)
	}
	typeIDs = append(typeIDs, typ.Positions()...)

	if typ.IsEmpty() && st.previousType != nil {
		typ = st.previousType
	}
	q.Type = typ
	st.previousType = typ

	verb := f.words.FindAssociatedWordForQuestion(typeIDs, s, verbTag)
	q.Context = f.words.Context(verb, typeIDs, s)

	f.logger.Debug("unknown quantity",
		"problem", p.ID, "id", q.UniqueID, "target", tok.Word, "type", typ.String())
	return st, nil
}

// isPartCue reports whether the two tokens after pos mark the number as a
// part of an earlier one: a be/have verb, or "of they".
func isPartCue(s *types.Sentence, pos int) bool {
	if !s.HasToken(pos+1) || !s.HasToken(pos+2) {
		return false
	}
	first, second := s.Tokens[pos], s.Tokens[pos+1]

	if types.IsVerb(first.POS) || types.IsVerb(second.POS) {
		if types.IsPossessiveLemma(first.Lemma) || types.IsPossessiveLemma(second.Lemma) {
			return true
		}
	}
	return strings.EqualFold(first.Lemma, "of") && strings.EqualFold(second.Lemma, "they")
}

// findObjectBefore scans sentences 1..sid for the first object noun phrase,
// bounding the scan of sentence sid to positions left of pos.
func findObjectBefore(p *types.Problem, sid, pos int) *types.NounPhrase {
	found := &types.NounPhrase{}
	for i := 1; i <= sid; i++ {
		right := -1
		if i == sid {
			right = pos
		}
		found = typedetect.FindObj(p.Sentences[i-1], right)
		if !found.IsEmpty() {
			break
		}
	}
	return found
}

// typeMentionedAfter looks for a lemma between position from and the last
// token, exclusive, that matches a token of an earlier quantity's type, and
// returns that type.
func typeMentionedAfter(p *types.Problem, s *types.Sentence, from int) (*types.NounPhrase, bool) {
	for i := from; i < s.Len(); i++ {
		lemma := s.Tokens[i-1].Lemma
		for _, q := range p.Quantities {
			if q.Type.IsEmpty() {
				continue
			}
			for _, t := range q.Type.Tokens {
				if strings.EqualFold(t.Lemma, lemma) {
					return q.Type, true
				}
			}
		}
	}
	return nil, false
}
