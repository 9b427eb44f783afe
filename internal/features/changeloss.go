// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package features

import (
	"fmt"

	"github.com/pdiddy/wordproblem-engine/internal/polarity"
	"github.com/pdiddy/wordproblem-engine/pkg/types"
)

// Features written by ChangeLossCue.
const (
	FeatureChangeLossCue = "f_change_losscue"
	FeatureMistypedLoss  = "f_mistyped_loss"
)

// ChangeLossCue fires when every loss of a change hypothesis is carried by
// a verb whose polarity agrees with who the subject is relative to the end
// quantity, and the loss has the same type as the end.
type ChangeLossCue struct {
	lexicon *polarity.Lexicon
}

// NewChangeLossCue returns the extractor scoring verbs with lexicon.
func NewChangeLossCue(lexicon *polarity.Lexicon) *ChangeLossCue {
	if lexicon == nil {
		lexicon = polarity.Default()
	}
	return &ChangeLossCue{lexicon: lexicon}
}

func (c *ChangeLossCue) Name() string { return "change-loss-cue" }

func (c *ChangeLossCue) Produces() []string {
	return []string{FeatureChangeLossCue, FeatureMistypedLoss}
}

func (c *ChangeLossCue) Requires() []string {
	return []string{FeatureSubjectMatch, FeatureSameType}
}

func (c *ChangeLossCue) AddFeatures(p *types.Problem, sample *types.Sample, y int, _, fm FeatureMap) error {
	fm[FeatureChangeLossCue] = 0
	fm[FeatureMistypedLoss] = 0

	h := sample.Hypotheses[y]
	switch h.Kind {
	case types.ConceptChange:
		return c.scoreChange(p, sample.Quantities(), h.Change, fm)
	default:
		return nil
	}
}

func (c *ChangeLossCue) scoreChange(p *types.Problem, qs []*types.Quantity, change *types.ChangeConcept, fm FeatureMap) error {
	end := qs[change.End]

	lossCue := false
	for _, li := range change.Losses {
		lossCue = true
		q := qs[li]

		verbs, err := p.ContextTokens(q, types.RelVerb)
		if err != nil {
			return fmt.Errorf("verbs of %s: %w", q.UniqueID, err)
		}
		score := 0.0
		for _, v := range verbs {
			// Possession or copula is a state, not a loss.
			if types.IsPossessiveLemma(v.Lemma) {
				return nil
			}
			score += c.lexicon.Polarity(v.Lemma)
		}

		// With exactly three quantities and a known start, an unknown loss
		// is decided by whether the amount went down.
		if q.IsUnknown && len(qs) == 3 && change.Start != types.DefaultQuantity {
			start, errStart := ParseValue(qs[change.Start].Value)
			last, errEnd := ParseValue(end.Value)
			if errStart != nil || errEnd != nil {
				return nil
			}
			if start < last {
				fm[FeatureChangeLossCue] = 0
			} else {
				fm[FeatureChangeLossCue] = 1
			}
			return nil
		}

		subj, err := fm.Lookup(PairKey(FeatureSubjectMatch, end, q))
		if err != nil {
			return err
		}
		typ, err := fm.Lookup(PairKey(FeatureSameType, end, q))
		if err != nil {
			return err
		}
		if typ < 0.5 {
			fm[FeatureMistypedLoss] = 1
		}
		if typ < 0.5 || (score < -0.5 && subj < 0.5) || (score > 0.5 && subj > 0.5) {
			return nil
		}
	}

	if lossCue {
		fm[FeatureChangeLossCue] = 1
	}
	return nil
}

// All returns every extractor, scoring verbs with lexicon.
func All(lexicon *polarity.Lexicon) []Extractor {
	return []Extractor{
		NewChangeLossCue(lexicon),
		SameType(),
		SubjectMatch(),
	}
}

// Select returns the extractors of All whose names are listed. An empty
// list selects all of them.
func Select(lexicon *polarity.Lexicon, names []string) ([]Extractor, error) {
	all := All(lexicon)
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]Extractor, len(all))
	for _, e := range all {
		byName[e.Name()] = e
	}
	var out []Extractor
	for _, n := range names {
		e, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("unknown extractor %q", n)
		}
		out = append(out, e)
	}
	return out, nil
}
