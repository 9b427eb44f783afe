// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package features

import (
	"strings"

	"github.com/pdiddy/wordproblem-engine/pkg/types"
)

// Pairwise feature prefixes. The full key appends the unique ids of the two
// quantities, first then second.
const (
	FeatureSameType     = "f_sameType"
	FeatureSubjectMatch = "f_subjmatch"
)

// PairKey returns the feature key for prefix over quantities a and b.
func PairKey(prefix string, a, b *types.Quantity) string {
	return prefix + a.UniqueID + b.UniqueID
}

// pairScorer scores one ordered pair of quantities.
type pairScorer func(p *types.Problem, a, b *types.Quantity) (float64, error)

// pairwise writes prefix+ids for every ordered pair of quantities,
// including a quantity with itself. Pairs depend only on the problem, so
// they are computed once per sample into the aggregate map and copied from
// there for later hypotheses.
type pairwise struct {
	name   string
	prefix string
	score  pairScorer
}

func (e *pairwise) Name() string       { return e.name }
func (e *pairwise) Produces() []string { return []string{e.prefix} }
func (e *pairwise) Requires() []string { return nil }

func (e *pairwise) AddFeatures(p *types.Problem, sample *types.Sample, _ int, aggregate, fm FeatureMap) error {
	qs := sample.Quantities()
	for _, a := range qs {
		for _, b := range qs {
			key := PairKey(e.prefix, a, b)
			if v, ok := aggregate[key]; ok {
				fm[key] = v
				continue
			}
			v, err := e.score(p, a, b)
			if err != nil {
				return err
			}
			aggregate[key] = v
			fm[key] = v
		}
	}
	return nil
}

// SameType scores 1 when two quantities have type phrases with the same
// head lemma.
func SameType() Extractor {
	return &pairwise{name: "same-type", prefix: FeatureSameType, score: sameType}
}

func sameType(_ *types.Problem, a, b *types.Quantity) (float64, error) {
	ha, okA := a.Type.Head()
	hb, okB := b.Type.Head()
	if okA && okB && strings.EqualFold(ha.Lemma, hb.Lemma) {
		return 1, nil
	}
	return 0, nil
}

// SubjectMatch scores 1 when the subjects of two quantities share a lemma.
func SubjectMatch() Extractor {
	return &pairwise{name: "subject-match", prefix: FeatureSubjectMatch, score: subjectMatch}
}

func subjectMatch(p *types.Problem, a, b *types.Quantity) (float64, error) {
	sa, err := p.ContextTokens(a, types.RelNsubj)
	if err != nil {
		return 0, err
	}
	sb, err := p.ContextTokens(b, types.RelNsubj)
	if err != nil {
		return 0, err
	}
	for _, x := range sa {
		for _, y := range sb {
			if strings.EqualFold(x.Lemma, y.Lemma) {
				return 1, nil
			}
		}
	}
	return 0, nil
}
