// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package features computes named numeric features of a semantic hypothesis
// over a problem's quantities, for a downstream classifier.
//
// Extractors declare the feature name prefixes they write and read. A
// Pipeline orders them so that every producer runs before its consumers and
// rejects sets whose requirements nobody produces.
package features

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/wordproblem-engine/pkg/types"
)

var (
	// ErrMissingDependency is returned when a feature is read before any
	// extractor wrote it, or when no extractor produces a declared requirement.
	ErrMissingDependency = errors.New("missing feature dependency")

	// ErrDependencyCycle is returned when extractors depend on each other.
	ErrDependencyCycle = errors.New("feature dependency cycle")
)

// FeatureMap holds feature values by name.
type FeatureMap map[string]float64

// Lookup returns the value of key, or ErrMissingDependency if it was never
// written.
func (m FeatureMap) Lookup(key string) (float64, error) {
	v, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingDependency, key)
	}
	return v, nil
}

// NonZero returns the names of features with a non-zero value, sorted.
func (m FeatureMap) NonZero() []string {
	var names []string
	for k, v := range m {
		if v != 0 {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

// Extractor writes features for hypothesis y of a sample. Extractors only
// read the problem and its quantities. A disqualified hypothesis leaves the
// extractor's features at their defaults and is not an error.
type Extractor interface {
	// Name identifies the extractor in configuration and errors.
	Name() string

	// Produces lists the feature name prefixes the extractor writes.
	Produces() []string

	// Requires lists the feature name prefixes the extractor reads from
	// the feature map.
	Requires() []string

	// AddFeatures writes the extractor's features into fm. aggregate is
	// shared by all hypotheses of the same sample.
	AddFeatures(p *types.Problem, sample *types.Sample, y int, aggregate, fm FeatureMap) error
}

// Pipeline runs extractors in dependency order.
type Pipeline struct {
	extractors []Extractor
}

// NewPipeline orders extractors so that producers run before consumers.
// Extractors without a mutual dependency keep their relative order.
func NewPipeline(extractors ...Extractor) (*Pipeline, error) {
	producers := make(map[string][]int)
	for i, e := range extractors {
		for _, name := range e.Produces() {
			producers[name] = append(producers[name], i)
		}
	}

	// deps[i] holds the extractors that must run before i.
	deps := make([]map[int]bool, len(extractors))
	for i, e := range extractors {
		deps[i] = make(map[int]bool)
		for _, req := range e.Requires() {
			ps, ok := producers[req]
			if !ok {
				return nil, fmt.Errorf("%w: %s requires %s, which no extractor produces", ErrMissingDependency, e.Name(), req)
			}
			for _, p := range ps {
				if p != i {
					deps[i][p] = true
				}
			}
		}
	}

	done := make([]bool, len(extractors))
	ordered := make([]Extractor, 0, len(extractors))
	for len(ordered) < len(extractors) {
		progressed := false
		for i := range extractors {
			if done[i] || !ready(deps[i], done) {
				continue
			}
			done[i] = true
			ordered = append(ordered, extractors[i])
			progressed = true
			break
		}
		if !progressed {
			var stuck []string
			for i, e := range extractors {
				if !done[i] {
					stuck = append(stuck, e.Name())
				}
			}
			return nil, fmt.Errorf("%w: %s", ErrDependencyCycle, strings.Join(stuck, ", "))
		}
	}

	return &Pipeline{extractors: ordered}, nil
}

func ready(deps map[int]bool, done []bool) bool {
	for d := range deps {
		if !done[d] {
			return false
		}
	}
	return true
}

// Extractors returns the extractors in execution order.
func (p *Pipeline) Extractors() []Extractor {
	return p.extractors
}

// Run computes the features of hypothesis y of sample into a new map.
func (p *Pipeline) Run(sample *types.Sample, y int, aggregate FeatureMap) (FeatureMap, error) {
	if y < 0 || y >= len(sample.Hypotheses) {
		return nil, fmt.Errorf("hypothesis %d outside [0,%d)", y, len(sample.Hypotheses))
	}
	if err := sample.Hypotheses[y].Validate(len(sample.Quantities())); err != nil {
		return nil, fmt.Errorf("hypothesis %d: %w", y, err)
	}

	fm := make(FeatureMap)
	for _, e := range p.extractors {
		if err := e.AddFeatures(sample.Problem, sample, y, aggregate, fm); err != nil {
			return nil, fmt.Errorf("%s on hypothesis %d: %w", e.Name(), y, err)
		}
	}
	return fm, nil
}

// Score computes the features of every hypothesis of sample, sharing one
// aggregate map between them.
func (p *Pipeline) Score(sample *types.Sample) ([]FeatureMap, error) {
	aggregate := make(FeatureMap)
	out := make([]FeatureMap, len(sample.Hypotheses))
	for y := range sample.Hypotheses {
		fm, err := p.Run(sample, y, aggregate)
		if err != nil {
			return nil, err
		}
		out[y] = fm
	}
	return out, nil
}
