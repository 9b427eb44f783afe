// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// ConceptKind names a variant of Concept.
type ConceptKind string

const (
	ConceptChange     ConceptKind = "change"
	ConceptPartWhole  ConceptKind = "part-whole"
	ConceptComparison ConceptKind = "comparison"
)

// DefaultQuantity marks a concept slot that is not bound to any quantity.
const DefaultQuantity = -1

// ChangeConcept describes a start quantity transformed into an end quantity
// by gains and losses. All fields are indices into Problem.Quantities.
type ChangeConcept struct {
	Start  int   `json:"start" yaml:"start"`
	End    int   `json:"end" yaml:"end"`
	Gains  []int `json:"gains,omitempty" yaml:"gains,omitempty"`
	Losses []int `json:"losses,omitempty" yaml:"losses,omitempty"`
}

// PartWholeConcept describes a whole quantity made of parts.
type PartWholeConcept struct {
	Whole int   `json:"whole" yaml:"whole"`
	Parts []int `json:"parts" yaml:"parts"`
}

// ComparisonConcept describes a larger and a smaller quantity and their
// difference.
type ComparisonConcept struct {
	Large      int `json:"large" yaml:"large"`
	Small      int `json:"small" yaml:"small"`
	Difference int `json:"difference" yaml:"difference"`
}

// Concept is a candidate semantic hypothesis over a problem's quantities.
// Exactly one payload matching Kind is set.
type Concept struct {
	Kind       ConceptKind        `json:"kind" yaml:"kind"`
	Change     *ChangeConcept     `json:"change,omitempty" yaml:"change,omitempty"`
	PartWhole  *PartWholeConcept  `json:"part_whole,omitempty" yaml:"part_whole,omitempty"`
	Comparison *ComparisonConcept `json:"comparison,omitempty" yaml:"comparison,omitempty"`
}

// Validate checks that the payload matches Kind and that every bound index
// refers to a quantity among n.
func (c Concept) Validate(n int) error {
	check := func(idx int, slot string, allowDefault bool) error {
		if idx == DefaultQuantity && allowDefault {
			return nil
		}
		if idx < 0 || idx >= n {
			return fmt.Errorf("%s concept: %s index %d outside [0,%d)", c.Kind, slot, idx, n)
		}
		return nil
	}

	switch c.Kind {
	case ConceptChange:
		if c.Change == nil {
			return fmt.Errorf("change concept without payload")
		}
		if err := check(c.Change.Start, "start", true); err != nil {
			return err
		}
		if err := check(c.Change.End, "end", false); err != nil {
			return err
		}
		for _, i := range append(append([]int(nil), c.Change.Gains...), c.Change.Losses...) {
			if err := check(i, "gain/loss", false); err != nil {
				return err
			}
		}
	case ConceptPartWhole:
		if c.PartWhole == nil {
			return fmt.Errorf("part-whole concept without payload")
		}
		if err := check(c.PartWhole.Whole, "whole", false); err != nil {
			return err
		}
		for _, i := range c.PartWhole.Parts {
			if err := check(i, "part", false); err != nil {
				return err
			}
		}
	case ConceptComparison:
		if c.Comparison == nil {
			return fmt.Errorf("comparison concept without payload")
		}
		for slot, i := range map[string]int{
			"large":      c.Comparison.Large,
			"small":      c.Comparison.Small,
			"difference": c.Comparison.Difference,
		} {
			if err := check(i, slot, false); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unknown concept kind %q", c.Kind)
	}
	return nil
}

// Sample pairs a problem with the hypotheses a classifier scores for it.
type Sample struct {
	Problem    *Problem  `json:"problem" yaml:"problem"`
	Hypotheses []Concept `json:"hypotheses" yaml:"hypotheses"`
}

// Quantities returns the quantities of the sample's problem.
func (s *Sample) Quantities() []*Quantity {
	if s.Problem == nil {
		return nil
	}
	return s.Problem.Quantities
}
