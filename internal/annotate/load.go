// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wordproblem-engine/pkg/types"
)

// Load reads problems from path, choosing the format by extension:
// .conllu/.conll for CoNLL-U, .yaml/.yml for a YAML list of problems.
func Load(path string) ([]*types.Problem, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".conllu", ".conll":
		return LoadConllu(path)
	case ".yaml", ".yml":
		return LoadYAML(path)
	default:
		return nil, fmt.Errorf("unsupported problem file %s: use .conllu or .yaml", path)
	}
}

// LoadAll reads every path with Load and checks that problem ids are unique.
func LoadAll(paths []string) ([]*types.Problem, error) {
	var all []*types.Problem
	ids := make(map[string]string)
	for _, path := range paths {
		problems, err := Load(path)
		if err != nil {
			return nil, err
		}
		for _, p := range problems {
			if prev, dup := ids[p.ID]; dup {
				return nil, fmt.Errorf("problem id %q in %s already defined in %s", p.ID, path, prev)
			}
			ids[p.ID] = path
		}
		all = append(all, problems...)
	}
	return all, nil
}

// LoadYAML reads a YAML list of problems. Quantities in the file are
// ignored; they are recomputed by extraction.
func LoadYAML(path string) ([]*types.Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var problems []*types.Problem
	if err := yaml.Unmarshal(data, &problems); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for i, p := range problems {
		if p == nil || p.ID == "" {
			return nil, fmt.Errorf("%s: problem %d has no id", path, i+1)
		}
		p.Quantities = nil
		for j, s := range p.Sentences {
			if s == nil {
				return nil, fmt.Errorf("%s: problem %s sentence %d is empty", path, p.ID, j+1)
			}
			if err := s.Validate(); err != nil {
				return nil, fmt.Errorf("%s: problem %s sentence %d: %w", path, p.ID, j+1, err)
			}
		}
	}
	return problems, nil
}

// sampleEntry is one record of a samples file.
type sampleEntry struct {
	Problem    string          `yaml:"problem"`
	Hypotheses []types.Concept `yaml:"hypotheses"`
}

// LoadSamples reads a YAML samples file and binds each entry to the problem
// with the same id. Hypothesis indices are validated later, once the
// problem's quantities are known.
func LoadSamples(path string, problems []*types.Problem) ([]*types.Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var entries []sampleEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	byID := make(map[string]*types.Problem, len(problems))
	for _, p := range problems {
		byID[p.ID] = p
	}

	samples := make([]*types.Sample, 0, len(entries))
	for _, e := range entries {
		p, ok := byID[e.Problem]
		if !ok {
			return nil, fmt.Errorf("%s: unknown problem %q", path, e.Problem)
		}
		samples = append(samples, &types.Sample{Problem: p, Hypotheses: e.Hypotheses})
	}
	return samples, nil
}

// WriteQuantities writes the quantities of p to dir/<id>-quantities.yaml.
func WriteQuantities(dir string, p *types.Problem) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	data, err := yaml.Marshal(struct {
		Problem    string            `yaml:"problem"`
		Quantities []*types.Quantity `yaml:"quantities"`
	}{p.ID, p.Quantities})
	if err != nil {
		return "", fmt.Errorf("marshaling quantities of %s: %w", p.ID, err)
	}
	path := filepath.Join(dir, p.ID+"-quantities.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
