// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportEntry holds one problem's stored results.
type ExportEntry struct {
	Problem    string        `json:"problem" yaml:"problem"`
	Quantities []QuantityRow `json:"quantities" yaml:"quantities"`
	Features   []FeatureRow  `json:"features,omitempty" yaml:"features,omitempty"`
}

// ExportYAML writes every stored problem to <dir>/export.yaml and returns
// the path.
func (s *Store) ExportYAML(ctx context.Context) (string, error) {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, "export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes every stored problem to <dir>/export.json and returns
// the path.
func (s *Store) ExportJSON(ctx context.Context) (string, error) {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, "export.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context) ([]ExportEntry, error) {
	ids, err := s.Problems(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, 0, len(ids))
	for _, id := range ids {
		qs, err := s.Quantities(ctx, id)
		if err != nil {
			return nil, err
		}
		fs, err := s.Features(ctx, id)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ExportEntry{Problem: id, Quantities: qs, Features: fs})
	}
	return entries, nil
}
