// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package polarity scores verbs by whether the subject gains (positive) or
// loses (negative) the quantity involved.
package polarity

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// defaultScores is the built-in lexicon.
var defaultScores = map[string]float64{
	"buy":      1,
	"collect":  1,
	"earn":     1,
	"find":     1,
	"gain":     1,
	"get":      1,
	"grow":     1,
	"pick":     1,
	"receive":  1,
	"win":      1,
	"borrow":   1,
	"add":      1,
	"bake":     1,
	"make":     1,
	"catch":    1,
	"lose":     -1,
	"give":     -1,
	"sell":     -1,
	"spend":    -1,
	"eat":      -1,
	"use":      -1,
	"break":    -1,
	"donate":   -1,
	"lend":     -1,
	"pay":      -1,
	"throw":    -1,
	"remove":   -1,
	"share":    -1,
	"leave":    -1,
	"drink":    -1,
	"cut":      -1,
	"send":     -1,
	"take":     -0.5,
	"transfer": -0.5,
}

// Lexicon maps verb lemmas to signed polarity scores.
type Lexicon struct {
	scores map[string]float64
}

// Default returns a lexicon holding the built-in scores.
func Default() *Lexicon {
	l := &Lexicon{scores: make(map[string]float64, len(defaultScores))}
	for k, v := range defaultScores {
		l.scores[k] = v
	}
	return l
}

// Load returns the built-in lexicon with the scores from the YAML file at
// path merged over it. The file is a flat map of lemma to score. An empty
// path returns Default().
func Load(path string) (*Lexicon, error) {
	l := Default()
	if path == "" {
		return l, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lexicon %s: %w", path, err)
	}
	var overrides map[string]float64
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing lexicon %s: %w", path, err)
	}
	for k, v := range overrides {
		l.Set(k, v)
	}
	return l, nil
}

// Set scores lemma, replacing any earlier score.
func (l *Lexicon) Set(lemma string, score float64) {
	l.scores[strings.ToLower(lemma)] = score
}

// Polarity returns the score of lemma, or 0 when the lemma is not listed.
func (l *Lexicon) Polarity(lemma string) float64 {
	return l.scores[strings.ToLower(lemma)]
}

// Len returns the number of listed lemmas.
func (l *Lexicon) Len() int {
	return len(l.scores)
}
