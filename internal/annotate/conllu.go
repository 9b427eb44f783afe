// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package annotate loads annotated word problems: sentences with tokens,
// lemmas, tags and dependency edges produced by an external parser.
package annotate

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/wordproblem-engine/pkg/types"
)

const (
	fieldSeparator = "\t"
	minFields      = 8

	colID     = 0
	colForm   = 1
	colLemma  = 2
	colUPOS   = 3
	colXPOS   = 4
	colHead   = 6
	colDeprel = 7
	colDeps   = 8

	textComment   = "text"
	newDocComment = "newdoc id"
)

// ReadConllu parses CoNLL-U input into problems. A "# newdoc id = X"
// comment starts problem X; sentences before any such comment belong to a
// problem with an empty id. Multiword and empty-node rows are skipped. The
// tag is taken from XPOS; when XPOS is empty the UPOS tag is mapped to its
// coarse Penn equivalent. Edges come from HEAD/DEPREL and from the enhanced
// DEPS column.
func ReadConllu(r io.Reader) ([]*types.Problem, error) {
	var (
		problems []*types.Problem
		current  *types.Problem
		sent     *types.Sentence
		seen     map[types.Edge]bool
		lineNo   int
	)

	flush := func() error {
		if sent == nil || len(sent.Tokens) == 0 {
			sent = nil
			return nil
		}
		if sent.Text == "" {
			words := make([]string, len(sent.Tokens))
			for i, t := range sent.Tokens {
				words[i] = t.Word
			}
			sent.Text = strings.Join(words, " ")
		}
		if err := sent.Validate(); err != nil {
			return fmt.Errorf("sentence ending at line %d: %w", lineNo, err)
		}
		if current == nil {
			current = &types.Problem{}
			problems = append(problems, current)
		}
		current.Sentences = append(current.Sentences, sent)
		sent = nil
		return nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}

		if strings.HasPrefix(line, "#") {
			key, value, ok := strings.Cut(strings.TrimSpace(line[1:]), "=")
			if !ok {
				continue
			}
			key, value = strings.TrimSpace(key), strings.TrimSpace(value)
			switch key {
			case newDocComment:
				if err := flush(); err != nil {
					return nil, err
				}
				current = &types.Problem{ID: value}
				problems = append(problems, current)
			case textComment:
				if sent == nil {
					sent = &types.Sentence{}
					seen = make(map[types.Edge]bool)
				}
				sent.Text = value
			}
			continue
		}

		if sent == nil {
			sent = &types.Sentence{}
			seen = make(map[types.Edge]bool)
		}
		if err := parseRow(line, sent, seen); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading conllu: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return problems, nil
}

// LoadConllu reads problems from a CoNLL-U file. A problem without a
// newdoc id is named after the file.
func LoadConllu(path string) ([]*types.Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	problems, err := ReadConllu(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for i, p := range problems {
		if p.ID == "" {
			p.ID = base
			if len(problems) > 1 {
				p.ID = fmt.Sprintf("%s-%d", base, i+1)
			}
		}
	}
	return problems, nil
}

func parseRow(line string, sent *types.Sentence, seen map[types.Edge]bool) error {
	fields := strings.Split(line, fieldSeparator)
	if len(fields) < minFields {
		return fmt.Errorf("expected at least %d fields, got %d", minFields, len(fields))
	}

	if strings.ContainsAny(fields[colID], "-.") {
		return nil
	}
	id, err := strconv.Atoi(fields[colID])
	if err != nil {
		return fmt.Errorf("parsing ID field (%s): %w", fields[colID], err)
	}
	if id != len(sent.Tokens)+1 {
		return fmt.Errorf("token id %d out of sequence, expected %d", id, len(sent.Tokens)+1)
	}

	form := parseString(fields[colForm])
	if form == "" {
		return fmt.Errorf("empty FORM field")
	}
	lemma := parseString(fields[colLemma])
	if lemma == "" {
		lemma = strings.ToLower(form)
	}
	pos := parseString(fields[colXPOS])
	if pos == "" {
		upos := parseString(fields[colUPOS])
		if upos == "" {
			return fmt.Errorf("empty UPOS and XPOS fields")
		}
		if pos, err = pennTag(upos, lemma); err != nil {
			return err
		}
	}

	sent.Tokens = append(sent.Tokens, types.Token{Position: id, Word: form, Lemma: lemma, POS: pos})

	if head := parseString(fields[colHead]); head != "" {
		h, err := strconv.Atoi(head)
		if err != nil {
			return fmt.Errorf("parsing HEAD field (%s): %w", head, err)
		}
		addEdge(sent, seen, h, id, parseString(fields[colDeprel]))
	}

	if len(fields) > colDeps {
		deps := parseString(fields[colDeps])
		if deps == "" {
			return nil
		}
		for _, d := range strings.Split(deps, "|") {
			head, rel, ok := strings.Cut(d, ":")
			if !ok {
				return fmt.Errorf("malformed DEPS entry %q", d)
			}
			if strings.Contains(head, ".") {
				continue
			}
			h, err := strconv.Atoi(head)
			if err != nil {
				return fmt.Errorf("parsing DEPS head (%s): %w", head, err)
			}
			addEdge(sent, seen, h, id, rel)
		}
	}
	return nil
}

// uposToPenn maps universal tags to the coarse Penn tag of the same class.
var uposToPenn = map[string]string{
	"ADJ":   "JJ",
	"ADP":   "IN",
	"ADV":   "RB",
	"AUX":   "VB",
	"CCONJ": "CC",
	"DET":   "DT",
	"INTJ":  "UH",
	"NOUN":  "NN",
	"NUM":   "CD",
	"PART":  "RP",
	"PRON":  "PRP",
	"PROPN": "NNP",
	"PUNCT": ".",
	"SCONJ": "IN",
	"SYM":   "SYM",
	"VERB":  "VB",
	"X":     "FW",
}

// whTags are the Penn tags of wh-words, by universal tag.
var whTags = map[string]string{
	"ADV":  "WRB",
	"PRON": "WP",
	"DET":  "WDT",
}

var whLemmas = map[string]bool{
	"how": true, "what": true, "which": true, "who": true, "whom": true,
	"whose": true, "where": true, "when": true, "why": true,
}

func pennTag(upos, lemma string) (string, error) {
	upos = strings.ToUpper(upos)
	if wh, ok := whTags[upos]; ok && whLemmas[strings.ToLower(lemma)] {
		return wh, nil
	}
	tag, ok := uposToPenn[upos]
	if !ok {
		return "", fmt.Errorf("unknown UPOS tag %q with empty XPOS", upos)
	}
	return tag, nil
}

func addEdge(sent *types.Sentence, seen map[types.Edge]bool, gov, dep int, rel string) {
	if gov == 0 || rel == "" {
		return
	}
	e := types.Edge{Gov: gov, Dep: dep, Rel: rel}
	key := types.Edge{Gov: gov, Dep: dep, Rel: strings.ToLower(rel)}
	if seen[key] {
		return
	}
	seen[key] = true
	sent.Edges = append(sent.Edges, e)
}

func parseString(value string) string {
	if value == "_" {
		return ""
	}
	return value
}
