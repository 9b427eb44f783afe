// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wordproblem-engine/pkg/types"
)

// conllu joins lines into CoNLL-U text. Token rows are written with spaces
// between columns and converted to tabs here.
func conllu(lines ...string) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		if l == "" || strings.HasPrefix(l, "#") {
			out[i] = l
			continue
		}
		out[i] = strings.Join(strings.Fields(l), "\t")
	}
	return strings.Join(out, "\n") + "\n"
}

var applesConllu = conllu(
	"# newdoc id = apples",
	"# text = Tom has 3 apples.",
	"1 Tom Tom PROPN NNP _ 2 nsubj 2:nsubj _",
	"2 has have VERB VBZ _ 0 root 0:root _",
	"3 3 3 NUM CD _ 4 nummod 4:nummod _",
	"4 apples apple NOUN NNS _ 2 obj 2:obj|1:nmod:poss _",
	"5 . . PUNCT . _ 2 punct 2:punct _",
	"",
	"# text = How many apples?",
	"1 How how ADV WRB _ 2 advmod _ _",
	"2 many many ADJ JJ _ 3 amod _ _",
	"3-4 apples? _ _ _ _ _ _ _ _",
	"3 apples apple NOUN NNS _ 0 root _ _",
	"4 ? ? PUNCT . _ 3 punct _ _",
	"",
	"# newdoc id = cats",
	"1 Five _ NUM _ _ 2 nummod _ _",
	"2 cats cat NOUN NNS _ 0 root _ _",
)

func TestReadConllu(t *testing.T) {
	problems, err := ReadConllu(strings.NewReader(applesConllu))
	require.NoError(t, err)
	require.Len(t, problems, 2)

	apples := problems[0]
	assert.Equal(t, "apples", apples.ID)
	require.Len(t, apples.Sentences, 2)

	s1 := apples.Sentences[0]
	assert.Equal(t, "Tom has 3 apples.", s1.Text)
	require.Equal(t, 5, s1.Len())
	assert.Equal(t, types.Token{Position: 3, Word: "3", Lemma: "3", POS: "CD"}, s1.Tokens[2])
	assert.ElementsMatch(t, []types.Edge{
		{Gov: 2, Dep: 1, Rel: "nsubj"},
		{Gov: 4, Dep: 3, Rel: "nummod"},
		{Gov: 2, Dep: 4, Rel: "obj"},
		{Gov: 1, Dep: 4, Rel: "nmod:poss"},
		{Gov: 2, Dep: 5, Rel: "punct"},
	}, s1.Edges)

	s2 := apples.Sentences[1]
	assert.True(t, s2.IsQuestion())
	assert.Equal(t, 4, s2.Len())
	assert.Len(t, s2.Edges, 3)

	cats := problems[1]
	assert.Equal(t, "cats", cats.ID)
	require.Len(t, cats.Sentences, 1)
	s := cats.Sentences[0]
	assert.Equal(t, "Five cats", s.Text)
	assert.Equal(t, "five", s.Tokens[0].Lemma)
	assert.Equal(t, "CD", s.Tokens[0].POS)
	assert.Equal(t, "NNS", s.Tokens[1].POS)
}

func TestReadConllu_UniversalTagsOnly(t *testing.T) {
	problems, err := ReadConllu(strings.NewReader(conllu(
		"# text = How many apples does Tom have?",
		"1 How how ADV _ _ 2 advmod _ _",
		"2 many many ADJ _ _ 3 amod _ _",
		"3 apples apple NOUN _ _ 6 obj _ _",
		"4 does do AUX _ _ 6 aux _ _",
		"5 Tom Tom PROPN _ _ 6 nsubj _ _",
		"6 have have VERB _ _ 0 root _ _",
		"7 ? ? PUNCT _ _ 6 punct _ _",
		"",
		"# text = Tom has 3 apples.",
		"1 Tom Tom PROPN _ _ 2 nsubj _ _",
		"2 has have VERB _ _ 0 root _ _",
		"3 3 3 NUM _ _ 4 nummod _ _",
		"4 apples apple NOUN _ _ 2 obj _ _",
	)))
	require.NoError(t, err)
	require.Len(t, problems, 1)
	require.Len(t, problems[0].Sentences, 2)

	q := problems[0].Sentences[0]
	var tags []string
	for _, tok := range q.Tokens {
		tags = append(tags, tok.POS)
	}
	assert.Equal(t, []string{"WRB", "JJ", "NN", "VB", "NNP", "VB", "."}, tags)

	s := problems[0].Sentences[1]
	assert.True(t, types.IsCardinal(s.Tokens[2].POS))
	assert.True(t, types.IsNoun(s.Tokens[3].POS))
	assert.True(t, types.IsProperNoun(s.Tokens[0].POS))
	assert.True(t, types.IsVerb(s.Tokens[1].POS))
}

func TestPennTag(t *testing.T) {
	tests := []struct {
		upos, lemma, want string
	}{
		{"NUM", "3", "CD"},
		{"NOUN", "apple", "NN"},
		{"PROPN", "tom", "NNP"},
		{"VERB", "give", "VB"},
		{"AUX", "be", "VB"},
		{"ADJ", "big", "JJ"},
		{"ADV", "quietly", "RB"},
		{"ADV", "How", "WRB"},
		{"PRON", "what", "WP"},
		{"PRON", "they", "PRP"},
		{"DET", "which", "WDT"},
		{"det", "the", "DT"},
	}
	for _, tt := range tests {
		t.Run(tt.upos+"/"+tt.lemma, func(t *testing.T) {
			got, err := pennTag(tt.upos, tt.lemma)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := pennTag("BOGUS", "x")
	assert.ErrorContains(t, err, "unknown UPOS tag")
}

func TestReadConllu_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "out of sequence",
			input: conllu("1 a a X X _ 0 root _ _", "3 b b X X _ 1 dep _ _"),
			want:  "line 2",
		},
		{
			name:  "too few fields",
			input: conllu("1 a a X"),
			want:  "expected at least",
		},
		{
			name:  "bad head",
			input: conllu("1 a a X X _ x dep _ _"),
			want:  "HEAD",
		},
		{
			name:  "edge to missing token",
			input: conllu("1 a a X X _ 7 dep _ _"),
			want:  types.ErrTokenOutOfRange.Error(),
		},
		{
			name:  "unknown universal tag",
			input: conllu("1 a a BOGUS _ _ 0 root _ _"),
			want:  "unknown UPOS tag",
		},
		{
			name:  "malformed deps",
			input: conllu("1 a a X X _ 0 root nocolon _"),
			want:  "DEPS",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadConllu(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConllu_NamesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story.conllu")
	require.NoError(t, os.WriteFile(path, []byte(conllu(
		"1 Tom Tom PROPN NNP _ 0 root _ _",
		"",
		"1 Sam Sam PROPN NNP _ 0 root _ _",
	)), 0o644))

	problems, err := Load(path)
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Equal(t, "story", problems[0].ID)
	assert.Len(t, problems[0].Sentences, 2)
}

const problemsYAML = `
- id: apples
  sentences:
    - text: Tom has 3 apples.
      tokens:
        - {position: 1, word: Tom, lemma: tom, pos: NNP}
        - {position: 2, word: has, lemma: have, pos: VBZ}
        - {position: 3, word: "3", lemma: "3", pos: CD}
        - {position: 4, word: apples, lemma: apple, pos: NNS}
      edges:
        - {gov: 2, dep: 1, rel: nsubj}
        - {gov: 2, dep: 4, rel: dobj}
        - {gov: 4, dep: 3, rel: num}
  quantities:
    - {value: "9", sentence_id: 1, position: 9}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	problems, err := Load(writeFile(t, "problems.yaml", problemsYAML))
	require.NoError(t, err)
	require.Len(t, problems, 1)

	p := problems[0]
	assert.Equal(t, "apples", p.ID)
	assert.Empty(t, p.Quantities)
	require.Len(t, p.Sentences, 1)
	assert.Equal(t, 4, p.Sentences[0].Len())
	assert.Len(t, p.Sentences[0].Edges, 3)
}

func TestLoadYAML_Errors(t *testing.T) {
	_, err := Load(writeFile(t, "noid.yaml", "- sentences: []\n"))
	assert.ErrorContains(t, err, "has no id")

	_, err = Load(writeFile(t, "nullproblem.yaml", "- ~\n"))
	assert.ErrorContains(t, err, "problem 1 has no id")

	bad := "- id: x\n  sentences:\n    - tokens: [{position: 2, word: a}]\n"
	_, err = Load(writeFile(t, "bad.yaml", bad))
	assert.ErrorIs(t, err, types.ErrTokenOutOfRange)

	_, err = Load(writeFile(t, "null.yaml", "- id: p\n  sentences:\n    - ~\n"))
	assert.ErrorContains(t, err, "problem p sentence 1 is empty")

	_, err = Load(writeFile(t, "problems.txt", problemsYAML))
	assert.ErrorContains(t, err, "unsupported")
}

func TestLoadAll_DuplicateIDs(t *testing.T) {
	a := writeFile(t, "a.yaml", problemsYAML)
	b := writeFile(t, "b.yaml", problemsYAML)
	_, err := LoadAll([]string{a, b})
	assert.ErrorContains(t, err, `problem id "apples"`)
}

func TestLoadSamples(t *testing.T) {
	problems, err := Load(writeFile(t, "problems.yaml", problemsYAML))
	require.NoError(t, err)

	samples, err := LoadSamples(writeFile(t, "samples.yaml", `
- problem: apples
  hypotheses:
    - kind: change
      change: {start: -1, end: 0, losses: [0]}
    - kind: part-whole
      part_whole: {whole: 0, parts: [0]}
`), problems)
	require.NoError(t, err)
	require.Len(t, samples, 1)

	s := samples[0]
	assert.Same(t, problems[0], s.Problem)
	require.Len(t, s.Hypotheses, 2)
	assert.Equal(t, types.ConceptChange, s.Hypotheses[0].Kind)
	assert.Equal(t, types.DefaultQuantity, s.Hypotheses[0].Change.Start)
	assert.Equal(t, []int{0}, s.Hypotheses[0].Change.Losses)
	assert.Equal(t, types.ConceptPartWhole, s.Hypotheses[1].Kind)
	assert.Equal(t, []int{0}, s.Hypotheses[1].PartWhole.Parts)

	_, err = LoadSamples(writeFile(t, "other.yaml", "- problem: nope\n"), problems)
	assert.ErrorContains(t, err, `unknown problem "nope"`)
}

func TestWriteQuantities(t *testing.T) {
	p := &types.Problem{ID: "apples"}
	p.AddConstant("3", 1, 3)

	dir := filepath.Join(t.TempDir(), "out")
	path, err := WriteQuantities(dir, p)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "apples-quantities.yaml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "problem: apples")
	assert.Contains(t, string(data), "unique_id: s1p3")
}
