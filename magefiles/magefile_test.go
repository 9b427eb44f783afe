package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestGoLines(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.go"), "package a\n\nfunc A() {}\n")
	write(t, filepath.Join(root, "a_test.go"), "package a\n\n\nfunc TestA() {}\n")
	write(t, filepath.Join(root, "_skip", "b.go"), "package b\nvar x = 1\n")
	write(t, filepath.Join(root, ".hidden", "c.go"), "package c\n")
	write(t, filepath.Join(root, "notes.md"), "not go\n")

	prod, test, err := goLines(root)
	require.NoError(t, err)
	assert.Equal(t, 2, prod)
	assert.Equal(t, 2, test)
}

func TestCorpusFiles(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.yaml"), "[]\n")
	write(t, filepath.Join(root, "a-samples.yaml"), "[]\n")
	write(t, filepath.Join(root, "sub", "b.conllu"), "")
	write(t, filepath.Join(root, "readme.txt"), "")

	files, err := corpusFiles(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "a.yaml"),
		filepath.Join(root, "sub", "b.conllu"),
	}, files)

	files, err = corpusFiles(filepath.Join(root, "missing"))
	require.NoError(t, err)
	assert.Empty(t, files)
}
