// Package main contains Mage build targets for wordproblem developer tooling.
package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/pdiddy/wordproblem-engine/internal/annotate"
)

// projectDirs lists the working directories the pipeline expects.
var projectDirs = []string{
	"corpus",
	"results",
	"results/quantities",
}

// Init creates the project directory structure for the pipeline.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "wordproblem"
	cmdPkg  = "./cmd/wordproblem"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests of every package.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet over the module.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Extract builds the CLI and extracts every problem under corpus/ into
// results/quantities and the result store.
func Extract() error {
	mg.Deps(Init, Build)

	files, err := corpusFiles("corpus")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No .conllu or .yaml files in corpus/.")
		return nil
	}
	args := append([]string{"extract", "--out", "results/quantities", "--db"}, files...)
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// Export writes the result store to results/export.yaml.
func Export() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "store", "export", "--format", "yaml")
}

// corpusFiles lists problem files under root, skipping samples files.
func corpusFiles(root string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() || strings.HasSuffix(info.Name(), "-samples.yaml") {
			return nil
		}
		switch filepath.Ext(path) {
		case ".conllu", ".conll", ".yaml", ".yml":
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// Stats prints Go line counts and a summary of the corpus: problem files,
// problems, sentences and samples files.
func Stats() error {
	prod, test, err := goLines(".")
	if err != nil {
		return err
	}
	files, err := corpusFiles("corpus")
	if err != nil {
		return err
	}
	problems, err := annotate.LoadAll(files)
	if err != nil {
		return err
	}
	sentences := 0
	for _, p := range problems {
		sentences += len(p.Sentences)
	}
	samples, err := filepath.Glob(filepath.Join("corpus", "*-samples.yaml"))
	if err != nil {
		return err
	}

	fmt.Printf("Go lines (production):  %d\n", prod)
	fmt.Printf("Go lines (tests):       %d\n", test)
	fmt.Printf("Corpus files:           %d\n", len(files))
	fmt.Printf("Corpus problems:        %d (%d sentences)\n", len(problems), sentences)
	fmt.Printf("Samples files:          %d\n", len(samples))
	return nil
}

// goLines counts non-blank lines of production and test Go files under root,
// skipping directories whose names start with an underscore or a dot.
func goLines(root string) (prod, test int, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (strings.HasPrefix(d.Name(), "_") || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				n++
			}
		}
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, test, err
}
