// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/wordproblem-engine/internal/annotate"
	"github.com/pdiddy/wordproblem-engine/internal/assoc"
	"github.com/pdiddy/wordproblem-engine/internal/batch"
	"github.com/pdiddy/wordproblem-engine/internal/store"
	"github.com/pdiddy/wordproblem-engine/internal/unknown"
	"github.com/pdiddy/wordproblem-engine/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Find the quantities and question targets of annotated problems",
	Long: `Extract reads annotated problems from CoNLL-U or YAML files and registers
every cardinal number and question target with its type noun phrase and
its grammatical context. A problem that fails is reported and the
remaining problems are still processed.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("out", "", "write <problem>-quantities.yaml files to this directory")
	extractCmd.Flags().Bool("json", false, "print results as JSON")
	extractCmd.Flags().Bool("db", false, "save results to the SQLite store")
	extractCmd.Flags().Bool("ud", false, "accept Universal Dependencies labels for collapsed Stanford relations")
	extractCmd.Flags().Bool("debug", false, "log every dependency lookup")

	_ = viper.BindPFlag("extraction.output_dir", extractCmd.Flags().Lookup("out"))
	_ = viper.BindPFlag("extraction.universal_dependencies", extractCmd.Flags().Lookup("ud"))
	_ = viper.BindPFlag("extraction.debug", extractCmd.Flags().Lookup("debug"))

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more problem files (.conllu or .yaml)")
	}
	cfg := loadConfig()
	jsonOutput, _ := cmd.Flags().GetBool("json")
	useDB, _ := cmd.Flags().GetBool("db")

	problems, err := annotate.LoadAll(args)
	if err != nil {
		return err
	}

	ctx := context.Background()
	summary, results, err := batch.ExtractAll(ctx, newUnknownFinder(cfg.Extraction), problems, logger)
	if err != nil {
		return err
	}

	var db *store.Store
	if useDB {
		if db, err = store.NewStore(cfg.Store); err != nil {
			return err
		}
		defer db.Close()
	}

	var done []*types.Problem
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", r.Problem.ID, r.Err)
			continue
		}
		done = append(done, r.Problem)

		if cfg.Extraction.OutputDir != "" {
			path, err := annotate.WriteQuantities(cfg.Extraction.OutputDir, r.Problem)
			if err != nil {
				return err
			}
			logger.Info("wrote quantities", "problem", r.Problem.ID, "path", path)
		}
		if db != nil {
			if err := db.SaveProblem(ctx, r.Problem); err != nil {
				return fmt.Errorf("saving %s: %w", r.Problem.ID, err)
			}
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(done); err != nil {
			return err
		}
	} else {
		for _, p := range done {
			printQuantities(p)
		}
	}

	fmt.Fprintf(os.Stderr, "\nExtracted %d of %d problem(s)\n", summary.Succeeded, summary.Total())
	if summary.HasFailures() {
		return fmt.Errorf("%d problem(s) failed extraction", summary.Failed)
	}
	return nil
}

func newUnknownFinder(cfg types.ExtractionConfig) *unknown.Finder {
	opts := []assoc.Option{assoc.WithLogger(logger), assoc.WithDebug(cfg.Debug)}
	if cfg.UniversalDependencies {
		opts = append(opts, assoc.WithRelationAliases(assoc.UniversalAliases()))
	}
	return unknown.New(
		unknown.WithLogger(logger),
		unknown.WithAssociatedWordFinder(assoc.New(opts...)),
	)
}

func printQuantities(p *types.Problem) {
	fmt.Fprintf(os.Stdout, "%s\n", p.ID)
	fmt.Fprintf(os.Stdout, "%-8s  %-8s  %-7s  %-7s  %-20s  %-12s  %s\n",
		"ID", "Value", "Unknown", "PartOf", "Type", "Verb", "Subject")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))

	for _, q := range p.Quantities {
		typ := truncate(q.Type.String(), 20)
		partOf := "-"
		if q.IsPart {
			partOf = p.Quantities[q.PartOf].UniqueID
		}
		fmt.Fprintf(os.Stdout, "%-8s  %-8s  %-7t  %-7s  %-20s  %-12s  %s\n",
			q.UniqueID, q.Value, q.IsUnknown, partOf, typ,
			contextWords(p, q, types.RelVerb), contextWords(p, q, types.RelNsubj))
	}
	fmt.Fprintln(os.Stdout)
}

func contextWords(p *types.Problem, q *types.Quantity, rel types.Relation) string {
	toks, err := p.ContextTokens(q, rel)
	if err != nil || len(toks) == 0 {
		return "-"
	}
	words := make([]string, len(toks))
	for i, t := range toks {
		words[i] = t.Word
	}
	return strings.Join(words, ",")
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
