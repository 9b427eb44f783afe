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
	"github.com/pdiddy/wordproblem-engine/internal/batch"
	"github.com/pdiddy/wordproblem-engine/internal/features"
	"github.com/pdiddy/wordproblem-engine/internal/polarity"
	"github.com/pdiddy/wordproblem-engine/internal/store"
	"github.com/pdiddy/wordproblem-engine/pkg/types"
)

var featuresCmd = &cobra.Command{
	Use:   "features [files...] --samples samples.yaml",
	Short: "Compute classifier features for candidate hypotheses",
	Long: `Features extracts the quantities of each problem, then scores every
hypothesis listed for it in the samples file. Hypotheses are change,
part-whole or comparison concepts over quantity indices. Samples are
scored concurrently; output lists the non-zero features of each
hypothesis.`,
	RunE: runFeatures,
}

func init() {
	featuresCmd.Flags().String("samples", "", "YAML file of hypotheses per problem (required)")
	featuresCmd.Flags().Int("workers", 0, "samples scored concurrently (default: number of CPUs)")
	featuresCmd.Flags().String("lexicon", "", "YAML file of verb polarity overrides")
	featuresCmd.Flags().StringSlice("extractors", nil, "extractors to run (default: all)")
	featuresCmd.Flags().Bool("json", false, "print features as JSON")
	featuresCmd.Flags().Bool("db", false, "save quantities and features to the SQLite store")

	_ = viper.BindPFlag("features.workers", featuresCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("features.lexicon_path", featuresCmd.Flags().Lookup("lexicon"))
	_ = viper.BindPFlag("features.extractors", featuresCmd.Flags().Lookup("extractors"))

	rootCmd.AddCommand(featuresCmd)
}

// scoredSample is the printed result for one sample.
type scoredSample struct {
	Problem    string                `json:"problem"`
	Hypotheses []features.FeatureMap `json:"hypotheses,omitempty"`
	Error      string                `json:"error,omitempty"`
}

func runFeatures(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more problem files (.conllu or .yaml)")
	}
	samplesPath, _ := cmd.Flags().GetString("samples")
	if samplesPath == "" {
		return fmt.Errorf("--samples is required")
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")
	useDB, _ := cmd.Flags().GetBool("db")
	cfg := loadConfig()

	lexicon, err := polarity.Load(cfg.Features.LexiconPath)
	if err != nil {
		return err
	}
	extractors, err := features.Select(lexicon, cfg.Features.Extractors)
	if err != nil {
		return err
	}
	pipeline, err := features.NewPipeline(extractors...)
	if err != nil {
		return err
	}

	problems, err := annotate.LoadAll(args)
	if err != nil {
		return err
	}
	ctx := context.Background()
	_, extracted, err := batch.ExtractAll(ctx, newUnknownFinder(cfg.Extraction), problems, logger)
	if err != nil {
		return err
	}
	failed := make(map[string]error)
	for _, r := range extracted {
		if r.Err != nil {
			failed[r.Problem.ID] = r.Err
		}
	}

	all, err := annotate.LoadSamples(samplesPath, problems)
	if err != nil {
		return err
	}
	var samples []*types.Sample
	for _, s := range all {
		if err, ok := failed[s.Problem.ID]; ok {
			logger.Warn("skipping sample", "problem", s.Problem.ID, "error", err)
			continue
		}
		samples = append(samples, s)
	}

	summary, results := batch.ScoreAll(ctx, pipeline, samples, cfg.Features.Workers)

	var db *store.Store
	if useDB {
		if db, err = store.NewStore(cfg.Store); err != nil {
			return err
		}
		defer db.Close()
	}

	out := make([]scoredSample, 0, len(results))
	for _, r := range results {
		id := r.Sample.Problem.ID
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", id, r.Err)
			out = append(out, scoredSample{Problem: id, Error: r.Err.Error()})
			continue
		}
		out = append(out, scoredSample{Problem: id, Hypotheses: r.Features})

		if db != nil {
			if err := saveScored(ctx, db, r); err != nil {
				return err
			}
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		printScored(out)
	}

	fmt.Fprintf(os.Stderr, "\nScored %d of %d sample(s)\n", summary.Succeeded, summary.Total())
	if summary.HasFailures() {
		return fmt.Errorf("%d sample(s) failed scoring", summary.Failed)
	}
	return nil
}

func saveScored(ctx context.Context, db *store.Store, r batch.ScoreResult) error {
	p := r.Sample.Problem
	if err := db.SaveProblem(ctx, p); err != nil {
		return fmt.Errorf("saving %s: %w", p.ID, err)
	}
	for y, fm := range r.Features {
		if err := db.SaveFeatures(ctx, p.ID, y, fm); err != nil {
			return fmt.Errorf("saving features of %s hypothesis %d: %w", p.ID, y, err)
		}
	}
	return nil
}

func printScored(out []scoredSample) {
	for _, s := range out {
		if s.Error != "" {
			continue
		}
		fmt.Fprintf(os.Stdout, "%s\n", s.Problem)
		for y, fm := range s.Hypotheses {
			active := fm.NonZero()
			if len(active) == 0 {
				fmt.Fprintf(os.Stdout, "  h%d  (no active features)\n", y)
				continue
			}
			parts := make([]string, len(active))
			for i, name := range active {
				parts[i] = fmt.Sprintf("%s=%g", name, fm[name])
			}
			fmt.Fprintf(os.Stdout, "  h%d  %s\n", y, strings.Join(parts, " "))
		}
	}
}
