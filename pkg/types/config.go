package types

// ExtractionConfig holds settings for quantity and unknown extraction.
type ExtractionConfig struct {
	// Debug logs every dependency lookup at debug level.
	Debug bool `json:"debug" yaml:"debug"`

	// UniversalDependencies lets UD labels (nmod:of, obj, obl:tmod) satisfy
	// the collapsed Stanford relations of the context vocabulary.
	UniversalDependencies bool `json:"universal_dependencies" yaml:"universal_dependencies"`

	// OutputDir receives <problem>-quantities.yaml files when set.
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// FeatureConfig holds settings for feature extraction.
type FeatureConfig struct {
	// LexiconPath is an optional YAML file of verb polarity overrides.
	LexiconPath string `json:"lexicon_path,omitempty" yaml:"lexicon_path,omitempty"`

	// Workers is the number of samples scored concurrently (default: NumCPU).
	Workers int `json:"workers" yaml:"workers"`

	// Extractors lists enabled extractors by name. Empty enables all.
	Extractors []string `json:"extractors,omitempty" yaml:"extractors,omitempty"`
}

// StoreConfig holds settings for the result database.
type StoreConfig struct {
	// Dir contains wordproblem.db and export files.
	Dir string `json:"dir" yaml:"dir"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is text or json.
	Format string `json:"format" yaml:"format"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Features   FeatureConfig    `json:"features" yaml:"features"`
	Store      StoreConfig      `json:"store" yaml:"store"`
	Log        LogConfig        `json:"log" yaml:"log"`
}

// DefaultConfig returns the configuration used when no file or flag
// overrides a value.
func DefaultConfig() PipelineConfig {
	return PipelineConfig{
		Store: StoreConfig{Dir: "results"},
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}
