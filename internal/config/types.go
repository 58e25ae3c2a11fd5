// Package config provides shared configuration types for gaiac.
// This package is decoupled from CLI concerns so the pipeline and other
// tools can load project configuration directly.
package config

import (
	"fmt"

	"github.com/leapstack-labs/gaiac/pkg/ism"
)

// CompileConfig holds the source-query settings of the compiler.
type CompileConfig struct {
	Engine string `koanf:"engine"`
	PSM    string `koanf:"psm"`
}

// MergeConfig tunes the candidate deduplicator.
type MergeConfig struct {
	// FieldOverlapThreshold is the minimum Jaccard overlap between two
	// field-name sets for a similarity merge. Range (0, 1].
	FieldOverlapThreshold float64 `koanf:"field_overlap_threshold"`
}

// TablesConfig overrides entries of the built-in keyword tables.
// Overrides are additive; the defaults stay in place.
type TablesConfig struct {
	ExpressionLexicon   map[string]string `koanf:"expression_lexicon"`
	NameSynonyms        map[string]string `koanf:"name_synonyms"`
	TimeKeywords        []string          `koanf:"time_keywords"`
	RequiredKeywords    []string          `koanf:"required_keywords"`
	DescriptiveKeywords []string          `koanf:"descriptive_keywords"`
}

// Config is the complete gaiac configuration.
type Config struct {
	Compile CompileConfig `koanf:"compile"`
	Merge   MergeConfig   `koanf:"merge"`
	Tables  TablesConfig  `koanf:"tables"`

	// Output selects the CLI presentation, "table" or "json".
	Output  string `koanf:"output"`
	Verbose bool   `koanf:"verbose"`

	// ProjectRoot is the directory the config file was found in.
	ProjectRoot string `koanf:"-"`
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	if c.Merge.FieldOverlapThreshold <= 0 || c.Merge.FieldOverlapThreshold > 1 {
		return fmt.Errorf("merge.field_overlap_threshold must be in (0, 1], got %v", c.Merge.FieldOverlapThreshold)
	}
	if c.Output != OutputTable && c.Output != OutputJSON {
		return fmt.Errorf("output must be %q or %q, got %q", OutputTable, OutputJSON, c.Output)
	}
	return nil
}

// BuildTables materializes the keyword tables with the configured
// overrides layered on top of the defaults.
func (c *Config) BuildTables() ism.Tables {
	t := ism.DefaultTables()
	for k, v := range c.Tables.ExpressionLexicon {
		t.ExpressionLexicon[k] = v
	}
	for k, v := range c.Tables.NameSynonyms {
		t.NameSynonyms[k] = v
	}
	t.TimeKeywords = append(t.TimeKeywords, c.Tables.TimeKeywords...)
	t.RequiredKeywords = append(t.RequiredKeywords, c.Tables.RequiredKeywords...)
	t.DescriptiveKeywords = append(t.DescriptiveKeywords, c.Tables.DescriptiveKeywords...)
	return t
}

// MergeOptions converts the config into the deduplicator's options.
func (c *Config) MergeOptions() ism.MergeOptions {
	tables := c.BuildTables()
	return ism.MergeOptions{
		FieldOverlapThreshold: c.Merge.FieldOverlapThreshold,
		Tables:                &tables,
	}
}
