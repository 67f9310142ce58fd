package resolve

import "errors"

// Config holds the resolver's tunable heuristics.
type Config struct {
	// MergeOverlapThreshold is the column-name overlap (Jaccard) above
	// which two differently named tables are flagged as merge
	// candidates. Default: 0.70
	MergeOverlapThreshold float64

	// StemSimilarity is the minimum levenshtein similarity between a
	// foreign-key stem and a singularized table name for the table to
	// count as the key's target. Default: 0.80
	StemSimilarity float64
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithMergeOverlapThreshold sets the merge-candidate overlap threshold.
func WithMergeOverlapThreshold(ratio float64) ConfigOption {
	return func(c *Config) {
		c.MergeOverlapThreshold = ratio
	}
}

// WithStemSimilarity sets the stem-to-table-name similarity floor.
func WithStemSimilarity(similarity float64) ConfigOption {
	return func(c *Config) {
		c.StemSimilarity = similarity
	}
}

// DefaultConfig returns a Config with default values.
func DefaultConfig(opts ...ConfigOption) *Config {
	config := &Config{
		MergeOverlapThreshold: 0.70,
		StemSimilarity:        0.80,
	}

	for _, opt := range opts {
		opt(config)
	}

	return config
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.MergeOverlapThreshold <= 0 || c.MergeOverlapThreshold > 1 {
		return errors.New("merge overlap threshold must be in (0, 1]")
	}
	if c.StemSimilarity <= 0 || c.StemSimilarity > 1 {
		return errors.New("stem similarity must be in (0, 1]")
	}
	return nil
}
