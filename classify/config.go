// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package classify

import "errors"

// Config holds the classifier's decision thresholds.
// The defaults come from observed spreadsheet corpora, not from any
// empirical tuning; treat every value as adjustable.
type Config struct {
	// MergedRatioThreshold is the fraction of merged cells above which a
	// table is considered layout-styled and split across both stores.
	// Default: 0.10
	MergedRatioThreshold float64

	// LongTextLen is the cell length above which a column counts as
	// long-form text. Default: 500
	LongTextLen int

	// AvgLongTextLen is the mean text length above which a table with
	// long cells is treated as narrative rather than tabular.
	// Default: 200
	AvgLongTextLen float64

	// ShortAvgTextLen is the mean text length below which a dense table
	// is considered cleanly structured. Default: 100
	ShortAvgTextLen float64

	// NullRatioThreshold is the empty-cell fraction below which a table
	// is considered dense enough for the structured store. Default: 0.30
	NullRatioThreshold float64

	// MinParagraphLen is the paragraph length below which text is
	// discarded as noise. Default: 50
	MinParagraphLen int

	// CorpusParagraphLen is the paragraph length above which text is
	// definitively corpus material. Shorter paragraphs still land in the
	// corpus, but by the default rule rather than a decision.
	// Default: 200
	CorpusParagraphLen int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithMergedRatioThreshold sets the merged-cell split threshold.
func WithMergedRatioThreshold(ratio float64) ConfigOption {
	return func(c *Config) {
		c.MergedRatioThreshold = ratio
	}
}

// WithLongTextLen sets the long-form cell length threshold.
func WithLongTextLen(length int) ConfigOption {
	return func(c *Config) {
		c.LongTextLen = length
	}
}

// WithAvgLongTextLen sets the narrative mean-length threshold.
func WithAvgLongTextLen(length float64) ConfigOption {
	return func(c *Config) {
		c.AvgLongTextLen = length
	}
}

// WithShortAvgTextLen sets the structured mean-length threshold.
func WithShortAvgTextLen(length float64) ConfigOption {
	return func(c *Config) {
		c.ShortAvgTextLen = length
	}
}

// WithNullRatioThreshold sets the empty-cell density threshold.
func WithNullRatioThreshold(ratio float64) ConfigOption {
	return func(c *Config) {
		c.NullRatioThreshold = ratio
	}
}

// WithParagraphLens sets the paragraph noise and corpus length thresholds.
func WithParagraphLens(minLen, corpusLen int) ConfigOption {
	return func(c *Config) {
		c.MinParagraphLen = minLen
		c.CorpusParagraphLen = corpusLen
	}
}

// DefaultConfig returns a Config with default values.
func DefaultConfig(opts ...ConfigOption) *Config {
	config := &Config{
		MergedRatioThreshold: 0.10,
		LongTextLen:          500,
		AvgLongTextLen:       200,
		ShortAvgTextLen:      100,
		NullRatioThreshold:   0.30,
		MinParagraphLen:      50,
		CorpusParagraphLen:   200,
	}

	for _, opt := range opts {
		opt(config)
	}

	return config
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.MergedRatioThreshold < 0 || c.MergedRatioThreshold > 1 {
		return errors.New("merged ratio threshold must be in [0, 1]")
	}
	if c.NullRatioThreshold < 0 || c.NullRatioThreshold > 1 {
		return errors.New("null ratio threshold must be in [0, 1]")
	}
	if c.LongTextLen <= 0 {
		return errors.New("long text length must be positive")
	}
	if c.AvgLongTextLen <= c.ShortAvgTextLen {
		return errors.New("average long-text length must exceed short average length")
	}
	if c.MinParagraphLen < 0 || c.CorpusParagraphLen < c.MinParagraphLen {
		return errors.New("corpus paragraph length must be >= minimum paragraph length")
	}
	return nil
}
