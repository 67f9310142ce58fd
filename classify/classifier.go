package classify

import (
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/dualstore/core"
)

// Classifier decides, per content block, whether the content belongs in
// the structured store, the semantic corpus, or both.
//
// Classification is a pure function of the block and the configured
// thresholds: identical inputs always produce identical results, and no
// input ever raises an error. Malformed blocks classify as discard with
// signals recorded as unknown.
type Classifier struct {
	config *Config
	logger *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// WithConfig sets the decision thresholds.
// Default is DefaultConfig().
func WithConfig(config *Config) Option {
	return func(c *Classifier) error {
		if config == nil {
			config = DefaultConfig()
		}
		if err := config.Validate(); err != nil {
			return err
		}
		c.config = config
		return nil
	}
}

// New creates a classifier with default thresholds.
func New(opts ...Option) (*Classifier, error) {
	c := &Classifier{
		config: DefaultConfig(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.logger = c.logger.With("component", "classifier")
	return c, nil
}

// Classify labels a block structured, unstructured, both, or discard.
//
// Malformed or empty blocks are skipped (discard) and logged; they never
// abort a run. Heading blocks must not reach the classifier at all: the
// extractor folds them into SectionContext of subsequent blocks.
func (c *Classifier) Classify(block *core.ContentBlock) core.ClassificationResult {
	if err := core.ValidateContentBlock(block); err != nil {
		c.logger.Warn("skipping malformed block", "err", err)
		return core.ClassificationResult{
			Destination: core.DestinationDiscard,
			Signals:     core.ConfidenceSignals{Known: false},
		}
	}

	switch block.Kind {
	case core.BlockKindTable:
		return c.classifyTable(block)
	case core.BlockKindParagraph:
		return c.classifyParagraph(block)
	default:
		// Unreachable after validation, but classification never raises.
		c.logger.Warn("block kind escaped validation", "kind", int(block.Kind))
		return core.ClassificationResult{
			Destination: core.DestinationUnstructured,
			Signals:     core.ConfidenceSignals{Known: false},
		}
	}
}

// classifyTable applies the decision rules in order; the first match wins.
func (c *Classifier) classifyTable(block *core.ContentBlock) core.ClassificationResult {
	signals := tableSignals(block)
	cfg := c.config

	result := core.ClassificationResult{Signals: signals}

	longMax := signals.MaxTextLen > cfg.LongTextLen
	switch {
	case longMax && signals.AvgTextLen > cfg.AvgLongTextLen:
		result.Destination = core.DestinationUnstructured

	case signals.MergedRatio > cfg.MergedRatioThreshold || longMax:
		result.Destination = core.DestinationBoth

	case signals.NullRatio < cfg.NullRatioThreshold && signals.AvgTextLen < cfg.ShortAvgTextLen:
		result.Destination = core.DestinationStructured

	default:
		// Ties go to both: losing a queryable column is recoverable,
		// silently dropping searchable text is not.
		result.Destination = core.DestinationBoth
	}

	if result.Destination == core.DestinationBoth {
		result.LongTextColumns = longTextColumns(block, cfg.LongTextLen)
	}

	c.logger.Debug("classified table block",
		"name", block.Name,
		"destination", result.Destination.String(),
		"merged_ratio", signals.MergedRatio,
		"avg_text_len", signals.AvgTextLen,
		"max_text_len", signals.MaxTextLen,
		"null_ratio", signals.NullRatio)

	return result
}

func (c *Classifier) classifyParagraph(block *core.ContentBlock) core.ClassificationResult {
	length := utf8.RuneCountInString(block.Text)
	signals := core.ConfidenceSignals{
		AvgTextLen: float64(length),
		MaxTextLen: length,
		Known:      true,
	}

	if length < c.config.MinParagraphLen {
		c.logger.Debug("discarding short paragraph", "length", length)
		return core.ClassificationResult{
			Destination: core.DestinationDiscard,
			Signals:     signals,
		}
	}

	// Paragraphs above the corpus threshold are a decision; shorter ones
	// land in the corpus by default since no other store fits prose.
	result := core.ClassificationResult{
		Destination: core.DestinationUnstructured,
		Signals:     signals,
	}
	if length < c.config.CorpusParagraphLen {
		result.Defaulted = true
		c.logger.Debug("paragraph below corpus threshold, defaulting", "length", length)
	}
	return result
}

// tableSignals computes the numeric signals for a table block.
func tableSignals(block *core.ContentBlock) core.ConfidenceSignals {
	width := len(block.Header)
	totalCells := (len(block.Cells) + 1) * width
	if totalCells == 0 {
		return core.ConfidenceSignals{Known: false}
	}

	merged := 0
	for _, m := range block.Merges {
		if m.CellCount() > 1 {
			merged += m.CellCount()
		}
	}
	if merged > totalCells {
		merged = totalCells
	}

	numeric := numericColumns(block)

	var textCells, textLenSum, maxLen, nulls int
	for _, row := range block.Cells {
		for col, cell := range row {
			if strings.TrimSpace(cell) == "" {
				nulls++
				continue
			}
			if numeric[col] {
				continue
			}
			length := utf8.RuneCountInString(cell)
			textCells++
			textLenSum += length
			if length > maxLen {
				maxLen = length
			}
		}
	}

	var avg float64
	if textCells > 0 {
		avg = float64(textLenSum) / float64(textCells)
	}

	var nullRatio float64
	if n := len(block.Cells) * width; n > 0 {
		nullRatio = float64(nulls) / float64(n)
	}

	return core.ConfidenceSignals{
		MergedRatio: float64(merged) / float64(totalCells),
		AvgTextLen:  avg,
		MaxTextLen:  maxLen,
		NullRatio:   nullRatio,
		Known:       true,
	}
}

// numericColumns reports, per column index, whether every non-empty cell
// parses as a number.
func numericColumns(block *core.ContentBlock) []bool {
	width := len(block.Header)
	numeric := make([]bool, width)
	for col := 0; col < width; col++ {
		numeric[col] = true
		seen := false
		for _, row := range block.Cells {
			cell := strings.TrimSpace(row[col])
			if cell == "" {
				continue
			}
			seen = true
			if !isNumeric(cell) {
				numeric[col] = false
				break
			}
		}
		if !seen {
			numeric[col] = false
		}
	}
	return numeric
}

func isNumeric(s string) bool {
	s = strings.ReplaceAll(s, ",", "")
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// longTextColumns returns the column indexes whose longest cell exceeds
// the long-form threshold. These columns feed the corpus side of a split.
func longTextColumns(block *core.ContentBlock, longLen int) []int {
	width := len(block.Header)
	var cols []int
	for col := 0; col < width; col++ {
		for _, row := range block.Cells {
			if utf8.RuneCountInString(row[col]) > longLen {
				cols = append(cols, col)
				break
			}
		}
	}
	return cols
}
