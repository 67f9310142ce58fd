package extract

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/dualstore/core"
)

// Extractor produces the ordered content blocks of one source file.
// Implementations must preserve document order and merged-cell metadata;
// the pipeline depends on both for section tracking and classification.
type Extractor interface {
	// Extract returns the file's content blocks in document order.
	// Each block carries the nearest preceding heading as its section context.
	Extract(ctx context.Context, doc *Document) ([]core.ContentBlock, error)
}

// Document is the in-memory representation of one source file handed to the
// extractor: a flat, ordered list of items grouped into named segments
// (sheets, pages or sections, depending on the source format).
type Document struct {
	FileID   string
	Segments []Segment
}

// Segment is one sheet, page or section of a document.
type Segment struct {
	Name  string
	Items []Item
}

// Item is a single piece of document content. Exactly one of the content
// fields is used, selected by Kind.
type Item struct {
	Kind ItemKind

	// Heading text, for ItemHeading.
	Heading string

	// Paragraph text, for ItemParagraph.
	Text string

	// Table content, for ItemTable.
	TableName string
	Header    []string
	Rows      [][]string
	Merges    []core.CellMerge
}

// ItemKind discriminates Item content.
type ItemKind int

const (
	ItemHeading ItemKind = iota
	ItemParagraph
	ItemTable
)

// DocumentExtractor implements Extractor over in-memory documents.
// Headings are not emitted as blocks; they update the running section
// context that subsequent blocks are stamped with.
type DocumentExtractor struct {
	logger *slog.Logger
}

// Option configures a DocumentExtractor.
type Option func(*DocumentExtractor)

// WithLogger sets the logger used by the extractor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *DocumentExtractor) {
		e.logger = logger.With("component", "extractor")
	}
}

// NewDocumentExtractor creates an extractor for in-memory documents.
func NewDocumentExtractor(opts ...Option) *DocumentExtractor {
	e := &DocumentExtractor{
		logger: slog.Default().With("component", "extractor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract walks the document's segments in order and returns one block per
// table or paragraph item. The block index counts blocks within a segment,
// headings excluded, so locators stay stable when headings are edited.
func (e *DocumentExtractor) Extract(ctx context.Context, doc *Document) ([]core.ContentBlock, error) {
	if doc == nil {
		return nil, errors.New("extract: document is nil")
	}
	if doc.FileID == "" {
		return nil, errors.New("extract: document FileID is required")
	}

	var blocks []core.ContentBlock
	for _, segment := range doc.Segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		section := ""
		index := 0
		for _, item := range segment.Items {
			switch item.Kind {
			case ItemHeading:
				section = item.Heading
			case ItemParagraph:
				blocks = append(blocks, core.ContentBlock{
					Kind:           core.BlockKindParagraph,
					Text:           item.Text,
					SectionContext: section,
					Locator: core.SourceLocator{
						FileID:  doc.FileID,
						Segment: segment.Name,
						Index:   index,
					},
				})
				index++
			case ItemTable:
				blocks = append(blocks, core.ContentBlock{
					Kind:           core.BlockKindTable,
					Name:           item.TableName,
					Header:         item.Header,
					Cells:          item.Rows,
					Merges:         item.Merges,
					SectionContext: section,
					Locator: core.SourceLocator{
						FileID:  doc.FileID,
						Segment: segment.Name,
						Index:   index,
					},
				})
				index++
			}
		}
	}

	e.logger.Debug("extracted document",
		"file", doc.FileID,
		"segments", len(doc.Segments),
		"blocks", len(blocks))
	return blocks, nil
}
