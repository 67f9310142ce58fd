package core

import (
	"encoding/binary"
	"sort"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing so that identical content
// produces identical IDs across ingestion runs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Fingerprint is a 64-bit content digest of a materialized source.
// Two sources with identical column sets and row sets produce identical
// fingerprints, which is how unchanged re-ingestions are detected.
type Fingerprint uint64

// FingerprintRows computes the fingerprint of a column set plus row set.
// Column order and row order are part of the identity: a reordered source
// is a changed source.
func FingerprintRows(columns []string, rows [][]string) Fingerprint {
	h, _ := blake2b.New(8, nil)
	for _, col := range columns {
		h.Write([]byte(col))
		h.Write([]byte{0})
	}
	h.Write([]byte{1})
	for _, row := range rows {
		for _, cell := range row {
			h.Write([]byte(cell))
			h.Write([]byte{0})
		}
		h.Write([]byte{1})
	}
	sum := h.Sum(nil)
	return Fingerprint(binary.LittleEndian.Uint64(sum))
}

// BlockKind identifies the shape of an extracted content block.
type BlockKind int

const (
	// BlockKindTable is a rectangular grid of cells.
	BlockKindTable BlockKind = iota + 1
	// BlockKindParagraph is a run of prose text.
	BlockKindParagraph
)

// SourceLocator identifies where a block came from inside a source file.
type SourceLocator struct {
	FileID  string // source file identifier
	Segment string // sheet, page, or section within the file
	Index   int    // ordinal position in document order
}

// CellMerge describes a merged region in a table block.
// Row/Col are zero-based coordinates of the top-left cell.
type CellMerge struct {
	Row     int
	Col     int
	RowSpan int
	ColSpan int
}

// CellCount returns the number of grid cells covered by the merge.
func (m CellMerge) CellCount() int {
	return m.RowSpan * m.ColSpan
}

// ContentBlock is one unit of extracted content. It is immutable once
// extracted: extractors own creation, everything downstream only reads.
type ContentBlock struct {
	Kind           BlockKind
	Name           string      // suggested table name (sheet name, caption)
	Header         []string    // first row of a table block, original column names
	Cells          [][]string  // data rows, excluding the header
	Merges         []CellMerge // merged regions, table blocks only
	Text           string      // paragraph contents, paragraph blocks only
	SectionContext string      // nearest preceding heading
	Locator        SourceLocator
}

// Destination is the classification verdict for a content block.
type Destination int

const (
	// DestinationStructured routes the block to the queryable table store.
	DestinationStructured Destination = iota + 1
	// DestinationUnstructured routes the block to the semantic corpus.
	DestinationUnstructured
	// DestinationBoth splits the block across both stores.
	DestinationBoth
	// DestinationDiscard drops the block as noise.
	DestinationDiscard
)

// String returns the serialized name of the destination.
func (d Destination) String() string {
	switch d {
	case DestinationStructured:
		return "structured"
	case DestinationUnstructured:
		return "unstructured"
	case DestinationBoth:
		return "both"
	case DestinationDiscard:
		return "discard"
	default:
		return "unknown(" + strconv.Itoa(int(d)) + ")"
	}
}

// ConfidenceSignals are the numeric inputs the classifier decided on.
// They are retained on every result for auditability.
type ConfidenceSignals struct {
	MergedRatio float64 // fraction of cells participating in a multi-cell merge
	AvgTextLen  float64 // mean text length over non-numeric columns
	MaxTextLen  int     // maximum text length over non-numeric columns
	NullRatio   float64 // fraction of empty cells
	Known       bool    // false when the block was malformed and signals could not be computed
}

// ClassificationResult is the outcome of classifying one block.
// Produced once per block, never mutated.
type ClassificationResult struct {
	Destination Destination
	Signals     ConfidenceSignals
	// Defaulted reports that the destination is the fallback for the
	// block's kind rather than a threshold decision. Kept for audit logs.
	Defaulted bool
	// LongTextColumns lists column indexes routed to the corpus when the
	// destination is DestinationBoth. Empty otherwise.
	LongTextColumns []int
}

// ColumnType is the inferred storage type of a table column.
type ColumnType string

const (
	ColumnTypeInteger   ColumnType = "integer"
	ColumnTypeReal      ColumnType = "real"
	ColumnTypeBool      ColumnType = "boolean"
	ColumnTypeTimestamp ColumnType = "timestamp"
	ColumnTypeText      ColumnType = "text"
)

// ForeignKeyTarget names the table and column a foreign key resolves to.
type ForeignKeyTarget struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

// TableSpec describes a structured entity materialized from one or more
// sources. Sources maps each contributing source file to the fingerprint
// of its latest contribution, so re-ingestions no-op per source. The
// column set and row count are updated on re-ingestion; specs are never
// deleted automatically.
type TableSpec struct {
	Name        string                      `json:"name"`
	Sources     map[string]Fingerprint      `json:"sources"`
	Columns     map[string]ColumnType       `json:"columns"`
	PrimaryKey  *string                     `json:"primary_key"`
	ForeignKeys map[string]ForeignKeyTarget `json:"foreign_keys"`
	RowCount    int                         `json:"row_count"`
}

// RecordSource notes a contributing source file and the fingerprint of
// its latest contribution.
func (s *TableSpec) RecordSource(source string, fp Fingerprint) {
	if s.Sources == nil {
		s.Sources = make(map[string]Fingerprint)
	}
	s.Sources[source] = fp
}

// HasSource reports whether the source has contributed to this table.
func (s *TableSpec) HasSource(source string) bool {
	_, ok := s.Sources[source]
	return ok
}

// UnchangedFrom reports whether the source's last recorded contribution
// carried exactly this fingerprint.
func (s *TableSpec) UnchangedFrom(source string, fp Fingerprint) bool {
	stored, ok := s.Sources[source]
	return ok && stored == fp
}

// ColumnNames returns the spec's column names in sorted order.
func (s *TableSpec) ColumnNames() []string {
	names := make([]string, 0, len(s.Columns))
	for name := range s.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasPrimaryKey reports whether the spec carries a usable primary key.
// Tables without one are materialized but not eligible as FK targets.
func (s *TableSpec) HasPrimaryKey() bool {
	return s.PrimaryKey != nil && *s.PrimaryKey != ""
}

// Relationship is a resolved foreign-key edge between two tables.
type Relationship struct {
	FromTable  string `json:"from_table"`
	FromColumn string `json:"from_column"`
	ToTable    string `json:"to_table"`
	ToColumn   string `json:"to_column"`
}

// PendingRelationship is a foreign-key-shaped column whose target table
// has not been ingested yet. Entries persist until a later table
// satisfies the hint.
type PendingRelationship struct {
	Table            string `json:"table"`
	Column           string `json:"column"`
	AwaitedTableHint string `json:"awaited_table_name_hint"`
}

// LinkType describes the semantic relationship between a chunk and the
// structured entity it references.
type LinkType string

const (
	LinkTypeNone           LinkType = "none"
	LinkTypeDescribes      LinkType = "describes"
	LinkTypeSummarizes     LinkType = "summarizes"
	LinkTypeReferences     LinkType = "references"
	LinkTypeContextualizes LinkType = "contextualizes"
)

// LinkMethod ranks how a chunk link was established. Higher values are
// higher confidence; re-linking may only replace a link with an equal or
// higher-ranked method.
type LinkMethod int

const (
	// LinkMethodUnlinked means no method has produced a link.
	LinkMethodUnlinked LinkMethod = iota
	// LinkMethodSimilarity is the embedding-service fallback.
	LinkMethodSimilarity
	// LinkMethodSection matched the chunk's heading against a table name.
	LinkMethodSection
	// LinkMethodEntityName matched chunk text against a display-name value.
	LinkMethodEntityName
	// LinkMethodIdentifier matched an explicit identifier in the chunk text.
	LinkMethodIdentifier
	// LinkMethodSplit links the corpus half of a split table row to its
	// structured half. Assigned at materialization, never revised.
	LinkMethodSplit
)

// Chunk is one retrievable unit of unstructured content.
// Content is immutable once written: regeneration replaces the whole
// chunk, never patches it in place. Link fields are populated or revised
// by the cross-reference linker.
type Chunk struct {
	Id          ID       `json:"id"`
	SourceFile  string   `json:"source_file"`
	Section     string   `json:"section"`
	Content     string   `json:"content"`
	LinkedTable string   `json:"linked_table"`
	LinkedIDs   []string `json:"linked_ids"`
	LinkType    LinkType `json:"link_type"`

	// Method records how the current link was established. It lives in
	// the chunk's stored record but not in the state document contract.
	Method LinkMethod `json:"-"`
	// Vector is the embedding used for similarity search.
	Vector []float32 `json:"-"`

	InsertedAt time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

// Linked reports whether the chunk carries a link to a structured entity.
func (c *Chunk) Linked() bool {
	return c.LinkType != "" && c.LinkType != LinkTypeNone
}

// EntityKey formats the reverse-index key for a table row, "{table}.{id}".
func EntityKey(table, rowID string) string {
	return table + "." + rowID
}

// SearchResult is a chunk returned from vector similarity search,
// with its relevance score.
type SearchResult struct {
	Chunk *Chunk
	Score float32
}
