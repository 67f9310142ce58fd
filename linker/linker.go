package linker

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/poiesic/dualstore/ai"
	"github.com/poiesic/dualstore/core"
	"github.com/poiesic/dualstore/resolve"
)

// TableData is the read access the linker needs to materialized tables.
// storage.TableRepository satisfies it.
type TableData interface {
	// Columns returns the ordered column names of a table.
	Columns(ctx context.Context, table string) ([]string, error)
	// Rows returns all rows of a table in insertion order.
	Rows(ctx context.Context, table string) ([][]string, error)
}

// Linker associates corpus chunks with structured entities. Four methods are
// tried in order of confidence; the first that produces a match wins, and a
// chunk already linked by a higher-ranked method is never downgraded.
type Linker struct {
	tables        TableData
	similarity    ai.SimilarityLinker
	maxCandidates int
	logger        *slog.Logger
}

// Option configures a Linker.
type Option func(*Linker)

// WithLogger sets the logger used by the linker.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Linker) {
		l.logger = logger.With("component", "linker")
	}
}

// WithMaxSimilarityCandidates caps how many entity candidates are offered to
// the similarity service per chunk.
func WithMaxSimilarityCandidates(max int) Option {
	return func(l *Linker) {
		l.maxCandidates = max
	}
}

// New creates a Linker over the given table data. The similarity service may
// be nil, in which case the fallback method is skipped and chunks unmatched
// by the deterministic methods stay unlinked.
func New(tables TableData, similarity ai.SimilarityLinker, opts ...Option) (*Linker, error) {
	if tables == nil {
		return nil, fmt.Errorf("linker: table data is required")
	}
	l := &Linker{
		tables:        tables,
		similarity:    similarity,
		maxCandidates: 128,
		logger:        slog.Default().With("component", "linker"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Link populates the chunk's LinkedTable, LinkedIDs and LinkType, or marks
// the chunk as terminally unlinked (LinkType "none") when no method
// matches. An unlinked chunk is a valid terminal state, not an error. The
// chunk is mutated in place and returned.
//
// A link established by a higher-ranked method survives re-linking: lower
// ranked methods are not even attempted against it.
func (l *Linker) Link(ctx context.Context, chunk *core.Chunk, state *core.IngestionState) (*core.Chunk, error) {
	if err := l.link(ctx, chunk, state); err != nil {
		return nil, err
	}
	if chunk.LinkType == "" {
		chunk.LinkType = core.LinkTypeNone
	}
	return chunk, nil
}

func (l *Linker) link(ctx context.Context, chunk *core.Chunk, state *core.IngestionState) error {
	if chunk.Method >= core.LinkMethodIdentifier {
		return nil
	}

	entities, err := l.loadEntities(ctx, state)
	if err != nil {
		return err
	}

	if hit := matchIdentifier(chunk.Content, entities); hit != nil {
		l.apply(chunk, hit, core.LinkMethodIdentifier, core.LinkTypeDescribes)
		return nil
	}

	if chunk.Method >= core.LinkMethodEntityName {
		return nil
	}
	if hit := matchEntityName(chunk.Content, entities); hit != nil {
		l.apply(chunk, hit, core.LinkMethodEntityName, core.LinkTypeReferences)
		return nil
	}

	if chunk.Method >= core.LinkMethodSection {
		return nil
	}
	if hit := matchSection(chunk.Section, entities); hit != nil {
		l.apply(chunk, hit, core.LinkMethodSection, core.LinkTypeContextualizes)
		return nil
	}

	if chunk.Method >= core.LinkMethodSimilarity || l.similarity == nil {
		return nil
	}
	hit, err := l.matchSimilarity(ctx, chunk.Content, entities)
	if err != nil {
		return err
	}
	if hit != nil {
		l.apply(chunk, hit, core.LinkMethodSimilarity, core.LinkTypeReferences)
	}
	return nil
}

type linkHit struct {
	table string
	ids   []string
}

func (l *Linker) apply(chunk *core.Chunk, hit *linkHit, method core.LinkMethod, linkType core.LinkType) {
	chunk.LinkedTable = hit.table
	chunk.LinkedIDs = hit.ids
	chunk.LinkType = linkType
	chunk.Method = method
	l.logger.Debug("linked chunk",
		"chunk", chunk.Id,
		"table", hit.table,
		"ids", len(hit.ids),
		"type", linkType)
}

// entityTable is the per-table snapshot the matching methods work from.
type entityTable struct {
	name     string
	singular string
	keys     map[string]bool // primary key value set
	names    []namedRow      // display-name column values with their key
}

type namedRow struct {
	display string
	rowID   string
}

// loadEntities reads row data for every known table with a primary key.
// Tables without a primary key cannot address individual rows and so only
// participate in section matching.
func (l *Linker) loadEntities(ctx context.Context, state *core.IngestionState) ([]entityTable, error) {
	tableNames := make([]string, 0, len(state.Tables))
	for name := range state.Tables {
		tableNames = append(tableNames, name)
	}
	slices.Sort(tableNames)

	entities := make([]entityTable, 0, len(tableNames))
	for _, name := range tableNames {
		spec := state.Tables[name]
		entity := entityTable{
			name:     name,
			singular: resolve.Singularize(name),
		}

		if spec.HasPrimaryKey() {
			columns, err := l.tables.Columns(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("linker: reading columns of %q: %w", name, err)
			}
			rows, err := l.tables.Rows(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("linker: reading rows of %q: %w", name, err)
			}

			keyIdx := slices.Index(columns, *spec.PrimaryKey)
			nameIdx := displayColumnIndex(columns)
			if keyIdx >= 0 {
				entity.keys = make(map[string]bool, len(rows))
				for _, row := range rows {
					if keyIdx >= len(row) || row[keyIdx] == "" {
						continue
					}
					entity.keys[row[keyIdx]] = true
					if nameIdx >= 0 && nameIdx < len(row) && len(row[nameIdx]) >= 3 {
						entity.names = append(entity.names, namedRow{
							display: row[nameIdx],
							rowID:   row[keyIdx],
						})
					}
				}
			}
		}

		entities = append(entities, entity)
	}
	return entities, nil
}

// displayColumnIndex picks the column most likely to hold an entity's
// human-readable name.
func displayColumnIndex(columns []string) int {
	for _, candidate := range []string{"name", "title", "label"} {
		if i := slices.Index(columns, candidate); i >= 0 {
			return i
		}
	}
	for i, col := range columns {
		if strings.HasSuffix(col, "_name") || strings.HasSuffix(col, "_title") {
			return i
		}
	}
	return -1
}

// matchIdentifier scans the chunk text for "<entity> <id>" references, e.g.
// "Customer 101" or "order #A-17", and verifies the captured identifier
// against the table's primary key values. All verified identifiers for the
// first matching table are collected.
func matchIdentifier(text string, entities []entityTable) *linkHit {
	for _, entity := range entities {
		if len(entity.keys) == 0 || entity.singular == "" {
			continue
		}
		pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(entity.singular) + `\s+#?([A-Za-z0-9][A-Za-z0-9_-]*)`)
		var ids []string
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			id := match[1]
			if entity.keys[id] && !slices.Contains(ids, id) {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			return &linkHit{table: entity.name, ids: ids}
		}
	}
	return nil
}

// matchEntityName looks for a display-name value of a known row appearing
// verbatim in the chunk text.
func matchEntityName(text string, entities []entityTable) *linkHit {
	for _, entity := range entities {
		var ids []string
		for _, row := range entity.names {
			pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(row.display) + `\b`)
			if pattern.MatchString(text) && !slices.Contains(ids, row.rowID) {
				ids = append(ids, row.rowID)
			}
		}
		if len(ids) > 0 {
			return &linkHit{table: entity.name, ids: ids}
		}
	}
	return nil
}

// matchSection compares the chunk's heading against known table names. A
// section match ties the chunk to the table as a whole, not to specific rows.
func matchSection(section string, entities []entityTable) *linkHit {
	heading := strings.ToLower(strings.TrimSpace(section))
	if heading == "" {
		return nil
	}
	for _, entity := range entities {
		if heading == entity.name || heading == entity.singular {
			return &linkHit{table: entity.name}
		}
	}
	return nil
}

// matchSimilarity offers named rows to the external similarity service and
// takes its best match, if any.
func (l *Linker) matchSimilarity(ctx context.Context, text string, entities []entityTable) (*linkHit, error) {
	var candidates []ai.EntityCandidate
	for _, entity := range entities {
		for _, row := range entity.names {
			if len(candidates) >= l.maxCandidates {
				break
			}
			candidates = append(candidates, ai.EntityCandidate{
				Table:   entity.name,
				RowID:   row.rowID,
				Display: entity.singular + " " + row.display,
			})
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	matches, err := l.similarity.SimilarityLink(ctx, text, candidates)
	if err != nil {
		return nil, fmt.Errorf("linker: similarity service: %w", err)
	}
	if len(matches) == 0 {
		return nil, nil
	}
	best := matches[0]
	return &linkHit{table: best.Candidate.Table, ids: []string{best.Candidate.RowID}}, nil
}
