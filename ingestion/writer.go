package ingestion

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/poiesic/dualstore/core"
	"github.com/poiesic/dualstore/resolve"
	"github.com/poiesic/dualstore/storage"
)

// materializeBlock writes one structured block to the table store and
// updates the in-memory state: table spec, relationships, pendings and the
// pending sweep. For a both-destination block it also returns the corpus
// chunks split out of the long-text columns.
//
// Errors are fatal to this block only; the caller logs and moves on.
func (p *Pipeline) materializeBlock(
	ctx context.Context,
	state *core.IngestionState,
	block *core.ContentBlock,
	result core.ClassificationResult,
	report *Report,
) ([]*core.Chunk, error) {
	columns, err := storage.NormalizeColumns(block.Header)
	if err != nil {
		return nil, err
	}
	name := deriveTableName(block)
	fingerprint := core.FingerprintRows(columns, block.Cells)
	source := block.Locator.FileID

	existing := state.Table(name)
	if existing != nil && existing.UnchangedFrom(source, fingerprint) {
		// Unchanged re-ingestion of this source: a row-level no-op. Split
		// chunks are still produced because the corpus half is regenerated
		// per source file.
		p.logger.Debug("table unchanged, skipping rebuild", "table", name, "source", source)
		report.BlocksSkipped++
		return p.splitChunks(block, result, existing), nil
	}

	decision := p.resolver.DecideTable(name, columns, state)
	rows := block.Cells

	if decision.Kind == resolve.DecisionMergeCandidate {
		return nil, fmt.Errorf("%w: %q overlaps %q (%.0f%% of columns)",
			ErrMergeCandidate, name, decision.Target, decision.Overlap*100)
	}

	if decision.Kind == resolve.DecisionExtend && !existing.HasSource(source) {
		// A new source contributes to an existing table: append its rows
		// under the union of both column sets.
		columns, rows, err = p.extendRows(ctx, name, columns, rows)
		if err != nil {
			return nil, err
		}
	}

	if err := p.tables.Materialize(ctx, name, columns, rows); err != nil {
		return nil, err
	}
	report.TablesWritten++

	pk := resolve.DetectPrimaryKey(name, columns, rows)
	if pk == nil {
		// Non-fatal: the table materializes without a key but cannot be
		// targeted by foreign keys.
		p.logger.Warn("no primary key inferred", "table", name)
	}

	spec := &core.TableSpec{
		Name:        name,
		Columns:     storage.InferColumns(columns, rows),
		PrimaryKey:  pk,
		ForeignKeys: make(map[string]core.ForeignKeyTarget),
		RowCount:    len(rows),
	}
	if existing != nil {
		for column, target := range existing.ForeignKeys {
			spec.ForeignKeys[column] = target
		}
		if !existing.HasSource(source) {
			// Extends keep every contributor's fingerprint. A rebuild by a
			// known source replaces the whole row set, so the other
			// contributors' fingerprints are dropped and their files
			// re-extend on their next ingestion.
			for src, fp := range existing.Sources {
				spec.RecordSource(src, fp)
			}
		}
	}
	spec.RecordSource(source, fingerprint)

	resolved, pending, err := p.resolver.DetectRelationships(ctx, name, columns, rows, state)
	if err != nil {
		return nil, err
	}
	for _, rel := range resolved {
		spec.ForeignKeys[rel.FromColumn] = core.ForeignKeyTarget{Table: rel.ToTable, Column: rel.ToColumn}
		state.AddRelationship(rel)
		state.RemovePending(rel.FromTable, rel.FromColumn)
		report.Resolved++
	}
	for _, pend := range pending {
		state.AddPending(pend)
		report.PendingAdded++
	}

	state.MergeNewTable(spec)

	promoted, err := p.resolver.SweepPending(ctx, spec, state)
	if err != nil {
		return nil, err
	}
	for _, rel := range promoted {
		if origin := state.Table(rel.FromTable); origin != nil {
			if origin.ForeignKeys == nil {
				origin.ForeignKeys = make(map[string]core.ForeignKeyTarget)
			}
			origin.ForeignKeys[rel.FromColumn] = core.ForeignKeyTarget{Table: rel.ToTable, Column: rel.ToColumn}
		}
		report.Resolved++
	}

	return p.splitChunks(block, result, spec), nil
}

// extendRows appends the incoming rows to the already materialized ones,
// aligning both under the union of the two column sets. Cells a side does
// not have are left empty.
func (p *Pipeline) extendRows(ctx context.Context, name string, columns []string, rows [][]string) ([]string, [][]string, error) {
	oldColumns, err := p.tables.Columns(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	oldRows, err := p.tables.Rows(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	union := slices.Clone(oldColumns)
	for _, col := range columns {
		if !slices.Contains(union, col) {
			union = append(union, col)
		}
	}

	combined := make([][]string, 0, len(oldRows)+len(rows))
	combined = append(combined, alignRows(union, oldColumns, oldRows)...)
	combined = append(combined, alignRows(union, columns, rows)...)

	p.logger.Info("extending table",
		"table", name,
		"existing_rows", len(oldRows),
		"new_rows", len(rows),
		"columns", len(union))
	return union, combined, nil
}

// alignRows reorders row cells from their source column order into the
// target order, filling missing columns with empty strings.
func alignRows(target, source []string, rows [][]string) [][]string {
	index := make([]int, len(target))
	for i, col := range target {
		index[i] = slices.Index(source, col)
	}

	aligned := make([][]string, len(rows))
	for r, row := range rows {
		out := make([]string, len(target))
		for i, src := range index {
			if src >= 0 && src < len(row) {
				out[i] = row[src]
			}
		}
		aligned[r] = out
	}
	return aligned
}

// splitChunks turns the long-text columns of a both-destination block into
// corpus chunks pre-linked to their rows. The link carries the highest
// method rank: the row identity is known exactly, so no later linking pass
// may replace it.
func (p *Pipeline) splitChunks(block *core.ContentBlock, result core.ClassificationResult, spec *core.TableSpec) []*core.Chunk {
	if result.Destination != core.DestinationBoth || len(result.LongTextColumns) == 0 {
		return nil
	}

	columns, err := storage.NormalizeColumns(block.Header)
	if err != nil {
		return nil
	}
	keyIdx := -1
	if spec.HasPrimaryKey() {
		keyIdx = slices.Index(columns, *spec.PrimaryKey)
	}

	var chunks []*core.Chunk
	for r, row := range block.Cells {
		for _, col := range result.LongTextColumns {
			if col >= len(row) || strings.TrimSpace(row[col]) == "" {
				continue
			}
			chunk := &core.Chunk{
				Id: core.IDFromContent(fmt.Sprintf("%s|%s|%d|%d|%d",
					block.Locator.FileID, block.Locator.Segment, block.Locator.Index, r, col)),
				SourceFile: block.Locator.FileID,
				Section:    block.SectionContext,
				Content:    row[col],
			}
			if keyIdx >= 0 && keyIdx < len(row) && row[keyIdx] != "" {
				chunk.LinkedTable = spec.Name
				chunk.LinkedIDs = []string{row[keyIdx]}
				chunk.LinkType = core.LinkTypeDescribes
				chunk.Method = core.LinkMethodSplit
			}
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// corpusChunk builds the chunk for an unstructured block. Tables routed to
// the corpus are flattened into readable lines first.
func corpusChunk(block *core.ContentBlock) *core.Chunk {
	content := block.Text
	if block.Kind == core.BlockKindTable {
		content = flattenTable(block)
	}
	if strings.TrimSpace(content) == "" {
		return nil
	}
	return &core.Chunk{
		Id: core.IDFromContent(fmt.Sprintf("%s|%s|%d",
			block.Locator.FileID, block.Locator.Segment, block.Locator.Index)),
		SourceFile: block.Locator.FileID,
		Section:    block.SectionContext,
		Content:    content,
	}
}

// flattenTable renders a table block as one "column: value" line per row.
func flattenTable(block *core.ContentBlock) string {
	var sb strings.Builder
	if block.Name != "" {
		sb.WriteString(block.Name)
		sb.WriteString("\n")
	}
	for _, row := range block.Cells {
		parts := make([]string, 0, len(row))
		for i, cell := range row {
			if cell == "" {
				continue
			}
			if i < len(block.Header) && block.Header[i] != "" {
				parts = append(parts, block.Header[i]+": "+cell)
			} else {
				parts = append(parts, cell)
			}
		}
		if len(parts) > 0 {
			sb.WriteString(strings.Join(parts, ", "))
			sb.WriteString("\n")
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// deriveTableName picks a normalized table name for a structured block:
// the block's own name, then its section heading, then a positional name.
func deriveTableName(block *core.ContentBlock) string {
	if block.Name != "" {
		return storage.NormalizeColumnName(block.Name)
	}
	if block.SectionContext != "" {
		return storage.NormalizeColumnName(block.SectionContext)
	}
	return storage.NormalizeColumnName(fmt.Sprintf("%s_%s_%d",
		block.Locator.FileID, block.Locator.Segment, block.Locator.Index))
}
