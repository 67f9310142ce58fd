package core

import (
	"errors"
	"testing"
)

func TestValidateContentBlock(t *testing.T) {
	tests := []struct {
		name    string
		block   *ContentBlock
		wantErr error
	}{
		{
			name:    "nil block",
			block:   nil,
			wantErr: ErrInvalidBlock,
		},
		{
			name: "valid table",
			block: &ContentBlock{
				Kind:   BlockKindTable,
				Header: []string{"id", "name"},
				Cells:  [][]string{{"1", "Alice"}},
			},
			wantErr: nil,
		},
		{
			name:    "empty table",
			block:   &ContentBlock{Kind: BlockKindTable},
			wantErr: ErrEmptyBlock,
		},
		{
			name: "ragged rows",
			block: &ContentBlock{
				Kind:   BlockKindTable,
				Header: []string{"id", "name"},
				Cells:  [][]string{{"1"}},
			},
			wantErr: ErrRaggedRows,
		},
		{
			name:    "valid paragraph",
			block:   &ContentBlock{Kind: BlockKindParagraph, Text: "Some prose."},
			wantErr: nil,
		},
		{
			name:    "empty paragraph",
			block:   &ContentBlock{Kind: BlockKindParagraph},
			wantErr: ErrEmptyBlock,
		},
		{
			name:    "unknown kind",
			block:   &ContentBlock{Kind: BlockKind(99), Text: "x"},
			wantErr: ErrInvalidBlockKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContentBlock(tt.block)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTableSpec(t *testing.T) {
	pk := "id"
	badPK := "missing"

	tests := []struct {
		name    string
		spec    *TableSpec
		wantErr error
	}{
		{name: "nil spec", spec: nil, wantErr: ErrInvalidTableSpec},
		{
			name: "valid",
			spec: &TableSpec{
				Name:       "customers",
				Columns:    map[string]ColumnType{"id": ColumnTypeInteger},
				PrimaryKey: &pk,
			},
		},
		{
			name:    "empty name",
			spec:    &TableSpec{},
			wantErr: ErrEmptyTableName,
		},
		{
			name: "primary key not a column",
			spec: &TableSpec{
				Name:       "customers",
				Columns:    map[string]ColumnType{"id": ColumnTypeInteger},
				PrimaryKey: &badPK,
			},
			wantErr: ErrInvalidTableSpec,
		},
		{
			name: "foreign key not a column",
			spec: &TableSpec{
				Name:        "orders",
				Columns:     map[string]ColumnType{"id": ColumnTypeInteger},
				ForeignKeys: map[string]ForeignKeyTarget{"customer_id": {Table: "customers", Column: "id"}},
			},
			wantErr: ErrInvalidTableSpec,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTableSpec(tt.spec)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateChunk(t *testing.T) {
	tests := []struct {
		name    string
		chunk   *Chunk
		wantErr error
	}{
		{name: "nil chunk", chunk: nil, wantErr: ErrInvalidChunk},
		{
			name:  "valid unlinked",
			chunk: &Chunk{Id: 1, Content: "prose", LinkType: LinkTypeNone},
		},
		{
			name: "valid linked",
			chunk: &Chunk{
				Id: 2, Content: "Customer 101", LinkedTable: "customers",
				LinkedIDs: []string{"101"}, LinkType: LinkTypeDescribes,
			},
		},
		{
			name:    "empty content",
			chunk:   &Chunk{Id: 3},
			wantErr: ErrEmptyChunkContent,
		},
		{
			name:    "bad link type",
			chunk:   &Chunk{Id: 4, Content: "x", LinkType: LinkType("related")},
			wantErr: ErrInvalidLinkType,
		},
		{
			name:    "linked without table",
			chunk:   &Chunk{Id: 5, Content: "x", LinkType: LinkTypeReferences},
			wantErr: ErrLinkWithoutTable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunk(tt.chunk)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
