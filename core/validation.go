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


package core

import "fmt"

// ValidateContentBlock validates a ContentBlock according to domain rules.
//
// Validation rules:
//   - Kind must be table or paragraph
//   - Table blocks must carry a header and rectangular rows
//   - Paragraph blocks must carry text
//
// NOT validated:
//   - SectionContext (headings are optional)
//   - Merges (absent merges simply mean a flat grid)
func ValidateContentBlock(block *ContentBlock) error {
	if block == nil {
		return fmt.Errorf("%w: block is nil", ErrInvalidBlock)
	}

	switch block.Kind {
	case BlockKindTable:
		if len(block.Header) == 0 && len(block.Cells) == 0 {
			return fmt.Errorf("%w: %w", ErrInvalidBlock, ErrEmptyBlock)
		}
		width := len(block.Header)
		for _, row := range block.Cells {
			if len(row) != width {
				return fmt.Errorf("%w: %w", ErrInvalidBlock, ErrRaggedRows)
			}
		}
	case BlockKindParagraph:
		if block.Text == "" {
			return fmt.Errorf("%w: %w", ErrInvalidBlock, ErrEmptyBlock)
		}
	default:
		return fmt.Errorf("%w: %w: value %d", ErrInvalidBlock, ErrInvalidBlockKind, block.Kind)
	}

	return nil
}

// ValidateTableSpec validates a TableSpec according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - PrimaryKey, if set, must name a known column
//   - Every foreign-key column must name a known column
//
// NOT validated (populated during materialization and resolution):
//   - RowCount, Sources
//   - ForeignKeys targets (checked against state by the resolver)
func ValidateTableSpec(spec *TableSpec) error {
	if spec == nil {
		return fmt.Errorf("%w: spec is nil", ErrInvalidTableSpec)
	}

	if spec.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTableSpec, ErrEmptyTableName)
	}

	if spec.PrimaryKey != nil {
		if _, ok := spec.Columns[*spec.PrimaryKey]; !ok {
			return fmt.Errorf("%w: primary key %q is not a column", ErrInvalidTableSpec, *spec.PrimaryKey)
		}
	}

	for column := range spec.ForeignKeys {
		if _, ok := spec.Columns[column]; !ok {
			return fmt.Errorf("%w: foreign key column %q is not a column", ErrInvalidTableSpec, column)
		}
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - LinkType must be a recognized value
//   - A linked chunk must name its table
//
// NOT validated (populated by processors):
//   - Vector (can be empty until embedded)
//   - Method (unlinked chunks carry LinkMethodUnlinked)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyChunkContent)
	}

	if err := ValidateLinkType(chunk.LinkType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, err)
	}

	if chunk.Linked() && chunk.LinkedTable == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrLinkWithoutTable)
	}

	return nil
}

// ValidateLinkType validates that a LinkType holds a recognized value.
// The empty string is accepted and treated as LinkTypeNone.
func ValidateLinkType(lt LinkType) error {
	switch lt {
	case "", LinkTypeNone, LinkTypeDescribes, LinkTypeSummarizes, LinkTypeReferences, LinkTypeContextualizes:
		return nil
	default:
		return fmt.Errorf("%w: value %q", ErrInvalidLinkType, lt)
	}
}
