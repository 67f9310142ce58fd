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

import "errors"

// Domain validation errors
var (
	// ErrInvalidBlock indicates a ContentBlock failed validation.
	ErrInvalidBlock = errors.New("invalid content block")

	// ErrEmptyBlock indicates a block carries neither cells nor text.
	ErrEmptyBlock = errors.New("block has no content")

	// ErrInvalidBlockKind indicates an unrecognized BlockKind value.
	ErrInvalidBlockKind = errors.New("invalid block kind")

	// ErrRaggedRows indicates a table block whose rows have differing widths.
	ErrRaggedRows = errors.New("table rows have inconsistent widths")

	// ErrInvalidTableSpec indicates a TableSpec failed validation.
	ErrInvalidTableSpec = errors.New("invalid table spec")

	// ErrEmptyTableName indicates a TableSpec with no name.
	ErrEmptyTableName = errors.New("table name cannot be empty")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrEmptyChunkContent indicates a Chunk with empty contents.
	ErrEmptyChunkContent = errors.New("chunk content cannot be empty")

	// ErrInvalidLinkType indicates an unrecognized LinkType value.
	ErrInvalidLinkType = errors.New("invalid link type")

	// ErrLinkWithoutTable indicates a linked chunk missing its table name.
	ErrLinkWithoutTable = errors.New("linked chunk requires a table name")
)
