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


package storage

import (
	"encoding/json"
	"fmt"

	"github.com/poiesic/dualstore/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, IDMUS.Size(id))
	IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := IDMUS.Unmarshal(data)
	return id, err
}

// MarshalRow serializes a table row to bytes.
func MarshalRow(row []string) []byte {
	buf := make([]byte, RowMUS.Size(row))
	RowMUS.Marshal(row, buf)
	return buf
}

// UnmarshalRow deserializes a table row from bytes.
func UnmarshalRow(data []byte) ([]string, error) {
	row, _, err := RowMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// MarshalChunkRecord serializes a full chunk record to bytes.
func MarshalChunkRecord(chunk *core.Chunk) []byte {
	buf := make([]byte, ChunkMUS.Size(*chunk))
	ChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunkRecord deserializes a full chunk record from bytes.
func UnmarshalChunkRecord(data []byte) (*core.Chunk, error) {
	chunk, _, err := ChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// MarshalState serializes the ingestion state document. The document is
// JSON with the field names other tooling depends on: tables,
// relationships, pending_relationships, chunks, db_to_rag_index.
func MarshalState(state *core.IngestionState) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalState deserializes the ingestion state document. A document
// that fails to parse is reported as ErrStateCorruption; callers must
// not recover by starting from an empty state.
func UnmarshalState(data []byte) (*core.IngestionState, error) {
	state := core.NewIngestionState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStateCorruption, err)
	}
	state.Normalize()
	return state, nil
}
