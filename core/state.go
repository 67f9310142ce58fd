package core

import "slices"

// IngestionState is the project-wide durable aggregate: every table spec,
// resolved and pending relationship, chunk, and the reverse index from
// table rows to the chunks that mention them.
//
// The state is a single-writer resource. It is loaded at the start of a
// run, mutated incrementally, and persisted after each completed unit of
// work; implementations must pass it explicitly, never hold it as a
// process singleton.
type IngestionState struct {
	Tables        map[string]*TableSpec `json:"tables"`
	Relationships []Relationship        `json:"relationships"`
	Pending       []PendingRelationship `json:"pending_relationships"`
	Chunks        map[ID]*Chunk         `json:"chunks"`
	DBToRAG       map[string][]ID       `json:"db_to_rag_index"`
}

// NewIngestionState returns an empty, usable state aggregate.
func NewIngestionState() *IngestionState {
	return &IngestionState{
		Tables:        make(map[string]*TableSpec),
		Relationships: []Relationship{},
		Pending:       []PendingRelationship{},
		Chunks:        make(map[ID]*Chunk),
		DBToRAG:       make(map[string][]ID),
	}
}

// Normalize backfills nil collections after deserialization so callers
// never need nil checks before writing.
func (s *IngestionState) Normalize() {
	if s.Tables == nil {
		s.Tables = make(map[string]*TableSpec)
	}
	if s.Relationships == nil {
		s.Relationships = []Relationship{}
	}
	if s.Pending == nil {
		s.Pending = []PendingRelationship{}
	}
	if s.Chunks == nil {
		s.Chunks = make(map[ID]*Chunk)
	}
	if s.DBToRAG == nil {
		s.DBToRAG = make(map[string][]ID)
	}
}

// Table returns the spec for a table name, or nil if unknown.
func (s *IngestionState) Table(name string) *TableSpec {
	return s.Tables[name]
}

// MergeNewTable records or replaces a table spec under its name.
func (s *IngestionState) MergeNewTable(spec *TableSpec) {
	s.Tables[spec.Name] = spec
}

// AddRelationship appends a resolved relationship, skipping duplicates.
func (s *IngestionState) AddRelationship(rel Relationship) {
	if slices.Contains(s.Relationships, rel) {
		return
	}
	s.Relationships = append(s.Relationships, rel)
}

// AddPending appends a pending relationship, skipping duplicates.
// A (table, column) pair never appears in both Relationships and Pending:
// callers resolve first and only defer on failure.
func (s *IngestionState) AddPending(p PendingRelationship) {
	if slices.Contains(s.Pending, p) {
		return
	}
	s.Pending = append(s.Pending, p)
}

// RemovePending deletes every pending entry for the (table, column) pair.
func (s *IngestionState) RemovePending(table, column string) {
	s.Pending = slices.DeleteFunc(s.Pending, func(p PendingRelationship) bool {
		return p.Table == table && p.Column == column
	})
}

// HasPending reports whether a pending entry exists for (table, column).
func (s *IngestionState) HasPending(table, column string) bool {
	return slices.ContainsFunc(s.Pending, func(p PendingRelationship) bool {
		return p.Table == table && p.Column == column
	})
}

// RecordChunk stores chunk metadata and refreshes the reverse index
// entries for every entity the chunk links to.
func (s *IngestionState) RecordChunk(chunk *Chunk) {
	if prev, ok := s.Chunks[chunk.Id]; ok {
		s.unindexChunk(prev)
	}
	s.Chunks[chunk.Id] = chunk
	s.indexChunk(chunk)
}

// DropChunk removes a chunk and its reverse index entries.
func (s *IngestionState) DropChunk(id ID) {
	chunk, ok := s.Chunks[id]
	if !ok {
		return
	}
	s.unindexChunk(chunk)
	delete(s.Chunks, id)
}

// ChunksForEntity returns the ids of chunks linked to "{table}.{id}".
func (s *IngestionState) ChunksForEntity(table, rowID string) []ID {
	return s.DBToRAG[EntityKey(table, rowID)]
}

// SourceChunkIDs returns the ids of all chunks owned by a source file.
func (s *IngestionState) SourceChunkIDs(sourceFile string) []ID {
	var ids []ID
	for id, chunk := range s.Chunks {
		if chunk.SourceFile == sourceFile {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func (s *IngestionState) indexChunk(chunk *Chunk) {
	if !chunk.Linked() || chunk.LinkedTable == "" {
		return
	}
	for _, entityID := range chunk.LinkedIDs {
		key := EntityKey(chunk.LinkedTable, entityID)
		if !slices.Contains(s.DBToRAG[key], chunk.Id) {
			s.DBToRAG[key] = append(s.DBToRAG[key], chunk.Id)
		}
	}
}

func (s *IngestionState) unindexChunk(chunk *Chunk) {
	if chunk.LinkedTable == "" {
		return
	}
	for _, entityID := range chunk.LinkedIDs {
		key := EntityKey(chunk.LinkedTable, entityID)
		remaining := slices.DeleteFunc(s.DBToRAG[key], func(id ID) bool {
			return id == chunk.Id
		})
		if len(remaining) == 0 {
			delete(s.DBToRAG, key)
		} else {
			s.DBToRAG[key] = remaining
		}
	}
}
