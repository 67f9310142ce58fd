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


// Package storage provides the storage abstraction layer for dualstore.
//
// This package defines repository interfaces that decouple storage
// implementation from pipeline logic: the structured table store, the
// chunk corpus, and the persisted ingestion state. It also owns the
// writer-side rules shared by every backend: column-name normalization,
// column type inference, and the serialization formats.
//
// # Constructor Return Type Pattern
//
// Public backend constructors return these interfaces to enforce
// abstraction and keep backends swappable:
//
//	tables, err := badger.NewTableRepository(backend)  // storage.TableRepository
//
// Internal constructors may return concrete types since they are only
// used within the implementation package.
//
// # Serialization
//
// Table rows and chunk records are stored as compact MUS-encoded binary
// values. The ingestion state is one JSON document per project whose
// field names (tables, relationships, pending_relationships, chunks,
// db_to_rag_index) are a durable contract read by external tooling;
// changing them is a breaking change.
//
// # Thread Safety
//
// All repository implementations must be thread-safe. The state
// repository additionally serializes Save calls: the persisted state is
// a single-writer resource.
package storage
