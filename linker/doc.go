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


// Package linker cross-references corpus chunks with structured entities.
//
// Four detection methods run in descending confidence order, and the first
// successful one wins outright, with no cumulative scoring:
//
//  1. Explicit identifiers: "Customer 101" style references whose captured
//     identifier is a verified primary key value of a known table.
//  2. Entity names: a display-name column value of a known row appears
//     verbatim in the chunk text.
//  3. Section context: the chunk's heading matches a known table's name.
//  4. Similarity fallback: an external embedding service ranks candidate
//     rows against the chunk text. Consulted only when everything else
//     has failed.
//
// A chunk no method matches stays unlinked with link type "none"; that is
// the expected outcome for much of a real corpus and never an error. Links
// are monotone across re-linking runs: a chunk linked by a higher-ranked
// method keeps that link, and lower-ranked methods are not retried on it.
package linker
