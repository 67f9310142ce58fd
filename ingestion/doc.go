// Package ingestion provides pipeline orchestration for the dual-store
// ingestion run.
//
// The Pipeline type manages the workflow for each source file:
//   - Extracting ordered content blocks
//   - Classifying each block as structured, unstructured, both or discard
//   - Materializing structured blocks into named tables (idempotent rebuild)
//   - Inferring primary keys, foreign keys and pending relationships
//   - Embedding and cross-linking corpus chunks
//   - Checkpointing the ingestion state after every block
//
// Extraction and classification of independent files run concurrently on a
// worker pool. All writes to the shared ingestion state are sequential:
// the state is a single-writer resource and every save is a checkpoint an
// abandoned run can resume from.
//
// Per-block failures are logged and never abort the run. Per-file failures
// abandon that file only, leaving the state at its last saved checkpoint.
package ingestion
