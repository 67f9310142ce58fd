// Package extract defines the extractor collaborator that turns source files
// into ordered content blocks for classification.
//
// The pipeline consumes the Extractor interface only. DocumentExtractor is
// the bundled implementation over in-memory documents; adapters for concrete
// file formats (spreadsheets, office documents) implement the same interface
// and can be swapped in without touching the pipeline.
package extract
