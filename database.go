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


package dualstore

import (
	"io"
	"log/slog"

	"github.com/poiesic/dualstore/ai"
	"github.com/poiesic/dualstore/ai/openai"
	"github.com/poiesic/dualstore/extract"
	"github.com/poiesic/dualstore/ingestion"
	"github.com/poiesic/dualstore/linker"
	"github.com/poiesic/dualstore/reembed"
	"github.com/poiesic/dualstore/search"
	"github.com/poiesic/dualstore/storage"
	"github.com/poiesic/dualstore/storage/badger"
)

// Database is one project's dual store: the structured tables, the corpus
// and the ingestion state, sharing a single storage backend, plus the AI
// provider the pipeline and searcher depend on.
type Database struct {
	backend   *badger.Backend
	tableRepo storage.TableRepository
	chunkRepo storage.ChunkRepository
	stateRepo storage.StateRepository
	provider  ai.Provider
	logger    *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
}

// WithAIConfig sets the configuration for the OpenAI-compatible provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider injects a pre-built AI provider instead of constructing the
// OpenAI-compatible one, e.g. the mock provider in tests.
func WithProvider(provider ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// NewDatabase opens (or creates) a project database at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	tableRepo, err := badger.NewTableRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		tableRepo.Close()
		backend.Close()
		return nil, err
	}

	stateRepo, err := badger.NewStateRepository(backend)
	if err != nil {
		chunkRepo.Close()
		tableRepo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			stateRepo.Close()
			chunkRepo.Close()
			tableRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:   backend,
		tableRepo: tableRepo,
		chunkRepo: chunkRepo,
		stateRepo: stateRepo,
		provider:  provider,
		logger:    slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.stateRepo.Close(); err != nil {
		db.logger.Error("error closing state repository", "err", err)
		return err
	}
	if err := db.chunkRepo.Close(); err != nil {
		db.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := db.tableRepo.Close(); err != nil {
		db.logger.Error("error closing table repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) TableRepository() storage.TableRepository {
	return db.tableRepo
}

func (db *Database) ChunkRepository() storage.ChunkRepository {
	return db.chunkRepo
}

func (db *Database) StateRepository() storage.StateRepository {
	return db.stateRepo
}

// NewIngestionPipeline builds a pipeline over this database's stores using
// the bundled in-memory document extractor.
func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return db.NewIngestionPipelineWithExtractor(extract.NewDocumentExtractor(), opts...)
}

// NewIngestionPipelineWithExtractor builds a pipeline with a custom extractor,
// e.g. an adapter for a concrete file format.
func (db *Database) NewIngestionPipelineWithExtractor(extractor extract.Extractor, opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(extractor, db.tableRepo, db.chunkRepo, db.stateRepo, db.provider, opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.chunkRepo, db.stateRepo, db.tableRepo, db.provider, opts...)
}

// NewReembedder builds the maintenance pass that regenerates every chunk's
// embedding vector, reporting progress to the given writer.
func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(db.chunkRepo, db.provider.Embedder(), config, progress)
}

// NewRelinker builds the maintenance pass that re-runs cross-reference
// linking over every chunk, reporting progress to the given writer.
func (db *Database) NewRelinker(config *reembed.Config, progress io.Writer) (*reembed.Relinker, error) {
	chunkLinker, err := linker.New(db.tableRepo, db.provider.SimilarityLinker())
	if err != nil {
		return nil, err
	}
	return reembed.NewRelinker(db.chunkRepo, db.stateRepo, chunkLinker, config, progress), nil
}
