package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/dualstore/ai"
	"github.com/poiesic/dualstore/classify"
	"github.com/poiesic/dualstore/core"
	"github.com/poiesic/dualstore/extract"
	"github.com/poiesic/dualstore/linker"
	"github.com/poiesic/dualstore/resolve"
	"github.com/poiesic/dualstore/storage"
)

// Pipeline orchestrates one ingestion run: extraction, classification,
// dual-store materialization, relationship resolution, cross-reference
// linking and state checkpointing.
//
// Extraction and classification of independent files run concurrently on a
// worker pool; everything that touches the shared ingestion state runs
// sequentially, one block at a time, with a save after each block.
type Pipeline struct {
	extractor  extract.Extractor
	classifier *classify.Classifier
	resolver   *resolve.Resolver
	linker     *linker.Linker
	tables     storage.TableRepository
	chunks     storage.ChunkRepository
	states     storage.StateRepository
	embedder   ai.Embedder
	classPool  *ants.Pool
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent classification.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.classPool != nil {
			p.classPool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.classPool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "pipeline")
		return nil
	}
}

// WithClassifier replaces the default classifier, e.g. to tune thresholds.
func WithClassifier(classifier *classify.Classifier) Option {
	return func(p *Pipeline) error {
		if classifier != nil {
			p.classifier = classifier
		}
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	extractor extract.Extractor,
	tables storage.TableRepository,
	chunks storage.ChunkRepository,
	states storage.StateRepository,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if tables == nil {
		return nil, ErrTableRepositoryRequired
	}
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if states == nil {
		return nil, ErrStateRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		extractor: extractor,
		tables:    tables,
		chunks:    chunks,
		states:    states,
		embedder:  provider.Embedder(),
		classPool: pool,
		logger:    slog.Default().With("component", "pipeline"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	if p.classifier == nil {
		classifier, err := classify.New(classify.WithLogger(p.logger))
		if err != nil {
			p.Release()
			return nil, err
		}
		p.classifier = classifier
	}

	// The resolver value-matches FK candidates against materialized tables.
	resolver, err := resolve.New(tables, resolve.WithLogger(p.logger))
	if err != nil {
		p.Release()
		return nil, err
	}
	p.resolver = resolver

	chunkLinker, err := linker.New(tables, provider.SimilarityLinker(), linker.WithLogger(p.logger))
	if err != nil {
		p.Release()
		return nil, err
	}
	p.linker = chunkLinker

	return p, nil
}

// Report summarizes one ingestion run.
type Report struct {
	FilesProcessed int
	FilesFailed    int
	TablesWritten  int
	ChunksWritten  int
	BlocksFailed   int
	BlocksSkipped  int // unchanged sources detected by fingerprint
	Resolved       int // relationships resolved, including promoted pendings
	PendingAdded   int
}

// classifiedFile is the output of the concurrent stage: one file's blocks
// in document order, each paired with its classification.
type classifiedFile struct {
	doc     *extract.Document
	blocks  []core.ContentBlock
	results []core.ClassificationResult
	err     error
}

// IngestFiles runs the full pipeline over the given documents. Per-block
// failures are logged and counted but never abort the run; a per-file
// failure abandons that file, leaving the state at its last saved
// checkpoint, and the run continues with the next file.
func (p *Pipeline) IngestFiles(ctx context.Context, docs ...*extract.Document) (*Report, error) {
	classified := make([]*classifiedFile, len(docs))

	var wg sync.WaitGroup
	for i, doc := range docs {
		wg.Add(1)
		cf := &classifiedFile{doc: doc}
		classified[i] = cf
		submitErr := p.classPool.Submit(func() {
			defer wg.Done()
			cf.blocks, cf.err = p.extractor.Extract(ctx, cf.doc)
			if cf.err != nil {
				return
			}
			cf.results = make([]core.ClassificationResult, len(cf.blocks))
			for j := range cf.blocks {
				cf.results[j] = p.classifier.Classify(&cf.blocks[j])
			}
		})
		if submitErr != nil {
			wg.Done()
			cf.err = submitErr
		}
	}
	wg.Wait()

	state, err := p.states.Load(ctx)
	if err != nil {
		// State corruption is fatal to the whole run; silently starting
		// over would lose everything previous runs built.
		return nil, err
	}

	report := &Report{}
	for _, cf := range classified {
		if cf.err != nil {
			p.logger.Error("file extraction failed", "file", fileID(cf.doc), "err", cf.err)
			report.FilesFailed++
			continue
		}
		if err := p.processFile(ctx, state, cf, report); err != nil {
			p.logger.Error("file processing aborted", "file", cf.doc.FileID, "err", err)
			report.FilesFailed++
			continue
		}
		report.FilesProcessed++
	}

	p.logger.Info("ingestion run complete",
		"files", report.FilesProcessed,
		"failed_files", report.FilesFailed,
		"tables", report.TablesWritten,
		"chunks", report.ChunksWritten,
		"failed_blocks", report.BlocksFailed)
	return report, nil
}

func fileID(doc *extract.Document) string {
	if doc == nil {
		return ""
	}
	return doc.FileID
}

// processFile materializes one file's blocks in document order, then embeds,
// links and stores its corpus chunks as a single idempotent replacement.
func (p *Pipeline) processFile(ctx context.Context, state *core.IngestionState, cf *classifiedFile, report *Report) error {
	var drafts []*core.Chunk

	for i := range cf.blocks {
		block := &cf.blocks[i]
		result := cf.results[i]

		switch result.Destination {
		case core.DestinationDiscard:
			continue

		case core.DestinationUnstructured:
			if chunk := corpusChunk(block); chunk != nil {
				drafts = append(drafts, chunk)
			}

		case core.DestinationStructured, core.DestinationBoth:
			split, err := p.materializeBlock(ctx, state, block, result, report)
			if err != nil {
				p.logger.Error("block materialization failed",
					"file", block.Locator.FileID,
					"segment", block.Locator.Segment,
					"index", block.Locator.Index,
					"err", err)
				report.BlocksFailed++
				continue
			}
			drafts = append(drafts, split...)

			// Checkpoint after every materialized block so an abandoned run
			// loses at most one block of work.
			if err := p.states.Save(ctx, state); err != nil {
				return err
			}
		}
	}

	return p.storeChunks(ctx, state, cf.doc.FileID, drafts, report)
}

// storeChunks embeds, links and persists a file's chunks, replacing whatever
// the file produced on a previous run, then records them in the state.
func (p *Pipeline) storeChunks(ctx context.Context, state *core.IngestionState, sourceFile string, drafts []*core.Chunk, report *Report) error {
	previous := state.SourceChunkIDs(sourceFile)
	if len(drafts) == 0 && len(previous) == 0 {
		return nil
	}

	if len(drafts) > 0 {
		texts := make([]string, len(drafts))
		for i, chunk := range drafts {
			texts[i] = chunk.Content
		}
		vectors, err := p.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return err
		}
		for i, chunk := range drafts {
			if i < len(vectors) {
				chunk.Vector = vectors[i]
			}
		}

		for _, chunk := range drafts {
			// An unchanged chunk keeps the link its previous run earned;
			// re-linking may upgrade it but never downgrade it.
			if prev := state.Chunks[chunk.Id]; prev != nil && prev.Content == chunk.Content && prev.Method > chunk.Method {
				chunk.LinkedTable = prev.LinkedTable
				chunk.LinkedIDs = prev.LinkedIDs
				chunk.LinkType = prev.LinkType
				chunk.Method = prev.Method
			}
			if _, err := p.linker.Link(ctx, chunk, state); err != nil {
				return err
			}
		}
	}

	stored, err := p.chunks.ReplaceSource(ctx, sourceFile, drafts)
	if err != nil {
		return err
	}

	kept := make(map[core.ID]bool, len(stored))
	for _, chunk := range stored {
		kept[chunk.Id] = true
		state.RecordChunk(chunk)
	}
	for _, id := range previous {
		if !kept[id] {
			state.DropChunk(id)
		}
	}
	report.ChunksWritten += len(stored)

	return p.states.Save(ctx, state)
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.classPool != nil {
		p.classPool.Release()
	}
}
