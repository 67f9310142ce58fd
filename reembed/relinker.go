package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/dualstore/core"
	"github.com/poiesic/dualstore/linker"
	"github.com/poiesic/dualstore/storage"
)

// Relinker re-runs cross-reference linking over every corpus chunk, e.g.
// after new tables have been ingested that earlier chunks may reference.
// Linking is monotone: a chunk keeps its link unless a higher-confidence
// method now matches, so a relink pass can only improve the index.
type Relinker struct {
	chunks   storage.ChunkRepository
	states   storage.StateRepository
	linker   *linker.Linker
	config   *Config
	progress io.Writer
	iterator *ChunkIterator
}

// NewRelinker creates a new relinker.
// progress: where to write progress output (typically os.Stderr)
func NewRelinker(chunks storage.ChunkRepository, states storage.StateRepository, chunkLinker *linker.Linker, config *Config, progress io.Writer) *Relinker {
	if config == nil {
		config = DefaultConfig()
	}

	return &Relinker{
		chunks:   chunks,
		states:   states,
		linker:   chunkLinker,
		config:   config,
		progress: progress,
		iterator: NewChunkIterator(chunks, config.BatchSize),
	}
}

// Run executes the relinking pass. The ingestion state is saved once at the
// end; an interrupted pass leaves the previous state intact and can simply
// be re-run.
func (r *Relinker) Run(ctx context.Context) error {
	total, err := r.iterator.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count chunks: %w", err)
	}

	if total == 0 {
		fmt.Fprintf(r.progress, "No chunks found in corpus (0 chunks)\n")
		return nil
	}

	state, err := r.states.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load ingestion state: %w", err)
	}

	fmt.Fprintf(r.progress, "Starting relinking of %d chunks (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	upgraded := 0
	err = r.iterator.ForEach(ctx, func(chunks []*core.Chunk) error {
		var changed []*core.Chunk
		for _, chunk := range chunks {
			before := chunk.Method
			if _, err := r.linker.Link(ctx, chunk, state); err != nil {
				return fmt.Errorf("failed to link chunk %d: %w", chunk.Id, err)
			}
			if chunk.Method != before {
				changed = append(changed, chunk)
			}
		}

		if len(changed) > 0 {
			if _, err := r.chunks.UpdateChunks(ctx, changed...); err != nil {
				return fmt.Errorf("failed to update chunks: %w", err)
			}
			for _, chunk := range changed {
				state.RecordChunk(chunk)
			}
			upgraded += len(changed)
		}

		processed += len(chunks)
		tracker.Update(processed)
		return nil
	})
	if err != nil {
		return err
	}

	if err := r.states.Save(ctx, state); err != nil {
		return fmt.Errorf("failed to save ingestion state: %w", err)
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Relinking complete. Processed %d chunks, upgraded %d links in %v\n",
		total, upgraded, elapsed.Round(time.Second))

	return nil
}
