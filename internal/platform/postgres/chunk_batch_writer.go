package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/devschro/next-precedent/internal/domain"
	"github.com/devschro/next-precedent/internal/store"
)

// ChunkBatchWriter persists a document's chunk rows in a single
// transaction, so a failed run never leaves a partially rewritten chunk
// set behind for the retry to race against.
type ChunkBatchWriter struct {
	db     *sql.DB
	chunks *PostgresChunkStore
}

// NewChunkBatchWriter creates a transactional writer over the given chunk store.
func NewChunkBatchWriter(db *sql.DB, chunks *PostgresChunkStore) *ChunkBatchWriter {
	if db == nil {
		panic("db cannot be nil")
	}

	if chunks == nil {
		panic("chunks cannot be nil")
	}

	return &ChunkBatchWriter{db: db, chunks: chunks}
}

// UpsertBatch writes all chunks inside one transaction, rolling back on
// the first failure.
func (w *ChunkBatchWriter) UpsertBatch(ctx context.Context, chunks []*domain.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	return store.RunInTransaction(ctx, w.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := w.chunks.WithTx(tx)
		for _, chunk := range chunks {
			if err := txStore.Upsert(ctx, chunk); err != nil {
				return fmt.Errorf("upsert chunk %d: %w", chunk.ChunkIndex, err)
			}
		}
		return nil
	})
}
