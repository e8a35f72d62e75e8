package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/devschro/next-precedent/internal/domain"
)

// ChunkStore defines the interface for document chunk persistence and
// similarity search.
type ChunkStore interface {
	// Upsert saves a chunk, overwriting any existing row with the same
	// (document_id, chunk_index). Re-running chunking for a document must
	// never produce duplicate indices, so the insert is idempotent by key.
	Upsert(ctx context.Context, chunk *domain.DocumentChunk) error

	// SearchSimilar returns up to limit chunks belonging to the given case,
	// ordered by descending cosine similarity to the query embedding.
	SearchSimilar(ctx context.Context, caseID uuid.UUID, embedding []float32, limit int) ([]domain.ChunkMatch, error)

	// ListByOrg returns up to limit chunk texts scoped only by org, with no
	// ranking. This backs the retrieval fallback path and is an explicit
	// relevance/isolation downgrade relative to SearchSimilar.
	ListByOrg(ctx context.Context, orgID uuid.UUID, limit int) ([]string, error)

	// WithTx returns a new ChunkStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ChunkStore
}
