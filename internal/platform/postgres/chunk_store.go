package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/devschro/next-precedent/internal/domain"
	"github.com/devschro/next-precedent/internal/platform/logger"
	"github.com/devschro/next-precedent/internal/store"
)

// PostgresChunkStore implements the store.ChunkStore interface using a
// PostgreSQL database with the pgvector extension as the storage backend.
type PostgresChunkStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresChunkStore creates a new PostgreSQL implementation of the ChunkStore interface.
func NewPostgresChunkStore(db store.DBTX, logger *slog.Logger) *PostgresChunkStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresChunkStore{
		db:     db,
		logger: logger.With(slog.String("component", "chunk_store")),
	}
}

// Ensure PostgresChunkStore implements store.ChunkStore interface
var _ store.ChunkStore = (*PostgresChunkStore)(nil)

// Upsert implements store.ChunkStore.Upsert
// The ON CONFLICT clause makes re-chunking a document idempotent: a retried
// job overwrites the row at the same (document_id, chunk_index) rather than
// accumulating duplicates.
func (s *PostgresChunkStore) Upsert(ctx context.Context, chunk *domain.DocumentChunk) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := chunk.Validate(); err != nil {
		log.Warn("chunk validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("document_id", chunk.DocumentID.String()),
			slog.Int("chunk_index", chunk.ChunkIndex))
		return err
	}

	query := `
		INSERT INTO document_chunks (id, org_id, document_id, chunk_index, text, embedding)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (document_id, chunk_index)
		DO UPDATE SET text = EXCLUDED.text, embedding = EXCLUDED.embedding
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		chunk.ID,
		chunk.OrgID,
		chunk.DocumentID,
		chunk.ChunkIndex,
		chunk.Text,
		pgvector.NewVector(chunk.Embedding),
	)
	if err != nil {
		log.Error("failed to upsert chunk",
			slog.String("error", err.Error()),
			slog.String("document_id", chunk.DocumentID.String()),
			slog.Int("chunk_index", chunk.ChunkIndex))
		return MapError(err)
	}

	return nil
}

// SearchSimilar implements store.ChunkStore.SearchSimilar
// Cosine distance (<=>) orders ascending; similarity is reported as
// 1 - distance so callers see the conventional higher-is-closer score.
func (s *PostgresChunkStore) SearchSimilar(
	ctx context.Context,
	caseID uuid.UUID,
	embedding []float32,
	limit int,
) ([]domain.ChunkMatch, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT dc.text, 1 - (dc.embedding <=> $1) AS similarity
		FROM document_chunks dc
		JOIN documents d ON d.id = dc.document_id
		WHERE d.case_id = $2
		ORDER BY dc.embedding <=> $1
		LIMIT $3
	`

	rows, err := s.db.QueryContext(ctx, query, pgvector.NewVector(embedding), caseID, limit)
	if err != nil {
		log.Error("failed to search similar chunks",
			slog.String("error", err.Error()),
			slog.String("case_id", caseID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var matches []domain.ChunkMatch
	for rows.Next() {
		var m domain.ChunkMatch
		if err := rows.Scan(&m.Text, &m.Similarity); err != nil {
			log.Error("failed to scan chunk match row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating chunk match rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	log.Debug("similarity search complete",
		slog.String("case_id", caseID.String()),
		slog.Int("matches", len(matches)))
	return matches, nil
}

// ListByOrg implements store.ChunkStore.ListByOrg
func (s *PostgresChunkStore) ListByOrg(ctx context.Context, orgID uuid.UUID, limit int) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT text FROM document_chunks WHERE org_id = $1 LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, orgID, limit)
	if err != nil {
		log.Error("failed to list chunks by org",
			slog.String("error", err.Error()),
			slog.String("org_id", orgID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			log.Error("failed to scan chunk text row",
				slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		texts = append(texts, text)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating chunk text rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return texts, nil
}

// WithTx implements store.ChunkStore.WithTx
func (s *PostgresChunkStore) WithTx(tx *sql.Tx) store.ChunkStore {
	return &PostgresChunkStore{
		db:     tx,
		logger: s.logger,
	}
}
