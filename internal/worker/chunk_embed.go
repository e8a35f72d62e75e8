package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/devschro/next-precedent/internal/blob"
	"github.com/devschro/next-precedent/internal/chunker"
	"github.com/devschro/next-precedent/internal/domain"
	"github.com/devschro/next-precedent/internal/generation"
	"github.com/devschro/next-precedent/internal/platform/logger"
	"github.com/devschro/next-precedent/internal/store"
)

// chunkEmbedPayload is the kind-specific payload for chunk_embed jobs.
type chunkEmbedPayload struct {
	StoragePath string `json:"storage_path"`
}

// ChunkWriter persists a document's chunk rows. The production
// implementation writes the whole batch in a single transaction.
type ChunkWriter interface {
	UpsertBatch(ctx context.Context, chunks []*domain.DocumentChunk) error
}

// ChunkEmbedHandler processes chunk_embed jobs: it resolves the document
// row, downloads the file text, splits it into overlapping windows, embeds
// each window, and upserts the chunks as one batch. Re-running the handler
// for the same document overwrites chunks in place rather than duplicating
// them.
type ChunkEmbedHandler struct {
	documents   store.DocumentStore
	chunks      ChunkWriter
	blobs       blob.Reader
	embedder    generation.Embedder
	maxChars    int
	overlap     int
	callTimeout time.Duration
	logger      *slog.Logger
}

// ChunkEmbedConfig carries the windowing and timeout settings for the handler.
type ChunkEmbedConfig struct {
	MaxChars    int
	Overlap     int
	CallTimeout time.Duration
}

// NewChunkEmbedHandler creates a chunk_embed handler with the given dependencies.
func NewChunkEmbedHandler(
	documents store.DocumentStore,
	chunks ChunkWriter,
	blobs blob.Reader,
	embedder generation.Embedder,
	cfg ChunkEmbedConfig,
	log *slog.Logger,
) *ChunkEmbedHandler {
	if documents == nil {
		panic("documents cannot be nil")
	}

	if chunks == nil {
		panic("chunks cannot be nil")
	}

	if blobs == nil {
		panic("blobs cannot be nil")
	}

	if embedder == nil {
		panic("embedder cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &ChunkEmbedHandler{
		documents:   documents,
		chunks:      chunks,
		blobs:       blobs,
		embedder:    embedder,
		maxChars:    cfg.MaxChars,
		overlap:     cfg.Overlap,
		callTimeout: cfg.CallTimeout,
		logger:      log.With(slog.String("component", "chunk_embed_handler")),
	}
}

// Handle implements Handler.
func (h *ChunkEmbedHandler) Handle(ctx context.Context, job *domain.Job) error {
	log := logger.FromContextOrDefault(ctx, h.logger)

	if job.CaseID == nil {
		return Permanentf("chunk_embed job %s has no case_id", job.ID)
	}

	var payload chunkEmbedPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return Permanentf("chunk_embed job %s has malformed payload: %v", job.ID, err)
	}

	if payload.StoragePath == "" {
		return Permanentf("chunk_embed job %s is missing storage_path", job.ID)
	}

	doc, err := h.documents.GetByStoragePath(ctx, job.OrgID, *job.CaseID, payload.StoragePath)
	if err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			return Permanent(fmt.Errorf("resolve document for %q: %w", payload.StoragePath, err))
		}
		return fmt.Errorf("resolve document for %q: %w", payload.StoragePath, err)
	}

	data, err := h.download(ctx, payload.StoragePath)
	if err != nil {
		if errors.Is(err, blob.ErrObjectNotFound) {
			return Permanent(err)
		}
		return err
	}

	windows, err := chunker.Split(string(data), h.maxChars, h.overlap)
	if err != nil {
		return Permanent(fmt.Errorf("chunking configuration rejected: %w", err))
	}

	chunks := make([]*domain.DocumentChunk, 0, len(windows))
	for i, window := range windows {
		embedding, err := h.embed(ctx, window)
		if err != nil {
			return fmt.Errorf("embed chunk %d of document %s: %w", i, doc.ID, err)
		}

		chunk, err := domain.NewDocumentChunk(job.OrgID, doc.ID, i, window, embedding)
		if err != nil {
			return Permanent(fmt.Errorf("construct chunk %d: %w", i, err))
		}

		chunks = append(chunks, chunk)
	}

	if err := h.chunks.UpsertBatch(ctx, chunks); err != nil {
		return fmt.Errorf("persist %d chunks of document %s: %w", len(chunks), doc.ID, err)
	}

	log.Info("document chunked and embedded",
		slog.String("job_id", job.ID.String()),
		slog.String("document_id", doc.ID.String()),
		slog.Int("chunks", len(windows)))
	return nil
}

func (h *ChunkEmbedHandler) download(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := h.withCallTimeout(ctx)
	defer cancel()
	return h.blobs.Download(ctx, path)
}

func (h *ChunkEmbedHandler) embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := h.withCallTimeout(ctx)
	defer cancel()
	return h.embedder.EmbedText(ctx, text)
}

func (h *ChunkEmbedHandler) withCallTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.callTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, h.callTimeout)
}
