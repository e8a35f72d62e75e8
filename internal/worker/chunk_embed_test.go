package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devschro/next-precedent/internal/blob"
	"github.com/devschro/next-precedent/internal/domain"
	"github.com/devschro/next-precedent/internal/store"
)

type fakeDocumentStore struct {
	doc *domain.Document
}

func (f *fakeDocumentStore) GetByStoragePath(
	ctx context.Context,
	orgID, caseID uuid.UUID,
	storagePath string,
) (*domain.Document, error) {
	if f.doc != nil && f.doc.StoragePath == storagePath {
		return f.doc, nil
	}
	return nil, store.ErrDocumentNotFound
}

func (f *fakeDocumentStore) WithTx(tx *sql.Tx) store.DocumentStore { return f }

// chunkRecorder keys upserts by (document_id, chunk_index) like the real table.
type chunkRecorder struct {
	rows      map[string]*domain.DocumentChunk
	upserts   int
	batches   int
	upsertErr error
}

func newChunkRecorder() *chunkRecorder {
	return &chunkRecorder{rows: make(map[string]*domain.DocumentChunk)}
}

func (f *chunkRecorder) UpsertBatch(ctx context.Context, chunks []*domain.DocumentChunk) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.batches++
	for _, chunk := range chunks {
		f.upserts++
		f.rows[fmt.Sprintf("%s/%d", chunk.DocumentID, chunk.ChunkIndex)] = chunk
	}
	return nil
}

type fakeBlobReader struct {
	objects map[string][]byte
	err     error
}

func (f *fakeBlobReader) Download(ctx context.Context, path string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	if data, ok := f.objects[path]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s", blob.ErrObjectNotFound, path)
}

type stubEmbedder struct {
	err   error
	calls int
}

func (f *stubEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func chunkEmbedJob(t *testing.T, caseID *uuid.UUID, payload string) *domain.Job {
	t.Helper()

	job, err := domain.NewJob(domain.JobKindChunkEmbed, uuid.New(), caseID, json.RawMessage(payload))
	require.NoError(t, err)
	job.Status = domain.JobStatusRunning
	return job
}

func testChunkEmbedConfig() ChunkEmbedConfig {
	return ChunkEmbedConfig{MaxChars: 100, Overlap: 20, CallTimeout: 5 * time.Second}
}

func TestChunkEmbedHappyPath(t *testing.T) {
	t.Parallel()

	caseID := uuid.New()
	docID := uuid.New()
	docs := &fakeDocumentStore{doc: &domain.Document{
		ID:          docID,
		CaseID:      caseID,
		StoragePath: "cases/brief.txt",
	}}
	chunks := newChunkRecorder()
	blobs := &fakeBlobReader{objects: map[string][]byte{
		"cases/brief.txt": []byte(strings.Repeat("a", 250)),
	}}
	embedder := &stubEmbedder{}

	handler := NewChunkEmbedHandler(docs, chunks, blobs, embedder, testChunkEmbedConfig(), slog.Default())
	job := chunkEmbedJob(t, &caseID, `{"storage_path": "cases/brief.txt"}`)

	require.NoError(t, handler.Handle(context.Background(), job))

	// 250 chars, window 100, overlap 20 (step 80): windows at 0, 80 and 160,
	// with the final window running to the end of the text.
	assert.Len(t, chunks.rows, 3)
	assert.Equal(t, 3, embedder.calls)
	for i := 0; i < 3; i++ {
		chunk, ok := chunks.rows[fmt.Sprintf("%s/%d", docID, i)]
		require.True(t, ok, "chunk %d missing", i)
		assert.Equal(t, i, chunk.ChunkIndex)
		assert.NotEmpty(t, chunk.Embedding)
	}
}

func TestChunkEmbedRerunDoesNotDuplicate(t *testing.T) {
	t.Parallel()

	caseID := uuid.New()
	docs := &fakeDocumentStore{doc: &domain.Document{
		ID:          uuid.New(),
		CaseID:      caseID,
		StoragePath: "cases/brief.txt",
	}}
	chunks := newChunkRecorder()
	blobs := &fakeBlobReader{objects: map[string][]byte{
		"cases/brief.txt": []byte(strings.Repeat("b", 250)),
	}}

	handler := NewChunkEmbedHandler(docs, chunks, blobs, &stubEmbedder{}, testChunkEmbedConfig(), slog.Default())
	job := chunkEmbedJob(t, &caseID, `{"storage_path": "cases/brief.txt"}`)

	require.NoError(t, handler.Handle(context.Background(), job))
	require.NoError(t, handler.Handle(context.Background(), job))

	assert.Equal(t, 2, chunks.batches, "each run writes one batch")
	assert.Equal(t, 6, chunks.upserts, "both runs upsert")
	assert.Len(t, chunks.rows, 3, "re-run must not create duplicate (document_id, chunk_index) rows")
}

func TestChunkEmbedMissingStoragePathIsPermanent(t *testing.T) {
	t.Parallel()

	caseID := uuid.New()
	handler := NewChunkEmbedHandler(
		&fakeDocumentStore{}, newChunkRecorder(), &fakeBlobReader{}, &stubEmbedder{},
		testChunkEmbedConfig(), slog.Default())

	job := chunkEmbedJob(t, &caseID, `{}`)
	err := handler.Handle(context.Background(), job)

	require.Error(t, err)
	assert.True(t, IsPermanent(err))
}

func TestChunkEmbedMissingCaseIDIsPermanent(t *testing.T) {
	t.Parallel()

	handler := NewChunkEmbedHandler(
		&fakeDocumentStore{}, newChunkRecorder(), &fakeBlobReader{}, &stubEmbedder{},
		testChunkEmbedConfig(), slog.Default())

	job := chunkEmbedJob(t, nil, `{"storage_path": "x"}`)
	err := handler.Handle(context.Background(), job)

	require.Error(t, err)
	assert.True(t, IsPermanent(err))
}

func TestChunkEmbedMissingDocumentIsPermanent(t *testing.T) {
	t.Parallel()

	caseID := uuid.New()
	handler := NewChunkEmbedHandler(
		&fakeDocumentStore{}, newChunkRecorder(), &fakeBlobReader{}, &stubEmbedder{},
		testChunkEmbedConfig(), slog.Default())

	job := chunkEmbedJob(t, &caseID, `{"storage_path": "cases/missing.txt"}`)
	err := handler.Handle(context.Background(), job)

	require.Error(t, err)
	assert.True(t, IsPermanent(err))
	assert.ErrorIs(t, err, store.ErrDocumentNotFound)
}

func TestChunkEmbedBlobTransientErrorIsRetryable(t *testing.T) {
	t.Parallel()

	caseID := uuid.New()
	docs := &fakeDocumentStore{doc: &domain.Document{
		ID:          uuid.New(),
		CaseID:      caseID,
		StoragePath: "cases/brief.txt",
	}}
	blobs := &fakeBlobReader{err: fmt.Errorf("%w: connection reset", blob.ErrDownloadFailed)}

	handler := NewChunkEmbedHandler(docs, newChunkRecorder(), blobs, &stubEmbedder{},
		testChunkEmbedConfig(), slog.Default())

	job := chunkEmbedJob(t, &caseID, `{"storage_path": "cases/brief.txt"}`)
	err := handler.Handle(context.Background(), job)

	require.Error(t, err)
	assert.False(t, IsPermanent(err), "infra failures must stay retryable")
}

func TestChunkEmbedEmbedderErrorIsRetryable(t *testing.T) {
	t.Parallel()

	caseID := uuid.New()
	docs := &fakeDocumentStore{doc: &domain.Document{
		ID:          uuid.New(),
		CaseID:      caseID,
		StoragePath: "cases/brief.txt",
	}}
	blobs := &fakeBlobReader{objects: map[string][]byte{
		"cases/brief.txt": []byte("some document text"),
	}}
	embedder := &stubEmbedder{err: errors.New("embedding service unavailable")}

	handler := NewChunkEmbedHandler(docs, newChunkRecorder(), blobs, embedder,
		testChunkEmbedConfig(), slog.Default())

	job := chunkEmbedJob(t, &caseID, `{"storage_path": "cases/brief.txt"}`)
	err := handler.Handle(context.Background(), job)

	require.Error(t, err)
	assert.False(t, IsPermanent(err))
}
