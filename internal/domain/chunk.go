package domain

import (
	"errors"

	"github.com/google/uuid"
)

// Common validation errors for DocumentChunk
var (
	ErrEmptyChunkID         = errors.New("chunk ID cannot be empty")
	ErrEmptyChunkOrgID      = errors.New("chunk org ID cannot be empty")
	ErrEmptyChunkDocumentID = errors.New("chunk document ID cannot be empty")
	ErrNegativeChunkIndex   = errors.New("chunk index cannot be negative")
	ErrEmptyChunkText       = errors.New("chunk text cannot be empty")
	ErrEmptyChunkEmbedding  = errors.New("chunk embedding cannot be empty")
)

// DocumentChunk is a bounded, overlapping slice of a document's text together
// with its embedding vector. ChunkIndex is zero-based and unique per document;
// concatenating chunk texts in index order reconstructs the source with
// bounded overlap duplication between adjacent chunks.
type DocumentChunk struct {
	ID         uuid.UUID `json:"id"`
	OrgID      uuid.UUID `json:"org_id"`
	DocumentID uuid.UUID `json:"document_id"`
	ChunkIndex int       `json:"chunk_index"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"embedding"`
}

// NewDocumentChunk creates a chunk row for the given document window.
// Returns an error if validation fails.
func NewDocumentChunk(orgID, documentID uuid.UUID, index int, text string, embedding []float32) (*DocumentChunk, error) {
	chunk := &DocumentChunk{
		ID:         uuid.New(),
		OrgID:      orgID,
		DocumentID: documentID,
		ChunkIndex: index,
		Text:       text,
		Embedding:  embedding,
	}

	if err := chunk.Validate(); err != nil {
		return nil, err
	}

	return chunk, nil
}

// Validate checks if the DocumentChunk has valid data.
func (c *DocumentChunk) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyChunkID
	}

	if c.OrgID == uuid.Nil {
		return ErrEmptyChunkOrgID
	}

	if c.DocumentID == uuid.Nil {
		return ErrEmptyChunkDocumentID
	}

	if c.ChunkIndex < 0 {
		return ErrNegativeChunkIndex
	}

	if c.Text == "" {
		return ErrEmptyChunkText
	}

	if len(c.Embedding) == 0 {
		return ErrEmptyChunkEmbedding
	}

	return nil
}

// ChunkMatch is a similarity-search hit: a chunk's text plus its similarity
// to the query, ordered descending by the search.
type ChunkMatch struct {
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity"`
}
