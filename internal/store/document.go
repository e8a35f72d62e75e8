package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/devschro/next-precedent/internal/domain"
)

// DocumentStore defines the interface for document metadata persistence.
type DocumentStore interface {
	// GetByStoragePath retrieves the document matching (org, case, storage path).
	// Returns ErrDocumentNotFound if no such document exists.
	GetByStoragePath(ctx context.Context, orgID, caseID uuid.UUID, storagePath string) (*domain.Document, error)

	// WithTx returns a new DocumentStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) DocumentStore
}

// CaseStore defines the read interface the worker needs for cases.
// Case CRUD belongs to the web API layer and is not modeled here.
type CaseStore interface {
	// GetByID retrieves a case by its unique ID.
	// Returns ErrCaseNotFound if the case does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Case, error)

	// WithTx returns a new CaseStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CaseStore
}
