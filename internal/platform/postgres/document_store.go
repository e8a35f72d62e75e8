package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/devschro/next-precedent/internal/domain"
	"github.com/devschro/next-precedent/internal/platform/logger"
	"github.com/devschro/next-precedent/internal/store"
)

// PostgresDocumentStore implements the store.DocumentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDocumentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDocumentStore creates a new PostgreSQL implementation of the DocumentStore interface.
func NewPostgresDocumentStore(db store.DBTX, logger *slog.Logger) *PostgresDocumentStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDocumentStore{
		db:     db,
		logger: logger.With(slog.String("component", "document_store")),
	}
}

// Ensure PostgresDocumentStore implements store.DocumentStore interface
var _ store.DocumentStore = (*PostgresDocumentStore)(nil)

// GetByStoragePath implements store.DocumentStore.GetByStoragePath
func (s *PostgresDocumentStore) GetByStoragePath(
	ctx context.Context,
	orgID, caseID uuid.UUID,
	storagePath string,
) (*domain.Document, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, org_id, case_id, storage_path, filename, mime, size_bytes, created_at
		FROM documents
		WHERE org_id = $1 AND case_id = $2 AND storage_path = $3
	`

	var doc domain.Document
	err := s.db.QueryRowContext(ctx, query, orgID, caseID, storagePath).Scan(
		&doc.ID,
		&doc.OrgID,
		&doc.CaseID,
		&doc.StoragePath,
		&doc.Filename,
		&doc.Mime,
		&doc.SizeBytes,
		&doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("document not found",
				slog.String("org_id", orgID.String()),
				slog.String("case_id", caseID.String()),
				slog.String("storage_path", storagePath))
			return nil, store.ErrDocumentNotFound
		}
		log.Error("failed to get document by storage path",
			slog.String("error", err.Error()),
			slog.String("storage_path", storagePath))
		return nil, MapError(err)
	}

	return &doc, nil
}

// WithTx implements store.DocumentStore.WithTx
func (s *PostgresDocumentStore) WithTx(tx *sql.Tx) store.DocumentStore {
	return &PostgresDocumentStore{
		db:     tx,
		logger: s.logger,
	}
}

// PostgresCaseStore implements the store.CaseStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCaseStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCaseStore creates a new PostgreSQL implementation of the CaseStore interface.
func NewPostgresCaseStore(db store.DBTX, logger *slog.Logger) *PostgresCaseStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCaseStore{
		db:     db,
		logger: logger.With(slog.String("component", "case_store")),
	}
}

// Ensure PostgresCaseStore implements store.CaseStore interface
var _ store.CaseStore = (*PostgresCaseStore)(nil)

// GetByID implements store.CaseStore.GetByID
func (s *PostgresCaseStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Case, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT id, org_id, name, created_at FROM cases WHERE id = $1`

	var c domain.Case
	err := s.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.OrgID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCaseNotFound
		}
		log.Error("failed to get case by ID",
			slog.String("error", err.Error()),
			slog.String("case_id", id.String()))
		return nil, MapError(err)
	}

	return &c, nil
}

// WithTx implements store.CaseStore.WithTx
func (s *PostgresCaseStore) WithTx(tx *sql.Tx) store.CaseStore {
	return &PostgresCaseStore{
		db:     tx,
		logger: s.logger,
	}
}
