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

// PostgresEvaluationStore implements the store.EvaluationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresEvaluationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresEvaluationStore creates a new PostgreSQL implementation of the EvaluationStore interface.
func NewPostgresEvaluationStore(db store.DBTX, logger *slog.Logger) *PostgresEvaluationStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresEvaluationStore{
		db:     db,
		logger: logger.With(slog.String("component", "evaluation_store")),
	}
}

// Ensure PostgresEvaluationStore implements store.EvaluationStore interface
var _ store.EvaluationStore = (*PostgresEvaluationStore)(nil)

// Create implements store.EvaluationStore.Create
func (s *PostgresEvaluationStore) Create(ctx context.Context, eval *domain.Evaluation) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := eval.Validate(); err != nil {
		log.Warn("evaluation validation failed during create",
			slog.String("error", err.Error()),
			slog.String("case_id", eval.CaseID.String()))
		return err
	}

	query := `
		INSERT INTO evaluations (id, org_id, case_id, status, output, model_info, retrieval_context, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		eval.ID,
		eval.OrgID,
		eval.CaseID,
		eval.Status,
		[]byte(eval.Output),
		nullableBytes(eval.ModelInfo),
		nullableBytes(eval.RetrievalContext),
		eval.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create evaluation",
			slog.String("error", err.Error()),
			slog.String("evaluation_id", eval.ID.String()),
			slog.String("case_id", eval.CaseID.String()))
		return MapError(err)
	}

	log.Debug("evaluation created",
		slog.String("evaluation_id", eval.ID.String()),
		slog.String("case_id", eval.CaseID.String()))
	return nil
}

// GetCurrent implements store.EvaluationStore.GetCurrent
func (s *PostgresEvaluationStore) GetCurrent(ctx context.Context, caseID uuid.UUID) (*domain.Evaluation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, org_id, case_id, status, output, model_info, retrieval_context, created_at
		FROM evaluations
		WHERE case_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	var (
		eval             domain.Evaluation
		output           []byte
		modelInfo        []byte
		retrievalContext []byte
	)

	err := s.db.QueryRowContext(ctx, query, caseID, domain.EvaluationStatusSucceeded).Scan(
		&eval.ID,
		&eval.OrgID,
		&eval.CaseID,
		&eval.Status,
		&output,
		&modelInfo,
		&retrievalContext,
		&eval.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrEvaluationNotFound
		}
		log.Error("failed to get current evaluation",
			slog.String("error", err.Error()),
			slog.String("case_id", caseID.String()))
		return nil, MapError(err)
	}

	eval.Output = output
	eval.ModelInfo = modelInfo
	eval.RetrievalContext = retrievalContext

	return &eval, nil
}

// WithTx implements store.EvaluationStore.WithTx
func (s *PostgresEvaluationStore) WithTx(tx *sql.Tx) store.EvaluationStore {
	return &PostgresEvaluationStore{
		db:     tx,
		logger: s.logger,
	}
}

func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
