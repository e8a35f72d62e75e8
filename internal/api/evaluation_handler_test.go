package api_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devschro/next-precedent/internal/api"
	"github.com/devschro/next-precedent/internal/api/middleware"
	"github.com/devschro/next-precedent/internal/domain"
	"github.com/devschro/next-precedent/internal/store"
)

type fakeEvaluationStore struct {
	current map[uuid.UUID]*domain.Evaluation
}

func (f *fakeEvaluationStore) Create(ctx context.Context, eval *domain.Evaluation) error {
	return nil
}

func (f *fakeEvaluationStore) GetCurrent(ctx context.Context, caseID uuid.UUID) (*domain.Evaluation, error) {
	if eval, ok := f.current[caseID]; ok {
		return eval, nil
	}
	return nil, store.ErrEvaluationNotFound
}

func (f *fakeEvaluationStore) WithTx(tx *sql.Tx) store.EvaluationStore { return f }

func newEvaluationRouter(t *testing.T, evals *fakeEvaluationStore) http.Handler {
	t.Helper()

	return api.NewRouter(api.RouterDeps{
		ProcessHandler:    api.NewProcessHandler(&fakeProcessor{}, slog.Default()),
		JobHandler:        api.NewJobHandler(&fakeJobEnqueuer{}, slog.Default()),
		EvaluationHandler: api.NewEvaluationHandler(evals, slog.Default()),
		Secret:            middleware.NewSecretMiddleware(testSecret).Require,
	})
}

func getWithSecret(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("x-cron-secret", testSecret)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetCurrentEvaluation(t *testing.T) {
	t.Parallel()

	caseID := uuid.New()
	eval := &domain.Evaluation{
		ID:               uuid.New(),
		OrgID:            uuid.New(),
		CaseID:           caseID,
		Status:           domain.EvaluationStatusSucceeded,
		Output:           json.RawMessage(`{"riskScore": 42}`),
		ModelInfo:        json.RawMessage(`{"provider": "google"}`),
		RetrievalContext: json.RawMessage(`{"topK": 12, "source": "similarity"}`),
		CreatedAt:        time.Now().UTC(),
	}
	router := newEvaluationRouter(t, &fakeEvaluationStore{
		current: map[uuid.UUID]*domain.Evaluation{caseID: eval},
	})

	rec := getWithSecret(t, router, "/api/cases/"+caseID.String()+"/evaluation")

	require.Equal(t, http.StatusOK, rec.Code)

	var body domain.Evaluation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, eval.ID, body.ID)
	assert.Equal(t, caseID, body.CaseID)
	assert.Equal(t, domain.EvaluationStatusSucceeded, body.Status)
	assert.JSONEq(t, `{"riskScore": 42}`, string(body.Output))
}

func TestGetCurrentEvaluationNotFound(t *testing.T) {
	t.Parallel()

	router := newEvaluationRouter(t, &fakeEvaluationStore{})

	rec := getWithSecret(t, router, "/api/cases/"+uuid.NewString()+"/evaluation")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCurrentEvaluationInvalidCaseID(t *testing.T) {
	t.Parallel()

	router := newEvaluationRouter(t, &fakeEvaluationStore{})

	rec := getWithSecret(t, router, "/api/cases/not-a-uuid/evaluation")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCurrentEvaluationRequiresSecret(t *testing.T) {
	t.Parallel()

	router := newEvaluationRouter(t, &fakeEvaluationStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/cases/"+uuid.NewString()+"/evaluation", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
