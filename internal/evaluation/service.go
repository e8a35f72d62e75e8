package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/devschro/next-precedent/internal/domain"
	"github.com/devschro/next-precedent/internal/generation"
	"github.com/devschro/next-precedent/internal/platform/logger"
	"github.com/devschro/next-precedent/internal/retrieval"
	"github.com/devschro/next-precedent/internal/store"
)

// ContextRetriever supplies grounding snippets for an evaluation. It is
// satisfied by retrieval.Engine.
type ContextRetriever interface {
	Retrieve(ctx context.Context, orgID, caseID uuid.UUID, query string) (*retrieval.Result, error)
}

// Service produces and persists case evaluations: it looks up the case,
// retrieves context, prompts the generative model, validates the output
// through the versioned schema reader, and stores the result.
type Service struct {
	cases       store.CaseStore
	retriever   ContextRetriever
	generator   generation.Generator
	evals       store.EvaluationStore
	topK        int
	callTimeout time.Duration
	logger      *slog.Logger
}

// ServiceConfig carries the retrieval breadth and per-call timeout settings.
type ServiceConfig struct {
	TopK int

	// CallTimeout bounds each outbound call (retrieval, generation)
	// individually, on top of the caller's overall deadline.
	CallTimeout time.Duration
}

// NewService creates an evaluation service with the given dependencies.
func NewService(
	cases store.CaseStore,
	retriever ContextRetriever,
	generator generation.Generator,
	evals store.EvaluationStore,
	cfg ServiceConfig,
	log *slog.Logger,
) *Service {
	if cases == nil {
		panic("cases cannot be nil")
	}

	if retriever == nil {
		panic("retriever cannot be nil")
	}

	if generator == nil {
		panic("generator cannot be nil")
	}

	if evals == nil {
		panic("evals cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &Service{
		cases:       cases,
		retriever:   retriever,
		generator:   generator,
		evals:       evals,
		topK:        cfg.TopK,
		callTimeout: cfg.CallTimeout,
		logger:      log.With(slog.String("component", "evaluation_service")),
	}
}

// Evaluate runs the full evaluation pipeline for the given case and
// persists a succeeded Evaluation row. Out-of-range model output is
// absorbed by the legacy adapter and still persisted as succeeded; only
// infrastructure failures and unparseable output propagate as errors.
func (s *Service) Evaluate(ctx context.Context, orgID, caseID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return fmt.Errorf("fetch case %s: %w", caseID, err)
	}

	query := c.Name
	if query == "" {
		query = "case evaluation"
	}

	result, err := s.retrieve(ctx, orgID, caseID, query)
	if err != nil {
		return fmt.Errorf("retrieve context: %w", err)
	}

	prompt, err := BuildPrompt(c.Name, result.Snippets)
	if err != nil {
		return fmt.Errorf("build prompt: %w", err)
	}

	raw, err := s.generate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("generate evaluation: %w", err)
	}

	output, corrected, err := ParseOutput([]byte(raw))
	if err != nil {
		return fmt.Errorf("parse evaluation output: %w", err)
	}

	if corrected {
		log.Warn("model output failed current schema, persisted via legacy adapter",
			slog.String("case_id", caseID.String()))
	}

	outputJSON, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("marshal evaluation output: %w", err)
	}

	modelInfo, err := json.Marshal(s.generator.ModelInfo())
	if err != nil {
		return fmt.Errorf("marshal model info: %w", err)
	}

	retrievalContext, err := json.Marshal(map[string]any{
		"topK":   s.topK,
		"source": result.Source,
	})
	if err != nil {
		return fmt.Errorf("marshal retrieval context: %w", err)
	}

	eval, err := domain.NewEvaluation(orgID, caseID, outputJSON, modelInfo, retrievalContext)
	if err != nil {
		return fmt.Errorf("construct evaluation: %w", err)
	}

	if err := s.evals.Create(ctx, eval); err != nil {
		return fmt.Errorf("persist evaluation: %w", err)
	}

	log.Info("evaluation persisted",
		slog.String("evaluation_id", eval.ID.String()),
		slog.String("case_id", caseID.String()),
		slog.Bool("corrected", corrected),
		slog.String("retrieval_source", string(result.Source)))
	return nil
}

func (s *Service) retrieve(ctx context.Context, orgID, caseID uuid.UUID, query string) (*retrieval.Result, error) {
	ctx, cancel := s.withCallTimeout(ctx)
	defer cancel()
	return s.retriever.Retrieve(ctx, orgID, caseID, query)
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := s.withCallTimeout(ctx)
	defer cancel()
	return s.generator.Generate(ctx, prompt)
}

func (s *Service) withCallTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.callTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.callTimeout)
}
