// Package retrieval assembles the context snippets used to ground case
// evaluations. It embeds a query, searches case-scoped chunks by vector
// similarity, and degrades to an unranked org-wide listing when the
// similarity path cannot produce results.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/devschro/next-precedent/internal/generation"
	"github.com/devschro/next-precedent/internal/platform/logger"
	"github.com/devschro/next-precedent/internal/store"
)

// Source identifies which retrieval path produced a result set. It is
// recorded with each evaluation so degraded context is visible afterwards.
type Source string

const (
	// SourceSimilarity means snippets came from case-scoped vector search.
	SourceSimilarity Source = "similarity"

	// SourceOrgFallback means snippets came from the unranked org-wide
	// listing, a deliberate relevance and isolation downgrade used when
	// the similarity path fails or finds nothing.
	SourceOrgFallback Source = "org_fallback"

	// SourceEmpty means neither path yielded snippets. The evaluation
	// proceeds with an empty context block; the model is asked for best
	// estimates either way.
	SourceEmpty Source = "empty"
)

// Result is the outcome of one retrieval: the snippets to ground the
// evaluation on and the path that produced them.
type Result struct {
	Snippets []string `json:"snippets"`
	Source   Source   `json:"source"`
}

// Engine performs two-stage retrieval over stored document chunks.
type Engine struct {
	embedder generation.Embedder
	chunks   store.ChunkStore
	topK     int
	logger   *slog.Logger
}

// NewEngine creates a retrieval engine with the given dependencies.
// topK bounds the number of snippets returned by either path.
func NewEngine(embedder generation.Embedder, chunks store.ChunkStore, topK int, log *slog.Logger) *Engine {
	if embedder == nil {
		panic("embedder cannot be nil")
	}

	if chunks == nil {
		panic("chunks cannot be nil")
	}

	if topK <= 0 {
		panic("topK must be positive")
	}

	if log == nil {
		log = slog.Default()
	}

	return &Engine{
		embedder: embedder,
		chunks:   chunks,
		topK:     topK,
		logger:   log.With(slog.String("component", "retrieval_engine")),
	}
}

// Retrieve returns up to topK context snippets for the given case. The
// primary path embeds the query and ranks case-scoped chunks by cosine
// similarity. If embedding or search fails, or the search returns nothing,
// the engine falls back to an unranked org-scoped listing; the primary
// failure is logged but not propagated. An error is returned only when the
// fallback path itself fails. When both paths come up empty the result is
// an empty snippet set tagged SourceEmpty, not an error.
func (e *Engine) Retrieve(ctx context.Context, orgID, caseID uuid.UUID, query string) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	snippets, primaryErr := e.searchSimilar(ctx, caseID, query)
	if primaryErr == nil && len(snippets) > 0 {
		log.Debug("retrieval used similarity path",
			slog.String("case_id", caseID.String()),
			slog.Int("snippets", len(snippets)))
		return &Result{Snippets: snippets, Source: SourceSimilarity}, nil
	}

	if primaryErr != nil {
		log.Warn("similarity retrieval failed, falling back to org listing",
			slog.String("error", primaryErr.Error()),
			slog.String("case_id", caseID.String()))
	} else {
		log.Warn("similarity retrieval returned no matches, falling back to org listing",
			slog.String("case_id", caseID.String()))
	}

	fallback, err := e.chunks.ListByOrg(ctx, orgID, e.topK)
	if err != nil {
		return nil, fmt.Errorf("fallback retrieval failed: %w", err)
	}

	if len(fallback) == 0 {
		log.Warn("no retrieval context found, proceeding with empty context",
			slog.String("org_id", orgID.String()),
			slog.String("case_id", caseID.String()))
		return &Result{Snippets: nil, Source: SourceEmpty}, nil
	}

	log.Debug("retrieval used fallback path",
		slog.String("org_id", orgID.String()),
		slog.Int("snippets", len(fallback)))
	return &Result{Snippets: fallback, Source: SourceOrgFallback}, nil
}

func (e *Engine) searchSimilar(ctx context.Context, caseID uuid.UUID, query string) ([]string, error) {
	embedding, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := e.chunks.SearchSimilar(ctx, caseID, embedding, e.topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	snippets := make([]string, 0, len(matches))
	for _, m := range matches {
		snippets = append(snippets, m.Text)
	}

	return snippets, nil
}
