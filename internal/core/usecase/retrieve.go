package usecase

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/policyatlas/evidence-engine/internal/core/domain"
	"github.com/policyatlas/evidence-engine/internal/core/ports"
)

// RetrieveUseCase runs the per-question evidence pipeline: preprocess and
// embed the question, rank index pages, expand neighborhoods, harvest
// sentence windows and pack the result into a bounded context.
type RetrieveUseCase struct {
	index    ports.IndexProvider
	pages    ports.PageStore
	embedder ports.QueryEmbedder
	params   EngineParams
	logger   *slog.Logger
}

func NewRetrieveUseCase(
	index ports.IndexProvider,
	pages ports.PageStore,
	embedder ports.QueryEmbedder,
	params EngineParams,
	logger *slog.Logger,
) *RetrieveUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetrieveUseCase{
		index:    index,
		pages:    pages,
		embedder: embedder,
		params:   params.normalize(),
		logger:   logger,
	}
}

// Retrieve resolves one question. A failed embedding call or an empty
// candidate set degrades to a "no evidence" result; it never returns an
// error, so sibling questions in a batch are unaffected.
func (uc *RetrieveUseCase) Retrieve(ctx context.Context, question domain.Question) domain.EvidenceResult {
	result := domain.EvidenceResult{
		QuestionID: question.ID,
		Tier:       domain.TierNone,
	}
	if strings.TrimSpace(question.Text) == "" {
		return result
	}

	index, err := uc.index.Load(ctx)
	if err != nil {
		uc.logger.Error("index_load_failed", "question_id", question.ID, "error", err)
		return result
	}

	queryVector, err := uc.embedder.EmbedQuery(ctx, preprocessQuestion(question.Text))
	if err != nil {
		uc.logger.Warn("query_embedding_failed", "question_id", question.ID, "error", err)
		return result
	}
	if index.Dimension > 0 && len(queryVector) != index.Dimension {
		uc.logger.Error("query_vector_dimension_mismatch",
			"question_id", question.ID,
			"got", len(queryVector),
			"want", index.Dimension,
		)
		return result
	}

	hits := rankNearest(index, queryVector, uc.params.TopK)
	scored := expandNeighborhood(hits, uc.params.NeighborRadius, uc.params.BaseScoreFactor)
	if len(scored) == 0 {
		return result
	}

	pages := uc.fetchCandidatePages(ctx, scored)
	if len(pages) == 0 {
		return result
	}

	qNums := questionNumbers(question.Text)

	chunks, tier := uc.packWithFallback(pages, qNums)
	result.Chunks = chunks
	result.Tier = tier
	result.PackedContext = strings.Join(chunks, "\n\n")
	result.HasEvidence = len(chunks) > 0
	return result
}

// packWithFallback tries the three harvesting strategies in order until the
// minimum yield is met: strict, then lenient, then whole pages.
func (uc *RetrieveUseCase) packWithFallback(pages []candidatePage, qNums []*regexp.Regexp) ([]string, domain.HarvestTier) {
	strict := packBlocks(harvestEvidence(pages, qNums, strictPolicy(), uc.params), uc.params)
	if len(strict) >= uc.params.MinChunks {
		return strict, domain.TierStrict
	}

	lenient := packBlocks(harvestEvidence(pages, qNums, lenientPolicy(), uc.params), uc.params)
	if len(lenient) > 0 && len(lenient) >= len(strict) {
		return lenient, domain.TierLenient
	}
	if len(strict) > 0 {
		return strict, domain.TierStrict
	}

	if whole := packWholePages(pages, uc.params); len(whole) > 0 {
		return whole, domain.TierPage
	}
	return nil, domain.TierNone
}

// fetchCandidatePages resolves candidate page text once for all harvesting
// passes. Store misses and empty pages are skipped silently.
func (uc *RetrieveUseCase) fetchCandidatePages(ctx context.Context, scored []domain.ScoredPage) []candidatePage {
	out := make([]candidatePage, 0, len(scored))
	for _, sp := range scored {
		if ctx.Err() != nil {
			return out
		}
		row, found, err := uc.pages.Get(ctx, sp.DocumentID, sp.Page)
		if err != nil {
			uc.logger.Warn("page_fetch_failed", "document_id", sp.DocumentID, "page", sp.Page, "error", err)
			continue
		}
		if !found || strings.TrimSpace(row.Text) == "" {
			continue
		}
		out = append(out, candidatePage{ScoredPage: sp, Text: row.Text})
	}
	return out
}
