package ports

import (
	"context"

	"github.com/policyatlas/evidence-engine/internal/core/domain"
)

// EvidenceRetriever is the inbound contract for the retrieval engine.
type EvidenceRetriever interface {
	Retrieve(ctx context.Context, question domain.Question) domain.EvidenceResult
	RetrieveBatch(ctx context.Context, questions []domain.Question) []domain.EvidenceResult
}

// ReviewService is the inbound contract for asynchronous review batches.
type ReviewService interface {
	Submit(ctx context.Context, name string, questions []domain.Question) (*domain.Review, error)
	GetByID(ctx context.Context, id string) (*domain.Review, []domain.ReviewQuestion, error)
	ProcessByID(ctx context.Context, reviewID string) error
}
