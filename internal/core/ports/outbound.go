package ports

import (
	"context"

	"github.com/policyatlas/evidence-engine/internal/core/domain"
)

// PageStore resolves (document, page) keys to page text. Exact-match only;
// a miss is reported through found=false, not an error.
type PageStore interface {
	Get(ctx context.Context, documentID string, page int) (domain.PageRow, bool, error)
}

// IndexProvider loads the precomputed embedding index. Load is idempotent and
// cached for the process lifetime.
type IndexProvider interface {
	Load(ctx context.Context) (*domain.EmbeddingIndex, error)
}

// QueryEmbedder turns preprocessed question text into a query vector.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// ReviewRepository persists review batches and their resolved evidence.
type ReviewRepository interface {
	CreateReview(ctx context.Context, review *domain.Review, questions []domain.ReviewQuestion) error
	GetReview(ctx context.Context, id string) (*domain.Review, []domain.ReviewQuestion, error)
	UpdateReviewStatus(ctx context.Context, id string, status domain.ReviewStatus, errMessage string) error
	SaveQuestionResult(ctx context.Context, reviewID string, position int, result domain.EvidenceResult) error
}

// ReviewQueue publishes/consumes review processing events.
type ReviewQueue interface {
	PublishReviewSubmitted(ctx context.Context, reviewID string) error
	SubscribeReviewSubmitted(ctx context.Context, handler func(context.Context, string) error) error
}
