package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/policyatlas/evidence-engine/internal/core/domain"
	"github.com/policyatlas/evidence-engine/internal/core/ports"
)

// ReviewUseCase orchestrates asynchronous review batches: the API submits
// and enqueues them, the worker resolves evidence for every question.
type ReviewUseCase struct {
	repo      ports.ReviewRepository
	queue     ports.ReviewQueue
	retriever ports.EvidenceRetriever
}

func NewReviewUseCase(
	repo ports.ReviewRepository,
	queue ports.ReviewQueue,
	retriever ports.EvidenceRetriever,
) *ReviewUseCase {
	return &ReviewUseCase{
		repo:      repo,
		queue:     queue,
		retriever: retriever,
	}
}

func (uc *ReviewUseCase) Submit(ctx context.Context, name string, questions []domain.Question) (*domain.Review, error) {
	if len(questions) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "submit review", fmt.Errorf("no questions"))
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Text) == "" {
			return nil, domain.WrapError(domain.ErrInvalidInput, "submit review", fmt.Errorf("question %d has empty text", i))
		}
	}

	now := time.Now().UTC()
	review := &domain.Review{
		ID:        uuid.NewString(),
		Name:      name,
		Status:    domain.ReviewPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	rows := make([]domain.ReviewQuestion, 0, len(questions))
	for i, q := range questions {
		questionID := q.ID
		if questionID == "" {
			questionID = fmt.Sprintf("q%d", i+1)
		}
		rows = append(rows, domain.ReviewQuestion{
			ReviewID:     review.ID,
			Position:     i,
			QuestionID:   questionID,
			QuestionText: q.Text,
		})
	}

	if err := uc.repo.CreateReview(ctx, review, rows); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	if err := uc.queue.PublishReviewSubmitted(ctx, review.ID); err != nil {
		return nil, fmt.Errorf("publish review event: %w", err)
	}
	return review, nil
}

func (uc *ReviewUseCase) GetByID(ctx context.Context, id string) (*domain.Review, []domain.ReviewQuestion, error) {
	return uc.repo.GetReview(ctx, id)
}

// ProcessByID runs the retrieval engine for every question of a review and
// persists the per-question evidence.
func (uc *ReviewUseCase) ProcessByID(ctx context.Context, reviewID string) error {
	review, rows, err := uc.repo.GetReview(ctx, reviewID)
	if err != nil {
		return fmt.Errorf("load review: %w", err)
	}

	if err := uc.repo.UpdateReviewStatus(ctx, review.ID, domain.ReviewProcessing, ""); err != nil {
		return fmt.Errorf("mark review processing: %w", err)
	}

	questions := make([]domain.Question, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, domain.Question{ID: row.QuestionID, Text: row.QuestionText})
	}

	results := uc.retriever.RetrieveBatch(ctx, questions)
	for i, result := range results {
		if err := uc.repo.SaveQuestionResult(ctx, review.ID, rows[i].Position, result); err != nil {
			_ = uc.repo.UpdateReviewStatus(ctx, review.ID, domain.ReviewFailed, err.Error())
			return fmt.Errorf("save question result: %w", err)
		}
	}

	if err := uc.repo.UpdateReviewStatus(ctx, review.ID, domain.ReviewCompleted, ""); err != nil {
		return fmt.Errorf("mark review completed: %w", err)
	}
	return nil
}
