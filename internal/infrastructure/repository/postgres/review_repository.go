package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/policyatlas/evidence-engine/internal/core/domain"
)

type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS reviews (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	status TEXT NOT NULL,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS review_questions (
	review_id TEXT NOT NULL REFERENCES reviews(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	question_id TEXT NOT NULL,
	question_text TEXT NOT NULL,
	packed_context TEXT NOT NULL DEFAULT '',
	has_evidence BOOLEAN NOT NULL DEFAULT FALSE,
	tier TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (review_id, position)
);

CREATE INDEX IF NOT EXISTS idx_reviews_status ON reviews(status);
CREATE INDEX IF NOT EXISTS idx_reviews_created_at ON reviews(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ReviewRepository) CreateReview(ctx context.Context, review *domain.Review, questions []domain.ReviewQuestion) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin review tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
INSERT INTO reviews (id, name, status, error_message, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, review.ID, review.Name, string(review.Status), review.Error, review.CreatedAt, review.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	for _, q := range questions {
		_, err = tx.ExecContext(ctx, `
INSERT INTO review_questions (review_id, position, question_id, question_text)
VALUES ($1,$2,$3,$4)
`, q.ReviewID, q.Position, q.QuestionID, q.QuestionText)
		if err != nil {
			return fmt.Errorf("insert review question %d: %w", q.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit review tx: %w", err)
	}
	return nil
}

func (r *ReviewRepository) GetReview(ctx context.Context, id string) (*domain.Review, []domain.ReviewQuestion, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, status, error_message, created_at, updated_at
FROM reviews
WHERE id = $1
`, id)

	var review domain.Review
	var status string
	err := row.Scan(&review.ID, &review.Name, &status, &review.Error, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, domain.WrapError(domain.ErrReviewNotFound, "get review", fmt.Errorf("id %s", id))
		}
		return nil, nil, fmt.Errorf("scan review: %w", err)
	}
	review.Status = domain.ReviewStatus(status)

	rows, err := r.db.QueryContext(ctx, `
SELECT review_id, position, question_id, question_text, packed_context, has_evidence, tier
FROM review_questions
WHERE review_id = $1
ORDER BY position
`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("query review questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.ReviewQuestion
	for rows.Next() {
		var q domain.ReviewQuestion
		var tier string
		if err := rows.Scan(&q.ReviewID, &q.Position, &q.QuestionID, &q.QuestionText, &q.PackedContext, &q.HasEvidence, &tier); err != nil {
			return nil, nil, fmt.Errorf("scan review question: %w", err)
		}
		q.Tier = domain.HarvestTier(tier)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate review questions: %w", err)
	}

	return &review, questions, nil
}

func (r *ReviewRepository) UpdateReviewStatus(ctx context.Context, id string, status domain.ReviewStatus, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE reviews
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update review status: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrReviewNotFound, "update review status", fmt.Errorf("id %s", id))
	}
	return nil
}

func (r *ReviewRepository) SaveQuestionResult(ctx context.Context, reviewID string, position int, result domain.EvidenceResult) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE review_questions
SET packed_context = $3, has_evidence = $4, tier = $5
WHERE review_id = $1 AND position = $2
`, reviewID, position, result.PackedContext, result.HasEvidence, string(result.Tier))
	if err != nil {
		return fmt.Errorf("save question result: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrReviewNotFound, "save question result", fmt.Errorf("review %s position %d", reviewID, position))
	}
	return nil
}
