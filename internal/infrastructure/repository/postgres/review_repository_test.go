package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/policyatlas/evidence-engine/internal/core/domain"
)

func newReviewRepoWithMock(t *testing.T) (*ReviewRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &ReviewRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestGetReviewReturnsNotFound(t *testing.T) {
	repo, mock, done := newReviewRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, name, status").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, _, err := repo.GetReview(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateReviewStatusNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newReviewRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE reviews").
		WithArgs("missing", string(domain.ReviewProcessing), "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateReviewStatus(context.Background(), "missing", domain.ReviewProcessing, "")
	if !domain.IsKind(err, domain.ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveQuestionResultUpdatesRow(t *testing.T) {
	repo, mock, done := newReviewRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE review_questions").
		WithArgs("rev-1", 0, "[1] plan.pdf p.1: \"text\"", true, string(domain.TierStrict)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveQuestionResult(context.Background(), "rev-1", 0, domain.EvidenceResult{
		PackedContext: `[1] plan.pdf p.1: "text"`,
		HasEvidence:   true,
		Tier:          domain.TierStrict,
	})
	if err != nil {
		t.Fatalf("SaveQuestionResult() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateReviewInsertsQuestionsInOneTx(t *testing.T) {
	repo, mock, done := newReviewRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reviews").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO review_questions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO review_questions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	review := &domain.Review{ID: "rev-1", Name: "audit", Status: domain.ReviewPending}
	questions := []domain.ReviewQuestion{
		{ReviewID: "rev-1", Position: 0, QuestionID: "q1", QuestionText: "first"},
		{ReviewID: "rev-1", Position: 1, QuestionID: "q2", QuestionText: "second"},
	}
	if err := repo.CreateReview(context.Background(), review, questions); err != nil {
		t.Fatalf("CreateReview() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
