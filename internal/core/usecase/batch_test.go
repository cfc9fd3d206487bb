package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/policyatlas/evidence-engine/internal/core/domain"
)

func TestRetrieveBatchPreservesInputOrder(t *testing.T) {
	store := &pageStoreFake{pages: map[string]string{
		"plan.pdf:10": "The Plan shall notify the Member within 14 calendar days. Further detail follows in the next section.",
	}}
	embedder := &embedderFake{fn: func(text string) ([]float32, error) {
		// The artificially slow question finishes last but must keep its slot.
		if strings.Contains(text, "slow") {
			time.Sleep(50 * time.Millisecond)
		}
		return []float32{1, 0}, nil
	}}
	uc := NewRetrieveUseCase(&indexFake{index: noticeIndex()}, store, embedder, DefaultEngineParams(), nil)

	questions := []domain.Question{
		{ID: "slow-question", Text: "slow one about notify deadlines"},
		{ID: "fast-question", Text: "fast one about notify deadlines"},
	}
	results := uc.RetrieveBatch(context.Background(), questions)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].QuestionID != "slow-question" || results[1].QuestionID != "fast-question" {
		t.Fatalf("result order does not match input order: %s, %s", results[0].QuestionID, results[1].QuestionID)
	}
}

func TestRetrieveBatchIsolatesPerQuestionFailures(t *testing.T) {
	store := &pageStoreFake{pages: map[string]string{
		"plan.pdf:10": "The Plan shall notify the Member within 14 calendar days. Further detail follows in the next section.",
	}}
	embedder := &embedderFake{fn: func(text string) ([]float32, error) {
		if strings.Contains(text, "doomed") {
			return nil, errors.New("provider unavailable")
		}
		return []float32{1, 0}, nil
	}}
	uc := NewRetrieveUseCase(&indexFake{index: noticeIndex()}, store, embedder, DefaultEngineParams(), nil)

	results := uc.RetrieveBatch(context.Background(), []domain.Question{
		{ID: "q1", Text: "doomed question"},
		{ID: "q2", Text: "does the plan notify members of determinations"},
	})
	if results[0].HasEvidence {
		t.Fatalf("expected failed question to resolve to no evidence")
	}
	if !results[1].HasEvidence {
		t.Fatalf("expected sibling question to resolve normally")
	}
}

func TestRetrieveBatchEmptyInput(t *testing.T) {
	uc := NewRetrieveUseCase(&indexFake{index: noticeIndex()}, &pageStoreFake{}, &embedderFake{vector: []float32{1, 0}}, DefaultEngineParams(), nil)
	results := uc.RetrieveBatch(context.Background(), nil)
	if len(results) != 0 {
		t.Fatalf("expected empty results, got %d", len(results))
	}
}

func TestRetrieveBatchHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	uc := NewRetrieveUseCase(&indexFake{index: noticeIndex()}, &pageStoreFake{}, &embedderFake{vector: []float32{1, 0}}, DefaultEngineParams(), nil)
	results := uc.RetrieveBatch(ctx, []domain.Question{{ID: "q1", Text: "anything"}})
	if len(results) != 1 {
		t.Fatalf("expected one slot, got %d", len(results))
	}
	if results[0].HasEvidence {
		t.Fatalf("expected no evidence after cancellation")
	}
	if results[0].QuestionID != "q1" {
		t.Fatalf("expected question id preserved, got %q", results[0].QuestionID)
	}
}
