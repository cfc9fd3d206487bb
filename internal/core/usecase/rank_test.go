package usecase

import (
	"math"
	"testing"

	"github.com/policyatlas/evidence-engine/internal/core/domain"
)

func TestCosineSimilaritySelfIsOne(t *testing.T) {
	v := []float32{3, 4, 12}
	got := cosineSimilarity(v, v)
	if math.Abs(got-1) > 1e-9 {
		t.Fatalf("expected self similarity 1, got %v", got)
	}
}

func TestCosineSimilaritySymmetricAndBounded(t *testing.T) {
	a := []float32{1, 0, -2}
	b := []float32{-3, 5, 7}
	ab := cosineSimilarity(a, b)
	ba := cosineSimilarity(b, a)
	if math.Abs(ab-ba) > 1e-12 {
		t.Fatalf("expected symmetry, got %v vs %v", ab, ba)
	}
	if ab < -1 || ab > 1 {
		t.Fatalf("similarity out of bounds: %v", ab)
	}
}

func TestCosineSimilarityZeroVectorIsZero(t *testing.T) {
	if got := cosineSimilarity([]float32{0, 0, 0}, []float32{1, 2, 3}); got != 0 {
		t.Fatalf("expected 0 for zero vector, got %v", got)
	}
}

func TestCosineSimilarityDimensionMismatch(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}); got != 0 {
		t.Fatalf("expected 0 for mismatched dimensions, got %v", got)
	}
}

func rankTestIndex() *domain.EmbeddingIndex {
	return &domain.EmbeddingIndex{
		ModelID:   "test-model",
		Dimension: 2,
		Records: []domain.EmbeddingRecord{
			{DocumentID: "a.pdf", Page: 1, Vector: []float32{1, 0}},
			{DocumentID: "a.pdf", Page: 2, Vector: []float32{0.9, 0.1}},
			{DocumentID: "b.pdf", Page: 1, Vector: []float32{0, 1}},
			{DocumentID: "b.pdf", Page: 7, Vector: []float32{-1, 0}},
		},
	}
}

func TestRankNearestOrdersByDescendingSimilarity(t *testing.T) {
	hits := rankNearest(rankTestIndex(), []float32{1, 0}, 3)
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	if hits[0].record.DocumentID != "a.pdf" || hits[0].record.Page != 1 {
		t.Fatalf("expected a.pdf p1 first, got %s p%d", hits[0].record.DocumentID, hits[0].record.Page)
	}
	if hits[1].record.Page != 2 {
		t.Fatalf("expected a.pdf p2 second, got page %d", hits[1].record.Page)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].similarity > hits[i-1].similarity {
			t.Fatalf("hits not descending at %d", i)
		}
	}
}

func TestRankNearestIsDeterministic(t *testing.T) {
	index := rankTestIndex()
	query := []float32{0.5, 0.5}
	first := rankNearest(index, query, 4)
	for run := 0; run < 5; run++ {
		again := rankNearest(index, query, 4)
		for i := range first {
			if first[i].record.DocumentID != again[i].record.DocumentID ||
				first[i].record.Page != again[i].record.Page {
				t.Fatalf("run %d: order changed at %d", run, i)
			}
		}
	}
}

func TestRankNearestEmptyIndex(t *testing.T) {
	if hits := rankNearest(&domain.EmbeddingIndex{}, []float32{1}, 5); hits != nil {
		t.Fatalf("expected nil hits for empty index, got %v", hits)
	}
}
