package usecase

import (
	"math"
	"sort"

	"github.com/policyatlas/evidence-engine/internal/core/domain"
)

type neighborHit struct {
	record     domain.EmbeddingRecord
	similarity float64
}

// cosineSimilarity is the normalized dot product of two vectors. The
// denominator is floored to 1 so a zero vector yields 0 instead of NaN.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom < 1 {
		denom = 1
	}
	return dot / denom
}

// rankNearest scans every index record against the query vector and returns
// the top-K hits by descending cosine similarity. A full linear scan is fine
// at corpus sizes that fit in memory; revisit if the index outgrows that.
func rankNearest(index *domain.EmbeddingIndex, query []float32, topK int) []neighborHit {
	if index == nil || len(index.Records) == 0 || len(query) == 0 {
		return nil
	}

	hits := make([]neighborHit, 0, len(index.Records))
	for _, record := range index.Records {
		hits = append(hits, neighborHit{
			record:     record,
			similarity: cosineSimilarity(query, record.Vector),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].similarity != hits[j].similarity {
			return hits[i].similarity > hits[j].similarity
		}
		if hits[i].record.DocumentID != hits[j].record.DocumentID {
			return hits[i].record.DocumentID < hits[j].record.DocumentID
		}
		return hits[i].record.Page < hits[j].record.Page
	})

	if topK > 0 && topK < len(hits) {
		hits = hits[:topK]
	}
	return hits
}
